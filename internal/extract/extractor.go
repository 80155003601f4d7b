// Package extract turns rendered SoundCloud pages into Track records.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"scexport/internal/core"
	"scexport/pkg/pagekind"
	"scexport/pkg/selector"
	"scexport/pkg/trackurl"
)

const (
	// docTitlePrefix is prepended by the site to track document titles.
	docTitlePrefix = "Stream "
	// fallbackSongName is shown when neither metadata nor URL yield a name.
	fallbackSongName = "track"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Extractor extracts tracks from a parsed page.
type Extractor struct {
	logger *zap.Logger
}

// New creates an Extractor.
func New(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract dispatches to the strategy for kind.
func (e *Extractor) Extract(kind pagekind.Kind, doc *goquery.Document, pageURL string) ([]core.Track, error) {
	switch kind {
	case pagekind.Song:
		track, err := e.Song(doc, pageURL)
		if err != nil {
			return nil, err
		}
		return []core.Track{track}, nil
	case pagekind.Playlist:
		tracks := e.Playlist(doc, pageURL)
		if len(tracks) == 0 {
			return nil, fmt.Errorf("%w: no playlist rows on %s", core.ErrExtraction, pageURL)
		}
		return tracks, nil
	case pagekind.ArtistCollection:
		tracks := e.Artist(doc, pageURL)
		if len(tracks) == 0 {
			return nil, fmt.Errorf("%w: no track rows on %s", core.ErrExtraction, pageURL)
		}
		return tracks, nil
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedPage, kind)
	}
}

// Song extracts the track shown on a song page. Tiers, in order: OpenGraph metadata,
// Twitter card metadata, the document title, and the rendered title element. The page
// URL stands in when no metadata URL exists.
func (e *Extractor) Song(doc *goquery.Document, pageURL string) (core.Track, error) {
	root := doc.Selection

	rawURL := selector.Attr(songURLMeta, root, "content")
	if rawURL == "" {
		rawURL = pageURL
	}
	url := trackurl.Canonical(pageURL, rawURL)

	fullTitle, tier := e.songTitle(root)
	title, byArtist := trackurl.SplitTitle(fullTitle)
	title = cleanText(title)

	username := cleanText(selector.Text(songUsername, root))
	if username == "" {
		username = cleanText(byArtist)
	}
	if username == "" {
		username = trackurl.Owner(url)
	}

	if url == "" || title == "" {
		e.logger.Warn("Could not extract song data from page",
			zap.String("pageURL", pageURL),
			zap.Bool("hasURL", url != ""),
			zap.Bool("hasTitle", title != ""))
		return core.Track{}, fmt.Errorf("%w: song page %s", core.ErrExtraction, pageURL)
	}

	e.logger.Debug("Extracted song",
		zap.String("url", url),
		zap.String("titleTier", tier))

	return core.Track{Username: username, TrackTitle: title, URL: url}, nil
}

func (e *Extractor) songTitle(root *goquery.Selection) (title, tier string) {
	if title = selector.Attr(songOGTitle, root, "content"); title != "" {
		return title, "og"
	}
	if title = selector.Attr(songCardTitle, root, "content"); title != "" {
		return title, "twitter"
	}
	if title = selector.Text(songDocTitle, root); title != "" {
		return strings.TrimPrefix(title, docTitlePrefix), "document"
	}
	if title = selector.Text(songDOMTitle, root); title != "" {
		return title, "dom"
	}
	return "", "none"
}

// SongName returns a display name for the song page: its title, or the URL slug.
func (e *Extractor) SongName(doc *goquery.Document, pageURL string) string {
	if track, err := e.Song(doc, pageURL); err == nil {
		return track.TrackTitle
	}
	if slug := trackurl.Slug(pageURL); slug != "" {
		return slug
	}
	return fallbackSongName
}

// PlaylistName returns the last path segment of a set URL.
func PlaylistName(pageURL string) string {
	return trackurl.Slug(pageURL)
}

// Playlist extracts every track row of a set page. Rows with missing fields are kept
// with empty strings.
func (e *Extractor) Playlist(doc *goquery.Document, pageURL string) []core.Track {
	rows := selector.ResolveAll(PlaylistRows, doc.Selection)
	if !rows.Found() {
		e.logger.Warn("No playlist rows found", zap.String("pageURL", pageURL))
		return nil
	}

	e.logger.Debug("Found playlist rows",
		zap.String("selector", rows.Selector),
		zap.Int("count", rows.Len()))

	tracks := make([]core.Track, 0, rows.Len())
	rows.Selection.Each(func(_ int, row *goquery.Selection) {
		tracks = append(tracks, e.PlaylistRow(row, pageURL))
	})
	return tracks
}

// PlaylistRow maps one set row to a track without validating it.
func (e *Extractor) PlaylistRow(row *goquery.Selection, pageURL string) core.Track {
	titleEl := selector.Resolve(playlistTitle, row)

	var title, href string
	if titleEl.Found() {
		title = titleEl.Selection.Text()
		href, _ = titleEl.Selection.Attr("href")
	}

	return core.Track{
		Username:   cleanText(selector.Text(playlistUsername, row)),
		TrackTitle: cleanText(title),
		URL:        trackurl.Canonical(pageURL, href),
	}
}

// Artist extracts the track rows of a profile page, discarding rows without url or title.
func (e *Extractor) Artist(doc *goquery.Document, pageURL string) []core.Track {
	rows := selector.ResolveAll(ArtistRows, doc.Selection)
	if !rows.Found() {
		e.logger.Warn("No track rows found", zap.String("pageURL", pageURL))
		return nil
	}

	e.logger.Debug("Found track rows",
		zap.String("selector", rows.Selector),
		zap.Int("count", rows.Len()))

	var tracks []core.Track
	rows.Selection.Each(func(i int, row *goquery.Selection) {
		track, ok := e.ArtistRow(row, pageURL)
		if !ok {
			e.logger.Debug("Discarding row without url or title", zap.Int("row", i))
			return
		}
		tracks = append(tracks, track)
	})
	return tracks
}

// ArtistRow extracts one profile row. Each field falls back from its element, to an
// alternate element, to a value derived from the track or page URL.
func (e *Extractor) ArtistRow(row *goquery.Selection, pageURL string) (core.Track, bool) {
	url := trackurl.Canonical(pageURL, selector.Attr(artistLink, row, "href"))
	if url == "" {
		return core.Track{}, false
	}

	title := cleanText(selector.Text(artistTitle, row))
	if title == "" {
		title = trackurl.Slug(url)
	}

	username := cleanText(selector.Text(artistUsername, row))
	if username == "" {
		username = trackurl.Owner(url)
	}
	if username == "" {
		username = trackurl.Owner(pageURL)
	}

	track := core.Track{Username: username, TrackTitle: title, URL: url}
	return track, track.Valid()
}

// NeedsBatchConfirm reports whether count looks like an incompletely loaded list: a
// positive exact multiple of one of the site's batch sizes. It returns that batch size.
func NeedsBatchConfirm(count int) (int, bool) {
	if count <= 0 {
		return 0, false
	}
	for _, size := range core.BatchSizes {
		if count%size == 0 {
			return size, true
		}
	}
	return 0, false
}

// cleanText normalizes scraped text to NFKC and collapses whitespace.
func cleanText(text string) string {
	text = norm.NFKC.String(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
