// Package pagekind classifies SoundCloud pages by the shape of their URL path.
package pagekind

import (
	"net/url"
	"strings"
)

// Kind is the type of page currently displayed.
type Kind int

const (
	// Other is any page without an export button.
	Other Kind = iota
	// Song is a single track page: /{owner}/{slug}.
	Song
	// Playlist is a set page; any path containing a "sets" segment.
	Playlist
	// ArtistCollection is a profile page listing an artist's tracks: /{owner}.
	ArtistCollection
)

// playlistSegment marks set pages, including /discover/sets/... pages.
const playlistSegment = "sets"

var (
	// excludedSecondLevel are /{owner}/{x} pages that list tracks rather than show one.
	excludedSecondLevel = map[string]struct{}{
		"likes":          {},
		"tracks":         {},
		"albums":         {},
		"reposts":        {},
		"popular-tracks": {},
		"following":      {},
		"followers":      {},
	}

	// reservedTopLevel are site sections living at /{x} that are not artist profiles.
	reservedTopLevel = map[string]struct{}{
		"you":           {},
		"discover":      {},
		"search":        {},
		"settings":      {},
		"messages":      {},
		"notifications": {},
		"upload":        {},
		"pages":         {},
		"imprint":       {},
		"popular":       {},
		"charts":        {},
	}
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Song:
		return "song"
	case Playlist:
		return "playlist"
	case ArtistCollection:
		return "artist"
	default:
		return "other"
	}
}

// Classify determines the page kind from a URL path. It performs no DOM queries.
func Classify(path string) Kind {
	segments := Segments(path)

	for _, s := range segments {
		if s == playlistSegment {
			return Playlist
		}
	}

	switch len(segments) {
	case 1:
		if _, reserved := reservedTopLevel[strings.ToLower(segments[0])]; reserved {
			return Other
		}
		return ArtistCollection
	case 2:
		if _, excluded := excludedSecondLevel[strings.ToLower(segments[1])]; excluded {
			return Other
		}
		return Song
	default:
		return Other
	}
}

// ClassifyURL classifies the path of a full URL. Unparseable input is Other.
func ClassifyURL(rawURL string) Kind {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Other
	}
	return Classify(u.Path)
}

// Segments splits a path into its non-empty segments.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
