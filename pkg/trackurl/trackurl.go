// Package trackurl provides URL and title helpers for SoundCloud track links.
package trackurl

import (
	"net/url"
	"strings"
)

const (
	// bySeparator separates the track title from the artist in page titles.
	bySeparator = " by "
	// byExpectedSplitParts is the expected number of parts when splitting a title by " by ".
	byExpectedSplitParts = 2
)

// titleSuffixes are appended by the site to document titles after the artist name.
var titleSuffixes = []string{
	" | Listen online for free on SoundCloud",
	" | SoundCloud",
	" on SoundCloud",
}

// IsSoundCloud checks if the URL points at a SoundCloud host.
func IsSoundCloud(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	hostname := strings.ToLower(u.Hostname())
	// Support main, mobile, and short link domains.
	switch hostname {
	case "soundcloud.com", "www.soundcloud.com", "m.soundcloud.com", "on.soundcloud.com":
		return true
	}
	return false
}

// StripQuery removes a "?..." suffix, leaving the canonical resource URL.
func StripQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// Canonical resolves href against base and cuts it at the first "?". A fragment without a
// query is kept. Empty or unparseable hrefs yield an empty string.
func Canonical(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	if !ref.IsAbs() && base != "" {
		b, err := url.Parse(base)
		if err == nil {
			ref = b.ResolveReference(ref)
		}
	}

	return StripQuery(ref.String())
}

// Segments returns the non-empty path segments of a URL.
func Segments(rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// Owner returns the first path segment, the account that owns the resource.
func Owner(rawURL string) string {
	segments := Segments(rawURL)
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}

// Slug returns the last path segment.
func Slug(rawURL string) string {
	segments := Segments(rawURL)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// SplitTitle separates "Track Title by Artist Name" into its parts.
// Titles without the separator are returned whole with an empty artist.
func SplitTitle(full string) (title, artist string) {
	full = strings.TrimSpace(full)
	for _, suffix := range titleSuffixes {
		full = strings.TrimSpace(strings.TrimSuffix(full, suffix))
	}

	if strings.Contains(full, bySeparator) {
		parts := strings.SplitN(full, bySeparator, byExpectedSplitParts)
		if len(parts) == byExpectedSplitParts {
			return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		}
	}

	return full, ""
}
