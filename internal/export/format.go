// Package export formats tracks for the clipboard and performs the copy.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"scexport/internal/core"
)

// Format selects the clipboard representation of the tracks.
type Format string

const (
	// FormatJSON is the pretty-printed track records.
	FormatJSON Format = "json"
	// FormatScript is the batch download script built from the settings.
	FormatScript Format = "script"
	// FormatList is one URL per line.
	FormatList Format = "list"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatScript, FormatList:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (json, script, list)", name)
	}
}

// Render produces the clipboard text for tracks in the given format.
func Render(format Format, tracks []core.Track, settings core.Settings) (string, error) {
	switch format {
	case FormatJSON:
		return JSON(tracks)
	case FormatScript:
		return Script(tracks, settings), nil
	case FormatList:
		return List(tracks), nil
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
}

// JSON pretty-prints the tracks with text kept as written. A single track is emitted as an
// object, not an array.
func JSON(tracks []core.Track) (string, error) {
	var v interface{} = tracks
	if len(tracks) == 1 {
		v = tracks[0]
	}
	if tracks == nil {
		v = []core.Track{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode tracks: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Script joins "<command> <url>" pairs with " <separator> ", breaking the line after every
// CommandsPerLine commands. Nothing follows the final command.
func Script(tracks []core.Track, settings core.Settings) string {
	perLine := settings.CommandsPerLine
	if perLine < core.MinCommandsPerLine {
		perLine = core.MinCommandsPerLine
	}

	var b strings.Builder
	last := len(tracks) - 1
	for i, track := range tracks {
		fmt.Fprintf(&b, "%s %s", settings.CommandName, track.URL)
		switch {
		case i == last:
		case (i+1)%perLine == 0:
			fmt.Fprintf(&b, " %s\n", settings.Separator)
		default:
			fmt.Fprintf(&b, " %s ", settings.Separator)
		}
	}
	return b.String()
}

// List returns one URL per line.
func List(tracks []core.Track) string {
	urls := make([]string, len(tracks))
	for i, track := range tracks {
		urls[i] = track.URL
	}
	return strings.Join(urls, "\n")
}
