package core

import (
	"strings"
)

const (
	// SettingsKey is the storage key holding the exporter settings.
	SettingsKey = "soundcloud-extension-settings"
	// CollectionKey is the storage key holding the track collection.
	CollectionKey = "soundcloud-extension-collection"
)

// Track is a single track scraped from a rendered page.
// Field order matters: it is the JSON export order.
type Track struct {
	Username   string `json:"username"`
	TrackTitle string `json:"trackTitle"`
	URL        string `json:"url"`
}

// Valid reports whether the track has the fields required downstream.
func (t Track) Valid() bool {
	return strings.TrimSpace(t.URL) != "" && strings.TrimSpace(t.TrackTitle) != ""
}

// Settings holds the user-configurable batch script options.
type Settings struct {
	CommandName     string `json:"commandName"`
	CommandsPerLine int    `json:"commandsPerLine"`
	Separator       string `json:"separator"`
}

const (
	// DefaultCommandName is the command prefixed to each URL in script exports.
	DefaultCommandName = "dl-soundcloud"
	// DefaultCommandsPerLine is how many commands share one script line.
	DefaultCommandsPerLine = 5
	// DefaultSeparator joins commands within a script.
	DefaultSeparator = "&&"

	// MinCommandsPerLine and MaxCommandsPerLine bound Settings.CommandsPerLine.
	MinCommandsPerLine = 1
	MaxCommandsPerLine = 100
)

// DefaultSettings returns the settings used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		CommandName:     DefaultCommandName,
		CommandsPerLine: DefaultCommandsPerLine,
		Separator:       DefaultSeparator,
	}
}

// BatchSizes are the row increments the site loads lists in.
var BatchSizes = []int{15, 30}
