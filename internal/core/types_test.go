package core

import (
	"encoding/json"
	"testing"
)

func TestTrack_Valid(t *testing.T) {
	tests := []struct {
		name     string
		track    Track
		expected bool
	}{
		{
			name:     "All fields present",
			track:    Track{Username: "Artist", TrackTitle: "Song", URL: "https://soundcloud.com/a/song"},
			expected: true,
		},
		{
			name:     "Username missing is still valid",
			track:    Track{TrackTitle: "Song", URL: "https://soundcloud.com/a/song"},
			expected: true,
		},
		{
			name:     "Missing URL",
			track:    Track{Username: "Artist", TrackTitle: "Song"},
			expected: false,
		},
		{
			name:     "Whitespace title",
			track:    Track{Username: "Artist", TrackTitle: "   ", URL: "https://soundcloud.com/a/song"},
			expected: false,
		},
		{
			name:     "Default zero values",
			track:    Track{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.track.Valid(); result != tt.expected {
				t.Errorf("Valid() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestTrack_JSONFieldOrder(t *testing.T) {
	data, err := json.Marshal(Track{Username: "u", TrackTitle: "t", URL: "l"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	expected := `{"username":"u","trackTitle":"t","url":"l"}`
	if string(data) != expected {
		t.Errorf("Marshal() = %s, expected %s", data, expected)
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.CommandName != DefaultCommandName || s.CommandsPerLine != DefaultCommandsPerLine || s.Separator != DefaultSeparator {
		t.Errorf("DefaultSettings() = %+v", s)
	}
}
