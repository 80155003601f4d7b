package export

import (
	"strings"
	"testing"

	"scexport/internal/core"
)

func tracks(urls ...string) []core.Track {
	out := make([]core.Track, len(urls))
	for i, u := range urls {
		out[i] = core.Track{Username: "user", TrackTitle: "title " + u, URL: u}
	}
	return out
}

func TestScript(t *testing.T) {
	tests := []struct {
		name     string
		urls     []string
		settings core.Settings
		want     string
	}{
		{
			name:     "line break after every second command",
			urls:     []string{"A", "B", "C"},
			settings: core.Settings{CommandName: "dl", CommandsPerLine: 2, Separator: "&&"},
			want:     "dl A && dl B &&\ndl C",
		},
		{
			name:     "exact multiple has no trailing separator",
			urls:     []string{"A", "B", "C", "D"},
			settings: core.Settings{CommandName: "dl", CommandsPerLine: 2, Separator: "&&"},
			want:     "dl A && dl B &&\ndl C && dl D",
		},
		{
			name:     "single command",
			urls:     []string{"A"},
			settings: core.DefaultSettings(),
			want:     "dl-soundcloud A",
		},
		{
			name:     "one per line",
			urls:     []string{"A", "B"},
			settings: core.Settings{CommandName: "get", CommandsPerLine: 1, Separator: ";"},
			want:     "get A ;\nget B",
		},
		{
			name:     "default settings keep five per line",
			urls:     []string{"1", "2", "3", "4", "5", "6"},
			settings: core.DefaultSettings(),
			want: "dl-soundcloud 1 && dl-soundcloud 2 && dl-soundcloud 3 && dl-soundcloud 4 && dl-soundcloud 5 &&\n" +
				"dl-soundcloud 6",
		},
		{
			name:     "no tracks",
			urls:     nil,
			settings: core.DefaultSettings(),
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Script(tracks(tt.urls...), tt.settings); got != tt.want {
				t.Errorf("Script() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJSONSingleTrackIsObject(t *testing.T) {
	got, err := JSON([]core.Track{{Username: "u", TrackTitle: "t", URL: "https://soundcloud.com/u/t"}})
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	want := "{\n  \"username\": \"u\",\n  \"trackTitle\": \"t\",\n  \"url\": \"https://soundcloud.com/u/t\"\n}"
	if got != want {
		t.Errorf("JSON() = %q, want %q", got, want)
	}
}

func TestJSONKeepsTextAsWritten(t *testing.T) {
	got, err := JSON([]core.Track{{
		Username:   "A & B",
		TrackTitle: "Drum & Bass <Live>",
		URL:        "https://soundcloud.com/a-b/dnb?x=1&y=2",
	}})
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	for _, want := range []string{
		`"username": "A & B"`,
		`"trackTitle": "Drum & Bass <Live>"`,
		`"url": "https://soundcloud.com/a-b/dnb?x=1&y=2"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON() = %q, missing %q", got, want)
		}
	}
	if strings.HasSuffix(got, "\n") {
		t.Errorf("JSON() should not end with a newline, got %q", got)
	}
}

func TestJSONManyTracksIsArray(t *testing.T) {
	got, err := JSON(tracks("a", "b"))
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	if !strings.HasPrefix(got, "[\n  {\n    \"username\"") {
		t.Errorf("JSON() should be an indented array, got %q", got)
	}
	if strings.Index(got, `"url": "a"`) > strings.Index(got, `"url": "b"`) {
		t.Errorf("JSON() should keep track order, got %q", got)
	}
}

func TestJSONEmpty(t *testing.T) {
	got, err := JSON(nil)
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	if got != "[]" {
		t.Errorf("JSON(nil) = %q, want []", got)
	}
}

func TestList(t *testing.T) {
	if got := List(tracks("a", "b", "c")); got != "a\nb\nc" {
		t.Errorf("List() = %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{" Script ", FormatScript, false},
		{"LIST", FormatList, false},
		{"csv", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if _, err := Render("xml", tracks("a"), core.DefaultSettings()); err == nil {
		t.Error("Render() should reject unknown formats")
	}
}
