package pagekind

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected Kind
	}{
		// Playlists
		{name: "User set", path: "/artist/sets/summer-mix", expected: Playlist},
		{name: "Discover set", path: "/discover/sets/weekly::user", expected: Playlist},
		{name: "Set listing", path: "/artist/sets", expected: Playlist},
		{name: "Set with trailing slash", path: "/artist/sets/mix/", expected: Playlist},
		{name: "Deep set path", path: "/a/b/c/sets/d/e", expected: Playlist},

		// Songs
		{name: "Track page", path: "/artist/song-a", expected: Song},
		{name: "Track page trailing slash", path: "/artist/song-a/", expected: Song},
		{name: "Track slug containing excluded word", path: "/artist/likes-and-loves", expected: Song},
		{name: "Likes", path: "/user/likes", expected: Other},
		{name: "Tracks", path: "/user/tracks", expected: Other},
		{name: "Albums", path: "/user/albums", expected: Other},
		{name: "Reposts", path: "/user/reposts", expected: Other},
		{name: "Popular tracks", path: "/user/popular-tracks", expected: Other},
		{name: "Following", path: "/user/following", expected: Other},
		{name: "Followers", path: "/user/followers", expected: Other},
		{name: "Followers uppercase", path: "/user/Followers", expected: Other},

		// Artist collections
		{name: "Artist profile", path: "/artist", expected: ArtistCollection},
		{name: "Artist profile trailing slash", path: "/artist/", expected: ArtistCollection},
		{name: "Artist named like a second-level page", path: "/likes", expected: ArtistCollection},
		{name: "You", path: "/you", expected: Other},
		{name: "Discover", path: "/discover", expected: Other},
		{name: "Search", path: "/search", expected: Other},
		{name: "Settings", path: "/settings", expected: Other},
		{name: "Messages", path: "/messages", expected: Other},
		{name: "Notifications", path: "/notifications", expected: Other},
		{name: "Upload", path: "/upload", expected: Other},
		{name: "Pages", path: "/pages", expected: Other},
		{name: "Imprint", path: "/imprint", expected: Other},
		{name: "Popular", path: "/popular", expected: Other},
		{name: "Charts", path: "/charts", expected: Other},
		{name: "Reserved word is case-insensitive", path: "/Discover", expected: Other},

		// Other
		{name: "Root", path: "/", expected: Other},
		{name: "Empty", path: "", expected: Other},
		{name: "Three segments", path: "/you/library/history", expected: Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Classify(tt.path); result != tt.expected {
				t.Errorf("Classify(%q) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}

func TestClassify_AnySingleNonReservedSegmentIsArtist(t *testing.T) {
	for _, name := range []string{"a", "dj-x", "user-123456", "Some_Artist"} {
		if result := Classify("/" + name); result != ArtistCollection {
			t.Errorf("Classify(/%s) = %v, expected artist", name, result)
		}
	}
}

func TestClassifyURL(t *testing.T) {
	tests := []struct {
		url      string
		expected Kind
	}{
		{url: "https://soundcloud.com/artist/song?in=artist/sets/x", expected: Song},
		{url: "https://soundcloud.com/artist/sets/x?si=abc", expected: Playlist},
		{url: "https://soundcloud.com/artist", expected: ArtistCollection},
		{url: "https://soundcloud.com/", expected: Other},
		{url: "://bad", expected: Other},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if result := ClassifyURL(tt.url); result != tt.expected {
				t.Errorf("ClassifyURL(%q) = %v, expected %v", tt.url, result, tt.expected)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	expected := map[Kind]string{Song: "song", Playlist: "playlist", ArtistCollection: "artist", Other: "other"}
	for kind, name := range expected {
		if kind.String() != name {
			t.Errorf("%d.String() = %q, expected %q", kind, kind.String(), name)
		}
	}
}
