package extract

import "scexport/pkg/selector"

// SoundCloud DOM selectors.
// These are isolated here because the site changes its markup frequently.
// Update these when extraction breaks.

var (
	// Song page metadata, tier 1 (OpenGraph) then tier 2 (Twitter card).
	songURLMeta   = selector.Chain{`meta[property="og:url"]`, `meta[name="twitter:url"]`}
	songOGTitle   = selector.Chain{`meta[property="og:title"]`}
	songCardTitle = selector.Chain{`meta[name="twitter:title"]`}
	songDocTitle  = selector.Chain{`head > title`, `title`}
	songDOMTitle  = selector.Chain{`.soundTitle__title`, `h1[itemprop="name"]`}
	songUsername  = selector.Chain{`.soundTitle__username a`, `.soundTitle__username`}

	// PlaylistRows are the track rows of a set page, one family per layout.
	PlaylistRows = selector.Chain{
		`li.trackList__item`,
		`.trackList__item`,
		`li.systemPlaylistTrackList__item`,
		`.compactTrackList__item`,
	}
	playlistUsername = selector.Chain{`.trackItem__username`}
	playlistTitle    = selector.Chain{`.trackItem__trackTitle`, `a.trackItem__trackTitle`}

	// ArtistRows are the track rows of profile pages, feeds, and embedded lists.
	ArtistRows = selector.Chain{
		`li.compactTrackList__item`,
		`.soundList__item`,
		`.trackItem`,
		`li[class*="soundList__item"]`,
		`article[class*="trackItem"]`,
	}
	artistLink     = selector.Chain{`a.soundTitle__title`, `a[itemprop="url"]`, `a[href*="/"]`}
	artistTitle    = selector.Chain{`.soundTitle__title`, `a[itemprop="url"]`}
	artistUsername = selector.Chain{`.soundTitle__username`}
)

// Button containers.
var (
	// PlaylistToolbar is the set page header toolbar.
	PlaylistToolbar = selector.Chain{
		`.soundActions.sc-button-toolbar`,
		`.soundActions`,
		`.listenEngagement__footer .soundActions`,
		`div[class*="soundActions"]`,
	}
	// SongToolbar is the song page engagement toolbar.
	SongToolbar = selector.Chain{
		`.listenEngagement__footer .soundActions`,
		`.soundActions.sc-button-toolbar`,
		`.soundActions`,
		`div[class*="soundActions"]`,
	}
	// RowActions is the action group inside one track row.
	RowActions = selector.Chain{
		`.trackItem__actions`,
		`.sc-button-toolbar`,
		`.soundActions`,
		`.sound__footerRight`,
	}
	// ToolbarDiagnostics are counted when no toolbar is found.
	ToolbarDiagnostics = selector.Chain{
		`.soundActions`,
		`.sc-button-toolbar`,
		`[class*="soundActions"]`,
		`.soundActions__group`,
	}
)
