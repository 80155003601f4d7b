// Package ui builds the export buttons and applies inline feedback to them.
package ui

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"scexport/internal/i18n"
)

const (
	// PlaylistButtonID is the set page header button.
	PlaylistButtonID = "soundcloud-get-info-sets-button"
	// SongButtonID is the song page toolbar button.
	SongButtonID = "soundcloud-get-info-song-button"
	// RowButtonPrefix prefixes the per-row button ids; the row index follows.
	RowButtonPrefix = "soundcloud-get-info-row-"

	// ButtonAttr marks injected buttons so a live page can route gestures back.
	ButtonAttr = "data-scexport-id"
	// LabelAttr keeps the resting label so feedback can be undone.
	LabelAttr = "data-scexport-label"
	// FeedbackAttr holds the active feedback kind.
	FeedbackAttr = "data-scexport-feedback"

	// LabelClass marks the span holding the button text.
	LabelClass = "sc-export-label"

	buttonClass = "sc-button-primary sc-button sc-button-medium sc-button-responsive sc-export-button"
)

// Role says what a button exports and what shift-click does on it.
type Role int

const (
	// RolePlaylist exports every row of a set; shift-click opens settings.
	RolePlaylist Role = iota
	// RoleSong exports the current song; shift-click adds it to the collection.
	RoleSong
	// RoleRow exports one row; shift-click adds it to the collection.
	RoleRow
)

func (r Role) String() string {
	switch r {
	case RolePlaylist:
		return "playlist"
	case RoleSong:
		return "song"
	case RoleRow:
		return "row"
	default:
		return "unknown"
	}
}

// Button describes one injected control.
type Button struct {
	ID   string
	Role Role
}

// Label returns the localised button text.
func (b Button) Label(l *i18n.Localizer) string {
	switch b.Role {
	case RolePlaylist:
		return l.T("button.playlist_label")
	case RoleSong:
		return l.T("button.song_label")
	default:
		return l.T("button.row_label")
	}
}

// Tooltip returns the localised gesture help.
func (b Button) Tooltip(l *i18n.Localizer) string {
	shift := l.T("button.shift_collection")
	if b.Role == RolePlaylist {
		shift = l.T("button.shift_settings")
	}
	return l.T("button.tooltip", b.Label(l), shift)
}

// Node builds the detached element for b.
func (b Button) Node(l *i18n.Localizer) *html.Node {
	label := b.Label(l)

	button := &html.Node{
		Type:     html.ElementNode,
		Data:     "button",
		DataAtom: atom.Button,
		Attr: []html.Attribute{
			{Key: "id", Val: b.ID},
			{Key: "type", Val: "button"},
			{Key: "class", Val: buttonClass},
			{Key: "title", Val: b.Tooltip(l)},
			{Key: "aria-label", Val: label},
			{Key: ButtonAttr, Val: b.ID},
			{Key: LabelAttr, Val: label},
		},
	}

	span := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: LabelClass},
			{Key: "style", Val: "vertical-align: middle"},
		},
	}
	span.AppendChild(&html.Node{Type: html.TextNode, Data: label})
	button.AppendChild(span)

	return button
}
