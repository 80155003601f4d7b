package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"scexport/internal/dom"
	"scexport/internal/i18n"
)

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

func TestButtonNode(t *testing.T) {
	l := i18n.NewLocalizer(i18n.DefaultLanguage)

	tests := []struct {
		name   string
		button Button
		want   []string
	}{
		{
			name:   "playlist header",
			button: Button{ID: PlaylistButtonID, Role: RolePlaylist},
			want:   []string{`id="soundcloud-get-info-sets-button"`, `type="button"`, ">Sets info</span>", "Shift+Click: Settings"},
		},
		{
			name:   "song",
			button: Button{ID: SongButtonID, Role: RoleSong},
			want:   []string{">Song info</span>", "Shift+Click: Add to collection"},
		},
		{
			name:   "row",
			button: Button{ID: RowButtonPrefix + "3", Role: RoleRow},
			want:   []string{`data-scexport-id="soundcloud-get-info-row-3"`, `data-scexport-label="Copy"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, tt.button.Node(l))
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("button markup missing %q: %s", want, out)
				}
			}
		})
	}
}

func TestClassifyGesture(t *testing.T) {
	threshold := 600 * time.Millisecond
	tests := []struct {
		held  time.Duration
		shift bool
		want  Gesture
	}{
		{100 * time.Millisecond, false, Click},
		{599 * time.Millisecond, false, Click},
		{600 * time.Millisecond, false, LongPress},
		{2 * time.Second, false, LongPress},
		{100 * time.Millisecond, true, ShiftClick},
		{2 * time.Second, true, ShiftClick},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := ClassifyGesture(tt.held, tt.shift, threshold); got != tt.want {
				t.Errorf("ClassifyGesture(%v, %v) = %v, want %v", tt.held, tt.shift, got, tt.want)
			}
		})
	}
}

type recordingMirror struct {
	mu       sync.Mutex
	shown    []string
	restored []string
}

func (m *recordingMirror) ShowFeedback(id string, fb Feedback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shown = append(m.shown, id+":"+fb.Message)
}

func (m *recordingMirror) RestoreButton(id, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restored = append(m.restored, id+":"+label)
}

func (m *recordingMirror) calls() (shown, restored []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.shown...), append([]string(nil), m.restored...)
}

// waitFor polls cond, since mock clock callbacks run on their own goroutine.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func pendingRestores(f *Feedbacker) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func TestFeedbackShowAndRestore(t *testing.T) {
	l := i18n.NewLocalizer(i18n.DefaultLanguage)
	page, err := dom.NewPageFromHTML("https://soundcloud.com/a/sets/b", `<div class="soundActions"></div>`)
	if err != nil {
		t.Fatalf("NewPageFromHTML failed: %v", err)
	}
	page.Do(func(tx *dom.Tx) {
		tx.Append(tx.Doc().Find(".soundActions"), Button{ID: PlaylistButtonID, Role: RolePlaylist}.Node(l))
	})

	clk := clock.NewMock()
	mirror := &recordingMirror{}
	fb := NewFeedbacker(page, clk, DefaultRestoreDelay, zap.NewNop())
	fb.SetMirror(mirror)

	if !fb.Show(PlaylistButtonID, Feedback{Kind: Success, Message: "✅ Copied 3 tracks"}) {
		t.Fatal("Show() should find the button")
	}

	labelOf := func() (string, string) {
		var text, style string
		page.Do(func(tx *dom.Tx) {
			btn := tx.ByID(PlaylistButtonID)
			text = btn.Find("." + LabelClass).Text()
			style = btn.AttrOr("style", "")
		})
		return text, style
	}

	if text, style := labelOf(); text != "✅ Copied 3 tracks" || !strings.Contains(style, "#28a745") {
		t.Errorf("during feedback: text %q style %q", text, style)
	}

	clk.Add(DefaultRestoreDelay - time.Millisecond)
	if text, _ := labelOf(); text != "✅ Copied 3 tracks" {
		t.Errorf("restored too early: %q", text)
	}

	clk.Add(time.Millisecond)
	waitFor(t, "restore", func() bool { return pendingRestores(fb) == 0 })
	if text, style := labelOf(); text != "Sets info" || style != "" {
		t.Errorf("after restore: text %q style %q", text, style)
	}

	waitFor(t, "mirror restore", func() bool {
		_, restored := mirror.calls()
		return len(restored) == 1
	})
	shown, restored := mirror.calls()
	if len(shown) != 1 || restored[0] != PlaylistButtonID+":Sets info" {
		t.Errorf("mirror calls: shown %v restored %v", shown, restored)
	}
}

func TestFeedbackReplacesPendingRestore(t *testing.T) {
	l := i18n.NewLocalizer(i18n.DefaultLanguage)
	page, _ := dom.NewPageFromHTML("https://soundcloud.com/a/b", `<div class="soundActions"></div>`)
	page.Do(func(tx *dom.Tx) {
		tx.Append(tx.Doc().Find(".soundActions"), Button{ID: SongButtonID, Role: RoleSong}.Node(l))
	})

	clk := clock.NewMock()
	fb := NewFeedbacker(page, clk, DefaultRestoreDelay, zap.NewNop())

	textOf := func() string {
		var text string
		page.Do(func(tx *dom.Tx) { text = tx.ByID(SongButtonID).Text() })
		return text
	}

	fb.Show(SongButtonID, Feedback{Kind: Error, Message: "first"})
	clk.Add(time.Second)
	fb.Show(SongButtonID, Feedback{Kind: Warning, Message: "second"})
	clk.Add(time.Second + time.Millisecond)

	if text := textOf(); text != "second" {
		t.Errorf("first restore should have been cancelled, got %q", text)
	}
	if n := pendingRestores(fb); n != 1 {
		t.Errorf("pending restores = %d, want 1", n)
	}

	clk.Add(time.Second)
	waitFor(t, "second restore", func() bool { return pendingRestores(fb) == 0 })
	if text := textOf(); text != "Song info" {
		t.Errorf("after restore: text %q", text)
	}
}

func TestFeedbackMissingButton(t *testing.T) {
	page, _ := dom.NewPageFromHTML("https://soundcloud.com/a/b", `<div></div>`)
	fb := NewFeedbacker(page, clock.NewMock(), DefaultRestoreDelay, zap.NewNop())

	if fb.Show("nope", Feedback{Kind: Error, Message: "x"}) {
		t.Error("Show() on a missing button should return false")
	}
}
