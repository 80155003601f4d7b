package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"scexport/internal/dom"
)

// DefaultRestoreDelay is how long feedback stays on a button.
const DefaultRestoreDelay = 2 * time.Second

// FeedbackKind is the outcome shown on a button.
type FeedbackKind string

const (
	// Success means the action completed.
	Success FeedbackKind = "success"
	// Error means the action failed.
	Error FeedbackKind = "error"
	// Warning means the action was declined or had no effect.
	Warning FeedbackKind = "warning"
)

var feedbackColors = map[FeedbackKind]string{
	Success: "#28a745",
	Error:   "#dc3545",
	Warning: "#ffc107",
}

// Feedback is a message shown inline on a button.
type Feedback struct {
	Kind    FeedbackKind
	Message string
}

// Style returns the inline style for the feedback state.
func (f Feedback) Style() string {
	return fmt.Sprintf("background: %s; color: #fff", feedbackColors[f.Kind])
}

// Mirror follows button changes made to the local page, e.g. on a live browser tab.
type Mirror interface {
	ShowFeedback(id string, fb Feedback)
	RestoreButton(id, label string)
}

// Feedbacker applies feedback to buttons and restores them after a delay.
type Feedbacker struct {
	page   *dom.Page
	clock  clock.Clock
	delay  time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	seq     uint64
	pending map[string]pendingRestore
	mirror  Mirror
}

// pendingRestore is the scheduled restore of one button. seq tells a superseded callback
// that already fired apart from the current one.
type pendingRestore struct {
	timer *clock.Timer
	seq   uint64
}

// NewFeedbacker creates a Feedbacker.
func NewFeedbacker(page *dom.Page, clk clock.Clock, delay time.Duration, logger *zap.Logger) *Feedbacker {
	return &Feedbacker{
		page:    page,
		clock:   clk,
		delay:   delay,
		logger:  logger.Named("feedback"),
		pending: make(map[string]pendingRestore),
	}
}

// SetMirror installs m. Nil removes it.
func (f *Feedbacker) SetMirror(m Mirror) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mirror = m
}

// Show replaces the button label with fb and schedules the restore. A newer Show on the
// same button replaces the pending restore. It reports whether the button was found.
func (f *Feedbacker) Show(id string, fb Feedback) bool {
	var shown bool
	f.page.Do(func(tx *dom.Tx) {
		shown = tx.Mutate(tx.ByID(id), func(btn *goquery.Selection) {
			btn.Find("." + LabelClass).SetText(fb.Message)
			btn.SetAttr("style", fb.Style())
			btn.SetAttr(FeedbackAttr, string(fb.Kind))
		})
	})
	if !shown {
		f.logger.Debug("Feedback target not on page", zap.String("id", id))
		return false
	}

	f.mu.Lock()
	if prev, ok := f.pending[id]; ok {
		prev.timer.Stop()
	}
	f.seq++
	seq := f.seq
	f.pending[id] = pendingRestore{
		timer: f.clock.AfterFunc(f.delay, func() { f.restore(id, seq) }),
		seq:   seq,
	}
	mirror := f.mirror
	f.mu.Unlock()

	if mirror != nil {
		mirror.ShowFeedback(id, fb)
	}
	return true
}

func (f *Feedbacker) restore(id string, seq uint64) {
	f.mu.Lock()
	if p, ok := f.pending[id]; !ok || p.seq != seq {
		f.mu.Unlock()
		return
	}
	delete(f.pending, id)
	mirror := f.mirror
	f.mu.Unlock()

	var label string
	f.page.Do(func(tx *dom.Tx) {
		tx.Mutate(tx.ByID(id), func(btn *goquery.Selection) {
			label = btn.AttrOr(LabelAttr, "")
			btn.Find("." + LabelClass).SetText(label)
			btn.RemoveAttr("style")
			btn.RemoveAttr(FeedbackAttr)
		})
	})

	if mirror != nil && label != "" {
		mirror.RestoreButton(id, label)
	}
}
