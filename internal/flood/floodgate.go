// Package flood limits how often a button can trigger its action.
package flood

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	// windowDuration is the fixed time window for press counting (always 1 minute)
	windowDuration = 60 * time.Second
	// idleTimeout is how long before we drop entries of buttons nobody presses
	idleTimeout = 10 * time.Minute
)

// Floodgate provides per-page, per-button press limiting with a sliding window.
type Floodgate struct {
	limitPerMinute int               // Maximum presses per button per minute
	clock          clock.Clock
	entries        map[string]*entry // Key: "pageURL|buttonID"
	lastCleanup    time.Time
	mutex          sync.RWMutex
}

// entry tracks press timestamps for one button on one page
type entry struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// New creates a Floodgate allowing limitPerMinute presses per button and minute.
// A limit of zero or less disables limiting.
func New(limitPerMinute int, clk clock.Clock) *Floodgate {
	return &Floodgate{
		limitPerMinute: limitPerMinute,
		clock:          clk,
		entries:        make(map[string]*entry),
		lastCleanup:    clk.Now(),
	}
}

// CheckPress reports whether a press of buttonID on pageURL should run its action.
func (fg *Floodgate) CheckPress(pageURL, buttonID string) bool {
	if fg.limitPerMinute <= 0 {
		return true
	}

	key := pageURL + "|" + buttonID
	now := fg.clock.Now()

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	if now.Sub(fg.lastCleanup) >= idleTimeout {
		fg.cleanupLocked(now)
	}

	e, exists := fg.entries[key]
	if !exists {
		e = &entry{
			timestamps: make([]time.Time, 0, fg.limitPerMinute+1),
		}
		fg.entries[key] = e
	}
	e.lastSeen = now

	windowStart := now.Add(-windowDuration)
	valid := e.timestamps[:0]
	for _, ts := range e.timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	e.timestamps = valid

	if len(e.timestamps) >= fg.limitPerMinute {
		return false
	}

	e.timestamps = append(e.timestamps, now)
	return true
}

// cleanupLocked removes entries that have been idle for too long
func (fg *Floodgate) cleanupLocked(now time.Time) {
	cutoff := now.Add(-idleTimeout)
	for key, e := range fg.entries {
		if e.lastSeen.Before(cutoff) {
			delete(fg.entries, key)
		}
	}
	fg.lastCleanup = now
}

// GetStats returns statistics about the floodgate for monitoring/debugging
func (fg *Floodgate) GetStats() Stats {
	fg.mutex.RLock()
	defer fg.mutex.RUnlock()

	return Stats{
		ActiveButtons:  len(fg.entries),
		LimitPerMinute: fg.limitPerMinute,
		WindowSeconds:  int(windowDuration.Seconds()),
	}
}

// Stats contains floodgate statistics
type Stats struct {
	ActiveButtons  int `json:"active_buttons"`
	LimitPerMinute int `json:"limit_per_minute"`
	WindowSeconds  int `json:"window_seconds"`
}
