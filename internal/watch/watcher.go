// Package watch detects client-side navigation by comparing the page URL on every
// mutation batch.
package watch

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"scexport/internal/dom"
)

// URLSource reports the current page URL.
type URLSource interface {
	URL() string
}

// State is the last URL the watcher acted on.
type State struct {
	mu      sync.Mutex
	lastURL string
}

// NewState creates a State seeded with the URL the page was initialised for.
func NewState(initial string) *State {
	return &State{lastURL: initial}
}

// Last returns the last seen URL.
func (s *State) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastURL
}

// swap stores url and reports whether it differs from the previous value.
func (s *State) swap(url string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if url == s.lastURL {
		return s.lastURL, false
	}
	prev := s.lastURL
	s.lastURL = url
	return prev, true
}

// Watcher calls onChange once per URL change.
type Watcher struct {
	page     URLSource
	state    *State
	onChange func(ctx context.Context, url string)
	logger   *zap.Logger
}

// New creates a Watcher.
func New(page URLSource, state *State, onChange func(ctx context.Context, url string), logger *zap.Logger) *Watcher {
	return &Watcher{
		page:     page,
		state:    state,
		onChange: onChange,
		logger:   logger.Named("watch"),
	}
}

// Check compares the page URL with the last seen one and fires onChange when it changed.
func (w *Watcher) Check(ctx context.Context) bool {
	url := w.page.URL()
	prev, changed := w.state.swap(url)
	if !changed {
		return false
	}

	w.logger.Info("Navigation detected",
		zap.String("from", prev),
		zap.String("to", url))
	w.onChange(ctx, url)
	return true
}

// Run checks on every batch until ctx is done or batches is closed.
func (w *Watcher) Run(ctx context.Context, batches <-chan dom.Batch) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-batches:
			if !ok {
				return nil
			}
			w.Check(ctx)
		}
	}
}
