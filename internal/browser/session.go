// Package browser mirrors a live Chrome tab into a dom.Page and carries mounts, button
// feedback and presses between the two.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"scexport/internal/core"
	"scexport/internal/dom"
	"scexport/internal/export"
	"scexport/internal/inject"
	"scexport/internal/ui"
)

const readTimeout = 10 * time.Second

// Presser handles button presses reported by the live page.
type Presser interface {
	Press(ctx context.Context, id string, held time.Duration, shift bool) (ui.Feedback, bool)
}

// Session is one Chrome tab driven through chromedp.
type Session struct {
	config core.BrowserConfig
	page   *dom.Page
	logger *zap.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	mu       sync.Mutex
	presser  Presser
	lastHTML string
}

var (
	_ inject.Sink      = (*Session)(nil)
	_ ui.Mirror        = (*Session)(nil)
	_ export.Confirmer = (*Session)(nil)
)

// Open starts Chrome and prepares the tab to report button presses. The browser lives
// until ctx is cancelled or Close is called.
func Open(ctx context.Context, config core.BrowserConfig, page *dom.Page, logger *zap.Logger) (*Session, error) {
	logger = logger.Named("browser")

	opts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	if config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(config.ExecPath))
	}
	if !config.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	opts = append(opts, chromedp.WindowSize(1920, 1080))

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, v ...interface{}) {
			logger.Debug(fmt.Sprintf(format, v...))
		}),
	)

	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start Chrome: %w", err)
	}

	s := &Session{
		config:      config,
		page:        page,
		logger:      logger,
		ctx:         browserCtx,
		cancel:      cancel,
		allocCancel: allocCancel,
	}

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		called, ok := ev.(*runtime.EventBindingCalled)
		if !ok || called.Name != bindingName {
			return
		}
		// Listeners must not block the event loop.
		go s.handlePress(called.Payload)
	})

	listener := listenerScript()
	err := chromedp.Run(browserCtx,
		runtime.AddBinding(bindingName),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := cdppage.AddScriptToEvaluateOnNewDocument(listener).Do(ctx)
			return err
		}),
	)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to install press listener: %w", err)
	}

	logger.Info("Chrome started",
		zap.Bool("headless", config.Headless),
		zap.String("execPath", config.ExecPath))
	return s, nil
}

// SetPresser installs the handler for button presses.
func (s *Session) SetPresser(p Presser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presser = p
}

// Navigate loads rawURL in the tab and mirrors the result.
func (s *Session) Navigate(rawURL string) error {
	if err := chromedp.Run(s.ctx, chromedp.Navigate(rawURL)); err != nil {
		if s.ctx.Err() != nil {
			return fmt.Errorf("browser closed: %w", s.ctx.Err())
		}
		return fmt.Errorf("failed to navigate to %s: %w", rawURL, err)
	}
	return s.Sync()
}

// Sync copies the live URL and document into the local page. A URL change replaces both
// together; otherwise the document is replaced only when it changed.
func (s *Session) Sync() error {
	ctx, cancel := context.WithTimeout(s.ctx, readTimeout)
	defer cancel()

	var location, markup string
	err := chromedp.Run(ctx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to read live page: %w", err)
	}

	s.mu.Lock()
	unchanged := markup == s.lastHTML
	s.lastHTML = markup
	s.mu.Unlock()

	if location != s.page.URL() {
		s.logger.Debug("Live page moved", zap.String("url", location))
		return s.page.Navigate(location, strings.NewReader(markup))
	}
	if unchanged {
		return nil
	}
	return s.page.Render(strings.NewReader(markup))
}

// Run syncs the tab every SyncInterval until ctx is cancelled or the browser goes away.
func (s *Session) Run(ctx context.Context) error {
	interval := s.config.SyncInterval
	if interval <= 0 {
		interval = core.DefaultSyncInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ctx.Done():
			return errors.New("browser closed")
		case <-ticker.C:
			if err := s.Sync(); err != nil {
				s.logger.Warn("Sync failed", zap.Error(err))
			}
		}
	}
}

// Mounted inserts a mounted element into the live tab.
func (s *Session) Mounted(ev inject.MountEvent) {
	markup, err := renderNode(ev.Node)
	if err != nil {
		s.logger.Warn("Failed to render mounted element", zap.String("id", ev.ID), zap.Error(err))
		return
	}

	var present bool
	if err := s.eval(mountScript(ev, markup), &present); err != nil {
		s.logger.Warn("Failed to mount on live page", zap.String("id", ev.ID), zap.Error(err))
		return
	}
	if !present {
		s.logger.Debug("Live container missing",
			zap.String("id", ev.ID),
			zap.String("selector", ev.ContainerSelector))
	}
}

// ShowFeedback applies fb to the live button.
func (s *Session) ShowFeedback(id string, fb ui.Feedback) {
	s.button(id, buttonScript(id, fb.Message, fb.Style(), fb.Kind))
}

// RestoreButton puts the resting label back on the live button.
func (s *Session) RestoreButton(id, label string) {
	s.button(id, buttonScript(id, label, "", ""))
}

// Confirm asks through a dialog in the tab.
func (s *Session) Confirm(_ context.Context, prompt string) bool {
	var ok bool
	if err := s.eval(confirmScript(prompt), &ok); err != nil {
		s.logger.Warn("Confirmation dialog failed", zap.Error(err))
		return false
	}
	return ok
}

// Close shuts the tab and the browser.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

func (s *Session) button(id, script string) {
	var found bool
	if err := s.eval(script, &found); err != nil {
		s.logger.Warn("Failed to update live button", zap.String("id", id), zap.Error(err))
		return
	}
	if !found {
		s.logger.Debug("Live button missing", zap.String("id", id))
	}
}

func (s *Session) eval(script string, res interface{}) error {
	return chromedp.Run(s.ctx, chromedp.Evaluate(script, res))
}

func (s *Session) handlePress(payload string) {
	p, err := parsePress(payload)
	if err != nil {
		s.logger.Warn("Ignoring press", zap.String("payload", payload), zap.Error(err))
		return
	}

	s.mu.Lock()
	presser := s.presser
	s.mu.Unlock()
	if presser == nil {
		return
	}

	// Bring the local page up to date so extraction sees what the user saw.
	if err := s.Sync(); err != nil {
		s.logger.Warn("Sync before press failed", zap.Error(err))
	}
	presser.Press(s.ctx, p.ID, p.held(), p.Shift)
}
