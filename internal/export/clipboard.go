package export

import (
	"context"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"

	"scexport/internal/core"
)

// Clipboard receives exported text. A write either completes or fails; it is never retried.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// SystemClipboard writes to the operating system clipboard.
type SystemClipboard struct{}

// WriteText copies text to the system clipboard.
func (SystemClipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrClipboard, err)
	}
	if clipboard.Unsupported {
		return fmt.Errorf("%w: no clipboard utility available", core.ErrClipboard)
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %w", core.ErrClipboard, err)
	}
	return nil
}

// MemoryClipboard keeps the last written text. Used by the CLI's stdout mode and tests.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
	Err  error // Returned from every write when set.
}

// WriteText stores text, or fails with Err.
func (c *MemoryClipboard) WriteText(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return fmt.Errorf("%w: %w", core.ErrClipboard, c.Err)
	}
	c.text = text
	return nil
}

// Text returns the last written text.
func (c *MemoryClipboard) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}
