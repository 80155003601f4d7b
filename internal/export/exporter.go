package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"scexport/internal/core"
	"scexport/internal/extract"
	"scexport/internal/i18n"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) bool { return true })

// PromptConfirmer asks on a terminal and accepts "y" or "yes".
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm writes the prompt and reads one answer line.
func (p PromptConfirmer) Confirm(ctx context.Context, prompt string) bool {
	if ctx.Err() != nil {
		return false
	}
	_, _ = fmt.Fprintf(p.Out, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Exporter renders tracks and copies them to the clipboard, asking for confirmation when
// the track count suggests the list is still loading.
type Exporter struct {
	clipboard Clipboard
	confirmer Confirmer
	localizer *i18n.Localizer
	logger    *zap.Logger
}

// NewExporter creates an Exporter. A nil confirmer skips the batch gate.
func NewExporter(clip Clipboard, confirmer Confirmer, localizer *i18n.Localizer, logger *zap.Logger) *Exporter {
	return &Exporter{
		clipboard: clip,
		confirmer: confirmer,
		localizer: localizer,
		logger:    logger.Named("export"),
	}
}

// Export copies tracks extracted from a page. A track count matching a load batch asks for
// confirmation first, since the list may still be loading; the clipboard is only written when
// the gate passed.
func (e *Exporter) Export(ctx context.Context, format Format, tracks []core.Track, settings core.Settings) (string, error) {
	if len(tracks) == 0 {
		return "", fmt.Errorf("%w: nothing to export", core.ErrExtraction)
	}

	if err := e.gate(ctx, format, len(tracks)); err != nil {
		return "", err
	}
	return e.Copy(ctx, format, tracks, settings)
}

// Copy renders tracks in format and writes them to the clipboard without the batch gate.
// Used for lists that are complete by construction, like the collection.
func (e *Exporter) Copy(ctx context.Context, format Format, tracks []core.Track, settings core.Settings) (string, error) {
	if len(tracks) == 0 {
		return "", fmt.Errorf("%w: nothing to export", core.ErrExtraction)
	}

	text, err := Render(format, tracks, settings)
	if err != nil {
		return "", err
	}

	if err := e.clipboard.WriteText(ctx, text); err != nil {
		e.logger.Warn("Clipboard write failed",
			zap.String("format", string(format)),
			zap.Int("tracks", len(tracks)),
			zap.Error(err))
		return "", err
	}

	e.logger.Info("Exported tracks",
		zap.String("format", string(format)),
		zap.Int("tracks", len(tracks)))
	return text, nil
}

func (e *Exporter) gate(ctx context.Context, format Format, count int) error {
	if e.confirmer == nil {
		return nil
	}
	size, ok := extract.NeedsBatchConfirm(count)
	if !ok {
		return nil
	}

	e.logger.Debug("Track count matches a load batch",
		zap.Int("count", count),
		zap.Int("batchSize", size))

	if !e.confirmer.Confirm(ctx, e.BatchPrompt(format, count)) {
		return fmt.Errorf("%w: %d tracks not exported", core.ErrCancelled, count)
	}
	return nil
}

// BatchPrompt builds the localised incomplete-list warning.
func (e *Exporter) BatchPrompt(format Format, count int) string {
	sizes := make([]string, len(core.BatchSizes))
	for i, size := range core.BatchSizes {
		sizes[i] = strconv.Itoa(size)
	}

	gesture := e.localizer.T("format.gesture_click")
	action := e.localizer.T("format.action_export")
	if format != FormatJSON {
		gesture = e.localizer.T("format.gesture_long_press")
		action = e.localizer.T("format.action_export_urls")
	}

	return e.localizer.T("prompt.batch_warning",
		count,
		strings.Join(sizes, e.localizer.T("format.batch_sizes_join")),
		gesture,
		action,
		count)
}

// SuccessMessage returns the localised feedback for a completed export.
func (e *Exporter) SuccessMessage(format Format, count int) string {
	switch format {
	case FormatScript:
		return e.localizer.T("success.copied_script", count)
	case FormatList:
		return e.localizer.T("success.copied_list", count)
	default:
		return e.localizer.T("success.copied_json", count)
	}
}
