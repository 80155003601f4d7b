// Package app wires page classification, button mounting and button actions together.
package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"scexport/internal/core"
	"scexport/internal/dom"
	"scexport/internal/export"
	"scexport/internal/extract"
	"scexport/internal/flood"
	"scexport/internal/i18n"
	"scexport/internal/inject"
	"scexport/internal/settings"
	"scexport/internal/store"
	"scexport/internal/ui"
	"scexport/pkg/pagekind"
	"scexport/pkg/selector"
)

// Recorder counts application events.
type Recorder interface {
	RecordNavigation()
	RecordExtraction(kind, status string)
	RecordExport(format, status string)
	SetCollectionSize(size int)
}

type nopRecorder struct{}

func (nopRecorder) RecordNavigation() {}
func (nopRecorder) RecordExtraction(string, string) {}
func (nopRecorder) RecordExport(string, string) {}
func (nopRecorder) SetCollectionSize(int) {}

// Options are the collaborators of an App.
type Options struct {
	Page       *dom.Page
	Extractor  *extract.Extractor
	Exporter   *export.Exporter
	Settings   *settings.Manager
	Collection *store.Collection
	Scheduler  *inject.Scheduler
	Feedback   *ui.Feedbacker
	Localizer  *i18n.Localizer
	LongPress  time.Duration
	Recorder   Recorder
	// Floodgate limits presses per button. Nil disables limiting.
	Floodgate *flood.Floodgate
	// OpenSettings handles shift-click on the set header button.
	OpenSettings func(ctx context.Context)
	Logger       *zap.Logger
}

// App reacts to navigation and button presses on one page.
type App struct {
	page         *dom.Page
	extractor    *extract.Extractor
	exporter     *export.Exporter
	settings     *settings.Manager
	collection   *store.Collection
	scheduler    *inject.Scheduler
	feedback     *ui.Feedbacker
	localizer    *i18n.Localizer
	longPress    time.Duration
	recorder     Recorder
	floodgate    *flood.Floodgate
	openSettings func(ctx context.Context)
	logger       *zap.Logger
}

// New creates an App.
func New(opts Options) *App {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	longPress := opts.LongPress
	if longPress <= 0 {
		longPress = core.DefaultLongPress
	}

	return &App{
		page:         opts.Page,
		extractor:    opts.Extractor,
		exporter:     opts.Exporter,
		settings:     opts.Settings,
		collection:   opts.Collection,
		scheduler:    opts.Scheduler,
		feedback:     opts.Feedback,
		localizer:    opts.Localizer,
		longPress:    longPress,
		recorder:     recorder,
		floodgate:    opts.Floodgate,
		openSettings: opts.OpenSettings,
		logger:       opts.Logger.Named("app"),
	}
}

// Init handles the page the app was started on.
func (a *App) Init(ctx context.Context) inject.Generation {
	return a.arm(ctx, a.page.URL())
}

// OnNavigate re-classifies the page and re-arms the scheduler for the new URL.
func (a *App) OnNavigate(ctx context.Context, url string) {
	a.recorder.RecordNavigation()
	a.arm(ctx, url)
}

func (a *App) arm(_ context.Context, url string) inject.Generation {
	kind := pagekind.ClassifyURL(url)
	points := a.MountPoints(kind)

	a.logger.Info("Page classified",
		zap.String("url", url),
		zap.Stringer("kind", kind),
		zap.Int("mountPoints", len(points)))

	// Arming with no points still retires the previous generation's retries.
	return a.scheduler.Arm(points...)
}

// MountPoints returns the buttons a page of kind gets.
func (a *App) MountPoints(kind pagekind.Kind) []inject.Point {
	switch kind {
	case pagekind.Song:
		return []inject.Point{a.pagePoint(ui.Button{ID: ui.SongButtonID, Role: ui.RoleSong}, extract.SongToolbar)}
	case pagekind.Playlist:
		return []inject.Point{
			a.pagePoint(ui.Button{ID: ui.PlaylistButtonID, Role: ui.RolePlaylist}, extract.PlaylistToolbar),
			a.rowPoint(extract.PlaylistRows),
		}
	case pagekind.ArtistCollection:
		return []inject.Point{a.rowPoint(extract.ArtistRows)}
	default:
		return nil
	}
}

func (a *App) pagePoint(button ui.Button, containers selector.Chain) inject.MountPoint {
	return inject.MountPoint{
		ID:         button.ID,
		Containers: containers,
		Build:      func() *html.Node { return button.Node(a.localizer) },
	}
}

func (a *App) rowPoint(rows selector.Chain) inject.RowMountPoint {
	point := inject.RowMountPoint{
		Prefix:     ui.RowButtonPrefix,
		Rows:       rows,
		Containers: extract.RowActions,
	}
	point.Build = func(index int, _ *goquery.Selection) *html.Node {
		return ui.Button{ID: point.RowID(index), Role: ui.RoleRow}.Node(a.localizer)
	}
	return point
}

// Press handles a raw button press and returns the feedback shown, if any.
func (a *App) Press(ctx context.Context, id string, held time.Duration, shift bool) (ui.Feedback, bool) {
	if a.floodgate != nil && !a.floodgate.CheckPress(a.page.URL(), id) {
		a.logger.Warn("Press limit reached", zap.String("id", id))
		fb := ui.Feedback{Kind: ui.Warning, Message: a.localizer.T("warning.too_many_presses")}
		return fb, a.feedback.Show(id, fb)
	}
	return a.Handle(ctx, id, ui.ClassifyGesture(held, shift, a.longPress))
}

// Handle performs the action of gesture on button id. The returned feedback has also been
// applied to the button. No error reaches the caller; failures become error feedback.
func (a *App) Handle(ctx context.Context, id string, gesture ui.Gesture) (ui.Feedback, bool) {
	button, index, ok := parseButtonID(id)
	if !ok {
		a.logger.Warn("Press on unknown button", zap.String("id", id))
		return ui.Feedback{}, false
	}

	a.logger.Debug("Button pressed",
		zap.String("id", id),
		zap.Stringer("role", button.Role),
		zap.Stringer("gesture", gesture))

	if gesture == ui.ShiftClick && button.Role == ui.RolePlaylist {
		if a.openSettings != nil {
			a.openSettings(ctx)
		}
		return ui.Feedback{}, false
	}

	tracks, kind, err := a.tracksFor(button.Role, index)
	a.recordExtraction(kind, err)

	var fb ui.Feedback
	switch {
	case err != nil:
		fb = a.errorFeedback(err)
	case gesture == ui.ShiftClick:
		fb = a.collect(ctx, tracks[0])
	case gesture == ui.LongPress:
		fb = a.export(ctx, export.FormatScript, tracks)
	default:
		fb = a.export(ctx, export.FormatJSON, tracks)
	}

	a.feedback.Show(id, fb)
	return fb, true
}

// Tracks extracts every track of the current page.
func (a *App) Tracks() ([]core.Track, pagekind.Kind, error) {
	var (
		tracks []core.Track
		kind   pagekind.Kind
		err    error
	)
	a.page.Do(func(tx *dom.Tx) {
		kind = pagekind.ClassifyURL(tx.URL())
		tracks, err = a.extractor.Extract(kind, tx.Doc(), tx.URL())
	})
	a.recordExtraction(kind, err)
	return tracks, kind, err
}

// ExportPage extracts the current page and exports it in format, behind the batch gate.
// It returns the clipboard text and the number of exported tracks.
func (a *App) ExportPage(ctx context.Context, format export.Format) (string, int, error) {
	tracks, _, err := a.Tracks()
	if err != nil {
		return "", 0, err
	}
	text, err := a.exportTracks(ctx, format, tracks, true)
	if err != nil {
		return "", 0, err
	}
	return text, len(tracks), nil
}

// ExportCollection exports the collected tracks in format. The collection is complete, so
// the batch gate does not apply.
func (a *App) ExportCollection(ctx context.Context, format export.Format) (string, int, error) {
	tracks := a.collection.List()
	text, err := a.exportTracks(ctx, format, tracks, false)
	if err != nil {
		return "", 0, err
	}
	return text, len(tracks), nil
}

func (a *App) exportTracks(ctx context.Context, format export.Format, tracks []core.Track, gated bool) (string, error) {
	current, err := a.settings.Load(ctx)
	if err != nil {
		a.recorder.RecordExport(string(format), "error")
		return "", err
	}

	copyTracks := a.exporter.Copy
	if gated {
		copyTracks = a.exporter.Export
	}
	text, err := copyTracks(ctx, format, tracks, current)
	a.recorder.RecordExport(string(format), exportStatus(err))
	return text, err
}

func (a *App) export(ctx context.Context, format export.Format, tracks []core.Track) ui.Feedback {
	if _, err := a.exportTracks(ctx, format, tracks, true); err != nil {
		return a.errorFeedback(err)
	}
	return ui.Feedback{Kind: ui.Success, Message: a.exporter.SuccessMessage(format, len(tracks))}
}

func (a *App) collect(ctx context.Context, track core.Track) ui.Feedback {
	added, err := a.collection.Add(ctx, track)
	if err != nil {
		return a.errorFeedback(err)
	}
	a.recorder.SetCollectionSize(a.collection.Size())
	if !added {
		return ui.Feedback{Kind: ui.Warning, Message: a.localizer.T("warning.duplicate")}
	}
	return ui.Feedback{Kind: ui.Success, Message: a.localizer.T("success.added")}
}

// tracksFor extracts what a button of role exports. Row buttons export only their row.
func (a *App) tracksFor(role ui.Role, index int) ([]core.Track, pagekind.Kind, error) {
	var (
		tracks []core.Track
		kind   pagekind.Kind
		err    error
	)

	a.page.Do(func(tx *dom.Tx) {
		doc, url := tx.Doc(), tx.URL()
		kind = pagekind.ClassifyURL(url)

		switch role {
		case ui.RoleSong:
			var track core.Track
			if track, err = a.extractor.Song(doc, url); err == nil {
				tracks = []core.Track{track}
			}
		case ui.RolePlaylist:
			tracks, err = a.extractor.Extract(kind, doc, url)
		case ui.RoleRow:
			tracks, err = a.rowTrack(kind, doc, url, index)
		}
	})
	return tracks, kind, err
}

func (a *App) rowTrack(kind pagekind.Kind, doc *goquery.Document, url string, index int) ([]core.Track, error) {
	chain := extract.PlaylistRows
	if kind == pagekind.ArtistCollection {
		chain = extract.ArtistRows
	}

	rows := selector.ResolveAll(chain, doc.Selection)
	if index < 0 || index >= rows.Len() {
		return nil, fmt.Errorf("%w: row %d not on page", core.ErrExtraction, index)
	}
	row := rows.Selection.Eq(index)

	if kind == pagekind.ArtistCollection {
		track, ok := a.extractor.ArtistRow(row, url)
		if !ok {
			return nil, fmt.Errorf("%w: row %d has no url or title", core.ErrExtraction, index)
		}
		return []core.Track{track}, nil
	}
	return []core.Track{a.extractor.PlaylistRow(row, url)}, nil
}

func (a *App) recordExtraction(kind pagekind.Kind, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	a.recorder.RecordExtraction(kind.String(), status)
}

func (a *App) errorFeedback(err error) ui.Feedback {
	var verr *settings.ValidationError
	switch {
	case errors.As(err, &verr):
		return ui.Feedback{Kind: ui.Error, Message: a.localizer.T(verr.Key, verr.Args...)}
	case errors.Is(err, core.ErrCancelled):
		return ui.Feedback{Kind: ui.Warning, Message: a.localizer.T("warning.cancelled")}
	case errors.Is(err, core.ErrClipboard):
		a.logger.Warn("Clipboard write failed", zap.Error(err))
		return ui.Feedback{Kind: ui.Error, Message: a.localizer.T("error.clipboard")}
	case errors.Is(err, core.ErrExtraction), errors.Is(err, core.ErrValidation):
		a.logger.Warn("Extraction failed", zap.Error(err))
		return ui.Feedback{Kind: ui.Error, Message: a.localizer.T("error.extract")}
	case errors.Is(err, core.ErrUnsupportedPage):
		return ui.Feedback{Kind: ui.Error, Message: a.localizer.T("error.unsupported")}
	case errors.Is(err, core.ErrStorage):
		a.logger.Error("Storage failed", zap.Error(err))
		return ui.Feedback{Kind: ui.Error, Message: a.localizer.T("error.storage")}
	default:
		a.logger.Error("Button action failed", zap.Error(err))
		return ui.Feedback{Kind: ui.Error, Message: a.localizer.T("error.generic")}
	}
}

func exportStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, core.ErrCancelled):
		return "cancelled"
	default:
		return "error"
	}
}

// parseButtonID maps an injected element id back to its button and row index.
func parseButtonID(id string) (ui.Button, int, bool) {
	switch {
	case id == ui.PlaylistButtonID:
		return ui.Button{ID: id, Role: ui.RolePlaylist}, -1, true
	case id == ui.SongButtonID:
		return ui.Button{ID: id, Role: ui.RoleSong}, -1, true
	case strings.HasPrefix(id, ui.RowButtonPrefix):
		index, err := strconv.Atoi(strings.TrimPrefix(id, ui.RowButtonPrefix))
		if err != nil || index < 0 {
			return ui.Button{}, 0, false
		}
		return ui.Button{ID: id, Role: ui.RoleRow}, index, true
	default:
		return ui.Button{}, 0, false
	}
}
