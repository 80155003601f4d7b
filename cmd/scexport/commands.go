package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scexport/internal/app"
	"scexport/internal/browser"
	"scexport/internal/core"
	"scexport/internal/dom"
	"scexport/internal/export"
	"scexport/internal/extract"
	"scexport/internal/flood"
	httpserver "scexport/internal/http"
	"scexport/internal/i18n"
	"scexport/internal/inject"
	"scexport/internal/kv"
	"scexport/internal/settings"
	"scexport/internal/store"
	"scexport/internal/ui"
	"scexport/internal/watch"
	"scexport/pkg/pagekind"
	"scexport/pkg/trackurl"
)

const collectionSizeInterval = 30 * time.Second

// services are the storage-backed collaborators shared by every command.
type services struct {
	kv         *kv.SQLiteStore
	settings   *settings.Manager
	collection *store.Collection
	localizer  *i18n.Localizer
}

func initializeServices(ctx context.Context) (*services, error) {
	if err := validateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	kvStore, err := kv.OpenSQLite(ctx, config.Storage.Path)
	if err != nil {
		return nil, err
	}

	collection := store.NewCollection(kvStore, store.DefaultExpectedTracks, store.DefaultFalsePositiveRate,
		logger.Named("collection"))
	if err := collection.Load(ctx); err != nil {
		_ = kvStore.Close()
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	return &services{
		kv:         kvStore,
		settings:   settings.NewManager(kvStore, logger),
		collection: collection,
		localizer:  i18n.NewLocalizer(config.App.Language),
	}, nil
}

func (s *services) Close() {
	if err := s.kv.Close(); err != nil {
		logger.Debug("Failed to close storage", zap.Error(err))
	}
}

// newApp wires an App over page. scheduler and feedback may be nil for one-shot commands.
func (s *services) newApp(page *dom.Page, exporter *export.Exporter, scheduler *inject.Scheduler,
	feedback *ui.Feedbacker, recorder app.Recorder) *app.App {
	return app.New(app.Options{
		Page:       page,
		Extractor:  extract.New(logger),
		Exporter:   exporter,
		Settings:   s.settings,
		Collection: s.collection,
		Scheduler:  scheduler,
		Feedback:   feedback,
		Localizer:  s.localizer,
		LongPress:  config.App.LongPress,
		Recorder:   recorder,
		Floodgate:  flood.New(config.App.PressLimitPerMinute, clock.New()),
		OpenSettings: func(ctx context.Context) {
			current, err := s.settings.Load(ctx)
			if err != nil {
				logger.Warn("Failed to load settings", zap.Error(err))
				return
			}
			logger.Info("Settings requested; change them with 'scexport settings set'",
				zap.String("commandName", current.CommandName),
				zap.Int("commandsPerLine", current.CommandsPerLine),
				zap.String("separator", current.Separator))
		},
		Logger: logger,
	})
}

func terminalConfirmer(yes bool) export.Confirmer {
	if yes {
		return export.AlwaysConfirm
	}
	return export.PromptConfirmer{In: os.Stdin, Out: os.Stderr}
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <url|path>...",
		Short: "Print the page kind of each URL or path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, arg := range args {
				fmt.Fprintf(out, "%s\t%s\n", arg, classify(arg))
			}
			return nil
		},
	}
}

func classify(arg string) pagekind.Kind {
	if strings.HasPrefix(arg, "/") {
		return pagekind.Classify(arg)
	}
	return pagekind.ClassifyURL(arg)
}

func newExtractCmd() *cobra.Command {
	var (
		file   string
		rawURL string
		format string
		copyTo bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the tracks of a saved SoundCloud page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svcs, err := initializeServices(ctx)
			if err != nil {
				return err
			}
			defer svcs.Close()

			page, err := loadPage(file, rawURL)
			if err != nil {
				return err
			}

			exporter := export.NewExporter(export.SystemClipboard{}, terminalConfirmer(yes), svcs.localizer, logger)
			a := svcs.newApp(page, exporter, nil, nil, nil)

			if copyTo {
				_, count, err := a.ExportPage(ctx, f)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), exporter.SuccessMessage(f, count))
				return nil
			}

			tracks, kind, err := a.Tracks()
			if err != nil {
				return err
			}
			current, err := svcs.settings.Load(ctx)
			if err != nil {
				return err
			}
			text, err := export.Render(f, tracks, current)
			if err != nil {
				return err
			}
			logger.Debug("Extracted page", zap.Stringer("kind", kind), zap.Int("tracks", len(tracks)))
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "saved HTML of the page")
	cmd.Flags().StringVar(&rawURL, "url", "", "URL the page was saved from")
	cmd.Flags().StringVar(&format, "format", string(export.FormatJSON), "output format (json, script, list)")
	cmd.Flags().BoolVar(&copyTo, "copy", false, "copy to the clipboard instead of printing")
	cmd.Flags().BoolVar(&yes, "yes", false, "with --copy, skip the batch size confirmation")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func loadPage(file, rawURL string) (*dom.Page, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()
	return dom.NewPage(rawURL, f)
}

func newWatchCmd() *cobra.Command {
	var startURL string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Drive a live Chrome tab and add export buttons to SoundCloud pages",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runWatch(startURL)
		},
	}
	cmd.Flags().StringVar(&startURL, "url", "https://soundcloud.com/discover", "page to open")
	return cmd
}

func runWatch(startURL string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting scexport watch",
		zap.String("url", startURL),
		zap.Bool("headless", config.Browser.Headless),
		zap.String("language", config.App.Language))

	svcs, err := initializeServices(ctx)
	if err != nil {
		return err
	}
	defer svcs.Close()

	page, err := dom.NewPageFromHTML("about:blank", "<html><head></head><body></body></html>")
	if err != nil {
		return err
	}

	scheduler, err := inject.New(page, clock.New(), inject.Config{
		Schedule:    config.App.RetrySchedule,
		Diagnostics: extract.ToolbarDiagnostics,
	}, logger)
	if err != nil {
		return err
	}
	feedback := ui.NewFeedbacker(page, clock.New(), ui.DefaultRestoreDelay, logger)

	httpServer := httpserver.NewServer(&config.Server, svcs.collection, logger)
	metrics := httpServer.GetMetrics()
	scheduler.SetRecorder(metrics)

	session, err := browser.Open(ctx, config.Browser, page, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	var confirmer export.Confirmer = export.AlwaysConfirm
	if !config.Browser.Headless {
		confirmer = session
	}
	exporter := export.NewExporter(export.SystemClipboard{}, confirmer, svcs.localizer, logger)
	a := svcs.newApp(page, exporter, scheduler, feedback, metrics)

	scheduler.SetSink(session)
	feedback.SetMirror(session)
	session.SetPresser(a)

	if err := session.Navigate(startURL); err != nil {
		return err
	}

	state := watch.NewState(page.URL())
	watcher := watch.New(page, state, a.OnNavigate, logger)
	batches, unsubscribe := page.Observe()
	defer unsubscribe()

	a.Init(ctx)
	metrics.SetCollectionSize(svcs.collection.Size())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return session.Run(gCtx)
	})

	g.Go(func() error {
		return watcher.Run(gCtx, batches)
	})

	if config.Server.Enabled {
		g.Go(func() error {
			return httpServer.Start(gCtx)
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(collectionSizeInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				metrics.SetCollectionSize(svcs.collection.Size())
			}
		}
	})

	logger.Info("scexport watch started",
		zap.String("url", page.URL()),
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scexport watch stopped with error", zap.Error(err))
		return err
	}

	logger.Info("scexport watch stopped gracefully")
	return nil
}

func newCollectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Manage the local track collection",
	}

	var listFormat string
	list := &cobra.Command{
		Use:   "list",
		Short: "Print the collected tracks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *services) error {
				return printTracks(ctx, cmd.OutOrStdout(), svcs, listFormat)
			})
		},
	}
	list.Flags().StringVar(&listFormat, "format", string(export.FormatList), "output format (json, script, list)")

	var title, username string
	add := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a track to the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *services) error {
				track := newTrack(args[0], title, username)
				added, err := svcs.collection.Add(ctx, track)
				if err != nil {
					return err
				}
				key := "success.added"
				if !added {
					key = "warning.duplicate"
				}
				fmt.Fprintln(cmd.OutOrStdout(), svcs.localizer.T(key))
				return nil
			})
		},
	}
	add.Flags().StringVar(&title, "title", "", "track title (default: last URL path segment)")
	add.Flags().StringVar(&username, "username", "", "artist (default: first URL path segment)")

	remove := &cobra.Command{
		Use:   "remove <url>",
		Short: "Remove a track from the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *services) error {
				removed, err := svcs.collection.Remove(ctx, args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("%s is not in the collection", args[0])
				}
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every track from the collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *services) error {
				return svcs.collection.Clear(ctx)
			})
		},
	}

	var exportFormat string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Copy the collection to the clipboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(exportFormat)
			if err != nil {
				return err
			}
			return withServices(cmd, func(ctx context.Context, svcs *services) error {
				exporter := export.NewExporter(export.SystemClipboard{}, nil, svcs.localizer, logger)
				a := svcs.newApp(nil, exporter, nil, nil, nil)
				_, count, err := a.ExportCollection(ctx, f)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), exporter.SuccessMessage(f, count))
				return nil
			})
		},
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", string(export.FormatJSON), "output format (json, script, list)")

	cmd.AddCommand(list, add, remove, clearCmd, exportCmd)
	return cmd
}

func newTrack(rawURL, title, username string) core.Track {
	url := trackurl.StripQuery(rawURL)
	if title == "" {
		title = trackurl.Slug(url)
	}
	if username == "" {
		username = trackurl.Owner(url)
	}
	return core.Track{Username: username, TrackTitle: title, URL: url}
}

func printTracks(ctx context.Context, out io.Writer, svcs *services, format string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	current, err := svcs.settings.Load(ctx)
	if err != nil {
		return err
	}
	text, err := export.Render(f, svcs.collection.List(), current)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)
	return nil
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the download script settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *services) error {
				current, err := svcs.settings.Load(ctx)
				if err != nil {
					return err
				}
				return printSettings(cmd.OutOrStdout(), current)
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <commandName|commandsPerLine|separator> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *services) error {
				current, err := svcs.settings.Load(ctx)
				if err != nil {
					return err
				}
				if err := settings.Apply(&current, args[0], args[1]); err != nil {
					return localizedError(svcs.localizer, err)
				}
				if err := svcs.settings.Save(ctx, current); err != nil {
					return localizedError(svcs.localizer, err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), svcs.localizer.T("success.settings_saved"))
				return printSettings(cmd.OutOrStdout(), current)
			})
		},
	}

	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, svcs *services) error {
				defaults, err := resetSettings(ctx, svcs.settings, terminalConfirmer(yes), svcs.localizer)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), svcs.localizer.T("success.settings_reset"))
				return printSettings(cmd.OutOrStdout(), defaults)
			})
		},
	}

	reset.Flags().BoolVar(&yes, "yes", false, "reset without asking")

	cmd.AddCommand(show, set, reset)
	return cmd
}

// resetSettings restores the defaults once the user confirmed.
func resetSettings(ctx context.Context, manager *settings.Manager, confirmer export.Confirmer, l *i18n.Localizer) (core.Settings, error) {
	if !confirmer.Confirm(ctx, l.T("prompt.reset_settings")) {
		return core.Settings{}, fmt.Errorf("%w: settings unchanged", core.ErrCancelled)
	}
	return manager.Reset(ctx)
}

func printSettings(out io.Writer, s core.Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// localizedError replaces a validation error with its localised explanation.
func localizedError(l *i18n.Localizer, err error) error {
	var verr *settings.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("%s: %w", l.T(verr.Key, verr.Args...), core.ErrValidation)
	}
	return err
}

func withServices(cmd *cobra.Command, fn func(ctx context.Context, svcs *services) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svcs, err := initializeServices(ctx)
	if err != nil {
		return err
	}
	defer svcs.Close()
	return fn(ctx, svcs)
}
