// Package main provides the scexport CLI application entry point.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"scexport/internal/core"
	"scexport/internal/i18n"
)

const (
	envPrefix          = "SCEXPORT"
	defaultServerHost  = "127.0.0.1"
	logFormatConsole   = "console"
	defaultRetryString = "1s,2s,3s,5s"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scexport",
	Short: "scexport - SoundCloud track exporter",
	Long: `scexport reads SoundCloud pages, from a saved file or a live Chrome tab, and exports
their tracks as JSON, a download script or a URL list. A local collection gathers tracks
across pages.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .env)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, console)")
	flags.Bool("server-enabled", true, "Serve health, metrics and the collection while watching")
	flags.String("server-host", defaultServerHost, "HTTP server host")
	flags.Int("server-port", core.DefaultServerPort, "HTTP server port")
	flags.String("storage-path", core.DefaultStoragePath, "SQLite file holding settings and the collection")
	flags.Bool("browser-headless", true, "Run Chrome without a window")
	flags.String("browser-exec-path", "", "Chrome executable (default: autodetect)")
	flags.Int("browser-sync-interval-ms", int(core.DefaultSyncInterval/time.Millisecond), "Live page sync interval in milliseconds")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", i18n.DefaultLanguage, fmt.Sprintf("Message language (%s)", supportedLangs))
	flags.String("retry-schedule", defaultRetryString, "Comma separated delays of the button mount retries")
	flags.Int("long-press-ms", int(core.DefaultLongPress/time.Millisecond), "Press duration in milliseconds that counts as a long-press")
	flags.Int("press-limit-per-minute", core.DefaultPressLimitPerMinute, "Maximum presses per button per minute (0 disables)")
	flags.Bool("generate-env-example", false, "Generate .env.example file from current configuration and exit")

	if err := viper.BindPFlags(flags); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(
		newClassifyCmd(),
		newExtractCmd(),
		newWatchCmd(),
		newCollectionCmd(),
		newSettingsCmd(),
	)
}

func initConfig() {
	envFile := ".env"
	if cfgFile != "" {
		envFile = cfgFile
	}

	if err := gotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	config = buildConfig()
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	configureLog(cfg)
	configureServer(cfg)
	configureStorage(cfg)
	configureBrowser(cfg)
	configureApp(cfg)

	return cfg
}

func configureLog(cfg *core.Config) {
	if level := viper.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format := viper.GetString("log-format"); format != "" {
		cfg.Log.Format = format
	}
}

func configureServer(cfg *core.Config) {
	cfg.Server.Enabled = viper.GetBool("server-enabled")
	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultServerHost
	}
	cfg.Server.Port = viper.GetInt("server-port")
}

func configureStorage(cfg *core.Config) {
	cfg.Storage.Path = viper.GetString("storage-path")
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = core.DefaultStoragePath
	}
}

func configureBrowser(cfg *core.Config) {
	cfg.Browser.Headless = viper.GetBool("browser-headless")
	cfg.Browser.ExecPath = viper.GetString("browser-exec-path")
	cfg.Browser.SyncInterval = time.Duration(viper.GetInt("browser-sync-interval-ms")) * time.Millisecond
	if cfg.Browser.SyncInterval <= 0 {
		cfg.Browser.SyncInterval = core.DefaultSyncInterval
	}
}

func configureApp(cfg *core.Config) {
	cfg.App.Language = viper.GetString("language")
	if cfg.App.Language == "" {
		cfg.App.Language = i18n.DefaultLanguage
	}
	if !i18n.IsSupported(cfg.App.Language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}

	schedule, err := parseRetrySchedule(viper.GetString("retry-schedule"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid retry schedule (%v), using default (%s)\n", err, defaultRetryString)
		schedule = append([]time.Duration(nil), core.DefaultRetrySchedule...)
	}
	cfg.App.RetrySchedule = schedule

	cfg.App.LongPress = time.Duration(viper.GetInt("long-press-ms")) * time.Millisecond
	if cfg.App.LongPress <= 0 {
		cfg.App.LongPress = core.DefaultLongPress
	}

	cfg.App.PressLimitPerMinute = viper.GetInt("press-limit-per-minute")
	if cfg.App.PressLimitPerMinute < 0 {
		cfg.App.PressLimitPerMinute = core.DefaultPressLimitPerMinute
	}
}

// parseRetrySchedule reads a comma separated list of increasing delays.
func parseRetrySchedule(value string) ([]time.Duration, error) {
	var schedule []time.Duration
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.ParseDuration(part)
		if err != nil {
			return nil, fmt.Errorf("invalid delay %q: %w", part, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("delay %q must be positive", part)
		}
		if n := len(schedule); n > 0 && d <= schedule[n-1] {
			return nil, fmt.Errorf("delay %q must be larger than %s", part, schedule[n-1])
		}
		schedule = append(schedule, d)
	}
	if len(schedule) == 0 {
		return nil, fmt.Errorf("retry schedule is empty")
	}
	return schedule, nil
}

func buildLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, logFormatConsole) {
		cfg.Encoding = logFormatConsole
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runRoot(cmd *cobra.Command, _ []string) error {
	if viper.GetBool("generate-env-example") {
		return generateEnvExample(cmd)
	}
	return cmd.Help()
}

func validateConfig() error {
	if config.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if config.Server.Enabled && (config.Server.Port < 0 || config.Server.Port > 65535) {
		return fmt.Errorf("server port out of range: %d", config.Server.Port)
	}

	if len(config.App.RetrySchedule) == 0 {
		return fmt.Errorf("retry schedule is required")
	}

	return nil
}
