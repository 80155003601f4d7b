package core

import (
	"time"
)

const (
	// DefaultServerPort is the port of the diagnostics server.
	DefaultServerPort = 8080
	// DefaultLongPress is the press duration after which a click becomes a long-press.
	DefaultLongPress = 600 * time.Millisecond
	// DefaultSyncInterval is how often the live browser DOM is mirrored.
	DefaultSyncInterval = 500 * time.Millisecond
	// DefaultStoragePath is the sqlite file backing settings and the collection.
	DefaultStoragePath = "./scexport.db"
	// DefaultPressLimitPerMinute caps how often one button runs its action per minute.
	DefaultPressLimitPerMinute = 20
)

// DefaultRetrySchedule lists the delays after arming at which mounting is retried.
var DefaultRetrySchedule = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	3 * time.Second,
	5 * time.Second,
}

type Config struct {
	Log     LogConfig
	Server  ServerConfig
	Storage StorageConfig
	Browser BrowserConfig
	App     AppConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	Enabled      bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StorageConfig struct {
	Path string
}

type BrowserConfig struct {
	Headless     bool
	ExecPath     string
	SyncInterval time.Duration
}

type AppConfig struct {
	Language            string
	RetrySchedule       []time.Duration
	LongPress           time.Duration
	PressLimitPerMinute int
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Enabled:      true,
			Host:         "127.0.0.1",
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Path: DefaultStoragePath,
		},
		Browser: BrowserConfig{
			Headless:     true,
			SyncInterval: DefaultSyncInterval,
		},
		App: AppConfig{
			Language:            "en",
			RetrySchedule:       append([]time.Duration(nil), DefaultRetrySchedule...),
			LongPress:           DefaultLongPress,
			PressLimitPerMinute: DefaultPressLimitPerMinute,
		},
	}
}
