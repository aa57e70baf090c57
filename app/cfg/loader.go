package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/tgpulse.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for channel processing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler tick interval in seconds"`
	ParseInterval     int    `long:"parse-interval" env:"PARSE_INTERVAL" default:"3600" description:"Minimum interval between channel re-parses in seconds"`
	PostsPerParse     int    `long:"posts-per-parse" env:"POSTS_PER_PARSE" default:"100" description:"Maximum number of posts fetched per parse run"`
	MaxExportRows     int    `long:"max-export-rows" env:"MAX_EXPORT_ROWS" default:"10000" description:"Maximum number of rows allowed in a single export"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Telegram client configuration
	TelegramAPIID   int    `long:"telegram-api-id" env:"TELEGRAM_API_ID" description:"Telegram API ID"`
	TelegramAPIHash string `long:"telegram-api-hash" env:"TELEGRAM_API_HASH" description:"Telegram API hash"`
	TelegramPhone   string `long:"telegram-phone" env:"TELEGRAM_PHONE" description:"Phone number of the Telegram account"`
	SessionFile     string `long:"session-file" env:"SESSION_FILE" default:"./data/tgpulse.session.json" description:"Path to the Telegram session file"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Moscow)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		ParseInterval:     raw.ParseInterval,
		PostsPerParse:     raw.PostsPerParse,
		MaxExportRows:     raw.MaxExportRows,
		APIAccessKey:      raw.APIAccessKey,
		TelegramAPIID:     raw.TelegramAPIID,
		TelegramAPIHash:   raw.TelegramAPIHash,
		TelegramPhone:     raw.TelegramPhone,
		SessionFile:       raw.SessionFile,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
