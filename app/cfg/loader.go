package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Server configuration
	Port         string   `long:"port" env:"PORT" default:"8000" description:"HTTP server port"`
	BaseUrl      string   `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://news.example.com)"`
	APIAccessKey string   `long:"api-key" env:"API_ACCESS_KEY" description:"API access key guarding /scrape (optional)"`
	CORSOrigins  []string `long:"cors-origin" env:"CORS_ORIGINS" env-delim:"," default:"http://localhost:5173" default:"https://smitpulseai.netlify.app" description:"Allowed CORS origins"`

	// Store configuration
	StoreDriver         string        `long:"store-driver" env:"STORE_DRIVER" default:"sqlite" choice:"sqlite" choice:"mongo" choice:"none" description:"Article store backend"`
	DBPath              string        `long:"db-path" env:"DB_PATH" default:"./data/pulse.db" description:"SQLite database file"`
	MongoURI            string        `long:"mongo-uri" env:"MONGO_URI" description:"MongoDB connection URI"`
	MongoDatabase       string        `long:"mongo-database" env:"MONGO_DATABASE" default:"news" description:"MongoDB database name"`
	MongoCollection     string        `long:"mongo-collection" env:"MONGO_COLLECTION" default:"articles" description:"MongoDB collection name"`
	StoreTimeout        time.Duration `long:"store-timeout" env:"STORE_TIMEOUT" default:"5s" description:"Timeout for connecting to the store at startup"`
	StoreHealthInterval time.Duration `long:"store-health-interval" env:"STORE_HEALTH_INTERVAL" default:"30s" description:"Interval between store health checks (0 disables)"`

	// Collection configuration
	SourcesFile       string        `long:"sources-file" env:"SOURCES_FILE" description:"YAML source registry (built-in registry when empty)"`
	FetchTimeout      time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30s" description:"Per-source fetch timeout"`
	FetchConcurrency  int           `long:"fetch-concurrency" env:"FETCH_CONCURRENCY" default:"1" description:"Number of sources fetched ahead concurrently"`
	SlackFactor       int           `long:"slack-factor" env:"SLACK_FACTOR" default:"2" description:"Multiplier of the per-source quota giving the per-source cap"`
	SourceSpread      int           `long:"source-spread" env:"SOURCE_SPREAD" default:"5" description:"Number of sources the requested count is spread across"`
	DefaultCount      int           `long:"default-count" env:"DEFAULT_COUNT" default:"20" description:"Article count used when a request omits it"`
	MaxCount          int           `long:"max-count" env:"MAX_COUNT" default:"200" description:"Upper bound on requested article count"`
	SchedulerInterval int           `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"0" description:"Periodic collection interval in seconds (0 disables)"`
	SchedulerCount    int           `long:"scheduler-count" env:"SCHEDULER_COUNT" default:"20" description:"Article count for periodic collection"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (compatible; Pulse/1.0)" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Kolkata)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	cfg, err := parse(os.Args[1:])
	if err != nil || cfg == nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:                raw.Port,
		BaseUrl:             raw.BaseUrl,
		APIAccessKey:        raw.APIAccessKey,
		CORSOrigins:         raw.CORSOrigins,
		StoreDriver:         raw.StoreDriver,
		DBPath:              raw.DBPath,
		MongoURI:            raw.MongoURI,
		MongoDatabase:       raw.MongoDatabase,
		MongoCollection:     raw.MongoCollection,
		StoreTimeout:        raw.StoreTimeout,
		StoreHealthInterval: raw.StoreHealthInterval,
		SourcesFile:         raw.SourcesFile,
		FetchTimeout:        raw.FetchTimeout,
		FetchConcurrency:    raw.FetchConcurrency,
		SlackFactor:         raw.SlackFactor,
		SourceSpread:        raw.SourceSpread,
		DefaultCount:        raw.DefaultCount,
		MaxCount:            raw.MaxCount,
		SchedulerInterval:   raw.SchedulerInterval,
		SchedulerCount:      raw.SchedulerCount,
		UserAgent:           raw.UserAgent,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if cfg.StoreDriver == "mongo" && cfg.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required when STORE_DRIVER is mongo")
	}
	if cfg.MaxCount < 1 {
		return fmt.Errorf("MAX_COUNT must be positive, got %d", cfg.MaxCount)
	}
	if cfg.DefaultCount < 1 || cfg.DefaultCount > cfg.MaxCount {
		return fmt.Errorf("DEFAULT_COUNT must be between 1 and MAX_COUNT, got %d", cfg.DefaultCount)
	}
	if cfg.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", cfg.FetchConcurrency)
	}
	if cfg.SlackFactor < 1 || cfg.SourceSpread < 1 {
		return fmt.Errorf("SLACK_FACTOR and SOURCE_SPREAD must be positive")
	}
	if cfg.SchedulerInterval < 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL must not be negative, got %d", cfg.SchedulerInterval)
	}
	if cfg.SchedulerCount < 1 || cfg.SchedulerCount > cfg.MaxCount {
		return fmt.Errorf("SCHEDULER_COUNT must be between 1 and MAX_COUNT, got %d", cfg.SchedulerCount)
	}
	return nil
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
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
