package cfg

import (
	"time"
)

type Cfg struct {
	// Server configuration
	Port         string
	BaseUrl      string
	APIAccessKey string
	CORSOrigins  []string

	// Store configuration
	StoreDriver         string
	DBPath              string
	MongoURI            string
	MongoDatabase       string
	MongoCollection     string
	StoreTimeout        time.Duration
	StoreHealthInterval time.Duration

	// Collection configuration
	SourcesFile       string
	FetchTimeout      time.Duration
	FetchConcurrency  int
	SlackFactor       int
	SourceSpread      int
	DefaultCount      int
	MaxCount          int
	SchedulerInterval int
	SchedulerCount    int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
