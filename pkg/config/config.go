package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Sources SourcesConfig
	Redis   RedisConfig
	Cache   CacheConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"INSIGHTS_APP_ENV" required:"true"`
	Port         string `envconfig:"INSIGHTS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"INSIGHTS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"INSIGHTS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// SourcesConfig points the gateway at the upstream collaborator endpoints.
// Each URL is the base of a JSON endpoint accepting start/end query params.
type SourcesConfig struct {
	CallsURL             string `envconfig:"INSIGHTS_SOURCE_CALLS_URL" required:"true"`
	LeadsURL             string `envconfig:"INSIGHTS_SOURCE_LEADS_URL" required:"true"`
	ConversationsURL     string `envconfig:"INSIGHTS_SOURCE_CONVERSATIONS_URL" required:"true"`
	TransactionsURL      string `envconfig:"INSIGHTS_SOURCE_TRANSACTIONS_URL" required:"true"`
	AppointmentsURL      string `envconfig:"INSIGHTS_SOURCE_APPOINTMENTS_URL" required:"true"`
	SearchConsoleURL     string `envconfig:"INSIGHTS_SOURCE_SEARCH_CONSOLE_URL"`
	SearchPerformanceURL string `envconfig:"INSIGHTS_SOURCE_SEARCH_PERFORMANCE_URL"`
	AnalyticsURL         string `envconfig:"INSIGHTS_SOURCE_ANALYTICS_URL"`
	AdsURL               string `envconfig:"INSIGHTS_SOURCE_ADS_URL"`

	// Side sync triggers fired before the search-performance fetch.
	SearchIndexSyncURLs []string `envconfig:"INSIGHTS_SOURCE_SEARCH_INDEX_SYNC_URLS"`

	Timeout         time.Duration `envconfig:"INSIGHTS_SOURCE_TIMEOUT" default:"15s"`
	SecondWaveDelay time.Duration `envconfig:"INSIGHTS_SOURCE_SECOND_WAVE_DELAY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"INSIGHTS_REDIS_URL"`
	Address      string        `envconfig:"INSIGHTS_REDIS_ADDR"`
	Password     string        `envconfig:"INSIGHTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"INSIGHTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INSIGHTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INSIGHTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INSIGHTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INSIGHTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INSIGHTS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. The
// response cache is optional; without redis every report is built fresh.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// CacheConfig controls the assembled-report response cache. Upstream
// provider caching stays out of scope; only the final document is cached.
type CacheConfig struct {
	ReportTTL time.Duration `envconfig:"INSIGHTS_CACHE_REPORT_TTL" default:"5m"`
}
