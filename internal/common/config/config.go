// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the main application configuration struct. It is read-only once
// Load returns.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Server     ServerConfig            `mapstructure:"server"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Generation GenerationConfig        `mapstructure:"generation"`
	Sources    SourcesConfig           `mapstructure:"sources"`
	Context    ContextConfig           `mapstructure:"context"`
	Delivery   DeliveryConfig          `mapstructure:"delivery"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Cache      CacheConfig             `mapstructure:"cache"`
	Alerts     AlertsConfig            `mapstructure:"alerts"`
	Tracing    TracingConfig           `mapstructure:"tracing"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Logging    LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	RequestTimeout int `mapstructure:"request_timeout"` // milliseconds
	ReadTimeout    int `mapstructure:"read_timeout"`    // milliseconds
	WriteTimeout   int `mapstructure:"write_timeout"`   // milliseconds
	DebugManualLen int `mapstructure:"debug_manual_length"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// CamundaConfig is optional. Workers only start when BrokerAddress is set.
type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// Enabled reports whether a broker has been configured.
func (c CamundaConfig) Enabled() bool {
	return c.BrokerAddress != ""
}

// --- Generation ---

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// GenerationConfig selects the external text generation collaborator and its
// two quality tiers.
type GenerationConfig struct {
	Provider      string  `mapstructure:"provider"`
	BaseURL       string  `mapstructure:"base_url"`
	APIKey        string  `mapstructure:"api_key"`
	DefaultModel  string  `mapstructure:"default_model"`
	HighTierModel string  `mapstructure:"high_tier_model"`
	Temperature   float64 `mapstructure:"temperature"`
	MaxTokens     int     `mapstructure:"max_tokens"`
	Timeout       int     `mapstructure:"timeout"` // milliseconds
	MaxRetries    int     `mapstructure:"max_retries"`
}

// ModelFor returns the model id for the requested tier.
func (g GenerationConfig) ModelFor(highTier bool) string {
	if highTier {
		return g.HighTierModel
	}
	return g.DefaultModel
}

// --- Knowledge sources ---

const (
	ManualFormatJSON = "json"
	ManualFormatText = "text"

	SheetBackendGoogle   = "google_sheets"
	SheetBackendPostgres = "postgres"
	SheetBackendCSV      = "csv"

	// DefaultSheetRange reads every row of the first visible sheet, up to
	// column ZZ.
	DefaultSheetRange = "A:ZZ"

	DocumentBackendHTTP          = "http"
	DocumentBackendElasticsearch = "elasticsearch"
)

type SourcesConfig struct {
	Timeout  int            `mapstructure:"timeout"` // milliseconds, per source fetch
	Manual   ManualConfig   `mapstructure:"manual"`
	Sheet    SheetConfig    `mapstructure:"sheet"`
	Document DocumentConfig `mapstructure:"document"`
}

type ManualConfig struct {
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

type SheetConfig struct {
	Backend string `mapstructure:"backend"`

	// google_sheets
	SheetID            string `mapstructure:"sheet_id"`
	Range              string `mapstructure:"range"`
	APIKey             string `mapstructure:"api_key"`
	ServiceAccountJSON string `mapstructure:"service_account_json"`
	BaseURL            string `mapstructure:"base_url"`

	// postgres
	Table string `mapstructure:"table"`

	// csv
	Path string `mapstructure:"path"`

	ExcludedHeaders []string `mapstructure:"excluded_headers"`
}

type DocumentConfig struct {
	Backend        string   `mapstructure:"backend"`
	URL            string   `mapstructure:"url"`
	Index          string   `mapstructure:"index"`
	DocumentID     string   `mapstructure:"document_id"`
	BannedPrefixes []string `mapstructure:"banned_prefixes"`
}

// ContextConfig bounds the text handed to the generator.
type ContextConfig struct {
	TruncationLimit int `mapstructure:"truncation_limit"` // runes per section
}

// DeliveryConfig is the product code to deadline-in-days lookup table used by
// template answers.
type DeliveryConfig struct {
	Table map[string]int `mapstructure:"table"`
}

// --- Storage ---

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig controls the optional source snapshot cache in Redis.
type CacheConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	TTL       int    `mapstructure:"ttl"` // milliseconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

// --- Alerts ---

// AlertsConfig controls the notification sent when the manual is missing.
type AlertsConfig struct {
	Region   string `mapstructure:"region"`
	Throttle int    `mapstructure:"throttle"` // milliseconds between alerts
	SNS      struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		ToEmails  []string `mapstructure:"to_emails"`
	} `mapstructure:"ses"`
}

// Enabled reports whether any alert channel is on.
func (a AlertsConfig) Enabled() bool {
	return a.SNS.Enabled || a.SES.Enabled
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// DefaultDeliveryTable is used when no table is configured.
func DefaultDeliveryTable() map[string]int {
	return map[string]int{
		"ZA509": 13,
		"ZA026": 22,
		"ZA233": 23,
		"ZA384": 17,
	}
}

// normalizeDeliveryTable upper-cases product codes; viper lower-cases map keys
// on the way in.
func normalizeDeliveryTable(table map[string]int) map[string]int {
	out := make(map[string]int, len(table))
	for code, days := range table {
		out[strings.ToUpper(strings.TrimSpace(code))] = days
	}
	return out
}
