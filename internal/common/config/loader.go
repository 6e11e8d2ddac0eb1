// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "smartdm-service/internal/common/errors"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// applies environment overrides and defaults, then validates.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // the environment file is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideEmptyConfig fills credentials from their conventional environment
// variable names when the YAML left them blank.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty := func(field *string, envName string) {
		if *field == "" {
			if val := os.Getenv(envName); val != "" {
				*field = val
			}
		}
	}

	switch cfg.Generation.Provider {
	case ProviderGemini:
		setIfEmpty(&cfg.Generation.APIKey, "GEMINI_API_KEY")
	default:
		setIfEmpty(&cfg.Generation.APIKey, "OPENAI_API_KEY")
	}

	setIfEmpty(&cfg.Sources.Manual.Path, "MANUAL_PATH")
	setIfEmpty(&cfg.Sources.Sheet.SheetID, "GOOGLE_SHEET_ID")
	setIfEmpty(&cfg.Sources.Sheet.APIKey, "GOOGLE_SHEETS_API_KEY")
	setIfEmpty(&cfg.Sources.Sheet.ServiceAccountJSON, "GOOGLE_SERVICE_ACCOUNT_JSON")
	setIfEmpty(&cfg.Sources.Document.URL, "GOOGLE_DOC_URL")

	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
	setIfEmpty(&cfg.Camunda.BrokerAddress, "ZEEBE_ADDRESS")
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "smartdm-answer-service"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 70000
	}
	if cfg.Server.DebugManualLen == 0 {
		cfg.Server.DebugManualLen = 300
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = ProviderOpenAI
	}
	if cfg.Generation.DefaultModel == "" {
		if cfg.Generation.Provider == ProviderGemini {
			cfg.Generation.DefaultModel = "gemini-2.0-flash"
		} else {
			cfg.Generation.DefaultModel = "gpt-3.5-turbo"
		}
	}
	if cfg.Generation.HighTierModel == "" {
		if cfg.Generation.Provider == ProviderGemini {
			cfg.Generation.HighTierModel = "gemini-2.5-pro"
		} else {
			cfg.Generation.HighTierModel = "gpt-4"
		}
	}
	if cfg.Generation.BaseURL == "" && cfg.Generation.Provider == ProviderOpenAI {
		cfg.Generation.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = 0.3
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = 30000
	}
	if cfg.Generation.MaxRetries == 0 {
		cfg.Generation.MaxRetries = 3
	}

	if cfg.Sources.Timeout == 0 {
		cfg.Sources.Timeout = 10000
	}
	if cfg.Sources.Manual.Format == "" {
		cfg.Sources.Manual.Format = ManualFormatJSON
	}
	if cfg.Sources.Manual.Path == "" {
		cfg.Sources.Manual.Path = "manual.json"
	}
	if cfg.Sources.Sheet.Backend == "" {
		cfg.Sources.Sheet.Backend = SheetBackendGoogle
	}
	if cfg.Sources.Sheet.Range == "" {
		cfg.Sources.Sheet.Range = DefaultSheetRange
	}
	if len(cfg.Sources.Sheet.ExcludedHeaders) == 0 {
		cfg.Sources.Sheet.ExcludedHeaders = []string{"비고", "참고", "remarks", "notes"}
	}
	if cfg.Sources.Document.Backend == "" {
		cfg.Sources.Document.Backend = DocumentBackendHTTP
	}
	if cfg.Sources.Document.Index == "" {
		cfg.Sources.Document.Index = "document_blocks"
	}
	if len(cfg.Sources.Document.BannedPrefixes) == 0 {
		cfg.Sources.Document.BannedPrefixes = []string{"참고", "비고", "추가", "reference", "note", "additional"}
	}

	if cfg.Context.TruncationLimit == 0 {
		cfg.Context.TruncationLimit = 1000
	}

	if len(cfg.Delivery.Table) == 0 {
		cfg.Delivery.Table = DefaultDeliveryTable()
	} else {
		cfg.Delivery.Table = normalizeDeliveryTable(cfg.Delivery.Table)
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 300000
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "smartdm:source:"
	}

	if cfg.Alerts.Region == "" {
		cfg.Alerts.Region = "ap-northeast-2"
	}
	if cfg.Alerts.Throttle == 0 {
		cfg.Alerts.Throttle = 600000
	}

	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 1.0
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig reports the first required setting that is missing as a
// CONFIG_MISSING error.
func validateConfig(cfg *Config) error {
	if cfg.Generation.APIKey == "" {
		return apperrors.NewConfigMissingError("generation.api_key")
	}
	switch cfg.Generation.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return apperrors.NewConfigMissingError("generation.provider")
	}

	switch cfg.Sources.Manual.Format {
	case ManualFormatJSON, ManualFormatText:
	default:
		return apperrors.NewConfigMissingError("sources.manual.format")
	}

	sheet := cfg.Sources.Sheet
	switch sheet.Backend {
	case SheetBackendGoogle:
		if sheet.SheetID == "" {
			return apperrors.NewConfigMissingError("sources.sheet.sheet_id")
		}
		if sheet.APIKey == "" && sheet.ServiceAccountJSON == "" {
			return apperrors.NewConfigMissingError("sources.sheet.api_key")
		}
	case SheetBackendPostgres:
		if cfg.Database.Postgres.Host == "" {
			return apperrors.NewConfigMissingError("database.postgres.host")
		}
		if cfg.Database.Postgres.Database == "" {
			return apperrors.NewConfigMissingError("database.postgres.database")
		}
		if sheet.Table == "" {
			return apperrors.NewConfigMissingError("sources.sheet.table")
		}
	case SheetBackendCSV:
		if sheet.Path == "" {
			return apperrors.NewConfigMissingError("sources.sheet.path")
		}
	default:
		return apperrors.NewConfigMissingError("sources.sheet.backend")
	}

	// The document URL may stay empty; the source then degrades to its
	// "not configured" text instead of blocking start-up.
	switch cfg.Sources.Document.Backend {
	case DocumentBackendHTTP:
	case DocumentBackendElasticsearch:
		if len(cfg.Database.Elasticsearch.Addresses) == 0 {
			return apperrors.NewConfigMissingError("database.elasticsearch.addresses")
		}
	default:
		return apperrors.NewConfigMissingError("sources.document.backend")
	}

	if cfg.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return apperrors.NewConfigMissingError("database.redis.address")
	}
	if cfg.Alerts.SNS.Enabled && cfg.Alerts.SNS.TopicARN == "" {
		return apperrors.NewConfigMissingError("alerts.sns.topic_arn")
	}
	if cfg.Alerts.SES.Enabled && (cfg.Alerts.SES.FromEmail == "" || len(cfg.Alerts.SES.ToEmails) == 0) {
		return apperrors.NewConfigMissingError("alerts.ses.from_email")
	}
	if cfg.Tracing.Enabled && cfg.Tracing.JaegerEndpoint == "" {
		return apperrors.NewConfigMissingError("tracing.jaeger_endpoint")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
