package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "smartdm-service/internal/common/errors"
)

// ==========================
// Test Helpers
// ==========================

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_SHEET_ID", "GOOGLE_SHEETS_API_KEY",
		"GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_DOC_URL", "MANUAL_PATH", "ZEEBE_ADDRESS",
	} {
		t.Setenv(name, "")
	}
}

const minimalYAML = `
generation:
  api_key: sk-test
sources:
  sheet:
    sheet_id: sheet-1
    api_key: sheets-key
`

// ==========================
// Load Tests
// ==========================

func TestLoadFromFile_Defaults(t *testing.T) {
	clearCredentialEnv(t)

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Generation.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Generation.ModelFor(false))
	assert.Equal(t, "gpt-4", cfg.Generation.ModelFor(true))
	assert.Equal(t, 1000, cfg.Context.TruncationLimit)
	assert.Equal(t, ManualFormatJSON, cfg.Sources.Manual.Format)
	assert.Equal(t, SheetBackendGoogle, cfg.Sources.Sheet.Backend)
	assert.Equal(t, "A:ZZ", cfg.Sources.Sheet.Range)
	assert.Empty(t, cfg.Sources.Sheet.BaseURL)
	assert.Equal(t, DocumentBackendHTTP, cfg.Sources.Document.Backend)
	assert.Equal(t, DefaultDeliveryTable(), cfg.Delivery.Table)
	assert.Equal(t, 300, cfg.Server.DebugManualLen)
	assert.False(t, cfg.Camunda.Enabled())
	assert.False(t, cfg.Alerts.Enabled())
	assert.ElementsMatch(t, []string{"비고", "참고", "remarks", "notes"}, cfg.Sources.Sheet.ExcludedHeaders)
}

func TestLoadFromFile_EnvCredentials(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("GOOGLE_SHEET_ID", "sheet-env")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", `{"type":"service_account"}`)
	t.Setenv("GOOGLE_DOC_URL", "https://docs.example.com/doc")
	t.Setenv("MANUAL_PATH", "/data/manual.json")

	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: smartdm\n"))
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.Generation.APIKey)
	assert.Equal(t, "sheet-env", cfg.Sources.Sheet.SheetID)
	assert.Equal(t, `{"type":"service_account"}`, cfg.Sources.Sheet.ServiceAccountJSON)
	assert.Equal(t, "https://docs.example.com/doc", cfg.Sources.Document.URL)
	assert.Equal(t, "/data/manual.json", cfg.Sources.Manual.Path)
}

func TestLoadFromFile_PlaceholderExpansion(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("SMARTDM_TEST_GEMINI", "gm-key")

	cfg, err := LoadFromFile(writeConfig(t, `
generation:
  provider: gemini
  api_key: ${SMARTDM_TEST_GEMINI}
sources:
  sheet:
    backend: csv
    path: ./records.csv
`))
	require.NoError(t, err)

	assert.Equal(t, "gm-key", cfg.Generation.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.Generation.DefaultModel)
	assert.Empty(t, cfg.Generation.BaseURL)
}

func TestLoadFromFile_DeliveryTableKeysUppercased(t *testing.T) {
	clearCredentialEnv(t)

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML+`
delivery:
  table:
    ZB100: 5
    zc200: 40
`))
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"ZB100": 5, "ZC200": 40}, cfg.Delivery.Table)
}

func TestLoadFromFile_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantKey string
	}{
		{
			name:    "no generation key",
			yaml:    "sources:\n  sheet:\n    sheet_id: s\n    api_key: k\n",
			wantKey: "generation.api_key",
		},
		{
			name:    "no sheet id",
			yaml:    "generation:\n  api_key: k\n",
			wantKey: "sources.sheet.sheet_id",
		},
		{
			name:    "no sheet credential",
			yaml:    "generation:\n  api_key: k\nsources:\n  sheet:\n    sheet_id: s\n",
			wantKey: "sources.sheet.api_key",
		},
		{
			name:    "postgres backend without table",
			yaml:    "generation:\n  api_key: k\nsources:\n  sheet:\n    backend: postgres\ndatabase:\n  postgres:\n    host: db\n    database: smartdm\n",
			wantKey: "sources.sheet.table",
		},
		{
			name:    "elasticsearch documents without addresses",
			yaml:    minimalYAML + "  document:\n    backend: elasticsearch\n",
			wantKey: "database.elasticsearch.addresses",
		},
		{
			name:    "cache without redis",
			yaml:    minimalYAML + "cache:\n  enabled: true\n",
			wantKey: "database.redis.address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearCredentialEnv(t)

			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.Error(t, err)

			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, apperrors.ErrCodeConfigMissing, stdErr.Code)
			assert.Contains(t, stdErr.Details, tt.wantKey)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"answer-question": {Enabled: false, MaxJobsActive: 2, Timeout: 1000, MaxRetries: 1},
	}}

	assert.Equal(t, 2, GetWorkerConfig(cfg, "answer-question").MaxJobsActive)
	assert.False(t, IsWorkerEnabled(cfg, "answer-question"))

	def := GetWorkerConfig(cfg, "parse-user-intent")
	assert.True(t, def.Enabled)
	assert.Equal(t, 3, def.MaxRetries)
	assert.True(t, IsWorkerEnabled(cfg, "parse-user-intent"))
}
