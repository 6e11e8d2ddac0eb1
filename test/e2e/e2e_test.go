// test/e2e/e2e_test.go
package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartdm-service/internal/api"
	"smartdm-service/internal/common/config"
	"smartdm-service/internal/common/logger"

	aggregatecontext "smartdm-service/internal/workers/ai-conversation/aggregate-context"
	answerquestion "smartdm-service/internal/workers/ai-conversation/answer-question"
	llmsynthesis "smartdm-service/internal/workers/ai-conversation/llm-synthesis"
	loadmanual "smartdm-service/internal/workers/knowledge/load-manual"
	normalizedocument "smartdm-service/internal/workers/knowledge/normalize-document"
	summarizesheet "smartdm-service/internal/workers/knowledge/summarize-sheet"
)

// Logger adapters to bridge logger.Logger to package-specific Logger interfaces
type llmSynthesisLoggerAdapter struct {
	logger.Logger
}

func (a *llmSynthesisLoggerAdapter) With(fields map[string]interface{}) llmsynthesis.Logger {
	return &llmSynthesisLoggerAdapter{a.Logger.With(fields)}
}

type answerQuestionLoggerAdapter struct {
	logger.Logger
}

func (a *answerQuestionLoggerAdapter) With(fields map[string]interface{}) answerquestion.Logger {
	return &answerQuestionLoggerAdapter{a.Logger.With(fields)}
}

type loadManualLoggerAdapter struct {
	logger.Logger
}

func (a *loadManualLoggerAdapter) With(fields map[string]interface{}) loadmanual.Logger {
	return &loadManualLoggerAdapter{a.Logger.With(fields)}
}

type summarizeSheetLoggerAdapter struct {
	logger.Logger
}

func (a *summarizeSheetLoggerAdapter) With(fields map[string]interface{}) summarizesheet.Logger {
	return &summarizeSheetLoggerAdapter{a.Logger.With(fields)}
}

type normalizeDocumentLoggerAdapter struct {
	logger.Logger
}

func (a *normalizeDocumentLoggerAdapter) With(fields map[string]interface{}) normalizedocument.Logger {
	return &normalizeDocumentLoggerAdapter{a.Logger.With(fields)}
}

type apiLoggerAdapter struct {
	logger.Logger
}

func (a *apiLoggerAdapter) With(fields map[string]interface{}) api.Logger {
	return &apiLoggerAdapter{a.Logger.With(fields)}
}

// ==========================
// Fixtures
// ==========================

const documentHTML = `<html><body>
<h1>배송 안내</h1>
<p>주문 후 영업일 기준으로 출고가 진행됩니다.</p>
<li>제주 지역은 추가 배송비가 발생합니다</li>
<p>참고 이 문단은 제외됩니다 항상.</p>
</body></html>`

const recordsCSV = `날짜,상품,비고
2024-05-01,ZA509 출고,내부메모
2024-05-02,ZA026 입고,
`

// fakeOpenAI records every user prompt it receives and answers with a fixed
// completion.
type fakeOpenAI struct {
	mu      sync.Mutex
	prompts []string
	models  []string
	calls   int32
}

func (f *fakeOpenAI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.calls, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &req))

		f.mu.Lock()
		f.models = append(f.models, req.Model)
		if len(req.Messages) > 0 {
			f.prompts = append(f.prompts, req.Messages[len(req.Messages)-1].Content)
		}
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"  환불은 7일 이내 가능합니다.  "}}]}`)
	}
}

func (f *fakeOpenAI) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

type stack struct {
	server *httptest.Server
	openai *fakeOpenAI
}

// newStack wires the service the way cmd/answer-service does, with the
// manual at manualPath, a CSV record source and an HTML document server.
func newStack(t *testing.T, manualPath string) *stack {
	t.Helper()
	log := logger.NewTestLogger(t)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "records.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(recordsCSV), 0o600))

	docServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, documentHTML)
	}))
	t.Cleanup(docServer.Close)

	openai := &fakeOpenAI{}
	genServer := httptest.NewServer(openai.handler(t))
	t.Cleanup(genServer.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{RequestTimeout: 10000, DebugManualLen: 300},
		Generation: config.GenerationConfig{
			Provider:      config.ProviderOpenAI,
			BaseURL:       genServer.URL,
			APIKey:        "test-key",
			DefaultModel:  "gpt-3.5-turbo",
			HighTierModel: "gpt-4",
			Temperature:   0.3,
			Timeout:       5000,
			MaxRetries:    2,
		},
		Sources: config.SourcesConfig{
			Timeout: 5000,
			Manual:  config.ManualConfig{Format: config.ManualFormatJSON, Path: manualPath},
			Sheet: config.SheetConfig{
				Backend:         config.SheetBackendCSV,
				Path:            csvPath,
				ExcludedHeaders: []string{"비고"},
			},
			Document: config.DocumentConfig{
				Backend:        config.DocumentBackendHTTP,
				URL:            docServer.URL,
				BannedPrefixes: []string{"참고"},
			},
		},
		Context:  config.ContextConfig{TruncationLimit: 1000},
		Delivery: config.DeliveryConfig{Table: config.DefaultDeliveryTable()},
	}

	client := &http.Client{Timeout: 5 * time.Second}

	manual := loadmanual.NewSource(loadmanual.LoadConfig(cfg), &loadManualLoggerAdapter{log})

	sheetCfg := summarizesheet.LoadConfig(cfg)
	sheet := summarizesheet.NewSource(sheetCfg, summarizesheet.NewCSVFetcher(sheetCfg.CSVPath), &summarizeSheetLoggerAdapter{log})

	docCfg := normalizedocument.LoadConfig(cfg)
	document := normalizedocument.NewSource(docCfg, normalizedocument.NewHTTPFetcher(docCfg.URL, client), &normalizeDocumentLoggerAdapter{log})

	llmCfg := llmsynthesis.LoadConfig(cfg)
	synthesis := llmsynthesis.NewHandler(llmCfg, llmsynthesis.NewOpenAIGenerator(llmCfg, client), &llmSynthesisLoggerAdapter{log})

	resolver := answerquestion.NewResolver(
		answerquestion.LoadConfig(cfg),
		answerquestion.Sources{Manual: manual, Sheet: sheet, Document: document},
		aggregatecontext.NewAggregator(aggregatecontext.LoadConfig(cfg)),
		synthesis,
		nil,
		&answerQuestionLoggerAdapter{log},
	)

	srv := api.NewServer(
		&api.Config{DebugManualLength: cfg.Server.DebugManualLen, ReadinessTimeout: time.Second},
		resolver,
		manual,
		nil,
		&apiLoggerAdapter{log},
	)

	server := httptest.NewServer(srv.Handler())
	t.Cleanup(server.Close)

	return &stack{server: server, openai: openai}
}

func writeManual(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manual.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func ask(t *testing.T, s *stack, body string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(s.server.URL+"/ask", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// ==========================
// Ask Flow
// ==========================

func TestAsk_TemplateAnswerSkipsGeneration(t *testing.T) {
	s := newStack(t, writeManual(t, `[{"question":"환불","answer":"가능"}]`))

	status, out := ask(t, s, `{"question":"ZA509랑 ZA999 상품 배송 언제 와요?"}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "상품 코드 ZA509의 납기일은 13일입니다. 상품 코드 ZA999의 납기일 정보를 찾을 수 없습니다.", out["answer"])
	assert.Equal(t, "template", out["model"])

	parsed := out["parsed"].(map[string]interface{})
	assert.Equal(t, "query_delivery_per_item", parsed["intent"])
	assert.Equal(t, []interface{}{"ZA509", "ZA999"}, parsed["product_codes"])
	assert.Equal(t, 0, s.openai.callCount())
}

func TestAsk_DeadlineQuery(t *testing.T) {
	s := newStack(t, writeManual(t, `{"환불":"가능"}`))

	status, out := ask(t, s, `{"question":"납기 최대 며칠이에요?"}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "납기의 최대 기한은 23일입니다.", out["answer"])
	assert.Equal(t, 0, s.openai.callCount())
}

func TestAsk_GeneratedAnswerCarriesAllSources(t *testing.T) {
	s := newStack(t, writeManual(t, `[{"question":"환불 되나요?","answer":"7일 이내 가능"}]`))

	status, out := ask(t, s, `{"question":"환불 규정 알려줘"}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "환불은 7일 이내 가능합니다.", out["answer"])
	assert.Equal(t, "gpt-3.5-turbo", out["model"])
	assert.Equal(t, map[string]interface{}{"intent": "unknown"}, out["parsed"])

	require.Len(t, s.openai.prompts, 1)
	prompt := s.openai.prompts[0]
	assert.Contains(t, prompt, aggregatecontext.ManualLabel+"\nQ: 환불 되나요?\nA: 7일 이내 가능")
	assert.Contains(t, prompt, aggregatecontext.SheetLabel+"\n날짜: 2024-05-01, 상품: ZA509 출고")
	assert.NotContains(t, prompt, "내부메모")
	assert.Contains(t, prompt, aggregatecontext.DocumentLabel)
	assert.Contains(t, prompt, "📌 배송 안내")
	assert.Contains(t, prompt, "- 제주 지역은 추가 배송비가 발생합니다")
	assert.NotContains(t, prompt, "이 문단은 제외됩니다")
	assert.True(t, strings.HasSuffix(prompt, "질문: 환불 규정 알려줘"))
}

func TestAsk_HighTierModel(t *testing.T) {
	s := newStack(t, writeManual(t, `{"환불":"가능"}`))

	status, out := ask(t, s, `{"question":"최근 주문 요약해줘","use_gpt4":true}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "gpt-4", out["model"])
	assert.Equal(t, map[string]interface{}{"intent": "summary_request"}, out["parsed"])
	assert.Equal(t, []string{"gpt-4"}, s.openai.models)
}

func TestAsk_ManualMissingFallback(t *testing.T) {
	s := newStack(t, filepath.Join(t.TempDir(), "absent.json"))

	status, out := ask(t, s, `{"question":"환불 규정 알려줘"}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, answerquestion.ManualMissingAnswer, out["answer"])
	assert.Equal(t, "manual_missing", out["model"])
	assert.Equal(t, 0, s.openai.callCount())
}

func TestAsk_InvalidBody(t *testing.T) {
	s := newStack(t, writeManual(t, `{"환불":"가능"}`))

	status, out := ask(t, s, `{"use_gpt4":true}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, out["detail"])
}

// ==========================
// Manual Endpoints
// ==========================

func TestManualEndpoints(t *testing.T) {
	s := newStack(t, writeManual(t, `{"환불":"가능","교환":"불가"}`))

	resp, err := http.Get(s.server.URL + "/api/manual")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var manual map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&manual))
	assert.Equal(t, "Q: 환불\nA: 가능\n\nQ: 교환\nA: 불가", manual["manual"])

	debug, err := http.Get(s.server.URL + "/debug/manual?limit=4")
	require.NoError(t, err)
	defer debug.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(debug.Body).Decode(&out))
	assert.Equal(t, "Q: 환", out["manual"])
	assert.Equal(t, float64(24), out["length"])
}

func TestManualEndpoint_Missing(t *testing.T) {
	s := newStack(t, filepath.Join(t.TempDir(), "absent.json"))

	resp, err := http.Get(s.server.URL + "/api/manual")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
