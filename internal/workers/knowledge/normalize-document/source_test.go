// internal/workers/knowledge/normalize-document/source_test.go
package normalizedocument

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartdm-service/internal/common/logger"
	"smartdm-service/internal/models"
)

// ==========================
// Test Helpers
// ==========================

type loggerAdapter struct{ logger.Logger }

func (a loggerAdapter) With(fields map[string]interface{}) Logger {
	return loggerAdapter{a.Logger.With(fields)}
}

type stubFetcher struct {
	blocks []Block
	err    error
}

func (s stubFetcher) FetchBlocks(context.Context) ([]Block, error) {
	return s.blocks, s.err
}

type panickingFetcher struct{}

func (panickingFetcher) FetchBlocks(context.Context) ([]Block, error) {
	panic("unexpected markup")
}

func createTestConfig() *Config {
	return &Config{
		Backend:        "http",
		BannedPrefixes: []string{"참고", "비고", "추가", "reference", "note", "additional"},
		Index:          "document_blocks",
		MaxBlocks:      1000,
	}
}

func newSource(t *testing.T, fetcher BlockFetcher) *Source {
	return NewSource(createTestConfig(), fetcher, loggerAdapter{logger.NewTestLogger(t)})
}

const samplePage = `<!DOCTYPE html>
<html><head><title>상담 가이드</title><style>p { color: red }</style></head>
<body>
  <h1>배송 안내</h1>
  <p>모든 상품은 <b>결제 후</b> 순차 발송됩니다.</p>
  <p>짧은 문장</p>
  <ul>
    <li>반품 가능</li>
    <li>불가</li>
    <li>참고: 내부 전용</li>
    <li>반품 가능</li>
  </ul>
  <h2>Note for agents</h2>
  <h2>교환 정책</h2>
  <p>교환은 수령 후 14일 이내 가능합니다.</p>
  <h1>배송 안내</h1>
  <p>   </p>
</body></html>`

const expectedSample = "📌 배송 안내\n\n" +
	"모든 상품은 결제 후 순차 발송됩니다.\n" +
	"- 반품 가능\n" +
	"\n📌 교환 정책\n\n" +
	"교환은 수령 후 14일 이내 가능합니다."

// ==========================
// Normalize Tests
// ==========================

func TestNormalize(t *testing.T) {
	banned := createTestConfig().BannedPrefixes

	tests := []struct {
		name     string
		blocks   []Block
		expected string
	}{
		{"empty input", nil, ""},
		{"blank text dropped", []Block{{BlockParagraph, "   "}}, ""},
		{
			"banned prefixes are case-insensitive",
			[]Block{{BlockParagraph, "REFERENCE only for staff members"}, {BlockHeading, "추가 정보"}, {BlockListItem, "Additional info"}},
			"",
		},
		{"short list item dropped", []Block{{BlockListItem, "불가"}}, ""},
		{"list item kept at three runes", []Block{{BlockListItem, "반품됨"}}, "- 반품됨"},
		{"two word paragraph dropped", []Block{{BlockParagraph, "짧은 문장"}}, ""},
		{"three word paragraph kept", []Block{{BlockParagraph, "이것은 세 단어"}}, "이것은 세 단어"},
		{"heading rendered with marker", []Block{{BlockHeading, "안내"}}, "📌 안내"},
		{
			"duplicates removed keeping first position",
			[]Block{{BlockListItem, "반품 가능"}, {BlockParagraph, "one two three"}, {BlockListItem, "반품 가능"}},
			"- 반품 가능\none two three",
		},
		{"unknown kind dropped", []Block{{BlockKind("table"), "a b c"}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.blocks, banned))
		})
	}
}

func TestParseHTML(t *testing.T) {
	blocks, err := ParseHTML(strings.NewReader(samplePage))
	require.NoError(t, err)

	assert.Equal(t, Block{Kind: BlockHeading, Text: "배송 안내"}, blocks[0])
	assert.Equal(t, Block{Kind: BlockParagraph, Text: "모든 상품은 결제 후 순차 발송됩니다."}, blocks[1])
	assert.Equal(t, expectedSample, Normalize(blocks, createTestConfig().BannedPrefixes))
}

func TestParseHTML_NestedMatchesIncluded(t *testing.T) {
	blocks, err := ParseHTML(strings.NewReader(`<body><ul><li><p>first nested paragraph here</p></li></ul></body>`))
	require.NoError(t, err)

	require.Len(t, blocks, 2)
	assert.Equal(t, BlockListItem, blocks[0].Kind)
	assert.Equal(t, BlockParagraph, blocks[1].Kind)
	assert.Equal(t, blocks[0].Text, blocks[1].Text)
}

func TestParseHTML_InlineRunsJoined(t *testing.T) {
	page := `<body><p><span>납</span><span>기</span> 안내</p><li>A<b>B</b></li>` +
		`<p><span>교</span><span>환은</span> 수령 후 가능</p></body>`

	blocks, err := ParseHTML(strings.NewReader(page))
	require.NoError(t, err)

	require.Len(t, blocks, 3)
	assert.Equal(t, Block{Kind: BlockParagraph, Text: "납기 안내"}, blocks[0])
	assert.Equal(t, Block{Kind: BlockListItem, Text: "AB"}, blocks[1])
	assert.Equal(t, Block{Kind: BlockParagraph, Text: "교환은 수령 후 가능"}, blocks[2])

	assert.Equal(t, "교환은 수령 후 가능", Normalize(blocks, createTestConfig().BannedPrefixes))
}

func TestParseHTML_EmptyBody(t *testing.T) {
	_, err := ParseHTML(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrNoBody))
}

// ==========================
// Source Tests
// ==========================

func TestSource_Fetch_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	src := newSource(t, NewHTTPFetcher(server.URL, server.Client()))

	result := src.Fetch(context.Background())
	assert.Equal(t, models.SourceOK, result.Status)
	assert.Equal(t, models.SourceDocument, result.Source)
	assert.Equal(t, expectedSample, result.Text)

	// unchanged remote snapshot yields byte-identical output
	assert.Equal(t, result.Text, src.FetchNormalized(context.Background()))
}

func TestSource_Fetch_Failures(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer notFound.Close()

	emptyBody := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer emptyBody.Close()

	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name     string
		fetcher  BlockFetcher
		expected string
	}{
		{"no url", NewHTTPFetcher("", nil), "문서 URL이 설정되지 않았습니다."},
		{"non-success status", NewHTTPFetcher(notFound.URL, notFound.Client()), "문서 접근 실패: 404"},
		{"no body", NewHTTPFetcher(emptyBody.URL, emptyBody.Client()), "문서 구조 분석 실패: body 태그 없음"},
		{"transport error", NewHTTPFetcher(closedURL, nil), "문서 파싱 실패: "},
		{"panic inside fetcher", panickingFetcher{}, "문서 파싱 실패: internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newSource(t, tt.fetcher).Fetch(context.Background())
			assert.Equal(t, models.SourceUnavailable, result.Status)
			assert.True(t, strings.HasPrefix(result.Text, tt.expected), result.Text)
		})
	}
}

func TestSource_Fetch_NothingKept(t *testing.T) {
	result := newSource(t, stubFetcher{blocks: []Block{{BlockListItem, "no"}}}).Fetch(context.Background())

	assert.Equal(t, models.SourceEmpty, result.Status)
	assert.Empty(t, result.Text)
}

// ==========================
// Elasticsearch Backend Tests
// ==========================

func TestElasticsearchFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/document_blocks/_search", r.URL.Path)

		var query map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&query))
		assert.Equal(t, float64(1000), query["size"])
		assert.Contains(t, query["query"], "term")

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hits": {"hits": [
			{"_source": {"kind": "h1", "text": "배송 안내", "position": 0}},
			{"_source": {"kind": "paragraph", "text": "모든 상품은 순차 발송됩니다.", "position": 1}},
			{"_source": {"kind": "image", "text": "logo", "position": 2}},
			{"_source": {"kind": "li", "text": "반품 가능", "position": 3}}
		]}}`))
	}))
	defer server.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	config := createTestConfig()
	config.Backend = "elasticsearch"
	config.DocumentID = "guide-1"

	src := NewSource(config, NewElasticsearchFetcher(client, config), loggerAdapter{logger.NewTestLogger(t)})
	assert.Equal(t, "📌 배송 안내\n\n모든 상품은 순차 발송됩니다.\n- 반품 가능", src.FetchNormalized(context.Background()))
}

func TestElasticsearchFetcher_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"type": "index_not_found_exception"}}`))
	}))
	defer server.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	config := createTestConfig()
	result := NewSource(config, NewElasticsearchFetcher(client, config), loggerAdapter{logger.NewNoOpLogger()}).
		Fetch(context.Background())

	assert.Equal(t, models.SourceUnavailable, result.Status)
	assert.Equal(t, "문서 접근 실패: 404", result.Text)
}
