package normalizedocument

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
)

type elasticsearchFetcher struct {
	client *elasticsearch.Client
	config *Config
}

// NewElasticsearchFetcher reads pre-split document blocks from an index,
// ordered by their position field.
func NewElasticsearchFetcher(client *elasticsearch.Client, config *Config) BlockFetcher {
	return &elasticsearchFetcher{client: client, config: config}
}

func (f *elasticsearchFetcher) FetchBlocks(ctx context.Context) ([]Block, error) {
	body, err := json.Marshal(f.buildQuery())
	if err != nil {
		return nil, err
	}

	res, err := f.client.Search(
		f.client.Search.WithContext(ctx),
		f.client.Search.WithIndex(f.config.Index),
		f.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, &StatusError{StatusCode: res.StatusCode}
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	blocks := make([]Block, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		kind, ok := parseKind(hit.Source.Kind)
		if !ok {
			continue
		}
		blocks = append(blocks, Block{Kind: kind, Text: hit.Source.Text})
	}
	return blocks, nil
}

func (f *elasticsearchFetcher) buildQuery() map[string]interface{} {
	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if f.config.DocumentID != "" {
		query = map[string]interface{}{
			"term": map[string]interface{}{"document_id": f.config.DocumentID},
		}
	}
	return map[string]interface{}{
		"query": query,
		"sort":  []interface{}{map[string]interface{}{"position": "asc"}},
		"size":  f.config.MaxBlocks,
	}
}

// parseKind accepts both block kinds and the HTML tag names they come from.
func parseKind(kind string) (BlockKind, bool) {
	switch strings.ToLower(kind) {
	case "heading", "h1", "h2", "h3":
		return BlockHeading, true
	case "paragraph", "p":
		return BlockParagraph, true
	case "list_item", "li":
		return BlockListItem, true
	default:
		return "", false
	}
}
