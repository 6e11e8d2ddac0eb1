package normalizedocument

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// maxDocumentBytes caps how much of a remote page is parsed.
const maxDocumentBytes = 5 << 20

var blockTags = map[string]BlockKind{
	"h1": BlockHeading,
	"h2": BlockHeading,
	"h3": BlockHeading,
	"p":  BlockParagraph,
	"li": BlockListItem,
}

// BlockFetcher returns the document's blocks in document order.
type BlockFetcher interface {
	FetchBlocks(ctx context.Context) ([]Block, error)
}

type httpFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher fetches a published HTML page, e.g. a Google Doc's
// "publish to web" URL.
func NewHTTPFetcher(url string, client *http.Client) BlockFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpFetcher{url: url, client: client}
}

func (f *httpFetcher) FetchBlocks(ctx context.Context) ([]Block, error) {
	if strings.TrimSpace(f.url) == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	return ParseHTML(io.LimitReader(resp.Body, maxDocumentBytes))
}

// ParseHTML extracts h1-h3, p and li blocks from the page body. Matching
// elements nested inside other matching elements are reported as well.
func ParseHTML(r io.Reader) ([]Block, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	body := findElement(doc, "body")
	if body == nil || body.FirstChild == nil {
		return nil, ErrNoBody
	}

	var blocks []Block
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if kind, ok := blockTags[n.Data]; ok {
				blocks = append(blocks, Block{Kind: kind, Text: textContent(n)})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(body)

	return blocks, nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// textContent concatenates the node's text nodes as they appear, so inline
// runs such as styled spans inside one word stay joined. Script and style
// contents are skipped.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(sb.String())
}
