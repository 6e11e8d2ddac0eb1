package summarizesheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// RowFetcher returns every row of the record source, header row first.
type RowFetcher interface {
	FetchRows(ctx context.Context) ([][]string, error)
}

// TableReader is the slice of the Postgres client the postgres backend uses.
type TableReader interface {
	ReadTable(ctx context.Context, table string) ([][]string, error)
}

// ==========================
// Google Sheets
// ==========================

type googleSheetsFetcher struct {
	service *sheets.Service
	sheetID string
	rng     string
}

// NewGoogleSheetsFetcher reads the configured range through the Sheets v4
// values API. A service account credential takes precedence over an API key.
func NewGoogleSheetsFetcher(ctx context.Context, config *Config, base *http.Client) (RowFetcher, error) {
	client, err := sheetsHTTPClient(ctx, config, base)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(config.BaseURL, "/")+"/"))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &googleSheetsFetcher{service: service, sheetID: config.SheetID, rng: config.Range}, nil
}

// sheetsHTTPClient carries the credential on the client itself, since the
// service ignores key and credential options once an HTTP client is supplied.
func sheetsHTTPClient(ctx context.Context, config *Config, base *http.Client) (*http.Client, error) {
	if base == nil {
		base = http.DefaultClient
	}

	if config.ServiceAccountJSON != "" {
		keyJSON, err := serviceAccountKey(config.ServiceAccountJSON)
		if err != nil {
			return nil, err
		}
		creds, err := google.CredentialsFromJSON(ctx, keyJSON, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parse service account: %w", err)
		}
		return oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), creds.TokenSource), nil
	}

	if config.APIKey != "" {
		rt := base.Transport
		if rt == nil {
			rt = http.DefaultTransport
		}
		return &http.Client{
			Transport: &transport.APIKey{Key: config.APIKey, Transport: rt},
			Timeout:   base.Timeout,
		}, nil
	}

	return base, nil
}

func serviceAccountKey(value string) ([]byte, error) {
	if strings.HasPrefix(strings.TrimSpace(value), "{") {
		return []byte(value), nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

func (f *googleSheetsFetcher) FetchRows(ctx context.Context) ([][]string, error) {
	resp, err := f.service.Spreadsheets.Values.Get(f.sheetID, f.rng).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("sheets API status %d: %s", apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("read sheet values: %w", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cellString(v)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// cellString renders one decoded cell; formatted values arrive as strings.
func cellString(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}

// ==========================
// Postgres
// ==========================

type postgresFetcher struct {
	reader TableReader
	table  string
}

func NewPostgresFetcher(reader TableReader, table string) RowFetcher {
	return &postgresFetcher{reader: reader, table: table}
}

func (f *postgresFetcher) FetchRows(ctx context.Context) ([][]string, error) {
	return f.reader.ReadTable(ctx, f.table)
}

// ==========================
// CSV
// ==========================

type csvFetcher struct {
	path string
}

func NewCSVFetcher(path string) RowFetcher {
	return &csvFetcher{path: path}
}

func (f *csvFetcher) FetchRows(_ context.Context) ([][]string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}
