package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"orderexport/internal/etl"
)

// ── HTTP Source ─────────────────────────────────────────────
// Fetches orders from a JSON endpoint.

type httpSource struct{}

func init() { etl.RegisterSource(&httpSource{}) }

func (s *httpSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{
		Type:  "http",
		Label: "HTTP API",
		ConfigFields: []etl.ConfigField{
			{Key: "url", Label: "URL", Type: "string", Required: true, Help: "Endpoint returning orders as JSON"},
			{Key: "method", Label: "Method", Type: "select", Options: []string{"GET", "POST"}, Default: "GET"},
			{Key: "headers", Label: "Headers", Type: "textarea", Help: "JSON object of headers (e.g. {\"Authorization\": \"Bearer xxx\"})"},
			{Key: "tokenKey", Label: "Token Secret", Type: "string", Help: "Secret store key sent as a bearer token"},
			{Key: "body", Label: "Body", Type: "textarea", Help: "Request body (for POST)"},
			{Key: "dataPath", Label: "Data Path", Type: "string", Help: "Dot-separated path to the order array in the response (e.g. 'data.orders')"},
		},
	}
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

func (s *httpSource) Read(ctx context.Context, cfg etl.SourceConfig) (<-chan etl.Record, <-chan error) {
	return stream(ctx, func(emit func(etl.Record) bool) error {
		records, err := fetchHTTP(ctx, cfg)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if !emit(rec) {
				return nil
			}
		}
		return nil
	})
}

func fetchHTTP(ctx context.Context, cfg etl.SourceConfig) ([]etl.Record, error) {
	url := cfg.String("url")
	if url == "" {
		return nil, fmt.Errorf("url is required")
	}
	method := strings.ToUpper(cfg.StringOr("method", http.MethodGet))

	var bodyReader io.Reader
	if body := cfg.String("body"); body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range cfg.StringMap("headers") {
		req.Header.Set(k, v)
	}
	if key := cfg.String("tokenKey"); key != "" && secrets != nil {
		token, err := secrets.Get(key)
		if err != nil {
			return nil, fmt.Errorf("read secret %q: %w", key, err)
		}
		if len(token) > 0 {
			req.Header.Set("Authorization", "Bearer "+string(token))
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	docs, err := readDocuments(resp.Body)
	if err != nil {
		return nil, err
	}
	return splitRecords(docs, cfg.String("dataPath"))
}
