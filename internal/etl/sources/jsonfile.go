package sources

import (
	"context"
	"fmt"
	"os"

	"orderexport/internal/etl"
)

// ── JSON File Source ────────────────────────────────────────
// Reads orders from a local JSON array, a single object or NDJSON.

type jsonFileSource struct{}

func init() { etl.RegisterSource(&jsonFileSource{}) }

func (s *jsonFileSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{
		Type:  "json_file",
		Label: "JSON File",
		ConfigFields: []etl.ConfigField{
			{Key: "filePath", Label: "File Path", Type: "file", Required: true, Help: "Path to a JSON array, a JSON object or newline-delimited JSON"},
			{Key: "dataPath", Label: "Data Path", Type: "string", Help: "Dot-separated path to the order array (e.g. 'data.orders'). Leave empty if the root holds the orders."},
		},
	}
}

func (s *jsonFileSource) Read(ctx context.Context, cfg etl.SourceConfig) (<-chan etl.Record, <-chan error) {
	return stream(ctx, func(emit func(etl.Record) bool) error {
		records, err := readJSONFile(cfg)
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

func readJSONFile(cfg etl.SourceConfig) ([]etl.Record, error) {
	filePath := cfg.String("filePath")
	if filePath == "" {
		return nil, fmt.Errorf("filePath is required")
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	defer f.Close()

	docs, err := readDocuments(f)
	if err != nil {
		return nil, err
	}
	return splitRecords(docs, cfg.String("dataPath"))
}
