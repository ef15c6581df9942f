package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"orderexport/internal/etl"
	"orderexport/internal/value"
)

// ── CSV File Source ─────────────────────────────────────────
// Reads flat order exports. Dotted headers such as "shipping_address.city"
// are expanded into nested mappings unless nested=false.

type csvFileSource struct{}

func init() { etl.RegisterSource(&csvFileSource{}) }

func (s *csvFileSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{
		Type:  "csv_file",
		Label: "CSV File",
		ConfigFields: []etl.ConfigField{
			{Key: "filePath", Label: "File Path", Type: "file", Required: true, Help: "Path to the CSV file"},
			{Key: "delimiter", Label: "Delimiter", Type: "string", Default: ",", Help: "Column delimiter (default: comma)"},
			{Key: "hasHeader", Label: "Has Header", Type: "select", Options: []string{"true", "false"}, Default: "true", Help: "Whether the first row contains column names"},
			{Key: "nested", Label: "Nest Dotted Headers", Type: "select", Options: []string{"true", "false"}, Default: "true"},
		},
	}
}

func (s *csvFileSource) Read(ctx context.Context, cfg etl.SourceConfig) (<-chan etl.Record, <-chan error) {
	return stream(ctx, func(emit func(etl.Record) bool) error {
		headers, rows, err := readCSVFile(cfg)
		if err != nil {
			return err
		}
		nested := cfg.Bool("nested", true)
		for _, row := range rows {
			rec := value.NewMapping()
			for j, h := range headers {
				if j >= len(row) {
					break
				}
				v := inferCSVValue(row[j])
				if nested {
					setNested(rec, strings.Split(h, "."), v)
				} else {
					rec.Set(h, v)
				}
			}
			if !emit(rec) {
				return nil
			}
		}
		return nil
	})
}

func readCSVFile(cfg etl.SourceConfig) ([]string, [][]string, error) {
	filePath := cfg.String("filePath")
	if filePath == "" {
		return nil, nil, fmt.Errorf("filePath is required")
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if delim := cfg.String("delimiter"); delim != "" {
		reader.Comma = []rune(delim)[0]
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty csv file")
	}

	if !cfg.Bool("hasHeader", true) {
		headers := make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i+1)
		}
		return headers, records, nil
	}

	headers := records[0]
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return headers, records[1:], nil
}

// setNested assigns v under the key path, creating mappings on the way. A
// segment already holding a scalar is left alone.
func setNested(m *value.Mapping, keys []string, v value.Value) {
	for i, k := range keys {
		k = strings.TrimSpace(k)
		if i == len(keys)-1 {
			m.Set(k, v)
			return
		}
		next, ok := m.Get(k)
		child, isMap := next.(*value.Mapping)
		if !ok {
			child = value.NewMapping()
			m.Set(k, child)
		} else if !isMap {
			return
		}
		m = child
	}
}

// inferCSVValue maps an empty cell to null and numeric or boolean text to
// the typed value. Zero-padded digits stay text so identifiers keep their form.
func inferCSVValue(s string) value.Value {
	t := strings.TrimSpace(s)
	if t == "" {
		return value.Null{}
	}
	switch strings.ToLower(t) {
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	}
	if len(t) > 1 && t[0] == '0' && t[1] != '.' {
		return value.String(s)
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return value.Number(f)
	}
	return value.String(s)
}
