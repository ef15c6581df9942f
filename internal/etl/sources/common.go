package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"orderexport/internal/etl"
	"orderexport/internal/fieldpath"
	"orderexport/internal/secret"
	"orderexport/internal/value"
)

// ── Shared helpers ─────────────────────────────────────────

var secrets secret.SecretStore = secret.Default()

// SetSecretStore replaces the store passwords are read from.
func SetSecretStore(s secret.SecretStore) { secrets = s }

// password resolves cfg["passwordKey"] through the secret store, falling
// back to a literal cfg["password"].
func password(cfg etl.SourceConfig) (string, error) {
	if key := cfg.String("passwordKey"); key != "" && secrets != nil {
		v, err := secrets.Get(key)
		if err != nil {
			return "", fmt.Errorf("read secret %q: %w", key, err)
		}
		if len(v) > 0 {
			return string(v), nil
		}
	}
	return cfg.String("password"), nil
}

// stream runs produce in a goroutine and wires its output to the channel
// pair every Source returns. produce reports false from emit once the
// consumer has gone away.
func stream(ctx context.Context, produce func(emit func(etl.Record) bool) error) (<-chan etl.Record, <-chan error) {
	out := make(chan etl.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		emit := func(rec etl.Record) bool {
			select {
			case out <- rec:
				return true
			case <-ctx.Done():
				return false
			}
		}
		if err := produce(emit); err != nil {
			errCh <- err
		}
	}()

	return out, errCh
}

// readDocuments decodes every JSON document in r: a single document, or
// several separated by whitespace (NDJSON).
func readDocuments(r io.Reader) ([]value.Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var docs []value.Value
	for {
		v, err := value.Decode(dec)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse json (document %d): %w", len(docs)+1, err)
		}
		docs = append(docs, v)
	}
}

// splitRecords expands docs into records. With dataPath, each document is
// first narrowed to that path. Sequences contribute their elements; a lone
// mapping is one record.
func splitRecords(docs []value.Value, dataPath string) ([]etl.Record, error) {
	var out []etl.Record
	for _, doc := range docs {
		if dataPath != "" {
			doc = fieldpath.Resolve(doc, dataPath)
			if doc == nil {
				return nil, fmt.Errorf("invalid data path: %q not found", dataPath)
			}
		}
		switch t := doc.(type) {
		case value.Sequence:
			for _, item := range t {
				if _, ok := item.(*value.Mapping); ok {
					out = append(out, item)
				}
			}
		case *value.Mapping:
			out = append(out, t)
		}
	}
	return out, nil
}
