package etl

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cast"
)

// ── Source ──────────────────────────────────────────────────
// A Source yields order records from an external system.
// Implementations live in etl/sources/, one file per source type.

// SourceConfig is an opaque configuration map parsed per source type.
type SourceConfig map[string]any

// String returns the trimmed text form of key, or "".
func (c SourceConfig) String(key string) string {
	return strings.TrimSpace(cast.ToString(c[key]))
}

// StringOr returns String(key), or def when that is empty.
func (c SourceConfig) StringOr(key, def string) string {
	if s := c.String(key); s != "" {
		return s
	}
	return def
}

// Int returns key as an int, or def when it is missing or not numeric.
func (c SourceConfig) Int(key string, def int) int {
	raw, ok := c[key]
	if !ok || raw == nil || raw == "" {
		return def
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return def
	}
	return n
}

// Bool returns key as a bool, or def when it is missing or unparsable.
func (c SourceConfig) Bool(key string, def bool) bool {
	raw, ok := c[key]
	if !ok || raw == nil || raw == "" {
		return def
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return def
	}
	return b
}

// StringMap reads key as a string map; a JSON object string is accepted.
func (c SourceConfig) StringMap(key string) map[string]string {
	m, err := cast.ToStringMapStringE(c[key])
	if err != nil {
		return nil
	}
	return m
}

// Merge returns a copy of c with every key of over applied on top.
func (c SourceConfig) Merge(over SourceConfig) SourceConfig {
	out := make(SourceConfig, len(c)+len(over))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// ConfigField describes a single configuration input for a source.
type ConfigField struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Type     string   `json:"type"` // "string" | "select" | "textarea" | "password" | "file" | "number"
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
	Default  string   `json:"default,omitempty"`
	Help     string   `json:"help,omitempty"`
}

// SourceSpec describes a source type: its label and config fields.
type SourceSpec struct {
	Type         string        `json:"type"`
	Label        string        `json:"label"`
	ConfigFields []ConfigField `json:"configFields"`
}

// Source is the interface every record source must implement.
type Source interface {
	// Spec returns metadata about this source type.
	Spec() SourceSpec

	// Read streams records from the source into a channel.
	// The channel is closed when all records have been read or ctx is cancelled.
	// Errors are sent on the error channel (buffered size 1).
	Read(ctx context.Context, cfg SourceConfig) (<-chan Record, <-chan error)
}

// ── Source Registry ────────────────────────────────────────
// Compile-time registration via init() in each source file.

var (
	registryMu sync.RWMutex
	registry   = map[string]Source{}
)

// RegisterSource registers a source by its spec type.
func RegisterSource(s Source) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Spec().Type] = s
}

// GetSource returns a registered source by type, or an error if not found.
func GetSource(typ string) (Source, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[typ]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %q", typ)
	}
	return s, nil
}

// ListSources returns the specs of all registered sources, sorted by type.
func ListSources() []SourceSpec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	specs := make([]SourceSpec, 0, len(registry))
	for _, s := range registry {
		specs = append(specs, s.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Type < specs[j].Type })
	return specs
}
