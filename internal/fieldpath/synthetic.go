package fieldpath

import (
	"strings"
	"time"

	"orderexport/internal/value"
)

const (
	// StaticPrefix marks paths that never touch record data.
	StaticPrefix = "__static."

	// ExportedTimestamp resolves to the instant the cell is computed.
	ExportedTimestamp = StaticPrefix + "exportedTimestamp"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Provider serves synthetic fields. ok is false when the path is not one it
// knows, in which case the caller falls back to Resolve.
type Provider interface {
	Provide(path string) (v value.Value, ok bool)
}

// StaticProvider serves the "__static." namespace.
type StaticProvider struct {
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewStaticProvider returns a provider backed by the wall clock.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{Now: time.Now}
}

func (p *StaticProvider) Provide(path string) (value.Value, bool) {
	if path != ExportedTimestamp {
		return nil, false
	}
	now := time.Now
	if p != nil && p.Now != nil {
		now = p.Now
	}
	return value.String(now().UTC().Format(TimestampLayout)), true
}

// IsStatic reports whether path lives in the synthetic namespace.
func IsStatic(path string) bool {
	return strings.HasPrefix(path, StaticPrefix)
}
