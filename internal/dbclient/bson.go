package dbclient

import (
	"encoding/base64"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"orderexport/internal/value"
)

// FromBSON converts decoded BSON into a Value. Documents keep field order;
// ObjectIDs become hex strings, dates RFC 3339 UTC and decimals their text.
func FromBSON(v any) value.Value {
	switch t := v.(type) {
	case nil, bson.Null, bson.Undefined:
		return value.Null{}
	case bson.D:
		m := value.NewMapping()
		for _, e := range t {
			m.Set(e.Key, FromBSON(e.Value))
		}
		return m
	case bson.M:
		plain := make(map[string]any, len(t))
		for k, item := range t {
			plain[k] = FromBSON(item)
		}
		return value.FromAny(plain)
	case bson.A:
		seq := make(value.Sequence, len(t))
		for i, item := range t {
			seq[i] = FromBSON(item)
		}
		return seq
	case []any:
		return FromBSON(bson.A(t))
	case bson.ObjectID:
		return value.String(t.Hex())
	case bson.DateTime:
		return value.String(t.Time().UTC().Format(time.RFC3339Nano))
	case bson.Decimal128:
		return value.String(t.String())
	case bson.Timestamp:
		return value.String(time.Unix(int64(t.T), 0).UTC().Format(time.RFC3339))
	case bson.Binary:
		return value.String(base64.StdEncoding.EncodeToString(t.Data))
	case bson.Regex:
		return value.String("/" + t.Pattern + "/" + t.Options)
	default:
		return value.FromAny(t)
	}
}
