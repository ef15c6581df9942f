package secret

import (
	"os"
	"strings"
)

// EnvStore reads secrets from ORDEREXPORT_SECRET_<KEY> variables, with the
// key upper-cased and every non-alphanumeric rune replaced by '_'.
type EnvStore struct {
	Prefix string
}

// NewEnvStore creates an EnvStore with the default prefix.
func NewEnvStore() *EnvStore {
	return &EnvStore{Prefix: "ORDEREXPORT_SECRET_"}
}

// VarName returns the environment variable consulted for key.
func (e *EnvStore) VarName(key string) string {
	var b strings.Builder
	b.WriteString(e.Prefix)
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (e *EnvStore) Set(key string, value []byte) error {
	return os.Setenv(e.VarName(key), string(value))
}

func (e *EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(e.VarName(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

func (e *EnvStore) Delete(key string) error {
	return os.Unsetenv(e.VarName(key))
}
