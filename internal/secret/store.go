package secret

// SecretStore holds sensitive values such as database passwords, keyed by a
// name that source configs refer to via "passwordKey".
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// Chain reads from each store in turn and writes to the first one.
type Chain []SecretStore

func (c Chain) Set(key string, value []byte) error {
	if len(c) == 0 {
		return nil
	}
	return c[0].Set(key, value)
}

func (c Chain) Get(key string) ([]byte, error) {
	for _, s := range c {
		v, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if len(v) > 0 {
			return v, nil
		}
	}
	return nil, nil
}

func (c Chain) Delete(key string) error {
	for _, s := range c {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Default consults the environment first, then the OS keychain.
func Default() SecretStore {
	return Chain{NewEnvStore(), NewKeychainStore()}
}
