package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

const keychainService = "orderexport"

// errNoKeychain is returned by Set where the security tool is unavailable.
var errNoKeychain = errors.New("keychain: not available on " + runtime.GOOS)

// KeychainStore keeps secrets in the macOS login keychain through the
// `security` tool. Elsewhere it behaves as an empty read-only store.
type KeychainStore struct {
	service string
}

// NewKeychainStore creates a KeychainStore for the orderexport service.
func NewKeychainStore() *KeychainStore {
	return &KeychainStore{service: keychainService}
}

func (k *KeychainStore) available() bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	_, err := exec.LookPath("security")
	return err == nil
}

// Set writes or replaces the generic password for key.
func (k *KeychainStore) Set(key string, value []byte) error {
	if !k.available() {
		return errNoKeychain
	}
	cmd := exec.Command("security", "add-generic-password",
		"-a", key,
		"-s", k.service,
		"-w", string(value),
		"-U",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("keychain set: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Get returns nil when the item does not exist (exit status 44) or the
// keychain cannot be reached.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	if !k.available() {
		return nil, nil
	}
	out, err := exec.Command("security", "find-generic-password",
		"-a", key,
		"-s", k.service,
		"-w",
	).Output()
	if err != nil {
		return nil, nil
	}
	return []byte(strings.TrimSpace(string(out))), nil
}

// Delete removes the item; a missing item is not an error.
func (k *KeychainStore) Delete(key string) error {
	if !k.available() {
		return nil
	}
	_ = exec.Command("security", "delete-generic-password", "-a", key, "-s", k.service).Run()
	return nil
}
