// Package keystore provides encrypted at-rest storage for API keys.
package keystore

import (
	"os"
	"path/filepath"
	"runtime"
)

// Keystore is the interface for named secret storage.
type Keystore interface {
	// Set stores a secret under name, overwriting any previous value.
	Set(name, value string) error
	// Get retrieves a secret by name.
	Get(name string) (string, error)
	// Delete removes a secret by name.
	Delete(name string) error
	// List returns the stored names in sorted order, never the values.
	List() ([]string, error)
}

// ErrKeyNotFound is returned when a requested entry does not exist.
type ErrKeyNotFound struct {
	Name string
}

func (e *ErrKeyNotFound) Error() string {
	return "keystore: no entry named " + e.Name
}

// DefaultPath returns the default keystore file path.
// - macOS/Linux: ~/.genlang/keys.enc
// - Windows: %USERPROFILE%\.genlang\keys.enc
func DefaultPath() string {
	var homeDir string
	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
	} else {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		return "keys.enc"
	}
	return filepath.Join(homeDir, ".genlang", "keys.enc")
}

// Open returns the default file-backed keystore.
func Open() (Keystore, error) {
	return OpenFile(DefaultPath())
}
