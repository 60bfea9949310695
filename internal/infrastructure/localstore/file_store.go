package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/omorfo/backend/internal/domain/cart"
)

const schemaVersion = 1

// document is the on-disk shape of a guest cart
type document struct {
	SchemaVersion int             `json:"schema_version"`
	SavedAt       time.Time       `json:"saved_at"`
	Items         []cart.LineItem `json:"items"`
}

// FileStore is a device-scoped guest cart store backed by one JSON file.
// All operations are synchronous. Writes go through a temp file and
// rename, so a crash never leaves a half-written cart behind.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file store at the given path. An empty path
// defaults to the user config directory.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve guest store directory: %w", err)
		}
		path = filepath.Join(base, "omorfo", "guest-cart.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create guest store directory: %w", err)
	}

	return &FileStore{path: path}, nil
}

// Path returns the backing file location
func (s *FileStore) Path() string {
	return s.path
}

// ReadAll returns the stored guest cart, empty when no cart exists.
// A corrupt file is treated as empty rather than failing every load.
func (s *FileStore) ReadAll() ([]cart.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []cart.LineItem{}, nil
		}
		return nil, fmt.Errorf("read guest cart: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return []cart.LineItem{}, nil
	}
	if doc.Items == nil {
		return []cart.LineItem{}, nil
	}
	return doc.Items, nil
}

// WriteAll replaces the stored guest cart
func (s *FileStore) WriteAll(items []cart.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := document{
		SchemaVersion: schemaVersion,
		SavedAt:       time.Now(),
		Items:         items,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write guest cart: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("commit guest cart: %w", err)
	}
	return nil
}

// Clear removes the stored guest cart. Clearing an absent cart is a no-op.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear guest cart: %w", err)
	}
	return nil
}

// Ensure the store satisfies the domain contract
var _ cart.LocalStore = (*FileStore)(nil)
