package session

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlexZinkM/evm-wallet/internal/model"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// utf8BOM is prepended for proper display in Windows editors
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileStore keeps the envelope in a single JSON file
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by the file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the envelope with owner-only permissions
func (s *FileStore) Save(env model.SessionEnvelope) error {
	data, err := encodeEnvelope(env)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	// Write to a temp file first so a crash never leaves half an envelope
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if _, err := tmp.Write(append(append([]byte{}, utf8BOM...), data...)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Load reads the envelope. Missing or unreadable files are None; empty or
// malformed ones are cleared and None.
func (s *FileStore) Load() fn.Option[model.SessionEnvelope] {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warnf("Failed to read session file %s: %v", s.path, err)
		}
		return fn.None[model.SessionEnvelope]()
	}

	// Skip UTF-8 BOM if present
	data = bytes.TrimPrefix(data, utf8BOM)

	return loadOrClear(s, data)
}

// Clear removes the session file
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
