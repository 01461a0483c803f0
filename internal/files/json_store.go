package files

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harrylevesque/qrscan/internal/crypto"
	"github.com/harrylevesque/qrscan/internal/models"
)

// JSONStore keeps the whole history in one JSON file, oldest first. When a
// key is set the file is sealed with AES-GCM.
type JSONStore struct {
	filePath string
	key      []byte
	dedup    time.Duration
	now      func() time.Time
	mu       sync.RWMutex
}

// NewJSONStore opens the history at filePath. key may be nil for a
// plaintext file. The file is read once to fail fast on a wrong key.
func NewJSONStore(filePath string, key []byte, dedup time.Duration) (*JSONStore, error) {
	s := &JSONStore{
		filePath: filePath,
		key:      key,
		dedup:    dedup,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if _, err := s.load(); err != nil {
		return nil, fmt.Errorf("load scan store %s: %w", filePath, err)
	}
	return s, nil
}

func (s *JSONStore) Save(_ context.Context, scan *models.Scan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scans, err := s.load()
	if err != nil {
		return err
	}
	now := s.now()
	if n := len(scans); n > 0 && isDuplicate(&scans[n-1], scan.Raw, now, s.dedup) {
		return ErrDuplicate
	}
	scan.ID = newScanID()
	scan.CreatedAt = now
	return s.write(append(scans, *scan))
}

func (s *JSONStore) Get(_ context.Context, id string) (*models.Scan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scans, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range scans {
		if scans[i].ID == id {
			return &scans[i], nil
		}
	}
	return nil, ErrNotFound
}

// List returns scans newest first.
func (s *JSONStore) List(_ context.Context, opts ListOptions) ([]models.Scan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scans, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.Scan, 0, len(scans))
	for i := len(scans) - 1; i >= 0; i-- {
		if opts.Kind != "" && scans[i].Kind != opts.Kind {
			continue
		}
		out = append(out, scans[i])
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *JSONStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scans, err := s.load()
	if err != nil {
		return err
	}
	for i := range scans {
		if scans[i].ID == id {
			return s.write(append(scans[:i], scans[i+1:]...))
		}
	}
	return ErrNotFound
}

// Clear removes the history file.
func (s *JSONStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }

// load reads the file. A missing file is an empty history.
func (s *JSONStore) load() ([]models.Scan, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if s.key != nil {
		if data, err = crypto.DecryptAESGCM(s.key, data); err != nil {
			return nil, fmt.Errorf("decrypt scan store: %w", err)
		}
	}
	var scans []models.Scan
	if err := json.Unmarshal(data, &scans); err != nil {
		return nil, err
	}
	return scans, nil
}

// write replaces the file via a temp file and rename.
func (s *JSONStore) write(scans []models.Scan) error {
	data, err := json.MarshalIndent(scans, "", "  ")
	if err != nil {
		return err
	}
	if s.key != nil {
		if data, err = crypto.EncryptAESGCM(s.key, data); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}
