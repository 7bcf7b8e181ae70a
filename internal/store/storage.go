package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/trueframework/true-board/internal/evaluation"
)

// Snapshot is the persisted form of the evaluation collection.
type Snapshot struct {
	Evaluations []*evaluation.Evaluation `json:"evaluations"`
	SavedAt     int64                    `json:"savedAt"`
}

// Storage is the interface for local snapshot persistence.
type Storage interface {
	// Save saves the snapshot to persistent storage.
	Save(snap *Snapshot) error

	// Load loads the snapshot. A missing snapshot is (nil, nil).
	Load() (*Snapshot, error)
}

// MemoryStorage keeps the snapshot in memory (for testing and
// cache-less deployments).
type MemoryStorage struct {
	snap *Snapshot
	mu   sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Save(snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Copy to avoid mutations through retained pointers
	snapCopy := Snapshot{
		Evaluations: evaluation.CloneAll(snap.Evaluations),
		SavedAt:     snap.SavedAt,
	}
	m.snap = &snapCopy
	return nil
}

func (m *MemoryStorage) Load() (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snap == nil {
		return nil, nil
	}
	snapCopy := Snapshot{
		Evaluations: evaluation.CloneAll(m.snap.Evaluations),
		SavedAt:     m.snap.SavedAt,
	}
	return &snapCopy, nil
}

// FileStorage keeps the snapshot in a JSON file.
type FileStorage struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStorage creates a new file-based storage rooted at basePath.
func NewFileStorage(basePath string) *FileStorage {
	return &FileStorage{
		basePath: basePath,
	}
}

func (f *FileStorage) snapshotPath() string {
	return filepath.Join(f.basePath, "evaluations.json")
}

func (f *FileStorage) Save(snap *Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(f.snapshotPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	return nil
}

func (f *FileStorage) Load() (*Snapshot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.snapshotPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snap, nil
}

// NewStorage picks a backend: file storage when a path is configured,
// in-memory otherwise.
func NewStorage(path string) Storage {
	if path != "" {
		return NewFileStorage(path)
	}
	return NewMemoryStorage()
}
