package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/amosWeiskopf/reportsmith/internal/models"
)

// LegacyFileName is the single-document file older versions kept next to
// the history file
const LegacyFileName = "report-config.json"

// FileStore keeps the whole history as one JSON array on disk
type FileStore struct {
	path   string
	legacy string
	now    func() time.Time
	mu     sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore stores the history at path
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		legacy: filepath.Join(filepath.Dir(path), LegacyFileName),
		now:    time.Now,
	}
}

func (s *FileStore) List(ctx context.Context) ([]models.ReportDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return nil, err
	}
	sortByRecency(docs)
	return docs, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*models.ReportDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID == id {
			return &docs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *FileStore) Save(ctx context.Context, doc *models.ReportDocument) error {
	if doc.ID == "" {
		return ErrNoID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return err
	}
	stamp(doc, s.now())

	for i := range docs {
		if docs[i].ID == doc.ID {
			docs[i] = *doc
			return s.write(docs)
		}
	}
	return s.write(append([]models.ReportDocument{*doc}, docs...))
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load()
	if err != nil {
		return err
	}
	kept := docs[:0]
	for _, d := range docs {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(docs) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.write(kept)
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// load reads the history, migrating the legacy file first when the history
// file does not exist yet
func (s *FileStore) load() ([]models.ReportDocument, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.migrate()
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var docs []models.ReportDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("history file %s is corrupt: %w", s.path, err)
	}
	return docs, nil
}

// migrate moves a legacy single document into a new history list. An
// unreadable legacy file is dropped.
func (s *FileStore) migrate() ([]models.ReportDocument, error) {
	data, err := os.ReadFile(s.legacy)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.ReportDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read legacy report: %w", err)
	}

	docs := []models.ReportDocument{}
	var doc models.ReportDocument
	if json.Unmarshal(data, &doc) == nil && doc.ID != "" {
		docs = append(docs, doc)
		if err := s.write(docs); err != nil {
			return nil, err
		}
	}
	if err := os.Remove(s.legacy); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove legacy report: %w", err)
	}
	return docs, nil
}

// write replaces the history file atomically
func (s *FileStore) write(docs []models.ReportDocument) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
