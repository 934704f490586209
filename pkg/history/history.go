package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amosWeiskopf/reportsmith/internal/config"
	"github.com/amosWeiskopf/reportsmith/internal/logger"
	"github.com/amosWeiskopf/reportsmith/internal/models"
)

var (
	// ErrNotFound is returned when no stored report has the given id
	ErrNotFound = errors.New("report not found")
	// ErrNoID is returned when saving a report without an id
	ErrNoID = errors.New("report has no id")
)

// Store keeps complete report documents, most recently updated first
type Store interface {
	List(ctx context.Context) ([]models.ReportDocument, error)
	Get(ctx context.Context, id string) (*models.ReportDocument, error)
	// Save upserts doc, stamping updatedAt and keeping an existing createdAt
	Save(ctx context.Context, doc *models.ReportDocument) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Close() error
}

// Open creates the store selected by cfg.Backend
func Open(ctx context.Context, cfg config.HistoryConfig, log logrus.FieldLogger) (Store, error) {
	log = logger.OrNop(log).WithField("backend", cfg.Backend)

	switch cfg.Backend {
	case "", "file":
		log.WithField("path", cfg.Path).Debug("Opening history file")
		return NewFileStore(cfg.Path), nil
	case "redis":
		s, err := NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		log.WithField("addr", cfg.RedisAddr).Debug("Connected to redis")
		return s, nil
	case "postgres":
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Debug("Connected to postgres")
		return s, nil
	}
	return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
}

// stamp sets updatedAt to now and createdAt when it is missing
func stamp(doc *models.ReportDocument, now time.Time) {
	ts := now.UTC().Format(time.RFC3339)
	doc.Metadata.UpdatedAt = ts
	if doc.Metadata.CreatedAt == "" {
		doc.Metadata.CreatedAt = ts
	}
}

// sortByRecency orders documents by updatedAt, falling back to createdAt,
// newest first. RFC 3339 UTC timestamps compare correctly as strings.
func sortByRecency(docs []models.ReportDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].LastTouched() > docs[j].LastTouched()
	})
}
