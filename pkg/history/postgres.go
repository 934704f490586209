package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amosWeiskopf/reportsmith/internal/models"
)

const schema = `CREATE TABLE IF NOT EXISTS report_history (
	id         TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore keeps reports in the report_history table
type PostgresStore struct {
	db  *pgxpool.Pool
	now func() time.Time
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects and makes sure the table exists
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	if connStr == "" {
		return nil, errors.New("postgres history needs a database URL (DATABASE_URL)")
	}
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	s := &PostgresStore{db: db, now: time.Now}
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the history table when missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create report_history: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.ReportDocument, error) {
	rows, err := s.db.Query(ctx, `SELECT doc FROM report_history ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	docs := []models.ReportDocument{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var doc models.ReportDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("stored report is corrupt: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.ReportDocument, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `SELECT doc FROM report_history WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	var doc models.ReportDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("report %s is corrupt: %w", id, err)
	}
	return &doc, nil
}

func (s *PostgresStore) Save(ctx context.Context, doc *models.ReportDocument) error {
	if doc.ID == "" {
		return ErrNoID
	}
	now := s.now()
	stamp(doc, now)
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO report_history (id, doc, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
		doc.ID, data, now.UTC())
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM report_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DELETE FROM report_history`)
	return err
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
