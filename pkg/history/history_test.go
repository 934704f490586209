package history

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/reportsmith/internal/config"
	"github.com/amosWeiskopf/reportsmith/internal/models"
)

// ticker returns a clock advancing one minute per call
func ticker() func() time.Time {
	t := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func doc(id string) *models.ReportDocument {
	return &models.ReportDocument{
		ID:         id,
		Name:       "Relatório " + id,
		ClientName: "Acme",
		Sections: []models.ReportSection{
			{ID: "h", Type: models.SectionHeader, Visible: true, Order: 0, Data: map[string]any{"domain": "acme.com"}},
		},
		Images: []models.ReportImage{},
	}
}

func ids(docs []models.ReportDocument) []string {
	var out []string
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

// exerciseStore runs the behaviour every backend shares
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	docs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	a, b := doc("a"), doc("b")
	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Save(ctx, b))
	assert.NotEmpty(t, a.Metadata.CreatedAt)
	assert.Equal(t, a.Metadata.CreatedAt, a.Metadata.UpdatedAt)

	docs, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(docs))

	// re-saving moves a to the front and keeps its creation time
	created := a.Metadata.CreatedAt
	a.Name = "Renomeado"
	require.NoError(t, s.Save(ctx, a))
	docs, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(docs))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Renomeado", got.Name)
	assert.Equal(t, created, got.Metadata.CreatedAt)
	assert.Greater(t, got.Metadata.UpdatedAt, created)
	assert.Equal(t, "acme.com", got.Sections[0].Data["domain"])

	_, err = s.Get(ctx, "zz")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Save(ctx, &models.ReportDocument{}), ErrNoID)

	require.NoError(t, s.Delete(ctx, "b"))
	assert.ErrorIs(t, s.Delete(ctx, "b"), ErrNotFound)
	docs, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(docs))

	require.NoError(t, s.Clear(ctx))
	docs, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFileStore(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "data", "history.json"))
	s.now = ticker()
	exerciseStore(t, s)
}

func TestFileStoreMigratesLegacy(t *testing.T) {
	dir := t.TempDir()
	legacy := doc("old")
	legacy.Metadata.CreatedAt = "2024-01-01T00:00:00Z"
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyFileName), data, 0o644))

	s := NewFileStore(filepath.Join(dir, "history.json"))
	docs, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, ids(docs))

	_, err = os.Stat(filepath.Join(dir, LegacyFileName))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "history.json"))
	assert.NoError(t, err)
}

func TestFileStoreDropsCorruptLegacy(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyFileName), []byte("{nope"), 0o644))

	docs, err := NewFileStore(filepath.Join(dir, "history.json")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
	_, err = os.Stat(filepath.Join(dir, LegacyFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreCorruptHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err := NewFileStore(path).List(context.Background())
	assert.Error(t, err)
}

func newRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStoreWithClient(client, "test")
	s.now = ticker()
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore(t *testing.T) {
	s, mr := newRedis(t)
	exerciseStore(t, s)
	assert.False(t, mr.Exists("test:history"))
}

func TestRedisStoreMigratesLegacy(t *testing.T) {
	s, mr := newRedis(t)
	data, err := json.Marshal(doc("old"))
	require.NoError(t, err)
	require.NoError(t, mr.Set("test:config", string(data)))

	got, err := s.Get(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, "Relatório old", got.Name)
	assert.False(t, mr.Exists("test:config"))
	assert.Equal(t, string(data), mr.HGet("test:history", "old"))
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisStore(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := NewPostgresStore(ctx, url)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Clear(ctx))
	s.now = ticker()
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.HistoryConfig{Backend: "file", Path: filepath.Join(t.TempDir(), "h.json")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	mr := miniredis.RunT(t)
	s, err = Open(ctx, config.HistoryConfig{Backend: "redis", RedisAddr: mr.Addr()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.HistoryConfig{Backend: "postgres"}, nil)
	assert.Error(t, err)

	_, err = Open(ctx, config.HistoryConfig{Backend: "mongo"}, nil)
	assert.Error(t, err)
}
