package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amosWeiskopf/reportsmith/internal/models"
)

// DefaultKeyPrefix namespaces the redis keys
const DefaultKeyPrefix = "reportsmith"

// RedisOptions configures a RedisStore
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps each report as a field of one hash, keyed by report id
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects and pings the server
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to connect to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisStoreWithClient(client, opts.Prefix), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) historyKey() string { return s.prefix + ":history" }
func (s *RedisStore) legacyKey() string  { return s.prefix + ":config" }

func (s *RedisStore) List(ctx context.Context) ([]models.ReportDocument, error) {
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	fields, err := s.client.HGetAll(ctx, s.historyKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	docs := make([]models.ReportDocument, 0, len(fields))
	for id, raw := range fields {
		var doc models.ReportDocument
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("report %s is corrupt: %w", id, err)
		}
		docs = append(docs, doc)
	}
	sortByRecency(docs)
	return docs, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.ReportDocument, error) {
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	raw, err := s.client.HGet(ctx, s.historyKey(), id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	var doc models.ReportDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("report %s is corrupt: %w", id, err)
	}
	return &doc, nil
}

func (s *RedisStore) Save(ctx context.Context, doc *models.ReportDocument) error {
	if doc.ID == "" {
		return ErrNoID
	}
	if err := s.migrate(ctx); err != nil {
		return err
	}
	stamp(doc, s.now())
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := s.client.HSet(ctx, s.historyKey(), doc.ID, data).Err(); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.HDel(ctx, s.historyKey(), id).Result()
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.historyKey()).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// migrate moves the legacy single-document key into the history hash when
// the hash does not exist yet, then deletes the legacy key
func (s *RedisStore) migrate(ctx context.Context) error {
	exists, err := s.client.Exists(ctx, s.historyKey()).Result()
	if err != nil {
		return fmt.Errorf("check history: %w", err)
	}
	if exists > 0 {
		return nil
	}

	raw, err := s.client.Get(ctx, s.legacyKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read legacy report: %w", err)
	}

	var doc models.ReportDocument
	if json.Unmarshal([]byte(raw), &doc) == nil && doc.ID != "" {
		if err := s.client.HSet(ctx, s.historyKey(), doc.ID, raw).Err(); err != nil {
			return fmt.Errorf("migrate legacy report: %w", err)
		}
	}
	return s.client.Del(ctx, s.legacyKey()).Err()
}
