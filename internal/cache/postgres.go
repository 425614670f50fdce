package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/taskboard/internal/model"
)

// PostgresStore хранит снимок одной строкой JSONB, ключ как в localStorage
type PostgresStore struct {
	pool *pgxpool.Pool
	key  string
	own  bool
}

func NewPostgresStore(pool *pgxpool.Pool, key string) *PostgresStore {
	return &PostgresStore{pool: pool, key: key}
}

// OpenPostgresStore opens its own pool, closed by Close.
func OpenPostgresStore(ctx context.Context, dsn, key string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, key: key, own: true}, nil
}

func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS task_cache (
			key        TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (s *PostgresStore) Load(ctx context.Context) ([]model.Task, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM task_cache WHERE key = $1
	`, s.key).Scan(&payload)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, err
	}

	var tasks []model.Task
	if err := json.Unmarshal(payload, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *PostgresStore) Save(ctx context.Context, tasks []model.Task) error {
	payload, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO task_cache (key, payload) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`, s.key, payload)
	return err
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM task_cache WHERE key = $1", s.key)
	return err
}

func (s *PostgresStore) Close() error {
	if s.own {
		s.pool.Close()
	}
	return nil
}
