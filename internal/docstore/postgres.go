package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"seoul-news-harvester/internal/models"
)

const (
	defaultMaxOpenConns    = 5
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = 5 * time.Minute
	defaultPingTimeout     = 5 * time.Second
)

var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ErrInvalidTable is returned for table names that are not plain identifiers.
var ErrInvalidTable = errors.New("invalid table name")

// PostgresStore upserts articles into a single table:
//
//	CREATE TABLE articles (
//	  id TEXT PRIMARY KEY, title TEXT NOT NULL, url TEXT NOT NULL,
//	  run_id TEXT NOT NULL DEFAULT '', crawled_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db     *sqlx.DB
	upsert string
}

// OpenPostgres connects with dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn, table string) (*PostgresStore, error) {
	table, err := checkTable(table)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	store, err := NewPostgresStore(db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore wraps an open connection.
func NewPostgresStore(db *sqlx.DB, table string) (*PostgresStore, error) {
	table, err := checkTable(table)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{
		db: db,
		upsert: `INSERT INTO ` + table + ` (id, title, url, run_id, crawled_at)
VALUES (:id, :title, :url, :run_id, :crawled_at)
ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, url = EXCLUDED.url,
  run_id = EXCLUDED.run_id, crawled_at = EXCLUDED.crawled_at`,
	}, nil
}

func checkTable(table string) (string, error) {
	if table == "" {
		return "articles", nil
	}
	if !tableNameRe.MatchString(table) {
		return "", fmt.Errorf("%w %q", ErrInvalidTable, table)
	}
	return table, nil
}

func (s *PostgresStore) PutArticle(ctx context.Context, a models.Article) error {
	if a.ID == "" {
		return ErrEmptyID
	}
	if _, err := s.db.NamedExecContext(ctx, s.upsert, a); err != nil {
		return fmt.Errorf("upsert article %s: %w", a.ID, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
