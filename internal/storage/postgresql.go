// Package storage implements persistence on PostgreSQL through database/sql
// and the pgx driver. Every multi-statement write runs in one transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the pgx driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage owns the connection pool.
type Storage struct {
	DB *sql.DB
}

// New opens the pool and checks connectivity.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(30 * time.Second)

	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Close releases the pool.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// DBInfo is the result of the connectivity probe.
type DBInfo struct {
	Time     time.Time `json:"time"`
	Database string    `json:"database"`
}

// Probe runs a trivial query and reports the server time and database name.
func (s *Storage) Probe(ctx context.Context) (*DBInfo, error) {
	const op = "storage.Probe"
	var info DBInfo
	err := s.DB.QueryRowContext(ctx, `SELECT NOW(), current_database()`).Scan(&info.Time, &info.Database)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &info, nil
}

type scanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
