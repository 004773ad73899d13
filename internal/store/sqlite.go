package store

import (
	"context"

	"github.com/fishblog/fishblog/internal/db"
)

// SQLite stores documents in the kv table of a local SQLite database.
type SQLite struct {
	db *db.DB
}

// NewSQLite wraps an opened database.
func NewSQLite(database *db.DB) *SQLite {
	return &SQLite{db: database}
}

func (s *SQLite) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok, err := s.db.GetValue(key)
	if err != nil || !ok {
		return nil, ok, err
	}
	return []byte(v), true, nil
}

func (s *SQLite) Set(_ context.Context, key string, value []byte) error {
	return s.db.SetValue(key, string(value))
}
