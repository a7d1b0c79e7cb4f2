package store

import (
	"fmt"
	"strings"
)

// New creates a task store based on the DSN.
//   - Empty DSN: SQLite at tasks.db
//   - postgres:// or postgresql://: PostgreSQL with pgvector
//   - Anything else: SQLite at the specified path
func New(dsn string, opts Options) (TaskStore, error) {
	if dsn == "" {
		return NewSQLiteStore(DefaultSQLitePath, opts)
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		s, err := NewPostgresStore(dsn, opts)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return s, nil
	}

	return NewSQLiteStore(dsn, opts)
}
