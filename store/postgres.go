package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/taskvault/taskvault/core"
	"github.com/taskvault/taskvault/llm"
	"github.com/taskvault/taskvault/monitor"
)

// PostgresStore implements TaskStore on PostgreSQL with pgvector. Top-k runs
// in SQL via the cosine distance operator, so no in-memory index is kept.
type PostgresStore struct {
	db        *sql.DB
	embedder  Embedder
	dimension int
	collector monitor.Collector
	logger    *slog.Logger
	dimErr    error
}

// NewPostgresStore opens a pgvector-backed task store. The embedding
// dimension is bound into the schema on first creation; reopening against a
// provider with a different dimension surfaces on the first similarity query.
func NewPostgresStore(dsn string, opts Options) (*PostgresStore, error) {
	opts = opts.withDefaults()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	dim := llm.DefaultEmbeddingDimensions
	if embedderReady(opts.Embedder) {
		dim = opts.Embedder.Dimension()
	}

	s := &PostgresStore{
		db:        db,
		embedder:  opts.Embedder,
		dimension: dim,
		collector: opts.Collector,
		logger:    opts.Logger,
	}

	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.checkDimension(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) ensureSchema() error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tasks (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			priority INTEGER NOT NULL,
			due_date TEXT NOT NULL,
			created_at TEXT NOT NULL,
			email_context TEXT,
			embedding vector(%d)
		)`, s.dimension),
		`CREATE INDEX IF NOT EXISTS idx_tasks_embedding ON tasks USING hnsw (embedding vector_cosine_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks (created_at DESC, id DESC)`,
		`CREATE TABLE IF NOT EXISTS store_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) checkDimension() error {
	if !embedderReady(s.embedder) {
		return nil
	}
	dim := s.embedder.Dimension()

	var stored string
	err := s.db.QueryRow(`SELECT value FROM store_meta WHERE key = $1`, metaKeyDimension).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.Exec(`INSERT INTO store_meta (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`,
			metaKeyDimension, strconv.Itoa(dim))
		if err != nil {
			return fmt.Errorf("record dimension: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read dimension: %w", err)
	default:
		if stored != strconv.Itoa(dim) {
			s.dimErr = fmt.Errorf("store holds %s-dimension vectors, provider configured for %d: %w",
				stored, dim, core.ErrDimensionMismatch)
		}
	}
	return nil
}

func (s *PostgresStore) Add(ctx context.Context, task core.TaskInput, emailContext string) (core.TaskRecord, error) {
	if task.Name == "" {
		return core.TaskRecord{}, core.ErrEmptyName
	}

	var emb []float64
	if embedderReady(s.embedder) && s.dimErr == nil {
		var err error
		emb, err = s.embedder.Embed(ctx, embedText(task.Name, emailContext))
		if err != nil {
			s.collector.Record(monitor.EventEmbedFailure)
			s.logger.Warn("embedding failed, storing task without vector", "task", task.Name, "error", err)
			emb = nil
		}
	}

	createdAt := time.Now().UTC().Format(time.RFC3339Nano)

	var id int64
	var err error
	if emb != nil {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO tasks (name, priority, due_date, created_at, email_context, embedding)
			VALUES ($1, $2, $3, $4, $5, $6::vector)
			RETURNING id`,
			task.Name, int(task.Priority), task.DueDate, createdAt, nullable(emailContext), formatEmbedding(emb),
		).Scan(&id)
	} else {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO tasks (name, priority, due_date, created_at, email_context)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			task.Name, int(task.Priority), task.DueDate, createdAt, nullable(emailContext),
		).Scan(&id)
	}
	if err != nil {
		return core.TaskRecord{}, fmt.Errorf("insert task: %w", err)
	}

	s.collector.Record(monitor.EventAdd)

	return core.TaskRecord{
		ID:           id,
		Name:         task.Name,
		Priority:     task.Priority,
		DueDate:      task.DueDate,
		CreatedAt:    createdAt,
		EmailContext: emailContext,
		Embedding:    emb,
	}, nil
}

func (s *PostgresStore) FindSimilar(ctx context.Context, query string, limit int) ([]core.TaskRecord, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	if !embedderReady(s.embedder) {
		return s.searchByName(ctx, query, limit)
	}
	if s.dimErr != nil {
		return nil, s.dimErr
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.collector.Record(monitor.EventEmbedFailure)
		s.logger.Warn("query embedding failed, using text search", "error", err)
		return s.searchByName(ctx, query, limit)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, priority, due_date, created_at, email_context,
		       embedding <=> $1::vector AS distance
		FROM tasks
		WHERE embedding IS NOT NULL
		ORDER BY distance ASC, id DESC
		LIMIT $2`, formatEmbedding(queryVec), limit)
	if err != nil {
		s.logger.Warn("vector search failed, using text search", "error", err)
		return s.searchByName(ctx, query, limit)
	}
	defer rows.Close()

	results := []core.TaskRecord{}
	for rows.Next() {
		var rec core.TaskRecord
		var priority int
		var emailContext sql.NullString
		var distance float64
		if err := rows.Scan(&rec.ID, &rec.Name, &priority, &rec.DueDate, &rec.CreatedAt, &emailContext, &distance); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		rec.Priority = core.Priority(priority)
		if emailContext.Valid {
			rec.EmailContext = emailContext.String
		}
		rec.SimilarityDistance = &distance
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	s.collector.Record(monitor.EventVectorSearch)
	return results, nil
}

func (s *PostgresStore) GetRecent(ctx context.Context, limit int) ([]core.TaskRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, priority, due_date, created_at, email_context
		FROM tasks
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

func (s *PostgresStore) searchByName(ctx context.Context, query string, limit int) ([]core.TaskRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, priority, due_date, created_at, email_context
		FROM tasks
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	defer rows.Close()

	s.collector.Record(monitor.EventFallbackSearch)
	return scanTasks(rows)
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	s.collector.Record(monitor.EventDelete)
	return true, nil
}

// Complete removes the task: records have no status field.
func (s *PostgresStore) Complete(ctx context.Context, id int64) (bool, error) {
	return s.Delete(ctx, id)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// formatEmbedding converts a vector to pgvector text format: "[0.1,0.2,0.3]"
func formatEmbedding(embedding []float64) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
