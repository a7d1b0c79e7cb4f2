package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/taskvault/taskvault/core"
	"github.com/taskvault/taskvault/monitor"
	"github.com/taskvault/taskvault/store/migrations"
	"github.com/taskvault/taskvault/vector"
	_ "modernc.org/sqlite"
)

const metaKeyDimension = "embedding_dim"

// SQLiteStore implements TaskStore on a local SQLite file. Embeddings are
// stored as little-endian float32 blobs and mirrored into an in-memory
// index for top-k queries.
type SQLiteStore struct {
	db        *sql.DB
	embedder  Embedder
	index     *vector.MemoryIndex
	collector monitor.Collector
	logger    *slog.Logger

	// dimErr is set when the file was populated with vectors of a
	// different dimension than the configured embedder produces. It
	// surfaces on the first similarity query.
	dimErr error
}

// NewSQLiteStore opens (creating if absent) a SQLite-backed task store at
// path. Schema creation is idempotent and safe for concurrent processes
// pointed at the same file.
func NewSQLiteStore(path string, opts Options) (*SQLiteStore, error) {
	opts = opts.withDefaults()

	if path == "" {
		path = DefaultSQLitePath
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection: concurrent callers must never interleave statements.
	db.SetMaxOpenConns(1)

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := runSQLiteMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &SQLiteStore{
		db:        db,
		embedder:  opts.Embedder,
		index:     vector.NewMemoryIndex(),
		collector: opts.Collector,
		logger:    opts.Logger,
	}

	if err := s.checkDimension(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.loadIndex(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

func runSQLiteMigrations(db *sql.DB) error {
	data, err := migrations.SQLite.ReadFile("sqlite/001_init.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := db.Exec(string(data)); err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

// checkDimension records the embedder's dimension in store_meta on first use
// and flags a mismatch when the file was created under a different one.
func (s *SQLiteStore) checkDimension() error {
	if !embedderReady(s.embedder) {
		return nil
	}
	dim := s.embedder.Dimension()

	var stored string
	err := s.db.QueryRow(`SELECT value FROM store_meta WHERE key = ?`, metaKeyDimension).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		// INSERT OR IGNORE: another process may have raced us here.
		_, err = s.db.Exec(`INSERT OR IGNORE INTO store_meta (key, value) VALUES (?, ?)`,
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

// loadIndex mirrors all stored vectors into the in-memory index.
func (s *SQLiteStore) loadIndex() error {
	rows, err := s.db.Query(`SELECT id, embedding FROM tasks WHERE embedding IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("load embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return fmt.Errorf("scan embedding: %w", err)
		}
		vec, err := unpackEmbedding(blob)
		if err != nil {
			return fmt.Errorf("task %d: %w", id, err)
		}
		if err := s.index.Add(id, vec); err != nil {
			return fmt.Errorf("index task %d: %w", id, err)
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) Add(ctx context.Context, task core.TaskInput, emailContext string) (core.TaskRecord, error) {
	if task.Name == "" {
		return core.TaskRecord{}, core.ErrEmptyName
	}

	// Embedding is blocking network I/O; it happens before any statement
	// so the single connection is never held across the call.
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

	var res sql.Result
	var err error
	if emb != nil {
		// Round-trip through the storage precision so the index holds
		// exactly what a reopened store would load.
		blob := packEmbedding(emb)
		emb, _ = unpackEmbedding(blob)
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO tasks (name, priority, due_date, created_at, email_context, embedding)
			VALUES (?, ?, ?, ?, ?, ?)`,
			task.Name, int(task.Priority), task.DueDate, createdAt, nullable(emailContext), blob,
		)
	} else {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO tasks (name, priority, due_date, created_at, email_context)
			VALUES (?, ?, ?, ?, ?)`,
			task.Name, int(task.Priority), task.DueDate, createdAt, nullable(emailContext),
		)
	}
	if err != nil {
		return core.TaskRecord{}, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.TaskRecord{}, fmt.Errorf("last insert id: %w", err)
	}

	if emb != nil {
		if err := s.index.Add(id, emb); err != nil {
			s.logger.Warn("could not index new task", "id", id, "error", err)
		}
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

func (s *SQLiteStore) FindSimilar(ctx context.Context, query string, limit int) ([]core.TaskRecord, error) {
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

	matches, err := s.index.TopK(queryVec, limit)
	if err != nil {
		if errors.Is(err, core.ErrDimensionMismatch) {
			return nil, err
		}
		s.logger.Warn("vector search failed, using text search", "error", err)
		return s.searchByName(ctx, query, limit)
	}
	s.collector.Record(monitor.EventVectorSearch)

	results := make([]core.TaskRecord, 0, len(matches))
	for _, m := range matches {
		rec, err := s.getTask(ctx, m.ID)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		distance := m.Distance
		rec.SimilarityDistance = &distance
		results = append(results, rec)
	}
	return results, nil
}

func (s *SQLiteStore) GetRecent(ctx context.Context, limit int) ([]core.TaskRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, priority, due_date, created_at, email_context
		FROM tasks
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// searchByName is the text fallback: case-insensitive substring containment
// on name, most recent first, no similarity distance.
func (s *SQLiteStore) searchByName(ctx context.Context, query string, limit int) ([]core.TaskRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, priority, due_date, created_at, email_context
		FROM tasks
		WHERE name LIKE '%' || ? || '%'
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	defer rows.Close()

	s.collector.Record(monitor.EventFallbackSearch)
	return scanTasks(rows)
}

func (s *SQLiteStore) getTask(ctx context.Context, id int64) (core.TaskRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, priority, due_date, created_at, email_context
		FROM tasks WHERE id = ?`, id)

	rec, err := scanTask(row)
	if err == sql.ErrNoRows {
		return core.TaskRecord{}, core.ErrNotFound
	}
	if err != nil {
		return core.TaskRecord{}, fmt.Errorf("query task %d: %w", id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
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

	s.index.Remove(id)
	s.collector.Record(monitor.EventDelete)
	return true, nil
}

// Complete removes the task: records have no status field.
func (s *SQLiteStore) Complete(ctx context.Context, id int64) (bool, error) {
	return s.Delete(ctx, id)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (core.TaskRecord, error) {
	var rec core.TaskRecord
	var priority int
	var emailContext sql.NullString

	if err := row.Scan(&rec.ID, &rec.Name, &priority, &rec.DueDate, &rec.CreatedAt, &emailContext); err != nil {
		return core.TaskRecord{}, err
	}
	rec.Priority = core.Priority(priority)
	if emailContext.Valid {
		rec.EmailContext = emailContext.String
	}
	return rec, nil
}

func scanTasks(rows *sql.Rows) ([]core.TaskRecord, error) {
	results := []core.TaskRecord{}
	for rows.Next() {
		rec, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// packEmbedding serializes a vector as little-endian float32, the fixed
// precision vectors are compared in.
func packEmbedding(vec []float64) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
	}
	return buf
}

func unpackEmbedding(blob []byte) ([]float64, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("malformed embedding blob: %d bytes", len(blob))
	}
	vec := make([]float64, len(blob)/4)
	for i := range vec {
		vec[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:])))
	}
	return vec, nil
}
