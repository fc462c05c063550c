package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// timeLayout sorts lexically in creation order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite state store instance.
// If logger is nil, a discard logger is used.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened state database", slog.String("path", path))
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// RecordGeneration stores g, assigning an ID and timestamp when unset.
func (s *SQLiteStore) RecordGeneration(g *Generation) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if g.ID == "" {
		g.ID = generateID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	components, err := json.Marshal(nonNil(g.Components))
	if err != nil {
		return fmt.Errorf("failed to marshal components: %w", err)
	}
	unregistered, err := json.Marshal(nonNil(g.Unregistered))
	if err != nil {
		return fmt.Errorf("failed to marshal unregistered types: %w", err)
	}

	s.logger.Debug("recording generation",
		slog.String("id", g.ID),
		slog.String("project", g.ProjectName),
		slog.Int("files", g.FileCount))

	_, err = s.db.Exec(`
		INSERT INTO generations (
			id, project_name, output_dir, source, file_count, total_bytes,
			components, unregistered, diagnostics, digest, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.ProjectName, g.OutputDir, g.Source, g.FileCount, g.TotalBytes,
		string(components), string(unregistered), g.Diagnostics, g.Digest,
		g.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

const selectGeneration = `
	SELECT id, project_name, output_dir, source, file_count, total_bytes,
		components, unregistered, diagnostics, digest, created_at
	FROM generations`

// ListGenerations returns the most recent generations, newest first.
// A limit of zero or less returns all of them.
func (s *SQLiteStore) ListGenerations(limit int) ([]*Generation, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(selectGeneration+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var gens []*Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	return gens, nil
}

// GetGeneration retrieves a generation by ID or unique ID prefix.
func (s *SQLiteStore) GetGeneration(id string) (*Generation, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	rows, err := s.db.Query(selectGeneration+` WHERE id LIKE ? ESCAPE '\' ORDER BY created_at DESC LIMIT 2`, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var found []*Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}

	switch {
	case len(found) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case len(found) > 1 && found[0].ID != id:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
	return found[0], nil
}

// LatestGeneration returns the newest generation for a project, or nil
// when the project has none.
func (s *SQLiteStore) LatestGeneration(projectName string) (*Generation, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	row := s.db.QueryRow(selectGeneration+` WHERE project_name = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, projectName)
	g, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGeneration removes a generation by exact ID.
func (s *SQLiteStore) DeleteGeneration(id string) error {
	if s.db == nil {
		return ErrNotOpen
	}

	res, err := s.db.Exec(`DELETE FROM generations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete generation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete generation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row scanner) (*Generation, error) {
	var (
		g                        Generation
		components, unregistered string
		createdAt                string
	)
	err := row.Scan(&g.ID, &g.ProjectName, &g.OutputDir, &g.Source, &g.FileCount, &g.TotalBytes,
		&components, &unregistered, &g.Diagnostics, &g.Digest, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan generation: %w", err)
	}

	if err := json.Unmarshal([]byte(components), &g.Components); err != nil {
		return nil, fmt.Errorf("failed to unmarshal components: %w", err)
	}
	if err := json.Unmarshal([]byte(unregistered), &g.Unregistered); err != nil {
		return nil, fmt.Errorf("failed to unmarshal unregistered types: %w", err)
	}
	if g.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return &g, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
