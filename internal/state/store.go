// Package state records the history of generated projects in SQLite.
package state

import (
	"errors"
	"time"
)

// Errors returned by the store.
var (
	ErrNotOpen   = errors.New("database not opened")
	ErrNotFound  = errors.New("generation not found")
	ErrAmbiguous = errors.New("generation id prefix is ambiguous")
)

// Generation is one recorded compile of a UI tree into a project.
type Generation struct {
	ID           string    `json:"id"`
	ProjectName  string    `json:"project_name"`
	OutputDir    string    `json:"output_dir"`
	Source       string    `json:"source,omitempty"`
	FileCount    int       `json:"file_count"`
	TotalBytes   int       `json:"total_bytes"`
	Components   []string  `json:"components"`
	Unregistered []string  `json:"unregistered,omitempty"`
	Diagnostics  int       `json:"diagnostics"`
	Digest       string    `json:"digest"`
	CreatedAt    time.Time `json:"created_at"`
}

// ShortID returns the first eight characters of the ID.
func (g *Generation) ShortID() string {
	if len(g.ID) <= 8 {
		return g.ID
	}
	return g.ID[:8]
}

// Store persists generation history.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	RecordGeneration(g *Generation) error
	ListGenerations(limit int) ([]*Generation, error)
	GetGeneration(id string) (*Generation, error)
	LatestGeneration(projectName string) (*Generation, error)
	DeleteGeneration(id string) error
}

var _ Store = (*SQLiteStore)(nil)
