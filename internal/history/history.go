// Package history keeps a SQLite log of the artifacts hdviz has written.
package history

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// Artifact is one output file written by a render operation.
type Artifact struct {
	RunID     string    `json:"run_id"`
	Kind      string    `json:"kind"`
	Inputs    []string  `json:"inputs"`
	Output    string    `json:"output"`
	Bytes     int64     `json:"bytes"`
	Digest    string    `json:"digest"` // BLAKE2b-256, hex
	CreatedAt time.Time `json:"created_at"`
}

// Recorder receives artifacts as they are written.
type Recorder interface {
	Record(a Artifact) error
}

// Discard is a Recorder that drops everything.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(Artifact) error { return nil }

// NewRunID returns a fresh identifier grouping the artifacts of one invocation.
func NewRunID() string {
	return uuid.NewString()
}

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS artifacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			inputs_json TEXT NOT NULL,
			output TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			digest TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id);
	`

	_, err := db.Exec(schema)
	return err
}

// Record stores an artifact.
func (d *DB) Record(a Artifact) error {
	inputsJSON, err := json.Marshal(a.Inputs)
	if err != nil {
		return fmt.Errorf("marshaling inputs: %w", err)
	}

	_, err = d.db.Exec(`
		INSERT INTO artifacts (run_id, kind, inputs_json, output, bytes, digest, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.RunID, a.Kind, string(inputsJSON), a.Output, a.Bytes, a.Digest, a.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("inserting artifact %s: %w", a.Output, err)
	}
	return nil
}

// List returns the most recent artifacts first. A limit of 0 returns all.
func (d *DB) List(limit int) ([]Artifact, error) {
	query := `SELECT run_id, kind, inputs_json, output, bytes, digest, created_at
		FROM artifacts ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return d.query(query, args...)
}

// ByRun returns the artifacts of one run in the order they were written.
func (d *DB) ByRun(runID string) ([]Artifact, error) {
	return d.query(`SELECT run_id, kind, inputs_json, output, bytes, digest, created_at
		FROM artifacts WHERE run_id = ? ORDER BY id`, runID)
}

func (d *DB) query(query string, args ...any) ([]Artifact, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		var a Artifact
		var inputsJSON string
		var createdAt int64
		if err := rows.Scan(&a.RunID, &a.Kind, &inputsJSON, &a.Output, &a.Bytes, &a.Digest, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning artifact: %w", err)
		}
		if err := json.Unmarshal([]byte(inputsJSON), &a.Inputs); err != nil {
			return nil, fmt.Errorf("parsing inputs for %s: %w", a.Output, err)
		}
		a.CreatedAt = time.UnixMilli(createdAt)
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// Describe builds an Artifact for a file that has just been written,
// filling in its size and digest.
func Describe(runID, kind, output string, inputs []string) (Artifact, error) {
	f, err := os.Open(output)
	if err != nil {
		return Artifact{}, fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return Artifact{}, fmt.Errorf("creating hash: %w", err)
	}
	n, err := io.Copy(h, f)
	if err != nil {
		return Artifact{}, fmt.Errorf("hashing artifact: %w", err)
	}

	return Artifact{
		RunID:     runID,
		Kind:      kind,
		Inputs:    inputs,
		Output:    output,
		Bytes:     n,
		Digest:    hex.EncodeToString(h.Sum(nil)),
		CreatedAt: time.Now(),
	}, nil
}
