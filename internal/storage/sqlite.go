package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding prompt vaults and run history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending migrations.
// Pass ":memory:" as dataDir for an in-memory database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "promptpilot.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Prompts ---

const promptColumns = `id, owner_id, title, description, content, tags, model, public, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrompt(row rowScanner) (Prompt, error) {
	var p Prompt
	var tags, createdAt, updatedAt string
	var public int
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Content, &tags, &p.Model, &public, &createdAt, &updatedAt); err != nil {
		return Prompt{}, err
	}
	p.Public = public != 0
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return Prompt{}, fmt.Errorf("decoding tags of prompt %d: %w", p.ID, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Prompt{}, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Prompt{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return p, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(b), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CreatePrompt inserts p and returns it with the store-assigned ID and
// timestamps. OwnerID, Title and Content are required.
func (s *Store) CreatePrompt(p Prompt) (Prompt, error) {
	if p.OwnerID == "" || strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Content) == "" {
		return Prompt{}, fmt.Errorf("%w: owner, title and content are required", ErrInvalidPrompt)
	}
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return Prompt{}, err
	}
	now := time.Now().UTC().Truncate(time.Second)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	res, err := s.db.Exec(`
		INSERT INTO prompts (owner_id, title, description, content, tags, model, public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.OwnerID, p.Title, p.Description, p.Content, tags, p.Model, boolInt(p.Public),
		p.CreatedAt.UTC().Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Prompt{}, fmt.Errorf("inserting prompt: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return Prompt{}, fmt.Errorf("reading prompt id: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

// GetPrompt returns the prompt with the given ID or ErrNotFound.
func (s *Store) GetPrompt(id int64) (Prompt, error) {
	p, err := scanPrompt(s.db.QueryRow(`SELECT `+promptColumns+` FROM prompts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Prompt{}, ErrNotFound
	}
	if err != nil {
		return Prompt{}, err
	}
	return p, nil
}

// ListPromptsByOwner returns every prompt of ownerID in insertion order.
// This ordering is what the candidate selector uses to break score ties.
func (s *Store) ListPromptsByOwner(ownerID string) ([]Prompt, error) {
	rows, err := s.db.Query(`SELECT `+promptColumns+` FROM prompts WHERE owner_id = ? ORDER BY id ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing prompts: %w", err)
	}
	return collectPrompts(rows)
}

// ListPrompts returns ownerID's prompts newest first, narrowed by f.
func (s *Store) ListPrompts(ownerID string, f PromptFilter) ([]Prompt, error) {
	query := `SELECT ` + promptColumns + ` FROM prompts WHERE owner_id = ?`
	args := []any{ownerID}
	if f.Tag != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(prompts.tags) WHERE lower(json_each.value) = lower(?))`
		args = append(args, f.Tag)
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		query += ` AND (lower(title) LIKE ? ESCAPE '\' OR lower(content) LIKE ? ESCAPE '\')`
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing prompts: %w", err)
	}
	return collectPrompts(rows)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func collectPrompts(rows *sql.Rows) ([]Prompt, error) {
	defer rows.Close()
	var results []Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// UpdatePrompt applies u to the prompt with the given ID and returns the
// updated record. The owner must match.
func (s *Store) UpdatePrompt(ownerID string, id int64, u PromptUpdate) (Prompt, error) {
	p, err := s.GetPrompt(id)
	if err != nil {
		return Prompt{}, err
	}
	if p.OwnerID != ownerID {
		return Prompt{}, ErrNotFound
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Tags != nil {
		p.Tags = *u.Tags
	}
	if u.Model != nil {
		p.Model = *u.Model
	}
	if u.Public != nil {
		p.Public = *u.Public
	}
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Content) == "" {
		return Prompt{}, fmt.Errorf("%w: title and content are required", ErrInvalidPrompt)
	}
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return Prompt{}, err
	}
	p.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	_, err = s.db.Exec(`
		UPDATE prompts SET title = ?, description = ?, content = ?, tags = ?, model = ?, public = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		p.Title, p.Description, p.Content, tags, p.Model, boolInt(p.Public), p.UpdatedAt.Format(time.RFC3339),
		id, ownerID,
	)
	if err != nil {
		return Prompt{}, fmt.Errorf("updating prompt %d: %w", id, err)
	}
	return p, nil
}

// DeletePrompt removes a prompt owned by ownerID.
func (s *Store) DeletePrompt(ownerID string, id int64) error {
	res, err := s.db.Exec(`DELETE FROM prompts WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountPrompts returns the number of prompts in ownerID's vault.
func (s *Store) CountPrompts(ownerID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM prompts WHERE owner_id = ?`, ownerID).Scan(&n)
	return n, err
}

// VaultRevision returns a counter that changes on every insert, update or
// delete in ownerID's vault, including writes made by other processes sharing
// the database. A vault that was never written reports 0.
func (s *Store) VaultRevision(ownerID string) (int64, error) {
	var rev int64
	err := s.db.QueryRow(`SELECT revision FROM vault_revisions WHERE owner_id = ?`, ownerID).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading vault revision: %w", err)
	}
	return rev, nil
}

// --- Runs ---

const runColumns = `id, owner_id, status, step_count, final_answer, trace_json, error, created_at`

func scanRun(row rowScanner) (Run, error) {
	var r Run
	var createdAt string
	if err := row.Scan(&r.ID, &r.OwnerID, &r.Status, &r.StepCount, &r.FinalAnswer, &r.TraceJSON, &r.Error, &createdAt); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parsing created_at: %w", err)
	}
	r.CreatedAt = t
	return r, nil
}

func (s *Store) SaveRun(r Run) error {
	status := r.Status
	if status == "" {
		status = RunCompleted
	}
	trace := r.TraceJSON
	if trace == "" {
		trace = "[]"
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OwnerID, status, r.StepCount, r.FinalAnswer, trace, r.Error, created.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetRun(ownerID, id string) (Run, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ? AND owner_id = ?`, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

func (s *Store) GetRecentRuns(ownerID string, limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT `+runColumns+` FROM runs WHERE owner_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, ownerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// PruneRuns deletes runs of every owner created before cutoff and returns
// the number of rows removed. At most limit rows are removed per call when
// limit > 0.
func (s *Store) PruneRuns(cutoff time.Time, limit int) (int64, error) {
	query := `DELETE FROM runs WHERE created_at < ?`
	args := []any{cutoff.UTC().Format(time.RFC3339)}
	if limit > 0 {
		query = `DELETE FROM runs WHERE rowid IN (
			SELECT rowid FROM runs WHERE created_at < ? ORDER BY created_at ASC LIMIT ?)`
		args = append(args, limit)
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	return res.RowsAffected()
}
