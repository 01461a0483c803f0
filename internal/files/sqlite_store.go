package files

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/harrylevesque/qrscan/internal/models"
)

// SQLiteStore keeps the history in a single SQLite table.
type SQLiteStore struct {
	db    *sql.DB
	dedup time.Duration
	now   func() time.Time
	// mu makes the duplicate check and insert in Save atomic.
	mu sync.Mutex
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string, dedup time.Duration) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:    db,
		dedup: dedup,
		now:   func() time.Time { return time.Now().UTC() },
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		raw TEXT NOT NULL,
		kind TEXT NOT NULL,
		display_name TEXT NOT NULL,
		payload TEXT NOT NULL,
		screenshot BLOB,
		source TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at);
	CREATE INDEX IF NOT EXISTS idx_scans_kind ON scans(kind);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create scans table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, scan *models.Scan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	latest, err := s.latest(ctx)
	if err != nil {
		return err
	}
	if isDuplicate(latest, scan.Raw, now, s.dedup) {
		return ErrDuplicate
	}

	payload, err := json.Marshal(scan.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	id := newScanID()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scans (id, raw, kind, display_name, payload, screenshot, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, scan.Raw, string(scan.Kind), scan.DisplayName, string(payload), scan.Screenshot, scan.Source, now.UnixNano())
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	scan.ID = id
	scan.CreatedAt = now
	return nil
}

func (s *SQLiteStore) latest(ctx context.Context) (*models.Scan, error) {
	rows, err := s.db.QueryContext(ctx, selectScans+` ORDER BY created_at DESC LIMIT 1`)
	if err != nil {
		return nil, err
	}
	scans, err := scanRows(rows)
	if err != nil || len(scans) == 0 {
		return nil, err
	}
	return &scans[0], nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Scan, error) {
	rows, err := s.db.QueryContext(ctx, selectScans+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	scans, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(scans) == 0 {
		return nil, ErrNotFound
	}
	return &scans[0], nil
}

// List returns scans newest first.
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]models.Scan, error) {
	query := selectScans
	var args []any
	if opts.Kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(opts.Kind))
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, id)
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

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM scans`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectScans = `SELECT id, raw, kind, display_name, payload, screenshot, source, created_at FROM scans`

func scanRows(rows *sql.Rows) ([]models.Scan, error) {
	defer rows.Close()
	out := []models.Scan{}
	for rows.Next() {
		var (
			sc        models.Scan
			kind      string
			payload   string
			createdAt int64
		)
		if err := rows.Scan(&sc.ID, &sc.Raw, &kind, &sc.DisplayName, &payload, &sc.Screenshot, &sc.Source, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &sc.Payload); err != nil {
			return nil, fmt.Errorf("decode payload of %s: %w", sc.ID, err)
		}
		sc.Kind = models.Kind(kind)
		sc.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return out, nil
}
