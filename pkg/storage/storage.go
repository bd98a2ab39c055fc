// Package storage persists scan runs and upload attempts to a local
// sqlite database, so past scans can be inspected offline and served by
// the dashboard.
package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mevzuat"

	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS scan_runs (
  id              TEXT PRIMARY KEY,
  institution_id  TEXT NOT NULL,
  detsis          TEXT,
  type            TEXT,
  started_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  total_sections  INTEGER NOT NULL,
  total_items     INTEGER NOT NULL,
  uploaded_count  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_institution ON scan_runs(institution_id, started_at);
CREATE TABLE IF NOT EXISTS scan_items (
  id              INTEGER PRIMARY KEY,
  run_id          TEXT NOT NULL REFERENCES scan_runs(id),
  section_title   TEXT NOT NULL,
  item_id         TEXT NOT NULL,
  title           TEXT NOT NULL,
  link            TEXT,
  in_mevzuatgpt   INTEGER NOT NULL CHECK (in_mevzuatgpt IN (0,1)),
  in_portal       INTEGER NOT NULL CHECK (in_portal IN (0,1)),
  position        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_run ON scan_items(run_id, position);
CREATE TABLE IF NOT EXISTS upload_log (
  id              INTEGER PRIMARY KEY,
  occurred_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  section_title   TEXT NOT NULL,
  item_id         TEXT NOT NULL,
  mode            TEXT NOT NULL CHECK (mode IN ('m','p','t')),
  success         INTEGER NOT NULL CHECK (success IN (0,1)),
  message         TEXT
);
CREATE INDEX IF NOT EXISTS idx_uploads_time ON upload_log(occurred_at);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// SaveRun stores a reconciled scan result and returns the run id. Items
// keep their section order through the position column.
func (d *DB) SaveRun(ctx context.Context, institutionID, detsis, docType string, res *mevzuat.ScanResult) (string, error) {
	runID := uuid.NewString()

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scan_runs(id, institution_id, detsis, type, total_sections, total_items, uploaded_count) VALUES(?,?,?,?,?,?,?)`,
		runID, institutionID, nullIfEmpty(detsis), nullIfEmpty(docType),
		res.TotalSections, res.TotalItems, res.UploadedCount)
	if err != nil {
		return "", err
	}

	pos := 0
	for _, sec := range res.Sections {
		for _, it := range sec.Items {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO scan_items(run_id, section_title, item_id, title, link, in_mevzuatgpt, in_portal, position) VALUES(?,?,?,?,?,?,?,?)`,
				runID, sec.Title, it.ID, it.Title, nullIfEmpty(it.Link),
				boolToInt(it.MevzuatGPT), boolToInt(it.Portal), pos)
			if err != nil {
				return "", err
			}
			pos++
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// RunSummary is one row of the scan history.
type RunSummary struct {
	ID            string    `json:"id"`
	InstitutionID string    `json:"institution_id"`
	Detsis        string    `json:"detsis"`
	Type          string    `json:"type"`
	StartedAt     time.Time `json:"started_at"`
	TotalSections int       `json:"total_sections"`
	TotalItems    int       `json:"total_items"`
	UploadedCount int       `json:"uploaded_count"`
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, institution_id, COALESCE(detsis,''), COALESCE(type,''), started_at, total_sections, total_items, uploaded_count
		 FROM scan_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.InstitutionID, &r.Detsis, &r.Type, &r.StartedAt,
			&r.TotalSections, &r.TotalItems, &r.UploadedCount); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestRun returns the newest run, or sql.ErrNoRows when empty.
func (d *DB) LatestRun(ctx context.Context) (*RunSummary, error) {
	runs, err := d.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, sql.ErrNoRows
	}
	return &runs[0], nil
}

// ItemRow is one stored item of a run.
type ItemRow struct {
	SectionTitle string `json:"section_title"`
	ItemID       string `json:"item_id"`
	Title        string `json:"title"`
	Link         string `json:"link"`
	InMevzuatGPT bool   `json:"in_mevzuatgpt"`
	InPortal     bool   `json:"in_portal"`
}

// ListRunItems returns a run's items in their original section order.
func (d *DB) ListRunItems(ctx context.Context, runID string) ([]ItemRow, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT section_title, item_id, title, COALESCE(link,''), in_mevzuatgpt, in_portal
		 FROM scan_items WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ItemRow
	for rows.Next() {
		var (
			it           ItemRow
			mgpt, portal int
		)
		if err := rows.Scan(&it.SectionTitle, &it.ItemID, &it.Title, &it.Link, &mgpt, &portal); err != nil {
			return nil, err
		}
		it.InMevzuatGPT = mgpt == 1
		it.InPortal = portal == 1
		items = append(items, it)
	}
	return items, rows.Err()
}

// RunStats aggregates a run's items per section. The uploaded/not-uploaded
// split always sums to the section total.
func (d *DB) RunStats(ctx context.Context, runID string) ([]mevzuat.SectionStats, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT section_title, COUNT(*), SUM(in_mevzuatgpt)
		 FROM scan_items WHERE run_id = ? GROUP BY section_title ORDER BY MIN(position)`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []mevzuat.SectionStats
	for rows.Next() {
		var st mevzuat.SectionStats
		if err := rows.Scan(&st.Title, &st.Total, &st.Uploaded); err != nil {
			return nil, err
		}
		st.NotUploaded = st.Total - st.Uploaded
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// UploadRecord is one row of the upload audit log.
type UploadRecord struct {
	OccurredAt   time.Time `json:"occurred_at"`
	SectionTitle string    `json:"section_title"`
	ItemID       string    `json:"item_id"`
	Mode         string    `json:"mode"`
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
}

// LogUpload records one submission attempt.
func (d *DB) LogUpload(ctx context.Context, sectionTitle, itemID, mode string, success bool, message string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO upload_log(section_title, item_id, mode, success, message) VALUES(?,?,?,?,?)`,
		sectionTitle, itemID, mode, boolToInt(success), nullIfEmpty(message))
	return err
}

// ListUploads returns recent upload attempts, newest first.
func (d *DB) ListUploads(ctx context.Context, limit int) ([]UploadRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT occurred_at, section_title, item_id, mode, success, COALESCE(message,'')
		 FROM upload_log ORDER BY occurred_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []UploadRecord
	for rows.Next() {
		var (
			r  UploadRecord
			ok int
		)
		if err := rows.Scan(&r.OccurredAt, &r.SectionTitle, &r.ItemID, &r.Mode, &ok, &r.Message); err != nil {
			return nil, err
		}
		r.Success = ok == 1
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
