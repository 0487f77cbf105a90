package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"cinsignal/internal"
	"cinsignal/internal/taxonomy"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  gtin TEXT,
  source TEXT NOT NULL,
  hash TEXT NOT NULL UNIQUE,
  raw_xml TEXT NOT NULL,
  snapshot_json TEXT NOT NULL,
  signals_json TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_documents_gtin ON documents(gtin);

CREATE TABLE IF NOT EXISTS taxonomy_entries (
  code INTEGER PRIMARY KEY,
  level INTEGER NOT NULL,
  title TEXT NOT NULL,
  parentCode INTEGER,
  pathJson TEXT NOT NULL,
  active INTEGER NOT NULL,
  position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  documentId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(documentId) REFERENCES documents(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// UpsertDocument stores a document keyed by its content hash and returns
// the stored row. Re-storing identical bytes refreshes the derived JSON.
func (d *DB) UpsertDocument(doc internal.DocumentRow) (internal.DocumentRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO documents (gtin, source, hash, raw_xml, snapshot_json, signals_json)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(hash) DO UPDATE SET
  gtin=excluded.gtin,
  source=excluded.source,
  snapshot_json=excluded.snapshot_json,
  signals_json=excluded.signals_json,
  updatedAt=CURRENT_TIMESTAMP
`, doc.GTIN, doc.Source, doc.Hash, doc.RawXML, doc.SnapshotJSON, doc.SignalsJSON)
	if err != nil {
		return internal.DocumentRow{}, err
	}

	row, err := d.getDocument(`WHERE hash = ?`, doc.Hash)
	if err != nil {
		return internal.DocumentRow{}, err
	}
	if row == nil {
		return internal.DocumentRow{}, errors.New("failed to upsert document")
	}
	return *row, nil
}

// GetDocumentByGTIN returns the most recently updated document for gtin, or nil.
func (d *DB) GetDocumentByGTIN(gtin string) (*internal.DocumentRow, error) {
	return d.getDocument(`WHERE gtin = ? ORDER BY updatedAt DESC, id DESC LIMIT 1`, gtin)
}

func (d *DB) GetDocumentByID(id int) (*internal.DocumentRow, error) {
	return d.getDocument(`WHERE id = ?`, id)
}

func (d *DB) getDocument(where string, args ...any) (*internal.DocumentRow, error) {
	var row internal.DocumentRow
	err := d.conn.QueryRow(`
SELECT id, gtin, source, hash, raw_xml, snapshot_json, signals_json, createdAt, updatedAt
FROM documents `+where, args...).Scan(
		&row.ID, &row.GTIN, &row.Source, &row.Hash, &row.RawXML, &row.SnapshotJSON, &row.SignalsJSON, &row.CreatedAt, &row.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListDocuments returns stored documents without their raw XML.
func (d *DB) ListDocuments(limit int) ([]internal.DocumentRow, error) {
	rows, err := d.conn.Query(`
SELECT id, gtin, source, hash, createdAt, updatedAt
FROM documents ORDER BY id ASC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.DocumentRow
	for rows.Next() {
		var row internal.DocumentRow
		if err := rows.Scan(&row.ID, &row.GTIN, &row.Source, &row.Hash, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// UpdateSignals replaces the stored signal record of a document.
func (d *DB) UpdateSignals(documentID int, signalsJSON string) error {
	_, err := d.conn.Exec(`UPDATE documents SET signals_json = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, signalsJSON, documentID)
	return err
}

// ReplaceTaxonomy swaps the stored taxonomy for entries in one transaction.
// Later duplicates overwrite earlier ones, matching taxonomy.BuildIndex.
func (d *DB) ReplaceTaxonomy(entries []taxonomy.FlatEntry) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM taxonomy_entries`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO taxonomy_entries (code, level, title, parentCode, pathJson, active, position)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(code) DO UPDATE SET
  level=excluded.level,
  title=excluded.title,
  parentCode=excluded.parentCode,
  pathJson=excluded.pathJson,
  active=excluded.active,
  position=excluded.position
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range entries {
		pathJSON, _ := json.Marshal(e.Path)
		if _, err := stmt.Exec(e.Code, e.Level, e.Title, e.ParentCode, string(pathJSON), e.Active, i); err != nil {
			return fmt.Errorf("store taxonomy code %d: %w", e.Code, err)
		}
	}

	return tx.Commit()
}

// ListTaxonomy returns stored entries in flattened order.
func (d *DB) ListTaxonomy() ([]taxonomy.FlatEntry, error) {
	rows, err := d.conn.Query(`
SELECT code, level, title, parentCode, pathJson, active
FROM taxonomy_entries ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []taxonomy.FlatEntry
	for rows.Next() {
		var e taxonomy.FlatEntry
		var pathJSON string
		if err := rows.Scan(&e.Code, &e.Level, &e.Title, &e.ParentCode, &pathJSON, &e.Active); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(pathJSON), &e.Path)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, documentID int, timings map[string]float64, counts internal.RunCounts) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, documentId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, documentID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) CountRuns(documentID int) (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM runs WHERE documentId = ?`, documentID).Scan(&n)
	return n, err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
