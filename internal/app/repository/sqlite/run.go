package sqlite

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"echoscribe/internal/app/model"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL,
	status TEXT NOT NULL,
	failed_stage TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	segment_count INTEGER NOT NULL DEFAULT 0,
	output_location TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
`

// SQLiteDB stores run history in a local sqlite file.
type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(dbFilePath string) *SQLiteDB {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc", dbFilePath))
	if err != nil {
		log.Fatal(err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		log.Fatalf("Failed to create runs table: %v\n", err)
	}
	return &SQLiteDB{db: db}
}

func (sdb *SQLiteDB) Close() error {
	return sdb.db.Close()
}

func (sdb *SQLiteDB) RecordRun(rec model.RunRecord) error {
	insertSQL := `INSERT INTO runs (source, status, failed_stage, error_message, segment_count, output_location, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
	_, err := sdb.db.Exec(insertSQL, rec.Source, rec.Status, rec.FailedStage, rec.ErrorMessage,
		rec.SegmentCount, rec.OutputLocation, rec.DurationMs, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run failed: %w", err)
	}
	return nil
}

func (sdb *SQLiteDB) CheckIfProcessed(source string) (int, error) {
	query := `SELECT id FROM runs WHERE source = ? AND status = 'success' ORDER BY id DESC LIMIT 1`
	row := sdb.db.QueryRow(query, source)
	var id int
	err := row.Scan(&id)
	return id, err
}

func (sdb *SQLiteDB) GetAll() ([]model.RunRecord, error) {
	sqlStr := `
		SELECT id, source, status, failed_stage, error_message, segment_count, output_location, duration_ms, created_at
		FROM runs
		ORDER BY created_at DESC;`
	rows, err := sdb.db.Query(sqlStr)
	if err != nil {
		return nil, fmt.Errorf("query failed: %v", err)
	}
	defer rows.Close()

	records := make([]model.RunRecord, 0)
	for rows.Next() {
		var r model.RunRecord
		err = rows.Scan(&r.ID, &r.Source, &r.Status, &r.FailedStage, &r.ErrorMessage,
			&r.SegmentCount, &r.OutputLocation, &r.DurationMs, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db scan failed: %v", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
