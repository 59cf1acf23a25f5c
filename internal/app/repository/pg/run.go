package pg

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"echoscribe/internal/app/model"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id SERIAL PRIMARY KEY,
	source TEXT NOT NULL,
	status TEXT NOT NULL,
	failed_stage TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	segment_count INTEGER NOT NULL DEFAULT 0,
	output_location TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);
`

// PostgresDB stores run history in PostgreSQL, for deployments where several
// serve instances share one history.
type PostgresDB struct {
	db *sql.DB
}

func NewPostgresDB(dsn string) *PostgresDB {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		log.Fatalf("Failed to create runs table: %v\n", err)
	}
	return &PostgresDB{db: db}
}

// NewWithDB wraps an existing connection, used by tests.
func NewWithDB(db *sql.DB) *PostgresDB {
	return &PostgresDB{db: db}
}

func (pdb *PostgresDB) Close() error {
	return pdb.db.Close()
}

func (pdb *PostgresDB) RecordRun(rec model.RunRecord) error {
	insertSQL := `INSERT INTO runs (source, status, failed_stage, error_message, segment_count, output_location, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := pdb.db.Exec(insertSQL, rec.Source, rec.Status, rec.FailedStage, rec.ErrorMessage,
		rec.SegmentCount, rec.OutputLocation, rec.DurationMs, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run failed: %w", err)
	}
	return nil
}

func (pdb *PostgresDB) CheckIfProcessed(source string) (int, error) {
	query := `SELECT id FROM runs WHERE source = $1 AND status = 'success' ORDER BY id DESC LIMIT 1`
	row := pdb.db.QueryRow(query, source)
	var id int
	err := row.Scan(&id)
	return id, err
}

func (pdb *PostgresDB) GetAll() ([]model.RunRecord, error) {
	sqlStr := `
		SELECT id, source, status, failed_stage, error_message, segment_count, output_location, duration_ms, created_at
		FROM runs
		ORDER BY created_at DESC`
	rows, err := pdb.db.Query(sqlStr)
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
