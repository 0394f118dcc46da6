package markov

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SetupSchema creates the table used by SQLStore. It is idempotent and safe
// to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schemaModels = `
CREATE TABLE IF NOT EXISTS markov_models (
    model_name TEXT PRIMARY KEY,
    record TEXT NOT NULL,
    last_update TEXT NOT NULL
);
`
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaModels); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// SQLStore keeps named models in a SQL database, one serialized record per
// row. Several models can share a database.
type SQLStore struct {
	db        *sql.DB
	name      string
	stmtLoad  *sql.Stmt
	stmtSave  *sql.Stmt
	stmtNames *sql.Stmt
}

// NewSQLStore prepares the statements for the model called name. SetupSchema
// must have been run on db first.
func NewSQLStore(db *sql.DB, name string) (*SQLStore, error) {
	stmtLoad, err := db.Prepare(`SELECT record FROM markov_models WHERE model_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtSave, err := db.Prepare(`INSERT INTO markov_models (model_name, record, last_update) VALUES (?, ?, ?)
ON CONFLICT(model_name) DO UPDATE SET record = excluded.record, last_update = excluded.last_update;`)
	if err != nil {
		_ = stmtLoad.Close()
		return nil, err
	}

	stmtNames, err := db.Prepare(`SELECT model_name FROM markov_models ORDER BY model_name;`)
	if err != nil {
		_ = stmtLoad.Close()
		_ = stmtSave.Close()
		return nil, err
	}

	return &SQLStore{
		db:        db,
		name:      name,
		stmtLoad:  stmtLoad,
		stmtSave:  stmtSave,
		stmtNames: stmtNames,
	}, nil
}

// Load reads and validates the record for this store's model.
func (s *SQLStore) Load(ctx context.Context) (*Model, error) {
	var record string
	err := s.stmtLoad.QueryRowContext(ctx, s.name).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoModel
		}
		return nil, fmt.Errorf("could not load model '%s': %w", s.name, err)
	}
	return ImportModel(strings.NewReader(record))
}

// Save inserts or replaces the record for this store's model.
func (s *SQLStore) Save(ctx context.Context, m *Model) error {
	var buf bytes.Buffer
	if err := ExportModel(&buf, m); err != nil {
		return fmt.Errorf("could not encode model: %w", err)
	}
	lastUpdate := m.LastUpdate.UTC().Format(time.RFC3339Nano)
	if _, err := s.stmtSave.ExecContext(ctx, s.name, buf.String(), lastUpdate); err != nil {
		return fmt.Errorf("could not save model '%s': %w", s.name, err)
	}
	return nil
}

// ModelNames lists every model stored in the database.
func (s *SQLStore) ModelNames(ctx context.Context) ([]string, error) {
	rows, err := s.stmtNames.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var names []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// Close releases the prepared statements. The database itself stays open.
func (s *SQLStore) Close() {
	_ = s.stmtLoad.Close()
	_ = s.stmtSave.Close()
	_ = s.stmtNames.Close()
}
