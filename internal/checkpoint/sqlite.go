package checkpoint

import (
	"database/sql"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/reva-ai/extract-cli/internal/model"
)

// SQLiteStore keeps the checkpoint in a SQLite database. Each flush runs in
// one transaction, giving the same all-or-nothing replacement as the CSV
// store's rename.
type SQLiteStore struct {
	db    *sql.DB
	state *State
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "checkpoint: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "checkpoint: exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "checkpoint: migrate")
	}
	return &SQLiteStore{db: db, state: NewState()}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS results (
	record_id  TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	source     TEXT NOT NULL,
	abstract   TEXT NOT NULL DEFAULT '',
	keywords   TEXT NOT NULL DEFAULT '',
	error      TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Load() *State {
	s.state = NewState()

	rows, err := s.db.Query(`SELECT record_id, status, source, abstract, keywords, error FROM results`)
	if err != nil {
		zap.L().Warn("checkpoint: query failed, starting fresh", zap.Error(err))
		return s.state
	}
	defer rows.Close()

	for rows.Next() {
		var id, status, source, abstract, keywords, errKind string
		if err := rows.Scan(&id, &status, &source, &abstract, &keywords, &errKind); err != nil {
			zap.L().Warn("checkpoint: row scan failed, starting fresh", zap.Error(err))
			return NewState()
		}
		s.state.Results[id] = model.ExtractionResult{
			RecordID: id,
			Status:   model.Status(status),
			Source:   model.Source(source),
			Abstract: abstract,
			Keywords: model.SplitKeywords(keywords),
			Error:    model.ErrorKind(errKind),
		}
	}
	if err := rows.Err(); err != nil {
		zap.L().Warn("checkpoint: read failed, starting fresh", zap.Error(err))
		return NewState()
	}
	return s.state
}

func (s *SQLiteStore) Record(result model.ExtractionResult) {
	s.state.Results[result.RecordID] = result
}

func (s *SQLiteStore) Flush() error {
	tx, err := s.db.Begin()
	if err != nil {
		return eris.Wrap(err, "checkpoint: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`
		INSERT INTO results (record_id, status, source, abstract, keywords, error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(record_id) DO UPDATE SET
			status = excluded.status,
			source = excluded.source,
			abstract = excluded.abstract,
			keywords = excluded.keywords,
			error = excluded.error,
			updated_at = excluded.updated_at`)
	if err != nil {
		return eris.Wrap(err, "checkpoint: prepare upsert")
	}
	defer stmt.Close()

	for _, r := range s.state.Results {
		if _, err := stmt.Exec(
			r.RecordID, string(r.Status), string(r.Source),
			r.Abstract, model.JoinKeywords(r.Keywords), string(r.Error),
		); err != nil {
			return eris.Wrapf(err, "checkpoint: upsert %s", r.RecordID)
		}
	}

	return eris.Wrap(tx.Commit(), "checkpoint: commit")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
