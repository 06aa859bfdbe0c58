// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/clef/internal/model"
	"github.com/verte-zerg/clef/internal/pitch"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for round history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			timed INTEGER NOT NULL,
			time_limit_secs INTEGER NOT NULL,
			questions INTEGER NOT NULL,
			answered INTEGER NOT NULL,
			score INTEGER NOT NULL,
			low_note TEXT NOT NULL,
			high_note TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_ended_at ON rounds(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_difficulty ON rounds(difficulty);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRound stores a finished round summary.
func (s *Store) InsertRound(ctx context.Context, summary model.RoundSummary) (int64, error) {
	timed := 0
	if summary.Timed {
		timed = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds (started_at, ended_at, difficulty, timed, time_limit_secs, questions, answered, score, low_note, high_note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.StartedAt.Format(time.RFC3339Nano),
		summary.EndedAt.Format(time.RFC3339Nano),
		string(summary.Difficulty),
		timed,
		summary.TimeLimitSecs,
		summary.Questions,
		summary.Answered,
		summary.Score,
		summary.Low.String(),
		summary.High.String(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRounds returns round records filtered by stats config, ordered by
// end time ascending. The rating replay depends on this order.
func (s *Store) ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.RoundRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Difficulty != "" {
		clauses = append(clauses, "difficulty = ?")
		args = append(args, cfg.Difficulty)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, difficulty, timed, time_limit_secs, questions, answered, score, low_note, high_note
		FROM rounds
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var rounds []model.RoundRecord
	for rows.Next() {
		var rec model.RoundRecord
		var startedAt, endedAt, difficulty, lowNote, highNote string
		var timed int
		if err := rows.Scan(&rec.ID, &startedAt, &endedAt, &difficulty, &timed, &rec.TimeLimitSecs, &rec.Questions, &rec.Answered, &rec.Score, &lowNote, &highNote); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		if rec.Low, err = pitch.Parse(lowNote); err != nil {
			return nil, err
		}
		if rec.High, err = pitch.Parse(highNote); err != nil {
			return nil, err
		}
		rec.Difficulty = model.Difficulty(difficulty)
		rec.Timed = timed != 0
		rounds = append(rounds, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}
