// Package resultsdb persists cross-check runs to SQLite: one row per run,
// per participant score and per contact outcome.
package resultsdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/xcheck/internal/engine"
	"github.com/okian/xcheck/pkg/logger"
	"github.com/okian/xcheck/pkg/metrics"
)

// DB is a results database handle.
type DB struct {
	db      *sql.DB
	logger  logger.Logger
	migrate bool
}

// RunRow is a stored run.
type RunRow struct {
	ID           string
	Mode         string
	StartedAt    time.Time
	Duration     time.Duration
	Participants int
	Shadows      int
}

// ScoreRow is a stored participant score.
type ScoreRow struct {
	Call         string
	Power        string
	County       string
	Checklog     bool
	QSO          int
	Points       int
	Mult         int
	Score        int
	ClaimedScore int
}

// ContactRow is a stored contact outcome.
type ContactRow struct {
	Seq     int
	Line    int
	Band    string
	FreqKHz int
	Time    time.Time
	Worked  string
	Status  string
	Reason  string
	Detail  string
	Points  int
	Mult    bool
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	// one writer; sqlite serialises anyway
	sqlDB.SetMaxOpenConns(1)

	d := &DB{db: sqlDB, logger: logger.Get().Named("resultsdb"), migrate: true}
	for _, opt := range opts {
		opt(d)
	}

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	if d.migrate {
		if err := d.MigrateUp(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	d.logger.Info(ctx, "results database ready", logger.String("path", path))
	return d, nil
}

// Close closes the database.
func (d *DB) Close() error { return d.db.Close() }

// SaveRun stores run in one transaction.
func (d *DB) SaveRun(ctx context.Context, run *engine.Run) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBWriteLatency(float64(time.Since(start).Microseconds()) / 1000)
		if err != nil {
			metrics.RecordErrorByComponent("resultsdb", "write")
		}
	}()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrWrite, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, mode, started_at, duration_ms, participants, shadows) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Mode), run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(), len(run.Results), len(run.Shadows))
	if err != nil {
		return fmt.Errorf("%w: run: %w", ErrWrite, err)
	}

	scoreStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scores (run_id, call, power, county, checklog, qso, points, mult, score, claimed_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare scores: %w", ErrWrite, err)
	}
	defer scoreStmt.Close()

	contactStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO contacts (run_id, call, seq, line, band, freq_khz, logged_at, worked, status, reason, detail, points, mult)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare contacts: %w", ErrWrite, err)
	}
	defer contactStmt.Close()

	contacts := 0
	for _, r := range run.Results {
		qso := 0
		for _, b := range r.Final.Bands {
			qso += b.QSO
		}
		_, err = scoreStmt.ExecContext(ctx, run.ID, r.Call(), string(r.Log.Power), r.Log.County,
			r.Log.Checklog, qso, r.Final.Points, r.Final.Mult, r.Final.Score, r.ClaimedScore)
		if err != nil {
			return fmt.Errorf("%w: score %s: %w", ErrWrite, r.Call(), err)
		}
		for i := range r.Log.Contacts {
			rec, out := &r.Log.Contacts[i], r.Outcomes[i]
			_, err = contactStmt.ExecContext(ctx, run.ID, r.Call(), rec.Seq, rec.Line, string(rec.Band),
				rec.FreqKHz, rec.Time.UTC().Format(time.RFC3339), rec.Worked,
				out.Status.String(), string(out.Reason), out.Detail, out.Points(), out.Mult)
			if err != nil {
				return fmt.Errorf("%w: contact %s/%d: %w", ErrWrite, r.Call(), rec.Seq, err)
			}
			contacts++
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrWrite, err)
	}

	metrics.RecordDBRowsWritten("runs", 1)
	metrics.RecordDBRowsWritten("scores", len(run.Results))
	metrics.RecordDBRowsWritten("contacts", contacts)
	d.logger.Info(ctx, "run saved",
		logger.String("run", run.ID),
		logger.String("mode", string(run.Mode)),
		logger.Int("scores", len(run.Results)),
		logger.Int("contacts", contacts),
	)
	return nil
}

// Runs lists stored runs, newest first.
func (d *DB) Runs(ctx context.Context) ([]RunRow, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, mode, started_at, duration_ms, participants, shadows FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var (
			r       RunRow
			started string
			ms      int64
		)
		if err := rows.Scan(&r.ID, &r.Mode, &started, &ms, &r.Participants, &r.Shadows); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Scores returns the scores of a run ordered by score desc, then call.
func (d *DB) Scores(ctx context.Context, runID string) ([]ScoreRow, error) {
	if err := d.ensureRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT call, power, county, checklog, qso, points, mult, score, claimed_score
		 FROM scores WHERE run_id = ? ORDER BY score DESC, call`, runID)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var s ScoreRow
		if err := rows.Scan(&s.Call, &s.Power, &s.County, &s.Checklog, &s.QSO, &s.Points, &s.Mult, &s.Score, &s.ClaimedScore); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Contacts returns the stored outcomes of call in a run, in log order.
func (d *DB) Contacts(ctx context.Context, runID, call string) ([]ContactRow, error) {
	if err := d.ensureRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := d.db.QueryContext(ctx,
		`SELECT seq, line, band, freq_khz, logged_at, worked, status, reason, detail, points, mult
		 FROM contacts WHERE run_id = ? AND call = ? ORDER BY seq`, runID, call)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	var out []ContactRow
	for rows.Next() {
		var (
			c  ContactRow
			at string
		)
		if err := rows.Scan(&c.Seq, &c.Line, &c.Band, &c.FreqKHz, &at, &c.Worked, &c.Status, &c.Reason, &c.Detail, &c.Points, &c.Mult); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		if c.Time, err = time.Parse(time.RFC3339, at); err != nil {
			return nil, fmt.Errorf("contact %s/%d: %w", call, c.Seq, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) ensureRun(ctx context.Context, runID string) error {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&n); err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}
