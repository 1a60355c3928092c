package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kerkeslager/fur-infinity/internal/harness"
)

// Run summarizes one recorded run.
type Run struct {
	ID         string    `json:"id"`
	Root       string    `json:"root"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	Errored    int       `json:"errored"`
}

// Failure is one non-passing case of a recorded run.
type Failure struct {
	RunID         string         `json:"run_id"`
	CaseID        string         `json:"case"`
	Kind          harness.Kind   `json:"kind"`
	Suite         string         `json:"suite"`
	FixturePath   string         `json:"fixture"`
	FixtureDigest string         `json:"digest"`
	Status        harness.Status `json:"status"`
	Message       string         `json:"message"`
	Duration      time.Duration  `json:"duration_ns"`
}

// WriteReport records a run and all its outcomes in one transaction.
// Writing the same run ID twice is a no-op.
func (s *Store) WriteReport(ctx context.Context, root string, r *harness.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, root, started_at, finished_at, passed, failed, errored)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.RunID,
		root,
		formatTime(r.StartedAt),
		formatTime(r.FinishedAt),
		r.Passed,
		r.Failed,
		r.Errored,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes
		(run_id, case_id, kind, suite, fixture_path, fixture_digest, status, message, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range r.Outcomes {
		_, err := stmt.ExecContext(ctx,
			r.RunID,
			o.CaseID,
			string(o.Kind),
			o.Suite,
			o.Fixture.Path,
			o.Fixture.Digest,
			string(o.Status),
			o.Message(),
			int64(o.Duration),
		)
		if err != nil {
			return fmt.Errorf("write outcome %s: %w", o.CaseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Runs returns the most recent runs first. A limit of zero or less returns
// every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root, started_at, finished_at, passed, failed, errored
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			run               Run
			started, finished string
		)
		if err := rows.Scan(&run.ID, &run.Root, &started, &finished, &run.Passed, &run.Failed, &run.Errored); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Latest returns the most recent run, or sql.ErrNoRows if none is recorded.
func (s *Store) Latest(ctx context.Context) (*Run, error) {
	runs, err := s.Runs(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, sql.ErrNoRows
	}
	return &runs[0], nil
}

// Failures returns the failed and errored cases of a run, ordered by case ID.
func (s *Store) Failures(ctx context.Context, runID string) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, case_id, kind, suite, fixture_path, fixture_digest, status, message, duration_ns
		FROM outcomes
		WHERE run_id = ? AND status != ?
		ORDER BY case_id COLLATE BINARY ASC
	`, runID, string(harness.StatusPass))
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	failures := []Failure{}
	for rows.Next() {
		var (
			f      Failure
			kind   string
			status string
			nanos  int64
		)
		if err := rows.Scan(&f.RunID, &f.CaseID, &kind, &f.Suite, &f.FixturePath, &f.FixtureDigest, &status, &f.Message, &nanos); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		f.Kind = harness.Kind(kind)
		f.Status = harness.Status(status)
		f.Duration = time.Duration(nanos)
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return failures, nil
}

// timeLayout keeps a fixed number of fractional digits so timestamps sort
// lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
