// Package store handles SQLite persistence of run history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"trafficlens/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for analysis run history.
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
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			analyzed_at TEXT NOT NULL,
			source_path TEXT NOT NULL,
			label TEXT NOT NULL,
			total_vehicles INTEGER NOT NULL,
			total_trucks INTEGER NOT NULL,
			total_electric INTEGER NOT NULL,
			total_two_wheeled INTEGER NOT NULL,
			no_turn INTEGER NOT NULL,
			over_limit INTEGER NOT NULL,
			busiest_hour INTEGER,
			rain_hours TEXT NOT NULL,
			skipped INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_hour_counts (
			run_id INTEGER NOT NULL,
			junction TEXT NOT NULL,
			hour INTEGER NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (run_id, junction, hour)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_analyzed_at ON runs(analyzed_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a completed run and its per-junction hour counts.
func (s *Store) InsertRun(ctx context.Context, run model.Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var busiest sql.NullInt64
	if run.Summary.BusiestHour != nil {
		busiest = sql.NullInt64{Int64: int64(*run.Summary.BusiestHour), Valid: true}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (analyzed_at, source_path, label, total_vehicles, total_trucks, total_electric, total_two_wheeled, no_turn, over_limit, busiest_hour, rain_hours, skipped)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.AnalyzedAt.Format(time.RFC3339Nano),
		run.SourcePath,
		run.Label,
		run.Summary.TotalVehicles,
		run.Summary.TotalTrucks,
		run.Summary.TotalElectric,
		run.Summary.TotalTwoWheeled,
		run.Summary.NoTurn,
		run.Summary.OverLimit,
		busiest,
		encodeRainHours(run.Summary.RainHours),
		run.Summary.Skipped,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(run.Summary.JunctionHourly) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_hour_counts (run_id, junction, hour, count)
			 VALUES (?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for junction, buckets := range run.Summary.JunctionHourly {
			for hour, count := range buckets {
				if count == 0 {
					continue
				}
				if _, err := stmt.ExecContext(ctx, id, junction, hour, count); err != nil {
					return 0, err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns stored runs matching the filter, oldest first.
func (s *Store) ListRuns(ctx context.Context, filter model.HistoryFilter) ([]model.RunAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Label != "" {
		clauses = append(clauses, "label LIKE ?")
		args = append(args, "%"+filter.Label+"%")
	}
	if filter.Since != nil {
		clauses = append(clauses, "analyzed_at >= ?")
		args = append(args, filter.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, analyzed_at, source_path, label, total_vehicles, total_trucks, total_electric, total_two_wheeled, no_turn, over_limit, busiest_hour, rain_hours, skipped
		FROM runs
		WHERE %s
		ORDER BY analyzed_at ASC`, strings.Join(clauses, " AND "))
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

	var runs []model.RunAggregate
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(runs) > filter.Last {
		runs = runs[len(runs)-filter.Last:]
	}
	return runs, nil
}

// GetRun returns a single stored run by id.
func (s *Store) GetRun(ctx context.Context, id int64) (model.RunAggregate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, analyzed_at, source_path, label, total_vehicles, total_trucks, total_electric, total_two_wheeled, no_turn, over_limit, busiest_hour, rain_hours, skipped
		 FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// LatestRun returns the most recent stored run, or nil when history is empty.
func (s *Store) LatestRun(ctx context.Context) (*model.RunAggregate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, analyzed_at, source_path, label, total_vehicles, total_trucks, total_electric, total_two_wheeled, no_turn, over_limit, busiest_hour, rain_hours, skipped
		 FROM runs ORDER BY analyzed_at DESC LIMIT 1`)
	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// GetHourCounts returns the persisted histogram buckets of a run.
func (s *Store) GetHourCounts(ctx context.Context, runID int64) ([]model.HourCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT junction, hour, count FROM run_hour_counts
		 WHERE run_id = ?
		 ORDER BY junction ASC, hour ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var counts []model.HourCount
	for rows.Next() {
		var hc model.HourCount
		if err := rows.Scan(&hc.Junction, &hc.Hour, &hc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, hc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.RunAggregate, error) {
	var run model.RunAggregate
	var analyzedAt, rainHours string
	var busiest sql.NullInt64
	if err := row.Scan(
		&run.RunID,
		&analyzedAt,
		&run.SourcePath,
		&run.Label,
		&run.TotalVehicles,
		&run.TotalTrucks,
		&run.TotalElectric,
		&run.TotalTwoWheeled,
		&run.NoTurn,
		&run.OverLimit,
		&busiest,
		&rainHours,
		&run.Skipped,
	); err != nil {
		return model.RunAggregate{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, analyzedAt)
	if err != nil {
		return model.RunAggregate{}, err
	}
	run.AnalyzedAt = parsed
	if busiest.Valid {
		hour := int(busiest.Int64)
		run.BusiestHour = &hour
	}
	run.RainHours, err = parseRainHours(rainHours)
	if err != nil {
		return model.RunAggregate{}, err
	}
	return run, nil
}

func encodeRainHours(hours []int) string {
	parts := make([]string, 0, len(hours))
	for _, h := range hours {
		parts = append(parts, strconv.Itoa(h))
	}
	return strings.Join(parts, ",")
}

func parseRainHours(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	hours := make([]int, 0, len(parts))
	for _, part := range parts {
		hour, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid rain hours value %q", raw)
		}
		hours = append(hours, hour)
	}
	return hours, nil
}
