package store

import (
	"time"
)

// PlanRun records one recompute pass for diagnostics.
type PlanRun struct {
	ID           int64     `json:"id"`
	WeekStart    time.Time `json:"week_start"`
	Source       string    `json:"source"`
	ProductCount int       `json:"product_count"`
	DurationMS   int64     `json:"duration_ms"`
	Error        string    `json:"error"`
	CreatedAt    time.Time `json:"created_at"`
}

func (db *DB) RecordPlanRun(weekStart time.Time, source string, productCount int, duration time.Duration, errMsg string) error {
	_, err := db.Exec(db.Q(`INSERT INTO plan_runs (week_start, source, product_count, duration_ms, error) VALUES (?, ?, ?, ?, ?)`),
		dateOnly(weekStart), source, productCount, duration.Milliseconds(), errMsg)
	return err
}

func (db *DB) ListPlanRuns(limit int) ([]*PlanRun, error) {
	rows, err := db.Query(db.Q(`SELECT id, week_start, source, product_count, duration_ms, error, created_at FROM plan_runs ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []*PlanRun
	for rows.Next() {
		var r PlanRun
		var weekStart, createdAt any
		if err := rows.Scan(&r.ID, &weekStart, &r.Source, &r.ProductCount, &r.DurationMS, &r.Error, &createdAt); err != nil {
			return nil, err
		}
		r.WeekStart = parseTime(weekStart)
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}
