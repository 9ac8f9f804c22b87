package store

import (
	"database/sql"
	"time"
)

// ScheduleEntry is the production quantity planned for a product on a date.
type ScheduleEntry struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Quantity      float64   `json:"quantity"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UpsertSchedule sets the planned production for a product on a date.
// A zero quantity is kept, not deleted: "planned nothing" is a statement.
func (db *DB) UpsertSchedule(productID int64, date time.Time, quantity float64) error {
	_, err := db.Exec(db.Q(`
		INSERT INTO production_schedule (product_id, scheduled_date, quantity, updated_at)
		VALUES (?, ?, ?, datetime('now','localtime'))
		ON CONFLICT(product_id, scheduled_date)
		DO UPDATE SET quantity=excluded.quantity, updated_at=excluded.updated_at`),
		productID, dateOnly(date), quantity)
	return err
}

func (db *DB) DeleteSchedule(productID int64, date time.Time) error {
	_, err := db.Exec(db.Q(`DELETE FROM production_schedule WHERE product_id=? AND scheduled_date=?`),
		productID, dateOnly(date))
	return err
}

// ListScheduleRange returns schedule entries with dates in [from, to].
func (db *DB) ListScheduleRange(from, to time.Time) ([]*ScheduleEntry, error) {
	rows, err := db.Query(db.Q(`
		SELECT id, product_id, scheduled_date, quantity, updated_at
		FROM production_schedule
		WHERE scheduled_date >= ? AND scheduled_date <= ?
		ORDER BY scheduled_date, product_id`),
		dateOnly(from), dateOnly(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScheduleEntries(rows)
}

func scanScheduleEntries(rows *sql.Rows) ([]*ScheduleEntry, error) {
	var entries []*ScheduleEntry
	for rows.Next() {
		var e ScheduleEntry
		var scheduledDate, updatedAt any
		if err := rows.Scan(&e.ID, &e.ProductID, &scheduledDate, &e.Quantity, &updatedAt); err != nil {
			return nil, err
		}
		e.ScheduledDate = parseTime(scheduledDate)
		e.UpdatedAt = parseTime(updatedAt)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
