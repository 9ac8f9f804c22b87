package store

import (
	"database/sql"
	"time"
)

// InventoryRecord is the on-hand quantity of one product at one location.
type InventoryRecord struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Location  string    `json:"location"`
	Quantity  float64   `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetInventory upserts the on-hand quantity for a product at a location.
func (db *DB) SetInventory(productID int64, location string, quantity float64) error {
	if location == "" {
		location = "main"
	}
	_, err := db.Exec(db.Q(`
		INSERT INTO inventory (product_id, location, quantity, updated_at)
		VALUES (?, ?, ?, datetime('now','localtime'))
		ON CONFLICT(product_id, location)
		DO UPDATE SET quantity=excluded.quantity, updated_at=excluded.updated_at`),
		productID, location, quantity)
	return err
}

func (db *DB) ListInventory() ([]*InventoryRecord, error) {
	rows, err := db.Query(db.Q(`SELECT id, product_id, location, quantity, updated_at FROM inventory ORDER BY product_id, location`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInventoryRecords(rows)
}

func (db *DB) ListProductInventory(productID int64) ([]*InventoryRecord, error) {
	rows, err := db.Query(db.Q(`SELECT id, product_id, location, quantity, updated_at FROM inventory WHERE product_id=? ORDER BY location`), productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInventoryRecords(rows)
}

// InventoryTotals sums on-hand quantity per product across all locations.
// Products with no record simply have no entry; callers treat that as zero.
func (db *DB) InventoryTotals() (map[int64]float64, error) {
	rows, err := db.Query(db.Q(`SELECT product_id, SUM(quantity) FROM inventory GROUP BY product_id`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	totals := make(map[int64]float64)
	for rows.Next() {
		var id int64
		var qty float64
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, err
		}
		totals[id] = qty
	}
	return totals, rows.Err()
}

func (db *DB) DeleteInventory(id int64) error {
	_, err := db.Exec(db.Q(`DELETE FROM inventory WHERE id=?`), id)
	return err
}

func scanInventoryRecords(rows *sql.Rows) ([]*InventoryRecord, error) {
	var recs []*InventoryRecord
	for rows.Next() {
		var r InventoryRecord
		var updatedAt any
		if err := rows.Scan(&r.ID, &r.ProductID, &r.Location, &r.Quantity, &updatedAt); err != nil {
			return nil, err
		}
		r.UpdatedAt = parseTime(updatedAt)
		recs = append(recs, &r)
	}
	return recs, rows.Err()
}
