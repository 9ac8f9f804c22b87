package store

import (
	"database/sql"
	"time"
)

// Product is a catalog item tracked for forecasting and balance projection.
type Product struct {
	ID              int64     `json:"id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	Unit            string    `json:"unit"`
	UnitsPerPackage float64   `json:"units_per_package"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

const productSelectCols = `id, code, name, unit, units_per_package, active, created_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	var active int
	var createdAt any
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Unit, &p.UnitsPerPackage, &active, &createdAt)
	if err != nil {
		return nil, err
	}
	p.Active = active != 0
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

func scanProducts(rows *sql.Rows) ([]*Product, error) {
	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (db *DB) CreateProduct(p *Product) error {
	if p.UnitsPerPackage <= 0 {
		p.UnitsPerPackage = 1
	}
	if p.Unit == "" {
		p.Unit = "un"
	}
	err := db.QueryRow(db.Q(`INSERT INTO products (code, name, unit, units_per_package, active) VALUES (?, ?, ?, ?, ?) RETURNING id`),
		p.Code, p.Name, p.Unit, p.UnitsPerPackage, boolToInt(p.Active)).Scan(&p.ID)
	return err
}

func (db *DB) UpdateProduct(p *Product) error {
	_, err := db.Exec(db.Q(`UPDATE products SET code=?, name=?, unit=?, units_per_package=?, active=? WHERE id=?`),
		p.Code, p.Name, p.Unit, p.UnitsPerPackage, boolToInt(p.Active), p.ID)
	return err
}

func (db *DB) DeleteProduct(id int64) error {
	_, err := db.Exec(db.Q(`DELETE FROM products WHERE id=?`), id)
	return err
}

func (db *DB) GetProduct(id int64) (*Product, error) {
	row := db.QueryRow(db.Q(`SELECT `+productSelectCols+` FROM products WHERE id=?`), id)
	return scanProduct(row)
}

func (db *DB) GetProductByCode(code string) (*Product, error) {
	row := db.QueryRow(db.Q(`SELECT `+productSelectCols+` FROM products WHERE code=?`), code)
	return scanProduct(row)
}

func (db *DB) ListProducts() ([]*Product, error) {
	rows, err := db.Query(db.Q(`SELECT ` + productSelectCols + ` FROM products ORDER BY code`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// ListActiveProducts returns the products the planner tracks.
func (db *DB) ListActiveProducts() ([]*Product, error) {
	rows, err := db.Query(db.Q(`SELECT ` + productSelectCols + ` FROM products WHERE active=1 ORDER BY code`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
