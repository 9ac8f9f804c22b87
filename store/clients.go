package store

import (
	"time"
)

type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func scanClient(row interface{ Scan(...any) error }) (*Client, error) {
	var c Client
	var createdAt any
	if err := row.Scan(&c.ID, &c.Name, &createdAt); err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdAt)
	return &c, nil
}

func (db *DB) CreateClient(c *Client) error {
	return db.QueryRow(db.Q(`INSERT INTO clients (name) VALUES (?) RETURNING id`), c.Name).Scan(&c.ID)
}

func (db *DB) GetClient(id int64) (*Client, error) {
	row := db.QueryRow(db.Q(`SELECT id, name, created_at FROM clients WHERE id=?`), id)
	return scanClient(row)
}

func (db *DB) ListClients() ([]*Client, error) {
	rows, err := db.Query(db.Q(`SELECT id, name, created_at FROM clients ORDER BY name`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var clients []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (db *DB) DeleteClient(id int64) error {
	_, err := db.Exec(db.Q(`DELETE FROM clients WHERE id=?`), id)
	return err
}
