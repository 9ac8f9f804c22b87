package store

import (
	"database/sql"
	"time"
)

// Order statuses. Cancelled orders never contribute demand.
const (
	OrderOpen      = "open"
	OrderPartial   = "partial"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

type Order struct {
	ID         int64     `json:"id"`
	ClientID   int64     `json:"client_id"`
	ClientName string    `json:"client_name"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID           int64     `json:"id"`
	OrderID      int64     `json:"order_id"`
	ProductID    int64     `json:"product_id"`
	DeliveryDate time.Time `json:"delivery_date"`
	RequestedQty float64   `json:"requested_qty"`
	DeliveredQty float64   `json:"delivered_qty"`
}

// DemandRow is one order line joined with its order and client, the shape
// the forecast pipeline consumes.
type DemandRow struct {
	ProductID    int64     `json:"product_id"`
	OrderID      int64     `json:"order_id"`
	ClientID     int64     `json:"client_id"`
	ClientName   string    `json:"client_name"`
	DeliveryDate time.Time `json:"delivery_date"`
	RequestedQty float64   `json:"requested_qty"`
	DeliveredQty float64   `json:"delivered_qty"`
}

const orderSelectCols = `o.id, o.client_id, c.name, o.status, o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	var createdAt, updatedAt any
	err := row.Scan(&o.ID, &o.ClientID, &o.ClientName, &o.Status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	o.CreatedAt = parseTime(createdAt)
	o.UpdatedAt = parseTime(updatedAt)
	return &o, nil
}

func (db *DB) CreateOrder(o *Order) error {
	if o.Status == "" {
		o.Status = OrderOpen
	}
	return db.QueryRow(db.Q(`INSERT INTO orders (client_id, status) VALUES (?, ?) RETURNING id`),
		o.ClientID, o.Status).Scan(&o.ID)
}

func (db *DB) GetOrder(id int64) (*Order, error) {
	row := db.QueryRow(db.Q(`SELECT `+orderSelectCols+` FROM orders o JOIN clients c ON o.client_id=c.id WHERE o.id=?`), id)
	return scanOrder(row)
}

func (db *DB) ListOrders() ([]*Order, error) {
	rows, err := db.Query(db.Q(`SELECT ` + orderSelectCols + ` FROM orders o JOIN clients c ON o.client_id=c.id ORDER BY o.id DESC`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (db *DB) SetOrderStatus(id int64, status string) error {
	_, err := db.Exec(db.Q(`UPDATE orders SET status=?, updated_at=datetime('now','localtime') WHERE id=?`), status, id)
	return err
}

func (db *DB) AddOrderItem(it *OrderItem) error {
	return db.QueryRow(db.Q(`INSERT INTO order_items (order_id, product_id, delivery_date, requested_qty, delivered_qty) VALUES (?, ?, ?, ?, ?) RETURNING id`),
		it.OrderID, it.ProductID, dateOnly(it.DeliveryDate), it.RequestedQty, it.DeliveredQty).Scan(&it.ID)
}

func (db *DB) SetOrderItemDelivered(id int64, deliveredQty float64) error {
	_, err := db.Exec(db.Q(`UPDATE order_items SET delivered_qty=? WHERE id=?`), deliveredQty, id)
	return err
}

func (db *DB) ListOrderItems(orderID int64) ([]*OrderItem, error) {
	rows, err := db.Query(db.Q(`SELECT id, order_id, product_id, delivery_date, requested_qty, delivered_qty FROM order_items WHERE order_id=? ORDER BY delivery_date`), orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderItems(rows)
}

func scanOrderItems(rows *sql.Rows) ([]*OrderItem, error) {
	var items []*OrderItem
	for rows.Next() {
		var it OrderItem
		var deliveryDate any
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &deliveryDate, &it.RequestedQty, &it.DeliveredQty); err != nil {
			return nil, err
		}
		it.DeliveryDate = parseTime(deliveryDate)
		items = append(items, &it)
	}
	return items, rows.Err()
}

const demandRowCols = `i.product_id, i.order_id, o.client_id, c.name, i.delivery_date, i.requested_qty, i.delivered_qty`

// ListDemandRows returns non-cancelled order lines with delivery dates in
// [from, to], the raw input for the forecast estimator.
func (db *DB) ListDemandRows(from, to time.Time) ([]*DemandRow, error) {
	rows, err := db.Query(db.Q(`
		SELECT `+demandRowCols+`
		FROM order_items i
		JOIN orders o ON i.order_id = o.id
		JOIN clients c ON o.client_id = c.id
		WHERE i.delivery_date >= ? AND i.delivery_date <= ? AND o.status != ?
		ORDER BY i.delivery_date, i.id`),
		dateOnly(from), dateOnly(to), OrderCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDemandRows(rows)
}

// ListProductDemandRows returns a single product's non-cancelled lines for one
// delivery date, for the demand breakdown view.
func (db *DB) ListProductDemandRows(productID int64, date time.Time) ([]*DemandRow, error) {
	rows, err := db.Query(db.Q(`
		SELECT `+demandRowCols+`
		FROM order_items i
		JOIN orders o ON i.order_id = o.id
		JOIN clients c ON o.client_id = c.id
		WHERE i.product_id = ? AND i.delivery_date = ? AND o.status != ?
		ORDER BY i.id`),
		productID, dateOnly(date), OrderCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDemandRows(rows)
}

func scanDemandRows(rows *sql.Rows) ([]*DemandRow, error) {
	var out []*DemandRow
	for rows.Next() {
		var r DemandRow
		var deliveryDate any
		if err := rows.Scan(&r.ProductID, &r.OrderID, &r.ClientID, &r.ClientName, &deliveryDate, &r.RequestedQty, &r.DeliveredQty); err != nil {
			return nil, err
		}
		r.DeliveryDate = parseTime(deliveryDate)
		out = append(out, &r)
	}
	return out, rows.Err()
}
