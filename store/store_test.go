package store

import (
	"path/filepath"
	"testing"
	"time"

	"plancore/config"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: dbPath},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProductCRUD(t *testing.T) {
	db := testDB(t)

	p := &Product{Code: "PAN-100", Name: "Sourdough loaf", Unit: "un", UnitsPerPackage: 6, Active: true}
	if err := db.CreateProduct(p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("ID should be assigned")
	}

	got, err := db.GetProduct(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Code != "PAN-100" {
		t.Errorf("Code = %q, want %q", got.Code, "PAN-100")
	}
	if got.UnitsPerPackage != 6 {
		t.Errorf("UnitsPerPackage = %v, want 6", got.UnitsPerPackage)
	}
	if !got.Active {
		t.Error("Active should be true")
	}

	got.Name = "Sourdough loaf (large)"
	got.Active = false
	if err := db.UpdateProduct(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got2, _ := db.GetProduct(p.ID)
	if got2.Name != "Sourdough loaf (large)" {
		t.Errorf("Name after update = %q", got2.Name)
	}
	if got2.Active {
		t.Error("Active should be false after update")
	}

	db.CreateProduct(&Product{Code: "PAN-200", Name: "Baguette", Active: true})
	all, err := db.ListProducts()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len = %d, want 2", len(all))
	}
	active, _ := db.ListActiveProducts()
	if len(active) != 1 {
		t.Errorf("active len = %d, want 1", len(active))
	}

	if err := db.DeleteProduct(p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := db.GetProduct(p.ID); err == nil {
		t.Error("expected error after delete")
	}
}

func TestDemandRowRange(t *testing.T) {
	db := testDB(t)

	prod := &Product{Code: "PAN-100", Name: "Loaf", UnitsPerPackage: 1, Active: true}
	db.CreateProduct(prod)
	cli := &Client{Name: "Cafe Central"}
	db.CreateClient(cli)

	open := &Order{ClientID: cli.ID}
	db.CreateOrder(open)
	cancelled := &Order{ClientID: cli.ID}
	db.CreateOrder(cancelled)
	db.SetOrderStatus(cancelled.ID, OrderCancelled)

	db.AddOrderItem(&OrderItem{OrderID: open.ID, ProductID: prod.ID, DeliveryDate: date(2026, 3, 2), RequestedQty: 10, DeliveredQty: 2})
	db.AddOrderItem(&OrderItem{OrderID: open.ID, ProductID: prod.ID, DeliveryDate: date(2026, 3, 9), RequestedQty: 5})
	db.AddOrderItem(&OrderItem{OrderID: cancelled.ID, ProductID: prod.ID, DeliveryDate: date(2026, 3, 2), RequestedQty: 99})
	// Outside the range entirely.
	db.AddOrderItem(&OrderItem{OrderID: open.ID, ProductID: prod.ID, DeliveryDate: date(2026, 4, 1), RequestedQty: 7})

	rows, err := db.ListDemandRows(date(2026, 3, 1), date(2026, 3, 15))
	if err != nil {
		t.Fatalf("list demand rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2 (cancelled and out-of-range excluded)", len(rows))
	}
	if rows[0].RequestedQty != 10 || rows[0].DeliveredQty != 2 {
		t.Errorf("row 0 qty = %v/%v, want 10/2", rows[0].RequestedQty, rows[0].DeliveredQty)
	}
	if rows[0].ClientName != "Cafe Central" {
		t.Errorf("client name = %q", rows[0].ClientName)
	}
	if !rows[0].DeliveryDate.Equal(date(2026, 3, 2)) {
		t.Errorf("delivery date = %v", rows[0].DeliveryDate)
	}

	byDate, err := db.ListProductDemandRows(prod.ID, date(2026, 3, 2))
	if err != nil {
		t.Fatalf("list product demand rows: %v", err)
	}
	if len(byDate) != 1 {
		t.Fatalf("len = %d, want 1", len(byDate))
	}
	if byDate[0].OrderID != open.ID {
		t.Errorf("order id = %d, want %d", byDate[0].OrderID, open.ID)
	}
}

func TestInventoryTotals(t *testing.T) {
	db := testDB(t)

	p1 := &Product{Code: "A", Name: "A", Active: true}
	p2 := &Product{Code: "B", Name: "B", Active: true}
	db.CreateProduct(p1)
	db.CreateProduct(p2)

	db.SetInventory(p1.ID, "main", 40)
	db.SetInventory(p1.ID, "cold-room", 10)
	db.SetInventory(p2.ID, "main", 3)
	// Upsert replaces, not accumulates.
	db.SetInventory(p2.ID, "main", 5)

	totals, err := db.InventoryTotals()
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals[p1.ID] != 50 {
		t.Errorf("p1 total = %v, want 50", totals[p1.ID])
	}
	if totals[p2.ID] != 5 {
		t.Errorf("p2 total = %v, want 5", totals[p2.ID])
	}

	recs, _ := db.ListProductInventory(p1.ID)
	if len(recs) != 2 {
		t.Errorf("p1 locations = %d, want 2", len(recs))
	}
}

func TestScheduleUpsertAndRange(t *testing.T) {
	db := testDB(t)

	p := &Product{Code: "A", Name: "A", Active: true}
	db.CreateProduct(p)

	day := date(2026, 3, 4)
	if err := db.UpsertSchedule(p.ID, day, 120); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := db.UpsertSchedule(p.ID, day, 150); err != nil {
		t.Fatalf("upsert replace: %v", err)
	}
	db.UpsertSchedule(p.ID, date(2026, 3, 20), 99)

	entries, err := db.ListScheduleRange(date(2026, 3, 2), date(2026, 3, 8))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	if entries[0].Quantity != 150 {
		t.Errorf("quantity = %v, want 150 (upsert should replace)", entries[0].Quantity)
	}
	if !entries[0].ScheduledDate.Equal(day) {
		t.Errorf("date = %v, want %v", entries[0].ScheduledDate, day)
	}

	db.DeleteSchedule(p.ID, day)
	entries, _ = db.ListScheduleRange(date(2026, 3, 2), date(2026, 3, 8))
	if len(entries) != 0 {
		t.Errorf("len after delete = %d, want 0", len(entries))
	}
}

func TestOutboxLifecycle(t *testing.T) {
	db := testDB(t)

	if err := db.EnqueueOutbox("plancore.plans", []byte(`{"week":"2026-03-02"}`), "plan.updated", "main"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	pending, err := db.ListPendingOutbox(10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	if pending[0].MsgType != "plan.updated" {
		t.Errorf("msg type = %q", pending[0].MsgType)
	}

	db.IncrementOutboxRetries(pending[0].ID)
	pending, _ = db.ListPendingOutbox(10)
	if pending[0].Retries != 1 {
		t.Errorf("retries = %d, want 1", pending[0].Retries)
	}

	db.AckOutbox(pending[0].ID)
	pending, _ = db.ListPendingOutbox(10)
	if len(pending) != 0 {
		t.Errorf("pending after ack = %d, want 0", len(pending))
	}
}

func TestPlanRunLog(t *testing.T) {
	db := testDB(t)

	db.RecordPlanRun(date(2026, 3, 2), "local", 12, 35*time.Millisecond, "")
	db.RecordPlanRun(date(2026, 3, 2), "aggregated", 12, 8*time.Millisecond, "")
	runs, err := db.ListPlanRuns(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	// Newest first.
	if runs[0].Source != "aggregated" {
		t.Errorf("source = %q, want aggregated", runs[0].Source)
	}
	if runs[1].DurationMS != 35 {
		t.Errorf("duration = %d, want 35", runs[1].DurationMS)
	}
}

func TestAdminUsers(t *testing.T) {
	db := testDB(t)

	exists, err := db.AdminUserExists()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Error("no users yet")
	}

	if err := db.CreateAdminUser("admin", "hash"); err != nil {
		t.Fatalf("create: %v", err)
	}
	u, err := db.GetAdminUser("admin")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.PasswordHash != "hash" {
		t.Errorf("hash = %q", u.PasswordHash)
	}
	exists, _ = db.AdminUserExists()
	if !exists {
		t.Error("user should exist")
	}
}
