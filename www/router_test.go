package www

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"plancore/config"
	"plancore/engine"
	"plancore/forecast"
	"plancore/messaging"
	"plancore/planstate"
	"plancore/store"
)

type testServer struct {
	srv     *httptest.Server
	client  *http.Client
	eng     *engine.Engine
	week    forecast.Week
	cfgPath string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.Database.SQLite.Path = filepath.Join(dir, "test.db")

	db, err := store.Open(&cfg.Database)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	eng := engine.New(engine.Config{
		AppConfig:  cfg,
		ConfigPath: filepath.Join(dir, "plancore.yaml"),
		DB:         db,
		Plans:      planstate.NewManager(nil),
		MsgClient:  messaging.NewClient(&cfg.Messaging),
		LogFunc:    t.Logf,
	})

	router, stop := NewRouter(eng)
	t.Cleanup(stop)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	return &testServer{
		srv:     srv,
		client:  &http.Client{Jar: jar},
		eng:     eng,
		week:    forecast.NewWeek(time.Now(), time.Monday),
		cfgPath: eng.ConfigPath(),
	}
}

func (ts *testServer) seed(t *testing.T) int64 {
	t.Helper()
	db := ts.eng.DB()

	p := &store.Product{Code: "PAN-100", Name: "Sourdough loaf", Unit: "un", UnitsPerPackage: 1, Active: true}
	if err := db.CreateProduct(p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	c := &store.Client{Name: "Cafe Central"}
	if err := db.CreateClient(c); err != nil {
		t.Fatalf("create client: %v", err)
	}
	o := &store.Order{ClientID: c.ID}
	if err := db.CreateOrder(o); err != nil {
		t.Fatalf("create order: %v", err)
	}
	it := &store.OrderItem{OrderID: o.ID, ProductID: p.ID, DeliveryDate: ts.week.Start, RequestedQty: 20}
	if err := db.AddOrderItem(it); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := db.SetInventory(p.ID, "main", 50); err != nil {
		t.Fatalf("set inventory: %v", err)
	}

	if _, err := ts.eng.Recompute(context.Background()); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	return p.ID
}

func (ts *testServer) login(t *testing.T) {
	t.Helper()
	body := bytes.NewBufferString(`{"username":"admin","password":"admin"}`)
	resp, err := ts.client.Post(ts.srv.URL+"/api/login", "application/json", body)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
}

func (ts *testServer) getJSON(t *testing.T, path string, out any) *http.Response {
	t.Helper()
	resp, err := ts.client.Get(ts.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp
}

func TestPlanEndpoints(t *testing.T) {
	ts := newTestServer(t)
	productID := ts.seed(t)

	var health map[string]any
	if resp := ts.getJSON(t, "/api/health", &health); resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	if health["status"] != "ok" {
		t.Errorf("health = %v", health)
	}
	if health["plan_week"] != ts.week.Start.Format("2006-01-02") {
		t.Errorf("plan_week = %v, want %s", health["plan_week"], ts.week.Start.Format("2006-01-02"))
	}

	var plan planstate.Plan
	ts.getJSON(t, "/api/plan", &plan)
	if len(plan.Forecasts) != 1 || len(plan.Balances) != 1 {
		t.Fatalf("plan has %d forecasts, %d balances, want 1 each", len(plan.Forecasts), len(plan.Balances))
	}
	if plan.Forecasts[0].Days[0].Forecast != 20 {
		t.Errorf("monday forecast = %v, want 20", plan.Forecasts[0].Days[0].Forecast)
	}

	var balance forecast.ProductBalance
	ts.getJSON(t, fmt.Sprintf("/api/plan/balances?product=%d", productID), &balance)
	if balance.Days[0].Closing != 30 {
		t.Errorf("monday closing = %v, want 30", balance.Days[0].Closing)
	}

	var summary forecast.Summary
	ts.getJSON(t, "/api/plan/summary", &summary)
	if summary.TotalForecast != 20 {
		t.Errorf("total forecast = %v, want 20", summary.TotalForecast)
	}
}

func TestPlanBreakdown(t *testing.T) {
	ts := newTestServer(t)
	productID := ts.seed(t)

	var out struct {
		Lines []forecast.BreakdownLine `json:"lines"`
	}
	path := fmt.Sprintf("/api/plan/breakdown?product=%d&date=%s", productID, ts.week.Start.Format("2006-01-02"))
	if resp := ts.getJSON(t, path, &out); resp.StatusCode != http.StatusOK {
		t.Fatalf("breakdown status = %d", resp.StatusCode)
	}
	if len(out.Lines) != 1 {
		t.Fatalf("got %d breakdown lines, want 1", len(out.Lines))
	}
	if out.Lines[0].ClientName != "Cafe Central" {
		t.Errorf("client = %q, want %q", out.Lines[0].ClientName, "Cafe Central")
	}
}

func TestMutatingRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t)

	req, _ := http.NewRequest(http.MethodPut, ts.srv.URL+"/api/schedule",
		bytes.NewBufferString(`{"product_id":1,"date":"2026-03-02","quantity":10}`))
	resp, err := ts.client.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestScheduleEdit(t *testing.T) {
	ts := newTestServer(t)
	productID := ts.seed(t)
	ts.login(t)

	payload := fmt.Sprintf(`{"product_id":%d,"date":"%s","quantity":15}`,
		productID, ts.week.Day(2).Format("2006-01-02"))
	req, _ := http.NewRequest(http.MethodPut, ts.srv.URL+"/api/schedule", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.client.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var balance forecast.ProductBalance
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if balance.Days[2].PlannedProduction != 15 {
		t.Errorf("wednesday production = %v, want 15", balance.Days[2].PlannedProduction)
	}
}

func TestCreateOrderFlow(t *testing.T) {
	ts := newTestServer(t)
	productID := ts.seed(t)
	ts.login(t)

	payload := fmt.Sprintf(`{"client_id":1,"items":[{"product_id":%d,"delivery_date":"%s","requested_qty":12}]}`,
		productID, ts.week.Day(3).Format("2006-01-02"))
	resp, err := ts.client.Post(ts.srv.URL+"/api/orders", "application/json", bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var orders []*store.Order
	ts.getJSON(t, "/api/orders", &orders)
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
}

func TestConfigSaveAndReload(t *testing.T) {
	ts := newTestServer(t)

	// Config routes require a session
	if resp := ts.getJSON(t, "/api/config", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated config status = %d, want 401", resp.StatusCode)
	}
	ts.login(t)

	payload := `{"section":"planning","history_weeks":4,"recompute_interval":"30m"}`
	req, _ := http.NewRequest(http.MethodPut, ts.srv.URL+"/api/config", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.client.Do(req)
	if err != nil {
		t.Fatalf("save config: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d, want 200", resp.StatusCode)
	}

	// The running config and the persisted file both carry the change
	var out struct {
		Planning struct {
			HistoryWeeks      int    `json:"history_weeks"`
			RecomputeInterval string `json:"recompute_interval"`
		} `json:"planning"`
	}
	ts.getJSON(t, "/api/config", &out)
	if out.Planning.HistoryWeeks != 4 {
		t.Errorf("history_weeks = %d, want 4", out.Planning.HistoryWeeks)
	}
	if out.Planning.RecomputeInterval != "30m0s" {
		t.Errorf("recompute_interval = %q, want 30m0s", out.Planning.RecomputeInterval)
	}
	reloaded, err := config.Load(ts.cfgPath)
	if err != nil {
		t.Fatalf("reload saved config: %v", err)
	}
	if reloaded.Planning.HistoryWeeks != 4 {
		t.Errorf("saved history_weeks = %d, want 4", reloaded.Planning.HistoryWeeks)
	}

	// Unknown sections are rejected without touching the file
	req, _ = http.NewRequest(http.MethodPut, ts.srv.URL+"/api/config", bytes.NewBufferString(`{"section":"nope"}`))
	resp, err = ts.client.Do(req)
	if err != nil {
		t.Fatalf("bad section: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad section status = %d, want 400", resp.StatusCode)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ts := newTestServer(t)
	body := bytes.NewBufferString(`{"username":"admin","password":"wrong"}`)
	resp, err := ts.client.Post(ts.srv.URL+"/api/login", "application/json", body)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
