package www

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"plancore/forecast"
)

func (h *Handlers) apiHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":    "ok",
		"messaging": h.engine.MsgClient().IsConnected(),
	}
	if plan := h.engine.Plans().Latest(); plan != nil {
		status["plan_week"] = plan.WeekStart.Format("2006-01-02")
		status["plan_computed_at"] = plan.ComputedAt
		status["plan_stale"] = plan.Stale
	}
	h.jsonOK(w, status)
}

// apiPlan serves the full plan snapshot: latest by default, a specific week
// with ?week=YYYY-MM-DD.
func (h *Handlers) apiPlan(w http.ResponseWriter, r *http.Request) {
	if week, ok := queryDate(r, "week"); ok {
		plan := h.engine.Plans().ForWeek(week)
		if plan == nil {
			h.jsonError(w, "no plan for that week", http.StatusNotFound)
			return
		}
		h.jsonOK(w, plan)
		return
	}
	plan := h.engine.Plans().Latest()
	if plan == nil {
		h.jsonError(w, "no plan computed yet", http.StatusServiceUnavailable)
		return
	}
	h.jsonOK(w, plan)
}

func (h *Handlers) apiPlanForecasts(w http.ResponseWriter, r *http.Request) {
	plan := h.engine.Plans().Latest()
	if plan == nil {
		h.jsonError(w, "no plan computed yet", http.StatusServiceUnavailable)
		return
	}
	h.jsonOK(w, plan.Forecasts)
}

func (h *Handlers) apiPlanBalances(w http.ResponseWriter, r *http.Request) {
	plan := h.engine.Plans().Latest()
	if plan == nil {
		h.jsonError(w, "no plan computed yet", http.StatusServiceUnavailable)
		return
	}
	if raw := r.URL.Query().Get("product"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.jsonError(w, "invalid product", http.StatusBadRequest)
			return
		}
		pb, ok := plan.Balance(forecast.ProductID(id))
		if !ok {
			h.jsonError(w, "product not in plan", http.StatusNotFound)
			return
		}
		h.jsonOK(w, pb)
		return
	}
	h.jsonOK(w, plan.Balances)
}

func (h *Handlers) apiPlanSummary(w http.ResponseWriter, r *http.Request) {
	plan := h.engine.Plans().Latest()
	if plan == nil {
		h.jsonError(w, "no plan computed yet", http.StatusServiceUnavailable)
		return
	}
	h.jsonOK(w, plan.Summary)
}

// apiPlanBreakdown answers "who ordered this" for one product and date.
func (h *Handlers) apiPlanBreakdown(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("product"), 10, 64)
	if err != nil || id <= 0 {
		h.jsonError(w, "invalid product", http.StatusBadRequest)
		return
	}
	date, ok := queryDate(r, "date")
	if !ok {
		h.jsonError(w, "invalid date", http.StatusBadRequest)
		return
	}

	product, err := h.engine.DB().GetProduct(id)
	if err != nil {
		h.jsonError(w, "product not found", http.StatusNotFound)
		return
	}
	rows, err := h.engine.DB().ListProductDemandRows(id, date)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	orderRows := make([]forecast.OrderRow, len(rows))
	for i, row := range rows {
		orderRows[i] = forecast.OrderRow{
			ProductID:    forecast.ProductID(row.ProductID),
			OrderID:      row.OrderID,
			ClientID:     row.ClientID,
			ClientName:   row.ClientName,
			DeliveryDate: row.DeliveryDate,
			RequestedQty: row.RequestedQty,
			DeliveredQty: row.DeliveredQty,
		}
	}
	fp := forecast.Product{
		ID:              forecast.ProductID(product.ID),
		Code:            product.Code,
		Name:            product.Name,
		UnitsPerPackage: product.UnitsPerPackage,
	}
	h.jsonOK(w, map[string]any{
		"product": fp,
		"date":    date.Format("2006-01-02"),
		"lines":   forecast.DemandBreakdown(fp, date, orderRows),
	})
}

func (h *Handlers) apiPlanRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.engine.DB().ListPlanRuns(50)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, runs)
}

func (h *Handlers) apiRecompute(w http.ResponseWriter, r *http.Request) {
	plan, err := h.engine.Recompute(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, plan)
}

func (h *Handlers) apiSchedule(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.AppConfig()
	week, ok := queryDate(r, "week")
	if !ok {
		week = time.Now()
	}
	w7 := forecast.NewWeek(week, forecast.ParseWeekday(cfg.Planning.WeekStartDay))
	entries, err := h.engine.DB().ListScheduleRange(w7.Start, w7.End())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]any{
		"week_start": w7.Start.Format("2006-01-02"),
		"entries":    entries,
	})
}

func (h *Handlers) apiScheduleEdit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int64   `json:"product_id"`
		Date      string  `json:"date"`
		Quantity  float64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		h.jsonError(w, "invalid date", http.StatusBadRequest)
		return
	}
	if _, err := h.engine.DB().GetProduct(req.ProductID); err != nil {
		h.jsonError(w, "product not found", http.StatusNotFound)
		return
	}

	actor := h.getUsername(r)
	if err := h.engine.ApplyProductionEdit(r.Context(), req.ProductID, date, req.Quantity, actor); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Answer with the refreshed balance when the edit lands inside the plan
	if plan := h.engine.Plans().Latest(); plan != nil {
		if pb, ok := plan.Balance(forecast.ProductID(req.ProductID)); ok {
			h.jsonOK(w, pb)
			return
		}
	}
	h.jsonOK(w, map[string]string{"status": "ok"})
}
