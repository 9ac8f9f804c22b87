package engine

import (
	"context"
	"fmt"
	"time"

	"plancore/forecast"
	"plancore/planstate"
	"plancore/store"
)

// Recompute rebuilds the current week's plan from scratch: forecasts per
// product, then the balance projection over inventory and the production
// schedule. The result is published before the function returns.
func (e *Engine) Recompute(ctx context.Context) (*planstate.Plan, error) {
	start := time.Now()
	week := e.currentWeek()

	stored, err := e.db.ListActiveProducts()
	if err != nil {
		return nil, e.recomputeFailed(week, start, fmt.Errorf("list products: %w", err))
	}
	products := toForecastProducts(stored)

	forecasts, source, err := e.computeForecasts(ctx, week, products)
	if err != nil {
		return nil, e.recomputeFailed(week, start, err)
	}

	inventory, err := e.db.InventoryTotals()
	if err != nil {
		return nil, e.recomputeFailed(week, start, fmt.Errorf("inventory totals: %w", err))
	}
	production, err := e.productionByProduct(week)
	if err != nil {
		return nil, e.recomputeFailed(week, start, err)
	}

	balances := make([]forecast.ProductBalance, 0, len(forecasts))
	for _, pf := range forecasts {
		balances = append(balances, forecast.Project(pf, inventory[int64(pf.ProductID)], production[int64(pf.ProductID)]))
	}

	plan := &planstate.Plan{
		WeekStart:  week.Start,
		ComputedAt: time.Now(),
		Source:     source,
		Forecasts:  forecasts,
		Balances:   balances,
		Summary:    forecast.Summarize(forecasts, balances),
	}
	e.plans.Publish(plan)

	duration := time.Since(start)
	if err := e.db.RecordPlanRun(week.Start, source, len(products), duration, ""); err != nil {
		e.logFn("engine: record plan run: %v", err)
	}

	e.Events.Emit(Event{Type: EventPlanRecomputed, Payload: PlanRecomputedEvent{
		WeekStart:    week.Start,
		Source:       source,
		ProductCount: len(products),
		DeficitCount: plan.Summary.ProductsWithDeficit,
		WeeklyDemand: plan.Summary.TotalForecast,
		Duration:     duration,
	}})
	e.logFn("engine: plan recomputed for week %s via %s (%d products, %s)",
		week.Start.Format("2006-01-02"), source, len(products), duration.Round(time.Millisecond))
	return plan, nil
}

// computeForecasts tries the aggregated remote procedure first and falls
// back to the local estimator when it is unconfigured or unreachable. The
// fallback is silent apart from a log line: both paths produce the same
// result shape.
func (e *Engine) computeForecasts(ctx context.Context, week forecast.Week, products []forecast.Product) ([]forecast.ProductForecast, string, error) {
	if e.aggregated != nil {
		ids := make([]forecast.ProductID, len(products))
		for i, p := range products {
			ids[i] = p.ID
		}
		aggs, err := e.aggregated.DailyAggregates(ctx, week, e.cfg.Planning.HistoryWeeks, ids)
		switch {
		case err != nil:
			e.logFn("engine: aggregated forecast unavailable, using local: %v", err)
		case len(aggs) == 0:
			e.logFn("engine: aggregated forecast returned no rows, using local")
		default:
			return forecast.FromAggregates(products, week, aggs), e.aggregated.Name(), nil
		}
	}

	from := week.Start.AddDate(0, 0, -7*e.cfg.Planning.HistoryWeeks)
	rows, err := e.db.ListDemandRows(from, week.End())
	if err != nil {
		return nil, "", fmt.Errorf("list demand rows: %w", err)
	}
	est := forecast.Estimator{IncludeTargetWeek: e.cfg.Planning.IncludeTargetWeek}
	return est.Forecast(products, week, toOrderRows(rows)), "local", nil
}

// ApplyProductionEdit persists a schedule change and refreshes the held plan
// immediately by re-folding just the edited product. A full recompute is
// scheduled behind it to pick up anything else that moved.
func (e *Engine) ApplyProductionEdit(ctx context.Context, productID int64, date time.Time, quantity float64, actor string) error {
	if quantity < 0 {
		return fmt.Errorf("production quantity cannot be negative")
	}
	if err := e.db.UpsertSchedule(productID, date, quantity); err != nil {
		return fmt.Errorf("upsert schedule: %w", err)
	}

	if plan := e.plans.Latest(); plan != nil {
		week := forecast.Week{Start: plan.WeekStart, StartDay: plan.WeekStart.Weekday()}
		if idx, ok := week.DayIndex(date); ok {
			if pb, found := plan.Balance(forecast.ProductID(productID)); found {
				next := plan.ReplaceBalance(forecast.Reproject(pb, idx, quantity))
				next.ComputedAt = time.Now()
				e.plans.Publish(next)
			}
		}
	}

	e.Events.Emit(Event{Type: EventProductionEdited, Payload: ProductionEditedEvent{
		ProductID: productID,
		Date:      date,
		Quantity:  quantity,
		Actor:     actor,
	}})
	e.RequestRecompute()
	return nil
}

func (e *Engine) recomputeFailed(week forecast.Week, start time.Time, err error) error {
	e.plans.MarkStale()
	if dbErr := e.db.RecordPlanRun(week.Start, "", 0, time.Since(start), err.Error()); dbErr != nil {
		e.logFn("engine: record failed plan run: %v", dbErr)
	}
	e.Events.Emit(Event{Type: EventPlanRecomputeFailed, Payload: PlanRecomputeFailedEvent{
		WeekStart: week.Start,
		Err:       err,
	}})
	return err
}

func (e *Engine) currentWeek() forecast.Week {
	return forecast.NewWeek(time.Now(), forecast.ParseWeekday(e.cfg.Planning.WeekStartDay))
}

// productionByProduct flattens schedule entries for the week into per-product
// day arrays aligned with the balance projection.
func (e *Engine) productionByProduct(week forecast.Week) (map[int64][7]float64, error) {
	entries, err := e.db.ListScheduleRange(week.Start, week.End())
	if err != nil {
		return nil, fmt.Errorf("list schedule: %w", err)
	}
	out := make(map[int64][7]float64)
	for _, entry := range entries {
		idx, ok := week.DayIndex(entry.ScheduledDate)
		if !ok {
			continue
		}
		days := out[entry.ProductID]
		days[idx] += entry.Quantity
		out[entry.ProductID] = days
	}
	return out, nil
}

func toForecastProducts(in []*store.Product) []forecast.Product {
	out := make([]forecast.Product, len(in))
	for i, p := range in {
		out[i] = forecast.Product{
			ID:              forecast.ProductID(p.ID),
			Code:            p.Code,
			Name:            p.Name,
			UnitsPerPackage: p.UnitsPerPackage,
		}
	}
	return out
}

func toOrderRows(in []*store.DemandRow) []forecast.OrderRow {
	out := make([]forecast.OrderRow, len(in))
	for i, r := range in {
		out[i] = forecast.OrderRow{
			ProductID:    forecast.ProductID(r.ProductID),
			OrderID:      r.OrderID,
			ClientID:     r.ClientID,
			ClientName:   r.ClientName,
			DeliveryDate: r.DeliveryDate,
			RequestedQty: r.RequestedQty,
			DeliveredQty: r.DeliveredQty,
		}
	}
	return out
}
