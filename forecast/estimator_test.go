package forecast

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Week of Monday 2026-03-02 .. Sunday 2026-03-08.
func testWeek() Week {
	return NewWeek(day(2026, 3, 4), time.Monday)
}

func testProduct() Product {
	return Product{ID: 1, Code: "PAN-100", Name: "Loaf", UnitsPerPackage: 1}
}

func TestWeekNormalization(t *testing.T) {
	w := testWeek()
	if !w.Start.Equal(day(2026, 3, 2)) {
		t.Fatalf("Start = %v, want 2026-03-02", w.Start)
	}
	if !w.End().Equal(day(2026, 3, 8)) {
		t.Errorf("End = %v, want 2026-03-08", w.End())
	}
	// Anchoring to the week start itself must not shift the week.
	w2 := NewWeek(day(2026, 3, 2), time.Monday)
	if !w2.Start.Equal(w.Start) {
		t.Errorf("anchor on start day moved the week: %v", w2.Start)
	}
	// A timestamp mid-day normalizes to the same week.
	w3 := NewWeek(time.Date(2026, 3, 8, 23, 30, 0, 0, time.UTC), time.Monday)
	if !w3.Start.Equal(w.Start) {
		t.Errorf("Sunday evening anchor moved the week: %v", w3.Start)
	}

	for i := 0; i < 7; i++ {
		idx, ok := w.DayIndex(w.Day(i))
		if !ok || idx != i {
			t.Errorf("DayIndex(Day(%d)) = %d, %v", i, idx, ok)
		}
	}
	if _, ok := w.DayIndex(day(2026, 3, 9)); ok {
		t.Error("next Monday should be outside the week")
	}
}

func TestCeilingRounding(t *testing.T) {
	// Two historical Mondays at 10 and 11 -> mean 10.5 -> ceil 11.
	w := testWeek()
	rows := []OrderRow{
		{ProductID: 1, OrderID: 1, DeliveryDate: day(2026, 2, 16), RequestedQty: 10},
		{ProductID: 1, OrderID: 2, DeliveryDate: day(2026, 2, 23), RequestedQty: 11},
	}
	fcs := Estimator{}.Forecast([]Product{testProduct()}, w, rows)
	got := fcs[0].Days[0]
	if got.HistoricalAverage != 11 {
		t.Errorf("historical average = %d, want 11 (ceil of 10.5)", got.HistoricalAverage)
	}
	if got.Forecast != 11 {
		t.Errorf("forecast = %v, want 11", got.Forecast)
	}
}

func TestForecastFloor(t *testing.T) {
	// Forecast is max(average, current): never below current orders, never negative.
	w := testWeek()
	rows := []OrderRow{
		// Historical Tuesday average: 4.
		{ProductID: 1, OrderID: 1, DeliveryDate: day(2026, 2, 17), RequestedQty: 4},
		// Current-week Tuesday carries more than history suggests.
		{ProductID: 1, OrderID: 2, DeliveryDate: day(2026, 3, 3), RequestedQty: 9},
		// Current-week Wednesday, no history at all.
		{ProductID: 1, OrderID: 3, DeliveryDate: day(2026, 3, 4), RequestedQty: 2},
		// Over-delivered historical line must clamp to zero, not negative.
		{ProductID: 1, OrderID: 4, DeliveryDate: day(2026, 2, 19), RequestedQty: 3, DeliveredQty: 8},
	}
	fcs := Estimator{}.Forecast([]Product{testProduct()}, w, rows)
	pf := fcs[0]

	if pf.Days[1].Forecast != 9 {
		t.Errorf("Tuesday forecast = %v, want 9 (current orders dominate)", pf.Days[1].Forecast)
	}
	if pf.Days[2].HistoricalAverage != 0 || pf.Days[2].Forecast != 2 {
		t.Errorf("Wednesday = avg %d forecast %v, want 0/2", pf.Days[2].HistoricalAverage, pf.Days[2].Forecast)
	}
	for i, d := range pf.Days {
		if d.Forecast < 0 {
			t.Errorf("day %d forecast negative: %v", i, d.Forecast)
		}
		if d.Forecast < d.CurrentOrders {
			t.Errorf("day %d forecast %v below current orders %v", i, d.Forecast, d.CurrentOrders)
		}
	}
}

func TestUnitConversion(t *testing.T) {
	w := testWeek()
	p := Product{ID: 1, Name: "Rolls", UnitsPerPackage: 12}
	rows := []OrderRow{
		// 3 packages requested, 1 delivered -> 24 base units on current Monday.
		{ProductID: 1, OrderID: 1, DeliveryDate: day(2026, 3, 2), RequestedQty: 3, DeliveredQty: 1},
	}
	fcs := Estimator{}.Forecast([]Product{p}, w, rows)
	if fcs[0].Days[0].CurrentOrders != 24 {
		t.Errorf("current orders = %v, want 24", fcs[0].Days[0].CurrentOrders)
	}
}

func TestWeeklyTotalFold(t *testing.T) {
	w := testWeek()
	rows := []OrderRow{
		{ProductID: 1, OrderID: 1, DeliveryDate: day(2026, 3, 2), RequestedQty: 5},
		{ProductID: 1, OrderID: 2, DeliveryDate: day(2026, 3, 5), RequestedQty: 7},
		{ProductID: 1, OrderID: 3, DeliveryDate: day(2026, 2, 20), RequestedQty: 3},
	}
	fcs := Estimator{}.Forecast([]Product{testProduct()}, w, rows)
	var sum float64
	for _, d := range fcs[0].Days {
		sum += d.Forecast
	}
	if fcs[0].WeeklyTotal != sum {
		t.Errorf("weekly total %v != sum of dailies %v", fcs[0].WeeklyTotal, sum)
	}
}

func TestZeroDataDefaults(t *testing.T) {
	w := testWeek()
	fcs := Estimator{}.Forecast([]Product{testProduct()}, w, nil)
	if len(fcs) != 1 {
		t.Fatalf("len = %d, want 1 (items without data still get a full result)", len(fcs))
	}
	pf := fcs[0]
	if pf.WeeklyTotal != 0 {
		t.Errorf("weekly total = %v, want 0", pf.WeeklyTotal)
	}
	for i, d := range pf.Days {
		if d.Forecast != 0 || d.HistoricalAverage != 0 || d.CurrentOrders != 0 {
			t.Errorf("day %d not zero: %+v", i, d)
		}
		if !d.Date.Equal(w.Day(i)) {
			t.Errorf("day %d date = %v, want %v", i, d.Date, w.Day(i))
		}
	}

	pb := Project(pf, 0, [7]float64{})
	for i, d := range pb.Days {
		if d.Closing != 0 {
			t.Errorf("day %d closing = %v, want 0", i, d.Closing)
		}
	}
	if pb.HasDeficit {
		t.Error("no deficit expected for all-zero product")
	}
}

func TestAggregateEquivalence(t *testing.T) {
	// The aggregated path and the local path must agree when fed the
	// aggregates the local path would itself derive.
	w := testWeek()
	products := []Product{testProduct(), {ID: 2, Name: "Baguette", UnitsPerPackage: 2}}
	rows := []OrderRow{
		{ProductID: 1, OrderID: 1, DeliveryDate: day(2026, 2, 16), RequestedQty: 10},
		{ProductID: 1, OrderID: 2, DeliveryDate: day(2026, 2, 23), RequestedQty: 11},
		{ProductID: 1, OrderID: 3, DeliveryDate: day(2026, 3, 2), RequestedQty: 4},
		{ProductID: 2, OrderID: 4, DeliveryDate: day(2026, 2, 18), RequestedQty: 6, DeliveredQty: 1},
		{ProductID: 2, OrderID: 5, DeliveryDate: day(2026, 3, 6), RequestedQty: 3},
	}
	local := Estimator{}.Forecast(products, w, rows)

	var aggs []DailyAggregate
	for _, pf := range local {
		for _, d := range pf.Days {
			aggs = append(aggs, DailyAggregate{
				ProductID:         pf.ProductID,
				DayIndex:          d.DayIndex,
				HistoricalAverage: d.HistoricalAverage,
				CurrentOrders:     d.CurrentOrders,
			})
		}
	}
	remote := FromAggregates(products, w, aggs)

	if len(remote) != len(local) {
		t.Fatalf("result count mismatch: %d vs %d", len(remote), len(local))
	}
	for i := range local {
		if remote[i].ProductID != local[i].ProductID {
			t.Fatalf("product order mismatch at %d", i)
		}
		if remote[i].WeeklyTotal != local[i].WeeklyTotal {
			t.Errorf("product %d weekly total %v != %v", local[i].ProductID, remote[i].WeeklyTotal, local[i].WeeklyTotal)
		}
		for j := range local[i].Days {
			if remote[i].Days[j].Forecast != local[i].Days[j].Forecast {
				t.Errorf("product %d day %d forecast %v != %v",
					local[i].ProductID, j, remote[i].Days[j].Forecast, local[i].Days[j].Forecast)
			}
		}
	}
}

func TestHistoryBoundaryModes(t *testing.T) {
	w := testWeek()
	rows := []OrderRow{
		// Historical Monday: 10.
		{ProductID: 1, OrderID: 1, DeliveryDate: day(2026, 2, 23), RequestedQty: 10},
		// Target-week Monday: 30.
		{ProductID: 1, OrderID: 2, DeliveryDate: day(2026, 3, 2), RequestedQty: 30},
	}

	excl := Estimator{IncludeTargetWeek: false}.Forecast([]Product{testProduct()}, w, rows)
	if excl[0].Days[0].HistoricalAverage != 10 {
		t.Errorf("exclusive average = %d, want 10", excl[0].Days[0].HistoricalAverage)
	}
	if excl[0].Days[0].Forecast != 30 {
		t.Errorf("exclusive forecast = %v, want 30 (current dominates)", excl[0].Days[0].Forecast)
	}

	incl := Estimator{IncludeTargetWeek: true}.Forecast([]Product{testProduct()}, w, rows)
	if incl[0].Days[0].HistoricalAverage != 20 {
		t.Errorf("inclusive average = %d, want 20 (mean of 10 and 30)", incl[0].Days[0].HistoricalAverage)
	}
	if incl[0].Days[0].CurrentOrders != 30 {
		t.Errorf("inclusive current = %v, want 30 either way", incl[0].Days[0].CurrentOrders)
	}
}

func TestDemandBreakdown(t *testing.T) {
	p := Product{ID: 1, Name: "Loaf", UnitsPerPackage: 2}
	target := day(2026, 3, 2)
	rows := []OrderRow{
		{ProductID: 1, OrderID: 10, ClientID: 1, ClientName: "Cafe A", DeliveryDate: target, RequestedQty: 5},
		{ProductID: 1, OrderID: 10, ClientID: 1, ClientName: "Cafe A", DeliveryDate: target, RequestedQty: 2},
		{ProductID: 1, OrderID: 11, ClientID: 2, ClientName: "Hotel B", DeliveryDate: target, RequestedQty: 20, DeliveredQty: 10},
		// Different date, same product: excluded.
		{ProductID: 1, OrderID: 12, ClientID: 2, ClientName: "Hotel B", DeliveryDate: day(2026, 3, 3), RequestedQty: 9},
		// Fully delivered: contributes nothing.
		{ProductID: 1, OrderID: 13, ClientID: 3, ClientName: "Kiosk C", DeliveryDate: target, RequestedQty: 4, DeliveredQty: 4},
	}

	lines := DemandBreakdown(p, target, rows)
	if len(lines) != 2 {
		t.Fatalf("len = %d, want 2", len(lines))
	}
	// Largest contribution first: Hotel B has (20-10)*2 = 20, Cafe A (5+2)*2 = 14.
	if lines[0].OrderID != 11 || lines[0].Quantity != 20 {
		t.Errorf("line 0 = %+v, want order 11 qty 20", lines[0])
	}
	if lines[1].OrderID != 10 || lines[1].Quantity != 14 {
		t.Errorf("line 1 = %+v, want order 10 qty 14", lines[1])
	}
}
