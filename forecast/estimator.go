package forecast

import (
	"math"
	"sort"
	"time"
)

// Estimator computes per-product weekly demand forecasts from raw order rows.
// It is the local computation path; FromAggregates builds the identical result
// shape from a remote aggregation procedure's output.
type Estimator struct {
	// IncludeTargetWeek also feeds rows inside the target week into the
	// historical average. The local path normally excludes them; some
	// aggregation backends include them, so equivalence tests need both.
	IncludeTargetWeek bool
}

// Forecast produces one ProductForecast per product, ordered as given.
// Rows are expected to cover the trailing history window plus the target week;
// rows for unknown products are ignored.
func (e Estimator) Forecast(products []Product, week Week, rows []OrderRow) []ProductForecast {
	type bucket struct {
		samples [7][]float64 // historical net units per weekday
		current [7]float64   // net units on the week's exact dates
	}
	buckets := make(map[ProductID]*bucket, len(products))
	factors := make(map[ProductID]float64, len(products))
	for _, p := range products {
		buckets[p.ID] = &bucket{}
		factors[p.ID] = p.UnitsPerPackage
	}

	for _, row := range rows {
		b, ok := buckets[row.ProductID]
		if !ok {
			continue
		}
		net := row.NetUnits(factors[row.ProductID])
		if idx, inWeek := week.DayIndex(row.DeliveryDate); inWeek {
			b.current[idx] += net
			if e.IncludeTargetWeek {
				b.samples[idx] = append(b.samples[idx], net)
			}
			continue
		}
		if row.DeliveryDate.Before(week.Start) {
			wd := week.WeekdayIndex(row.DeliveryDate)
			b.samples[wd] = append(b.samples[wd], net)
		}
		// Rows after the target week carry no signal for it.
	}

	out := make([]ProductForecast, 0, len(products))
	for _, p := range products {
		b := buckets[p.ID]
		pf := ProductForecast{ProductID: p.ID, Name: p.Name}
		for i := 0; i < 7; i++ {
			avg := ceilMean(b.samples[i])
			pf.Days[i] = makeDaily(week, i, avg, b.current[i])
			pf.WeeklyTotal += pf.Days[i].Forecast
		}
		out = append(out, pf)
	}
	return out
}

// FromAggregates assembles ProductForecasts from pre-aggregated per-day rows.
// Aggregates for unknown products or out-of-range day indices are dropped;
// days with no aggregate default to zero so every product still gets 7 days.
func FromAggregates(products []Product, week Week, aggs []DailyAggregate) []ProductForecast {
	byProduct := make(map[ProductID]*[7]DailyAggregate, len(products))
	for _, p := range products {
		byProduct[p.ID] = &[7]DailyAggregate{}
	}
	for _, a := range aggs {
		days, ok := byProduct[a.ProductID]
		if !ok || a.DayIndex < 0 || a.DayIndex > 6 {
			continue
		}
		days[a.DayIndex] = a
	}

	out := make([]ProductForecast, 0, len(products))
	for _, p := range products {
		days := byProduct[p.ID]
		pf := ProductForecast{ProductID: p.ID, Name: p.Name}
		for i := 0; i < 7; i++ {
			pf.Days[i] = makeDaily(week, i, days[i].HistoricalAverage, days[i].CurrentOrders)
			pf.WeeklyTotal += pf.Days[i].Forecast
		}
		out = append(out, pf)
	}
	return out
}

// DemandBreakdown lists the order lines behind a product's demand on one date,
// aggregated per order, largest contribution first.
func DemandBreakdown(p Product, date time.Time, rows []OrderRow) []BreakdownLine {
	type key struct {
		clientID int64
		orderID  int64
	}
	sums := make(map[key]*BreakdownLine)
	var order []key
	for _, row := range rows {
		if row.ProductID != p.ID || !SameDay(row.DeliveryDate, date) {
			continue
		}
		net := row.NetUnits(p.UnitsPerPackage)
		if net == 0 {
			continue
		}
		k := key{row.ClientID, row.OrderID}
		if line, ok := sums[k]; ok {
			line.Quantity += net
			continue
		}
		sums[k] = &BreakdownLine{
			ClientID:   row.ClientID,
			ClientName: row.ClientName,
			OrderID:    row.OrderID,
			Quantity:   net,
		}
		order = append(order, k)
	}

	out := make([]BreakdownLine, 0, len(order))
	for _, k := range order {
		out = append(out, *sums[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	return out
}

func makeDaily(week Week, index, avg int, current float64) DailyForecast {
	return DailyForecast{
		DayIndex:          index,
		Date:              week.Day(index),
		HistoricalAverage: avg,
		CurrentOrders:     current,
		Forecast:          math.Max(float64(avg), current),
	}
}

// ceilMean rounds the mean up so the forecast never undershoots on rounding.
func ceilMean(samples []float64) int {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return int(math.Ceil(sum / float64(len(samples))))
}
