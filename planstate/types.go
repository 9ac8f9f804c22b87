package planstate

import (
	"time"

	"plancore/forecast"
)

// Plan is one complete computed weekly plan: every product's forecast and
// balance plus the week-level summary. Plans are replaced wholesale on each
// recompute, never patched.
type Plan struct {
	WeekStart  time.Time                  `json:"week_start"`
	ComputedAt time.Time                  `json:"computed_at"`
	Source     string                     `json:"source"` // "aggregated" or "local"
	Stale      bool                       `json:"stale"`
	Forecasts  []forecast.ProductForecast `json:"forecasts"`
	Balances   []forecast.ProductBalance  `json:"balances"`
	Summary    forecast.Summary           `json:"summary"`
}

// Balance returns the balance projection for one product, if present.
func (p *Plan) Balance(id forecast.ProductID) (forecast.ProductBalance, bool) {
	for _, b := range p.Balances {
		if b.ProductID == id {
			return b, true
		}
	}
	return forecast.ProductBalance{}, false
}

// ReplaceBalance returns a copy of the plan with one product's balance
// swapped out and the summary re-folded.
func (p *Plan) ReplaceBalance(pb forecast.ProductBalance) *Plan {
	next := *p
	next.Balances = make([]forecast.ProductBalance, len(p.Balances))
	copy(next.Balances, p.Balances)
	for i := range next.Balances {
		if next.Balances[i].ProductID == pb.ProductID {
			next.Balances[i] = pb
			break
		}
	}
	next.Summary = forecast.Summarize(next.Forecasts, next.Balances)
	return &next
}
