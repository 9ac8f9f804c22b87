package forecast

import "context"

// Source supplies pre-aggregated daily forecast inputs for a week.
// Implementations are typically remote procedures. An error or an empty
// result makes the caller fall back to the local Estimator; both paths
// produce the same ProductForecast shape.
type Source interface {
	Name() string
	DailyAggregates(ctx context.Context, week Week, weeksBack int, products []ProductID) ([]DailyAggregate, error)
}
