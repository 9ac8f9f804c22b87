package forecast

import "time"

// ProductID identifies a product in the catalog.
type ProductID int64

// Product is a trackable item. UnitsPerPackage converts an order line's
// package-level quantity into the product's base tracking unit.
type Product struct {
	ID              ProductID `json:"id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	UnitsPerPackage float64   `json:"units_per_package"`
}

// OrderRow is one order line as supplied by the order store: quantities are
// package-level, delivery date identifies the calendar day the demand lands on.
type OrderRow struct {
	ProductID    ProductID `json:"product_id"`
	OrderID      int64     `json:"order_id"`
	ClientID     int64     `json:"client_id"`
	ClientName   string    `json:"client_name"`
	DeliveryDate time.Time `json:"delivery_date"`
	RequestedQty float64   `json:"requested_qty"`
	DeliveredQty float64   `json:"delivered_qty"`
}

// NetUnits returns the still-undelivered quantity of a row in base units.
// Over-delivered lines contribute zero, never negative demand.
func (r OrderRow) NetUnits(unitsPerPackage float64) float64 {
	net := r.RequestedQty - r.DeliveredQty
	if net < 0 {
		return 0
	}
	if unitsPerPackage <= 0 {
		unitsPerPackage = 1
	}
	return net * unitsPerPackage
}

// DailyForecast is the demand estimate for one product on one day of the week.
type DailyForecast struct {
	DayIndex          int       `json:"day_index"`
	Date              time.Time `json:"date"`
	HistoricalAverage int       `json:"historical_average"`
	CurrentOrders     float64   `json:"current_orders"`
	Forecast          float64   `json:"forecast"`
}

// ProductForecast is the full 7-day forecast for one product.
type ProductForecast struct {
	ProductID   ProductID        `json:"product_id"`
	Name        string           `json:"name"`
	Days        [7]DailyForecast `json:"days"`
	WeeklyTotal float64          `json:"weekly_total"`
}

// DailyAggregate is one pre-aggregated forecast input row as returned by a
// remote aggregation procedure. It carries exactly the two quantities the
// estimator would otherwise derive from raw order rows.
type DailyAggregate struct {
	ProductID         ProductID `json:"product_id"`
	DayIndex          int       `json:"day_index"`
	HistoricalAverage int       `json:"historical_average"`
	CurrentOrders     float64   `json:"current_orders"`
}

// DailyBalance is one day of a product's projected running balance.
type DailyBalance struct {
	DayIndex          int       `json:"day_index"`
	Date              time.Time `json:"date"`
	Opening           float64   `json:"opening_balance"`
	PlannedProduction float64   `json:"planned_production"`
	ForecastDemand    float64   `json:"forecast_demand"`
	Closing           float64   `json:"closing_balance"`
	Deficit           bool      `json:"is_deficit"`
}

// ProductBalance is the 7-day balance projection for one product.
type ProductBalance struct {
	ProductID        ProductID       `json:"product_id"`
	Name             string          `json:"name"`
	InitialInventory float64         `json:"initial_inventory"`
	Days             [7]DailyBalance `json:"days"`
	WeekEndBalance   float64         `json:"week_end_balance"`
	HasDeficit       bool            `json:"has_deficit"`
}

// BreakdownLine is one order's contribution to a product's demand on a date.
type BreakdownLine struct {
	ClientID   int64   `json:"client_id"`
	ClientName string  `json:"client_name"`
	OrderID    int64   `json:"order_id"`
	Quantity   float64 `json:"quantity"`
}

// Summary holds the week-level scalar folds over all products.
type Summary struct {
	TotalForecast         float64 `json:"total_forecast"`
	ProductsWithDeficit   int     `json:"products_with_deficit"`
	TotalInitialInventory float64 `json:"total_initial_inventory"`
	TotalWeekEndBalance   float64 `json:"total_week_end_balance"`
}
