package forecast

// Project folds a product's opening inventory, planned production, and
// forecast demand into a 7-day running balance. A single forward pass:
// day 2's deficit never adjusts day 0's plan, the projection only reports
// the shape of the problem.
func Project(pf ProductForecast, initialInventory float64, production [7]float64) ProductBalance {
	pb := ProductBalance{
		ProductID:        pf.ProductID,
		Name:             pf.Name,
		InitialInventory: initialInventory,
	}
	opening := initialInventory
	for i := 0; i < 7; i++ {
		closing := opening + production[i] - pf.Days[i].Forecast
		pb.Days[i] = DailyBalance{
			DayIndex:          i,
			Date:              pf.Days[i].Date,
			Opening:           opening,
			PlannedProduction: production[i],
			ForecastDemand:    pf.Days[i].Forecast,
			Closing:           closing,
			Deficit:           closing < 0,
		}
		if closing < 0 {
			pb.HasDeficit = true
		}
		opening = closing
	}
	pb.WeekEndBalance = pb.Days[6].Closing
	return pb
}

// Reproject returns a fresh projection with one day's planned production
// replaced. The whole week is re-folded from day 0 so downstream openings
// stay consistent; prev is not mutated.
func Reproject(prev ProductBalance, dayIndex int, newProduction float64) ProductBalance {
	if dayIndex < 0 || dayIndex > 6 {
		return prev
	}
	pf := ProductForecast{ProductID: prev.ProductID, Name: prev.Name}
	var production [7]float64
	for i := 0; i < 7; i++ {
		pf.Days[i] = DailyForecast{
			DayIndex: i,
			Date:     prev.Days[i].Date,
			Forecast: prev.Days[i].ForecastDemand,
		}
		production[i] = prev.Days[i].PlannedProduction
	}
	production[dayIndex] = newProduction
	return Project(pf, prev.InitialInventory, production)
}

// Summarize folds the week-level scalars over all products.
func Summarize(forecasts []ProductForecast, balances []ProductBalance) Summary {
	var s Summary
	for _, pf := range forecasts {
		s.TotalForecast += pf.WeeklyTotal
	}
	for _, pb := range balances {
		if pb.HasDeficit {
			s.ProductsWithDeficit++
		}
		s.TotalInitialInventory += pb.InitialInventory
		s.TotalWeekEndBalance += pb.WeekEndBalance
	}
	return s
}
