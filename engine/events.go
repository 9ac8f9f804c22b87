package engine

import "time"

const (
	EventPlanRecomputed EventType = iota + 1
	EventPlanRecomputeFailed
	EventOrdersChanged
	EventInventoryChanged
	EventScheduleChanged
	EventProductionEdited
	EventMessagingConnected
	EventMessagingDisconnected
)

// --- Event payloads ---

type PlanRecomputedEvent struct {
	WeekStart    time.Time
	Source       string
	ProductCount int
	DeficitCount int
	WeeklyDemand float64
	Duration     time.Duration
}

type PlanRecomputeFailedEvent struct {
	WeekStart time.Time
	Err       error
}

// ChangeEvent announces that a planning input table moved. Detail is free
// text for the activity feed.
type ChangeEvent struct {
	Detail string
}

type ProductionEditedEvent struct {
	ProductID int64
	Date      time.Time
	Quantity  float64
	Actor     string
}

type ConnectionEvent struct {
	Detail string
}
