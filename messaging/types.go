package messaging

// Inbound msg_types announcing that a planning input table moved.
const (
	TypeOrdersChanged    = "orders_changed"
	TypeInventoryChanged = "inventory_changed"
	TypeScheduleChanged  = "schedule_changed"
)

// Outbound msg_types broadcast after recompute passes.
const (
	TypePlanUpdated = "plan.updated"
	TypePlanFailed  = "plan.failed"
)

// --- Inbound payloads (upstream systems -> plancore) ---

// ChangeNotice is the payload for the *_changed msg_types. The fields scope
// the change; either may be empty when the upstream system only knows
// "something moved".
type ChangeNotice struct {
	ProductID int64  `json:"product_id,omitempty"`
	Date      string `json:"date,omitempty"` // YYYY-MM-DD
	Detail    string `json:"detail,omitempty"`
}

// --- Outbound payloads (plancore -> downstream consumers) ---

// PlanUpdated is broadcast after every successful recompute so dashboards
// and sibling services can refetch the plan.
type PlanUpdated struct {
	WeekStart     string `json:"week_start"` // YYYY-MM-DD
	Source        string `json:"source"`     // aggregated or local
	ProductCount  int    `json:"product_count"`
	DeficitCount  int    `json:"deficit_count"`
	WeeklyDemand  int    `json:"weekly_demand"`
	ComputedAtUTC string `json:"computed_at_utc"`
}

// PlanFailed is broadcast when a recompute could not complete and the last
// good plan was marked stale.
type PlanFailed struct {
	WeekStart string `json:"week_start"`
	Error     string `json:"error"`
}
