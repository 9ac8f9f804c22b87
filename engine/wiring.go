package engine

import (
	"time"

	"plancore/messaging"
)

func (e *Engine) wireEventHandlers() {
	// Change notices trigger a recompute
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(ChangeEvent)
		e.logFn("engine: input change (%s), scheduling recompute", ev.Detail)
		e.RequestRecompute()
	}, EventOrdersChanged, EventInventoryChanged, EventScheduleChanged)

	// Successful recomputes are broadcast through the outbox
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(PlanRecomputedEvent)
		e.enqueueBroadcast(messaging.TypePlanUpdated, messaging.PlanUpdated{
			WeekStart:     ev.WeekStart.Format("2006-01-02"),
			Source:        ev.Source,
			ProductCount:  ev.ProductCount,
			DeficitCount:  ev.DeficitCount,
			WeeklyDemand:  int(ev.WeeklyDemand),
			ComputedAtUTC: evt.Timestamp.UTC().Format(time.RFC3339),
		})
	}, EventPlanRecomputed)

	// Failed recomputes too, so consumers know the plan went stale
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(PlanRecomputeFailedEvent)
		e.enqueueBroadcast(messaging.TypePlanFailed, messaging.PlanFailed{
			WeekStart: ev.WeekStart.Format("2006-01-02"),
			Error:     ev.Err.Error(),
		})
	}, EventPlanRecomputeFailed)

	// Production edits are logged for the activity trail
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(ProductionEditedEvent)
		e.logFn("engine: production edit by %s: product %d on %s -> %.1f",
			ev.Actor, ev.ProductID, ev.Date.Format("2006-01-02"), ev.Quantity)
	}, EventProductionEdited)

	// Messaging connection transitions
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(ConnectionEvent)
		e.logFn("engine: %s", ev.Detail)
	}, EventMessagingConnected, EventMessagingDisconnected)
}

// enqueueBroadcast writes an envelope to the outbox for the plans topic.
// The drainer delivers it once the broker is reachable.
func (e *Engine) enqueueBroadcast(msgType string, payload any) {
	env := messaging.NewEnvelope(msgType, e.cfg.Messaging.SiteID, payload)
	data, err := env.Encode()
	if err != nil {
		e.logFn("engine: encode %s broadcast: %v", msgType, err)
		return
	}
	if err := e.db.EnqueueOutbox(e.cfg.Messaging.PlansTopic, data, msgType, e.cfg.Messaging.SiteID); err != nil {
		e.logFn("engine: enqueue %s broadcast: %v", msgType, err)
	}
}
