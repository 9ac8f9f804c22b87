package engine

import (
	"context"
	"log"
	"time"

	"plancore/config"
	"plancore/forecast"
	"plancore/messaging"
	"plancore/planstate"
	"plancore/store"
)

type LogFunc func(format string, args ...any)

type Config struct {
	AppConfig  *config.Config
	ConfigPath string
	DB         *store.DB
	Aggregated forecast.Source
	Plans      *planstate.Manager
	MsgClient  *messaging.Client
	LogFunc    LogFunc
}

// Engine owns the recompute pipeline: it reacts to input changes, rebuilds
// the weekly plan, publishes it, and announces the result.
type Engine struct {
	cfg          *config.Config
	configPath   string
	db           *store.DB
	aggregated   forecast.Source
	plans        *planstate.Manager
	msgClient    *messaging.Client
	Events       *EventBus
	logFn        LogFunc
	stopChan     chan struct{}
	recomputeCh  chan struct{}
	msgConnected bool
}

func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = log.Printf
	}
	return &Engine{
		cfg:         c.AppConfig,
		configPath:  c.ConfigPath,
		db:          c.DB,
		aggregated:  c.Aggregated,
		plans:       c.Plans,
		msgClient:   c.MsgClient,
		Events:      NewEventBus(),
		logFn:       logFn,
		stopChan:    make(chan struct{}),
		recomputeCh: make(chan struct{}, 1),
	}
}

func (e *Engine) Start() {
	e.wireEventHandlers()

	// Emit initial connection status
	e.checkConnectionStatus()

	go e.recomputeLoop()
	go e.connectionHealthLoop()

	// Compute an initial plan so the API never serves an empty state.
	e.RequestRecompute()

	e.logFn("engine: started")
}

func (e *Engine) Stop() {
	select {
	case <-e.stopChan:
	default:
		close(e.stopChan)
	}
	e.logFn("engine: stopped")
}

// Accessors
func (e *Engine) DB() *store.DB               { return e.db }
func (e *Engine) AppConfig() *config.Config   { return e.cfg }
func (e *Engine) ConfigPath() string          { return e.configPath }
func (e *Engine) Plans() *planstate.Manager   { return e.plans }
func (e *Engine) MsgClient() *messaging.Client { return e.msgClient }

// NotifyChange implements messaging.ChangeSink: an upstream system changed
// a planning input table.
func (e *Engine) NotifyChange(kind string) {
	switch kind {
	case "orders":
		e.Events.Emit(Event{Type: EventOrdersChanged, Payload: ChangeEvent{Detail: "orders changed upstream"}})
	case "inventory":
		e.Events.Emit(Event{Type: EventInventoryChanged, Payload: ChangeEvent{Detail: "inventory changed upstream"}})
	case "schedule":
		e.Events.Emit(Event{Type: EventScheduleChanged, Payload: ChangeEvent{Detail: "schedule changed upstream"}})
	}
}

// RequestRecompute schedules a plan rebuild. Requests arriving while one is
// already pending coalesce into a single pass.
func (e *Engine) RequestRecompute() {
	select {
	case e.recomputeCh <- struct{}{}:
	default:
	}
}

func (e *Engine) recomputeLoop() {
	interval := e.cfg.Planning.RecomputeInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.RequestRecompute()
		case <-e.recomputeCh:
			// Brief settle window so bursts of change notices
			// produce one recompute, not one per notice.
			time.Sleep(200 * time.Millisecond)
			for {
				select {
				case <-e.recomputeCh:
					continue
				default:
				}
				break
			}
			if _, err := e.Recompute(context.Background()); err != nil {
				e.logFn("engine: recompute: %v", err)
			}
		}
	}
}

func (e *Engine) checkConnectionStatus() {
	if e.msgClient.IsConnected() {
		if !e.msgConnected {
			e.msgConnected = true
			e.Events.Emit(Event{Type: EventMessagingConnected, Payload: ConnectionEvent{Detail: "messaging connected"}})
		}
	} else {
		if e.msgConnected {
			e.msgConnected = false
			e.Events.Emit(Event{Type: EventMessagingDisconnected, Payload: ConnectionEvent{Detail: "messaging disconnected"}})
		}
	}
}

func (e *Engine) connectionHealthLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.checkConnectionStatus()
		}
	}
}

// ReconfigureAggregator pushes current aggregator settings into the remote
// forecast source, when one is wired.
func (e *Engine) ReconfigureAggregator() {
	type reconfigurable interface {
		Reconfigure(baseURL string, timeout time.Duration)
	}
	if src, ok := e.aggregated.(reconfigurable); ok {
		src.Reconfigure(e.cfg.Aggregator.BaseURL, e.cfg.Aggregator.Timeout)
		e.logFn("engine: aggregator reconfigured")
	}
}

// ReconfigureMessaging reconnects messaging with current config.
func (e *Engine) ReconfigureMessaging() {
	if err := e.msgClient.Reconfigure(&e.cfg.Messaging); err != nil {
		e.logFn("engine: messaging reconfigure error: %v", err)
	} else {
		e.logFn("engine: messaging reconfigured")
	}
	e.checkConnectionStatus()
}
