package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"plancore/engine"
)

// Handlers serves the JSON API. There is no HTML here: the front end is a
// separate application that consumes these endpoints and the SSE stream.
type Handlers struct {
	engine   *engine.Engine
	sessions *sessions.CookieStore
	eventHub *EventHub
}

func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	hub := NewEventHub()
	hub.Start()
	hub.SetupEngineListeners(eng)

	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: hub,
	}

	h.ensureDefaultAdmin(eng.DB())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// SSE
	r.Get("/events", hub.SSEHandler)

	// Session
	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)

	// Read routes (no auth required)
	r.Get("/api/health", h.apiHealth)
	r.Get("/api/plan", h.apiPlan)
	r.Get("/api/plan/forecasts", h.apiPlanForecasts)
	r.Get("/api/plan/balances", h.apiPlanBalances)
	r.Get("/api/plan/summary", h.apiPlanSummary)
	r.Get("/api/plan/breakdown", h.apiPlanBreakdown)
	r.Get("/api/plan/runs", h.apiPlanRuns)
	r.Get("/api/products", h.apiListProducts)
	r.Get("/api/clients", h.apiListClients)
	r.Get("/api/orders", h.apiListOrders)
	r.Get("/api/orders/{id}", h.apiGetOrder)
	r.Get("/api/inventory", h.apiListInventory)
	r.Get("/api/schedule", h.apiSchedule)

	// Mutating routes
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/api/recompute", h.apiRecompute)
		r.Put("/api/schedule", h.apiScheduleEdit)
		r.Post("/api/products", h.apiCreateProduct)
		r.Put("/api/products/{id}", h.apiUpdateProduct)
		r.Delete("/api/products/{id}", h.apiDeleteProduct)
		r.Post("/api/clients", h.apiCreateClient)
		r.Post("/api/orders", h.apiCreateOrder)
		r.Put("/api/orders/{id}/status", h.apiSetOrderStatus)
		r.Put("/api/orders/items/{id}/delivered", h.apiSetItemDelivered)
		r.Put("/api/inventory", h.apiSetInventory)
		r.Get("/api/config", h.apiGetConfig)
		r.Put("/api/config", h.apiConfigSave)
	})

	stopFn := func() {
		hub.Stop()
	}

	return r, stopFn
}
