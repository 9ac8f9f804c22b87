package planstate

import (
	"context"
	"log"
	"sync"
	"time"
)

// Manager holds the latest computed plan: in-memory first, written through
// to Redis so restarts and sibling instances can recover the last good
// result. Last write wins; an older computation never replaces a newer one.
type Manager struct {
	mu     sync.RWMutex
	latest *Plan
	redis  *RedisStore
}

func NewManager(redis *RedisStore) *Manager {
	return &Manager{redis: redis}
}

// Publish stores a freshly computed plan. A plan computed before the
// currently held one is dropped, which keeps overlapping recomputes safe.
func (m *Manager) Publish(plan *Plan) {
	m.mu.Lock()
	if m.latest != nil && plan.ComputedAt.Before(m.latest.ComputedAt) {
		m.mu.Unlock()
		log.Printf("planstate: dropping plan computed at %s, newer one already held", plan.ComputedAt.Format(time.RFC3339))
		return
	}
	m.latest = plan
	m.mu.Unlock()

	if m.redis != nil {
		if err := m.redis.SetPlan(context.Background(), plan); err != nil {
			log.Printf("planstate: redis write: %v", err)
		}
	}
}

// MarkStale flags the held plan as outdated without discarding it, so the
// last good result stays visible while a recompute is failing.
func (m *Manager) MarkStale() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == nil {
		return
	}
	stale := *m.latest
	stale.Stale = true
	m.latest = &stale
}

// Latest returns the held plan, falling back to Redis after a restart.
// Returns nil when nothing has been computed yet.
func (m *Manager) Latest() *Plan {
	m.mu.RLock()
	plan := m.latest
	m.mu.RUnlock()
	if plan != nil {
		return plan
	}

	if m.redis == nil {
		return nil
	}
	plan, err := m.redis.GetLatestPlan(context.Background())
	if err != nil {
		log.Printf("planstate: redis read: %v", err)
		return nil
	}
	if plan != nil {
		m.mu.Lock()
		if m.latest == nil {
			plan.Stale = true // recovered, not freshly computed
			m.latest = plan
		}
		plan = m.latest
		m.mu.Unlock()
	}
	return plan
}

// ForWeek returns the plan for a specific week from Redis, or the held plan
// when it matches.
func (m *Manager) ForWeek(weekStart time.Time) *Plan {
	m.mu.RLock()
	plan := m.latest
	m.mu.RUnlock()
	if plan != nil && plan.WeekStart.Equal(weekStart) {
		return plan
	}
	if m.redis == nil {
		return nil
	}
	p, err := m.redis.GetPlan(context.Background(), weekStart)
	if err != nil {
		log.Printf("planstate: redis read week %s: %v", weekStart.Format("2006-01-02"), err)
		return nil
	}
	return p
}
