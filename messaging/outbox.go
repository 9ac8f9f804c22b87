package messaging

import (
	"log"
	"sync"
	"time"

	"plancore/config"
	"plancore/store"
)

const drainBatchSize = 50

// OutboxDrainer flushes pending outbox rows to the broker on a timer. Plan
// broadcasts are staged in the outbox first, so a broker outage delays them
// instead of losing them.
type OutboxDrainer struct {
	db       *store.DB
	client   *Client
	cfg      *config.MessagingConfig
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewOutboxDrainer(db *store.DB, client *Client, cfg *config.MessagingConfig) *OutboxDrainer {
	return &OutboxDrainer{
		db:       db,
		client:   client,
		cfg:      cfg,
		stopChan: make(chan struct{}),
	}
}

func (d *OutboxDrainer) Start() {
	d.wg.Add(1)
	go d.drainLoop()
}

func (d *OutboxDrainer) Stop() {
	select {
	case <-d.stopChan:
	default:
		close(d.stopChan)
	}
	d.wg.Wait()
}

func (d *OutboxDrainer) drainLoop() {
	defer d.wg.Done()

	interval := d.cfg.OutboxDrainInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First pass right away so messages staged before startup go out
	// without waiting a full tick.
	d.drain()

	for {
		select {
		case <-d.stopChan:
			return
		case <-ticker.C:
			d.drain()
		}
	}
}

func (d *OutboxDrainer) drain() {
	if !d.client.IsConnected() {
		return
	}

	msgs, err := d.db.ListPendingOutbox(drainBatchSize)
	if err != nil {
		log.Printf("messaging: list pending outbox: %v", err)
		return
	}

	sent := 0
	for _, msg := range msgs {
		if err := d.client.Publish(msg.Topic, msg.Payload); err != nil {
			log.Printf("messaging: publish outbox msg %d: %v", msg.ID, err)
			d.db.IncrementOutboxRetries(msg.ID)
			continue
		}
		if err := d.db.AckOutbox(msg.ID); err != nil {
			log.Printf("messaging: ack outbox msg %d: %v", msg.ID, err)
			continue
		}
		sent++
	}
	if sent > 0 {
		log.Printf("messaging: drained %d outbox message(s)", sent)
	}
}
