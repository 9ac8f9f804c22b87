package messaging

import (
	"log"

	"plancore/config"
)

// ChangeSink receives validated change notices. The planner implements this
// to trigger recomputes without messaging importing the engine.
type ChangeSink interface {
	NotifyChange(kind string)
}

// Subscriber listens for inbound change notices and forwards them to the
// change sink.
type Subscriber struct {
	client *Client
	cfg    *config.MessagingConfig
	sink   ChangeSink
}

func NewSubscriber(client *Client, cfg *config.MessagingConfig, sink ChangeSink) *Subscriber {
	return &Subscriber{
		client: client,
		cfg:    cfg,
		sink:   sink,
	}
}

// Start subscribes to the changes topic and begins processing notices.
func (s *Subscriber) Start() error {
	return s.client.Subscribe(s.cfg.ChangesTopic, s.handleMessage)
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	env, err := DecodeEnvelope(payload)
	if err != nil {
		log.Printf("messaging: decode on %s: %v", topic, err)
		return
	}

	// Filter: only process notices for our site
	if env.SiteID != "" && env.SiteID != s.cfg.SiteID {
		return
	}

	switch env.MsgType {
	case TypeOrdersChanged:
		s.sink.NotifyChange("orders")
	case TypeInventoryChanged:
		s.sink.NotifyChange("inventory")
	case TypeScheduleChanged:
		s.sink.NotifyChange("schedule")
	default:
		// plan.updated and plan.failed are our own outbound traffic
	}
}
