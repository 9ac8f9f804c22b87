package www

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// apiGetConfig exposes the tunable settings. Passwords and the session
// secret stay server-side.
func (h *Handlers) apiGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.AppConfig()
	h.jsonOK(w, map[string]any{
		"aggregator": map[string]any{
			"base_url": cfg.Aggregator.BaseURL,
			"timeout":  cfg.Aggregator.Timeout.String(),
		},
		"messaging": map[string]any{
			"backend":       cfg.Messaging.Backend,
			"kafka_brokers": cfg.Messaging.Kafka.Brokers,
			"mqtt_broker":   cfg.Messaging.MQTT.Broker,
			"mqtt_port":     cfg.Messaging.MQTT.Port,
			"changes_topic": cfg.Messaging.ChangesTopic,
			"plans_topic":   cfg.Messaging.PlansTopic,
			"site_id":       cfg.Messaging.SiteID,
		},
		"redis": map[string]any{
			"address": cfg.Redis.Address,
			"db":      cfg.Redis.DB,
		},
		"planning": map[string]any{
			"week_start_day":      cfg.Planning.WeekStartDay,
			"history_weeks":       cfg.Planning.HistoryWeeks,
			"include_target_week": cfg.Planning.IncludeTargetWeek,
			"recompute_interval":  cfg.Planning.RecomputeInterval.String(),
		},
	})
}

// apiConfigSave updates one config section, persists the file, and
// hot-reloads the affected subsystem. Redis changes take effect on restart.
func (h *Handlers) apiConfigSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Section string `json:"section"`

		BaseURL string `json:"base_url"`
		Timeout string `json:"timeout"`

		Backend      string   `json:"backend"`
		KafkaBrokers []string `json:"kafka_brokers"`
		MQTTBroker   string   `json:"mqtt_broker"`
		MQTTPort     int      `json:"mqtt_port"`
		ChangesTopic string   `json:"changes_topic"`
		PlansTopic   string   `json:"plans_topic"`
		SiteID       string   `json:"site_id"`

		RedisAddress  string `json:"redis_address"`
		RedisPassword string `json:"redis_password"`
		RedisDB       *int   `json:"redis_db"`

		WeekStartDay      string `json:"week_start_day"`
		HistoryWeeks      int    `json:"history_weeks"`
		IncludeTargetWeek *bool  `json:"include_target_week"`
		RecomputeInterval string `json:"recompute_interval"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cfg := h.engine.AppConfig()
	cfg.Lock()
	switch req.Section {
	case "aggregator":
		cfg.Aggregator.BaseURL = req.BaseURL
		if d, err := time.ParseDuration(req.Timeout); err == nil && d > 0 {
			cfg.Aggregator.Timeout = d
		}
	case "messaging":
		if req.Backend != "" {
			cfg.Messaging.Backend = req.Backend
		}
		if req.KafkaBrokers != nil {
			cfg.Messaging.Kafka.Brokers = req.KafkaBrokers
		}
		if req.MQTTBroker != "" {
			cfg.Messaging.MQTT.Broker = req.MQTTBroker
		}
		if req.MQTTPort > 0 {
			cfg.Messaging.MQTT.Port = req.MQTTPort
		}
		if req.ChangesTopic != "" {
			cfg.Messaging.ChangesTopic = req.ChangesTopic
		}
		if req.PlansTopic != "" {
			cfg.Messaging.PlansTopic = req.PlansTopic
		}
		if req.SiteID != "" {
			cfg.Messaging.SiteID = req.SiteID
		}
	case "redis":
		if req.RedisAddress != "" {
			cfg.Redis.Address = req.RedisAddress
		}
		if req.RedisPassword != "" {
			cfg.Redis.Password = req.RedisPassword
		}
		if req.RedisDB != nil {
			cfg.Redis.DB = *req.RedisDB
		}
	case "planning":
		if req.WeekStartDay != "" {
			cfg.Planning.WeekStartDay = req.WeekStartDay
		}
		if req.HistoryWeeks > 0 {
			cfg.Planning.HistoryWeeks = req.HistoryWeeks
		}
		if req.IncludeTargetWeek != nil {
			cfg.Planning.IncludeTargetWeek = *req.IncludeTargetWeek
		}
		if d, err := time.ParseDuration(req.RecomputeInterval); err == nil && d > 0 {
			cfg.Planning.RecomputeInterval = d
		}
	default:
		cfg.Unlock()
		h.jsonError(w, "unknown section", http.StatusBadRequest)
		return
	}
	cfg.Unlock()

	if err := cfg.Save(h.engine.ConfigPath()); err != nil {
		log.Printf("www: config save error: %v", err)
		h.jsonError(w, "failed to save config", http.StatusInternalServerError)
		return
	}

	// Hot-reload the affected subsystem
	switch req.Section {
	case "aggregator":
		h.engine.ReconfigureAggregator()
	case "messaging":
		h.engine.ReconfigureMessaging()
	case "planning":
		h.engine.RequestRecompute()
	}

	log.Printf("www: %s config saved by %s", req.Section, h.getUsername(r))
	h.jsonOK(w, map[string]string{"status": "saved", "section": req.Section})
}
