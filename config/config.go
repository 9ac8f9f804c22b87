package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	mu sync.RWMutex `yaml:"-"`

	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Aggregator AggregatorConfig `yaml:"aggregator"`
	Web        WebConfig        `yaml:"web"`
	Messaging  MessagingConfig  `yaml:"messaging"`
	Planning   PlanningConfig   `yaml:"planning"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AggregatorConfig points at the remote forecast-aggregation procedure.
// When unreachable, the planner falls back to computing forecasts locally
// from raw order rows.
type AggregatorConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
}

type MessagingConfig struct {
	Backend             string        `yaml:"backend"` // "kafka" or "mqtt"
	Kafka               KafkaConfig   `yaml:"kafka"`
	MQTT                MQTTConfig    `yaml:"mqtt"`
	ChangesTopic        string        `yaml:"changes_topic"`
	PlansTopic          string        `yaml:"plans_topic"`
	OutboxDrainInterval time.Duration `yaml:"outbox_drain_interval"`
	SiteID              string        `yaml:"site_id"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

// PlanningConfig controls the forecast/balance calculation window.
type PlanningConfig struct {
	// WeekStartDay is the weekday the planning week is anchored to.
	// Accepts English weekday names; defaults to Monday.
	WeekStartDay string `yaml:"week_start_day"`
	// HistoryWeeks is the trailing window used for the historical average.
	HistoryWeeks int `yaml:"history_weeks"`
	// IncludeTargetWeek controls whether rows inside the target week also
	// feed the historical average. The local calculation excludes them;
	// some aggregation backends include them.
	IncludeTargetWeek bool `yaml:"include_target_week"`
	// RecomputeInterval is the periodic plan rebuild cadence, on top of
	// change-driven recomputes.
	RecomputeInterval time.Duration `yaml:"recompute_interval"`
}

func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "plancore.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "plancore",
				User:     "plancore",
				Password: "",
				SSLMode:  "disable",
			},
		},
		Redis: RedisConfig{
			Address:  "localhost:6379",
			Password: "",
			DB:       0,
		},
		Aggregator: AggregatorConfig{
			BaseURL: "",
			Timeout: 10 * time.Second,
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          8086,
			SessionSecret: "change-me-in-production",
		},
		Messaging: MessagingConfig{
			Backend: "kafka",
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				GroupID: "plancore",
			},
			MQTT: MQTTConfig{
				Broker:   "localhost",
				Port:     1883,
				ClientID: "plancore",
			},
			ChangesTopic:        "plancore.changes",
			PlansTopic:          "plancore.plans",
			OutboxDrainInterval: 5 * time.Second,
			SiteID:              "main",
		},
		Planning: PlanningConfig{
			WeekStartDay:      "Monday",
			HistoryWeeks:      8,
			IncludeTargetWeek: false,
			RecomputeInterval: time.Hour,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Lock()   { c.mu.Lock() }
func (c *Config) Unlock() { c.mu.Unlock() }
