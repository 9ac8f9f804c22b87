package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"plancore/config"
	"plancore/engine"
	"plancore/messaging"
	"plancore/planstate"
	"plancore/rpc"
	"plancore/store"
	"plancore/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "plancore.yaml", "path to config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("plancore", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("plancore: database open (%s)", cfg.Database.Driver)

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	redisUp := redisClient.Ping(ctx).Err() == nil
	cancel()
	defer redisClient.Close()

	// Plan state manager
	var planStore *planstate.RedisStore
	if redisUp {
		planStore = planstate.NewRedisStore(redisClient)
		log.Printf("plancore: redis connected (%s)", cfg.Redis.Address)
	} else {
		log.Printf("plancore: redis not available, plans held in memory only")
	}
	plans := planstate.NewManager(planStore)

	// Aggregated forecast source (remote RPC); empty base URL means local only
	var aggregated *rpc.Client
	if cfg.Aggregator.BaseURL != "" {
		aggregated = rpc.NewClient(cfg.Aggregator.BaseURL, cfg.Aggregator.Timeout)
		log.Printf("plancore: forecast aggregator at %s", cfg.Aggregator.BaseURL)
	} else {
		log.Printf("plancore: no forecast aggregator configured, computing locally")
	}

	// Messaging client
	msgClient := messaging.NewClient(&cfg.Messaging)
	if err := msgClient.Connect(); err != nil {
		log.Printf("plancore: messaging connect failed (%v)", err)
	} else {
		log.Printf("plancore: messaging connected (%s)", cfg.Messaging.Backend)
	}
	defer msgClient.Close()

	// Engine
	engCfg := engine.Config{
		AppConfig:  cfg,
		ConfigPath: *configPath,
		DB:         db,
		Plans:      plans,
		MsgClient:  msgClient,
	}
	if aggregated != nil {
		engCfg.Aggregated = aggregated
	}
	eng := engine.New(engCfg)
	eng.Start()
	defer eng.Stop()

	// Change notice subscriber (inbound)
	subscriber := messaging.NewSubscriber(msgClient, &cfg.Messaging, eng)
	if err := subscriber.Start(); err != nil {
		log.Printf("plancore: change subscribe failed: %v", err)
	} else {
		log.Printf("plancore: listening for changes on %s", cfg.Messaging.ChangesTopic)
	}

	// Outbox drainer (outbound plan broadcasts)
	drainer := messaging.NewOutboxDrainer(db, msgClient, &cfg.Messaging)
	drainer.Start()
	defer drainer.Stop()

	// Web server
	handler, stopWeb := www.NewRouter(eng)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("plancore: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("plancore: ready")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("plancore: shutting down...")
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("plancore: stopped")
}
