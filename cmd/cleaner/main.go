package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockpipe/data-clean-service/internal/api"
	"github.com/stockpipe/data-clean-service/internal/config"
	"github.com/stockpipe/data-clean-service/internal/database"
	"github.com/stockpipe/data-clean-service/internal/kafka"
	"github.com/stockpipe/data-clean-service/internal/pipeline"
	"github.com/stockpipe/data-clean-service/internal/status"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Pipeline.DataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %s: %v", cfg.Pipeline.DataPath, err)
	}

	// Status store connection is load-bearing: exhausting the retry budget
	// is fatal to the whole process.
	statusStore, err := status.Connect(ctx, cfg.Redis.Host, cfg.Redis.Port)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer statusStore.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer producer.Close()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
	defer consumer.Close()
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Printf("Kafka consumer stopped: %v", err)
		}
	}()

	var db *database.DB
	var history pipeline.HistoryArchive
	if cfg.Database.Enabled {
		db, err = database.New(cfg.Database.ConnectionString())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		history = db
	}

	handler := api.NewHandler(db, statusStore)
	server := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: api.SetupRoutes(handler),
	}
	go func() {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("Stock data clean service initialized")
	log.Printf("Redis host: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
	log.Printf("Kafka brokers: %v topic: %s", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	log.Printf("Shared data path: %s", cfg.Pipeline.DataPath)
	log.Printf("Processing interval: %s", cfg.Pipeline.Interval)

	svc := pipeline.NewService(cfg.Pipeline.DataPath, cfg.Pipeline.Interval,
		statusStore, producer, consumer.Triggers(), history)
	if err := svc.Run(ctx); err != nil {
		log.Fatalf("Service error: %v", err)
	}
}
