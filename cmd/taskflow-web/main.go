package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/scrypster/taskflow/internal/config"
	"github.com/scrypster/taskflow/internal/seed"
	"github.com/scrypster/taskflow/internal/server"
	"github.com/scrypster/taskflow/internal/service"
	"github.com/scrypster/taskflow/internal/storage"
	"github.com/scrypster/taskflow/internal/storage/postgres"
	"github.com/scrypster/taskflow/internal/storage/sqlite"
	"github.com/scrypster/taskflow/internal/workflow"
)

func main() {
	seedFile := flag.String("seed", "", "Path to a YAML seed file (default: built-in demo data)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *seedFile != "" {
		cfg.Seed.File = *seedFile
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	registry := workflow.NewRegistry(
		workflow.ProcurementStrategy{},
		workflow.DevelopmentStrategy{},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Seed.Enabled {
		if err := applySeed(ctx, cfg, store, registry); err != nil {
			log.Fatalf("Failed to seed store: %v", err)
		}
	}

	addr, _, err := server.Start(ctx, cfg, store, registry)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("taskflow API running at http://%s", addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	cancel()
	time.Sleep(1 * time.Second) // Give time for connections to close
}

// openStore builds the configured storage backend. Postgres is wrapped in
// a circuit breaker because it is a network dependency; the embedded
// SQLite store is not.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.StorageEngine {
	case "postgres":
		inner, err := postgres.NewStore(cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return storage.NewBreakerStore(inner), nil
	default:
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o700); err != nil {
			return nil, err
		}
		return sqlite.NewStore(filepath.Join(cfg.Storage.DataPath, "taskflow.db"))
	}
}

func applySeed(ctx context.Context, cfg *config.Config, store storage.Store, registry *workflow.Registry) error {
	data, err := seed.Load(cfg.Seed.File)
	if err != nil {
		return err
	}
	// Seed tasks go through the normal service path so IDs, timestamps and
	// initial status match user-created tasks. No event sink during seeding.
	tasks := service.NewTaskService(store, registry, workflow.NewEngine(), nil)
	return seed.Apply(ctx, data, store, tasks)
}
