package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"github.com/targc/tasksync/pkg/api"
	"github.com/targc/tasksync/pkg/audit"
	"github.com/targc/tasksync/pkg/config"
	"github.com/targc/tasksync/pkg/database"
	"github.com/targc/tasksync/pkg/replicator"
	"github.com/targc/tasksync/pkg/syncer"
)

func main() {
	log.Println("Starting tasksync server...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load(ctx)

	db, err := database.Connect(ctx, cfg)

	if err != nil {
		log.Fatalf("failed to open stores: %v", err)
	}

	rec := audit.NewRecorder(db.Local)

	orch := syncer.NewOrchestrator(db, rec, syncer.Options{
		Strategy:      replicator.ParseStrategy(cfg.ConflictStrategy),
		NewExternalID: replicator.ExternalIDFuncForMode(cfg.ExternalIDMode),
	})

	sched := syncer.NewScheduler(orch, cfg.SyncInterval, cfg.RecoveryInterval)

	go sched.Start(ctx)

	app := fiber.New()

	server := api.NewServer(orch, sched, rec, cfg.APIKeyHash)
	server.SetupRoutes(app)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		<-sigChan

		log.Println("Shutting down...")
		cancel()

		err := app.Shutdown()

		if err != nil {
			log.Printf("failed to shut down server: %v", err)
		}
	}()

	log.Printf("API server listening on port %s", cfg.ServerPort)

	err = app.Listen(":" + cfg.ServerPort)

	if err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
