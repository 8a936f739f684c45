package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/stackdeck/backend/internal/router"
	"github.com/stackdeck/backend/internal/tasks"
	"github.com/stackdeck/backend/pkg/config"
	"github.com/stackdeck/backend/pkg/push"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize the push transport. Without Firebase credentials the
	// pipeline still runs, logging payloads instead of delivering them.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var transport push.Transport
	var endpoints push.EndpointResolver
	if cfg.FirebaseCredentialsPath != "" {
		fcm, err := push.NewFCM(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize FCM: %v", err)
		}
		transport, endpoints = fcm, fcm
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, using log push transport.")
		lt := push.NewLogTransport()
		transport, endpoints = lt, lt
	}

	// Start the task pool that processes activities and device endpoints
	pool := tasks.NewPool(cfg.WorkerCount)
	pool.Start(ctx)

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db, transport, endpoints, pool)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
