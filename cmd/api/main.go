package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xelth-com/loadboard/internal/ai"
	"github.com/xelth-com/loadboard/internal/config"
	"github.com/xelth-com/loadboard/internal/database"
	"github.com/xelth-com/loadboard/internal/handlers"
	"github.com/xelth-com/loadboard/internal/services/liveload"
	"github.com/xelth-com/loadboard/internal/services/orders"
	"github.com/xelth-com/loadboard/internal/services/products"
	"github.com/xelth-com/loadboard/internal/services/profiles"
	"github.com/xelth-com/loadboard/internal/session"
	"github.com/xelth-com/loadboard/internal/store"
	"github.com/xelth-com/loadboard/internal/timeorder"
	"github.com/xelth-com/loadboard/internal/websocket"
)

const cleanupInterval = time.Hour

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	if err := db.Migrate(); err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Services
	productSvc := products.NewService(store.NewProducts(db.DB))
	if err := productSvc.Load(context.Background(), cfg.CatalogFile); err != nil {
		log.Fatalf("Failed to load product catalog: %v", err)
	}
	log.Printf("📦 Catalog: %d products", productSvc.Index().Len())

	orderSvc := orders.NewService(store.NewOrders(db.DB), timeorder.Ordering{ShiftStart: cfg.Loading.ShiftStartHour})
	profileSvc := profiles.NewService(store.NewProfiles(db.DB))

	hub := websocket.NewHub()
	go hub.Run()

	sessions := store.NewLoadSessions(db.DB)
	manager := liveload.NewManager(orderSvc, productSvc, sessions, session.NewResolver(sessions),
		store.NewClientStates(db.DB), hub, liveload.Options{
			Policy: session.Policy{
				Debounce:    cfg.Loading.SaveDebounce,
				MaxAttempts: cfg.Loading.SaveMaxAttempts,
				RetryBase:   cfg.Loading.SaveRetryBase,
			},
			Clock: session.SystemClock,
		})

	deps := handlers.Deps{
		Orders:      orderSvc,
		Products:    productSvc,
		Profiles:    profileSvc,
		Loading:     manager,
		Hub:         hub,
		FrontendDir: cfg.FrontendDir,
	}

	var gemini *ai.GeminiClient
	if cfg.Gemini.APIKey != "" {
		gemini, err = ai.NewGeminiClient(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Printf("⚠️ Gemini: Failed to init client: %v", err)
		} else {
			deps.Manifests = gemini
			log.Printf("✅ Gemini: Manifest analysis enabled (%s)", cfg.Gemini.Model)
		}
	} else {
		log.Println("⚠️ Gemini: GEMINI_API_KEY not set, manifest analysis disabled")
	}

	// 5. Set up HTTP router
	router := handlers.NewRouter(deps)

	// Stale session cleanup (hourly)
	stopCleanup := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				n, err := manager.CleanupStale(ctx)
				cancel()
				if err != nil {
					log.Printf("❌ Session cleanup failed: %v", err)
				} else if n > 0 {
					log.Printf("🧹 Session cleanup removed %d sessions", n)
				}
			case <-stopCleanup:
				return
			}
		}
	}()

	// 6. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Channel to listen for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Loadboard (%s) starting on port %s\n", cfg.NodeEnv, cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	// Create context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	close(stopCleanup)

	// Write debounced progress that has not reached the database yet
	manager.Shutdown()

	if gemini != nil {
		gemini.Close()
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
