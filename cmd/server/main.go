/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the league operations server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Wire the schedule service and payroll engine
  4. Configure HTTP router and start the generation scheduler
  5. Start server with graceful shutdown

CONFIGURATION:
  Flags take precedence; each falls back to an environment variable
  (loaded from .env via godotenv when the file exists):

  -port      PORT                HTTP server port (default: 8080)
  -db        DB_PATH             SQLite database path (default: league.db)
                                 Use ":memory:" for in-memory database
  -payday    PAYDAY_WEEKDAY      Weekday stubs are dated on (default: friday)
  -private-rate PRIVATE_EVENT_RATE  Flat private event gross (default: 150)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the generation scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/league.db"

  # Pay out on Thursdays
  ./server -payday=thursday

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
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

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/quizworks/league-engine/api"
	"github.com/quizworks/league-engine/calendar"
	"github.com/quizworks/league-engine/payroll"
	"github.com/quizworks/league-engine/schedule"
	"github.com/quizworks/league-engine/store/sqlite"
)

func main() {
	// .env is optional; flags and real env vars win over it.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Flags with env fallbacks
	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "league.db"), "SQLite database path")
	payday := flag.String("payday", envStr("PAYDAY_WEEKDAY", "friday"), "weekday pay stubs are dated on")
	privateRate := flag.String("private-rate", envStr("PRIVATE_EVENT_RATE", "150"), "flat gross for a private event")
	flag.Parse()

	cfg := payroll.DefaultConfig()
	day, err := calendar.ParseDay(*payday)
	if err != nil {
		log.Fatalf("Invalid payday %q: %v", *payday, err)
	}
	cfg.Payday = day
	rate, err := decimal.NewFromString(*privateRate)
	if err != nil {
		log.Fatalf("Invalid private event rate %q: %v", *privateRate, err)
	}
	cfg.PrivateEventRate = rate

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire engines
	sched := schedule.NewService(store)
	pay := payroll.NewEngine(cfg, store, store)
	handler := api.NewHandler(store, sched, pay)

	// Create router
	router := api.NewRouter(handler)

	// Nightly occurrence generation
	generator := api.NewGenerationScheduler(store, sched)
	if err := generator.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	generator.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return fallback
	}
	return n
}
