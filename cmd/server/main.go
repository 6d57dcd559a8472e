/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the club membership and billing server.
  Handles configuration, dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Restore the club from the stored snapshot, or create a new one
  4. Configure HTTP router and billing scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: club.db)
           Use ":memory:" for an in-memory database
  -owner   Owner identity for a brand-new club (default: "owner")
           Ignored when a snapshot already exists

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the billing scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close the database
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/club.db" -owner="alice"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Persistence
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

	"github.com/warp/club-engine/api"
	"github.com/warp/club-engine/club"
	"github.com/warp/club-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "club.db", "SQLite database path")
	owner := flag.String("owner", "owner", "Owner identity for a new club")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Restore the club, or create a fresh one
	clock := club.SystemClock{}
	snap, err := store.Load(context.Background())
	if err != nil {
		log.Fatalf("Failed to load club state: %v", err)
	}

	var c *club.Club
	if snap != nil {
		c = club.Restore(*snap, clock)
		log.Printf("Restored club state: %d members, %d payments", len(snap.Members), len(snap.Payments))
	} else {
		c = club.New(club.Identity(*owner), clock)
		if err := store.Save(context.Background(), c.Snapshot()); err != nil {
			log.Fatalf("Failed to save initial state: %v", err)
		}
		log.Printf("Created new club owned by %q", *owner)
	}

	// Wire handler, scheduler, and router
	handler := api.NewHandler(c, store, clock)

	scheduler := api.NewBillingScheduler(handler, c.Snapshot().Access.Owner)
	scheduler.Start()
	defer scheduler.Stop()

	router := api.NewRouter(handler)

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
