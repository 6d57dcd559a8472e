/*
scheduler.go - Automated billing cycle scheduler

PURPOSE:
  Periodically attempts to run the monthly billing cycle so the club
  doesn't depend on someone remembering to POST /api/billing/run.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Calls RunBillingCycle as a configured system identity
  - "Not due yet" and "no members yet" are expected outcomes and logged
    at most as skips; anything else is a real error
  - Persists the snapshot after a successful run

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Identity:      Caller used for the run (must pass the gate; the owner
                   or a staff identity)

USAGE:
  scheduler := NewBillingScheduler(handler, owner)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunBilling endpoint (manual trigger)
  - club/club.go: RunBillingCycle
*/
package api

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/warp/club-engine/club"
)

// BillingScheduler triggers billing cycle runs on a timer.
type BillingScheduler struct {
	Handler       *Handler
	Identity      club.Identity
	CheckInterval time.Duration

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewBillingScheduler creates a scheduler running as the given identity.
func NewBillingScheduler(h *Handler, identity club.Identity) *BillingScheduler {
	return &BillingScheduler{
		Handler:       h,
		Identity:      identity,
		CheckInterval: 1 * time.Hour,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (bs *BillingScheduler) Start() {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.ticker = time.NewTicker(bs.CheckInterval)
	bs.wg.Add(1)

	go bs.run(bs.ticker.C)

	log.Printf("[Scheduler] Started with check interval: %v", bs.CheckInterval)
}

// Stop stops the scheduler. Safe to call repeatedly and before Start.
func (bs *BillingScheduler) Stop() {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.ticker == nil {
		return
	}
	bs.ticker.Stop()
	bs.ticker = nil
	close(bs.stop)
	bs.wg.Wait()
	log.Println("[Scheduler] Stopped")
}

func (bs *BillingScheduler) run(tick <-chan time.Time) {
	defer bs.wg.Done()

	// Run immediately on start
	bs.checkAndRun()

	for {
		select {
		case <-tick:
			bs.checkAndRun()
		case <-bs.stop:
			return
		}
	}
}

func (bs *BillingScheduler) checkAndRun() {
	c := bs.Handler.Club()

	_, err := c.RunBillingCycle(bs.Identity)
	switch {
	case err == nil:
		log.Println("[Scheduler] Billing cycle emitted")
		if err := bs.Handler.Store.Save(context.Background(), c.Snapshot()); err != nil {
			log.Printf("[Scheduler] Failed to persist after billing run: %v", err)
		}
	case errors.Is(err, club.ErrBillingNotDue), errors.Is(err, club.ErrNoBillingYet):
		// Expected between windows; nothing to do.
	default:
		log.Printf("[Scheduler] Billing run failed: %v", err)
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (bs *BillingScheduler) RunNow() {
	bs.checkAndRun()
}
