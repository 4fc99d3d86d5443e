package worker

import (
	"log"
	"time"

	"github.com/garden-market/internal/service"
)

// ExpiryWorker periodically sweeps listings past their posting age and marks
// them expired. The sweep also runs on every feed render; this loop just
// keeps quiet periods from accumulating stale rows.
type ExpiryWorker struct {
	listings *service.ListingService
	interval time.Duration
	stopChan chan struct{}
}

// NewExpiryWorker creates a new expiry sweep worker
func NewExpiryWorker(listings *service.ListingService, interval time.Duration) *ExpiryWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ExpiryWorker{
		listings: listings,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the sweep loop
func (w *ExpiryWorker) Start() {
	log.Printf("Expiry worker started with interval: %v", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.listings.SweepAll(); err != nil {
				log.Printf("Expiry worker: sweep failed: %v", err)
			}
		case <-w.stopChan:
			log.Println("Expiry worker stopped")
			return
		}
	}
}

// Stop stops the sweep loop
func (w *ExpiryWorker) Stop() {
	close(w.stopChan)
}
