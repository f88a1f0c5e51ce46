package jobs

import (
	"log"
	"time"

	"github.com/trackhub-campus/trackhub-backend/internal/storage"
)

// CleanupJob periodically purges OTP rows whose expiry passed long ago.
// The OTP workflow itself never deletes tokens; retention is handled here,
// outside the verification path.
type CleanupJob struct {
	store     storage.Store
	interval  time.Duration
	retention time.Duration
	stop      chan struct{}
	running   bool
}

// NewCleanupJob creates a cleanup job. retention is how long expired rows are
// kept around before being purged.
func NewCleanupJob(store storage.Store, interval, retention time.Duration) *CleanupJob {
	return &CleanupJob{
		store:     store,
		interval:  interval,
		retention: retention,
		stop:      make(chan struct{}),
	}
}

// Start begins the scheduled purge loop.
func (j *CleanupJob) Start() {
	if j.running {
		log.Println("OTP cleanup job already running")
		return
	}
	j.running = true
	log.Println("Starting OTP cleanup job...")

	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.purge()
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop halts the purge loop.
func (j *CleanupJob) Stop() {
	if !j.running {
		return
	}
	j.running = false
	close(j.stop)
	log.Println("Stopping OTP cleanup job...")
}

func (j *CleanupJob) purge() {
	cutoff := time.Now().Add(-j.retention)
	deleted, err := j.store.DeleteExpiredOTPs(cutoff)
	if err != nil {
		log.Printf("Error purging expired OTPs: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Purged %d expired OTP(s)", deleted)
	}
}
