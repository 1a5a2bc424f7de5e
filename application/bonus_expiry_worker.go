package application

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// BonusExpirer expires pending bonuses whose expiry has passed
type BonusExpirer interface {
	ExpireBonuses(ctx context.Context, now time.Time) (int, error)
}

// BonusExpiryWorker periodically expires overdue pending bonuses
type BonusExpiryWorker struct {
	expirer  BonusExpirer
	interval time.Duration
	now      func() time.Time
}

// NewBonusExpiryWorker creates a new bonus expiry worker
func NewBonusExpiryWorker(expirer BonusExpirer, interval time.Duration) *BonusExpiryWorker {
	return &BonusExpiryWorker{
		expirer:  expirer,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start begins the worker and returns a function that stops it
func (w *BonusExpiryWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.WithField("interval", w.interval).Info("Bonus expiry worker started")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Bonus expiry worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Bonus expiry worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				w.RunOnce(ctx)
			}
		}
	}()

	return func() {
		close(stopChan)
		<-done
	}
}

// RunOnce expires everything that is currently due
func (w *BonusExpiryWorker) RunOnce(ctx context.Context) int {
	expired, err := w.expirer.ExpireBonuses(ctx, w.now())
	if err != nil {
		log.WithFields(log.Fields{
			"expired": expired,
			"error":   err,
		}).Error("Error expiring bonuses")
		return expired
	}

	if expired > 0 {
		log.WithField("expired", expired).Info("Completed bonus expiry run")
	}
	return expired
}
