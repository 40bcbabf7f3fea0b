// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/marks/internal/logger"
)

const (
	// DefaultSweepInterval is how often bookmarked pages are re-checked
	DefaultSweepInterval = time.Minute
)

// Revalidator probes stored bookmarks and removes the ones whose page is gone.
type Revalidator interface {
	RevalidateAll(ctx context.Context) (int, error)
}

// Sweeper periodically revalidates every stored bookmark.
type Sweeper struct {
	bookmarks Revalidator
	logger    logger.Logger
	interval  time.Duration
	stopCh    chan struct{}
}

// NewSweeper creates a new dead-link sweeper
func NewSweeper(bookmarks Revalidator, log logger.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &Sweeper{
		bookmarks: bookmarks,
		logger:    log,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic sweep process
func (s *Sweeper) Start(ctx context.Context) error {
	// Run immediately on start
	if err := s.Sweep(ctx); err != nil {
		s.logger.Warn("initial bookmark sweep failed",
			logger.Error(err))
	}

	// Start periodic sweeps
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Sweep(ctx); err != nil {
					s.logger.Error("bookmark sweep failed",
						logger.Error(err))
				}
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper
func (s *Sweeper) Stop() {
	close(s.stopCh)
}

// Sweep runs one revalidation pass over every stored bookmark
func (s *Sweeper) Sweep(ctx context.Context) error {
	s.logger.Debug("running bookmark sweep")

	removed, err := s.bookmarks.RevalidateAll(ctx)
	if err != nil {
		return err
	}

	if removed > 0 {
		s.logger.Info("bookmark sweep completed",
			logger.Int("bookmarks_removed", removed))
	} else {
		s.logger.Debug("no dead bookmarks to remove")
	}

	return nil
}
