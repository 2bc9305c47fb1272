package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/recallhq/recall/internal/services/indexer"
)

// Service runs periodic full re-index sweeps of the notes directory on a cron
// schedule. The sweep picks up changes the live watcher missed (offline edits,
// watcher restarts).
type Service struct {
	notes      *indexer.NotesService
	dir        string
	extensions []string
	cron       *cron.Cron
	logger     arbor.ILogger
	mu         sync.Mutex
	sweeping   bool
	running    bool
	lastRun    *time.Time
}

// NewService creates a re-index scheduler
func NewService(notes *indexer.NotesService, dir string, extensions []string, logger arbor.ILogger) *Service {
	return &Service{
		notes:      notes,
		dir:        dir,
		extensions: extensions,
		cron:       cron.New(),
		logger:     logger,
	}
}

// Start begins the scheduler with the given cron expression
func (s *Service) Start(ctx context.Context, cronExpr string) error {
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if cronExpr == "" {
		return fmt.Errorf("cron expression is required")
	}

	_, err := s.cron.AddFunc(cronExpr, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info().
		Str("cron_expr", cronExpr).
		Str("dir", s.dir).
		Msg("Re-index scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for an in-flight sweep to finish
func (s *Service) Stop() {
	if !s.running {
		return
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.running = false
	s.logger.Info().Msg("Re-index scheduler stopped")
}

// runSweep executes one full re-index pass. Overlapping runs are skipped.
func (s *Service) runSweep(ctx context.Context) {
	s.mu.Lock()
	if s.sweeping {
		s.mu.Unlock()
		s.logger.Warn().Msg("Previous re-index sweep still running, skipping")
		return
	}
	s.sweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sweeping = false
		now := time.Now()
		s.lastRun = &now
		s.mu.Unlock()
	}()

	started := time.Now()
	chunks, err := s.notes.IndexDirectory(ctx, s.dir, s.extensions)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Re-index sweep failed")
		return
	}

	s.logger.Info().
		Int("chunks", chunks).
		Dur("elapsed", time.Since(started)).
		Msg("Re-index sweep complete")
}
