package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/mediaupload/internal/common"
	"github.com/dmitrijs2005/mediaupload/internal/logging"
	"github.com/dmitrijs2005/mediaupload/internal/server/models"
	"github.com/dmitrijs2005/mediaupload/internal/server/objectstore"
	"github.com/dmitrijs2005/mediaupload/internal/server/repositories/repomanager"
)

// SweepOptions controls reconciliation of multipart sessions with the
// content inventory.
type SweepOptions struct {
	// Interval between passes in Run. Zero disables the loop.
	Interval time.Duration
	// OrphanGrace is how old a session without a record must be before it is
	// aborted. It covers the window between opening a session and committing
	// its record.
	OrphanGrace time.Duration
	// StaleAfter is how old a session whose record is still pending must be
	// before it is considered abandoned.
	StaleAfter time.Duration
}

// SweepReport summarizes one pass.
type SweepReport struct {
	Scanned        int `json:"scanned" yaml:"scanned"`
	AbortedOrphans int `json:"aborted_orphans" yaml:"aborted_orphans"`
	AbortedStale   int `json:"aborted_stale" yaml:"aborted_stale"`
	Errors         int `json:"errors" yaml:"errors"`
}

// Sweeper aborts multipart sessions left behind by failed initiations and by
// clients that never completed. Record status is never changed.
type Sweeper struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	gateway     objectstore.Gateway
	opts        SweepOptions
	logger      logging.Logger
	now         func() time.Time

	wg sync.WaitGroup
}

func NewSweeper(db *sql.DB, m repomanager.RepositoryManager, gateway objectstore.Gateway, opts SweepOptions, logger logging.Logger) *Sweeper {
	return &Sweeper{
		db:          db,
		repomanager: m,
		gateway:     gateway,
		opts:        opts,
		logger:      logger.With("module", "sweeper"),
		now:         time.Now,
	}
}

// Run sweeps every Interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	if s.opts.Interval <= 0 {
		s.logger.Info(ctx, "sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.wg.Add(1)
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error(ctx, "sweep failed", "error", err)
			}
			s.wg.Done()
		case <-ctx.Done():
			return
		}
	}
}

// Stop waits for an in-flight pass to finish.
func (s *Sweeper) Stop() {
	s.wg.Wait()
}

// Sweep performs a single reconciliation pass over the sessions under the
// incoming prefix.
func (s *Sweeper) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	sessions, err := s.gateway.ListMultipart(ctx, common.IncomingPrefix)
	if err != nil {
		return report, fmt.Errorf("list sessions: %w", err)
	}

	repo := s.repomanager.Uploads(s.db)
	now := s.now()

	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		age := now.Sub(session.Initiated)
		if age < s.opts.OrphanGrace {
			continue
		}

		upload, err := repo.GetBySessionID(ctx, session.ID)
		switch {
		case errors.Is(err, common.ErrNotFound):
			s.logger.Warn(ctx, "aborting orphaned multipart session",
				"object_key", session.Key, "session_id", session.ID, "age", age.String())
			s.gateway.AbortMultipart(ctx, session.Key, session.ID)
			report.AbortedOrphans++
		case err != nil:
			s.logger.Error(ctx, "lookup session record failed", "session_id", session.ID, "error", err)
			report.Errors++
		case upload.Status == models.StatusPending && age >= s.opts.StaleAfter:
			s.logger.Warn(ctx, "aborting stale multipart session",
				"upload_id", upload.ContentID, "object_key", session.Key, "session_id", session.ID, "age", age.String())
			s.gateway.AbortMultipart(ctx, session.Key, session.ID)
			report.AbortedStale++
		}
	}

	s.logger.Info(ctx, "sweep finished",
		"scanned", report.Scanned,
		"aborted_orphans", report.AbortedOrphans,
		"aborted_stale", report.AbortedStale,
		"errors", report.Errors)
	return report, nil
}
