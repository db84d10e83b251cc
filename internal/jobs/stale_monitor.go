package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"prediction-escrow/internal/ledger"
	"prediction-escrow/internal/models"
	"prediction-escrow/internal/repository"
)

const staleScanLimit = 100

// StaleMonitor reports active competitions whose deadline has passed. Only
// the creator can resolve a competition, so the monitor never acts on them.
type StaleMonitor struct {
	repo  *repository.Repository
	clock ledger.Clock
	log   *zap.Logger
}

// NewStaleMonitor creates the monitor job
func NewStaleMonitor(repo *repository.Repository, clock ledger.Clock, log *zap.Logger) *StaleMonitor {
	if clock == nil {
		clock = ledger.SystemClock
	}
	return &StaleMonitor{repo: repo, clock: clock, log: log}
}

// Scan logs every stale competition and returns them.
func (m *StaleMonitor) Scan(ctx context.Context) ([]*models.Competition, error) {
	now := m.clock.Now().Unix()
	stale, err := m.repo.ListStaleCompetitions(ctx, now, staleScanLimit)
	if err != nil {
		m.log.Error("stale scan failed", zap.Error(err))
		return nil, err
	}

	for _, c := range stale {
		m.log.Warn("competition past deadline awaiting resolution",
			zap.String("competition_id", c.CompetitionID),
			zap.String("creator", c.Creator),
			zap.Int64("participants", c.Participants),
			zap.Duration("overdue", time.Duration(now-c.EndTime)*time.Second))
	}
	if len(stale) > 0 {
		m.log.Info("stale scan finished", zap.Int("stale", len(stale)))
	}
	return stale, nil
}

// Run is the cron entry point.
func (m *StaleMonitor) Run(ctx context.Context) {
	_, _ = m.Scan(ctx)
}
