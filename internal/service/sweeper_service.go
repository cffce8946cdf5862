package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/model"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/repository"
)

// SweeperService reconciles shifts whose window has elapsed: the shift is
// completed, its loom stopped, and the write-once summary snapshot taken.
// Safe to call redundantly; a sweep with nothing expired is a no-op.
type SweeperService interface {
	// Sweep closes every expired shift and returns how many this call closed.
	Sweep(ctx context.Context) (int, error)
	// SweepOne reconciles a single shift, reporting whether it was expired
	// (and therefore now closed), regardless of which caller closed it.
	SweepOne(ctx context.Context, shift *model.Shift) (bool, error)
	// CloseShift finalizes a shift at endedAt. Every path that ends a shift
	// (manual end, expiry, admin clearing) funnels through here so the loom
	// stop and summary side effects cannot diverge.
	CloseShift(ctx context.Context, shift *model.Shift, endedAt time.Time) error
	// PurgeOldReadings deletes readings older than the retention cutoff.
	PurgeOldReadings(ctx context.Context) (int64, error)
}

type sweeperService struct {
	repo      *repository.Repository
	clock     Clock
	loc       *time.Location
	retention time.Duration
	logger    *zap.Logger
}

// NewSweeperService creates the SweeperService.
func NewSweeperService(repo *repository.Repository, clock Clock, loc *time.Location, retention time.Duration, logger *zap.Logger) SweeperService {
	return &sweeperService{repo: repo, clock: clock, loc: loc, retention: retention, logger: logger}
}

func (s *sweeperService) Sweep(ctx context.Context) (int, error) {
	now := s.clock.Now()

	expired, err := s.repo.Shift.ListExpired(ctx, now)
	if err != nil {
		s.logger.Error("list expired shifts failed", zap.Error(err))
		return 0, err
	}

	closed := 0
	for i := range expired {
		shift := &expired[i]
		won, err := s.close(ctx, shift, shift.EndTime)
		if err != nil {
			s.logger.Error("close expired shift failed",
				zap.String("shift_id", shift.ShiftID), zap.Error(err))
			return closed, err
		}
		if won {
			closed++
		}
	}

	if closed > 0 {
		s.logger.Info("expiry sweep closed shifts", zap.Int("count", closed))
	}
	return closed, nil
}

func (s *sweeperService) SweepOne(ctx context.Context, shift *model.Shift) (bool, error) {
	if shift.Completed {
		return true, nil
	}
	if !shift.Expired(s.clock.Now()) {
		return false, nil
	}
	// nominal end, not now: reported duration matches the scheduled window
	// even when the sweep runs late
	if _, err := s.close(ctx, shift, shift.EndTime); err != nil {
		return false, err
	}
	return true, nil
}

func (s *sweeperService) CloseShift(ctx context.Context, shift *model.Shift, endedAt time.Time) error {
	_, err := s.close(ctx, shift, endedAt)
	return err
}

// close performs the conditional completion. The returned bool is whether
// this call won the close; a concurrent manual end or sweep may already
// have finished the shift, in which case everything below is skipped and
// the final state is identical either way.
func (s *sweeperService) close(ctx context.Context, shift *model.Shift, endedAt time.Time) (bool, error) {
	won, err := s.repo.Shift.CompleteIfOpen(ctx, shift.ShiftID, endedAt)
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}

	shift.Completed = true
	shift.ActualEndTime = &endedAt

	// stop the loom if this shift left it running; only the close winner
	// does this, so a loom restarted under a later shift is untouched
	stopped, err := s.repo.Loom.SetStopped(ctx, shift.LoomID)
	if err != nil {
		return true, err
	}
	if stopped {
		s.logger.Info("loom stopped on shift close",
			zap.String("loom_id", shift.LoomID),
			zap.String("shift_id", shift.ShiftID),
		)
	}

	if err := s.snapshotSummary(ctx, shift); err != nil {
		return true, err
	}

	return true, nil
}

// snapshotSummary records the shift's totals. Totals follow cumulative
// reading semantics: the last reading inside the shift window, not a sum of
// samples. Aggregation keys off the shift window, not the loom session.
func (s *sweeperService) snapshotSummary(ctx context.Context, shift *model.Shift) error {
	var totalProduction, totalEnergy float64

	last, err := s.repo.Reading.LastInRange(ctx, shift.LoomID, shift.StartTime, shift.EndTime)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if last != nil {
		totalProduction = last.Production
		totalEnergy = last.Energy
	}

	return s.repo.Summary.CreateIfAbsent(ctx, &model.ShiftSummary{
		ShiftID:         shift.ShiftID,
		LoomID:          shift.LoomID,
		WeaverID:        shift.WeaverID,
		ShiftType:       shift.ShiftType,
		TotalProduction: totalProduction,
		TotalEnergy:     totalEnergy,
		StartTime:       shift.StartTime,
		EndTime:         shift.EndTime,
	})
}

func (s *sweeperService) PurgeOldReadings(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	cutoff := s.clock.Now().Add(-s.retention)
	purged, err := s.repo.Reading.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("purge old readings failed", zap.Error(err))
		return 0, err
	}
	if purged > 0 {
		s.logger.Info("purged old readings", zap.Int64("count", purged))
	}
	return purged, nil
}
