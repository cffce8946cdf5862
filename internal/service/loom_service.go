package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/dto"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/model"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/repository"
)

// ── loom module errors ──

var (
	ErrLoomNotFound       = errors.New("loom not found")
	ErrLoomExists         = errors.New("loom ID already exists")
	ErrNoActiveShift      = errors.New("no shift assigned to you on this loom today")
	ErrOutsideShiftWindow = errors.New("outside shift window")
	ErrLoomAlreadyRunning = errors.New("loom is already running")
	ErrNotLoomWeaver      = errors.New("caller is not the loom's assigned weaver")
)

// LoomService owns the loom run/stop state machine plus loom administration.
//
// Each run-state transition is a conditional update against the store, so
// two racing starts (or a stop racing the sweeper) resolve to exactly one
// winner. Operations on different looms never contend.
type LoomService interface {
	Create(ctx context.Context, req *dto.CreateLoomRequest) (*dto.LoomResponse, error)
	List(ctx context.Context) ([]dto.LoomDashboardItem, error)
	Delete(ctx context.Context, loomID string) error
	Weavers(ctx context.Context) ([]dto.WeaverBrief, error)

	// Start moves the loom to running on behalf of the weaver's shift that
	// is active right now. The shift window is half-open: starting at
	// exactly the window's start succeeds, at its end fails.
	Start(ctx context.Context, loomID, weaverID string) (*dto.LoomResponse, error)
	// Stop moves the loom to stopped. Stopping an already-stopped loom is
	// idempotent success, not an error.
	Stop(ctx context.Context, loomID, callerID, callerRole string) (*dto.LoomResponse, error)
	// ForceUnassign clears the loom's future schedule and stops it. Shifts
	// that already ran stay untouched; they complete normally or expire.
	ForceUnassign(ctx context.Context, loomID string) (*dto.UnassignResponse, error)
}

type loomService struct {
	repo   *repository.Repository
	clock  Clock
	loc    *time.Location
	logger *zap.Logger
}

// NewLoomService creates the LoomService.
func NewLoomService(repo *repository.Repository, clock Clock, loc *time.Location, logger *zap.Logger) LoomService {
	return &loomService{repo: repo, clock: clock, loc: loc, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *loomService) Create(ctx context.Context, req *dto.CreateLoomRequest) (*dto.LoomResponse, error) {
	if _, err := s.repo.Loom.GetByHumanID(ctx, req.HumanLoomID); err == nil {
		return nil, ErrLoomExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	loom := &model.Loom{
		HumanLoomID: req.HumanLoomID,
		RunStatus:   model.RunStatusStopped,
	}
	if err := s.repo.Loom.Create(ctx, loom); err != nil {
		s.logger.Error("create loom failed", zap.String("loom_id", req.HumanLoomID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("loom created", zap.String("loom", loom.HumanLoomID))
	return s.toLoomResponse(loom), nil
}

// ────────────────────── List ──────────────────────

func (s *loomService) List(ctx context.Context) ([]dto.LoomDashboardItem, error) {
	looms, err := s.repo.Loom.List(ctx)
	if err != nil {
		s.logger.Error("list looms failed", zap.Error(err))
		return nil, err
	}

	items := make([]dto.LoomDashboardItem, 0, len(looms))
	for i := range looms {
		loom := &looms[i]
		item := dto.LoomDashboardItem{LoomResponse: *s.toLoomResponse(loom)}

		latest, err := s.repo.Reading.LatestForLoom(ctx, loom.LoomID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if latest != nil {
			item.LatestProduction = round3(latest.Production)
			item.LatestEnergy = round3(latest.Energy)
			at := latest.Timestamp.In(s.loc).Format(time.RFC3339)
			item.LastReadingAt = &at
		}

		items = append(items, item)
	}

	return items, nil
}

// ────────────────────── Delete ──────────────────────

func (s *loomService) Delete(ctx context.Context, loomID string) error {
	if err := s.repo.Loom.Delete(ctx, loomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLoomNotFound
		}
		s.logger.Error("delete loom failed", zap.String("loom_id", loomID), zap.Error(err))
		return err
	}
	s.logger.Info("loom deleted", zap.String("loom_id", loomID))
	return nil
}

// ────────────────────── Weavers ──────────────────────

func (s *loomService) Weavers(ctx context.Context) ([]dto.WeaverBrief, error) {
	weavers, err := s.repo.User.ListWeavers(ctx)
	if err != nil {
		s.logger.Error("list weavers failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.WeaverBrief, 0, len(weavers))
	for _, w := range weavers {
		result = append(result, dto.WeaverBrief{ID: w.UserID, Name: w.Name, Email: w.Email})
	}
	return result, nil
}

// ────────────────────── Start ──────────────────────

func (s *loomService) Start(ctx context.Context, loomID, weaverID string) (*dto.LoomResponse, error) {
	loom, err := s.repo.Loom.GetByID(ctx, loomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoomNotFound
		}
		return nil, err
	}

	now := s.clock.Now()
	shift, err := s.resolveShift(ctx, weaverID, loom.LoomID, now)
	if err != nil {
		return nil, err
	}

	if !shift.WindowContains(now) {
		return nil, fmt.Errorf("%w: your %s shift runs %s to %s",
			ErrOutsideShiftWindow,
			shift.ShiftType,
			shift.StartTime.In(s.loc).Format("15:04"),
			shift.EndTime.In(s.loc).Format("15:04"),
		)
	}

	won, err := s.repo.Loom.SetRunning(ctx, loom.LoomID, weaverID, now)
	if err != nil {
		s.logger.Error("start loom failed", zap.String("loom_id", loomID), zap.Error(err))
		return nil, err
	}
	if !won {
		return nil, ErrLoomAlreadyRunning
	}

	// first start of this shift keeps its marker across later restarts
	if err := s.repo.Shift.SetActualStartIfUnset(ctx, shift.ShiftID, now); err != nil {
		s.logger.Error("record shift start failed", zap.String("shift_id", shift.ShiftID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("loom started",
		zap.String("loom", loom.HumanLoomID),
		zap.String("weaver_id", weaverID),
		zap.String("shift_id", shift.ShiftID),
	)

	loom.RunStatus = model.RunStatusRunning
	loom.RunningSince = &now
	loom.CurrentWeaverID = &weaverID
	return s.toLoomResponse(loom), nil
}

// resolveShift finds the weaver's open shift on this loom whose window
// contains now. Back-to-back slots can both be open at once (the earlier
// one until it is swept), so every open shift of the day is considered.
// A Night shift past midnight is scheduled on the previous calendar date,
// so yesterday is checked as well.
func (s *loomService) resolveShift(ctx context.Context, weaverID, loomID string, now time.Time) (*model.Shift, error) {
	today := DateOnly(now, s.loc)
	yesterday := today.AddDate(0, 0, -1)

	var candidates []model.Shift
	for _, date := range []time.Time{today, yesterday} {
		shifts, err := s.repo.Shift.ListOpenForWeaverOnLoom(ctx, weaverID, loomID, date)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, shifts...)
	}
	if len(candidates) == 0 {
		return nil, ErrNoActiveShift
	}

	// prefer the shift whose window contains now; otherwise report the
	// nearest window for timing guidance
	var nearest *model.Shift
	var nearestGap time.Duration
	for i := range candidates {
		sh := &candidates[i]
		if sh.WindowContains(now) {
			return sh, nil
		}
		gap := sh.StartTime.Sub(now)
		if gap < 0 {
			gap = now.Sub(sh.EndTime)
		}
		if nearest == nil || gap < nearestGap {
			nearest = sh
			nearestGap = gap
		}
	}
	return nearest, nil
}

// ────────────────────── Stop ──────────────────────

func (s *loomService) Stop(ctx context.Context, loomID, callerID, callerRole string) (*dto.LoomResponse, error) {
	loom, err := s.repo.Loom.GetByID(ctx, loomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoomNotFound
		}
		return nil, err
	}

	if callerRole != model.RoleAdmin &&
		loom.CurrentWeaverID != nil && *loom.CurrentWeaverID != callerID {
		return nil, ErrNotLoomWeaver
	}

	stopped, err := s.repo.Loom.SetStopped(ctx, loom.LoomID)
	if err != nil {
		s.logger.Error("stop loom failed", zap.String("loom_id", loomID), zap.Error(err))
		return nil, err
	}
	if stopped {
		s.logger.Info("loom stopped",
			zap.String("loom", loom.HumanLoomID),
			zap.String("caller_id", callerID),
		)
	}
	// losing the conditional update means a sweep or earlier stop already
	// converged the loom; report the stopped state either way

	loom.RunStatus = model.RunStatusStopped
	loom.RunningSince = nil
	return s.toLoomResponse(loom), nil
}

// ────────────────────── ForceUnassign ──────────────────────

func (s *loomService) ForceUnassign(ctx context.Context, loomID string) (*dto.UnassignResponse, error) {
	loom, err := s.repo.Loom.GetByID(ctx, loomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoomNotFound
		}
		return nil, err
	}

	today := DateOnly(s.clock.Now(), s.loc)
	deleted, err := s.repo.Shift.DeleteFutureUnstarted(ctx, loom.LoomID, today)
	if err != nil {
		s.logger.Error("clear future shifts failed", zap.String("loom_id", loomID), zap.Error(err))
		return nil, err
	}

	stopped, err := s.repo.Loom.SetStopped(ctx, loom.LoomID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Loom.ClearWeaver(ctx, loom.LoomID); err != nil {
		return nil, err
	}

	s.logger.Info("loom unassigned",
		zap.String("loom", loom.HumanLoomID),
		zap.Int64("deleted_shifts", deleted),
		zap.Bool("stopped", stopped),
	)

	return &dto.UnassignResponse{DeletedShifts: deleted, LoomStopped: stopped}, nil
}

// ── helpers ──

func (s *loomService) toLoomResponse(loom *model.Loom) *dto.LoomResponse {
	resp := &dto.LoomResponse{
		ID:          loom.LoomID,
		HumanLoomID: loom.HumanLoomID,
		RunStatus:   loom.RunStatus,
	}
	if loom.RunningSince != nil {
		since := loom.RunningSince.In(s.loc).Format(time.RFC3339)
		resp.RunningSince = &since
	}
	if loom.CurrentWeaverID != nil {
		resp.WeaverID = *loom.CurrentWeaverID
	}
	if loom.CurrentWeaver != nil {
		resp.WeaverName = loom.CurrentWeaver.Name
	}
	return resp
}
