package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/dto"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/model"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/repository"
)

// ── shift module errors ──

var (
	ErrShiftNotFound       = errors.New("shift not found")
	ErrWeaverNotFound      = errors.New("weaver not found")
	ErrInvalidShiftType    = errors.New("shift type must be Morning, Evening or Night")
	ErrInvalidDate         = errors.New("scheduled date must be YYYY-MM-DD")
	ErrPastDate            = errors.New("scheduled date is in the past")
	ErrSlotConflict        = errors.New("an open shift already occupies this slot")
	ErrShiftAlreadyStarted = errors.New("shift has already started and cannot be deleted")
	ErrNotShiftWeaver      = errors.New("caller is not the shift's assigned weaver")
)

// upcomingVisibility is how far before its window a shift shows up in the
// weaver's active list.
const upcomingVisibility = 30 * time.Minute

// ShiftService owns shift records: assignment, lookups, attendance, and
// manual completion.
type ShiftService interface {
	Assign(ctx context.Context, req *dto.AssignShiftRequest) (*dto.ShiftResponse, error)
	ActiveForWeaver(ctx context.Context, weaverID string) ([]dto.ShiftResponse, error)
	UpcomingForWeaver(ctx context.Context, weaverID string) ([]dto.ShiftResponse, error)
	ListForLoom(ctx context.Context, loomID string) ([]dto.ShiftResponse, error)
	Delete(ctx context.Context, shiftID string) error
	MarkAttendance(ctx context.Context, shiftID, callerID string) (*dto.ShiftResponse, error)
	EndManually(ctx context.Context, shiftID, callerID string) (*dto.ShiftResponse, error)
}

type shiftService struct {
	repo    *repository.Repository
	sweeper SweeperService
	clock   Clock
	loc     *time.Location
	logger  *zap.Logger
}

// NewShiftService creates the ShiftService.
func NewShiftService(repo *repository.Repository, sweeper SweeperService, clock Clock, loc *time.Location, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, sweeper: sweeper, clock: clock, loc: loc, logger: logger}
}

// ────────────────────── Assign ──────────────────────

func (s *shiftService) Assign(ctx context.Context, req *dto.AssignShiftRequest) (*dto.ShiftResponse, error) {
	if !model.ValidShiftType(req.ShiftType) {
		return nil, ErrInvalidShiftType
	}

	date, err := time.ParseInLocation("2006-01-02", req.ScheduledDate, s.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}

	today := DateOnly(s.clock.Now(), s.loc)
	if date.Before(today) {
		return nil, ErrPastDate
	}

	loom, err := s.repo.Loom.GetByID(ctx, req.LoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoomNotFound
		}
		s.logger.Error("load loom failed", zap.String("loom_id", req.LoomID), zap.Error(err))
		return nil, err
	}

	weaver, err := s.repo.User.GetByID(ctx, req.WeaverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWeaverNotFound
		}
		s.logger.Error("load weaver failed", zap.String("weaver_id", req.WeaverID), zap.Error(err))
		return nil, err
	}
	if weaver.Role != model.RoleWeaver {
		return nil, ErrWeaverNotFound
	}

	if _, err := s.repo.Shift.FindOpenSlot(ctx, loom.LoomID, date, req.ShiftType); err == nil {
		return nil, ErrSlotConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	start, end := ShiftWindow(req.ShiftType, date, s.loc)

	shift := &model.Shift{
		LoomID:        loom.LoomID,
		WeaverID:      weaver.UserID,
		ShiftType:     req.ShiftType,
		ScheduledDate: date,
		StartTime:     start,
		EndTime:       end,
	}
	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		// the partial unique index backstops the conflict check against a
		// racing assignment
		s.logger.Warn("create shift failed",
			zap.String("loom_id", loom.LoomID),
			zap.String("shift_type", req.ShiftType),
			zap.Error(err),
		)
		return nil, ErrSlotConflict
	}

	s.logger.Info("shift assigned",
		zap.String("shift_id", shift.ShiftID),
		zap.String("loom", loom.HumanLoomID),
		zap.String("weaver", weaver.Name),
		zap.String("shift_type", req.ShiftType),
		zap.String("date", req.ScheduledDate),
	)

	shift.Loom = loom
	shift.Weaver = weaver
	return s.toShiftResponse(shift), nil
}

// ────────────────────── ActiveForWeaver ──────────────────────

// ActiveForWeaver returns the weaver's open shifts for today. Each shift is
// first reconciled through the sweeper so an expired one never reaches the
// dashboard, and shifts starting more than 30 minutes from now are held back.
func (s *shiftService) ActiveForWeaver(ctx context.Context, weaverID string) ([]dto.ShiftResponse, error) {
	now := s.clock.Now()
	today := DateOnly(now, s.loc)

	shifts, err := s.repo.Shift.ListOpenForWeaverOnDate(ctx, weaverID, today)
	if err != nil {
		s.logger.Error("list active shifts failed", zap.String("weaver_id", weaverID), zap.Error(err))
		return nil, err
	}

	active := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		shift := &shifts[i]

		expired, err := s.sweeper.SweepOne(ctx, shift)
		if err != nil {
			return nil, err
		}
		if expired {
			continue
		}
		if shift.StartTime.After(now.Add(upcomingVisibility)) {
			continue
		}
		active = append(active, *s.toShiftResponse(shift))
	}

	return active, nil
}

// ────────────────────── UpcomingForWeaver ──────────────────────

func (s *shiftService) UpcomingForWeaver(ctx context.Context, weaverID string) ([]dto.ShiftResponse, error) {
	today := DateOnly(s.clock.Now(), s.loc)

	shifts, err := s.repo.Shift.ListUpcomingForWeaver(ctx, weaverID, today)
	if err != nil {
		s.logger.Error("list upcoming shifts failed", zap.String("weaver_id", weaverID), zap.Error(err))
		return nil, err
	}

	return s.toShiftResponses(shifts), nil
}

// ────────────────────── ListForLoom ──────────────────────

func (s *shiftService) ListForLoom(ctx context.Context, loomID string) ([]dto.ShiftResponse, error) {
	if _, err := s.repo.Loom.GetByID(ctx, loomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoomNotFound
		}
		return nil, err
	}

	today := DateOnly(s.clock.Now(), s.loc)
	shifts, err := s.repo.Shift.ListOpenForLoom(ctx, loomID, today)
	if err != nil {
		s.logger.Error("list loom shifts failed", zap.String("loom_id", loomID), zap.Error(err))
		return nil, err
	}

	return s.toShiftResponses(shifts), nil
}

// ────────────────────── Delete ──────────────────────

func (s *shiftService) Delete(ctx context.Context, shiftID string) error {
	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		return err
	}

	if shift.Started() {
		return ErrShiftAlreadyStarted
	}

	if err := s.repo.Shift.Delete(ctx, shiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		s.logger.Error("delete shift failed", zap.String("shift_id", shiftID), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── MarkAttendance ──────────────────────

func (s *shiftService) MarkAttendance(ctx context.Context, shiftID, callerID string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	if shift.WeaverID != callerID {
		return nil, ErrNotShiftWeaver
	}

	if err := s.repo.Shift.MarkAttendance(ctx, shiftID); err != nil {
		s.logger.Error("mark attendance failed", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}

	shift.AttendanceMarked = true
	return s.toShiftResponse(shift), nil
}

// ────────────────────── EndManually ──────────────────────

func (s *shiftService) EndManually(ctx context.Context, shiftID, callerID string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	if shift.WeaverID != callerID {
		return nil, ErrNotShiftWeaver
	}

	now := s.clock.Now()
	if err := s.sweeper.CloseShift(ctx, shift, now); err != nil {
		s.logger.Error("end shift failed", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("shift ended manually",
		zap.String("shift_id", shiftID),
		zap.String("weaver_id", callerID),
	)

	shift.Completed = true
	return s.toShiftResponse(shift), nil
}

// ── helpers ──

func (s *shiftService) toShiftResponses(shifts []model.Shift) []dto.ShiftResponse {
	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, *s.toShiftResponse(&shifts[i]))
	}
	return result
}

func (s *shiftService) toShiftResponse(shift *model.Shift) *dto.ShiftResponse {
	resp := &dto.ShiftResponse{
		ID:               shift.ShiftID,
		LoomID:           shift.LoomID,
		WeaverID:         shift.WeaverID,
		ShiftType:        shift.ShiftType,
		ScheduledDate:    shift.ScheduledDate.Format("2006-01-02"),
		StartTime:        shift.StartTime.In(s.loc).Format(time.RFC3339),
		EndTime:          shift.EndTime.In(s.loc).Format(time.RFC3339),
		Completed:        shift.Completed,
		AttendanceMarked: shift.AttendanceMarked,
		ActualStartTime:  s.fmtTimePtr(shift.ActualStartTime),
		ActualEndTime:    s.fmtTimePtr(shift.ActualEndTime),
	}

	if shift.Loom != nil {
		resp.HumanLoomID = shift.Loom.HumanLoomID
	}
	if shift.Weaver != nil {
		resp.WeaverName = shift.Weaver.Name
	}

	return resp
}

func (s *shiftService) fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.In(s.loc).Format(time.RFC3339)
	return &v
}
