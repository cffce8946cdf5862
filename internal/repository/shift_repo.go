package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/model"
)

// ShiftRepository shift data access.
//
// CompleteIfOpen is a conditional update asserting completed=false, so the
// manual-end and sweeper paths converge on exactly one winner. The returned
// bool is whether this call closed the shift.
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	FindOpenSlot(ctx context.Context, loomID string, date time.Time, shiftType string) (*model.Shift, error)
	ListOpenForWeaverOnLoom(ctx context.Context, weaverID, loomID string, date time.Time) ([]model.Shift, error)
	ListOpenForWeaverOnDate(ctx context.Context, weaverID string, date time.Time) ([]model.Shift, error)
	ListUpcomingForWeaver(ctx context.Context, weaverID string, fromDate time.Time) ([]model.Shift, error)
	ListOpenForLoom(ctx context.Context, loomID string, fromDate time.Time) ([]model.Shift, error)
	ListExpired(ctx context.Context, now time.Time) ([]model.Shift, error)
	ListCompletedForLoom(ctx context.Context, loomID string, limit int) ([]model.Shift, error)
	CompleteIfOpen(ctx context.Context, id string, actualEnd time.Time) (bool, error)
	SetActualStartIfUnset(ctx context.Context, id string, start time.Time) error
	MarkAttendance(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteFutureUnstarted(ctx context.Context, loomID string, fromDate time.Time) (int64, error)
}

type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo creates the GORM-backed ShiftRepository.
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("Loom").
		Preload("Weaver").
		Where("shift_id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) FindOpenSlot(ctx context.Context, loomID string, date time.Time, shiftType string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Where("loom_id = ? AND scheduled_date = ? AND shift_type = ? AND completed = false",
			loomID, date.Format("2006-01-02"), shiftType).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// ListOpenForWeaverOnLoom returns every open shift for the weaver on the
// loom on the given date. Back-to-back slots on one day mean more than one
// row can be open at once; callers pick by window.
func (r *shiftRepo) ListOpenForWeaverOnLoom(ctx context.Context, weaverID, loomID string, date time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Where("weaver_id = ? AND loom_id = ? AND scheduled_date = ? AND completed = false",
			weaverID, loomID, date.Format("2006-01-02")).
		Order("start_time ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) ListOpenForWeaverOnDate(ctx context.Context, weaverID string, date time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Preload("Loom").
		Where("weaver_id = ? AND scheduled_date = ? AND completed = false",
			weaverID, date.Format("2006-01-02")).
		Order("start_time ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) ListUpcomingForWeaver(ctx context.Context, weaverID string, fromDate time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Preload("Loom").
		Where("weaver_id = ? AND scheduled_date >= ? AND completed = false",
			weaverID, fromDate.Format("2006-01-02")).
		Order("scheduled_date ASC, start_time ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) ListOpenForLoom(ctx context.Context, loomID string, fromDate time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Preload("Weaver").
		Where("loom_id = ? AND scheduled_date >= ? AND completed = false",
			loomID, fromDate.Format("2006-01-02")).
		Order("scheduled_date ASC, start_time ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) ListExpired(ctx context.Context, now time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Where("completed = false AND end_time < ?", now).
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) ListCompletedForLoom(ctx context.Context, loomID string, limit int) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Preload("Weaver").
		Where("loom_id = ? AND completed = true", loomID).
		Order("end_time DESC").
		Limit(limit).
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) CompleteIfOpen(ctx context.Context, id string, actualEnd time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("shift_id = ? AND completed = false", id).
		Updates(map[string]interface{}{
			"completed":       true,
			"actual_end_time": actualEnd,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetActualStartIfUnset records the first loom start of the shift. Later
// restarts within the same shift keep the original marker.
func (r *shiftRepo) SetActualStartIfUnset(ctx context.Context, id string, start time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("shift_id = ? AND actual_start_time IS NULL", id).
		Update("actual_start_time", start).Error
}

func (r *shiftRepo) MarkAttendance(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("shift_id = ?", id).
		Update("attendance_marked", true).Error
}

func (r *shiftRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("shift_id = ?", id).
		Delete(&model.Shift{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteFutureUnstarted removes open shifts that never ran, from fromDate
// onwards. Shifts with an actual start stay untouched.
func (r *shiftRepo) DeleteFutureUnstarted(ctx context.Context, loomID string, fromDate time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("loom_id = ? AND scheduled_date >= ? AND completed = false AND actual_start_time IS NULL",
			loomID, fromDate.Format("2006-01-02")).
		Delete(&model.Shift{})
	return res.RowsAffected, res.Error
}
