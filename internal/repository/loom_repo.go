package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/model"
)

// LoomRepository loom data access.
//
// SetRunning and SetStopped are conditional updates: the WHERE clause
// asserts the current run state, so two racing transitions cannot both win.
// The returned bool is whether this call performed the transition.
type LoomRepository interface {
	Create(ctx context.Context, loom *model.Loom) error
	GetByID(ctx context.Context, id string) (*model.Loom, error)
	GetByHumanID(ctx context.Context, humanID string) (*model.Loom, error)
	List(ctx context.Context) ([]model.Loom, error)
	Delete(ctx context.Context, id string) error
	SetRunning(ctx context.Context, id, weaverID string, since time.Time) (bool, error)
	SetStopped(ctx context.Context, id string) (bool, error)
	ClearWeaver(ctx context.Context, id string) error
}

type loomRepo struct {
	db *gorm.DB
}

// NewLoomRepo creates the GORM-backed LoomRepository.
func NewLoomRepo(db *gorm.DB) LoomRepository {
	return &loomRepo{db: db}
}

func (r *loomRepo) Create(ctx context.Context, loom *model.Loom) error {
	return r.db.WithContext(ctx).Create(loom).Error
}

func (r *loomRepo) GetByID(ctx context.Context, id string) (*model.Loom, error) {
	var loom model.Loom
	err := r.db.WithContext(ctx).
		Preload("CurrentWeaver").
		Where("loom_id = ?", id).
		First(&loom).Error
	if err != nil {
		return nil, err
	}
	return &loom, nil
}

func (r *loomRepo) GetByHumanID(ctx context.Context, humanID string) (*model.Loom, error) {
	var loom model.Loom
	err := r.db.WithContext(ctx).
		Where("human_loom_id = ?", humanID).
		First(&loom).Error
	if err != nil {
		return nil, err
	}
	return &loom, nil
}

func (r *loomRepo) List(ctx context.Context) ([]model.Loom, error) {
	var looms []model.Loom
	err := r.db.WithContext(ctx).
		Preload("CurrentWeaver").
		Order("human_loom_id ASC").
		Find(&looms).Error
	return looms, err
}

// Delete removes the loom; shifts, readings and summaries cascade in the DB.
func (r *loomRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Where("loom_id = ?", id).
		Delete(&model.Loom{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *loomRepo) SetRunning(ctx context.Context, id, weaverID string, since time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Loom{}).
		Where("loom_id = ? AND run_status = ?", id, model.RunStatusStopped).
		Updates(map[string]interface{}{
			"run_status":        model.RunStatusRunning,
			"running_since":     since,
			"current_weaver_id": weaverID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *loomRepo) SetStopped(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Loom{}).
		Where("loom_id = ? AND run_status = ?", id, model.RunStatusRunning).
		Updates(map[string]interface{}{
			"run_status":    model.RunStatusStopped,
			"running_since": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *loomRepo) ClearWeaver(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.Loom{}).
		Where("loom_id = ?", id).
		Update("current_weaver_id", nil).Error
}
