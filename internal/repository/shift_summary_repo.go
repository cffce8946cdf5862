package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/model"
)

// ShiftSummaryRepository shift summary snapshot access.
type ShiftSummaryRepository interface {
	// CreateIfAbsent inserts the snapshot unless one already exists for the
	// shift. Write-once: redundant close paths become no-ops.
	CreateIfAbsent(ctx context.Context, summary *model.ShiftSummary) error
	GetByShiftID(ctx context.Context, shiftID string) (*model.ShiftSummary, error)
	ListByLoom(ctx context.Context, loomID string, from, to *time.Time) ([]model.ShiftSummary, error)
}

type shiftSummaryRepo struct {
	db *gorm.DB
}

// NewShiftSummaryRepo creates the GORM-backed ShiftSummaryRepository.
func NewShiftSummaryRepo(db *gorm.DB) ShiftSummaryRepository {
	return &shiftSummaryRepo{db: db}
}

func (r *shiftSummaryRepo) CreateIfAbsent(ctx context.Context, summary *model.ShiftSummary) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shift_id"}},
			DoNothing: true,
		}).
		Create(summary).Error
}

func (r *shiftSummaryRepo) GetByShiftID(ctx context.Context, shiftID string) (*model.ShiftSummary, error) {
	var summary model.ShiftSummary
	err := r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		First(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *shiftSummaryRepo) ListByLoom(ctx context.Context, loomID string, from, to *time.Time) ([]model.ShiftSummary, error) {
	db := r.db.WithContext(ctx).
		Preload("Weaver").
		Where("loom_id = ?", loomID)
	if from != nil {
		db = db.Where("start_time >= ?", *from)
	}
	if to != nil {
		db = db.Where("end_time <= ?", *to)
	}

	var summaries []model.ShiftSummary
	err := db.Order("start_time ASC").Find(&summaries).Error
	return summaries, err
}
