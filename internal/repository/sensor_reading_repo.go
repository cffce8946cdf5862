package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/model"
)

// ReadingAggregate holds the SQL-side aggregation over a reading range.
// Averages are arithmetic means of the instantaneous cumulative values.
type ReadingAggregate struct {
	DataPoints    int64   `gorm:"column:data_points"`
	AvgProduction float64 `gorm:"column:avg_production"`
	AvgEnergy     float64 `gorm:"column:avg_energy"`
}

// SensorReadingRepository sensor reading data access.
type SensorReadingRepository interface {
	Create(ctx context.Context, reading *model.SensorReading) error
	LatestSince(ctx context.Context, loomID string, since time.Time) (*model.SensorReading, error)
	LatestForLoom(ctx context.Context, loomID string) (*model.SensorReading, error)
	ListSince(ctx context.Context, loomID string, since time.Time, limit int) ([]model.SensorReading, error)
	ListInRange(ctx context.Context, loomID string, from, to time.Time) ([]model.SensorReading, error)
	LastInRange(ctx context.Context, loomID string, from, to time.Time) (*model.SensorReading, error)
	Aggregate(ctx context.Context, loomID string, from, to *time.Time) (*ReadingAggregate, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type sensorReadingRepo struct {
	db *gorm.DB
}

// NewSensorReadingRepo creates the GORM-backed SensorReadingRepository.
func NewSensorReadingRepo(db *gorm.DB) SensorReadingRepository {
	return &sensorReadingRepo{db: db}
}

func (r *sensorReadingRepo) Create(ctx context.Context, reading *model.SensorReading) error {
	return r.db.WithContext(ctx).Create(reading).Error
}

func (r *sensorReadingRepo) LatestSince(ctx context.Context, loomID string, since time.Time) (*model.SensorReading, error) {
	var reading model.SensorReading
	err := r.db.WithContext(ctx).
		Where("loom_id = ? AND ts >= ?", loomID, since).
		Order("ts DESC").
		First(&reading).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *sensorReadingRepo) LatestForLoom(ctx context.Context, loomID string) (*model.SensorReading, error) {
	var reading model.SensorReading
	err := r.db.WithContext(ctx).
		Where("loom_id = ?", loomID).
		Order("ts DESC").
		First(&reading).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// ListSince returns readings at or after since in ascending order, keeping
// only the most recent limit rows when limit > 0.
func (r *sensorReadingRepo) ListSince(ctx context.Context, loomID string, since time.Time, limit int) ([]model.SensorReading, error) {
	var readings []model.SensorReading
	db := r.db.WithContext(ctx).
		Where("loom_id = ? AND ts >= ?", loomID, since).
		Order("ts DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&readings).Error; err != nil {
		return nil, err
	}
	// flip newest-first into chronological order
	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}
	return readings, nil
}

func (r *sensorReadingRepo) ListInRange(ctx context.Context, loomID string, from, to time.Time) ([]model.SensorReading, error) {
	var readings []model.SensorReading
	err := r.db.WithContext(ctx).
		Where("loom_id = ? AND ts >= ? AND ts < ?", loomID, from, to).
		Order("ts ASC").
		Find(&readings).Error
	return readings, err
}

func (r *sensorReadingRepo) LastInRange(ctx context.Context, loomID string, from, to time.Time) (*model.SensorReading, error) {
	var reading model.SensorReading
	err := r.db.WithContext(ctx).
		Where("loom_id = ? AND ts >= ? AND ts < ?", loomID, from, to).
		Order("ts DESC").
		First(&reading).Error
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

func (r *sensorReadingRepo) Aggregate(ctx context.Context, loomID string, from, to *time.Time) (*ReadingAggregate, error) {
	db := r.db.WithContext(ctx).
		Model(&model.SensorReading{}).
		Where("loom_id = ?", loomID)
	if from != nil {
		db = db.Where("ts >= ?", *from)
	}
	if to != nil {
		db = db.Where("ts < ?", *to)
	}

	var agg ReadingAggregate
	err := db.Select(
		"COUNT(*) AS data_points, COALESCE(AVG(production), 0) AS avg_production, COALESCE(AVG(energy), 0) AS avg_energy",
	).Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *sensorReadingRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("ts < ?", cutoff).
		Delete(&model.SensorReading{})
	return res.RowsAffected, res.Error
}
