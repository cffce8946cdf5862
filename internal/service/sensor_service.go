package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/dto"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/model"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/repository"
)

// ── sensor module errors ──

var (
	ErrInvalidTimestamp = errors.New("timestamp must be RFC 3339")
	ErrInvalidRange     = errors.New("range start must not be after range end")
)

const defaultHistoryLimit = 10

// SensorService ingests cumulative readings and serves live, historical and
// aggregate views.
//
// Readings are totals-since-session-start, not deltas: the total for any
// window is the last reading inside it, and a duplicated insert cannot
// inflate totals. Historical aggregation keys off the shift window, the
// live series off the loom's running session.
type SensorService interface {
	Ingest(ctx context.Context, req *dto.IngestReadingRequest) error
	LiveSeries(ctx context.Context, loomID string) ([]dto.ReadingResponse, error)
	Latest(ctx context.Context, loomID string) (*dto.ReadingResponse, error)
	History(ctx context.Context, loomID string, limit int) ([]dto.SessionHistoryItem, error)
	Stats(ctx context.Context, loomID string, from, to *time.Time) (*dto.StatsResponse, error)
}

type sensorService struct {
	repo          *repository.Repository
	clock         Clock
	liveSeriesCap int
	logger        *zap.Logger
}

// NewSensorService creates the SensorService.
func NewSensorService(repo *repository.Repository, clock Clock, liveSeriesCap int, logger *zap.Logger) SensorService {
	if liveSeriesCap <= 0 {
		liveSeriesCap = 120
	}
	return &sensorService{repo: repo, clock: clock, liveSeriesCap: liveSeriesCap, logger: logger}
}

// ────────────────────── Ingest ──────────────────────

func (s *sensorService) Ingest(ctx context.Context, req *dto.IngestReadingRequest) error {
	loom, err := s.resolveLoom(ctx, req.LoomID)
	if err != nil {
		return err
	}

	ts := s.clock.Now()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return ErrInvalidTimestamp
		}
		ts = parsed
	}

	// cumulative contract: within a session a later reading never reports
	// less than an earlier one; a regression means the sender restarted or
	// is misbehaving, so flag it without rejecting the sample
	if loom.IsRunning() {
		prev, err := s.repo.Reading.LatestSince(ctx, loom.LoomID, *loom.RunningSince)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if prev != nil && (req.Production < prev.Production || req.Energy < prev.Energy) {
			s.logger.Warn("cumulative reading regressed within session",
				zap.String("loom", loom.HumanLoomID),
				zap.Float64("prev_production", prev.Production),
				zap.Float64("new_production", req.Production),
				zap.Float64("prev_energy", prev.Energy),
				zap.Float64("new_energy", req.Energy),
			)
		}
	}

	return s.repo.Reading.Create(ctx, &model.SensorReading{
		LoomID:     loom.LoomID,
		Timestamp:  ts,
		Production: req.Production,
		Energy:     req.Energy,
	})
}

// ────────────────────── LiveSeries ──────────────────────

// LiveSeries returns the running session's readings in ascending order,
// capped to the most recent liveSeriesCap. A stopped loom has no session
// and yields an empty series.
func (s *sensorService) LiveSeries(ctx context.Context, loomID string) ([]dto.ReadingResponse, error) {
	loom, err := s.resolveLoom(ctx, loomID)
	if err != nil {
		return nil, err
	}

	if !loom.IsRunning() {
		return []dto.ReadingResponse{}, nil
	}

	readings, err := s.repo.Reading.ListSince(ctx, loom.LoomID, *loom.RunningSince, s.liveSeriesCap)
	if err != nil {
		s.logger.Error("load live series failed", zap.String("loom_id", loom.LoomID), zap.Error(err))
		return nil, err
	}

	return s.toReadingResponses(readings), nil
}

// ────────────────────── Latest ──────────────────────

// Latest returns the session's most recent reading, or a zero placeholder
// when the session has produced no data yet (or the loom is stopped).
func (s *sensorService) Latest(ctx context.Context, loomID string) (*dto.ReadingResponse, error) {
	loom, err := s.resolveLoom(ctx, loomID)
	if err != nil {
		return nil, err
	}

	if !loom.IsRunning() {
		return &dto.ReadingResponse{}, nil
	}

	reading, err := s.repo.Reading.LatestSince(ctx, loom.LoomID, *loom.RunningSince)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.ReadingResponse{}, nil
		}
		return nil, err
	}

	return s.toReadingResponse(reading), nil
}

// ────────────────────── History ──────────────────────

func (s *sensorService) History(ctx context.Context, loomID string, limit int) ([]dto.SessionHistoryItem, error) {
	loom, err := s.resolveLoom(ctx, loomID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	shifts, err := s.repo.Shift.ListCompletedForLoom(ctx, loom.LoomID, limit)
	if err != nil {
		s.logger.Error("load shift history failed", zap.String("loom_id", loom.LoomID), zap.Error(err))
		return nil, err
	}

	items := make([]dto.SessionHistoryItem, 0, len(shifts))
	for i := range shifts {
		shift := &shifts[i]

		item := dto.SessionHistoryItem{
			ShiftID:   shift.ShiftID,
			ShiftType: shift.ShiftType,
			StartTime: shift.StartTime.Format(time.RFC3339),
			EndTime:   shift.EndTime.Format(time.RFC3339),
		}
		if shift.Weaver != nil {
			item.WeaverName = shift.Weaver.Name
		}

		readings, err := s.repo.Reading.ListInRange(ctx, loom.LoomID, shift.StartTime, shift.EndTime)
		if err != nil {
			return nil, err
		}
		item.Readings = s.toReadingResponses(readings)

		// cumulative totals: the window's last reading, zero when no data
		if n := len(readings); n > 0 {
			item.TotalProduction = round3(readings[n-1].Production)
			item.TotalEnergy = round3(readings[n-1].Energy)
		}

		items = append(items, item)
	}

	return items, nil
}

// ────────────────────── Stats ──────────────────────

func (s *sensorService) Stats(ctx context.Context, loomID string, from, to *time.Time) (*dto.StatsResponse, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, ErrInvalidRange
	}

	loom, err := s.resolveLoom(ctx, loomID)
	if err != nil {
		return nil, err
	}

	agg, err := s.repo.Reading.Aggregate(ctx, loom.LoomID, from, to)
	if err != nil {
		s.logger.Error("aggregate readings failed", zap.String("loom_id", loom.LoomID), zap.Error(err))
		return nil, err
	}

	stats := &dto.StatsResponse{
		AvgProduction: round3(agg.AvgProduction),
		AvgEnergy:     round3(agg.AvgEnergy),
		DataPoints:    agg.DataPoints,
	}

	if agg.DataPoints > 0 {
		last, err := s.lastInOptionalRange(ctx, loom.LoomID, from, to)
		if err != nil {
			return nil, err
		}
		if last != nil {
			stats.TotalProduction = round3(last.Production)
			stats.TotalEnergy = round3(last.Energy)
		}
	}

	return stats, nil
}

// ── helpers ──

// resolveLoom accepts a loom UUID or the human loom identifier printed on
// the frame, which is what the sensor controllers are flashed with.
func (s *sensorService) resolveLoom(ctx context.Context, id string) (*model.Loom, error) {
	var (
		loom *model.Loom
		err  error
	)
	if _, parseErr := uuid.Parse(id); parseErr == nil {
		loom, err = s.repo.Loom.GetByID(ctx, id)
	} else {
		loom, err = s.repo.Loom.GetByHumanID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoomNotFound
		}
		return nil, err
	}
	return loom, nil
}

func (s *sensorService) lastInOptionalRange(ctx context.Context, loomID string, from, to *time.Time) (*model.SensorReading, error) {
	var (
		reading *model.SensorReading
		err     error
	)
	switch {
	case from == nil && to == nil:
		reading, err = s.repo.Reading.LatestForLoom(ctx, loomID)
	default:
		lo := time.Time{}
		if from != nil {
			lo = *from
		}
		hi := s.clock.Now().Add(time.Second)
		if to != nil {
			hi = *to
		}
		reading, err = s.repo.Reading.LastInRange(ctx, loomID, lo, hi)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return reading, nil
}

func (s *sensorService) toReadingResponses(readings []model.SensorReading) []dto.ReadingResponse {
	result := make([]dto.ReadingResponse, 0, len(readings))
	for i := range readings {
		result = append(result, *s.toReadingResponse(&readings[i]))
	}
	return result
}

func (s *sensorService) toReadingResponse(r *model.SensorReading) *dto.ReadingResponse {
	return &dto.ReadingResponse{
		Timestamp:  r.Timestamp.Format(time.RFC3339),
		Production: round3(r.Production),
		Energy:     round3(r.Energy),
	}
}

// round3 normalizes numeric output to 3 decimal places at the boundary.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
