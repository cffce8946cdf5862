package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/dto"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/model"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/repository"
)

// ── test helpers ──

type sensorTestEnv struct {
	svc      SensorService
	looms    *mockLoomRepo
	shifts   *mockShiftRepo
	readings *mockReadingRepo
	clock    *fakeClock
}

func setupTestSensorService(now time.Time, cap int) *sensorTestEnv {
	looms := newMockLoomRepo()
	shifts := newMockShiftRepo()
	readings := newMockReadingRepo()
	repo := &repository.Repository{
		User:    newMockUserRepo(),
		Loom:    looms,
		Shift:   shifts,
		Reading: readings,
		Summary: newMockSummaryRepo(),
	}
	clock := &fakeClock{now: now}
	svc := NewSensorService(repo, clock, cap, zap.NewNop())
	return &sensorTestEnv{svc: svc, looms: looms, shifts: shifts, readings: readings, clock: clock}
}

func (e *sensorTestEnv) seedRunningLoom(t *testing.T, since time.Time) *model.Loom {
	t.Helper()
	loom := &model.Loom{HumanLoomID: "L-01", RunStatus: model.RunStatusStopped}
	if err := e.looms.Create(context.Background(), loom); err != nil {
		t.Fatalf("seed loom: %v", err)
	}
	if _, err := e.looms.SetRunning(context.Background(), loom.LoomID, "weaver-1", since); err != nil {
		t.Fatalf("seed running state: %v", err)
	}
	return loom
}

// ── Ingest ──

func TestSensorService_Ingest_ByHumanLoomID(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	env := setupTestSensorService(now, 0)
	loom := env.seedRunningLoom(t, now.Add(-time.Hour))

	err := env.svc.Ingest(context.Background(), &dto.IngestReadingRequest{
		LoomID:     "L-01",
		Production: 12.5,
		Energy:     1.1,
	})
	if err != nil {
		t.Fatalf("Ingest should resolve the human loom ID: %v", err)
	}

	if len(env.readings.readings) != 1 {
		t.Fatalf("expected 1 stored reading, got %d", len(env.readings.readings))
	}
	stored := env.readings.readings[0]
	if stored.LoomID != loom.LoomID {
		t.Errorf("reading should reference the loom UUID, got %s", stored.LoomID)
	}
	if !stored.Timestamp.Equal(now) {
		t.Errorf("missing timestamp should default to server time, got %s", stored.Timestamp)
	}
}

func TestSensorService_Ingest_UnknownLoom(t *testing.T) {
	env := setupTestSensorService(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), 0)

	err := env.svc.Ingest(context.Background(), &dto.IngestReadingRequest{LoomID: "L-99", Production: 1})
	if !errors.Is(err, ErrLoomNotFound) {
		t.Errorf("expected ErrLoomNotFound, got: %v", err)
	}
}

func TestSensorService_Ingest_BadTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	env := setupTestSensorService(now, 0)
	env.seedRunningLoom(t, now.Add(-time.Hour))

	err := env.svc.Ingest(context.Background(), &dto.IngestReadingRequest{
		LoomID:    "L-01",
		Timestamp: "10/03/2026 09:00",
	})
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("expected ErrInvalidTimestamp, got: %v", err)
	}
}

func TestSensorService_Ingest_RegressionStoredNotRejected(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	env := setupTestSensorService(now, 0)
	env.seedRunningLoom(t, now.Add(-time.Hour))

	if err := env.svc.Ingest(context.Background(), &dto.IngestReadingRequest{
		LoomID: "L-01", Production: 50, Energy: 5,
	}); err != nil {
		t.Fatalf("first sample should succeed: %v", err)
	}

	// a lower cumulative value means the controller restarted; it is
	// flagged but still stored
	if err := env.svc.Ingest(context.Background(), &dto.IngestReadingRequest{
		LoomID: "L-01", Production: 10, Energy: 1,
	}); err != nil {
		t.Fatalf("regressed sample should still be accepted: %v", err)
	}

	if len(env.readings.readings) != 2 {
		t.Errorf("expected both samples stored, got %d", len(env.readings.readings))
	}
}

// ── LiveSeries / Latest ──

func TestSensorService_LiveSeries_EmptyWhenStopped(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	env := setupTestSensorService(now, 0)

	loom := &model.Loom{HumanLoomID: "L-01", RunStatus: model.RunStatusStopped}
	_ = env.looms.Create(context.Background(), loom)
	_ = env.readings.Create(context.Background(), &model.SensorReading{
		LoomID: loom.LoomID, Timestamp: now.Add(-time.Hour), Production: 5,
	})

	series, err := env.svc.LiveSeries(context.Background(), loom.LoomID)
	if err != nil {
		t.Fatalf("LiveSeries should succeed: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("stopped loom has no live series, got %d readings", len(series))
	}
}

func TestSensorService_LiveSeries_ScopedToSessionAndCapped(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	since := now.Add(-30 * time.Minute)
	env := setupTestSensorService(now, 3)
	loom := env.seedRunningLoom(t, since)

	// before the session, must not appear
	_ = env.readings.Create(context.Background(), &model.SensorReading{
		LoomID: loom.LoomID, Timestamp: since.Add(-time.Hour), Production: 999,
	})
	for i := 1; i <= 5; i++ {
		_ = env.readings.Create(context.Background(), &model.SensorReading{
			LoomID:     loom.LoomID,
			Timestamp:  since.Add(time.Duration(i) * time.Minute),
			Production: float64(i * 10),
		})
	}

	series, err := env.svc.LiveSeries(context.Background(), loom.LoomID)
	if err != nil {
		t.Fatalf("LiveSeries should succeed: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("expected cap of 3 readings, got %d", len(series))
	}
	// the most recent readings survive the cap, in chronological order
	if series[0].Production != 30 || series[2].Production != 50 {
		t.Errorf("expected [30 40 50], got [%v %v %v]",
			series[0].Production, series[1].Production, series[2].Production)
	}
}

func TestSensorService_Latest_ZeroPlaceholderWithoutData(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	env := setupTestSensorService(now, 0)
	env.seedRunningLoom(t, now.Add(-time.Minute))

	latest, err := env.svc.Latest(context.Background(), "L-01")
	if err != nil {
		t.Fatalf("Latest should succeed: %v", err)
	}
	if latest.Production != 0 || latest.Energy != 0 {
		t.Errorf("expected zero placeholder, got %v / %v", latest.Production, latest.Energy)
	}
}

// ── History ──

func TestSensorService_History_TotalsAreLastReadingNotSum(t *testing.T) {
	now := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	env := setupTestSensorService(now, 0)

	loom := &model.Loom{HumanLoomID: "L-01", RunStatus: model.RunStatusStopped}
	_ = env.looms.Create(context.Background(), loom)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	start, end := ShiftWindow(model.ShiftMorning, date, time.UTC)
	endCopy := end
	shift := &model.Shift{
		ShiftID: "shift-hist",
		LoomID:  loom.LoomID, WeaverID: "weaver-1",
		ShiftType: model.ShiftMorning, ScheduledDate: date,
		StartTime: start, EndTime: end,
		Completed: true, ActualEndTime: &endCopy,
		Weaver: &model.User{UserID: "weaver-1", Name: "Anitha"},
	}
	env.shifts.shifts[shift.ShiftID] = shift

	for i, p := range []float64{20, 45, 80} {
		_ = env.readings.Create(context.Background(), &model.SensorReading{
			LoomID:     loom.LoomID,
			Timestamp:  start.Add(time.Duration(i+1) * time.Hour),
			Production: p,
			Energy:     p / 20,
		})
	}

	items, err := env.svc.History(context.Background(), loom.LoomID, 10)
	if err != nil {
		t.Fatalf("History should succeed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 completed shift, got %d", len(items))
	}

	// cumulative semantics: the final reading, not 20+45+80
	if items[0].TotalProduction != 80 {
		t.Errorf("expected total production 80, got %v", items[0].TotalProduction)
	}
	if items[0].TotalEnergy != 4 {
		t.Errorf("expected total energy 4, got %v", items[0].TotalEnergy)
	}
	if len(items[0].Readings) != 3 {
		t.Errorf("expected full series of 3 readings, got %d", len(items[0].Readings))
	}
	if items[0].WeaverName != "Anitha" {
		t.Errorf("expected weaver name in history, got %q", items[0].WeaverName)
	}
}

// ── Stats ──

func TestSensorService_Stats_InvalidRange(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	env := setupTestSensorService(now, 0)
	env.seedRunningLoom(t, now.Add(-time.Hour))

	from := now
	to := now.Add(-24 * time.Hour)
	_, err := env.svc.Stats(context.Background(), "L-01", &from, &to)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got: %v", err)
	}
}

func TestSensorService_Stats_TotalsAndAverages(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	env := setupTestSensorService(now, 0)
	loom := env.seedRunningLoom(t, now.Add(-3*time.Hour))

	for i, p := range []float64{10, 20, 60} {
		_ = env.readings.Create(context.Background(), &model.SensorReading{
			LoomID:     loom.LoomID,
			Timestamp:  now.Add(time.Duration(i-3) * time.Hour),
			Production: p,
			Energy:     p / 10,
		})
	}

	stats, err := env.svc.Stats(context.Background(), loom.LoomID, nil, nil)
	if err != nil {
		t.Fatalf("Stats should succeed: %v", err)
	}
	if stats.DataPoints != 3 {
		t.Errorf("expected 3 data points, got %d", stats.DataPoints)
	}
	if stats.TotalProduction != 60 {
		t.Errorf("total should be the latest cumulative value 60, got %v", stats.TotalProduction)
	}
	if stats.AvgProduction != 30 {
		t.Errorf("expected average 30, got %v", stats.AvgProduction)
	}
}

func TestSensorService_Stats_EmptyLoom(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	env := setupTestSensorService(now, 0)
	env.seedRunningLoom(t, now.Add(-time.Hour))

	stats, err := env.svc.Stats(context.Background(), "L-01", nil, nil)
	if err != nil {
		t.Fatalf("Stats should succeed: %v", err)
	}
	if stats.DataPoints != 0 || stats.TotalProduction != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}
}
