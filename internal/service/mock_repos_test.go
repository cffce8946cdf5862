package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/model"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListWeavers(_ context.Context) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Role == model.RoleWeaver {
			result = append(result, *u)
		}
	}
	return result, nil
}

// ── Mock LoomRepository ──

type mockLoomRepo struct {
	looms map[string]*model.Loom
}

func newMockLoomRepo() *mockLoomRepo {
	return &mockLoomRepo{looms: make(map[string]*model.Loom)}
}

func (m *mockLoomRepo) Create(_ context.Context, loom *model.Loom) error {
	if loom.LoomID == "" {
		loom.LoomID = uuid.NewString()
	}
	m.looms[loom.LoomID] = loom
	return nil
}

func (m *mockLoomRepo) GetByID(_ context.Context, id string) (*model.Loom, error) {
	if l, ok := m.looms[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLoomRepo) GetByHumanID(_ context.Context, humanID string) (*model.Loom, error) {
	for _, l := range m.looms {
		if l.HumanLoomID == humanID {
			return l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLoomRepo) List(_ context.Context) ([]model.Loom, error) {
	var result []model.Loom
	for _, l := range m.looms {
		result = append(result, *l)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].HumanLoomID < result[j].HumanLoomID })
	return result, nil
}

func (m *mockLoomRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.looms[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.looms, id)
	return nil
}

// SetRunning mirrors the conditional UPDATE: it only wins when the loom is
// currently stopped.
func (m *mockLoomRepo) SetRunning(_ context.Context, id, weaverID string, since time.Time) (bool, error) {
	l, ok := m.looms[id]
	if !ok {
		return false, nil
	}
	if l.RunStatus != model.RunStatusStopped {
		return false, nil
	}
	l.RunStatus = model.RunStatusRunning
	l.RunningSince = &since
	l.CurrentWeaverID = &weaverID
	return true, nil
}

func (m *mockLoomRepo) SetStopped(_ context.Context, id string) (bool, error) {
	l, ok := m.looms[id]
	if !ok {
		return false, nil
	}
	if l.RunStatus != model.RunStatusRunning {
		return false, nil
	}
	l.RunStatus = model.RunStatusStopped
	l.RunningSince = nil
	return true, nil
}

func (m *mockLoomRepo) ClearWeaver(_ context.Context, id string) error {
	if l, ok := m.looms[id]; ok {
		l.CurrentWeaverID = nil
		l.CurrentWeaver = nil
	}
	return nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts map[string]*model.Shift
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift)}
}

func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		shift.ShiftID = fmt.Sprintf("shift-%d", len(m.shifts)+1)
	}
	for _, s := range m.shifts {
		if s.LoomID == shift.LoomID && sameDate(s.ScheduledDate, shift.ScheduledDate) &&
			s.ShiftType == shift.ShiftType && !s.Completed {
			return fmt.Errorf("duplicate key value violates unique constraint")
		}
	}
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) FindOpenSlot(_ context.Context, loomID string, date time.Time, shiftType string) (*model.Shift, error) {
	for _, s := range m.shifts {
		if s.LoomID == loomID && sameDate(s.ScheduledDate, date) && s.ShiftType == shiftType && !s.Completed {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) ListOpenForWeaverOnLoom(_ context.Context, weaverID, loomID string, date time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.WeaverID == weaverID && s.LoomID == loomID && sameDate(s.ScheduledDate, date) && !s.Completed {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockShiftRepo) ListOpenForWeaverOnDate(_ context.Context, weaverID string, date time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.WeaverID == weaverID && sameDate(s.ScheduledDate, date) && !s.Completed {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockShiftRepo) ListUpcomingForWeaver(_ context.Context, weaverID string, fromDate time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.WeaverID == weaverID && !s.Completed &&
			s.ScheduledDate.Format("2006-01-02") >= fromDate.Format("2006-01-02") {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockShiftRepo) ListOpenForLoom(_ context.Context, loomID string, fromDate time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.LoomID == loomID && !s.Completed &&
			s.ScheduledDate.Format("2006-01-02") >= fromDate.Format("2006-01-02") {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockShiftRepo) ListExpired(_ context.Context, now time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if !s.Completed && s.EndTime.Before(now) {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockShiftRepo) ListCompletedForLoom(_ context.Context, loomID string, limit int) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if s.LoomID == loomID && s.Completed {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EndTime.After(result[j].EndTime) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// CompleteIfOpen mirrors the conditional UPDATE asserting completed=false.
func (m *mockShiftRepo) CompleteIfOpen(_ context.Context, id string, actualEnd time.Time) (bool, error) {
	s, ok := m.shifts[id]
	if !ok || s.Completed {
		return false, nil
	}
	s.Completed = true
	end := actualEnd
	s.ActualEndTime = &end
	return true, nil
}

func (m *mockShiftRepo) SetActualStartIfUnset(_ context.Context, id string, start time.Time) error {
	if s, ok := m.shifts[id]; ok && s.ActualStartTime == nil {
		t := start
		s.ActualStartTime = &t
	}
	return nil
}

func (m *mockShiftRepo) MarkAttendance(_ context.Context, id string) error {
	if s, ok := m.shifts[id]; ok {
		s.AttendanceMarked = true
	}
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.shifts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.shifts, id)
	return nil
}

func (m *mockShiftRepo) DeleteFutureUnstarted(_ context.Context, loomID string, fromDate time.Time) (int64, error) {
	var deleted int64
	for id, s := range m.shifts {
		if s.LoomID == loomID && !s.Completed && s.ActualStartTime == nil &&
			s.ScheduledDate.Format("2006-01-02") >= fromDate.Format("2006-01-02") {
			delete(m.shifts, id)
			deleted++
		}
	}
	return deleted, nil
}

// ── Mock SensorReadingRepository ──

type mockReadingRepo struct {
	readings []model.SensorReading
}

func newMockReadingRepo() *mockReadingRepo {
	return &mockReadingRepo{}
}

func (m *mockReadingRepo) sorted(loomID string) []model.SensorReading {
	var result []model.SensorReading
	for _, r := range m.readings {
		if r.LoomID == loomID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.Before(result[j].Timestamp) })
	return result
}

func (m *mockReadingRepo) Create(_ context.Context, reading *model.SensorReading) error {
	if reading.ReadingID == "" {
		reading.ReadingID = fmt.Sprintf("reading-%d", len(m.readings)+1)
	}
	m.readings = append(m.readings, *reading)
	return nil
}

func (m *mockReadingRepo) LatestSince(_ context.Context, loomID string, since time.Time) (*model.SensorReading, error) {
	all := m.sorted(loomID)
	for i := len(all) - 1; i >= 0; i-- {
		if !all[i].Timestamp.Before(since) {
			return &all[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReadingRepo) LatestForLoom(_ context.Context, loomID string) (*model.SensorReading, error) {
	all := m.sorted(loomID)
	if len(all) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &all[len(all)-1], nil
}

func (m *mockReadingRepo) ListSince(_ context.Context, loomID string, since time.Time, limit int) ([]model.SensorReading, error) {
	var result []model.SensorReading
	for _, r := range m.sorted(loomID) {
		if !r.Timestamp.Before(since) {
			result = append(result, r)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result, nil
}

func (m *mockReadingRepo) ListInRange(_ context.Context, loomID string, from, to time.Time) ([]model.SensorReading, error) {
	var result []model.SensorReading
	for _, r := range m.sorted(loomID) {
		if !r.Timestamp.Before(from) && r.Timestamp.Before(to) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockReadingRepo) LastInRange(ctx context.Context, loomID string, from, to time.Time) (*model.SensorReading, error) {
	inRange, _ := m.ListInRange(ctx, loomID, from, to)
	if len(inRange) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &inRange[len(inRange)-1], nil
}

func (m *mockReadingRepo) Aggregate(_ context.Context, loomID string, from, to *time.Time) (*repository.ReadingAggregate, error) {
	var agg repository.ReadingAggregate
	var sumProd, sumEnergy float64
	for _, r := range m.sorted(loomID) {
		if from != nil && r.Timestamp.Before(*from) {
			continue
		}
		if to != nil && !r.Timestamp.Before(*to) {
			continue
		}
		agg.DataPoints++
		sumProd += r.Production
		sumEnergy += r.Energy
	}
	if agg.DataPoints > 0 {
		agg.AvgProduction = sumProd / float64(agg.DataPoints)
		agg.AvgEnergy = sumEnergy / float64(agg.DataPoints)
	}
	return &agg, nil
}

func (m *mockReadingRepo) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []model.SensorReading
	var purged int64
	for _, r := range m.readings {
		if r.Timestamp.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, r)
	}
	m.readings = kept
	return purged, nil
}

// ── Mock ShiftSummaryRepository ──

type mockSummaryRepo struct {
	summaries map[string]*model.ShiftSummary
}

func newMockSummaryRepo() *mockSummaryRepo {
	return &mockSummaryRepo{summaries: make(map[string]*model.ShiftSummary)}
}

// CreateIfAbsent mirrors ON CONFLICT DO NOTHING on shift_id.
func (m *mockSummaryRepo) CreateIfAbsent(_ context.Context, summary *model.ShiftSummary) error {
	if _, ok := m.summaries[summary.ShiftID]; ok {
		return nil
	}
	if summary.SummaryID == "" {
		summary.SummaryID = "sum-" + summary.ShiftID
	}
	m.summaries[summary.ShiftID] = summary
	return nil
}

func (m *mockSummaryRepo) GetByShiftID(_ context.Context, shiftID string) (*model.ShiftSummary, error) {
	if s, ok := m.summaries[shiftID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSummaryRepo) ListByLoom(_ context.Context, loomID string, from, to *time.Time) ([]model.ShiftSummary, error) {
	var result []model.ShiftSummary
	for _, s := range m.summaries {
		if s.LoomID != loomID {
			continue
		}
		if from != nil && s.StartTime.Before(*from) {
			continue
		}
		if to != nil && !s.StartTime.Before(*to) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

// ── fixed clock ──

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }
