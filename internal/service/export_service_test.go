package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/model"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/repository"
)

// ── test helpers ──

func setupTestExportService() (ExportService, *mockLoomRepo, *mockSummaryRepo) {
	looms := newMockLoomRepo()
	summaries := newMockSummaryRepo()
	repo := &repository.Repository{
		User:    newMockUserRepo(),
		Loom:    looms,
		Shift:   newMockShiftRepo(),
		Reading: newMockReadingRepo(),
		Summary: summaries,
	}
	svc := NewExportService(repo, zap.NewNop())
	return svc, looms, summaries
}

// ── ExportSummaries ──

func TestExportService_ExportSummaries_UnknownLoom(t *testing.T) {
	svc, _, _ := setupTestExportService()

	_, _, err := svc.ExportSummaries(context.Background(), "missing", nil, nil)
	if !errors.Is(err, ErrLoomNotFound) {
		t.Errorf("expected ErrLoomNotFound, got: %v", err)
	}
}

func TestExportService_ExportSummaries_NoData(t *testing.T) {
	svc, looms, _ := setupTestExportService()

	loom := &model.Loom{HumanLoomID: "L-01", RunStatus: model.RunStatusStopped}
	_ = looms.Create(context.Background(), loom)

	_, _, err := svc.ExportSummaries(context.Background(), loom.LoomID, nil, nil)
	if !errors.Is(err, ErrExportNoData) {
		t.Errorf("expected ErrExportNoData, got: %v", err)
	}
}

func TestExportService_ExportSummaries_Workbook(t *testing.T) {
	svc, looms, summaries := setupTestExportService()

	loom := &model.Loom{HumanLoomID: "L-01", RunStatus: model.RunStatusStopped}
	_ = looms.Create(context.Background(), loom)

	start := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	_ = summaries.CreateIfAbsent(context.Background(), &model.ShiftSummary{
		ShiftID:         "shift-1",
		LoomID:          loom.LoomID,
		WeaverID:        "weaver-1",
		ShiftType:       model.ShiftMorning,
		TotalProduction: 120.5,
		TotalEnergy:     14.2,
		StartTime:       start,
		EndTime:         start.Add(8 * time.Hour),
		Weaver:          &model.User{UserID: "weaver-1", Name: "Anitha"},
	})

	buf, filename, err := svc.ExportSummaries(context.Background(), loom.LoomID, nil, nil)
	if err != nil {
		t.Fatalf("ExportSummaries should succeed: %v", err)
	}
	if filename != "shift-report-L-01.xlsx" {
		t.Errorf("unexpected filename: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("output should be a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Shift Report")
	if err != nil {
		t.Fatalf("sheet missing: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 data row, got %d rows", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][5] != "Production (m)" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][1] != model.ShiftMorning || rows[1][2] != "Anitha" {
		t.Errorf("unexpected data row: %v", rows[1])
	}
}

func TestExportService_ExportSummaries_RangeFilter(t *testing.T) {
	svc, looms, summaries := setupTestExportService()

	loom := &model.Loom{HumanLoomID: "L-01", RunStatus: model.RunStatusStopped}
	_ = looms.Create(context.Background(), loom)

	for day := 10; day <= 12; day++ {
		start := time.Date(2026, 3, day, 6, 0, 0, 0, time.UTC)
		_ = summaries.CreateIfAbsent(context.Background(), &model.ShiftSummary{
			ShiftID:   "shift-" + start.Format("02"),
			LoomID:    loom.LoomID,
			WeaverID:  "weaver-1",
			ShiftType: model.ShiftMorning,
			StartTime: start,
			EndTime:   start.Add(8 * time.Hour),
		})
	}

	from := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	buf, _, err := svc.ExportSummaries(context.Background(), loom.LoomID, &from, &to)
	if err != nil {
		t.Fatalf("ExportSummaries should succeed: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows("Shift Report")
	if len(rows) != 2 {
		t.Errorf("expected only the March 11 shift in range, got %d data rows", len(rows)-1)
	}
}
