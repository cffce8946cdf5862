package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/repository"
)

// ── export module errors ──

var (
	ErrExportNoData = errors.New("no completed shifts in the requested range")
)

// ExportService produces the production report spreadsheet.
//
// One row per completed shift, taken from the write-once summary snapshots,
// so the report never recomputes totals from raw readings.
type ExportService interface {
	// ExportSummaries renders the loom's shift summaries in [from, to] as an
	// .xlsx workbook. Nil bounds leave that side open.
	ExportSummaries(ctx context.Context, loomID string, from, to *time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates the ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportSummaries(ctx context.Context, loomID string, from, to *time.Time) (*bytes.Buffer, string, error) {
	loom, err := s.repo.Loom.GetByID(ctx, loomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrLoomNotFound
		}
		return nil, "", err
	}

	summaries, err := s.repo.Summary.ListByLoom(ctx, loom.LoomID, from, to)
	if err != nil {
		s.logger.Error("load shift summaries failed", zap.String("loom_id", loomID), zap.Error(err))
		return nil, "", err
	}
	if len(summaries) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Shift Report"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", err
	}

	headers := []string{"Date", "Shift", "Weaver", "Start", "End", "Production (m)", "Energy (kWh)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, "", err
		}
	}

	for row, sum := range summaries {
		weaverName := ""
		if sum.Weaver != nil {
			weaverName = sum.Weaver.Name
		}
		values := []interface{}{
			sum.StartTime.Format("2006-01-02"),
			sum.ShiftType,
			weaverName,
			sum.StartTime.Format("15:04"),
			sum.EndTime.Format("15:04"),
			round3(sum.TotalProduction),
			round3(sum.TotalEnergy),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("shift-report-%s.xlsx", loom.HumanLoomID)
	return buf, filename, nil
}
