package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/dto"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/service"
	"github.com/iniyan007/Power-loom-production-monitoring-app/pkg/response"
)

// ExportHandler report export endpoints.
type ExportHandler struct {
	exportSvc service.ExportService
	loc       *time.Location
}

// NewExportHandler creates the ExportHandler.
func NewExportHandler(exportSvc service.ExportService, loc *time.Location) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, loc: loc}
}

// ExportSummaries streams the loom's shift summaries as an .xlsx workbook.
// GET /api/v1/export/summaries/:loomId
func (h *ExportHandler) ExportSummaries(c *gin.Context) {
	var req dto.StatsRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "from/to must be YYYY-MM-DD")
		return
	}

	var from, to *time.Time
	if req.From != "" {
		t, err := time.ParseInLocation("2006-01-02", req.From, h.loc)
		if err != nil {
			response.BadRequest(c, 10001, "from/to must be YYYY-MM-DD")
			return
		}
		from = &t
	}
	if req.To != "" {
		t, err := time.ParseInLocation("2006-01-02", req.To, h.loc)
		if err != nil {
			response.BadRequest(c, 10001, "from/to must be YYYY-MM-DD")
			return
		}
		end := t.AddDate(0, 0, 1)
		to = &end
	}

	buf, filename, err := h.exportSvc.ExportSummaries(c.Request.Context(), c.Param("loomId"), from, to)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// handleExportError maps export module errors to responses.
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLoomNotFound):
		response.NotFound(c, 12001, "loom not found")
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 15001, "no shift summaries in the requested range")
	default:
		response.InternalError(c)
	}
}
