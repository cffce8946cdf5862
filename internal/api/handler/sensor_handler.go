package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/dto"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/service"
	"github.com/iniyan007/Power-loom-production-monitoring-app/pkg/response"
)

// SensorHandler sensor data endpoints.
type SensorHandler struct {
	sensorSvc service.SensorService
	loc       *time.Location
}

// NewSensorHandler creates the SensorHandler.
func NewSensorHandler(sensorSvc service.SensorService, loc *time.Location) *SensorHandler {
	return &SensorHandler{sensorSvc: sensorSvc, loc: loc}
}

// IngestReading accepts a cumulative sample from a loom controller.
// POST /api/v1/sensor/data
func (h *SensorHandler) IngestReading(c *gin.Context) {
	var req dto.IngestReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "request validation failed")
		return
	}

	if err := h.sensorSvc.Ingest(c.Request.Context(), &req); err != nil {
		h.handleSensorError(c, err)
		return
	}

	response.Created(c, nil)
}

// LiveSeries returns the recent samples of the loom's current session.
// GET /api/v1/sensor/live/:loomId
func (h *SensorHandler) LiveSeries(c *gin.Context) {
	readings, err := h.sensorSvc.LiveSeries(c.Request.Context(), c.Param("loomId"))
	if err != nil {
		h.handleSensorError(c, err)
		return
	}

	response.OK(c, gin.H{"list": readings})
}

// LatestReading returns the loom's most recent sample, or a zero placeholder
// when the loom has never reported.
// GET /api/v1/sensor/latest/:loomId
func (h *SensorHandler) LatestReading(c *gin.Context) {
	reading, err := h.sensorSvc.Latest(c.Request.Context(), c.Param("loomId"))
	if err != nil {
		h.handleSensorError(c, err)
		return
	}

	response.OK(c, reading)
}

// SessionHistory returns completed shifts with their totals and series.
// GET /api/v1/sensor/history/:loomId
func (h *SensorHandler) SessionHistory(c *gin.Context) {
	var req dto.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "limit must be between 1 and 100")
		return
	}

	items, err := h.sensorSvc.History(c.Request.Context(), c.Param("loomId"), req.Limit)
	if err != nil {
		h.handleSensorError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// ReadingStats returns aggregate statistics, optionally bounded by
// from/to calendar dates in the facility timezone.
// GET /api/v1/sensor/stats/:loomId
func (h *SensorHandler) ReadingStats(c *gin.Context) {
	var req dto.StatsRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "from/to must be YYYY-MM-DD")
		return
	}

	from, to, err := h.parseRange(req.From, req.To)
	if err != nil {
		response.BadRequest(c, 10001, "from/to must be YYYY-MM-DD")
		return
	}

	stats, err := h.sensorSvc.Stats(c.Request.Context(), c.Param("loomId"), from, to)
	if err != nil {
		h.handleSensorError(c, err)
		return
	}

	response.OK(c, stats)
}

// parseRange turns calendar dates into half-open instants: from is the
// start of its day, to is the end of its day.
func (h *SensorHandler) parseRange(fromStr, toStr string) (from, to *time.Time, err error) {
	if fromStr != "" {
		t, perr := time.ParseInLocation("2006-01-02", fromStr, h.loc)
		if perr != nil {
			return nil, nil, perr
		}
		from = &t
	}
	if toStr != "" {
		t, perr := time.ParseInLocation("2006-01-02", toStr, h.loc)
		if perr != nil {
			return nil, nil, perr
		}
		end := t.AddDate(0, 0, 1)
		to = &end
	}
	return from, to, nil
}

// handleSensorError maps sensor module errors to responses.
func (h *SensorHandler) handleSensorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLoomNotFound):
		response.NotFound(c, 12001, "loom not found")
	case errors.Is(err, service.ErrInvalidTimestamp):
		response.BadRequest(c, 14001, "timestamp must be RFC 3339")
	case errors.Is(err, service.ErrInvalidRange):
		response.BadRequest(c, 14002, "range start must not be after range end")
	default:
		response.InternalError(c)
	}
}
