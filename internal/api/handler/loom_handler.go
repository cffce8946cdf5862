package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/dto"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/service"
	"github.com/iniyan007/Power-loom-production-monitoring-app/pkg/response"
)

// LoomHandler loom endpoints.
type LoomHandler struct {
	loomSvc  service.LoomService
	shiftSvc service.ShiftService
}

// NewLoomHandler creates the LoomHandler.
func NewLoomHandler(loomSvc service.LoomService, shiftSvc service.ShiftService) *LoomHandler {
	return &LoomHandler{loomSvc: loomSvc, shiftSvc: shiftSvc}
}

// ListLooms returns the dashboard list with latest readings.
// GET /api/v1/looms
func (h *LoomHandler) ListLooms(c *gin.Context) {
	looms, err := h.loomSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": looms})
}

// CreateLoom registers a loom.
// POST /api/v1/looms
func (h *LoomHandler) CreateLoom(c *gin.Context) {
	var req dto.CreateLoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "request validation failed")
		return
	}

	loom, err := h.loomSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleLoomError(c, err)
		return
	}

	response.Created(c, loom)
}

// DeleteLoom removes a loom and its shifts.
// DELETE /api/v1/looms/:id
func (h *LoomHandler) DeleteLoom(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "loom ID must not be empty")
		return
	}

	if err := h.loomSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleLoomError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListLoomShifts returns a loom's open shifts for admin editing.
// GET /api/v1/looms/:id/shifts
func (h *LoomHandler) ListLoomShifts(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "loom ID must not be empty")
		return
	}

	shifts, err := h.shiftSvc.ListForLoom(c.Request.Context(), id)
	if err != nil {
		h.handleLoomError(c, err)
		return
	}

	response.OK(c, gin.H{"list": shifts})
}

// StartLoom begins the caller's session on the loom.
// POST /api/v1/looms/:id/start
func (h *LoomHandler) StartLoom(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "loom ID must not be empty")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	loom, err := h.loomSvc.Start(c.Request.Context(), id, userID)
	if err != nil {
		h.handleLoomError(c, err)
		return
	}

	response.OK(c, loom)
}

// StopLoom ends the loom's session. Idempotent.
// POST /api/v1/looms/:id/stop
func (h *LoomHandler) StopLoom(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "loom ID must not be empty")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	loom, err := h.loomSvc.Stop(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleLoomError(c, err)
		return
	}

	response.OK(c, loom)
}

// UnassignLoom clears the loom's future schedule and stops it.
// POST /api/v1/looms/:id/unassign
func (h *LoomHandler) UnassignLoom(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "loom ID must not be empty")
		return
	}

	result, err := h.loomSvc.ForceUnassign(c.Request.Context(), id)
	if err != nil {
		h.handleLoomError(c, err)
		return
	}

	response.OK(c, result)
}

// ListWeavers returns weaver accounts for the assignment picker.
// GET /api/v1/weavers
func (h *LoomHandler) ListWeavers(c *gin.Context) {
	weavers, err := h.loomSvc.Weavers(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": weavers})
}

// handleLoomError maps loom module errors to responses.
func (h *LoomHandler) handleLoomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLoomNotFound):
		response.NotFound(c, 12001, "loom not found")
	case errors.Is(err, service.ErrLoomExists):
		response.Conflict(c, 12002, "loom ID already exists")
	case errors.Is(err, service.ErrNoActiveShift):
		response.Conflict(c, 12003, "no shift assigned to you on this loom today")
	case errors.Is(err, service.ErrOutsideShiftWindow):
		// carries the shift's hours as timing guidance
		response.ErrorWithDetails(c, 409, 12004, "outside shift window", err.Error())
	case errors.Is(err, service.ErrLoomAlreadyRunning):
		response.Conflict(c, 12005, "loom is already running")
	case errors.Is(err, service.ErrNotLoomWeaver):
		response.Forbidden(c, 12006, "you are not assigned to this loom")
	default:
		response.InternalError(c)
	}
}
