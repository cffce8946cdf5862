package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/dto"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/service"
	"github.com/iniyan007/Power-loom-production-monitoring-app/pkg/response"
)

// ShiftHandler shift endpoints.
type ShiftHandler struct {
	shiftSvc service.ShiftService
	sweeper  service.SweeperService
}

// NewShiftHandler creates the ShiftHandler.
func NewShiftHandler(shiftSvc service.ShiftService, sweeper service.SweeperService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc, sweeper: sweeper}
}

// AssignShift schedules a weaver on a loom.
// POST /api/v1/shifts/assign
func (h *ShiftHandler) AssignShift(c *gin.Context) {
	var req dto.AssignShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "request validation failed")
		return
	}

	shift, err := h.shiftSvc.Assign(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, shift)
}

// MyActiveShifts returns the caller's reconciled shifts for today.
// GET /api/v1/shifts/my-active
func (h *ShiftHandler) MyActiveShifts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shifts, err := h.shiftSvc.ActiveForWeaver(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": shifts})
}

// MyUpcomingShifts returns the caller's open shifts from today onwards.
// GET /api/v1/shifts/my-upcoming
func (h *ShiftHandler) MyUpcomingShifts(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shifts, err := h.shiftSvc.UpcomingForWeaver(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": shifts})
}

// DeleteShift removes a shift that never ran.
// DELETE /api/v1/shifts/:id
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "shift ID must not be empty")
		return
	}

	if err := h.shiftSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, nil)
}

// MarkAttendance records the caller's attendance on their shift.
// POST /api/v1/shifts/:id/attendance
func (h *ShiftHandler) MarkAttendance(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "shift ID must not be empty")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.MarkAttendance(c.Request.Context(), id, userID)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// EndShift completes the caller's shift early and stops the loom.
// POST /api/v1/shifts/:id/end
func (h *ShiftHandler) EndShift(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "shift ID must not be empty")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.EndManually(c.Request.Context(), id, userID)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// SweepShifts closes all expired shifts. Called by the external scheduler
// and safe to call at any frequency.
// POST /api/v1/shifts/sweep
func (h *ShiftHandler) SweepShifts(c *gin.Context) {
	closed, err := h.sweeper.Sweep(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, dto.SweepResponse{ClosedCount: closed})
}

// handleShiftError maps shift module errors to responses.
func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 13001, "shift not found")
	case errors.Is(err, service.ErrLoomNotFound):
		response.NotFound(c, 12001, "loom not found")
	case errors.Is(err, service.ErrWeaverNotFound):
		response.BadRequest(c, 13002, "weaver not found")
	case errors.Is(err, service.ErrInvalidShiftType):
		response.BadRequest(c, 13003, "shift type must be Morning, Evening or Night")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 13004, "scheduled date must be YYYY-MM-DD")
	case errors.Is(err, service.ErrPastDate):
		response.BadRequest(c, 13005, "scheduled date is in the past")
	case errors.Is(err, service.ErrSlotConflict):
		response.Conflict(c, 13006, "an open shift already occupies this slot")
	case errors.Is(err, service.ErrShiftAlreadyStarted):
		response.Conflict(c, 13007, "shift has already started and cannot be deleted")
	case errors.Is(err, service.ErrNotShiftWeaver):
		response.Forbidden(c, 13008, "you are not assigned to this shift")
	default:
		response.InternalError(c)
	}
}
