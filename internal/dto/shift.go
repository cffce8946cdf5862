package dto

// ── shift requests ──

// AssignShiftRequest schedules a weaver on a loom for one shift slot.
type AssignShiftRequest struct {
	LoomID        string `json:"loom_id"        binding:"required,uuid"`
	WeaverID      string `json:"weaver_id"      binding:"required,uuid"`
	ShiftType     string `json:"shift_type"     binding:"required"`
	ScheduledDate string `json:"scheduled_date" binding:"required"` // YYYY-MM-DD
}

// ── shift responses ──

// ShiftResponse a shift enriched with display names.
type ShiftResponse struct {
	ID               string  `json:"id"`
	LoomID           string  `json:"loom_id"`
	HumanLoomID      string  `json:"human_loom_id,omitempty"`
	WeaverID         string  `json:"weaver_id"`
	WeaverName       string  `json:"weaver_name,omitempty"`
	ShiftType        string  `json:"shift_type"`
	ScheduledDate    string  `json:"scheduled_date"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	Completed        bool    `json:"completed"`
	AttendanceMarked bool    `json:"attendance_marked"`
	ActualStartTime  *string `json:"actual_start_time,omitempty"`
	ActualEndTime    *string `json:"actual_end_time,omitempty"`
}

// SweepResponse result of an expiry sweep.
type SweepResponse struct {
	ClosedCount int `json:"closed_count"`
}
