package dto

// ── loom requests ──

// CreateLoomRequest registers a new loom.
type CreateLoomRequest struct {
	HumanLoomID string `json:"loom_id" binding:"required,min=1,max=50"`
}

// ── loom responses ──

// LoomResponse a loom's state.
type LoomResponse struct {
	ID           string  `json:"id"`
	HumanLoomID  string  `json:"loom_id"`
	RunStatus    string  `json:"run_status"`
	RunningSince *string `json:"running_since,omitempty"`
	WeaverID     string  `json:"weaver_id,omitempty"`
	WeaverName   string  `json:"weaver_name,omitempty"`
}

// LoomDashboardItem a loom enriched with its latest reading for the admin
// dashboard list.
type LoomDashboardItem struct {
	LoomResponse
	LatestProduction float64 `json:"latest_production"`
	LatestEnergy     float64 `json:"latest_energy"`
	LastReadingAt    *string `json:"last_reading_at,omitempty"`
}

// WeaverBrief a weaver entry for admin pickers.
type WeaverBrief struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UnassignResponse result of clearing a loom's future schedule.
type UnassignResponse struct {
	DeletedShifts int64 `json:"deleted_shifts"`
	LoomStopped   bool  `json:"loom_stopped"`
}
