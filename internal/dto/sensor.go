package dto

// ── sensor requests ──

// IngestReadingRequest a cumulative sensor sample from a loom controller.
// LoomID accepts either the loom's UUID or its human identifier, since the
// devices are flashed with the label on the frame.
type IngestReadingRequest struct {
	LoomID     string  `json:"loom_id"    binding:"required"`
	Production float64 `json:"production" binding:"min=0"`
	Energy     float64 `json:"energy"     binding:"min=0"`
	Timestamp  string  `json:"timestamp"  binding:"omitempty"` // RFC 3339; defaults to server time
}

// StatsRangeRequest optional date bounds for loom statistics.
type StatsRangeRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
}

// HistoryRequest bounds how many completed shifts a history query covers.
type HistoryRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ── sensor responses ──

// ReadingResponse a single sensor sample. Values are rounded to 3 decimal
// places for display.
type ReadingResponse struct {
	Timestamp  string  `json:"timestamp"`
	Production float64 `json:"production"`
	Energy     float64 `json:"energy"`
}

// SessionHistoryItem one completed shift with its totals and full series.
type SessionHistoryItem struct {
	ShiftID         string            `json:"shift_id"`
	WeaverName      string            `json:"weaver_name"`
	ShiftType       string            `json:"shift_type"`
	StartTime       string            `json:"start_time"`
	EndTime         string            `json:"end_time"`
	TotalProduction float64           `json:"total_production"`
	TotalEnergy     float64           `json:"total_energy"`
	Readings        []ReadingResponse `json:"readings"`
}

// StatsResponse aggregate statistics over a loom's readings.
// Totals carry cumulative semantics: the latest reading in range, not a sum.
type StatsResponse struct {
	TotalProduction float64 `json:"total_production"`
	TotalEnergy     float64 `json:"total_energy"`
	AvgProduction   float64 `json:"avg_production"`
	AvgEnergy       float64 `json:"avg_energy"`
	DataPoints      int64   `json:"data_points"`
}
