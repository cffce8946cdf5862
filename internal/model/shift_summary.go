package model

import "time"

// ShiftSummary maps to the shift_summaries table.
// Write-once snapshot taken when a shift's window closes; ShiftID is unique
// so redundant close paths cannot produce duplicate rows.
type ShiftSummary struct {
	SummaryID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"summary_id"`
	ShiftID         string    `gorm:"type:uuid;not null;uniqueIndex"                 json:"shift_id"`
	LoomID          string    `gorm:"type:uuid;not null"                             json:"loom_id"`
	WeaverID        string    `gorm:"type:uuid;not null"                             json:"weaver_id"`
	ShiftType       string    `gorm:"type:varchar(20);not null"                      json:"shift_type"`
	TotalProduction float64   `gorm:"not null;default:0"                             json:"total_production"`
	TotalEnergy     float64   `gorm:"not null;default:0"                             json:"total_energy"`
	StartTime       time.Time `gorm:"not null"                                       json:"start_time"`
	EndTime         time.Time `gorm:"not null"                                       json:"end_time"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Weaver *User `gorm:"foreignKey:WeaverID;references:UserID" json:"weaver,omitempty"`
}

func (ShiftSummary) TableName() string { return "shift_summaries" }
