package model

import "time"

// Loom run states.
const (
	RunStatusStopped = "stopped"
	RunStatusRunning = "running"
)

// Loom maps to the looms table.
// Invariant (enforced by a DB check constraint and the CAS transitions):
// run_status is running exactly when running_since is set.
type Loom struct {
	LoomID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"loom_id"`
	HumanLoomID     string     `gorm:"type:varchar(50);not null;uniqueIndex"          json:"human_loom_id"`
	RunStatus       string     `gorm:"type:varchar(20);not null;default:'stopped'"    json:"run_status"`
	RunningSince    *time.Time `json:"running_since,omitempty"`
	CurrentWeaverID *string    `gorm:"type:uuid"                                      json:"current_weaver_id,omitempty"`
	BaseModel

	CurrentWeaver *User `gorm:"foreignKey:CurrentWeaverID;references:UserID" json:"current_weaver,omitempty"`
}

func (Loom) TableName() string { return "looms" }

// IsRunning reports whether the loom has an open session.
func (l *Loom) IsRunning() bool {
	return l.RunStatus == RunStatusRunning && l.RunningSince != nil
}
