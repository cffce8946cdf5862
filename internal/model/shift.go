package model

import "time"

// Shift types.
const (
	ShiftMorning = "Morning"
	ShiftEvening = "Evening"
	ShiftNight   = "Night"
)

// ValidShiftType reports whether t names one of the three shifts.
func ValidShiftType(t string) bool {
	return t == ShiftMorning || t == ShiftEvening || t == ShiftNight
}

// Shift maps to the shifts table.
// StartTime/EndTime are derived from (ShiftType, ScheduledDate) once at
// assignment and never edited afterwards. A partial unique index keeps at
// most one non-completed shift per (loom, scheduled_date, shift_type).
type Shift struct {
	ShiftID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	LoomID           string     `gorm:"type:uuid;not null"                             json:"loom_id"`
	WeaverID         string     `gorm:"type:uuid;not null"                             json:"weaver_id"`
	ShiftType        string     `gorm:"type:varchar(20);not null"                      json:"shift_type"`
	ScheduledDate    time.Time  `gorm:"type:date;not null"                             json:"scheduled_date"`
	StartTime        time.Time  `gorm:"not null"                                       json:"start_time"`
	EndTime          time.Time  `gorm:"not null"                                       json:"end_time"`
	Completed        bool       `gorm:"not null;default:false"                         json:"completed"`
	AttendanceMarked bool       `gorm:"not null;default:false"                         json:"attendance_marked"`
	ActualStartTime  *time.Time `json:"actual_start_time,omitempty"`
	ActualEndTime    *time.Time `json:"actual_end_time,omitempty"`
	BaseModel

	Loom   *Loom `gorm:"foreignKey:LoomID;references:LoomID"   json:"loom,omitempty"`
	Weaver *User `gorm:"foreignKey:WeaverID;references:UserID" json:"weaver,omitempty"`
}

func (Shift) TableName() string { return "shifts" }

// Started reports whether the assigned weaver ever ran the loom in this shift.
func (s *Shift) Started() bool {
	return s.ActualStartTime != nil
}

// WindowContains reports whether t falls inside the half-open window
// [StartTime, EndTime).
func (s *Shift) WindowContains(t time.Time) bool {
	return !t.Before(s.StartTime) && t.Before(s.EndTime)
}

// Expired reports whether the shift's window has fully elapsed at now.
func (s *Shift) Expired(now time.Time) bool {
	return now.After(s.EndTime)
}
