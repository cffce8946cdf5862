package model

import "time"

// SensorReading maps to the sensor_readings table.
// Production and Energy are cumulative totals since the loom's session
// start, not deltas. Readings are immutable once written; cleanup is
// purge-by-age only.
type SensorReading struct {
	ReadingID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"reading_id"`
	LoomID     string    `gorm:"type:uuid;not null;index:idx_readings_loom_ts"  json:"loom_id"`
	Timestamp  time.Time `gorm:"column:ts;not null;index:idx_readings_loom_ts"  json:"timestamp"`
	Production float64   `gorm:"not null;default:0"                             json:"production"` // meters
	Energy     float64   `gorm:"not null;default:0"                             json:"energy"`     // kWh
}

func (SensorReading) TableName() string { return "sensor_readings" }
