package repository

import "gorm.io/gorm"

// Repository aggregates all data-access interfaces.
type Repository struct {
	User    UserRepository
	Loom    LoomRepository
	Shift   ShiftRepository
	Reading SensorReadingRepository
	Summary ShiftSummaryRepository
}

// NewRepository wires the GORM implementations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:    NewUserRepo(db),
		Loom:    NewLoomRepo(db),
		Shift:   NewShiftRepo(db),
		Reading: NewSensorReadingRepo(db),
		Summary: NewShiftSummaryRepo(db),
	}
}
