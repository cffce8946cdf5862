package handler

import "github.com/iniyan007/Power-loom-production-monitoring-app/internal/service"

// Handler aggregates all HTTP handlers.
type Handler struct {
	Auth   *AuthHandler
	Loom   *LoomHandler
	Shift  *ShiftHandler
	Sensor *SensorHandler
	Export *ExportHandler
}

// NewHandler wires handlers to their services.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(svc.Auth),
		Loom:   NewLoomHandler(svc.Loom, svc.Shift),
		Shift:  NewShiftHandler(svc.Shift, svc.Sweeper),
		Sensor: NewSensorHandler(svc.Sensor, svc.Location),
		Export: NewExportHandler(svc.Export, svc.Location),
	}
}
