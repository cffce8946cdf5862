package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/iniyan007/Power-loom-production-monitoring-app/config"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/repository"
	"github.com/iniyan007/Power-loom-production-monitoring-app/pkg/jwt"
	"github.com/iniyan007/Power-loom-production-monitoring-app/pkg/redis"
)

// Service aggregates all business services.
type Service struct {
	Auth    AuthService
	Loom    LoomService
	Shift   ShiftService
	Sweeper SweeperService
	Sensor  SensorService
	Export  ExportService

	// Location is the facility timezone; handlers use it to interpret
	// calendar-date query parameters.
	Location *time.Location
}

// NewService wires the service graph.
// The facility timezone and clock are shared so every window computation
// and expiry decision sees the same notion of local time.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		// config.Validate rejects bad zones before we get here
		loc = time.Local
	}
	clock := SystemClock()

	sweeper := NewSweeperService(repo, clock, loc, cfg.Sweeper.ReadingRetention, logger)

	return &Service{
		Auth:     NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Loom:     NewLoomService(repo, clock, loc, logger),
		Shift:    NewShiftService(repo, sweeper, clock, loc, logger),
		Sweeper:  sweeper,
		Sensor:   NewSensorService(repo, clock, cfg.Sensor.LiveSeriesCap, logger),
		Export:   NewExportService(repo, logger),
		Location: loc,
	}
}
