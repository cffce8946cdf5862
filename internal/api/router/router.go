package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iniyan007/Power-loom-production-monitoring-app/config"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/api/handler"
	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/api/middleware"
	"github.com/iniyan007/Power-loom-production-monitoring-app/pkg/jwt"
	"github.com/iniyan007/Power-loom-production-monitoring-app/pkg/redis"
)

// Setup builds the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── health check ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// auth module (no authentication)
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 20, time.Minute))
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
		}

		// sensor ingestion; loom controllers authenticate at the network
		// layer, not with JWTs
		v1.POST("/sensor/data",
			middleware.RateLimit(rdb, 600, time.Minute),
			h.Sensor.IngestReading,
		)

		// authenticated routes
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// loom module
			looms := authorized.Group("/looms")
			{
				looms.GET("", h.Loom.ListLooms)
				looms.POST("", middleware.RoleAuth("admin"), h.Loom.CreateLoom)
				looms.DELETE("/:id", middleware.RoleAuth("admin"), h.Loom.DeleteLoom)
				looms.GET("/:id/shifts", h.Loom.ListLoomShifts)
				looms.POST("/:id/start", h.Loom.StartLoom)
				looms.POST("/:id/stop", h.Loom.StopLoom)
				looms.POST("/:id/unassign", middleware.RoleAuth("admin"), h.Loom.UnassignLoom)
			}

			authorized.GET("/weavers", middleware.RoleAuth("admin"), h.Loom.ListWeavers)

			// shift module
			shifts := authorized.Group("/shifts")
			{
				shifts.POST("/assign", middleware.RoleAuth("admin"), h.Shift.AssignShift)
				shifts.GET("/my-active", h.Shift.MyActiveShifts)
				shifts.GET("/my-upcoming", h.Shift.MyUpcomingShifts)
				shifts.DELETE("/:id", middleware.RoleAuth("admin"), h.Shift.DeleteShift)
				shifts.POST("/:id/attendance", h.Shift.MarkAttendance)
				shifts.POST("/:id/end", h.Shift.EndShift)
				shifts.POST("/sweep", middleware.RoleAuth("admin"), h.Shift.SweepShifts)
			}

			// sensor read module
			sensor := authorized.Group("/sensor")
			{
				sensor.GET("/live/:loomId", h.Sensor.LiveSeries)
				sensor.GET("/latest/:loomId", h.Sensor.LatestReading)
				sensor.GET("/history/:loomId", h.Sensor.SessionHistory)
				sensor.GET("/stats/:loomId", h.Sensor.ReadingStats)
			}

			// export module
			authorized.GET("/export/summaries/:loomId", middleware.RoleAuth("admin"), h.Export.ExportSummaries)
		}
	}

	return r
}
