// Package app wires the client together. Both binaries build one App and
// hand its services to their surfaces.
package app

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/spec-kit/duty-attendance/internal/auth"
	"github.com/spec-kit/duty-attendance/internal/config"
	"github.com/spec-kit/duty-attendance/internal/events"
	"github.com/spec-kit/duty-attendance/internal/gateway"
	"github.com/spec-kit/duty-attendance/internal/observability"
	"github.com/spec-kit/duty-attendance/internal/persistence"
	"github.com/spec-kit/duty-attendance/internal/repository"
	"github.com/spec-kit/duty-attendance/internal/service"
	"github.com/spec-kit/duty-attendance/internal/worker"
)

// App holds the wired services.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Registry   *prometheus.Registry
	Metrics    *observability.Metrics
	Dispatcher events.Dispatcher
	Store      persistence.SessionStore
	Sessions   *service.SessionManager
	Gateway    *gateway.Gateway

	Teachers      *service.TeacherService
	Duties        *service.DutyService
	Attendance    *service.AttendanceService
	Reports       *service.ReportService
	Notifications *service.NotificationService

	redis *persistence.Redis
}

// Options adjusts wiring for a particular binary.
type Options struct {
	// Notices receive user-facing messages such as session expiry.
	Notices []service.NoticeFunc
	// HTTPClient overrides the transport's client.
	HTTPClient *http.Client
	// Store overrides the configured session backend.
	Store persistence.SessionStore
}

// New builds every component in dependency order.
func New(cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	transport, err := gateway.NewTransport(cfg.API, opts.HTTPClient, metrics, logger.Named("gateway"))
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Registry:   registry,
		Metrics:    metrics,
		Dispatcher: events.NewInMemoryDispatcher(),
	}

	a.Store = opts.Store
	if a.Store == nil {
		store, redis, err := NewSessionStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		a.Store = store
		a.redis = redis
	}

	a.Sessions = service.NewSessionManager(service.SessionDependencies{
		Issuer:     gateway.NewAuthAPI(transport),
		Codec:      auth.NewTokenCodec(),
		Store:      a.Store,
		Dispatcher: a.Dispatcher,
		Metrics:    metrics,
		Logger:     logger.Named("session"),
	})
	a.Gateway = gateway.New(transport, a.Store, a.Sessions, metrics, logger.Named("gateway"))

	teacherRepo := repository.NewTeacherRepository(a.Gateway)
	dutyRepo := repository.NewDutyRepository(a.Gateway)
	attendanceRepo := repository.NewAttendanceRepository(a.Gateway)
	reportRepo := repository.NewReportRepository(a.Gateway)

	a.Teachers = service.NewTeacherService(service.TeacherDependencies{
		TeacherRepo: teacherRepo,
		Logger:      logger.Named("teachers"),
	})
	a.Duties = service.NewDutyService(service.DutyDependencies{
		DutyRepo:   dutyRepo,
		Teachers:   a.Teachers,
		Dispatcher: a.Dispatcher,
		Logger:     logger.Named("duties"),
	})
	a.Attendance = service.NewAttendanceService(service.AttendanceDependencies{
		AttendanceRepo: attendanceRepo,
		Dispatcher:     a.Dispatcher,
		Logger:         logger.Named("attendance"),
	})
	a.Reports = service.NewReportService(service.ReportDependencies{
		ReportRepo: reportRepo,
		OutputDir:  cfg.Report.OutputDir,
		Logger:     logger.Named("reports"),
	})

	a.Notifications = service.NewNotificationService(a.Dispatcher, logger.Named("notifications"), opts.Notices...)
	worker.StartNotificationWorker(a.Notifications, logger)

	return a, nil
}

// NewSessionStore opens the configured session backend. The returned
// *persistence.Redis is non-nil only for the redis backend and must be closed.
func NewSessionStore(cfg *config.Config, logger *zap.Logger) (persistence.SessionStore, *persistence.Redis, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		return persistence.NewMemoryStore(), nil, nil
	case config.SessionBackendRedis:
		redis := persistence.NewRedis(cfg.Redis, logger)
		return persistence.NewRedisStore(redis.Client, cfg.Session.RedisKey), redis, nil
	case config.SessionBackendFile, "":
		return persistence.NewFileStore(cfg.Session.FilePath, cfg.Session.Passphrase), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

// Redis returns the Redis connection backing the session store, or nil.
func (a *App) Redis() *persistence.Redis {
	return a.redis
}

// Close releases connections held by the app.
func (a *App) Close() {
	a.redis.Close()
}
