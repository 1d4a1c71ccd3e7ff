// Package app builds the portal from configuration: storage, media and event
// backends, services and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/config"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/events"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/handler"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/handler/legacy"
	v1 "github.com/dmehra2102/prod-golang-projects/myhealth/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/media"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/responder"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/scheduler"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/service"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/store"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Router *gin.Engine

	log       *zap.Logger
	db        *gorm.DB
	tasks     *scheduler.Scheduler
	audit     *service.AuditService
	publisher events.Publisher
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewCollector(cfg.App.Name, reg)

	a := &App{log: log}

	base, err := a.openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	records := store.Instrumented(base, func(op string, d time.Duration) {
		m.StoreOpDuration.WithLabelValues(op).Observe(d.Seconds())
	})

	images, err := openMedia(ctx, cfg.Media)
	if err != nil {
		a.closeDB()
		return nil, err
	}

	a.publisher = openPublisher(cfg.Events, log)
	a.tasks = scheduler.New(log)

	gen := responder.New(cfg.Simulation.RandomSeed)
	repos := repository.New(records, log)
	jwtManager := auth.NewJWTManager(cfg.JWT)
	a.audit = service.NewAuditService(repos.Audit(), m, log)

	authSvc := service.NewAuthService(repos.Users(), repos.Session, jwtManager, gen, a.audit, a.publisher, m, log)
	svc := v1.Services{
		Patients:     service.NewPatientService(repos.Patients(), a.audit, a.publisher, m, log),
		Appointments: service.NewAppointmentService(repos.Appointments, a.audit, a.publisher, m, log),
		Medications:  service.NewMedicationService(repos.Medications, repos.DrugChecks, gen, a.audit, a.publisher, m, log),
		Chat:         service.NewChatService(repos.Conversations, a.tasks, gen, cfg.Simulation.ChatReplyDelay, a.publisher, m, log),
		Dermatology: service.NewDermatologyService(repos.Analyses, repos.Records, images, a.tasks, gen,
			service.DermatologyConfig{
				ProgressInterval: cfg.Simulation.ProgressInterval,
				MaxUploadBytes:   cfg.Media.MaxUploadBytes,
			},
			a.audit, a.publisher, m, log),
		Records:  service.NewMedicalRecordService(repos.Records, a.audit, log),
		Contact:  service.NewContactService(repos.Contacts(), a.publisher, m, log),
		Auth:     authSvc,
		Sessions: service.NewSessionService(a.tasks, authSvc, log),
		Stats:    service.NewStatsService(repos.Patients(), repos.Users(), repos.Contacts()),
		Audit:    a.audit,
	}

	a.Router = handler.NewRouter(handler.RouterDeps{
		Config:   cfg,
		Log:      log,
		Metrics:  m,
		Gatherer: reg,
		API:      v1.NewHandler(svc, jwtManager, cfg, log),
		Legacy:   legacy.NewHandler(log),
		Ready:    a.ping,
	})

	return a, nil
}

func (a *App) openStore(cfg *config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.Store.Backend != config.StoreBackendPostgres {
		log.Info("using in-memory record store")
		return store.NewMemoryStore(), nil
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	a.db = db
	if err := database.Migrate(db, log); err != nil {
		a.closeDB()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	log.Info("using postgres record store", zap.String("host", cfg.Database.Host))
	return store.NewGormStore(db), nil
}

func openMedia(ctx context.Context, cfg config.MediaConfig) (media.Store, error) {
	if cfg.Backend != config.MediaBackendS3 {
		return media.NewMemoryStore(), nil
	}
	client, err := media.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}
	return media.NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix), nil
}

func openPublisher(cfg config.EventsConfig, log *zap.Logger) events.Publisher {
	if cfg.Backend != config.EventsBackendKafka {
		return events.NewLogPublisher(log)
	}
	return events.NewKafkaPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
}

func (a *App) ping(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Shutdown stops background work in dependency order: scheduled tasks first,
// then the audit worker, then the event publisher and the database.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if err := a.tasks.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stopping scheduler: %w", err))
	}
	a.audit.Shutdown()
	if err := a.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing event publisher: %w", err))
	}
	if err := a.closeDB(); err != nil {
		errs = append(errs, fmt.Errorf("closing database: %w", err))
	}

	return errors.Join(errs...)
}

func (a *App) closeDB() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
