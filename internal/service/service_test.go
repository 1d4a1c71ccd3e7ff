package service

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/events"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/scheduler"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/store"
	"github.com/dmehra2102/prod-golang-projects/myhealth/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type testEnv struct {
	repos   *repository.Repositories
	audit   *AuditService
	pub     events.Publisher
	metrics *metrics.Collector
	tasks   *scheduler.Scheduler
	log     *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := zap.NewNop()
	m := metrics.NewCollector("myhealth-test", prometheus.NewRegistry())
	repos := repository.New(store.NewMemoryStore(), log)
	auditSvc := NewAuditService(repos.Audit(), m, log)
	tasks := scheduler.New(log)

	// Cleanups run last-in first-out: the scheduler stops before the audit worker.
	t.Cleanup(auditSvc.Shutdown)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = tasks.Shutdown(ctx)
	})

	return &testEnv{
		repos:   repos,
		audit:   auditSvc,
		pub:     events.NewLogPublisher(log),
		metrics: m,
		tasks:   tasks,
		log:     log,
	}
}

func caller(session string) Caller {
	return Caller{SessionID: session, IP: "127.0.0.1", RequestID: "req-" + session}
}

// fixedClock returns a now func pinned to t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
