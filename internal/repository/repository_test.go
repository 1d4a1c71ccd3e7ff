package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/chat"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRepos() *Repositories {
	return New(store.NewMemoryStore(), zap.NewNop())
}

func TestPatientRepository_IDsStayUniqueWithinSameMillisecond(t *testing.T) {
	ctx := context.Background()
	repo := newRepos().Patients()
	at := time.UnixMilli(1_768_000_000_000)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Create(ctx, &patient.Patient{Name: "Same Time"}, at))
		}()
	}
	wg.Wait()

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, n)

	seen := map[string]bool{}
	for _, p := range all {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
	assert.True(t, seen["MH1768000000000"])
}

func TestAppointmentRepository_Conflicts(t *testing.T) {
	ctx := context.Background()
	repo := newRepos().Appointments("s1")

	first := &appointment.Appointment{ID: uuid.NewString(), Doctor: "Dr. Sara Ali", Date: "2030-01-02", Time: "09:00", Status: appointment.StatusConfirmed}
	clash := &appointment.Appointment{ID: uuid.NewString(), Doctor: "Dr. Sara Ali", Date: "2030-01-02", Time: "09:00", Status: appointment.StatusConfirmed}
	other := &appointment.Appointment{ID: uuid.NewString(), Doctor: "Dr. Sara Ali", Date: "2030-01-02", Time: "10:00", Status: appointment.StatusConfirmed}

	require.NoError(t, repo.Create(ctx, first))
	assert.ErrorIs(t, repo.Create(ctx, clash), appointment.ErrAppointmentConflict)
	require.NoError(t, repo.Create(ctx, other))

	// Moving onto a taken slot is rejected and leaves the booking untouched.
	_, err := repo.Update(ctx, other.ID, func(a *appointment.Appointment) error {
		return a.Reschedule("2030-01-02", "09:00", time.Now())
	})
	assert.ErrorIs(t, err, appointment.ErrAppointmentConflict)

	got, err := repo.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:00", got.Time)

	// A cancelled booking frees its slot.
	_, err = repo.Update(ctx, first.ID, func(a *appointment.Appointment) error {
		return a.Cancel("", time.Now())
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, clash))

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
}

func TestMedicationListRepository(t *testing.T) {
	ctx := context.Background()
	repo := newRepos().Medications("s1")

	list, err := repo.Add(ctx, "Aspirin")
	require.NoError(t, err)
	assert.Equal(t, []string{"Aspirin"}, list)

	list, err = repo.Add(ctx, "Ibuprofen")
	require.NoError(t, err)
	assert.Equal(t, []string{"Aspirin", "Ibuprofen"}, list)

	_, err = repo.Add(ctx, "Aspirin")
	assert.ErrorIs(t, err, medication.ErrDuplicateMedication)

	require.NoError(t, repo.Remove(ctx, "Aspirin"))
	assert.ErrorIs(t, repo.Remove(ctx, "Aspirin"), medication.ErrMedicationNotFound)

	require.NoError(t, repo.Clear(ctx))
	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDrugCheckRepository_HistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newRepos().DrugChecks("s1")
	base := time.UnixMilli(1_768_000_000_000)

	for i := 0; i < 3; i++ {
		res := &medication.CheckResult{Drugs: []string{"a", "b"}, RiskLevel: medication.SeveritySafe, CheckedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, repo.Save(ctx, res))
		assert.Equal(t, store.TimestampKey("drugCheck", res.CheckedAt.UnixMilli()), res.ID)
	}

	history, err := repo.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].CheckedAt.After(history[2].CheckedAt))
}

func TestConversationRepository(t *testing.T) {
	ctx := context.Background()
	repo := newRepos().Conversations("s1")

	c := &chat.Conversation{Doctor: chat.DefaultDoctor, StartedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, c, c.StartedAt))
	require.NotEmpty(t, c.ID)

	got, err := repo.AppendMessage(ctx, c.ID, chat.Message{ID: "m1", Sender: chat.SenderPatient, Text: "hi"})
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)

	_, err = repo.Get(ctx, "currentUser")
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)

	_, err = repo.AppendMessage(ctx, "chat_1", chat.Message{})
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}

func TestUserRepository_RejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := newRepos().Users()

	u := &domain.User{ID: uuid.New(), Email: "amina@example.com", NationalID: "784-1990-1"}
	require.NoError(t, repo.Create(ctx, u))

	sameEmail := &domain.User{ID: uuid.New(), Email: "amina@example.com", NationalID: "784-1990-2"}
	assert.ErrorIs(t, repo.Create(ctx, sameEmail), domain.ErrEmailTaken)

	// The failed attempt released its national ID reservation.
	freed := &domain.User{ID: uuid.New(), Email: "omar@example.com", NationalID: "784-1990-2"}
	require.NoError(t, repo.Create(ctx, freed))

	sameNID := &domain.User{ID: uuid.New(), Email: "layla@example.com", NationalID: "784-1990-1"}
	assert.ErrorIs(t, repo.Create(ctx, sameNID), domain.ErrNationalIDTaken)

	got, err := repo.GetByEmail(ctx, "AMINA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSessionRepository_MarkerLifecycle(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	sess := repos.Session("s1")

	_, err := sess.CurrentUser(ctx)
	assert.ErrorIs(t, err, domain.ErrAnonymous)

	require.NoError(t, sess.SetCurrentUser(ctx, &domain.SessionMarker{Email: "amina@example.com"}))
	m, err := sess.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "amina@example.com", m.Email)

	// Other sessions stay anonymous.
	_, err = repos.Session("s2").CurrentUser(ctx)
	assert.ErrorIs(t, err, domain.ErrAnonymous)

	require.NoError(t, sess.ClearCurrentUser(ctx))
	require.NoError(t, sess.ClearCurrentUser(ctx))
	_, err = sess.CurrentUser(ctx)
	assert.ErrorIs(t, err, domain.ErrAnonymous)
}

func TestAuditRepository_Retention(t *testing.T) {
	ctx := context.Background()
	repo := newRepos().Audit()
	repo.retention = 10

	for i := 0; i < 13; i++ {
		require.NoError(t, repo.Create(ctx, &domain.AuditLog{ID: uuid.New(), Action: domain.ActionCreate}))
	}
	recent, err := repo.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 10)
}
