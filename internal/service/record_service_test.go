package service

import (
	"context"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/contact"
	mr "github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medical_record"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/patient"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedicalRecordService_SeededFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewMedicalRecordService(env.repos.Records, env.audit, env.log)

	records, err := svc.List(ctx, caller("s1"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Dr. Ahmed Hassan", records[0].Doctor)
	assert.Equal(t, "2026-01-20", records[0].Date)

	added, err := svc.Add(ctx, caller("s1"), &mr.CreateRecordCommand{
		Type:      mr.TypeLabReport,
		Doctor:    "Dr. Mai Salem",
		Diagnosis: "CBC within range",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, added.Date)

	records, err = svc.List(ctx, caller("s1"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, added.ID, records[1].ID)

	got, err := svc.Get(ctx, caller("s1"), added.ID)
	require.NoError(t, err)
	assert.Equal(t, "CBC within range", got.Diagnosis)

	_, err = svc.Get(ctx, caller("s2"), added.ID)
	assert.ErrorIs(t, err, mr.ErrRecordNotFound)

	_, err = svc.Add(ctx, caller("s1"), &mr.CreateRecordCommand{Type: "x-ray", Date: "yesterday"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)
}

func TestContactService_Submit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewContactService(env.repos.Contacts(), env.pub, env.metrics, env.log)

	m, err := svc.Submit(ctx, caller("s1"), &contact.SubmitCommand{
		Name:    "Omar",
		Email:   "Omar@Example.com",
		Message: "Do you accept walk-ins?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "omar@example.com", m.Email)

	_, err = svc.Submit(ctx, caller("s1"), &contact.SubmitCommand{Name: "Omar", Email: "nope"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestStatsService_Platform(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	patients := NewPatientService(env.repos.Patients(), env.audit, env.pub, env.metrics, env.log)
	_, err := patients.Register(ctx, caller("s1"), &patient.RegisterPatientCommand{Name: "Hana", Sex: patient.SexFemale})
	require.NoError(t, err)

	users := env.repos.Users()
	for i, role := range []domain.Role{domain.RoleDoctor, domain.RolePatient, domain.RoleDoctor} {
		require.NoError(t, users.Create(ctx, &domain.User{
			ID:         uuid.New(),
			Email:      string(rune('a'+i)) + "@example.com",
			NationalID: string(rune('0' + i)),
			Role:       role,
		}))
	}

	stats, err := NewStatsService(env.repos.Patients(), users, env.repos.Contacts()).Platform(ctx)
	require.NoError(t, err)
	assert.Equal(t, &PlatformStats{
		TotalPatients:    1,
		RegisteredUsers:  3,
		TotalDoctors:     2,
		ContactMessages:  0,
		SupportAvailable: "24/7",
	}, stats)
}
