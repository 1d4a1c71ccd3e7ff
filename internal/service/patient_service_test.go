package service

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/patient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPatientService(t *testing.T) *PatientService {
	env := newTestEnv(t)
	return NewPatientService(env.repos.Patients(), env.audit, env.pub, env.metrics, env.log)
}

func TestPatientService_RegisterAndSearch(t *testing.T) {
	ctx := context.Background()
	svc := newPatientService(t)

	for _, name := range []string{"zoe", "Adam", "mona"} {
		_, err := svc.Register(ctx, caller("s1"), &patient.RegisterPatientCommand{
			Name: name,
			Age:  30,
			Sex:  patient.SexFemale,
		})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Adam", "mona", "zoe"}, []string{all[0].Name, all[1].Name, all[2].Name})

	ordered, err := svc.ListInRegistrationOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "zoe", ordered[0].Name)

	found, err := svc.Search(ctx, patient.SearchQuery{Query: "ON"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "mona", found[0].Name)

	byID, err := svc.Search(ctx, patient.SearchQuery{Query: all[0].ID})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, all[0].ID, byID[0].ID)
}

func TestPatientService_IDsUniqueAtSameInstant(t *testing.T) {
	ctx := context.Background()
	svc := newPatientService(t)
	svc.now = fixedClock(time.UnixMilli(1_767_225_600_000))

	a, err := svc.Register(ctx, caller("s1"), &patient.RegisterPatientCommand{Name: "A", Sex: patient.SexMale})
	require.NoError(t, err)
	b, err := svc.Register(ctx, caller("s1"), &patient.RegisterPatientCommand{Name: "B", Sex: patient.SexMale})
	require.NoError(t, err)

	assert.Equal(t, "MH1767225600000", a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPatientService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newPatientService(t)

	_, err := svc.Register(ctx, caller("s1"), &patient.RegisterPatientCommand{Name: "  ", Age: 200, Sex: "unknown"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "a rejected registration writes nothing")
}
