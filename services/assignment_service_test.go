package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignTutorUpdatesExistingRecord(t *testing.T) {
	env := newTestEnv(t)
	person := env.seedPerson("222", "Marta", "Ruiz", "", "marta@example.org", "341-555")
	env.seedTutor(person)

	result, err := env.assign.AssignTutor(bg, AssignTutorInput{PersonID: person, TutorType: "Madre"})
	require.NoError(t, err)

	assert.Equal(t, AssignmentUpdated, result.Outcome)
	rec, ok := env.backend.Record("Tutor", person)
	require.True(t, ok)
	assert.Equal(t, "Madre", rec["tipoTutor"])
	assert.Equal(t, "Marta", rec["nombre"])
	assert.Equal(t, "222", rec["documento"])
	assert.Equal(t, "conservar", rec["notas"], "fields unknown to the model survive the update")
	assert.Equal(t, 1, env.backend.Count("Tutor"))
}

func TestAssignTutorCreatesWhenAbsent(t *testing.T) {
	env := newTestEnv(t)
	person := env.seedPerson("222", "Marta", "Ruiz", "", "", "")

	result, err := env.assign.AssignTutor(bg, AssignTutorInput{PersonID: person, TutorType: "Madre"})
	require.NoError(t, err)

	assert.Equal(t, AssignmentCreated, result.Outcome)
	rec, ok := env.backend.Record("Tutor", person)
	require.True(t, ok)
	assert.Equal(t, "Ruiz", rec["apellido"])

	_, err = env.assign.AssignTutor(bg, AssignTutorInput{PersonID: 4040, TutorType: "Madre"})
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestAssignDelegateCreateThenUpdate(t *testing.T) {
	env := newTestEnv(t)
	club := env.seedClub("Club Regatas")
	person := env.seedPerson("555", "Luis", "Gil", "", "", "")

	created, err := env.assign.AssignDelegate(bg, AssignDelegateInput{PersonID: person, RoleID: 1, FederationID: 1})
	require.NoError(t, err)
	assert.Equal(t, AssignmentCreated, created.Outcome)

	updated, err := env.assign.AssignDelegate(bg, AssignDelegateInput{PersonID: person, ClubID: ptr(club), RoleID: 2, FederationID: 1})
	require.NoError(t, err)
	assert.Equal(t, AssignmentUpdated, updated.Outcome)

	rec, ok := env.backend.Record("DelegadoClub", person)
	require.True(t, ok)
	assert.EqualValues(t, club, rec["idClub"])
	assert.EqualValues(t, 2, rec["idRol"])
	assert.Equal(t, 1, env.backend.Count("DelegadoClub"))
}

func TestAssignTutorRejectsMissingType(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.assign.AssignTutor(bg, AssignTutorInput{PersonID: 1})
	assert.ErrorIs(t, err, ErrValidationFailed)
}
