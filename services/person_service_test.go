package services

import (
	"net/http"
	"testing"

	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCreatesOnceAndReusesAfterwards(t *testing.T) {
	env := newTestEnv(t)
	input := models.Person{FirstName: "Ana", LastName: "Paz", Document: " 30111222 "}

	first, created, err := env.persons.Resolve(bg, input)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)
	assert.Equal(t, "30111222", first.Document)

	second, created, err := env.persons.Resolve(bg, input)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, env.backend.Count("Persona"))
}

func TestResolveRecoversFromConcurrentCreate(t *testing.T) {
	env := newTestEnv(t)
	id := env.seedPerson("30111222", "Ana", "Paz", "", "", "")
	// The first lookup misses as if the record was created right after it.
	env.backend.Fail(http.MethodGet, "/Persona/documento", http.StatusNotFound, "", 1)

	person, created, err := env.persons.Resolve(bg, models.Person{Document: "30111222"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, person.ID)
	assert.Equal(t, 1, env.backend.Count("Persona"))
}

func TestResolveRequiresDocument(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.persons.Resolve(bg, models.Person{FirstName: "Sin"})
	assert.ErrorIs(t, err, ErrDocumentRequired)

	_, err = env.persons.Find(bg, "  ")
	assert.ErrorIs(t, err, ErrDocumentRequired)
}

func TestFindMapsMissAndUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.persons.Find(bg, "999")
	assert.ErrorIs(t, err, ErrPersonNotFound)

	env.backend.Fail(http.MethodGet, "/Persona/documento", http.StatusInternalServerError, "down", 1)
	_, err = env.persons.Find(bg, "999")
	assert.ErrorIs(t, err, ErrUpstream)
}
