package services

import (
	"testing"

	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFixturesIsDeterministic(t *testing.T) {
	a := generateFixtures(10, 42, fixedToday)
	b := generateFixtures(10, 42, fixedToday)
	assert.Equal(t, a, b)

	assert.Len(t, a.Clubs, 3)
	assert.Len(t, a.Athletes, 10)
	assert.Len(t, a.Tutors, 5)
	assert.Len(t, a.Links, 5)
	assert.Len(t, a.Coaches, 3)
	assert.Len(t, a.Events, 3)
	assert.Len(t, a.Persons, 10+5+3)

	c := generateFixtures(10, 43, fixedToday)
	assert.NotEqual(t, a.Clubs[0].Name, c.Clubs[0].Name)
}

func TestGenerateFixturesMinorsHaveAdultTutors(t *testing.T) {
	fx := generateFixtures(20, 7, fixedToday)
	byDoc := map[string]int{}
	for _, p := range fx.Persons {
		byDoc[p.Document] = CalculateAge(p.BirthDate, fixedToday)
	}
	require.Len(t, byDoc, len(fx.Persons), "documents are unique")

	for i, a := range fx.Athletes {
		if i%2 == 0 {
			assert.Less(t, byDoc[a.Document], AgeOfMajority)
		} else {
			assert.GreaterOrEqual(t, byDoc[a.Document], AgeOfMajority)
		}
		if i%7 == 6 {
			assert.Empty(t, a.ClubName)
		}
	}
	for _, l := range fx.Links {
		assert.Less(t, byDoc[l.AthleteDocument], AgeOfMajority)
		assert.GreaterOrEqual(t, byDoc[l.TutorDocument], 30)
	}
}

func TestSeedTwiceSkipsExistingRecords(t *testing.T) {
	env := newTestEnv(t)
	fx := generateFixtures(6, 1, fixedToday)

	first, err := env.seeder.Seed(bg, fx)
	require.NoError(t, err)
	assert.Empty(t, first.Failed)
	assert.Equal(t, len(fx.Clubs), first.Created[repositories.PathClubs])
	assert.Equal(t, len(fx.Persons), first.Created[repositories.PathPersons])
	assert.Equal(t, len(fx.Links), first.Created[repositories.PathAthleteTutors])
	assert.Equal(t, len(fx.Events), first.Created[repositories.PathEvents])

	second, err := env.seeder.Seed(bg, fx)
	require.NoError(t, err)
	assert.Empty(t, second.Failed)
	assert.Empty(t, second.Created)
	assert.Equal(t, len(fx.Persons), second.Skipped[repositories.PathPersons])
	assert.Equal(t, len(fx.Athletes), second.Skipped[repositories.PathAthletes])
	assert.Equal(t, len(fx.Events), second.Skipped[repositories.PathEvents])

	assert.Equal(t, len(fx.Persons), env.backend.Count("Persona"))
	assert.Equal(t, len(fx.Events), env.backend.Count("Evento"))

	listing, err := env.enrichment.ListAthletes(bg)
	require.NoError(t, err)
	require.Len(t, listing.Athletes, len(fx.Athletes))
	withTutor := 0
	for _, v := range listing.Athletes {
		if v.TutorInfo != nil {
			withTutor++
		}
	}
	assert.Equal(t, len(fx.Links), withTutor)
}
