package services

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAthleteViewsFreeAgentWithoutTutor(t *testing.T) {
	snap := Snapshot{
		Persons:  []models.Person{{ID: 1, Document: "111"}},
		Athletes: []models.Athlete{{PersonID: 1, ClubID: nil}},
	}

	listing := BuildAthleteViews(snap, fixedToday)

	require.Len(t, listing.Athletes, 1)
	view := listing.Athletes[0]
	assert.Equal(t, "Agente Libre", view.ClubName)
	assert.Nil(t, view.TutorInfo)
	assert.Equal(t, "111", view.Document)
	assert.Equal(t, "-", view.FullName)
	assert.Equal(t, -1, view.Age)
	assert.Equal(t, "-", view.AgeLabel)

	data, err := json.Marshal(view)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Agente Libre", raw["nombreClub"])
	assert.Contains(t, raw, "tutorInfo")
	assert.Nil(t, raw["tutorInfo"])
}

func TestBuildAthleteViewsUnknownClubFallsBackToPlaceholder(t *testing.T) {
	snap := Snapshot{
		Persons:  []models.Person{{ID: 1, FirstName: "Ana", LastName: "Paz"}},
		Athletes: []models.Athlete{{PersonID: 1, ClubID: ptr(99)}},
		Clubs:    []models.Club{{ID: 5, Name: "Regatas"}},
	}

	listing := BuildAthleteViews(snap, fixedToday)

	require.Len(t, listing.Athletes, 1)
	assert.Equal(t, "-", listing.Athletes[0].ClubName)
	assert.Equal(t, "Ana Paz", listing.Athletes[0].FullName)
}

func TestBuildAthleteViewsFirstLinkWinsAndIssuesAreReported(t *testing.T) {
	snap := Snapshot{
		Persons: []models.Person{
			{ID: 1, FirstName: "Tomás", LastName: "Ruiz", BirthDate: models.NewDate(2010, time.April, 12)},
			{ID: 2, FirstName: "Marta", LastName: "Ruiz", Phone: "341-555"},
			{ID: 3, FirstName: "Jorge", LastName: "Ruiz"},
		},
		Athletes: []models.Athlete{{PersonID: 1, ClubID: ptr(7)}},
		Tutors:   []models.Tutor{{PersonID: 2}, {PersonID: 3}},
		Links: []models.AthleteTutor{
			{ID: 10, AthleteID: 1, TutorID: 2, Relationship: models.RelationshipParent},
			{ID: 11, AthleteID: 1, TutorID: 3, Relationship: models.RelationshipParent},
			{ID: 12, AthleteID: 40, TutorID: 2},
			{ID: 13, AthleteID: 1, TutorID: 50},
		},
		Clubs: []models.Club{{ID: 7, Name: "Club Náutico Hacoaj"}},
	}

	listing := BuildAthleteViews(snap, fixedToday)

	require.Len(t, listing.Athletes, 1)
	view := listing.Athletes[0]
	require.NotNil(t, view.TutorInfo)
	assert.Equal(t, 2, view.TutorInfo.TutorID)
	assert.Equal(t, "Marta Ruiz", view.TutorInfo.FullName)
	assert.Equal(t, "341-555", view.TutorInfo.Phone)
	assert.Equal(t, "-", view.TutorInfo.Email)
	assert.Equal(t, 3, view.TutorCount)
	assert.Equal(t, 14, view.Age)
	assert.True(t, view.IsMinor)
	assert.Equal(t, "Club Náutico Hacoaj", view.ClubName)

	require.Len(t, listing.DuplicateLinks, 2)
	assert.Equal(t, 11, listing.DuplicateLinks[0].LinkID)
	assert.Equal(t, models.LinkIssueDuplicate, listing.DuplicateLinks[0].Reason)

	require.Len(t, listing.DanglingLinks, 2)
	assert.Equal(t, models.LinkIssueMissingAthlete, listing.DanglingLinks[0].Reason)
	assert.Equal(t, 12, listing.DanglingLinks[0].LinkID)
	assert.Equal(t, models.LinkIssueMissingTutor, listing.DanglingLinks[1].Reason)
	assert.Equal(t, 13, listing.DanglingLinks[1].LinkID)
}

func TestBuildAthleteViewsMissingPersonIsFlagged(t *testing.T) {
	listing := BuildAthleteViews(Snapshot{Athletes: []models.Athlete{{PersonID: 8}}}, fixedToday)

	require.Len(t, listing.Athletes, 1)
	assert.True(t, listing.Athletes[0].PersonMissing)
	assert.Equal(t, "-", listing.Athletes[0].FullName)
	assert.Empty(t, listing.DuplicateLinks)
	assert.Empty(t, listing.DanglingLinks)
}

func TestBuildTutorViewsListsEveryLinkedAthlete(t *testing.T) {
	snap := Snapshot{
		Persons: []models.Person{
			{ID: 1, FirstName: "Leo", LastName: "Sosa", BirthDate: models.NewDate(2012, time.May, 1)},
			{ID: 2, FirstName: "Mia", LastName: "Sosa"},
			{ID: 3, FirstName: "Raúl", LastName: "Sosa", Document: "222"},
		},
		Tutors: []models.Tutor{{PersonID: 3, TutorType: "Padre"}, {PersonID: 9, FirstName: "Sin", LastName: "Persona"}},
		Links: []models.AthleteTutor{
			{AthleteID: 1, TutorID: 3},
			{AthleteID: 2, TutorID: 3, Relationship: models.RelationshipLegalGuardian},
		},
	}

	listing := BuildTutorViews(snap, fixedToday)

	require.Len(t, listing.Tutors, 2)
	assert.Equal(t, "Raúl Sosa", listing.Tutors[0].FullName)
	assert.Equal(t, "222", listing.Tutors[0].Document)
	require.Len(t, listing.Tutors[0].Athletes, 2)
	assert.Equal(t, "Leo Sosa", listing.Tutors[0].Athletes[0].FullName)
	assert.Equal(t, 11, listing.Tutors[0].Athletes[0].Age)

	assert.Equal(t, "Sin Persona", listing.Tutors[1].FullName)
	assert.NotNil(t, listing.Tutors[1].Athletes)
	assert.Empty(t, listing.Tutors[1].Athletes)
}

func TestBuildCoachViewsResolvesClub(t *testing.T) {
	snap := Snapshot{
		Persons: []models.Person{{ID: 4, FirstName: "Eva", LastName: "Luna"}},
		Coaches: []models.Coach{{PersonID: 4, ClubID: ptr(1)}, {PersonID: 5}},
		Clubs:   []models.Club{{ID: 1, Name: "CAR"}},
	}

	listing := BuildCoachViews(snap, fixedToday)

	require.Len(t, listing.Coaches, 2)
	assert.Equal(t, "CAR", listing.Coaches[0].ClubName)
	assert.Equal(t, "Eva Luna", listing.Coaches[0].FullName)
	assert.Equal(t, "Agente Libre", listing.Coaches[1].ClubName)
	assert.Equal(t, "-", listing.Coaches[1].FullName)
}

func TestListAthletesJoinsBackendCollections(t *testing.T) {
	env := newTestEnv(t)
	clubID := env.seedClub("Club Regatas")
	minor := env.seedPerson("111", "Tomás", "Ruiz", "2010-04-12T00:00:00", "", "")
	tutor := env.seedPerson("222", "Marta", "Ruiz", "1980-01-01T00:00:00", "marta@example.org", "341-555")
	env.seedAthlete(minor, ptr(clubID))
	env.seedTutor(tutor)
	env.seedLink(minor, tutor)

	listing, err := env.enrichment.ListAthletes(bg)
	require.NoError(t, err)

	assert.Empty(t, listing.Degraded)
	require.Len(t, listing.Athletes, 1)
	view := listing.Athletes[0]
	assert.Equal(t, "Tomás Ruiz", view.FullName)
	assert.Equal(t, "Club Regatas", view.ClubName)
	assert.Equal(t, 14, view.Age)
	require.NotNil(t, view.TutorInfo, "links are served in PascalCase and must still join")
	assert.Equal(t, "Marta Ruiz", view.TutorInfo.FullName)
}

func TestListAthletesDegradesFailedCollection(t *testing.T) {
	env := newTestEnv(t)
	person := env.seedPerson("111", "Ana", "Paz", "", "", "")
	env.seedAthlete(person, nil)
	env.backend.Fail(http.MethodGet, "/Tutor", http.StatusInternalServerError, "boom", 0)
	env.backend.Fail(http.MethodGet, "/Club", http.StatusBadGateway, "", 0)

	listing, err := env.enrichment.ListAthletes(bg)
	require.NoError(t, err)

	assert.Equal(t, []string{"Club", "Tutor"}, listing.Degraded)
	require.Len(t, listing.Athletes, 1)
	assert.Equal(t, "Agente Libre", listing.Athletes[0].ClubName)
}

func TestListCoachesAndTutors(t *testing.T) {
	env := newTestEnv(t)
	clubID := env.seedClub("Club Hacoaj")
	coach := env.seedPerson("333", "Eva", "Luna", "1990-06-01", "", "")
	env.backend.Seed("Entrenador", map[string]any{"idPersona": coach, "idClub": clubID, "licencia": "L-1"})
	tutor := env.seedPerson("444", "Raúl", "Sosa", "1975-03-03", "", "")
	env.seedTutor(tutor)

	coaches, err := env.enrichment.ListCoaches(bg)
	require.NoError(t, err)
	require.Len(t, coaches.Coaches, 1)
	assert.Equal(t, "Club Hacoaj", coaches.Coaches[0].ClubName)
	assert.Equal(t, "L-1", coaches.Coaches[0].License)

	tutors, err := env.enrichment.ListTutors(bg)
	require.NoError(t, err)
	require.Len(t, tutors.Tutors, 1)
	assert.Equal(t, "Raúl Sosa", tutors.Tutors[0].FullName)
	assert.Equal(t, "Padre", tutors.Tutors[0].TutorType)
}

func TestClubRoster(t *testing.T) {
	env := newTestEnv(t)
	clubID := env.seedClub("Club Regatas")
	athlete := env.seedPerson("111", "Ana", "Paz", "2001-02-03", "", "")
	env.seedAthlete(athlete, ptr(clubID))
	env.backend.Seed("Evento", map[string]any{"nombre": "Regata", "idClub": clubID})

	roster, err := env.enrichment.ClubRoster(bg, clubID)
	require.NoError(t, err)
	assert.Equal(t, "Club Regatas", roster.Club.Name)
	require.Len(t, roster.Athletes, 1)
	assert.Equal(t, "Ana Paz", roster.Athletes[0].FullName)
	assert.Equal(t, "Club Regatas", roster.Athletes[0].ClubName)
	require.Len(t, roster.Events, 1)
	assert.Empty(t, roster.Delegates)

	_, err = env.enrichment.ClubRoster(bg, 999)
	assert.ErrorIs(t, err, ErrClubNotFound)
}
