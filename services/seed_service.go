package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/metrics"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/EzequielDigiacomo/sigdef-admin/repositories"
)

// Fixture records reference each other by natural key (person document, club name) because
// backend ids are only known once the referenced record exists.
type Fixtures struct {
	Clubs    []models.Club
	Persons  []models.Person
	Athletes []AthleteFixture
	Tutors   []TutorFixture
	Coaches  []CoachFixture
	Links    []LinkFixture
	Events   []EventFixture
}

type AthleteFixture struct {
	Document string
	ClubName string // empty for a free agent
	Athlete  models.Athlete
}

type TutorFixture struct {
	Document  string
	TutorType string
}

type CoachFixture struct {
	Document string
	ClubName string
	License  string
}

type LinkFixture struct {
	AthleteDocument string
	TutorDocument   string
	Relationship    models.Relationship
}

type EventFixture struct {
	ClubName string
	Event    models.Event
}

// SeedReport counts outcomes per collection. Duplicates are skipped, not failed.
type SeedReport struct {
	Created map[string]int    `json:"created"`
	Skipped map[string]int    `json:"skipped"`
	Failed  []models.BulkItem `json:"failed"`
}

func newSeedReport() *SeedReport {
	return &SeedReport{Created: map[string]int{}, Skipped: map[string]int{}, Failed: []models.BulkItem{}}
}

type SeedService interface {
	Seed(ctx context.Context, fixtures Fixtures) (*SeedReport, error)
}

type seedService struct {
	persons     PersonService
	clubRepo    repositories.ClubRepository
	athleteRepo repositories.AthleteRepository
	tutorRepo   repositories.TutorRepository
	coachRepo   repositories.CoachRepository
	linkRepo    repositories.AthleteTutorRepository
	eventRepo   repositories.EventRepository
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewSeedService(
	persons PersonService,
	clubRepo repositories.ClubRepository,
	athleteRepo repositories.AthleteRepository,
	tutorRepo repositories.TutorRepository,
	coachRepo repositories.CoachRepository,
	linkRepo repositories.AthleteTutorRepository,
	eventRepo repositories.EventRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) SeedService {
	return &seedService{
		persons:     persons,
		clubRepo:    clubRepo,
		athleteRepo: athleteRepo,
		tutorRepo:   tutorRepo,
		coachRepo:   coachRepo,
		linkRepo:    linkRepo,
		eventRepo:   eventRepo,
		metrics:     m,
		logger:      logger,
	}
}

func (s *seedService) record(report *SeedReport, collection, ref string, err error) {
	switch {
	case err == nil:
		report.Created[collection]++
		s.metrics.IncSeedRecord(collection, "created")
	case errors.Is(err, repositories.ErrDuplicate):
		report.Skipped[collection]++
		s.metrics.IncSeedRecord(collection, "skipped")
	default:
		report.Failed = append(report.Failed, models.BulkItem{Stage: "seed", Collection: collection, Error: fmt.Sprintf("%s: %v", ref, err)})
		s.metrics.IncSeedRecord(collection, "failed")
		s.logger.Warn("seed record failed", "collection", collection, "ref", ref, "error", err)
	}
}

// Seed posts fixtures in dependency order: clubs, persons, role records, links, events. It
// only returns an error when the context is done; per-record failures land in the report.
func (s *seedService) Seed(ctx context.Context, fx Fixtures) (*SeedReport, error) {
	report := newSeedReport()

	for i := range fx.Clubs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		club := fx.Clubs[i]
		club.ID = 0
		s.record(report, repositories.PathClubs, club.Name, s.clubRepo.Create(ctx, &club))
	}
	clubIDs := map[string]int{}
	if clubs, err := s.clubRepo.List(ctx); err != nil {
		s.logger.Warn("could not list clubs after seeding, club references will be empty", "error", err)
	} else {
		for _, c := range clubs {
			clubIDs[c.Name] = c.ID
		}
	}

	personIDs := map[string]int{}
	persons := map[string]models.Person{}
	for _, p := range fx.Persons {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		resolved, created, err := s.persons.Resolve(ctx, p)
		switch {
		case err != nil:
			s.record(report, repositories.PathPersons, p.Document, err)
			continue
		case created:
			s.record(report, repositories.PathPersons, p.Document, nil)
		default:
			s.record(report, repositories.PathPersons, p.Document, repositories.ErrDuplicate)
		}
		personIDs[p.Document] = resolved.ID
		persons[p.Document] = *resolved
	}

	clubRef := func(name string) *int {
		if id, ok := clubIDs[name]; ok && name != "" {
			return &id
		}
		return nil
	}

	for _, a := range fx.Athletes {
		id, ok := personIDs[a.Document]
		if !ok {
			continue
		}
		athlete := a.Athlete
		athlete.PersonID = id
		athlete.ClubID = clubRef(a.ClubName)
		s.record(report, repositories.PathAthletes, a.Document, s.athleteRepo.Create(ctx, &athlete))
	}

	for _, t := range fx.Tutors {
		id, ok := personIDs[t.Document]
		if !ok {
			continue
		}
		p := persons[t.Document]
		tutor := models.Tutor{
			PersonID: id, TutorType: t.TutorType,
			FirstName: p.FirstName, LastName: p.LastName, Document: p.Document, Phone: p.Phone, Email: p.Email,
		}
		s.record(report, repositories.PathTutors, t.Document, s.tutorRepo.Create(ctx, &tutor))
	}

	for _, c := range fx.Coaches {
		id, ok := personIDs[c.Document]
		if !ok {
			continue
		}
		coach := models.Coach{PersonID: id, ClubID: clubRef(c.ClubName), License: c.License}
		s.record(report, repositories.PathCoaches, c.Document, s.coachRepo.Create(ctx, &coach))
	}

	for _, l := range fx.Links {
		athleteID, okA := personIDs[l.AthleteDocument]
		tutorID, okT := personIDs[l.TutorDocument]
		if !okA || !okT {
			continue
		}
		link := models.AthleteTutor{AthleteID: athleteID, TutorID: tutorID, Relationship: l.Relationship}
		s.record(report, repositories.PathAthleteTutors, l.AthleteDocument+"->"+l.TutorDocument, s.linkRepo.Create(ctx, &link))
	}

	// Events have no unique key on the backend, so existing ones are matched by name and club.
	seen := map[string]bool{}
	if events, err := s.eventRepo.List(ctx); err != nil {
		s.logger.Warn("could not list events, seeded events may be duplicated", "error", err)
	} else {
		for _, e := range events {
			seen[eventKey(e.Name, e.ClubID)] = true
		}
	}
	for _, e := range fx.Events {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		event := e.Event
		event.ID = 0
		event.ClubID = clubRef(e.ClubName)
		key := eventKey(event.Name, event.ClubID)
		if seen[key] {
			s.record(report, repositories.PathEvents, event.Name, repositories.ErrDuplicate)
			continue
		}
		err := s.eventRepo.Create(ctx, &event)
		if err == nil {
			seen[key] = true
		}
		s.record(report, repositories.PathEvents, event.Name, err)
	}

	s.logger.Info("seeding finished", "created", report.Created, "skipped", report.Skipped, "failed", len(report.Failed))
	return report, nil
}

func eventKey(name string, clubID *int) string {
	if clubID == nil {
		return name + "|"
	}
	return fmt.Sprintf("%s|%d", name, *clubID)
}

var (
	fixtureFirstNames = []string{"Lucía", "Mateo", "Valentina", "Benjamín", "Martina", "Thiago", "Sofía", "Joaquín", "Camila", "Santiago", "Emilia", "Lautaro"}
	fixtureLastNames  = []string{"González", "Rodríguez", "Fernández", "López", "Martínez", "Pérez", "Gómez", "Díaz", "Romero", "Sosa", "Álvarez", "Torres"}
	fixtureCities     = []string{"Rosario", "Córdoba", "Mendoza", "La Plata", "Mar del Plata", "Salta", "Neuquén", "Tigre"}
	fixtureTutorTypes = []string{"Padre", "Madre", "Tutor Legal"}
)

// GenerateFixtures builds n athletes spread over n/5+1 clubs. Roughly half of the athletes are
// minors and each minor gets an adult tutor. The same seed always yields the same fixtures for
// a given day.
func GenerateFixtures(n int, seed int64) Fixtures {
	return generateFixtures(n, seed, time.Now().UTC())
}

func generateFixtures(n int, seed int64, today time.Time) Fixtures {
	if n < 0 {
		n = 0
	}
	rng := rand.New(rand.NewSource(seed))
	var fx Fixtures

	clubCount := n/5 + 1
	for i := 0; i < clubCount; i++ {
		city := fixtureCities[rng.Intn(len(fixtureCities))]
		fx.Clubs = append(fx.Clubs, models.Club{
			Name:    fmt.Sprintf("Club Náutico %s %d-%d", city, seed, i+1),
			Acronym: fmt.Sprintf("CN%d", i+1),
			Address: fmt.Sprintf("Costanera %d, %s", 100+rng.Intn(900), city),
			Phone:   fmt.Sprintf("+54 9 11 %04d-%04d", rng.Intn(10000), rng.Intn(10000)),
		})
	}

	docBase := 20_000_000 + rng.Intn(50_000)*100
	nextDoc := func() string {
		docBase++
		return fmt.Sprintf("%d", docBase)
	}
	newPerson := func(minAge, maxAge int) models.Person {
		first := fixtureFirstNames[rng.Intn(len(fixtureFirstNames))]
		last := fixtureLastNames[rng.Intn(len(fixtureLastNames))]
		age := minAge + rng.Intn(maxAge-minAge+1)
		birth := models.NewDate(today.Year()-age-1, time.Month(1+rng.Intn(12)), 1+rng.Intn(28))
		if CalculateAge(birth, today) > maxAge {
			birth = models.NewDate(birth.Year()+1, birth.Month(), birth.Day())
		}
		doc := nextDoc()
		return models.Person{
			FirstName: first,
			LastName:  last,
			Document:  doc,
			BirthDate: birth,
			Email:     fmt.Sprintf("persona%s@example.org", doc),
			Phone:     fmt.Sprintf("+54 9 341 %04d-%04d", rng.Intn(10000), rng.Intn(10000)),
			Address:   fmt.Sprintf("Calle %d, %s", 1+rng.Intn(3000), fixtureCities[rng.Intn(len(fixtureCities))]),
		}
	}

	for i := 0; i < n; i++ {
		minor := i%2 == 0
		var athlete models.Person
		if minor {
			athlete = newPerson(8, AgeOfMajority-1)
			athlete.Email, athlete.Phone = "", ""
		} else {
			athlete = newPerson(AgeOfMajority, 40)
		}
		fx.Persons = append(fx.Persons, athlete)

		clubName := ""
		if i%7 != 6 {
			clubName = fx.Clubs[rng.Intn(clubCount)].Name
		}
		fx.Athletes = append(fx.Athletes, AthleteFixture{
			Document: athlete.Document,
			ClubName: clubName,
			Athlete: models.Athlete{
				Category:         categoryForAge(CalculateAge(athlete.BirthDate, today)),
				PaymentStatus:    models.PaymentStatus(rng.Intn(4)),
				MedicalClearance: rng.Intn(2) == 0,
			},
		})

		if minor {
			tutor := newPerson(30, 60)
			tutor.LastName = athlete.LastName
			fx.Persons = append(fx.Persons, tutor)
			fx.Tutors = append(fx.Tutors, TutorFixture{Document: tutor.Document, TutorType: fixtureTutorTypes[rng.Intn(len(fixtureTutorTypes))]})
			fx.Links = append(fx.Links, LinkFixture{AthleteDocument: athlete.Document, TutorDocument: tutor.Document, Relationship: models.RelationshipParent})
		}
	}

	for i, club := range fx.Clubs {
		coach := newPerson(25, 60)
		fx.Persons = append(fx.Persons, coach)
		fx.Coaches = append(fx.Coaches, CoachFixture{Document: coach.Document, ClubName: club.Name, License: fmt.Sprintf("LIC-%05d", rng.Intn(100000))})

		start := models.NewDate(today.Year(), today.Month(), 1).AddDate(0, 1+i, 0)
		fx.Events = append(fx.Events, EventFixture{
			ClubName: club.Name,
			Event: models.Event{
				Name:      fmt.Sprintf("Regata %s %d", club.Acronym, start.Year()),
				Location:  fixtureCities[rng.Intn(len(fixtureCities))],
				StartDate: models.Date{Time: start},
				EndDate:   models.Date{Time: start.AddDate(0, 0, 2)},
				Price:     float64(5000 + 500*rng.Intn(10)),
			},
		})
	}
	return fx
}

func categoryForAge(age int) models.AgeCategory {
	switch {
	case age < 0:
		return models.CategorySenior
	case age <= 10:
		return models.CategoryPreInfantil
	case age <= 12:
		return models.CategoryInfantil
	case age <= 14:
		return models.CategoryMenor
	case age <= 16:
		return models.CategoryCadete
	case age <= 18:
		return models.CategoryJuvenil
	case age <= 20:
		return models.CategoryJunior
	case age <= 23:
		return models.CategorySub23
	case age <= 35:
		return models.CategorySenior
	default:
		return models.CategoryMaster
	}
}
