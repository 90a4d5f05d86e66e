package services

import (
	"strings"
	"time"

	"github.com/EzequielDigiacomo/sigdef-admin/models"
)

// Snapshot holds the flat collections a listing is joined from. Slices may be empty when the
// corresponding fetch failed; Degraded names those collections.
type Snapshot struct {
	Persons  []models.Person
	Athletes []models.Athlete
	Tutors   []models.Tutor
	Links    []models.AthleteTutor
	Clubs    []models.Club
	Coaches  []models.Coach
	Degraded []string
}

type AthleteListing struct {
	Athletes       []models.AthleteView `json:"athletes"`
	DuplicateLinks []models.LinkIssue   `json:"duplicate_links"`
	DanglingLinks  []models.LinkIssue   `json:"dangling_links"`
	Degraded       []string             `json:"degraded,omitempty"`
}

type TutorListing struct {
	Tutors   []models.TutorView `json:"tutors"`
	Degraded []string           `json:"degraded,omitempty"`
}

type CoachListing struct {
	Coaches  []models.CoachView `json:"coaches"`
	Degraded []string           `json:"degraded,omitempty"`
}

func indexPersons(persons []models.Person) map[int]models.Person {
	index := make(map[int]models.Person, len(persons))
	for _, p := range persons {
		if p.ID > 0 {
			index[p.ID] = p
		}
	}
	return index
}

func indexClubNames(clubs []models.Club) map[int]string {
	index := make(map[int]string, len(clubs))
	for _, c := range clubs {
		if c.ID > 0 {
			index[c.ID] = c.Name
		}
	}
	return index
}

func indexTutors(tutors []models.Tutor) map[int]models.Tutor {
	index := make(map[int]models.Tutor, len(tutors))
	for _, t := range tutors {
		if t.PersonID > 0 {
			index[t.PersonID] = t
		}
	}
	return index
}

// resolveClubName returns the free agent label for a nil club and a placeholder for a club id
// missing from the fetched collection.
func resolveClubName(clubID *int, names map[int]string) string {
	if clubID == nil {
		return models.FreeAgentLabel
	}
	if name, ok := names[*clubID]; ok && strings.TrimSpace(name) != "" {
		return name
	}
	return models.Placeholder
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.Placeholder
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// linkIndex keeps the first link found per athlete; later links for the same athlete are
// reported as duplicates rather than used.
type linkIndex struct {
	first      map[int]models.AthleteTutor
	count      map[int]int
	duplicates []models.LinkIssue
}

func indexLinks(links []models.AthleteTutor) linkIndex {
	idx := linkIndex{
		first: make(map[int]models.AthleteTutor, len(links)),
		count: make(map[int]int, len(links)),
	}
	for _, l := range links {
		idx.count[l.AthleteID]++
		if _, seen := idx.first[l.AthleteID]; seen {
			idx.duplicates = append(idx.duplicates, models.LinkIssue{
				AthleteID: l.AthleteID, TutorID: l.TutorID, LinkID: l.ID, Reason: models.LinkIssueDuplicate,
			})
			continue
		}
		idx.first[l.AthleteID] = l
	}
	return idx
}

func danglingLinks(links []models.AthleteTutor, persons map[int]models.Person) []models.LinkIssue {
	var issues []models.LinkIssue
	for _, l := range links {
		if _, ok := persons[l.AthleteID]; !ok {
			issues = append(issues, models.LinkIssue{AthleteID: l.AthleteID, TutorID: l.TutorID, LinkID: l.ID, Reason: models.LinkIssueMissingAthlete})
			continue
		}
		if _, ok := persons[l.TutorID]; !ok {
			issues = append(issues, models.LinkIssue{AthleteID: l.AthleteID, TutorID: l.TutorID, LinkID: l.ID, Reason: models.LinkIssueMissingTutor})
		}
	}
	return issues
}

// BuildAthleteViews joins athletes with their person, club and first guardian link.
func BuildAthleteViews(s Snapshot, today time.Time) AthleteListing {
	persons := indexPersons(s.Persons)
	clubNames := indexClubNames(s.Clubs)
	tutors := indexTutors(s.Tutors)
	links := indexLinks(s.Links)

	views := make([]models.AthleteView, 0, len(s.Athletes))
	for _, a := range s.Athletes {
		person, found := persons[a.PersonID]
		age := CalculateAge(person.BirthDate, today)
		view := models.AthleteView{
			Athlete:       a,
			FullName:      orPlaceholder(person.FullName()),
			FirstName:     orPlaceholder(person.FirstName),
			LastName:      orPlaceholder(person.LastName),
			Document:      orPlaceholder(person.Document),
			Email:         orPlaceholder(person.Email),
			Phone:         orPlaceholder(person.Phone),
			BirthDate:     person.BirthDate,
			Age:           age,
			AgeLabel:      ageLabel(age),
			IsMinor:       isMinor(age),
			ClubName:      resolveClubName(a.ClubID, clubNames),
			CategoryName:  a.Category.String(),
			PaymentLabel:  a.PaymentStatus.String(),
			TutorCount:    links.count[a.PersonID],
			PersonMissing: !found,
		}
		if link, ok := links.first[a.PersonID]; ok {
			view.TutorInfo = buildTutorInfo(link, persons, tutors)
		}
		views = append(views, view)
	}

	return AthleteListing{
		Athletes:       views,
		DuplicateLinks: nonNilIssues(links.duplicates),
		DanglingLinks:  nonNilIssues(danglingLinks(s.Links, persons)),
		Degraded:       s.Degraded,
	}
}

func buildTutorInfo(link models.AthleteTutor, persons map[int]models.Person, tutors map[int]models.Tutor) *models.TutorInfo {
	person := persons[link.TutorID]
	tutor := tutors[link.TutorID]
	name := firstNonEmpty(person.FullName(), strings.TrimSpace(tutor.FirstName+" "+tutor.LastName))
	return &models.TutorInfo{
		TutorID:      link.TutorID,
		FullName:     orPlaceholder(name),
		Document:     orPlaceholder(firstNonEmpty(person.Document, tutor.Document)),
		Phone:        orPlaceholder(firstNonEmpty(person.Phone, tutor.Phone)),
		Email:        orPlaceholder(firstNonEmpty(person.Email, tutor.Email)),
		Relationship: link.Relationship,
	}
}

// BuildTutorViews joins tutors with their person and every athlete linked to them.
func BuildTutorViews(s Snapshot, today time.Time) TutorListing {
	persons := indexPersons(s.Persons)
	athletesByTutor := make(map[int][]models.LinkedAthlete)
	for _, l := range s.Links {
		athlete := persons[l.AthleteID]
		athletesByTutor[l.TutorID] = append(athletesByTutor[l.TutorID], models.LinkedAthlete{
			AthleteID:    l.AthleteID,
			FullName:     orPlaceholder(athlete.FullName()),
			Age:          CalculateAge(athlete.BirthDate, today),
			Relationship: l.Relationship,
		})
	}

	views := make([]models.TutorView, 0, len(s.Tutors))
	for _, t := range s.Tutors {
		person := persons[t.PersonID]
		age := CalculateAge(person.BirthDate, today)
		view := models.TutorView{
			Tutor:    t,
			FullName: orPlaceholder(firstNonEmpty(person.FullName(), strings.TrimSpace(t.FirstName+" "+t.LastName))),
			Age:      age,
			AgeLabel: ageLabel(age),
			Athletes: athletesByTutor[t.PersonID],
		}
		if view.Athletes == nil {
			view.Athletes = []models.LinkedAthlete{}
		}
		view.Document = orPlaceholder(firstNonEmpty(person.Document, t.Document))
		view.Phone = orPlaceholder(firstNonEmpty(person.Phone, t.Phone))
		view.Email = orPlaceholder(firstNonEmpty(person.Email, t.Email))
		views = append(views, view)
	}
	return TutorListing{Tutors: views, Degraded: s.Degraded}
}

func BuildCoachViews(s Snapshot, today time.Time) CoachListing {
	persons := indexPersons(s.Persons)
	clubNames := indexClubNames(s.Clubs)

	views := make([]models.CoachView, 0, len(s.Coaches))
	for _, c := range s.Coaches {
		person := persons[c.PersonID]
		age := CalculateAge(person.BirthDate, today)
		views = append(views, models.CoachView{
			Coach:    c,
			FullName: orPlaceholder(person.FullName()),
			Document: orPlaceholder(person.Document),
			Email:    orPlaceholder(person.Email),
			Phone:    orPlaceholder(person.Phone),
			Age:      age,
			AgeLabel: ageLabel(age),
			ClubName: resolveClubName(c.ClubID, clubNames),
		})
	}
	return CoachListing{Coaches: views, Degraded: s.Degraded}
}

func nonNilIssues(issues []models.LinkIssue) []models.LinkIssue {
	if issues == nil {
		return []models.LinkIssue{}
	}
	return issues
}
