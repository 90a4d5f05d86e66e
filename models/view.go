package models

// Placeholder is rendered for any display field that could not be resolved.
const Placeholder = "-"

// TutorInfo is the guardian summary attached to an enriched athlete.
type TutorInfo struct {
	TutorID      int          `json:"idTutor"`
	FullName     string       `json:"nombreCompleto"`
	Document     string       `json:"documento"`
	Phone        string       `json:"telefono"`
	Email        string       `json:"email"`
	Relationship Relationship `json:"parentesco"`
}

// AthleteView is an athlete joined with its person, club and first guardian link.
type AthleteView struct {
	Athlete
	FullName      string     `json:"nombreCompleto"`
	FirstName     string     `json:"nombre"`
	LastName      string     `json:"apellido"`
	Document      string     `json:"documento"`
	Email         string     `json:"email"`
	Phone         string     `json:"telefono"`
	BirthDate     Date       `json:"fechaNacimiento"`
	Age           int        `json:"edad"`
	AgeLabel      string     `json:"edadTexto"`
	IsMinor       bool       `json:"esMenor"`
	ClubName      string     `json:"nombreClub"`
	CategoryName  string     `json:"nombreCategoria"`
	PaymentLabel  string     `json:"estadoPagoTexto"`
	TutorInfo     *TutorInfo `json:"tutorInfo"`
	TutorCount    int        `json:"cantidadTutores"`
	PersonMissing bool       `json:"personaFaltante"`
}

// LinkedAthlete is an athlete reference shown in a tutor listing.
type LinkedAthlete struct {
	AthleteID    int          `json:"idAtleta"`
	FullName     string       `json:"nombreCompleto"`
	Age          int          `json:"edad"`
	Relationship Relationship `json:"parentesco"`
}

type TutorView struct {
	Tutor
	FullName string          `json:"nombreCompleto"`
	Age      int             `json:"edad"`
	AgeLabel string          `json:"edadTexto"`
	Athletes []LinkedAthlete `json:"atletas"`
}

type CoachView struct {
	Coach
	FullName string `json:"nombreCompleto"`
	Document string `json:"documento"`
	Email    string `json:"email"`
	Phone    string `json:"telefono"`
	Age      int    `json:"edad"`
	AgeLabel string `json:"edadTexto"`
	ClubName string `json:"nombreClub"`
}

// LinkIssue describes a link row that is dangling or duplicated.
type LinkIssue struct {
	AthleteID int    `json:"idAtleta"`
	TutorID   int    `json:"idTutor"`
	LinkID    int    `json:"idAtletaTutor,omitempty"`
	Reason    string `json:"motivo"`
}

const (
	LinkIssueDuplicate      = "duplicate"
	LinkIssueMissingAthlete = "missing_athlete"
	LinkIssueMissingTutor   = "missing_tutor"
)

type ClubRoster struct {
	Club      Club          `json:"club"`
	Athletes  []AthleteView `json:"atletas"`
	Coaches   []CoachView   `json:"entrenadores"`
	Delegates []Delegate    `json:"delegados"`
	Events    []Event       `json:"eventos"`
	Degraded  []string      `json:"degradado,omitempty"`
}
