package models

// Relationship is the kind of guardianship stored on an athlete-tutor link.
type Relationship int

const (
	RelationshipParent Relationship = iota
	RelationshipLegalGuardian
	RelationshipGrandparent
	RelationshipOther
)

func (r Relationship) Valid() bool {
	return r >= RelationshipParent && r <= RelationshipOther
}

func (r Relationship) String() string {
	switch r {
	case RelationshipParent:
		return "Padre/Madre"
	case RelationshipLegalGuardian:
		return "Tutor Legal"
	case RelationshipGrandparent:
		return "Abuelo/a"
	case RelationshipOther:
		return "Otro"
	default:
		return "-"
	}
}

// Tutor extends a Person. Name, document and contact fields are denormalized copies of the
// Person row and are refreshed by the assignment workflow, not by the backend.
type Tutor struct {
	PersonID  int    `json:"idPersona"`
	TutorType string `json:"tipoTutor"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Document  string `json:"documento"`
	Phone     string `json:"telefono"`
	Email     string `json:"email"`
}

// AthleteTutor is the association row between an athlete and a tutor. Some endpoints expose
// the row id, others only the composite (athlete, tutor) key; ID is zero in the latter case.
type AthleteTutor struct {
	ID           int          `json:"idAtletaTutor,omitempty"`
	AthleteID    int          `json:"idAtleta"`
	TutorID      int          `json:"idTutor"`
	Relationship Relationship `json:"parentesco"`
}

func (l AthleteTutor) HasID() bool {
	return l.ID > 0
}
