package models

// AgeCategory mirrors the backend enum (0..8).
type AgeCategory int

const (
	CategoryPreInfantil AgeCategory = iota
	CategoryInfantil
	CategoryMenor
	CategoryCadete
	CategoryJuvenil
	CategoryJunior
	CategorySub23
	CategorySenior
	CategoryMaster
)

var ageCategoryNames = [...]string{
	"Pre-Infantil", "Infantil", "Menor", "Cadete", "Juvenil", "Junior", "Sub 23", "Senior", "Master",
}

func (c AgeCategory) Valid() bool {
	return c >= CategoryPreInfantil && c <= CategoryMaster
}

func (c AgeCategory) String() string {
	if !c.Valid() {
		return "-"
	}
	return ageCategoryNames[c]
}

type PaymentStatus int

const (
	PaymentPending PaymentStatus = iota
	PaymentPaid
	PaymentOverdue
	PaymentPartial
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentPending:
		return "pending"
	case PaymentPaid:
		return "paid"
	case PaymentOverdue:
		return "overdue"
	case PaymentPartial:
		return "partial"
	default:
		return "-"
	}
}

// Athlete extends a Person (keyed by the person id). A nil ClubID marks a free agent.
type Athlete struct {
	PersonID             int           `json:"idPersona"`
	ClubID               *int          `json:"idClub"`
	Category             AgeCategory   `json:"categoria"`
	InSelection          bool          `json:"perteneceSeleccion"`
	PaymentStatus        PaymentStatus `json:"estadoPago"`
	MedicalClearance     bool          `json:"presentoAptoMedico"`
	MedicalClearanceDate *Date         `json:"fechaAptoMedico,omitempty"`
	ScholarshipEnard     bool          `json:"becadoEnard"`
	ScholarshipSDN       bool          `json:"becadoSdn"`
	ScholarshipAmount    float64       `json:"montoBeca"`
}

func (a Athlete) IsFreeAgent() bool {
	return a.ClubID == nil
}
