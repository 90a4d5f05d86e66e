package models

// FreeAgentLabel is shown instead of a club name for athletes and coaches without a club.
const FreeAgentLabel = "Agente Libre"

// Club counters are computed by the backend and trusted as-is.
type Club struct {
	ID           int    `json:"idClub"`
	Name         string `json:"nombre"`
	Acronym      string `json:"siglas"`
	Address      string `json:"direccion"`
	Phone        string `json:"telefono"`
	AthleteCount int    `json:"cantidadAtletas"`
	CoachCount   int    `json:"cantidadEntrenadores"`
	HasDelegate  bool   `json:"tieneDelegado"`
}

type Coach struct {
	PersonID          int     `json:"idPersona"`
	ClubID            *int    `json:"idClub"`
	License           string  `json:"licencia"`
	InSelection       bool    `json:"perteneceSeleccion"`
	SelectionCategory string  `json:"categoriaSeleccion"`
	ScholarshipEnard  bool    `json:"becadoEnard"`
	ScholarshipSDN    bool    `json:"becadoSdn"`
	ScholarshipAmount float64 `json:"montoBeca"`
	MedicalClearance  bool    `json:"presentoAptoMedico"`
}

// Delegate represents a club delegate; a nil ClubID means unassigned.
type Delegate struct {
	PersonID     int  `json:"idPersona"`
	ClubID       *int `json:"idClub"`
	RoleID       int  `json:"idRol"`
	FederationID int  `json:"idFederacion"`
}
