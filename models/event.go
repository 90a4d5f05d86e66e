package models

type Event struct {
	ID        int     `json:"idEvento"`
	Name      string  `json:"nombre"`
	Location  string  `json:"ubicacion"`
	StartDate Date    `json:"fechaInicio"`
	EndDate   Date    `json:"fechaFin"`
	ClubID    *int    `json:"idClub"`
	Price     float64 `json:"precio"`
}

type Registration struct {
	ID        int    `json:"idInscripcion"`
	EventID   int    `json:"idEvento"`
	AthleteID int    `json:"idAtleta"`
	Date      Date   `json:"fechaInscripcion"`
	Status    string `json:"estado"`
}

// PaymentPreferenceInput is forwarded to the payment gateway preference endpoint.
type PaymentPreferenceInput struct {
	RegistrationID int     `json:"idInscripcion" validate:"required,gt=0"`
	Amount         float64 `json:"monto" validate:"required,gt=0"`
	Description    string  `json:"descripcion" validate:"required"`
	PayerEmail     string  `json:"emailPagador,omitempty" validate:"omitempty,email"`
}

type PaymentPreference struct {
	PreferenceID string `json:"preferenceId"`
	InitPoint    string `json:"initPoint"`
}
