package models

import "strings"

// Person is the base identity record shared by every role (athlete, coach, tutor, delegate).
// Document is the natural key used for deduplication.
type Person struct {
	ID        int    `json:"idPersona"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Document  string `json:"documento"`
	BirthDate Date   `json:"fechaNacimiento"`
	Email     string `json:"email"`
	Phone     string `json:"telefono"`
	Address   string `json:"direccion"`
}

func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// MissingContact reports whether the person lacks an email or a phone number.
func (p Person) MissingContact() bool {
	return strings.TrimSpace(p.Email) == "" || strings.TrimSpace(p.Phone) == ""
}
