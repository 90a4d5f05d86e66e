package models

type DocumentType int

const (
	DocumentIDFront DocumentType = iota
	DocumentIDBack
	DocumentPassport
	DocumentMedicalClearance
	DocumentProfilePhoto
	DocumentMinorAuthorization
	DocumentOther
)

func (t DocumentType) Valid() bool {
	return t >= DocumentIDFront && t <= DocumentOther
}

type Document struct {
	ID         int          `json:"idDocumentacion"`
	PersonID   int          `json:"idPersona"`
	Type       DocumentType `json:"tipoDocumento"`
	URL        string       `json:"urlArchivo"`
	UploadedAt Date         `json:"fechaCarga"`
}
