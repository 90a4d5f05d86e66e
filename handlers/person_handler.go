package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/EzequielDigiacomo/sigdef-admin/models"
	"github.com/EzequielDigiacomo/sigdef-admin/services"
	"github.com/go-chi/chi/v5"
)

type PersonHandler struct {
	persons   services.PersonService
	documents services.DocumentService
}

func NewPersonHandler(ps services.PersonService, ds services.DocumentService) *PersonHandler {
	return &PersonHandler{persons: ps, documents: ds}
}

type resolvePersonInput struct {
	FirstName string      `json:"nombre" validate:"required,max=100"`
	LastName  string      `json:"apellido" validate:"required,max=100"`
	Document  string      `json:"documento" validate:"required,max=20"`
	BirthDate models.Date `json:"fechaNacimiento"`
	Email     string      `json:"email" validate:"omitempty,email"`
	Phone     string      `json:"telefono" validate:"max=30"`
	Address   string      `json:"direccion" validate:"max=200"`
}

func (h *PersonHandler) FindByDocument(w http.ResponseWriter, r *http.Request) {
	person, err := h.persons.Find(r.Context(), chi.URLParam(r, "document"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"person": person}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Resolve godoc
// @Summary Find or create a person by document
// @Tags persons
// @Description Returns the person holding the document, creating it first when none exists. 201 when created, 200 when it already existed.
// @Accept json
// @Produce json
// @Param body body resolvePersonInput true "Person"
// @Success 200 {object} map[string]interface{}
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/persons/resolve [post]
func (h *PersonHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var input resolvePersonInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	person, created, err := h.persons.Resolve(r.Context(), models.Person{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Document:  input.Document,
		BirthDate: input.BirthDate,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	if err := writeJSON(w, status, jsonResponse{"person": person, "created": created}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PersonHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	personID, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	docs, err := h.documents.List(r.Context(), personID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"documents": docs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadDocument godoc
// @Summary Upload a person document
// @Tags persons
// @Accept multipart/form-data
// @Produce json
// @Param personID path int true "Person ID"
// @Param tipoDocumento formData int true "Document type"
// @Param file formData file true "File (pdf, jpg, png, webp)"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /v1/persons/{personID}/documents [post]
func (h *PersonHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	personID, err := getIDFromURL(r, "personID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxDocumentSize+1<<20)
	if err := r.ParseMultipartForm(services.MaxDocumentSize); err != nil {
		badRequestResponse(w, r, errors.New("invalid multipart form or file too large"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	docType, err := strconv.Atoi(r.FormValue("tipoDocumento"))
	if err != nil {
		badRequestResponse(w, r, errors.New("tipoDocumento must be an integer"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, errors.New("file is required"))
		return
	}
	defer file.Close()
	if header.Size > services.MaxDocumentSize {
		badRequestResponse(w, r, errors.New("file must not be larger than 10MB"))
		return
	}

	doc, err := h.documents.Upload(r.Context(), personID, models.DocumentType(docType), header.Filename, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"document": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
