package repositories

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
)

type DocumentRepository interface {
	ListByPerson(ctx context.Context, personID int) ([]models.Document, error)
	Upload(ctx context.Context, personID int, docType models.DocumentType, filename string, content io.Reader) (*models.Document, error)
	Delete(ctx context.Context, id int) error
}

type restDocumentRepository struct {
	restCollection[models.Document]
}

func NewRESTDocumentRepository(client *apiclient.Client) DocumentRepository {
	return &restDocumentRepository{restCollection[models.Document]{client: client, path: PathDocuments, idKey: "idDocumentacion"}}
}

func (r *restDocumentRepository) ListByPerson(ctx context.Context, personID int) ([]models.Document, error) {
	return r.list(ctx, fmt.Sprintf("%s/persona/%d", r.path, personID))
}

func (r *restDocumentRepository) Upload(ctx context.Context, personID int, docType models.DocumentType, filename string, content io.Reader) (*models.Document, error) {
	form := apiclient.UploadForm{
		Fields: map[string]string{
			"PersonaId":     strconv.Itoa(personID),
			"TipoDocumento": strconv.Itoa(int(docType)),
		},
		FileField: "File",
		FileName:  filename,
		File:      content,
	}
	var doc models.Document
	if err := r.client.Upload(ctx, r.path+"/upload", form, &doc, apiclient.IDKey(r.idKey)); err != nil {
		return nil, translate(err, "upload document")
	}
	if doc.PersonID == 0 {
		doc.PersonID = personID
	}
	return &doc, nil
}

func (r *restDocumentRepository) Delete(ctx context.Context, id int) error {
	return r.delete(ctx, id)
}
