package repositories

import (
	"context"
	"fmt"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
)

type TutorRepository interface {
	List(ctx context.Context) ([]models.Tutor, error)
	// ListRecords returns the raw collection so updates can carry forward every field.
	ListRecords(ctx context.Context) ([]apiclient.Record, error)
	GetByPersonID(ctx context.Context, personID int) (*models.Tutor, error)
	Create(ctx context.Context, tutor *models.Tutor) error
	UpdateRecord(ctx context.Context, personID int, record apiclient.Record) error
	Delete(ctx context.Context, personID int) error
}

type restTutorRepository struct {
	restCollection[models.Tutor]
}

func NewRESTTutorRepository(client *apiclient.Client) TutorRepository {
	return &restTutorRepository{restCollection[models.Tutor]{client: client, path: PathTutors, idKey: "idPersona"}}
}

func (r *restTutorRepository) List(ctx context.Context) ([]models.Tutor, error) {
	return r.list(ctx, r.path)
}

func (r *restTutorRepository) ListRecords(ctx context.Context) ([]apiclient.Record, error) {
	return listRecords(ctx, r.client, r.path)
}

func (r *restTutorRepository) GetByPersonID(ctx context.Context, personID int) (*models.Tutor, error) {
	return r.get(ctx, personID)
}

func (r *restTutorRepository) Create(ctx context.Context, tutor *models.Tutor) error {
	return r.create(ctx, tutor)
}

func (r *restTutorRepository) UpdateRecord(ctx context.Context, personID int, record apiclient.Record) error {
	return putRecord(ctx, r.client, fmt.Sprintf("%s/%d", r.path, personID), record)
}

func (r *restTutorRepository) Delete(ctx context.Context, personID int) error {
	return r.delete(ctx, personID)
}

func listRecords(ctx context.Context, client *apiclient.Client, path string) ([]apiclient.Record, error) {
	var records []apiclient.Record
	if err := client.Get(ctx, path, &records); err != nil {
		return nil, translate(err, "list "+path)
	}
	if records == nil {
		records = []apiclient.Record{}
	}
	return records, nil
}
