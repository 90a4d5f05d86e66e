package repositories

import (
	"context"
	"fmt"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
)

type AthleteRepository interface {
	List(ctx context.Context) ([]models.Athlete, error)
	ListByClub(ctx context.Context, clubID int) ([]models.Athlete, error)
	GetByPersonID(ctx context.Context, personID int) (*models.Athlete, error)
	// GetRecord returns the athlete exactly as the backend stores it, unknown fields included.
	GetRecord(ctx context.Context, personID int) (apiclient.Record, error)
	Create(ctx context.Context, athlete *models.Athlete) error
	// UpdateRecord issues a full-record update with whatever fields the record carries.
	UpdateRecord(ctx context.Context, personID int, record apiclient.Record) error
	Delete(ctx context.Context, personID int) error
}

type restAthleteRepository struct {
	restCollection[models.Athlete]
}

func NewRESTAthleteRepository(client *apiclient.Client) AthleteRepository {
	return &restAthleteRepository{restCollection[models.Athlete]{client: client, path: PathAthletes, idKey: "idPersona"}}
}

func (r *restAthleteRepository) List(ctx context.Context) ([]models.Athlete, error) {
	return r.list(ctx, r.path)
}

func (r *restAthleteRepository) ListByClub(ctx context.Context, clubID int) ([]models.Athlete, error) {
	return r.list(ctx, fmt.Sprintf("%s/club/%d", r.path, clubID))
}

func (r *restAthleteRepository) GetByPersonID(ctx context.Context, personID int) (*models.Athlete, error) {
	return r.get(ctx, personID)
}

func (r *restAthleteRepository) GetRecord(ctx context.Context, personID int) (apiclient.Record, error) {
	return getRecord(ctx, r.client, fmt.Sprintf("%s/%d", r.path, personID))
}

func (r *restAthleteRepository) Create(ctx context.Context, athlete *models.Athlete) error {
	return r.create(ctx, athlete)
}

func (r *restAthleteRepository) UpdateRecord(ctx context.Context, personID int, record apiclient.Record) error {
	return putRecord(ctx, r.client, fmt.Sprintf("%s/%d", r.path, personID), record)
}

func (r *restAthleteRepository) Delete(ctx context.Context, personID int) error {
	return r.delete(ctx, personID)
}

func getRecord(ctx context.Context, client *apiclient.Client, path string) (apiclient.Record, error) {
	var record apiclient.Record
	if err := client.Get(ctx, path, &record); err != nil {
		return nil, translate(err, "get "+path)
	}
	if record == nil {
		return nil, fmt.Errorf("get %s: %w", path, ErrNotFound)
	}
	return record, nil
}

func putRecord(ctx context.Context, client *apiclient.Client, path string, record apiclient.Record) error {
	if err := client.Put(ctx, path, record, nil); err != nil {
		return translate(err, "update "+path)
	}
	return nil
}
