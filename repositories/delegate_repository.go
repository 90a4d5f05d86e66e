package repositories

import (
	"context"
	"fmt"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
)

type DelegateRepository interface {
	List(ctx context.Context) ([]models.Delegate, error)
	ListRecords(ctx context.Context) ([]apiclient.Record, error)
	Create(ctx context.Context, delegate *models.Delegate) error
	UpdateRecord(ctx context.Context, personID int, record apiclient.Record) error
	Delete(ctx context.Context, personID int) error
}

type restDelegateRepository struct {
	restCollection[models.Delegate]
}

func NewRESTDelegateRepository(client *apiclient.Client) DelegateRepository {
	return &restDelegateRepository{restCollection[models.Delegate]{client: client, path: PathDelegates, idKey: "idPersona"}}
}

func (r *restDelegateRepository) List(ctx context.Context) ([]models.Delegate, error) {
	return r.list(ctx, r.path)
}

func (r *restDelegateRepository) ListRecords(ctx context.Context) ([]apiclient.Record, error) {
	return listRecords(ctx, r.client, r.path)
}

func (r *restDelegateRepository) Create(ctx context.Context, delegate *models.Delegate) error {
	return r.create(ctx, delegate)
}

func (r *restDelegateRepository) UpdateRecord(ctx context.Context, personID int, record apiclient.Record) error {
	return putRecord(ctx, r.client, fmt.Sprintf("%s/%d", r.path, personID), record)
}

func (r *restDelegateRepository) Delete(ctx context.Context, personID int) error {
	return r.delete(ctx, personID)
}
