package repositories

import (
	"context"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
)

type CoachRepository interface {
	List(ctx context.Context) ([]models.Coach, error)
	Create(ctx context.Context, coach *models.Coach) error
	Update(ctx context.Context, coach *models.Coach) error
	Delete(ctx context.Context, personID int) error
}

type restCoachRepository struct {
	restCollection[models.Coach]
}

func NewRESTCoachRepository(client *apiclient.Client) CoachRepository {
	return &restCoachRepository{restCollection[models.Coach]{client: client, path: PathCoaches, idKey: "idPersona"}}
}

func (r *restCoachRepository) List(ctx context.Context) ([]models.Coach, error) {
	return r.list(ctx, r.path)
}

func (r *restCoachRepository) Create(ctx context.Context, coach *models.Coach) error {
	return r.create(ctx, coach)
}

func (r *restCoachRepository) Update(ctx context.Context, coach *models.Coach) error {
	return r.update(ctx, coach.PersonID, coach)
}

func (r *restCoachRepository) Delete(ctx context.Context, personID int) error {
	return r.delete(ctx, personID)
}
