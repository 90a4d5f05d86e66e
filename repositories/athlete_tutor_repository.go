package repositories

import (
	"context"
	"fmt"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
)

type AthleteTutorRepository interface {
	List(ctx context.Context) ([]models.AthleteTutor, error)
	Create(ctx context.Context, link *models.AthleteTutor) error
	// Delete removes a link by its row id when known, otherwise by the composite key.
	Delete(ctx context.Context, link models.AthleteTutor) error
}

type restAthleteTutorRepository struct {
	restCollection[models.AthleteTutor]
}

func NewRESTAthleteTutorRepository(client *apiclient.Client) AthleteTutorRepository {
	return &restAthleteTutorRepository{restCollection[models.AthleteTutor]{client: client, path: PathAthleteTutors, idKey: "idAtletaTutor"}}
}

func (r *restAthleteTutorRepository) List(ctx context.Context) ([]models.AthleteTutor, error) {
	return r.list(ctx, r.path)
}

func (r *restAthleteTutorRepository) Create(ctx context.Context, link *models.AthleteTutor) error {
	return r.create(ctx, link)
}

func (r *restAthleteTutorRepository) Delete(ctx context.Context, link models.AthleteTutor) error {
	if link.HasID() {
		return r.delete(ctx, link.ID)
	}
	path := fmt.Sprintf("%s/%d/%d", r.path, link.AthleteID, link.TutorID)
	if err := r.client.Delete(ctx, path); err != nil {
		return translate(err, "delete "+path)
	}
	return nil
}
