package repositories

import (
	"context"
	"fmt"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
)

type ClubRepository interface {
	List(ctx context.Context) ([]models.Club, error)
	GetByID(ctx context.Context, id int) (*models.Club, error)
	Create(ctx context.Context, club *models.Club) error
	Update(ctx context.Context, club *models.Club) error
	Delete(ctx context.Context, id int) error
	ListAthletes(ctx context.Context, clubID int) ([]models.Athlete, error)
	ListCoaches(ctx context.Context, clubID int) ([]models.Coach, error)
	ListDelegates(ctx context.Context, clubID int) ([]models.Delegate, error)
	ListEvents(ctx context.Context, clubID int) ([]models.Event, error)
}

type restClubRepository struct {
	restCollection[models.Club]
}

func NewRESTClubRepository(client *apiclient.Client) ClubRepository {
	return &restClubRepository{restCollection[models.Club]{client: client, path: PathClubs, idKey: "idClub"}}
}

func (r *restClubRepository) List(ctx context.Context) ([]models.Club, error) {
	return r.list(ctx, r.path)
}

func (r *restClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	return r.get(ctx, id)
}

func (r *restClubRepository) Create(ctx context.Context, club *models.Club) error {
	return r.create(ctx, club)
}

func (r *restClubRepository) Update(ctx context.Context, club *models.Club) error {
	return r.update(ctx, club.ID, club)
}

func (r *restClubRepository) Delete(ctx context.Context, id int) error {
	return r.delete(ctx, id)
}

func (r *restClubRepository) ListAthletes(ctx context.Context, clubID int) ([]models.Athlete, error) {
	return restCollection[models.Athlete]{client: r.client, idKey: "idPersona"}.list(ctx, fmt.Sprintf("%s/%d/Atletas", r.path, clubID))
}

func (r *restClubRepository) ListCoaches(ctx context.Context, clubID int) ([]models.Coach, error) {
	return restCollection[models.Coach]{client: r.client, idKey: "idPersona"}.list(ctx, fmt.Sprintf("%s/%d/Entrenadores", r.path, clubID))
}

func (r *restClubRepository) ListDelegates(ctx context.Context, clubID int) ([]models.Delegate, error) {
	return restCollection[models.Delegate]{client: r.client, idKey: "idPersona"}.list(ctx, fmt.Sprintf("%s/%d/Delegados", r.path, clubID))
}

func (r *restClubRepository) ListEvents(ctx context.Context, clubID int) ([]models.Event, error) {
	return restCollection[models.Event]{client: r.client, idKey: "idEvento"}.list(ctx, fmt.Sprintf("%s/%d/Eventos", r.path, clubID))
}
