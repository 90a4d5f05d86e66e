package repositories

import (
	"context"
	"net/url"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
)

type PersonRepository interface {
	List(ctx context.Context) ([]models.Person, error)
	GetByID(ctx context.Context, id int) (*models.Person, error)
	// FindByDocument is an expected-miss lookup: a 404 is returned as ErrNotFound and not logged.
	FindByDocument(ctx context.Context, document string) (*models.Person, error)
	Create(ctx context.Context, person *models.Person) error
	Update(ctx context.Context, person *models.Person) error
	Delete(ctx context.Context, id int) error
}

type restPersonRepository struct {
	restCollection[models.Person]
}

func NewRESTPersonRepository(client *apiclient.Client) PersonRepository {
	return &restPersonRepository{restCollection[models.Person]{client: client, path: PathPersons, idKey: "idPersona"}}
}

func (r *restPersonRepository) List(ctx context.Context) ([]models.Person, error) {
	return r.list(ctx, r.path)
}

func (r *restPersonRepository) GetByID(ctx context.Context, id int) (*models.Person, error) {
	return r.get(ctx, id)
}

func (r *restPersonRepository) FindByDocument(ctx context.Context, document string) (*models.Person, error) {
	var person models.Person
	path := r.path + "/documento/" + url.PathEscape(document)
	if err := r.client.Get(ctx, path, &person, apiclient.Silent(), apiclient.IDKey(r.idKey)); err != nil {
		return nil, translate(err, "find person by document")
	}
	if person.ID == 0 {
		return nil, ErrNotFound
	}
	return &person, nil
}

func (r *restPersonRepository) Create(ctx context.Context, person *models.Person) error {
	return r.create(ctx, person)
}

func (r *restPersonRepository) Update(ctx context.Context, person *models.Person) error {
	return r.update(ctx, person.ID, person)
}

func (r *restPersonRepository) Delete(ctx context.Context, id int) error {
	return r.delete(ctx, id)
}
