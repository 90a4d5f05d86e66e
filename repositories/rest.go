package repositories

import (
	"context"
	"fmt"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
)

// Backend collection paths.
const (
	PathPersons       = "/Persona"
	PathAthletes      = "/Atleta"
	PathTutors        = "/Tutor"
	PathAthleteTutors = "/AtletaTutor"
	PathClubs         = "/Club"
	PathCoaches       = "/Entrenador"
	PathDelegates     = "/DelegadoClub"
	PathEvents        = "/Evento"
	PathRegistrations = "/Inscripcion"
	PathDocuments     = "/Documentacion"
	PathPayments      = "/PagoTransaccion"
)

// restCollection is the shared CRUD surface of one backend collection.
type restCollection[T any] struct {
	client *apiclient.Client
	path   string
	idKey  string
}

func (c restCollection[T]) list(ctx context.Context, path string) ([]T, error) {
	var items []T
	if err := c.client.Get(ctx, path, &items, apiclient.IDKey(c.idKey)); err != nil {
		return nil, translate(err, "list "+path)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c restCollection[T]) get(ctx context.Context, id int, opts ...apiclient.CallOption) (*T, error) {
	var item T
	path := fmt.Sprintf("%s/%d", c.path, id)
	opts = append(opts, apiclient.IDKey(c.idKey))
	if err := c.client.Get(ctx, path, &item, opts...); err != nil {
		return nil, translate(err, "get "+path)
	}
	return &item, nil
}

func (c restCollection[T]) create(ctx context.Context, item *T) error {
	if err := c.client.Post(ctx, c.path, item, item, apiclient.IDKey(c.idKey)); err != nil {
		return translate(err, "create "+c.path)
	}
	return nil
}

func (c restCollection[T]) update(ctx context.Context, id int, item *T) error {
	path := fmt.Sprintf("%s/%d", c.path, id)
	if err := c.client.Put(ctx, path, item, nil); err != nil {
		return translate(err, "update "+path)
	}
	return nil
}

func (c restCollection[T]) delete(ctx context.Context, id int) error {
	path := fmt.Sprintf("%s/%d", c.path, id)
	if err := c.client.Delete(ctx, path); err != nil {
		return translate(err, "delete "+path)
	}
	return nil
}
