package repositories

import (
	"context"
	"fmt"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
)

// RawRepository works on untyped records of any collection. Bulk teardown uses it so that id
// resolution goes through the ordered-candidate lookup instead of a fixed model field.
type RawRepository interface {
	List(ctx context.Context, path string) ([]apiclient.Record, error)
	Delete(ctx context.Context, path string, id int) error
	DeletePath(ctx context.Context, path string) error
}

type restRawRepository struct {
	client *apiclient.Client
}

func NewRESTRawRepository(client *apiclient.Client) RawRepository {
	return &restRawRepository{client: client}
}

func (r *restRawRepository) List(ctx context.Context, path string) ([]apiclient.Record, error) {
	return listRecords(ctx, r.client, path)
}

func (r *restRawRepository) Delete(ctx context.Context, path string, id int) error {
	return r.DeletePath(ctx, fmt.Sprintf("%s/%d", path, id))
}

func (r *restRawRepository) DeletePath(ctx context.Context, path string) error {
	if err := r.client.Delete(ctx, path); err != nil {
		return translate(err, "delete "+path)
	}
	return nil
}
