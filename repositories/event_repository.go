package repositories

import (
	"context"
	"fmt"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
	"github.com/EzequielDigiacomo/sigdef-admin/models"
)

type EventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id int) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int) error
}

type restEventRepository struct {
	restCollection[models.Event]
}

func NewRESTEventRepository(client *apiclient.Client) EventRepository {
	return &restEventRepository{restCollection[models.Event]{client: client, path: PathEvents, idKey: "idEvento"}}
}

func (r *restEventRepository) List(ctx context.Context) ([]models.Event, error) {
	return r.list(ctx, r.path)
}

func (r *restEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	return r.get(ctx, id)
}

func (r *restEventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.create(ctx, event)
}

func (r *restEventRepository) Delete(ctx context.Context, id int) error {
	return r.delete(ctx, id)
}

type RegistrationRepository interface {
	List(ctx context.Context) ([]models.Registration, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Registration, error)
	Create(ctx context.Context, registration *models.Registration) error
	Delete(ctx context.Context, id int) error
}

type restRegistrationRepository struct {
	restCollection[models.Registration]
}

func NewRESTRegistrationRepository(client *apiclient.Client) RegistrationRepository {
	return &restRegistrationRepository{restCollection[models.Registration]{client: client, path: PathRegistrations, idKey: "idInscripcion"}}
}

func (r *restRegistrationRepository) List(ctx context.Context) ([]models.Registration, error) {
	return r.list(ctx, r.path)
}

func (r *restRegistrationRepository) ListByEvent(ctx context.Context, eventID int) ([]models.Registration, error) {
	return r.list(ctx, fmt.Sprintf("%s/evento/%d", r.path, eventID))
}

func (r *restRegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	return r.create(ctx, registration)
}

func (r *restRegistrationRepository) Delete(ctx context.Context, id int) error {
	return r.delete(ctx, id)
}

type PaymentRepository interface {
	CreatePreference(ctx context.Context, input models.PaymentPreferenceInput) (*models.PaymentPreference, error)
}

type restPaymentRepository struct {
	client *apiclient.Client
}

func NewRESTPaymentRepository(client *apiclient.Client) PaymentRepository {
	return &restPaymentRepository{client: client}
}

func (r *restPaymentRepository) CreatePreference(ctx context.Context, input models.PaymentPreferenceInput) (*models.PaymentPreference, error) {
	var pref models.PaymentPreference
	if err := r.client.Post(ctx, PathPayments+"/preferencia", input, &pref); err != nil {
		return nil, translate(err, "create payment preference")
	}
	return &pref, nil
}
