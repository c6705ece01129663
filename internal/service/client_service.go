package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/linen-admin/internal/model"
)

type ClientService struct {
	clients ClientStore
}

func NewClientService(clients ClientStore) *ClientService {
	return &ClientService{clients: clients}
}

type ClientInput struct {
	Name          string
	Email         string
	Phone         string
	Address       string
	ContactPerson string
	IsActive      *bool
}

// ClientPatch carries only the fields the caller sent.
type ClientPatch struct {
	Name          *string
	Email         *string
	Phone         *string
	Address       *string
	ContactPerson *string
	IsActive      *bool
}

func (s *ClientService) List(ctx context.Context, filter model.ClientFilter) (model.PageResult[model.Client], error) {
	filter.Search = strings.TrimSpace(filter.Search)
	clients, total, err := s.clients.List(ctx, filter)
	if err != nil {
		return model.PageResult[model.Client]{}, err
	}
	return model.NewPageResult(clients, filter.Page, total), nil
}

func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	client, err := s.clients.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "client")
	}
	return client, nil
}

func (s *ClientService) Create(ctx context.Context, input ClientInput) (*model.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	client, err := s.clients.Create(ctx, model.Client{
		Name:          name,
		Email:         strings.TrimSpace(input.Email),
		Phone:         strings.TrimSpace(input.Phone),
		Address:       strings.TrimSpace(input.Address),
		ContactPerson: strings.TrimSpace(input.ContactPerson),
		IsActive:      active,
	})
	if err != nil {
		return nil, translate(err, "client")
	}
	return client, nil
}

func (s *ClientService) Update(ctx context.Context, id uuid.UUID, patch ClientPatch) (*model.Client, error) {
	client, err := s.clients.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "client")
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		client.Name = name
	}
	applyString(&client.Email, patch.Email)
	applyString(&client.Phone, patch.Phone)
	applyString(&client.Address, patch.Address)
	applyString(&client.ContactPerson, patch.ContactPerson)
	if patch.IsActive != nil {
		client.IsActive = *patch.IsActive
	}

	updated, err := s.clients.Update(ctx, *client)
	if err != nil {
		return nil, translate(err, "client")
	}
	return updated, nil
}

// Deactivate soft deletes a client. Its batches stay reportable.
func (s *ClientService) Deactivate(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	inactive := false
	return s.Update(ctx, id, ClientPatch{IsActive: &inactive})
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
