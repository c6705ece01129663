package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/model"
)

const clientColumns = `id, name, email, phone, address, contact_person, is_active, created_at, updated_at`

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) List(ctx context.Context, filter model.ClientFilter) ([]model.Client, int64, error) {
	w := &where{}
	if filter.Search != "" {
		w.add("(name ILIKE ? OR contact_person ILIKE ? OR email ILIKE ?)",
			likePattern(filter.Search), likePattern(filter.Search), likePattern(filter.Search))
	}
	if filter.Active != nil {
		w.add("is_active = ?", *filter.Active)
	}

	var total int64
	if err := r.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM clients`+w.sql(), w.args...).Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	args := append(append([]interface{}{}, w.args...), filter.Page.Size, filter.Page.Offset())
	var clients []model.Client
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+clientColumns+`
		FROM clients`+w.sql()+`
		ORDER BY name ASC
		LIMIT ? OFFSET ?
	`, args...).Scan(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// ListAll returns every client ordered by name, active or not.
func (r *ClientRepository) ListAll(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	if err := r.db.WithContext(ctx).Raw(`
		SELECT ` + clientColumns + `
		FROM clients
		ORDER BY name ASC
	`).Scan(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *ClientRepository) CountActive(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM clients WHERE is_active`).Scan(&total).Error
	return total, err
}

func (r *ClientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+clientColumns+`
		FROM clients
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&client).Error; err != nil {
		return nil, err
	}
	if client.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &client, nil
}

func (r *ClientRepository) Create(ctx context.Context, client model.Client) (*model.Client, error) {
	var saved model.Client
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO clients (name, email, phone, address, contact_person, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+clientColumns,
		client.Name,
		client.Email,
		client.Phone,
		client.Address,
		client.ContactPerson,
		client.IsActive,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ClientRepository) Update(ctx context.Context, client model.Client) (*model.Client, error) {
	var saved model.Client
	err := r.db.WithContext(ctx).Raw(`
		UPDATE clients
		SET
			name = ?,
			email = ?,
			phone = ?,
			address = ?,
			contact_person = ?,
			is_active = ?,
			updated_at = NOW()
		WHERE id = ?
		RETURNING `+clientColumns,
		client.Name,
		client.Email,
		client.Phone,
		client.Address,
		client.ContactPerson,
		client.IsActive,
		client.ID,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	if saved.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &saved, nil
}
