package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/model"
)

const profileColumns = `id, email, full_name, role, is_active, created_at, updated_at`

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]model.UserProfile, error) {
	var users []model.UserProfile
	if err := r.db.WithContext(ctx).Raw(`
		SELECT ` + profileColumns + `
		FROM profiles
		ORDER BY created_at DESC
	`).Scan(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	var user model.UserProfile
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&user).Error; err != nil {
		return nil, err
	}
	if user.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).Raw(`
		SELECT EXISTS (SELECT 1 FROM profiles WHERE LOWER(email) = LOWER(?))
	`, email).Scan(&exists).Error
	return exists, err
}

func (r *UserRepository) Create(ctx context.Context, user model.UserProfile) (*model.UserProfile, error) {
	var saved model.UserProfile
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO profiles (id, email, full_name, role, is_active)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+profileColumns,
		user.ID, user.Email, user.FullName, user.Role, user.IsActive,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *UserRepository) Update(ctx context.Context, user model.UserProfile) (*model.UserProfile, error) {
	var saved model.UserProfile
	err := r.db.WithContext(ctx).Raw(`
		UPDATE profiles
		SET full_name = ?, role = ?, is_active = ?, updated_at = NOW()
		WHERE id = ?
		RETURNING `+profileColumns,
		user.FullName, user.Role, user.IsActive, user.ID,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	if saved.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &saved, nil
}
