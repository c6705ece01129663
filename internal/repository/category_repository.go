package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/model"
)

const categoryColumns = `id, name, price_per_item, is_active, created_at, updated_at`

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context, activeOnly bool) ([]model.LinenCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM linen_categories`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name ASC`

	var categories []model.LinenCategory
	if err := r.db.WithContext(ctx).Raw(query).Scan(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) Get(ctx context.Context, id uuid.UUID) (*model.LinenCategory, error) {
	var category model.LinenCategory
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+categoryColumns+`
		FROM linen_categories
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&category).Error; err != nil {
		return nil, err
	}
	if category.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &category, nil
}

// GetMany loads the categories with the given ids. Missing ids are simply absent.
func (r *CategoryRepository) GetMany(ctx context.Context, ids []uuid.UUID) ([]model.LinenCategory, error) {
	if len(ids) == 0 {
		return []model.LinenCategory{}, nil
	}
	var categories []model.LinenCategory
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+categoryColumns+`
		FROM linen_categories
		WHERE id = ANY(?)
	`, ids).Scan(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category model.LinenCategory) (*model.LinenCategory, error) {
	var saved model.LinenCategory
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO linen_categories (name, price_per_item, is_active)
		VALUES (?, ?, ?)
		RETURNING `+categoryColumns,
		category.Name,
		category.PricePerItem,
		category.IsActive,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category model.LinenCategory) (*model.LinenCategory, error) {
	var saved model.LinenCategory
	err := r.db.WithContext(ctx).Raw(`
		UPDATE linen_categories
		SET name = ?, price_per_item = ?, is_active = ?, updated_at = NOW()
		WHERE id = ?
		RETURNING `+categoryColumns,
		category.Name,
		category.PricePerItem,
		category.IsActive,
		category.ID,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	if saved.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &saved, nil
}

// UpdatePrices applies every price change or none of them. Existing batch
// items keep their snapshotted price.
func (r *CategoryRepository) UpdatePrices(ctx context.Context, updates []model.CategoryPriceUpdate) ([]model.LinenCategory, error) {
	updated := make([]model.LinenCategory, 0, len(updates))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			var saved model.LinenCategory
			if err := tx.Raw(`
				UPDATE linen_categories
				SET price_per_item = ?, updated_at = NOW()
				WHERE id = ?
				RETURNING `+categoryColumns,
				u.PricePerItem, u.ID,
			).Scan(&saved).Error; err != nil {
				return err
			}
			if saved.ID == uuid.Nil {
				return gorm.ErrRecordNotFound
			}
			updated = append(updated, saved)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
