package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/linen-admin/internal/model"
)

type CategoryService struct {
	categories CategoryStore
}

func NewCategoryService(categories CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

type CategoryPatch struct {
	Name         *string
	PricePerItem *float64
	IsActive     *bool
}

func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]model.LinenCategory, error) {
	categories, err := s.categories.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []model.LinenCategory{}
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, name string, price float64) (*model.LinenCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if price <= 0 {
		return nil, invalid("price_per_item must be greater than zero")
	}
	category, err := s.categories.Create(ctx, model.LinenCategory{Name: name, PricePerItem: price, IsActive: true})
	if err != nil {
		return nil, translate(err, "category")
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*model.LinenCategory, error) {
	category, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "category")
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		category.Name = name
	}
	if patch.PricePerItem != nil {
		if *patch.PricePerItem <= 0 {
			return nil, invalid("price_per_item must be greater than zero")
		}
		category.PricePerItem = *patch.PricePerItem
	}
	if patch.IsActive != nil {
		category.IsActive = *patch.IsActive
	}

	updated, err := s.categories.Update(ctx, *category)
	if err != nil {
		return nil, translate(err, "category")
	}
	return updated, nil
}

// UpdatePrices applies a bulk price change. Items of existing batches keep
// the price they were created with.
func (s *CategoryService) UpdatePrices(ctx context.Context, updates []model.CategoryPriceUpdate) ([]model.LinenCategory, error) {
	if len(updates) == 0 {
		return nil, invalid("updates must not be empty")
	}
	seen := make(map[uuid.UUID]struct{}, len(updates))
	for i, u := range updates {
		if u.ID == uuid.Nil {
			return nil, invalid("updates[%d].id is required", i)
		}
		if u.PricePerItem <= 0 {
			return nil, invalid("updates[%d].price_per_item must be greater than zero", i)
		}
		if _, dup := seen[u.ID]; dup {
			return nil, invalid("updates[%d] repeats category %s", i, u.ID)
		}
		seen[u.ID] = struct{}{}
	}

	updated, err := s.categories.UpdatePrices(ctx, updates)
	if err != nil {
		return nil, translate(err, "category")
	}
	return updated, nil
}
