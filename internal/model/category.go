package model

import (
	"time"

	"github.com/google/uuid"
)

type LinenCategory struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	PricePerItem float64   `json:"price_per_item"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CategoryPriceUpdate is one entry of a bulk price change.
type CategoryPriceUpdate struct {
	ID           uuid.UUID `json:"id"`
	PricePerItem float64   `json:"price_per_item"`
}
