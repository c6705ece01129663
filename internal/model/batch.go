package model

import (
	"time"

	"github.com/google/uuid"
)

type BatchStatus string

const (
	BatchStatusPickup    BatchStatus = "pickup"
	BatchStatusWashing   BatchStatus = "washing"
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusDelivered BatchStatus = "delivered"
)

type Batch struct {
	ID           uuid.UUID   `json:"id"`
	ClientID     uuid.UUID   `json:"client_id"`
	ClientName   string      `json:"client_name,omitempty"`
	PaperBatchID string      `json:"paper_batch_id"`
	PickupDate   time.Time   `json:"pickup_date"`
	DeliveryDate *time.Time  `json:"delivery_date"`
	Status       BatchStatus `json:"status"`
	Notes        string      `json:"notes"`
	TotalAmount  float64     `json:"total_amount"`
	CreatedBy    *uuid.UUID  `json:"created_by"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type BatchItem struct {
	ID               uuid.UUID `json:"id"`
	BatchID          uuid.UUID `json:"batch_id"`
	CategoryID       uuid.UUID `json:"category_id"`
	CategoryName     string    `json:"category_name"`
	CategoryPrice    float64   `json:"category_price"`
	QuantitySent     int       `json:"quantity_sent"`
	QuantityReceived int       `json:"quantity_received"`
	PricePerItem     float64   `json:"price_per_item"`
	Notes            string    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
}

// BatchWithItems is a batch loaded together with its line items, used by the
// report paths that recompute totals instead of trusting total_amount.
type BatchWithItems struct {
	Batch
	Items []BatchItem `json:"items"`
}

type StatusChange struct {
	ID         uuid.UUID    `json:"id"`
	BatchID    uuid.UUID    `json:"batch_id"`
	FromStatus *BatchStatus `json:"from_status"`
	ToStatus   BatchStatus  `json:"to_status"`
	Notes      string       `json:"notes"`
	ChangedBy  *uuid.UUID   `json:"changed_by"`
	ChangedAt  time.Time    `json:"changed_at"`
}

type BatchFilter struct {
	Status   *BatchStatus
	ClientID *uuid.UUID
	From     *time.Time
	To       *time.Time
	Search   string
	Page     Page
}

// ItemReceipt records the quantity counted back for one batch item.
type ItemReceipt struct {
	ItemID           uuid.UUID `json:"id"`
	QuantityReceived int       `json:"quantity_received"`
	Notes            *string   `json:"notes"`
}

// StatusTransition moves a batch from one status to the next. Edits, when
// set, carries field changes stored together with the status change.
type StatusTransition struct {
	BatchID      uuid.UUID
	From         BatchStatus
	To           BatchStatus
	Notes        string
	ChangedBy    *uuid.UUID
	DeliveryDate *time.Time
	Edits        *Batch
}
