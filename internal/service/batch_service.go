package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/analytics"
	"github.com/nurpe/linen-admin/internal/model"
	"github.com/nurpe/linen-admin/internal/pricing"
	"github.com/nurpe/linen-admin/internal/workflow"
)

type BatchService struct {
	batches    BatchStore
	clients    ClientStore
	categories CategoryStore
	prices     *pricing.Table
	calc       *analytics.Calculator
	log        zerolog.Logger
	now        func() time.Time
}

func NewBatchService(
	batches BatchStore,
	clients ClientStore,
	categories CategoryStore,
	prices *pricing.Table,
	log zerolog.Logger,
) *BatchService {
	if prices == nil {
		prices = pricing.DefaultTable(0)
	}
	return &BatchService{
		batches:    batches,
		clients:    clients,
		categories: categories,
		prices:     prices,
		calc:       analytics.NewCalculator(prices),
		log:        log,
		now:        time.Now,
	}
}

type CreateItemInput struct {
	CategoryID       uuid.UUID
	QuantitySent     int
	QuantityReceived *int
	// PricePerItem overrides the category price for this batch only.
	PricePerItem *float64
	Notes        string
}

type CreateBatchInput struct {
	ClientID     uuid.UUID
	PaperBatchID string
	PickupDate   time.Time
	Notes        string
	Items        []CreateItemInput
	CreatedBy    *uuid.UUID
}

// BatchPatch edits a batch. A non-nil Status requests a workflow transition
// and Notes then travel with it.
type BatchPatch struct {
	Status       *model.BatchStatus
	Notes        *string
	PaperBatchID *string
	PickupDate   *time.Time
	DeliveryDate *time.Time
	ChangedBy    *uuid.UUID
}

type BatchItemView struct {
	model.BatchItem
	Discrepancy analytics.Discrepancy `json:"discrepancy"`
	Pricing     analytics.ItemPricing `json:"pricing"`
}

type BatchItemsView struct {
	BatchID uuid.UUID              `json:"batch_id"`
	Items   []BatchItemView        `json:"items"`
	Summary analytics.BatchSummary `json:"summary"`
}

type BatchDetail struct {
	model.Batch
	Items        []BatchItemView        `json:"items"`
	Summary      analytics.BatchSummary `json:"summary"`
	NextStatuses []model.BatchStatus    `json:"next_statuses"`
}

type TransitionOptions struct {
	BatchID  uuid.UUID           `json:"batch_id"`
	Current  model.BatchStatus   `json:"current"`
	Next     []model.BatchStatus `json:"next"`
	Terminal bool                `json:"terminal"`
}

func (s *BatchService) List(ctx context.Context, filter model.BatchFilter) (model.PageResult[model.Batch], error) {
	if filter.Status != nil && !workflow.Known(*filter.Status) {
		return model.PageResult[model.Batch]{}, invalid("unknown status %q", *filter.Status)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return model.PageResult[model.Batch]{}, invalid("from must be before or equal to to")
	}
	filter.Search = strings.TrimSpace(filter.Search)

	batches, total, err := s.batches.List(ctx, filter)
	if err != nil {
		return model.PageResult[model.Batch]{}, err
	}
	return model.NewPageResult(batches, filter.Page, total), nil
}

func (s *BatchService) Get(ctx context.Context, id uuid.UUID) (*BatchDetail, error) {
	b, err := s.batches.GetWithItems(ctx, id)
	if err != nil {
		return nil, translate(err, "batch")
	}
	view := s.itemsView(*b)
	return &BatchDetail{
		Batch:        b.Batch,
		Items:        view.Items,
		Summary:      view.Summary,
		NextStatuses: workflow.NextStates(b.Status),
	}, nil
}

func (s *BatchService) Create(ctx context.Context, input CreateBatchInput) (*BatchDetail, error) {
	if input.ClientID == uuid.Nil {
		return nil, invalid("client_id is required")
	}
	if input.PickupDate.IsZero() {
		return nil, invalid("pickup_date is required")
	}
	if len(input.Items) == 0 {
		return nil, invalid("at least one item is required")
	}

	client, err := s.clients.Get(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("client %s does not exist", input.ClientID)
		}
		return nil, err
	}
	if !client.IsActive {
		return nil, invalid("client %s is inactive", client.Name)
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	seen := make(map[uuid.UUID]struct{}, len(input.Items))
	for i, it := range input.Items {
		if it.CategoryID == uuid.Nil {
			return nil, invalid("items[%d].category_id is required", i)
		}
		if _, dup := seen[it.CategoryID]; dup {
			return nil, invalid("items[%d] repeats category %s", i, it.CategoryID)
		}
		seen[it.CategoryID] = struct{}{}
		if it.QuantitySent < 0 {
			return nil, invalid("items[%d].quantity_sent must not be negative", i)
		}
		if it.QuantityReceived != nil && *it.QuantityReceived < 0 {
			return nil, invalid("items[%d].quantity_received must not be negative", i)
		}
		if it.PricePerItem != nil && *it.PricePerItem < 0 {
			return nil, invalid("items[%d].price_per_item must not be negative", i)
		}
		ids = append(ids, it.CategoryID)
	}

	categories, err := s.categories.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.LinenCategory, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	items := make([]model.BatchItem, 0, len(input.Items))
	for i, it := range input.Items {
		category, ok := byID[it.CategoryID]
		if !ok {
			return nil, invalid("items[%d].category_id %s does not exist", i, it.CategoryID)
		}
		if !category.IsActive {
			return nil, invalid("category %s is inactive", category.Name)
		}
		// snapshot the price now, later category price changes do not apply
		price := s.prices.Resolve(it.PricePerItem, 0, category.PricePerItem, category.Name)
		if price.Fallback() {
			s.log.Warn().
				Str("category", category.Name).
				Float64("price", price.Price).
				Msg("no price for category, using fallback")
		}
		received := 0
		if it.QuantityReceived != nil {
			received = *it.QuantityReceived
		}
		items = append(items, model.BatchItem{
			CategoryID:       category.ID,
			CategoryName:     category.Name,
			QuantitySent:     it.QuantitySent,
			QuantityReceived: received,
			PricePerItem:     price.Price,
			Notes:            strings.TrimSpace(it.Notes),
		})
	}

	created, err := s.batches.Create(ctx, model.Batch{
		ClientID:     client.ID,
		PaperBatchID: strings.TrimSpace(input.PaperBatchID),
		PickupDate:   dateOnly(input.PickupDate),
		Status:       workflow.Initial,
		Notes:        strings.TrimSpace(input.Notes),
		CreatedBy:    input.CreatedBy,
	}, items)
	if err != nil {
		return nil, translate(err, "batch")
	}

	s.log.Info().
		Str("batch_id", created.ID.String()).
		Str("client", client.Name).
		Int("items", len(items)).
		Float64("total_amount", created.TotalAmount).
		Msg("batch created")

	return s.Get(ctx, created.ID)
}

// Update applies field edits and, when a status is given, a workflow
// transition. Edits and transition are stored together or not at all.
func (s *BatchService) Update(ctx context.Context, id uuid.UUID, patch BatchPatch) (*BatchDetail, error) {
	current, err := s.batches.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "batch")
	}

	edited := *current
	fieldsChanged := false
	if patch.PaperBatchID != nil {
		edited.PaperBatchID = strings.TrimSpace(*patch.PaperBatchID)
		fieldsChanged = true
	}
	if patch.PickupDate != nil {
		if patch.PickupDate.IsZero() {
			return nil, invalid("pickup_date cannot be empty")
		}
		edited.PickupDate = dateOnly(*patch.PickupDate)
		fieldsChanged = true
	}
	if patch.DeliveryDate != nil {
		d := dateOnly(*patch.DeliveryDate)
		edited.DeliveryDate = &d
		fieldsChanged = true
	}
	if patch.Status == nil && patch.Notes != nil {
		edited.Notes = strings.TrimSpace(*patch.Notes)
		fieldsChanged = true
	}
	if edited.DeliveryDate != nil && edited.DeliveryDate.Before(edited.PickupDate) {
		return nil, invalid("delivery_date must not be before pickup_date")
	}

	if patch.Status != nil {
		if err := workflow.Validate(current.Status, *patch.Status); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	if !fieldsChanged && patch.Status == nil {
		return nil, invalid("nothing to update")
	}

	if patch.Status == nil {
		if _, err := s.batches.Update(ctx, edited); err != nil {
			return nil, translate(err, "batch")
		}
		return s.Get(ctx, id)
	}

	t := model.StatusTransition{
		BatchID:   id,
		From:      current.Status,
		To:        *patch.Status,
		ChangedBy: patch.ChangedBy,
	}
	if patch.Notes != nil {
		t.Notes = strings.TrimSpace(*patch.Notes)
	}
	if *patch.Status == model.BatchStatusDelivered {
		today := dateOnly(s.now())
		t.DeliveryDate = &today
	}
	if fieldsChanged {
		t.Edits = &edited
	}
	if _, err := s.batches.TransitionStatus(ctx, t); err != nil {
		return nil, translate(err, "batch")
	}
	s.log.Info().
		Str("batch_id", id.String()).
		Str("from", string(current.Status)).
		Str("to", string(*patch.Status)).
		Bool("fields_changed", fieldsChanged).
		Msg("batch status changed")

	return s.Get(ctx, id)
}

func (s *BatchService) Items(ctx context.Context, id uuid.UUID) (*BatchItemsView, error) {
	b, err := s.batches.GetWithItems(ctx, id)
	if err != nil {
		return nil, translate(err, "batch")
	}
	view := s.itemsView(*b)
	return &view, nil
}

// RecordReceipts stores the counted-back quantities for some of a batch's items.
func (s *BatchService) RecordReceipts(ctx context.Context, id uuid.UUID, receipts []model.ItemReceipt) (*BatchItemsView, error) {
	if len(receipts) == 0 {
		return nil, invalid("items must not be empty")
	}
	seen := make(map[uuid.UUID]struct{}, len(receipts))
	for i, rc := range receipts {
		if rc.ItemID == uuid.Nil {
			return nil, invalid("items[%d].id is required", i)
		}
		if rc.QuantityReceived < 0 {
			return nil, invalid("items[%d].quantity_received must not be negative", i)
		}
		if _, dup := seen[rc.ItemID]; dup {
			return nil, invalid("items[%d] repeats item %s", i, rc.ItemID)
		}
		seen[rc.ItemID] = struct{}{}
	}

	if _, err := s.batches.Get(ctx, id); err != nil {
		return nil, translate(err, "batch")
	}
	if err := s.batches.RecordReceipts(ctx, id, receipts); err != nil {
		return nil, translate(err, "batch item")
	}
	return s.Items(ctx, id)
}

func (s *BatchService) History(ctx context.Context, id uuid.UUID) ([]model.StatusChange, error) {
	if _, err := s.batches.Get(ctx, id); err != nil {
		return nil, translate(err, "batch")
	}
	history, err := s.batches.ListHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []model.StatusChange{}
	}
	return history, nil
}

func (s *BatchService) Transitions(ctx context.Context, id uuid.UUID) (*TransitionOptions, error) {
	b, err := s.batches.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "batch")
	}
	return &TransitionOptions{
		BatchID:  b.ID,
		Current:  b.Status,
		Next:     workflow.NextStates(b.Status),
		Terminal: workflow.Terminal(b.Status),
	}, nil
}

func (s *BatchService) itemsView(b model.BatchWithItems) BatchItemsView {
	lines, summary := s.calc.Batch(analytics.ItemInputs(b.Items))
	items := make([]BatchItemView, 0, len(b.Items))
	for i, it := range b.Items {
		if lines[i].Pricing.PriceFallback {
			s.log.Warn().
				Str("batch_id", b.ID.String()).
				Str("item_id", it.ID.String()).
				Str("category", it.CategoryName).
				Msg("item priced with fallback unit price")
		}
		items = append(items, BatchItemView{
			BatchItem:   it,
			Discrepancy: lines[i].Discrepancy,
			Pricing:     lines[i].Pricing,
		})
	}
	return BatchItemsView{BatchID: b.ID, Items: items, Summary: summary}
}
