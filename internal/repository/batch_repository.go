package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/model"
)

// ErrStatusChanged means the batch left the expected status between read and write.
var ErrStatusChanged = errors.New("batch status changed concurrently")

const batchColumns = `
	b.id,
	b.client_id,
	cl.name AS client_name,
	b.paper_batch_id,
	b.pickup_date,
	b.delivery_date,
	b.status,
	b.notes,
	b.total_amount,
	b.created_by,
	b.created_at,
	b.updated_at`

const itemColumns = `
	bi.id,
	bi.batch_id,
	bi.category_id,
	lc.name AS category_name,
	lc.price_per_item AS category_price,
	bi.quantity_sent,
	bi.quantity_received,
	bi.price_per_item,
	bi.notes,
	bi.created_at`

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) List(ctx context.Context, filter model.BatchFilter) ([]model.Batch, int64, error) {
	w := &where{}
	if filter.Status != nil {
		w.add("b.status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		w.add("b.client_id = ?", *filter.ClientID)
	}
	if filter.From != nil {
		w.add("b.pickup_date >= ?", *filter.From)
	}
	if filter.To != nil {
		w.add("b.pickup_date <= ?", *filter.To)
	}
	if filter.Search != "" {
		w.add("(b.paper_batch_id ILIKE ? OR cl.name ILIKE ?)", likePattern(filter.Search), likePattern(filter.Search))
	}

	from := ` FROM batches b JOIN clients cl ON cl.id = b.client_id`

	var total int64
	if err := r.db.WithContext(ctx).Raw(`SELECT COUNT(*)`+from+w.sql(), w.args...).Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	args := append(append([]interface{}{}, w.args...), filter.Page.Size, filter.Page.Offset())
	var batches []model.Batch
	if err := r.db.WithContext(ctx).Raw(`SELECT `+batchColumns+from+w.sql()+`
		ORDER BY b.pickup_date DESC, b.created_at DESC
		LIMIT ? OFFSET ?
	`, args...).Scan(&batches).Error; err != nil {
		return nil, 0, err
	}
	return batches, total, nil
}

func (r *BatchRepository) Get(ctx context.Context, id uuid.UUID) (*model.Batch, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *BatchRepository) get(tx *gorm.DB, id uuid.UUID) (*model.Batch, error) {
	var batch model.Batch
	if err := tx.Raw(`
		SELECT `+batchColumns+`
		FROM batches b
		JOIN clients cl ON cl.id = b.client_id
		WHERE b.id = ?
		LIMIT 1
	`, id).Scan(&batch).Error; err != nil {
		return nil, err
	}
	if batch.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &batch, nil
}

func (r *BatchRepository) ListItems(ctx context.Context, batchID uuid.UUID) ([]model.BatchItem, error) {
	var items []model.BatchItem
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+itemColumns+`
		FROM batch_items bi
		JOIN linen_categories lc ON lc.id = bi.category_id
		WHERE bi.batch_id = ?
		ORDER BY bi.created_at ASC, lc.name ASC
	`, batchID).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *BatchRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*model.BatchWithItems, error) {
	batch, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := r.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.BatchWithItems{Batch: *batch, Items: items}, nil
}

// ListWithItems loads every batch picked up in [from, to), optionally for a
// single client, together with its items.
func (r *BatchRepository) ListWithItems(ctx context.Context, from, to time.Time, clientID *uuid.UUID) ([]model.BatchWithItems, error) {
	w := &where{}
	w.add("b.pickup_date >= ?", from)
	w.add("b.pickup_date < ?", to)
	if clientID != nil {
		w.add("b.client_id = ?", *clientID)
	}

	var batches []model.Batch
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+batchColumns+`
		FROM batches b
		JOIN clients cl ON cl.id = b.client_id`+w.sql()+`
		ORDER BY b.pickup_date ASC, b.created_at ASC
	`, w.args...).Scan(&batches).Error; err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return []model.BatchWithItems{}, nil
	}

	ids := make([]uuid.UUID, len(batches))
	for i, b := range batches {
		ids[i] = b.ID
	}

	var items []model.BatchItem
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+itemColumns+`
		FROM batch_items bi
		JOIN linen_categories lc ON lc.id = bi.category_id
		WHERE bi.batch_id = ANY(?)
		ORDER BY bi.created_at ASC, lc.name ASC
	`, ids).Scan(&items).Error; err != nil {
		return nil, err
	}

	byBatch := make(map[uuid.UUID][]model.BatchItem, len(batches))
	for _, it := range items {
		byBatch[it.BatchID] = append(byBatch[it.BatchID], it)
	}

	result := make([]model.BatchWithItems, 0, len(batches))
	for _, b := range batches {
		result = append(result, model.BatchWithItems{Batch: b, Items: byBatch[b.ID]})
	}
	return result, nil
}

func (r *BatchRepository) CountByStatus(ctx context.Context) (map[model.BatchStatus]int64, error) {
	var rows []struct {
		Status model.BatchStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) AS count
		FROM batches
		GROUP BY status
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[model.BatchStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Create stores the batch, its items and the initial history entry in one
// transaction and recomputes total_amount from the stored items.
func (r *BatchRepository) Create(ctx context.Context, batch model.Batch, items []model.BatchItem) (*model.Batch, error) {
	var created *model.Batch
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var id uuid.UUID
		if err := tx.Raw(`
			INSERT INTO batches (
				client_id,
				paper_batch_id,
				pickup_date,
				delivery_date,
				status,
				notes,
				created_by
			) VALUES (?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`,
			batch.ClientID,
			batch.PaperBatchID,
			batch.PickupDate,
			batch.DeliveryDate,
			batch.Status,
			batch.Notes,
			batch.CreatedBy,
		).Scan(&id).Error; err != nil {
			return err
		}

		for _, item := range items {
			if err := tx.Exec(`
				INSERT INTO batch_items (batch_id, category_id, quantity_sent, quantity_received, price_per_item, notes)
				VALUES (?, ?, ?, ?, ?, ?)
			`, id, item.CategoryID, item.QuantitySent, item.QuantityReceived, item.PricePerItem, item.Notes).Error; err != nil {
				return err
			}
		}

		if err := tx.Exec(`
			INSERT INTO batch_status_history (batch_id, from_status, to_status, notes, changed_by)
			VALUES (?, NULL, ?, ?, ?)
		`, id, batch.Status, batch.Notes, batch.CreatedBy).Error; err != nil {
			return err
		}

		if err := recomputeTotal(tx, id); err != nil {
			return err
		}

		saved, err := r.get(tx, id)
		if err != nil {
			return err
		}
		created = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update writes the editable batch fields. Status and total are not touched here.
func (r *BatchRepository) Update(ctx context.Context, batch model.Batch) (*model.Batch, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE batches
		SET
			paper_batch_id = ?,
			pickup_date = ?,
			delivery_date = ?,
			notes = ?,
			updated_at = NOW()
		WHERE id = ?
	`, batch.PaperBatchID, batch.PickupDate, batch.DeliveryDate, batch.Notes, batch.ID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.Get(ctx, batch.ID)
}

// TransitionStatus moves a batch from one status to the next, guarded on the
// expected current status, and records the change in the history. Field edits
// in t.Edits are written in the same transaction, so a lost race leaves the
// batch untouched.
func (r *BatchRepository) TransitionStatus(ctx context.Context, t model.StatusTransition) (*model.Batch, error) {
	var updated *model.Batch
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if t.Edits != nil {
			res := tx.Exec(`
				UPDATE batches
				SET
					paper_batch_id = ?,
					pickup_date = ?,
					delivery_date = ?,
					notes = ?,
					updated_at = NOW()
				WHERE id = ? AND status = ?
			`, t.Edits.PaperBatchID, t.Edits.PickupDate, t.Edits.DeliveryDate, t.Edits.Notes, t.BatchID, t.From)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrStatusChanged
			}
		}

		res := tx.Exec(`
			UPDATE batches
			SET
				status = ?,
				notes = CASE WHEN ?::text <> '' THEN ?::text ELSE notes END,
				delivery_date = COALESCE(delivery_date, ?::date),
				updated_at = NOW()
			WHERE id = ? AND status = ?
		`, t.To, t.Notes, t.Notes, t.DeliveryDate, t.BatchID, t.From)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusChanged
		}

		if err := tx.Exec(`
			INSERT INTO batch_status_history (batch_id, from_status, to_status, notes, changed_by)
			VALUES (?, ?, ?, ?, ?)
		`, t.BatchID, t.From, t.To, t.Notes, t.ChangedBy).Error; err != nil {
			return err
		}

		saved, err := r.get(tx, t.BatchID)
		if err != nil {
			return err
		}
		updated = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *BatchRepository) RecordReceipts(ctx context.Context, batchID uuid.UUID, receipts []model.ItemReceipt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rc := range receipts {
			res := tx.Exec(`
				UPDATE batch_items
				SET quantity_received = ?, notes = COALESCE(?, notes)
				WHERE id = ? AND batch_id = ?
			`, rc.QuantityReceived, rc.Notes, rc.ItemID, batchID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		if err := tx.Exec(`UPDATE batches SET updated_at = NOW() WHERE id = ?`, batchID).Error; err != nil {
			return err
		}
		return recomputeTotal(tx, batchID)
	})
}

func (r *BatchRepository) ListHistory(ctx context.Context, batchID uuid.UUID) ([]model.StatusChange, error) {
	var history []model.StatusChange
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, batch_id, from_status, to_status, notes, changed_by, changed_at
		FROM batch_status_history
		WHERE batch_id = ?
		ORDER BY changed_at ASC
	`, batchID).Scan(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

func recomputeTotal(tx *gorm.DB, batchID uuid.UUID) error {
	return tx.Exec(`
		UPDATE batches
		SET total_amount = (
			SELECT COALESCE(SUM(quantity_sent * price_per_item), 0)
			FROM batch_items
			WHERE batch_id = ?
		)
		WHERE id = ?
	`, batchID, batchID).Error
}
