package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/model"
)

const rfidColumns = `
	r.id,
	r.rfid_number,
	r.category_id,
	lc.name AS category_name,
	r.client_id,
	cl.name AS client_name,
	r.status,
	r.condition,
	r.location,
	r.wash_count,
	r.last_scanned_at,
	r.notes,
	r.payload,
	r.created_at`

const rfidFrom = `
	FROM rfid_records r
	LEFT JOIN linen_categories lc ON lc.id = r.category_id
	LEFT JOIN clients cl ON cl.id = r.client_id`

type RFIDRepository struct {
	db *gorm.DB
}

func NewRFIDRepository(db *gorm.DB) *RFIDRepository {
	return &RFIDRepository{db: db}
}

func (r *RFIDRepository) List(ctx context.Context, filter model.RFIDFilter) ([]model.RFIDRecord, int64, error) {
	w := &where{}
	if filter.ClientID != nil {
		w.add("r.client_id = ?", *filter.ClientID)
	}
	if filter.Status != nil {
		w.add("r.status = ?", *filter.Status)
	}
	if filter.Search != "" {
		w.add("(r.rfid_number ILIKE ? OR r.location ILIKE ?)", likePattern(filter.Search), likePattern(filter.Search))
	}

	var total int64
	if err := r.db.WithContext(ctx).Raw(`SELECT COUNT(*)`+rfidFrom+w.sql(), w.args...).Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	args := append(append([]interface{}{}, w.args...), filter.Page.Size, filter.Page.Offset())
	var records []model.RFIDRecord
	if err := r.db.WithContext(ctx).Raw(`SELECT `+rfidColumns+rfidFrom+w.sql()+`
		ORDER BY r.created_at DESC
		LIMIT ? OFFSET ?
	`, args...).Scan(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// CreateMany inserts all records or none.
func (r *RFIDRepository) CreateMany(ctx context.Context, records []model.RFIDRecord) ([]model.RFIDRecord, error) {
	ids := make([]uuid.UUID, 0, len(records))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			payload := rec.Payload
			if len(payload) == 0 {
				payload = []byte("{}")
			}
			var id uuid.UUID
			if err := tx.Raw(`
				INSERT INTO rfid_records (
					rfid_number, category_id, client_id, status, condition,
					location, wash_count, last_scanned_at, notes, payload
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				RETURNING id
			`,
				rec.RFIDNumber, rec.CategoryID, rec.ClientID, rec.Status, rec.Condition,
				rec.Location, rec.WashCount, rec.LastScannedAt, rec.Notes, payload,
			).Scan(&id).Error; err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var saved []model.RFIDRecord
	if err := r.db.WithContext(ctx).Raw(`SELECT `+rfidColumns+rfidFrom+`
		WHERE r.id = ANY(?)
		ORDER BY r.rfid_number ASC
	`, ids).Scan(&saved).Error; err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *RFIDRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(`DELETE FROM rfid_records WHERE id = ?`, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
