package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/linen-admin/internal/model"
)

const maxRFIDBatch = 500

type RFIDService struct {
	records RFIDStore
}

func NewRFIDService(records RFIDStore) *RFIDService {
	return &RFIDService{records: records}
}

func (s *RFIDService) List(ctx context.Context, filter model.RFIDFilter) (model.PageResult[model.RFIDRecord], error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return model.PageResult[model.RFIDRecord]{}, invalid("unknown rfid status %q", *filter.Status)
	}
	filter.Search = strings.TrimSpace(filter.Search)
	records, total, err := s.records.List(ctx, filter)
	if err != nil {
		return model.PageResult[model.RFIDRecord]{}, err
	}
	return model.NewPageResult(records, filter.Page, total), nil
}

// Create stores one or more scanned tags. Either all records are stored or none.
func (s *RFIDService) Create(ctx context.Context, records []model.RFIDRecord) ([]model.RFIDRecord, error) {
	if len(records) == 0 {
		return nil, invalid("at least one record is required")
	}
	if len(records) > maxRFIDBatch {
		return nil, invalid("at most %d records per request", maxRFIDBatch)
	}

	seen := make(map[string]struct{}, len(records))
	for i := range records {
		r := &records[i]
		r.RFIDNumber = strings.TrimSpace(r.RFIDNumber)
		if r.RFIDNumber == "" {
			return nil, invalid("records[%d].rfid_number is required", i)
		}
		key := strings.ToUpper(r.RFIDNumber)
		if _, dup := seen[key]; dup {
			return nil, invalid("records[%d] repeats rfid_number %s", i, r.RFIDNumber)
		}
		seen[key] = struct{}{}
		if r.Status == "" {
			r.Status = model.RFIDStatusActive
		}
		if !r.Status.Valid() {
			return nil, invalid("records[%d].status %q is not valid", i, r.Status)
		}
		if r.WashCount < 0 {
			return nil, invalid("records[%d].wash_count must not be negative", i)
		}
	}

	saved, err := s.records.CreateMany(ctx, records)
	if err != nil {
		return nil, translate(err, "rfid record")
	}
	return saved, nil
}

func (s *RFIDService) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(s.records.Delete(ctx, id), "rfid record")
}
