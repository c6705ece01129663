package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/model"
)

const settingsColumns = `company_name, address, phone, email, vat_number, registration_number,
	bank_details, invoice_footer, extra, updated_at`

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (*model.BusinessSettings, error) {
	var rows []model.BusinessSettings
	if err := r.db.WithContext(ctx).Raw(`
		SELECT ` + settingsColumns + `
		FROM business_settings
		WHERE id = 1
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// Save upserts the single settings row.
func (r *SettingsRepository) Save(ctx context.Context, s model.BusinessSettings) (*model.BusinessSettings, error) {
	extra := s.Extra
	if len(extra) == 0 {
		extra = []byte("{}")
	}
	var saved model.BusinessSettings
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO business_settings (
			id, company_name, address, phone, email, vat_number, registration_number,
			bank_details, invoice_footer, extra, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
		ON CONFLICT (id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			vat_number = EXCLUDED.vat_number,
			registration_number = EXCLUDED.registration_number,
			bank_details = EXCLUDED.bank_details,
			invoice_footer = EXCLUDED.invoice_footer,
			extra = EXCLUDED.extra,
			updated_at = NOW()
		RETURNING `+settingsColumns,
		s.CompanyName, s.Address, s.Phone, s.Email, s.VATNumber, s.RegistrationNumber,
		s.BankDetails, s.InvoiceFooter, extra,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
