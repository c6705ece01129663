package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/model"
)

type SettingsService struct {
	settings SettingsStore
}

func NewSettingsService(settings SettingsStore) *SettingsService {
	return &SettingsService{settings: settings}
}

func (s *SettingsService) Get(ctx context.Context) (*model.BusinessSettings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.BusinessSettings{Extra: []byte("{}")}, nil
		}
		return nil, err
	}
	return settings, nil
}

// Replace overwrites the business settings as a whole.
func (s *SettingsService) Replace(ctx context.Context, settings model.BusinessSettings) (*model.BusinessSettings, error) {
	settings.CompanyName = strings.TrimSpace(settings.CompanyName)
	if settings.CompanyName == "" {
		return nil, invalid("company_name is required")
	}
	settings.Address = strings.TrimSpace(settings.Address)
	settings.Phone = strings.TrimSpace(settings.Phone)
	settings.Email = strings.TrimSpace(settings.Email)
	settings.VATNumber = strings.TrimSpace(settings.VATNumber)
	settings.RegistrationNumber = strings.TrimSpace(settings.RegistrationNumber)

	if len(settings.Extra) > 0 {
		var obj map[string]interface{}
		if err := json.Unmarshal(settings.Extra, &obj); err != nil {
			return nil, invalid("extra must be a JSON object")
		}
	}

	saved, err := s.settings.Save(ctx, settings)
	if err != nil {
		return nil, translate(err, "settings")
	}
	return saved, nil
}
