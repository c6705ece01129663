package model

import (
	"time"

	"gorm.io/datatypes"
)

type BusinessSettings struct {
	CompanyName        string         `json:"company_name"`
	Address            string         `json:"address"`
	Phone              string         `json:"phone"`
	Email              string         `json:"email"`
	VATNumber          string         `json:"vat_number"`
	RegistrationNumber string         `json:"registration_number"`
	BankDetails        string         `json:"bank_details"`
	InvoiceFooter      string         `json:"invoice_footer"`
	Extra              datatypes.JSON `json:"extra"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
