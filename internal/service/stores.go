package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/linen-admin/internal/analytics"
	"github.com/nurpe/linen-admin/internal/model"
)

type ClientStore interface {
	List(ctx context.Context, filter model.ClientFilter) ([]model.Client, int64, error)
	ListAll(ctx context.Context) ([]model.Client, error)
	CountActive(ctx context.Context) (int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Client, error)
	Create(ctx context.Context, client model.Client) (*model.Client, error)
	Update(ctx context.Context, client model.Client) (*model.Client, error)
}

type CategoryStore interface {
	List(ctx context.Context, activeOnly bool) ([]model.LinenCategory, error)
	Get(ctx context.Context, id uuid.UUID) (*model.LinenCategory, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]model.LinenCategory, error)
	Create(ctx context.Context, category model.LinenCategory) (*model.LinenCategory, error)
	Update(ctx context.Context, category model.LinenCategory) (*model.LinenCategory, error)
	UpdatePrices(ctx context.Context, updates []model.CategoryPriceUpdate) ([]model.LinenCategory, error)
}

type BatchStore interface {
	List(ctx context.Context, filter model.BatchFilter) ([]model.Batch, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Batch, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*model.BatchWithItems, error)
	ListWithItems(ctx context.Context, from, to time.Time, clientID *uuid.UUID) ([]model.BatchWithItems, error)
	CountByStatus(ctx context.Context) (map[model.BatchStatus]int64, error)
	Create(ctx context.Context, batch model.Batch, items []model.BatchItem) (*model.Batch, error)
	Update(ctx context.Context, batch model.Batch) (*model.Batch, error)
	TransitionStatus(ctx context.Context, t model.StatusTransition) (*model.Batch, error)
	RecordReceipts(ctx context.Context, batchID uuid.UUID, receipts []model.ItemReceipt) error
	ListHistory(ctx context.Context, batchID uuid.UUID) ([]model.StatusChange, error)
}

type UserStore interface {
	List(ctx context.Context) ([]model.UserProfile, error)
	Get(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user model.UserProfile) (*model.UserProfile, error)
	Update(ctx context.Context, user model.UserProfile) (*model.UserProfile, error)
}

type SettingsStore interface {
	Get(ctx context.Context) (*model.BusinessSettings, error)
	Save(ctx context.Context, settings model.BusinessSettings) (*model.BusinessSettings, error)
}

type RFIDStore interface {
	List(ctx context.Context, filter model.RFIDFilter) ([]model.RFIDRecord, int64, error)
	CreateMany(ctx context.Context, records []model.RFIDRecord) ([]model.RFIDRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// IdentityProvider is the hosted auth service's admin API.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password string, metadata map[string]interface{}) (uuid.UUID, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// RoleCache keeps recent role lookups. Implementations may drop entries at will.
type RoleCache interface {
	Get(ctx context.Context, userID uuid.UUID) (model.Role, bool)
	Set(ctx context.Context, userID uuid.UUID, role model.Role)
	Delete(ctx context.Context, userID uuid.UUID)
}

type ExcelGenerator interface {
	Generate(report analytics.InvoiceReport, settings model.BusinessSettings) ([]byte, error)
}

type PDFGenerator interface {
	BatchInvoice(doc analytics.BatchInvoice) ([]byte, error)
	MonthlyReport(report analytics.InvoiceReport, settings model.BusinessSettings) ([]byte, error)
}
