package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/analytics"
	"github.com/nurpe/linen-admin/internal/model"
	"github.com/nurpe/linen-admin/internal/repository"
)

var errUniqueViolation = &pgconn.PgError{Code: repository.PgErrUniqueViolation}

type fakeClients struct {
	items map[uuid.UUID]model.Client
	order []uuid.UUID
}

func newFakeClients(clients ...model.Client) *fakeClients {
	f := &fakeClients{items: map[uuid.UUID]model.Client{}}
	for _, c := range clients {
		f.items[c.ID] = c
		f.order = append(f.order, c.ID)
	}
	return f
}

func (f *fakeClients) List(_ context.Context, _ model.ClientFilter) ([]model.Client, int64, error) {
	all, _ := f.ListAll(context.Background())
	return all, int64(len(all)), nil
}

func (f *fakeClients) ListAll(context.Context) ([]model.Client, error) {
	out := make([]model.Client, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.items[id])
	}
	return out, nil
}

func (f *fakeClients) CountActive(context.Context) (int64, error) {
	var n int64
	for _, c := range f.items {
		if c.IsActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeClients) Get(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f *fakeClients) Create(_ context.Context, client model.Client) (*model.Client, error) {
	for _, c := range f.items {
		if strings.EqualFold(c.Name, client.Name) {
			return nil, errUniqueViolation
		}
	}
	client.ID = uuid.New()
	f.items[client.ID] = client
	f.order = append(f.order, client.ID)
	return &client, nil
}

func (f *fakeClients) Update(_ context.Context, client model.Client) (*model.Client, error) {
	if _, ok := f.items[client.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	f.items[client.ID] = client
	return &client, nil
}

type fakeCategories struct {
	items   map[uuid.UUID]model.LinenCategory
	updated []model.CategoryPriceUpdate
}

func newFakeCategories(categories ...model.LinenCategory) *fakeCategories {
	f := &fakeCategories{items: map[uuid.UUID]model.LinenCategory{}}
	for _, c := range categories {
		f.items[c.ID] = c
	}
	return f
}

func (f *fakeCategories) List(_ context.Context, activeOnly bool) ([]model.LinenCategory, error) {
	var out []model.LinenCategory
	for _, c := range f.items {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategories) Get(_ context.Context, id uuid.UUID) (*model.LinenCategory, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f *fakeCategories) GetMany(_ context.Context, ids []uuid.UUID) ([]model.LinenCategory, error) {
	var out []model.LinenCategory
	for _, id := range ids {
		if c, ok := f.items[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategories) Create(_ context.Context, category model.LinenCategory) (*model.LinenCategory, error) {
	category.ID = uuid.New()
	f.items[category.ID] = category
	return &category, nil
}

func (f *fakeCategories) Update(_ context.Context, category model.LinenCategory) (*model.LinenCategory, error) {
	f.items[category.ID] = category
	return &category, nil
}

func (f *fakeCategories) UpdatePrices(_ context.Context, updates []model.CategoryPriceUpdate) ([]model.LinenCategory, error) {
	f.updated = updates
	out := make([]model.LinenCategory, 0, len(updates))
	for _, u := range updates {
		c, ok := f.items[u.ID]
		if !ok {
			return nil, gorm.ErrRecordNotFound
		}
		c.PricePerItem = u.PricePerItem
		f.items[u.ID] = c
		out = append(out, c)
	}
	return out, nil
}

type fakeBatches struct {
	items       map[uuid.UUID]*model.BatchWithItems
	order       []uuid.UUID
	history     map[uuid.UUID][]model.StatusChange
	transitions []model.StatusTransition
	updates     int
	// staleStatus makes the next transition behave as if another request won.
	staleStatus bool
}

func newFakeBatches(batches ...model.BatchWithItems) *fakeBatches {
	f := &fakeBatches{items: map[uuid.UUID]*model.BatchWithItems{}, history: map[uuid.UUID][]model.StatusChange{}}
	for i := range batches {
		b := batches[i]
		f.items[b.ID] = &b
		f.order = append(f.order, b.ID)
	}
	return f
}

func (f *fakeBatches) List(context.Context, model.BatchFilter) ([]model.Batch, int64, error) {
	var out []model.Batch
	for _, id := range f.order {
		out = append(out, f.items[id].Batch)
	}
	return out, int64(len(out)), nil
}

func (f *fakeBatches) Get(_ context.Context, id uuid.UUID) (*model.Batch, error) {
	b, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := b.Batch
	return &out, nil
}

func (f *fakeBatches) GetWithItems(_ context.Context, id uuid.UUID) (*model.BatchWithItems, error) {
	b, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := model.BatchWithItems{Batch: b.Batch, Items: append([]model.BatchItem(nil), b.Items...)}
	return &out, nil
}

func (f *fakeBatches) ListWithItems(_ context.Context, from, to time.Time, clientID *uuid.UUID) ([]model.BatchWithItems, error) {
	var out []model.BatchWithItems
	for _, id := range f.order {
		b := f.items[id]
		if b.PickupDate.Before(from) || !b.PickupDate.Before(to) {
			continue
		}
		if clientID != nil && b.ClientID != *clientID {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBatches) CountByStatus(context.Context) (map[model.BatchStatus]int64, error) {
	out := map[model.BatchStatus]int64{}
	for _, b := range f.items {
		out[b.Status]++
	}
	return out, nil
}

func (f *fakeBatches) Create(_ context.Context, batch model.Batch, items []model.BatchItem) (*model.Batch, error) {
	batch.ID = uuid.New()
	inputs := make([]analytics.ItemInput, 0, len(items))
	for i := range items {
		items[i].ID = uuid.New()
		items[i].BatchID = batch.ID
		inputs = append(inputs, analytics.ItemInput{QuantitySent: items[i].QuantitySent, PricePerItem: items[i].PricePerItem})
	}
	batch.TotalAmount = analytics.BatchTotal(inputs)
	f.items[batch.ID] = &model.BatchWithItems{Batch: batch, Items: items}
	f.order = append(f.order, batch.ID)
	return &batch, nil
}

func (f *fakeBatches) Update(_ context.Context, batch model.Batch) (*model.Batch, error) {
	b, ok := f.items[batch.ID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	f.updates++
	b.Batch = batch
	return &batch, nil
}

func (f *fakeBatches) TransitionStatus(_ context.Context, t model.StatusTransition) (*model.Batch, error) {
	b, ok := f.items[t.BatchID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if f.staleStatus || b.Status != t.From {
		return nil, repository.ErrStatusChanged
	}
	if t.Edits != nil {
		f.updates++
		b.PaperBatchID = t.Edits.PaperBatchID
		b.PickupDate = t.Edits.PickupDate
		b.DeliveryDate = t.Edits.DeliveryDate
		b.Notes = t.Edits.Notes
	}
	b.Status = t.To
	if t.Notes != "" {
		b.Notes = t.Notes
	}
	if b.DeliveryDate == nil && t.DeliveryDate != nil {
		b.DeliveryDate = t.DeliveryDate
	}
	f.transitions = append(f.transitions, t)
	prev := t.From
	f.history[t.BatchID] = append(f.history[t.BatchID], model.StatusChange{
		ID: uuid.New(), BatchID: t.BatchID, FromStatus: &prev, ToStatus: t.To, Notes: t.Notes, ChangedBy: t.ChangedBy,
	})
	out := b.Batch
	return &out, nil
}

func (f *fakeBatches) RecordReceipts(_ context.Context, batchID uuid.UUID, receipts []model.ItemReceipt) error {
	b, ok := f.items[batchID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, rc := range receipts {
		found := false
		for i := range b.Items {
			if b.Items[i].ID == rc.ItemID {
				b.Items[i].QuantityReceived = rc.QuantityReceived
				if rc.Notes != nil {
					b.Items[i].Notes = *rc.Notes
				}
				found = true
			}
		}
		if !found {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (f *fakeBatches) ListHistory(_ context.Context, batchID uuid.UUID) ([]model.StatusChange, error) {
	return f.history[batchID], nil
}

type fakeUsers struct {
	items     map[uuid.UUID]model.UserProfile
	createErr error
	gets      int
}

func newFakeUsers(users ...model.UserProfile) *fakeUsers {
	f := &fakeUsers{items: map[uuid.UUID]model.UserProfile{}}
	for _, u := range users {
		f.items[u.ID] = u
	}
	return f
}

func (f *fakeUsers) List(context.Context) ([]model.UserProfile, error) {
	var out []model.UserProfile
	for _, u := range f.items {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) Get(_ context.Context, id uuid.UUID) (*model.UserProfile, error) {
	f.gets++
	u, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (f *fakeUsers) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range f.items {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) Create(_ context.Context, user model.UserProfile) (*model.UserProfile, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.items[user.ID] = user
	return &user, nil
}

func (f *fakeUsers) Update(_ context.Context, user model.UserProfile) (*model.UserProfile, error) {
	f.items[user.ID] = user
	return &user, nil
}

type fakeIdentity struct {
	createErr error
	created   []string
	deleted   []uuid.UUID
	nextID    uuid.UUID
}

func (f *fakeIdentity) CreateUser(_ context.Context, email, _ string, _ map[string]interface{}) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	f.created = append(f.created, email)
	if f.nextID == uuid.Nil {
		f.nextID = uuid.New()
	}
	return f.nextID, nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type memoryRoleCache struct {
	roles map[uuid.UUID]model.Role
}

func newMemoryRoleCache() *memoryRoleCache {
	return &memoryRoleCache{roles: map[uuid.UUID]model.Role{}}
}

func (c *memoryRoleCache) Get(_ context.Context, id uuid.UUID) (model.Role, bool) {
	r, ok := c.roles[id]
	return r, ok
}

func (c *memoryRoleCache) Set(_ context.Context, id uuid.UUID, role model.Role) {
	c.roles[id] = role
}

func (c *memoryRoleCache) Delete(_ context.Context, id uuid.UUID) {
	delete(c.roles, id)
}

type fakeSettings struct {
	stored *model.BusinessSettings
}

func (f *fakeSettings) Get(context.Context) (*model.BusinessSettings, error) {
	if f.stored == nil {
		return nil, gorm.ErrRecordNotFound
	}
	out := *f.stored
	return &out, nil
}

func (f *fakeSettings) Save(_ context.Context, settings model.BusinessSettings) (*model.BusinessSettings, error) {
	f.stored = &settings
	return &settings, nil
}

type fakeRFID struct {
	saved []model.RFIDRecord
}

func (f *fakeRFID) List(context.Context, model.RFIDFilter) ([]model.RFIDRecord, int64, error) {
	return f.saved, int64(len(f.saved)), nil
}

func (f *fakeRFID) CreateMany(_ context.Context, records []model.RFIDRecord) ([]model.RFIDRecord, error) {
	for i := range records {
		records[i].ID = uuid.New()
	}
	f.saved = append(f.saved, records...)
	return records, nil
}

func (f *fakeRFID) Delete(_ context.Context, id uuid.UUID) error {
	for i, r := range f.saved {
		if r.ID == id {
			f.saved = append(f.saved[:i], f.saved[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeExcel struct{ calls int }

func (f *fakeExcel) Generate(analytics.InvoiceReport, model.BusinessSettings) ([]byte, error) {
	f.calls++
	return []byte("xlsx"), nil
}

type fakePDF struct {
	invoices []analytics.BatchInvoice
	reports  int
}

func (f *fakePDF) BatchInvoice(doc analytics.BatchInvoice) ([]byte, error) {
	f.invoices = append(f.invoices, doc)
	return []byte("%PDF-invoice"), nil
}

func (f *fakePDF) MonthlyReport(analytics.InvoiceReport, model.BusinessSettings) ([]byte, error) {
	f.reports++
	return []byte("%PDF-report"), nil
}

var errBoom = errors.New("boom")
