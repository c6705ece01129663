package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/auth"
	"github.com/nurpe/linen-admin/internal/http/middleware"
	"github.com/nurpe/linen-admin/internal/model"
	"github.com/nurpe/linen-admin/internal/pricing"
	"github.com/nurpe/linen-admin/internal/service"
)

const testSecret = "test-secret"

// The stubs embed the store interfaces and implement only what the routes
// under test reach.

type stubClients struct {
	service.ClientStore
	items map[uuid.UUID]model.Client
}

func (s *stubClients) List(context.Context, model.ClientFilter) ([]model.Client, int64, error) {
	out := make([]model.Client, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (s *stubClients) Get(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (s *stubClients) Create(_ context.Context, client model.Client) (*model.Client, error) {
	for _, c := range s.items {
		if strings.EqualFold(c.Name, client.Name) {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	client.ID = uuid.New()
	s.items[client.ID] = client
	return &client, nil
}

type stubCategories struct {
	service.CategoryStore
}

func (stubCategories) Create(_ context.Context, category model.LinenCategory) (*model.LinenCategory, error) {
	category.ID = uuid.New()
	return &category, nil
}

type stubBatches struct {
	service.BatchStore
	batch model.Batch
}

func (s *stubBatches) Get(_ context.Context, id uuid.UUID) (*model.Batch, error) {
	if id != s.batch.ID {
		return nil, gorm.ErrRecordNotFound
	}
	b := s.batch
	return &b, nil
}

type stubUsers struct {
	service.UserStore
	items map[uuid.UUID]model.UserProfile
}

func (s *stubUsers) Get(_ context.Context, id uuid.UUID) (*model.UserProfile, error) {
	u, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

type testServer struct {
	router  *gin.Engine
	adminID   uuid.UUID
	staffID   uuid.UUID
	retiredID uuid.UUID
	batchID uuid.UUID
	pingErr error
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{adminID: uuid.New(), staffID: uuid.New(), retiredID: uuid.New(), batchID: uuid.New()}
	users := &stubUsers{items: map[uuid.UUID]model.UserProfile{
		ts.adminID:   {ID: ts.adminID, Role: model.RoleAdmin, IsActive: true},
		ts.staffID:   {ID: ts.staffID, Role: model.RoleStaff, IsActive: true},
		ts.retiredID: {ID: ts.retiredID, Role: model.RoleStaff, IsActive: false},
	}}
	clients := &stubClients{items: map[uuid.UUID]model.Client{}}
	batches := &stubBatches{batch: model.Batch{
		ID:         ts.batchID,
		PickupDate: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		Status:     model.BatchStatusPickup,
	}}
	log := zerolog.Nop()

	handler := NewHandler(Services{
		Clients:    service.NewClientService(clients),
		Categories: service.NewCategoryService(stubCategories{}),
		Batches:    service.NewBatchService(batches, clients, stubCategories{}, pricing.DefaultTable(10), log),
		Access:     service.NewAccessService(users, nil),
	}, func(context.Context) error { return ts.pingErr }, log)

	ts.router = NewRouter(handler, middleware.Auth(auth.NewParser(testSecret)), RouterConfig{Log: log})
	return ts
}

func token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type decoded struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *string         `json:"error"`
}

func (ts *testServer) do(t *testing.T, method, path string, userID uuid.UUID, body interface{}) (int, decoded) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+token(t, userID))
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var out decoded
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, http.MethodGet, "/api/health", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, body.Success)
	assert.Nil(t, body.Error)
	assert.JSONEq(t, `{"status":"ok"}`, string(body.Data))

	ts.pingErr = errors.New("connection refused")
	code, body = ts.do(t, http.MethodGet, "/api/health", uuid.Nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, body.Success)
}

func TestRoutingErrors(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, http.MethodGet, "/api/nowhere", ts.staffID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "route not found", *body.Error)

	code, body = ts.do(t, http.MethodPut, "/api/clients", ts.staffID, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.False(t, body.Success)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, http.MethodGet, "/api/clients", uuid.Nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, body.Success)

	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireActiveProfile(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, http.MethodPost, "/api/clients", uuid.New(), gin.H{"name": "Ghost Hotel"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, body.Success)

	code, body = ts.do(t, http.MethodGet, "/api/clients", ts.retiredID, nil)
	assert.Equal(t, http.StatusForbidden, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "account is not active", *body.Error)

	code, _ = ts.do(t, http.MethodGet, "/api/clients", ts.staffID, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = ts.do(t, http.MethodGet, "/api/clients", ts.adminID, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestPagination(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, http.MethodGet, "/api/clients?page=2&pageSize=5", ts.staffID, nil)
	require.Equal(t, http.StatusOK, code)
	var page model.PageResult[model.Client]
	require.NoError(t, json.Unmarshal(body.Data, &page))
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.PageSize)

	for _, query := range []string{"page=0", "page=abc", "pageSize=101", "pageSize=0"} {
		code, _ := ts.do(t, http.MethodGet, "/api/clients?"+query, ts.staffID, nil)
		assert.Equal(t, http.StatusBadRequest, code, query)
	}
}

func TestCreateClient(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, http.MethodPost, "/api/clients", ts.staffID, gin.H{"name": "Harbour Hotel"})
	require.Equal(t, http.StatusCreated, code)
	var created model.Client
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.Equal(t, "Harbour Hotel", created.Name)
	assert.True(t, created.IsActive)

	code, body = ts.do(t, http.MethodPost, "/api/clients", ts.staffID, gin.H{"name": "harbour hotel"})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, body.Success)

	code, _ = ts.do(t, http.MethodPost, "/api/clients", ts.staffID, gin.H{"email": "x@y.z"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = ts.do(t, http.MethodGet, "/api/clients/"+uuid.NewString(), ts.staffID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = ts.do(t, http.MethodGet, "/api/clients/not-a-uuid", ts.staffID, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAdminOnlyRoutes(t *testing.T) {
	ts := newTestServer(t)
	payload := gin.H{"name": "Napkin", "price_per_item": 3.5}

	code, body := ts.do(t, http.MethodPost, "/api/categories", ts.staffID, payload)
	assert.Equal(t, http.StatusForbidden, code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "admin access required", *body.Error)

	code, _ = ts.do(t, http.MethodPost, "/api/categories", uuid.New(), payload)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = ts.do(t, http.MethodPost, "/api/categories", ts.adminID, payload)
	assert.Equal(t, http.StatusCreated, code)
}

func TestInvalidTransition(t *testing.T) {
	ts := newTestServer(t)

	code, body := ts.do(t, http.MethodPatch, "/api/batches/"+ts.batchID.String(), ts.staffID, gin.H{"status": "delivered"})
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, body.Error)
	assert.Contains(t, *body.Error, "invalid status transition")

	code, _ = ts.do(t, http.MethodPatch, "/api/batches/"+uuid.NewString(), ts.staffID, gin.H{"status": "washing"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSendFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/file", func(c *gin.Context) {
		sendFile(c, "linen-report-2024-03.pdf", "application/pdf", []byte("%PDF-1.3"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/file", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="linen-report-2024-03.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}
