package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/linen-admin/internal/http/middleware"
	"github.com/nurpe/linen-admin/internal/model"
	"github.com/nurpe/linen-admin/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Services struct {
	Clients    *service.ClientService
	Categories *service.CategoryService
	Batches    *service.BatchService
	Dashboard  *service.DashboardService
	Reports    *service.ReportService
	Users      *service.UserService
	Access     *service.AccessService
	Settings   *service.SettingsService
	RFID       *service.RFIDService
}

type Handler struct {
	svc  Services
	ping func(ctx context.Context) error
	log  zerolog.Logger
}

func NewHandler(svc Services, ping func(ctx context.Context) error, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, ping: ping, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api")
	api.GET("/health", h.health)

	protected := api.Group("")
	protected.Use(authMiddleware, middleware.RequireActive(h.svc.Access, h.log))
	admin := middleware.RequireAdmin(h.svc.Access, h.log)

	protected.GET("/clients", h.listClients)
	protected.POST("/clients", h.createClient)
	protected.GET("/clients/:id", h.getClient)
	protected.PATCH("/clients/:id", h.updateClient)
	protected.DELETE("/clients/:id", h.deactivateClient)

	protected.GET("/categories", h.listCategories)
	protected.POST("/categories", admin, h.createCategory)
	protected.PATCH("/categories", admin, h.updateCategoryPrices)
	protected.PATCH("/categories/:id", admin, h.updateCategory)

	protected.GET("/batches", h.listBatches)
	protected.POST("/batches", h.createBatch)
	protected.GET("/batches/:id", h.getBatch)
	protected.PATCH("/batches/:id", h.updateBatch)
	protected.GET("/batches/:id/items", h.getBatchItems)
	protected.PATCH("/batches/:id/items", h.recordReceipts)
	protected.GET("/batches/:id/history", h.batchHistory)
	protected.GET("/batches/:id/transitions", h.batchTransitions)

	protected.GET("/dashboard/stats", h.dashboardStats)
	protected.GET("/dashboard/reports", h.invoiceSummary)
	protected.GET("/dashboard/reports/pdf-stats", h.reportStats)
	protected.GET("/dashboard/reports/batch-invoice", h.batchInvoice)
	protected.GET("/dashboard/reports/export", h.exportReport)

	users := protected.Group("/users")
	users.Use(admin)
	users.GET("", h.listUsers)
	users.POST("", h.createUser)
	users.PATCH("/:id", h.updateUser)

	protected.GET("/settings", h.getSettings)
	protected.PUT("/settings", admin, h.replaceSettings)

	protected.GET("/rfid-data", h.listRFID)
	protected.POST("/rfid-data", h.createRFID)
	protected.DELETE("/rfid-data/:id", h.deleteRFID)
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			h.log.Error().Err(err).Msg("health check failed")
			fail(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	respond(c, http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		fail(c, http.StatusConflict, err.Error())
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func badRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, msg)
}

func principal(c *gin.Context) model.Principal {
	p, _ := middleware.MustPrincipal(c)
	return p
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// parsePage reads page and pageSize. Out of range values are rejected rather
// than clamped.
func parsePage(c *gin.Context) (model.Page, bool) {
	page := model.Page{Number: 1, Size: defaultPageSize}
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "page must be a positive integer")
			return model.Page{}, false
		}
		page.Number = n
	}
	if raw := strings.TrimSpace(c.Query("pageSize")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageSize {
			badRequest(c, "pageSize must be between 1 and 100")
			return model.Page{}, false
		}
		page.Size = n
	}
	return page, true
}

func queryUUID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid "+key)
		return nil, false
	}
	return &id, true
}

func queryBool(c *gin.Context, key string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, "invalid "+key)
		return nil, false
	}
	return &v, true
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "invalid "+key)
		return 0, false
	}
	return v, true
}

func queryDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	t, err := parseDate(raw)
	if err != nil {
		badRequest(c, "invalid "+key)
		return nil, false
	}
	return &t, true
}

func optionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := parseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
