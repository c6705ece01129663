package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/linen-admin/internal/model"
	"github.com/nurpe/linen-admin/internal/service"
)

type batchItemRequest struct {
	CategoryID       uuid.UUID `json:"category_id" binding:"required"`
	QuantitySent     int       `json:"quantity_sent" binding:"min=0"`
	QuantityReceived *int      `json:"quantity_received"`
	PricePerItem     *float64  `json:"price_per_item"`
	Notes            string    `json:"notes"`
}

type createBatchRequest struct {
	ClientID     uuid.UUID          `json:"client_id" binding:"required"`
	PaperBatchID string             `json:"paper_batch_id"`
	PickupDate   string             `json:"pickup_date" binding:"required"`
	Notes        string             `json:"notes"`
	Items        []batchItemRequest `json:"items" binding:"required,min=1,dive"`
}

type updateBatchRequest struct {
	Status       *model.BatchStatus `json:"status"`
	Notes        *string            `json:"notes"`
	PaperBatchID *string            `json:"paper_batch_id"`
	PickupDate   *string            `json:"pickup_date"`
	DeliveryDate *string            `json:"delivery_date"`
}

type receiptsRequest struct {
	Items []model.ItemReceipt `json:"items" binding:"required,min=1"`
}

func (h *Handler) listBatches(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	clientID, ok := queryUUID(c, "client_id")
	if !ok {
		return
	}
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	filter := model.BatchFilter{
		ClientID: clientID,
		From:     from,
		To:       to,
		Search:   c.Query("search"),
		Page:     page,
	}
	if raw := c.Query("status"); raw != "" {
		status := model.BatchStatus(raw)
		filter.Status = &status
	}

	result, err := h.svc.Batches.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

func (h *Handler) createBatch(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	pickup, err := parseDate(req.PickupDate)
	if err != nil {
		badRequest(c, "invalid pickup_date")
		return
	}

	items := make([]service.CreateItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.CreateItemInput{
			CategoryID:       it.CategoryID,
			QuantitySent:     it.QuantitySent,
			QuantityReceived: it.QuantityReceived,
			PricePerItem:     it.PricePerItem,
			Notes:            it.Notes,
		})
	}

	creator := principal(c).UserID
	batch, err := h.svc.Batches.Create(c.Request.Context(), service.CreateBatchInput{
		ClientID:     req.ClientID,
		PaperBatchID: req.PaperBatchID,
		PickupDate:   pickup,
		Notes:        req.Notes,
		Items:        items,
		CreatedBy:    &creator,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, batch)
}

func (h *Handler) getBatch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	batch, err := h.svc.Batches.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, batch)
}

func (h *Handler) updateBatch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	pickup, err := optionalDate(req.PickupDate)
	if err != nil {
		badRequest(c, "invalid pickup_date")
		return
	}
	delivery, err := optionalDate(req.DeliveryDate)
	if err != nil {
		badRequest(c, "invalid delivery_date")
		return
	}

	actor := principal(c).UserID
	batch, err := h.svc.Batches.Update(c.Request.Context(), id, service.BatchPatch{
		Status:       req.Status,
		Notes:        req.Notes,
		PaperBatchID: req.PaperBatchID,
		PickupDate:   pickup,
		DeliveryDate: delivery,
		ChangedBy:    &actor,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, batch)
}

func (h *Handler) getBatchItems(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.svc.Batches.Items(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

func (h *Handler) recordReceipts(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req receiptsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	view, err := h.svc.Batches.RecordReceipts(c.Request.Context(), id, req.Items)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

func (h *Handler) batchHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	history, err := h.svc.Batches.History(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, history)
}

func (h *Handler) batchTransitions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	options, err := h.svc.Batches.Transitions(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, options)
}
