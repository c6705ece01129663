package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/linen-admin/internal/model"
	"github.com/nurpe/linen-admin/internal/service"
)

type categoryRequest struct {
	Name         string  `json:"name" binding:"required"`
	PricePerItem float64 `json:"price_per_item" binding:"required,gt=0"`
}

type categoryPatchRequest struct {
	Name         *string  `json:"name"`
	PricePerItem *float64 `json:"price_per_item"`
	IsActive     *bool    `json:"is_active"`
}

type bulkPriceRequest struct {
	Updates []model.CategoryPriceUpdate `json:"updates" binding:"required,min=1"`
}

func (h *Handler) listCategories(c *gin.Context) {
	activeOnly := strings.EqualFold(strings.TrimSpace(c.Query("active")), "true")
	categories, err := h.svc.Categories.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, categories)
}

func (h *Handler) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	category, err := h.svc.Categories.Create(c.Request.Context(), req.Name, req.PricePerItem)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, category)
}

func (h *Handler) updateCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req categoryPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	category, err := h.svc.Categories.Update(c.Request.Context(), id, service.CategoryPatch{
		Name:         req.Name,
		PricePerItem: req.PricePerItem,
		IsActive:     req.IsActive,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, category)
}

func (h *Handler) updateCategoryPrices(c *gin.Context) {
	var req bulkPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	categories, err := h.svc.Categories.UpdatePrices(c.Request.Context(), req.Updates)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, categories)
}
