package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/nurpe/linen-admin/internal/model"
)

const maxRFIDBody = 4 << 20

type rfidRequest struct {
	RFIDNumber    string           `json:"rfid_number"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	ClientID      *uuid.UUID       `json:"client_id"`
	Status        model.RFIDStatus `json:"status"`
	Condition     string           `json:"condition"`
	Location      string           `json:"location"`
	WashCount     int              `json:"wash_count"`
	LastScannedAt *time.Time       `json:"last_scanned_at"`
	Notes         string           `json:"notes"`
	Payload       datatypes.JSON   `json:"payload"`
}

func (r rfidRequest) record() model.RFIDRecord {
	return model.RFIDRecord{
		RFIDNumber:    r.RFIDNumber,
		CategoryID:    r.CategoryID,
		ClientID:      r.ClientID,
		Status:        r.Status,
		Condition:     r.Condition,
		Location:      r.Location,
		WashCount:     r.WashCount,
		LastScannedAt: r.LastScannedAt,
		Notes:         r.Notes,
		Payload:       r.Payload,
	}
}

func (h *Handler) listRFID(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	clientID, ok := queryUUID(c, "client_id")
	if !ok {
		return
	}
	filter := model.RFIDFilter{ClientID: clientID, Search: c.Query("search"), Page: page}
	if raw := c.Query("status"); raw != "" {
		status := model.RFIDStatus(raw)
		filter.Status = &status
	}

	result, err := h.svc.RFID.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}

// createRFID accepts a single record object or an array of records.
func (h *Handler) createRFID(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRFIDBody))
	if err != nil {
		badRequest(c, "could not read body")
		return
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		badRequest(c, "body is required")
		return
	}

	var reqs []rfidRequest
	if body[0] == '[' {
		err = json.Unmarshal(body, &reqs)
	} else {
		var one rfidRequest
		err = json.Unmarshal(body, &one)
		reqs = []rfidRequest{one}
	}
	if err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	records := make([]model.RFIDRecord, 0, len(reqs))
	for _, r := range reqs {
		records = append(records, r.record())
	}
	saved, err := h.svc.RFID.Create(c.Request.Context(), records)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, saved)
}

func (h *Handler) deleteRFID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.RFID.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}
