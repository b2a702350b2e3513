package handler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/embunadw/wms/pkg/application/dto"
	"github.com/embunadw/wms/pkg/application/services/drafts"
	"github.com/embunadw/wms/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// DraftHandler serves the draft lifecycle: create, add and remove lines,
// submit and discard
type DraftHandler struct {
	svc    *drafts.Service
	logger *zap.Logger
}

func NewDraftHandler(svc *drafts.Service, logger *zap.Logger) *DraftHandler {
	return &DraftHandler{svc: svc, logger: logger}
}

type CreateDraftRequest struct {
	DocumentType string `json:"document_type" binding:"required"`
	SourceCode   string `json:"source_code"`
	Location     string `json:"location"`
}

// RawQuantity keeps the quantity exactly as typed so that "", "abc" and "1.5"
// are rejected by the quantity rules rather than by JSON binding
type RawQuantity string

func (q *RawQuantity) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*q = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = RawQuantity(s)
		return nil
	}
	*q = RawQuantity(data)
	return nil
}

type AddLineRequest struct {
	PartID     string           `json:"part_id"`
	PartNumber string           `json:"part_number"`
	Quantity   RawQuantity      `json:"quantity"`
	Priority   string           `json:"priority"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
	Notes      string           `json:"notes"`
}

type SelectSourceRequest struct {
	SourceCode string `json:"source_code" binding:"required"`
}

type AttachmentRequest struct {
	Kind   string `json:"kind"`
	Number string `json:"number"`
	Date   string `json:"date"`
}

type SubmitRequest struct {
	Code        string              `json:"code"`
	Date        string              `json:"date"`
	Location    string              `json:"location"`
	ToLocation  string              `json:"to_location"`
	PIC         string              `json:"pic"`
	Status      string              `json:"status"`
	Notes       string              `json:"notes"`
	Attachments []AttachmentRequest `json:"attachments"`
}

// AddLineResponse is the accepted line plus any advisory warnings
type AddLineResponse struct {
	Line     dto.LineView `json:"line"`
	Warnings []string     `json:"warnings,omitempty"`
}

type HistoryEntry struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Create opens a new draft
// POST /api/v1/drafts
func (h *DraftHandler) Create(c *gin.Context) {
	var req CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	docType, err := entities.ParseDocumentType(req.DocumentType)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	view, err := h.svc.Create(c.Request.Context(), drafts.CreateRequest{
		Type:       docType,
		SourceCode: req.SourceCode,
		Location:   req.Location,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	Created(c, view)
}

// Get returns a draft
// GET /api/v1/drafts/:id
func (h *DraftHandler) Get(c *gin.Context) {
	view, err := h.svc.Get(c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	Success(c, view)
}

// Discard drops a draft
// DELETE /api/v1/drafts/:id
func (h *DraftHandler) Discard(c *gin.Context) {
	if err := h.svc.Discard(c.Param("id")); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	Success(c, nil)
}

// AddLine validates and appends a line
// POST /api/v1/drafts/:id/lines
func (h *DraftHandler) AddLine(c *gin.Context) {
	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.svc.AddLine(c.Request.Context(), c.Param("id"), drafts.AddLineRequest{
		PartID:     entities.PartID(req.PartID),
		PartNumber: entities.PartNumber(req.PartNumber),
		Quantity:   string(req.Quantity),
		Priority:   req.Priority,
		UnitPrice:  req.UnitPrice,
		Notes:      req.Notes,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	Created(c, AddLineResponse{
		Line:     dto.NewLineView(result.Index, result.Line),
		Warnings: result.Warnings,
	})
}

// SelectSource sets or replaces the draft's source document
// PUT /api/v1/drafts/:id/source
func (h *DraftHandler) SelectSource(c *gin.Context) {
	var req SelectSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	view, err := h.svc.SelectSource(c.Request.Context(), c.Param("id"), req.SourceCode)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	Success(c, view)
}

// RemoveLine drops a line by index
// DELETE /api/v1/drafts/:id/lines/:index
func (h *DraftHandler) RemoveLine(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		BadRequest(c, "invalid line index")
		return
	}
	if err := h.svc.RemoveLine(c.Request.Context(), c.Param("id"), index); err != nil {
		RespondError(c, h.logger, err)
		return
	}

	view, err := h.svc.Get(c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	Success(c, view)
}

// Submit posts the draft to the WMS server
// POST /api/v1/drafts/:id/submit
func (h *DraftHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	header, err := req.toHeader()
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	created, err := h.svc.Submit(c.Request.Context(), c.Param("id"), header)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	Created(c, created)
}

// History lists what happened to a draft
// GET /api/v1/drafts/:id/history
func (h *DraftHandler) History(c *gin.Context) {
	history, err := h.svc.History(c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	entries := make([]HistoryEntry, 0, len(history))
	for _, e := range history {
		entries = append(entries, HistoryEntry{Type: e.Type(), Data: e.Data(), Timestamp: e.Timestamp()})
	}
	Success(c, entries)
}

func (r SubmitRequest) toHeader() (entities.Header, error) {
	header := entities.Header{
		Code:       r.Code,
		Location:   r.Location,
		ToLocation: r.ToLocation,
		PIC:        r.PIC,
		Status:     r.Status,
		Notes:      r.Notes,
	}

	if r.Date != "" {
		date, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			return header, err
		}
		header.Date = date
	}

	for _, a := range r.Attachments {
		var date time.Time
		if a.Date != "" {
			parsed, err := time.Parse(dateLayout, a.Date)
			if err != nil {
				return header, err
			}
			date = parsed
		}
		attachment, err := entities.NewAttachment(a.Kind, a.Number, date)
		if err != nil {
			return header, err
		}
		header.Attachments = append(header.Attachments, *attachment)
	}
	return header, nil
}
