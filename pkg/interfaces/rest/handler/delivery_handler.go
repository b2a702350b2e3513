package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/embunadw/wms/pkg/application/services/deliveries"
	"github.com/embunadw/wms/pkg/domain/entities"
)

// DeliveryHandler serves delivery status changes and PO status updates
type DeliveryHandler struct {
	svc    *deliveries.Service
	logger *zap.Logger
}

func NewDeliveryHandler(svc *deliveries.Service, logger *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{svc: svc, logger: logger}
}

type StatusRequest struct {
	Status       string     `json:"status" binding:"required"`
	PickupPlanAt *time.Time `json:"pickup_plan_at"`
}

type PurchaseOrderStatusRequest struct {
	Status       string `json:"status" binding:"required"`
	DetailStatus string `json:"detail_status"`
	Notes        string `json:"keterangan"`
}

type ActionResponse struct {
	ID     string                  `json:"id"`
	Code   string                  `json:"code"`
	Status entities.DeliveryStatus `json:"status"`
	// Action is empty when the caller cannot move the delivery
	Action entities.DeliveryAction `json:"action,omitempty"`
}

// NextAction tells the caller which button, if any, to show
// GET /api/v1/deliveries/:id/action
func (h *DeliveryHandler) NextAction(c *gin.Context) {
	delivery, action, err := h.svc.NextAction(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	Success(c, ActionResponse{
		ID:     delivery.ID,
		Code:   delivery.Code,
		Status: delivery.Status,
		Action: action,
	})
}

// UpdateStatus dispatches or receives a delivery
// PATCH /api/v1/deliveries/:id/status
func (h *DeliveryHandler) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	target, err := entities.ParseDeliveryStatus(req.Status)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	status, err := h.svc.Transition(c.Request.Context(), c.Param("id"), target, actorFrom(c), req.PickupPlanAt)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id"), "status": status})
}

// UpdatePurchaseOrderStatus forwards a PO status change
// PUT /api/v1/purchase-orders/:id/status
func (h *DeliveryHandler) UpdatePurchaseOrderStatus(c *gin.Context) {
	var req PurchaseOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	err := h.svc.UpdatePurchaseOrderStatus(c.Request.Context(), c.Param("id"), entities.PurchaseOrderStatusChange{
		Status:       req.Status,
		DetailStatus: req.DetailStatus,
		Notes:        req.Notes,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	Success(c, gin.H{"id": c.Param("id"), "status": req.Status})
}
