package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/embunadw/wms/pkg/application/services/deliveries"
	"github.com/embunadw/wms/pkg/application/services/drafts"
	"github.com/embunadw/wms/pkg/domain/entities"
	"github.com/embunadw/wms/pkg/infrastructure/wmsapi"
	"github.com/embunadw/wms/pkg/interfaces/rest/middleware"
)

// Handlers groups the HTTP handlers
type Handlers struct {
	Draft    *DraftHandler
	Delivery *DeliveryHandler
	Health   *HealthHandler
}

func NewHandlers(draftSvc *drafts.Service, deliverySvc *deliveries.Service, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		Draft:    NewDraftHandler(draftSvc, logger),
		Delivery: NewDeliveryHandler(deliverySvc, logger),
		Health:   NewHealthHandler(draftSvc),
	}
}

// Response is the envelope of every reply, matching the WMS API
type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RuleResponse describes a rejected action. Limit is only set for
// QuantityExceedsLimit.
type RuleResponse struct {
	Code        entities.RuleCode `json:"code"`
	Message     string            `json:"message"`
	PartNumber  string            `json:"part_number,omitempty"`
	Limit       *int64            `json:"limit,omitempty"`
	LimitSource string            `json:"limit_source,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Message: "success", Data: data})
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// RespondError maps a service error onto a status code and body
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		ruleErr *entities.RuleError
		apiErr  *wmsapi.APIError
		urlErr  *url.Error
	)

	switch {
	case errors.As(err, &ruleErr):
		body := RuleResponse{
			Code:        ruleErr.Code,
			Message:     ruleErr.Error(),
			PartNumber:  string(ruleErr.PartNumber),
			LimitSource: ruleErr.LimitSource,
		}
		if ruleErr.Code == entities.CodeQuantityExceedsLimit {
			limit := int64(ruleErr.Limit)
			body.Limit = &limit
		}
		c.JSON(http.StatusUnprocessableEntity, Response{Message: body.Message, Data: body})
	case errors.Is(err, drafts.ErrDraftNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, drafts.ErrEmptyDraft):
		Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &apiErr):
		// the server's message is shown to the user as is
		status := http.StatusBadGateway
		if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden ||
			apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusUnprocessableEntity {
			status = apiErr.StatusCode
		}
		Error(c, status, apiErr.Message)
	case errors.As(err, &urlErr):
		logger.Error("WMS API unreachable", zap.String("request_id", c.GetString("request_id")), zap.Error(err))
		Error(c, http.StatusBadGateway, "WMS API unreachable")
	default:
		BadRequest(c, err.Error())
	}
}

// actorFrom reads the caller identity set by middleware.Identity
func actorFrom(c *gin.Context) entities.Actor {
	return entities.Actor{
		UserID:   c.GetString(middleware.UserIDKey),
		Location: c.GetString(middleware.UserLocationKey),
		Role:     c.GetString(middleware.UserRoleKey),
	}
}

// HealthHandler reports liveness and the number of open drafts
type HealthHandler struct {
	drafts *drafts.Service
}

func NewHealthHandler(svc *drafts.Service) *HealthHandler {
	return &HealthHandler{drafts: svc}
}

func (h *HealthHandler) Health(c *gin.Context) {
	data := gin.H{"status": "ok"}
	if h.drafts != nil {
		data["open_drafts"] = h.drafts.Open()
	}
	Success(c, data)
}
