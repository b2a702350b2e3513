package deliveries

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/embunadw/wms/pkg/domain/entities"
	"github.com/embunadw/wms/pkg/domain/services"
	"github.com/embunadw/wms/pkg/infrastructure/events"
)

// API is the part of the WMS client status changes go through
type API interface {
	GetDelivery(ctx context.Context, id string) (*entities.DeliveryRef, error)
	UpdateDeliveryStatus(ctx context.Context, id string, change entities.StatusChange) error
	UpdatePurchaseOrderStatus(ctx context.Context, id string, change entities.PurchaseOrderStatusChange) error
}

// Service validates status changes locally before sending them to the server.
// The server's answer is authoritative; the local check only avoids sending
// requests that cannot succeed.
type Service struct {
	api    API
	fsm    *services.DeliveryStateMachine
	events events.EventStore
	logger *zap.Logger
}

func NewService(api API, fsm *services.DeliveryStateMachine, eventStore events.EventStore, logger *zap.Logger) *Service {
	if fsm == nil {
		fsm = services.NewDeliveryStateMachine(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, fsm: fsm, events: eventStore, logger: logger}
}

// ActionFor maps a requested target status to the action that reaches it
func ActionFor(target entities.DeliveryStatus) (entities.DeliveryAction, error) {
	switch target {
	case entities.DeliveryOnDelivery:
		return entities.ActionDispatch, nil
	case entities.DeliveryDelivered:
		return entities.ActionReceive, nil
	default:
		return "", &entities.RuleError{
			Code:    entities.CodeIllegalTransition,
			Message: fmt.Sprintf("a delivery cannot be moved to %s", target),
		}
	}
}

// NextAction returns the delivery and the action actor may take on it, if any
func (s *Service) NextAction(ctx context.Context, id string, actor entities.Actor) (*entities.DeliveryRef, entities.DeliveryAction, error) {
	delivery, err := s.api.GetDelivery(ctx, id)
	if err != nil {
		return nil, "", err
	}
	action, _ := s.fsm.AvailableAction(*delivery, actor)
	return delivery, action, nil
}

// Transition moves delivery id to target on behalf of actor
func (s *Service) Transition(
	ctx context.Context,
	id string,
	target entities.DeliveryStatus,
	actor entities.Actor,
	pickupPlanAt *time.Time,
) (entities.DeliveryStatus, error) {
	action, err := ActionFor(target)
	if err != nil {
		return "", err
	}

	delivery, err := s.api.GetDelivery(ctx, id)
	if err != nil {
		return "", err
	}

	next, err := s.fsm.Transition(*delivery, action, actor)
	if err != nil {
		return delivery.Status, err
	}

	change := entities.StatusChange{Status: next}
	if action == entities.ActionDispatch {
		change.PickupPlanAt = pickupPlanAt
	}
	if err := s.api.UpdateDeliveryStatus(ctx, id, change); err != nil {
		s.logger.Warn("delivery status update rejected",
			zap.String("delivery_id", id),
			zap.String("status", string(next)),
			zap.Error(err),
		)
		return delivery.Status, err
	}

	if s.events != nil {
		err := s.events.AppendEvent(id, events.NewEvent(events.DeliveryStatusChangedEvent, id, events.DeliveryStatusChanged{
			Code:   delivery.Code,
			From:   delivery.Status,
			To:     next,
			Action: action,
			UserID: actor.UserID,
		}))
		if err != nil {
			s.logger.Warn("failed to record delivery event", zap.String("delivery_id", id), zap.Error(err))
		}
	}
	s.logger.Info("delivery status changed",
		zap.String("delivery_id", id),
		zap.String("from", string(delivery.Status)),
		zap.String("to", string(next)),
	)
	return next, nil
}

// UpdatePurchaseOrderStatus forwards a PO status change
func (s *Service) UpdatePurchaseOrderStatus(ctx context.Context, id string, change entities.PurchaseOrderStatusChange) error {
	validated, err := entities.NewPurchaseOrderStatusChange(change.Status, change.DetailStatus, change.Notes)
	if err != nil {
		return err
	}
	return s.api.UpdatePurchaseOrderStatus(ctx, id, *validated)
}
