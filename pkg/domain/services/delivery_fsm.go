package services

import (
	"fmt"

	"github.com/embunadw/wms/pkg/domain/entities"
)

// party is which end of a delivery may perform an action
type party int

const (
	partySender party = iota
	partyReceiver
)

type transitionKey struct {
	from   entities.DeliveryStatus
	action entities.DeliveryAction
}

type transitionRule struct {
	to    entities.DeliveryStatus
	party party
}

var deliveryTransitions = map[transitionKey]transitionRule{
	{entities.DeliveryPending, entities.ActionDispatch}:   {to: entities.DeliveryOnDelivery, party: partySender},
	{entities.DeliveryOnDelivery, entities.ActionReceive}: {to: entities.DeliveryDelivered, party: partyReceiver},
}

// DefaultAuthorizedRoles may move deliveries at their own location
var DefaultAuthorizedRoles = []string{"admin", "warehouse"}

// DeliveryStateMachine validates delivery status transitions. The status
// itself is always the one the server last confirmed; this only decides which
// action to offer and rejects illegal requests before they are sent.
type DeliveryStateMachine struct {
	authorizedRoles map[string]bool
}

// NewDeliveryStateMachine creates a state machine; nil roles uses the defaults
func NewDeliveryStateMachine(authorizedRoles []string) *DeliveryStateMachine {
	if authorizedRoles == nil {
		authorizedRoles = DefaultAuthorizedRoles
	}
	roles := make(map[string]bool, len(authorizedRoles))
	for _, r := range authorizedRoles {
		roles[r] = true
	}
	return &DeliveryStateMachine{authorizedRoles: roles}
}

// NextAction returns the single action valid from status, if any
func (m *DeliveryStateMachine) NextAction(status entities.DeliveryStatus) (entities.DeliveryAction, bool) {
	switch status {
	case entities.DeliveryPending:
		return entities.ActionDispatch, true
	case entities.DeliveryOnDelivery:
		return entities.ActionReceive, true
	default:
		return "", false
	}
}

// AvailableAction is NextAction filtered by whether actor may perform it
func (m *DeliveryStateMachine) AvailableAction(delivery entities.DeliveryRef, actor entities.Actor) (entities.DeliveryAction, bool) {
	action, ok := m.NextAction(delivery.Status)
	if !ok {
		return "", false
	}
	if _, err := m.Transition(delivery, action, actor); err != nil {
		return "", false
	}
	return action, true
}

// Transition returns the status that action leads to, or an IllegalTransition error
func (m *DeliveryStateMachine) Transition(
	delivery entities.DeliveryRef,
	action entities.DeliveryAction,
	actor entities.Actor,
) (entities.DeliveryStatus, error) {
	rule, ok := deliveryTransitions[transitionKey{from: delivery.Status, action: action}]
	if !ok {
		return delivery.Status, illegalTransition(fmt.Sprintf("cannot %s a delivery that is %s", action, delivery.Status))
	}

	location := delivery.FromLocation
	side := "sending"
	if rule.party == partyReceiver {
		location = delivery.ToLocation
		side = "receiving"
	}
	if actor.Location != location {
		return delivery.Status, illegalTransition(fmt.Sprintf("only the %s location %s can %s this delivery", side, location, action))
	}
	if !m.authorizedRoles[actor.Role] {
		return delivery.Status, illegalTransition(fmt.Sprintf("role %q is not allowed to %s deliveries", actor.Role, action))
	}
	return rule.to, nil
}

func illegalTransition(message string) error {
	return &entities.RuleError{Code: entities.CodeIllegalTransition, Message: message}
}
