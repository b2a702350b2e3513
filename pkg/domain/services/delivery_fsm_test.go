package services

import (
	"errors"
	"testing"

	"github.com/embunadw/wms/pkg/domain/entities"
)

func TestDeliveryStateMachine_Transitions(t *testing.T) {
	fsm := NewDeliveryStateMachine(nil)
	sender := entities.Actor{Location: "WH-A", Role: "warehouse"}
	receiver := entities.Actor{Location: "SITE-1", Role: "warehouse"}

	testCases := []struct {
		name     string
		status   entities.DeliveryStatus
		action   entities.DeliveryAction
		actor    entities.Actor
		expected entities.DeliveryStatus
		wantErr  bool
	}{
		{"dispatch pending", entities.DeliveryPending, entities.ActionDispatch, sender, entities.DeliveryOnDelivery, false},
		{"receive on delivery", entities.DeliveryOnDelivery, entities.ActionReceive, receiver, entities.DeliveryDelivered, false},
		{"receiver cannot dispatch", entities.DeliveryPending, entities.ActionDispatch, receiver, "", true},
		{"sender cannot receive", entities.DeliveryOnDelivery, entities.ActionReceive, sender, "", true},
		{"dispatch twice", entities.DeliveryOnDelivery, entities.ActionDispatch, sender, "", true},
		{"receive before dispatch", entities.DeliveryPending, entities.ActionReceive, receiver, "", true},
		{"nothing after delivered", entities.DeliveryDelivered, entities.ActionReceive, receiver, "", true},
		{"unauthorized role", entities.DeliveryPending, entities.ActionDispatch,
			entities.Actor{Location: "WH-A", Role: "viewer"}, "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			delivery := entities.DeliveryRef{FromLocation: "WH-A", ToLocation: "SITE-1", Status: tc.status}
			next, err := fsm.Transition(delivery, tc.action, tc.actor)
			if tc.wantErr {
				if !errors.Is(err, entities.ErrIllegalTransition) {
					t.Fatalf("Expected IllegalTransition, got %v", err)
				}
				if next != tc.status {
					t.Errorf("Expected status to stay %s, got %s", tc.status, next)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if next != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, next)
			}
		})
	}
}

func TestDeliveryStateMachine_NextAction(t *testing.T) {
	fsm := NewDeliveryStateMachine([]string{"site_admin"})

	if a, ok := fsm.NextAction(entities.DeliveryPending); !ok || a != entities.ActionDispatch {
		t.Errorf("Expected dispatch from pending, got %q", a)
	}
	if a, ok := fsm.NextAction(entities.DeliveryOnDelivery); !ok || a != entities.ActionReceive {
		t.Errorf("Expected receive from on delivery, got %q", a)
	}
	if _, ok := fsm.NextAction(entities.DeliveryDelivered); ok {
		t.Error("Expected no action after delivered")
	}

	delivery := entities.DeliveryRef{FromLocation: "WH-A", ToLocation: "SITE-1", Status: entities.DeliveryPending}
	if _, ok := fsm.AvailableAction(delivery, entities.Actor{Location: "WH-A", Role: "warehouse"}); ok {
		t.Error("Expected warehouse role to be rejected with custom roles")
	}
	if a, ok := fsm.AvailableAction(delivery, entities.Actor{Location: "WH-A", Role: "site_admin"}); !ok || a != entities.ActionDispatch {
		t.Errorf("Expected dispatch for site_admin at sender, got %q", a)
	}
}
