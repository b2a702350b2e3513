package entities

import (
	"fmt"
	"strings"
	"time"
)

// DeliveryStatus is the server-confirmed state of a delivery
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryOnDelivery DeliveryStatus = "on delivery"
	DeliveryDelivered  DeliveryStatus = "delivered"
)

// ParseDeliveryStatus accepts the wire values, tolerating case and "_" separators
func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
	switch DeliveryStatus(normalized) {
	case DeliveryPending, DeliveryOnDelivery, DeliveryDelivered:
		return DeliveryStatus(normalized), nil
	default:
		return "", fmt.Errorf("unknown delivery status: %s", s)
	}
}

// DeliveryAction is a user action that moves a delivery forward
type DeliveryAction string

const (
	ActionDispatch DeliveryAction = "dispatch"
	ActionReceive  DeliveryAction = "receive"
)

// DeliveryRef is the part of a delivery the status machine needs
type DeliveryRef struct {
	ID           string
	Code         string
	FromLocation string
	ToLocation   string
	Status       DeliveryStatus
}

// Actor is the user attempting a transition
type Actor struct {
	UserID   string
	Location string
	Role     string
}

// StatusChange is the request body sent to the delivery status endpoint
type StatusChange struct {
	Status       DeliveryStatus
	PickupPlanAt *time.Time
}

// PurchaseOrderStatusChange is the request body sent to the PO status endpoint
type PurchaseOrderStatusChange struct {
	Status       string
	DetailStatus string
	Notes        string
}

// NewPurchaseOrderStatusChange creates a validated PurchaseOrderStatusChange
func NewPurchaseOrderStatusChange(status, detailStatus, notes string) (*PurchaseOrderStatusChange, error) {
	if strings.TrimSpace(status) == "" {
		return nil, fmt.Errorf("status cannot be empty")
	}
	return &PurchaseOrderStatusChange{
		Status:       strings.TrimSpace(status),
		DetailStatus: strings.TrimSpace(detailStatus),
		Notes:        notes,
	}, nil
}
