package events

import (
	"github.com/embunadw/wms/pkg/domain/entities"
)

const (
	DraftCreatedEvent        = "draft.created"
	DraftSourceSelectedEvent = "draft.source_selected"
	DraftLineAddedEvent      = "draft.line_added"
	DraftLineRemovedEvent    = "draft.line_removed"
	DraftLineRejectedEvent   = "draft.line_rejected"
	DraftSubmittedEvent      = "draft.submitted"
	DraftSubmitFailedEvent   = "draft.submit_failed"
	DraftExpiredEvent        = "draft.expired"

	DeliveryStatusChangedEvent = "delivery.status_changed"
)

// AllDraftEvents lists every draft event type
var AllDraftEvents = []string{
	DraftCreatedEvent,
	DraftSourceSelectedEvent,
	DraftLineAddedEvent,
	DraftLineRemovedEvent,
	DraftLineRejectedEvent,
	DraftSubmittedEvent,
	DraftSubmitFailedEvent,
	DraftExpiredEvent,
}

type DraftCreated struct {
	DocumentType string `json:"document_type"`
	SourceCode   string `json:"source_code,omitempty"`
	Location     string `json:"location,omitempty"`
}

type DraftSourceSelected struct {
	SourceCode string `json:"source_code"`
}

type DraftLineAdded struct {
	PartNumber entities.PartNumber `json:"part_number"`
	Quantity   entities.Quantity   `json:"quantity"`
	Warnings   []string            `json:"warnings,omitempty"`
}

type DraftLineRemoved struct {
	PartNumber entities.PartNumber `json:"part_number"`
	Index      int                 `json:"index"`
}

type DraftLineRejected struct {
	PartNumber entities.PartNumber `json:"part_number,omitempty"`
	Code       entities.RuleCode   `json:"code"`
	Message    string              `json:"message"`
	Limit      *entities.Quantity  `json:"limit,omitempty"`
}

type DraftSubmitted struct {
	DocumentType string `json:"document_type"`
	Lines        int    `json:"lines"`
}

type DraftSubmitFailed struct {
	DocumentType string `json:"document_type"`
	Error        string `json:"error"`
}

type DraftExpired struct {
	Lines int `json:"lines"`
}

type DeliveryStatusChanged struct {
	Code   string                  `json:"code,omitempty"`
	From   entities.DeliveryStatus `json:"from"`
	To     entities.DeliveryStatus `json:"to"`
	Action entities.DeliveryAction `json:"action"`
	UserID string                  `json:"user_id,omitempty"`
}
