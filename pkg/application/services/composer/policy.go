package composer

import (
	"github.com/embunadw/wms/pkg/domain/entities"
	"github.com/embunadw/wms/pkg/domain/services"
)

// Policy is the per-document-type rule set a Composer applies
type Policy struct {
	// SourceType is the upstream document lines are drawn from, if any
	SourceType     entities.DocumentType
	HasSource      bool
	SourceRequired bool

	// StockBound limits lines by on-hand stock at the composer's location
	StockBound    bool
	Flow          services.Flow
	AllowPriority bool
	AllowPrice    bool

	// Attachments allows PO/DO/Invoice references in the header
	Attachments bool
}

var policies = map[entities.DocumentType]Policy{
	entities.MaterialRequest: {
		Flow:          services.FlowNone,
		AllowPriority: true,
	},
	entities.PurchaseRequest: {
		SourceType:    entities.MaterialRequest,
		HasSource:     true,
		Flow:          services.FlowMRToPR,
		AllowPriority: true,
	},
	entities.PurchaseOrder: {
		SourceType:     entities.PurchaseRequest,
		HasSource:      true,
		SourceRequired: true,
		Flow:           services.FlowPRToPO,
		AllowPrice:     true,
	},
	entities.Delivery: {
		SourceType:     entities.MaterialRequest,
		HasSource:      true,
		SourceRequired: true,
		StockBound:     true,
		Flow:           services.FlowMRToDelivery,
	},
	entities.ReceiveItem: {
		SourceType:     entities.PurchaseOrder,
		HasSource:      true,
		SourceRequired: true,
		Flow:           services.FlowPOToReceive,
	},
	entities.GoodsIssue: {
		StockBound:  true,
		Flow:        services.FlowNone,
		Attachments: true,
	},
}

// PolicyFor returns the policy for docType
func PolicyFor(docType entities.DocumentType) (Policy, bool) {
	p, ok := policies[docType]
	return p, ok
}
