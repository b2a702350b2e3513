package services

import (
	"fmt"

	"github.com/embunadw/wms/pkg/domain/entities"
)

// Flow identifies which upstream document a new line is drawn from
type Flow int

const (
	FlowNone Flow = iota
	FlowMRToDelivery
	FlowMRToPR
	FlowPRToPO
	FlowPOToReceive
)

// String method for Flow enum
func (f Flow) String() string {
	switch f {
	case FlowNone:
		return "None"
	case FlowMRToDelivery:
		return "MR->Delivery"
	case FlowMRToPR:
		return "MR->PR"
	case FlowPRToPO:
		return "PR->PO"
	case FlowPOToReceive:
		return "PO->Receive"
	default:
		return "Unknown"
	}
}

// Binding reports whether over-allocation on this flow blocks the line.
// PR->PO and MR->PR only warn: PO quantities may follow vendor minimums.
func (f Flow) Binding() bool {
	return f == FlowMRToDelivery || f == FlowPOToReceive
}

// FlowFor returns the flow a draft of docType follows from its source
func FlowFor(docType entities.DocumentType) Flow {
	switch docType {
	case entities.Delivery:
		return FlowMRToDelivery
	case entities.PurchaseRequest:
		return FlowMRToPR
	case entities.PurchaseOrder:
		return FlowPRToPO
	case entities.ReceiveItem:
		return FlowPOToReceive
	default:
		return FlowNone
	}
}

// Allocation is the allocatable quantity left on a source line
type Allocation struct {
	Remaining entities.Quantity
	Binding   bool
}

// Advisory is a non-blocking note attached to an accepted line
type Advisory struct {
	PartNumber entities.PartNumber
	Message    string
}

// Allocator computes remaining quantities on source lines. The fulfilled
// count always comes from the server; lines in other users' drafts are not
// seen, so two concurrent drafts can both claim the same remainder. The
// server's re-validation on submit is the only enforcement point for that.
type Allocator struct{}

// NewAllocator creates a new allocator
func NewAllocator() *Allocator {
	return &Allocator{}
}

// ComputeAllocatable returns what is left on src for the given flow
func (a *Allocator) ComputeAllocatable(flow Flow, src entities.SourceLine) Allocation {
	var remaining entities.Quantity
	switch flow {
	case FlowPRToPO:
		remaining = src.Requested
	default:
		remaining = src.Requested - src.Fulfilled
	}
	if remaining < 0 {
		remaining = 0
	}
	return Allocation{Remaining: remaining, Binding: flow.Binding()}
}

// Check returns the bounds a candidate must respect and any advisories.
// Binding flows contribute a RemainingBound; advisory flows never block.
func (a *Allocator) Check(flow Flow, src entities.SourceLine, candidate entities.Quantity) ([]Bound, []Advisory) {
	alloc := a.ComputeAllocatable(flow, src)
	if alloc.Binding {
		return []Bound{RemainingBound(alloc.Remaining)}, nil
	}

	switch {
	case flow == FlowPRToPO && candidate != alloc.Remaining:
		return nil, []Advisory{{
			PartNumber: src.PartNumber,
			Message: fmt.Sprintf("PO quantity %d differs from PR quantity %d for %s",
				candidate, alloc.Remaining, src.PartNumber),
		}}
	case flow == FlowMRToPR && candidate > alloc.Remaining:
		return nil, []Advisory{{
			PartNumber: src.PartNumber,
			Message: fmt.Sprintf("PR quantity %d exceeds MR remaining %d for %s",
				candidate, alloc.Remaining, src.PartNumber),
		}}
	}
	return nil, nil
}
