package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType enumerates the warehouse documents that can be drafted
type DocumentType int

const (
	MaterialRequest DocumentType = iota
	PurchaseRequest
	PurchaseOrder
	Delivery
	ReceiveItem
	GoodsIssue
)

// String method for DocumentType enum
func (d DocumentType) String() string {
	switch d {
	case MaterialRequest:
		return "MR"
	case PurchaseRequest:
		return "PR"
	case PurchaseOrder:
		return "PO"
	case Delivery:
		return "Delivery"
	case ReceiveItem:
		return "RI"
	case GoodsIssue:
		return "SPB"
	default:
		return "Unknown"
	}
}

// ParseDocumentType accepts the short codes used by the API and the CLI
func ParseDocumentType(s string) (DocumentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mr", "material_request", "material-request":
		return MaterialRequest, nil
	case "pr", "purchase_request", "purchase-request":
		return PurchaseRequest, nil
	case "po", "purchase_order", "purchase-order":
		return PurchaseOrder, nil
	case "delivery", "dlv":
		return Delivery, nil
	case "ri", "receive_item", "receive-item":
		return ReceiveItem, nil
	case "spb", "goods_issue", "goods-issue":
		return GoodsIssue, nil
	default:
		return 0, fmt.Errorf("unknown document type: %s", s)
	}
}

// Priority of a request line
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a priority, defaulting empty input to normal
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityNormal, nil
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority: %s", s)
	}
}

// LineExtras carries the optional per-type fields of a line
type LineExtras struct {
	Priority     Priority
	UnitPrice    *decimal.Decimal
	SourceLineID string
	Notes        string
}

// DocumentLine is one accepted line of a draft
type DocumentLine struct {
	PartID       PartID
	PartNumber   PartNumber
	PartName     string
	Unit         string
	Quantity     Quantity
	Priority     Priority
	UnitPrice    *decimal.Decimal
	SourceLineID string
	Notes        string
}

// Amount is quantity times unit price, zero when no price is set
func (l DocumentLine) Amount() decimal.Decimal {
	if l.UnitPrice == nil {
		return decimal.Zero
	}
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// AttachmentKind is the kind of sub-document attached to an SPB
type AttachmentKind string

const (
	AttachmentPO      AttachmentKind = "po"
	AttachmentDO      AttachmentKind = "do"
	AttachmentInvoice AttachmentKind = "invoice"
)

// Attachment references a PO/DO/Invoice sub-document by number
type Attachment struct {
	Kind   AttachmentKind
	Number string
	Date   time.Time
}

// NewAttachment creates a validated Attachment
func NewAttachment(kind string, number string, date time.Time) (*Attachment, error) {
	k := AttachmentKind(strings.ToLower(strings.TrimSpace(kind)))
	switch k {
	case AttachmentPO, AttachmentDO, AttachmentInvoice:
	default:
		return nil, fmt.Errorf("unknown attachment kind: %s", kind)
	}
	if strings.TrimSpace(number) == "" {
		return nil, fmt.Errorf("attachment number cannot be empty")
	}
	return &Attachment{Kind: k, Number: number, Date: date}, nil
}

// Header holds the header fields of a draft document
type Header struct {
	Code        string
	Date        time.Time
	Location    string
	ToLocation  string
	PIC         string
	Status      string
	SourceCode  string
	VendorID    string
	Notes       string
	Attachments []Attachment
}

// Draft is the serializable state of a document being composed
type Draft struct {
	Type       DocumentType
	SourceCode string
	Location   string
	Lines      []DocumentLine
}

// IndexOf returns the position of partID in the draft, or -1
func (d Draft) IndexOf(partID PartID) int {
	for i, line := range d.Lines {
		if line.PartID == partID {
			return i
		}
	}
	return -1
}

// WithLine returns a copy of the draft with line appended
func (d Draft) WithLine(line DocumentLine) Draft {
	lines := make([]DocumentLine, 0, len(d.Lines)+1)
	lines = append(lines, d.Lines...)
	d.Lines = append(lines, line)
	return d
}

// WithoutLine returns a copy of the draft with the line at index removed
func (d Draft) WithoutLine(index int) (Draft, error) {
	if index < 0 || index >= len(d.Lines) {
		return d, fmt.Errorf("line index %d out of range, draft has %d lines", index, len(d.Lines))
	}
	lines := make([]DocumentLine, 0, len(d.Lines)-1)
	lines = append(lines, d.Lines[:index]...)
	d.Lines = append(lines, d.Lines[index+1:]...)
	return d, nil
}
