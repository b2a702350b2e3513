package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/embunadw/wms/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// QuantityKey is the JSON key each create endpoint expects for a line quantity
func QuantityKey(docType entities.DocumentType) string {
	switch docType {
	case entities.MaterialRequest:
		return "qty_request"
	case entities.PurchaseRequest:
		return "qty_pr"
	case entities.PurchaseOrder:
		return "qty_po"
	case entities.ReceiveItem:
		return "qty_receive"
	default:
		return "qty"
	}
}

// DocumentPayload is the {header, lines} body of a create request
type DocumentPayload struct {
	Type   entities.DocumentType `json:"-"`
	Header HeaderPayload         `json:"header"`
	Lines  []LinePayload         `json:"lines"`
}

// HeaderPayload is the wire form of entities.Header
type HeaderPayload struct {
	Code        string              `json:"code,omitempty"`
	Date        string              `json:"date,omitempty"`
	Location    string              `json:"location,omitempty"`
	ToLocation  string              `json:"to_location,omitempty"`
	PIC         string              `json:"pic,omitempty"`
	Status      string              `json:"status,omitempty"`
	SourceCode  string              `json:"source_code,omitempty"`
	VendorID    string              `json:"vendor_id,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	Attachments []AttachmentPayload `json:"attachments,omitempty"`
}

type AttachmentPayload struct {
	Kind   string `json:"kind"`
	Number string `json:"number"`
	Date   string `json:"date,omitempty"`
}

// LinePayload is one line of a create request. Its quantity is written under
// the key QuantityKey returns for the document type.
type LinePayload struct {
	QuantityKey  string
	PartID       string
	PartNumber   string
	PartName     string
	Unit         string
	Quantity     entities.Quantity
	Priority     string
	UnitPrice    *decimal.Decimal
	SourceLineID string
	Notes        string
}

func (l LinePayload) MarshalJSON() ([]byte, error) {
	key := l.QuantityKey
	if key == "" {
		key = "qty"
	}
	m := map[string]interface{}{
		"part_id":     l.PartID,
		"part_number": l.PartNumber,
		key:           l.Quantity,
	}
	if l.PartName != "" {
		m["part_name"] = l.PartName
	}
	if l.Unit != "" {
		m["unit"] = l.Unit
	}
	if l.Priority != "" {
		m["priority"] = l.Priority
	}
	if l.UnitPrice != nil {
		m["unit_price"] = l.UnitPrice.String()
		m["total"] = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).String()
	}
	if l.SourceLineID != "" {
		m["source_line_id"] = l.SourceLineID
	}
	if l.Notes != "" {
		m["notes"] = l.Notes
	}
	return json.Marshal(m)
}

// NewDocumentPayload assembles a payload from a header and accepted lines.
// Lines are not re-validated.
func NewDocumentPayload(docType entities.DocumentType, header entities.Header, lines []entities.DocumentLine) DocumentPayload {
	payload := DocumentPayload{
		Type:   docType,
		Header: newHeaderPayload(header),
		Lines:  make([]LinePayload, 0, len(lines)),
	}
	key := QuantityKey(docType)
	for _, line := range lines {
		payload.Lines = append(payload.Lines, LinePayload{
			QuantityKey:  key,
			PartID:       string(line.PartID),
			PartNumber:   string(line.PartNumber),
			PartName:     line.PartName,
			Unit:         line.Unit,
			Quantity:     line.Quantity,
			Priority:     string(line.Priority),
			UnitPrice:    line.UnitPrice,
			SourceLineID: line.SourceLineID,
			Notes:        line.Notes,
		})
	}
	return payload
}

// Total sums line amounts; zero for documents without prices
func (p DocumentPayload) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Lines {
		if l.UnitPrice != nil {
			total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
	}
	return total
}

func newHeaderPayload(h entities.Header) HeaderPayload {
	out := HeaderPayload{
		Code:       h.Code,
		Location:   h.Location,
		ToLocation: h.ToLocation,
		PIC:        h.PIC,
		Status:     h.Status,
		SourceCode: h.SourceCode,
		VendorID:   h.VendorID,
		Notes:      h.Notes,
	}
	if !h.Date.IsZero() {
		out.Date = h.Date.Format(dateLayout)
	}
	for _, a := range h.Attachments {
		ap := AttachmentPayload{Kind: string(a.Kind), Number: a.Number}
		if !a.Date.IsZero() {
			ap.Date = a.Date.Format(dateLayout)
		}
		out.Attachments = append(out.Attachments, ap)
	}
	return out
}
