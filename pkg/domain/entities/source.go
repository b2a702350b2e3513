package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SourceLine is a line of an open upstream document (MR, PR or PO) as
// reported by the server. Fulfilled is the server's count of what has already
// been delivered, ordered or received against it.
type SourceLine struct {
	LineID     string
	PartID     PartID
	PartNumber PartNumber
	Requested  Quantity
	Fulfilled  Quantity
	UnitPrice  *decimal.Decimal
}

// SourceDocument is an open MR, PR or PO that a new draft is derived from
type SourceDocument struct {
	Type     DocumentType
	ID       string
	Code     string
	Location string
	Status   string
	VendorID string
	Lines    []SourceLine
}

// NewSourceDocument creates a validated SourceDocument
func NewSourceDocument(docType DocumentType, id, code, location string, lines []SourceLine) (*SourceDocument, error) {
	if code == "" {
		return nil, fmt.Errorf("source document code cannot be empty")
	}
	seen := make(map[PartID]bool, len(lines))
	for _, line := range lines {
		if string(line.PartID) == "" {
			return nil, fmt.Errorf("source document %s has a line without part id", code)
		}
		if line.Requested < 0 || line.Fulfilled < 0 {
			return nil, fmt.Errorf("source document %s line %s has negative quantity", code, line.PartNumber)
		}
		if seen[line.PartID] {
			return nil, fmt.Errorf("source document %s lists part %s twice", code, line.PartNumber)
		}
		seen[line.PartID] = true
	}

	return &SourceDocument{
		Type:     docType,
		ID:       id,
		Code:     code,
		Location: location,
		Lines:    lines,
	}, nil
}

// LineFor returns the source line for partID
func (d *SourceDocument) LineFor(partID PartID) (*SourceLine, bool) {
	if d == nil {
		return nil, false
	}
	for i := range d.Lines {
		if d.Lines[i].PartID == partID {
			return &d.Lines[i], true
		}
	}
	return nil, false
}
