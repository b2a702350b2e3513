package composer

import (
	"errors"
	"fmt"

	"github.com/embunadw/wms/pkg/application/dto"
	"github.com/embunadw/wms/pkg/domain/entities"
	"github.com/embunadw/wms/pkg/domain/repositories"
	"github.com/embunadw/wms/pkg/domain/services"
)

// Options configures a Composer
type Options struct {
	// Stock answers on-hand lookups for stock-bounded document types
	Stock repositories.StockIndex
	// Location is the sending (Delivery) or issuing (SPB) location
	Location string
	Source   *entities.SourceDocument
}

// AddResult is an accepted line plus any advisory warnings
type AddResult struct {
	Line entities.DocumentLine
	// Index is the line's position in the draft
	Index    int
	Warnings []string
}

// Composer accumulates the lines of one draft document, running every
// candidate line through the quantity, duplicate, stock and allocation rules
// of its document type. A Composer is not safe for concurrent use.
type Composer struct {
	docType   entities.DocumentType
	policy    Policy
	stock     repositories.StockIndex
	location  string
	source    *entities.SourceDocument
	lines     []entities.DocumentLine
	builder   *services.LineBuilder
	allocator *services.Allocator
}

// New creates an empty draft of docType
func New(docType entities.DocumentType, opts Options) (*Composer, error) {
	policy, ok := PolicyFor(docType)
	if !ok {
		return nil, fmt.Errorf("unsupported document type: %s", docType)
	}
	if policy.StockBound && opts.Location == "" {
		return nil, fmt.Errorf("%s drafts need a location to check stock against", docType)
	}

	stock := opts.Stock
	if stock == nil {
		stock = emptyStock{}
	}

	c := &Composer{
		docType:   docType,
		policy:    policy,
		stock:     stock,
		location:  opts.Location,
		builder:   services.NewLineBuilder(),
		allocator: services.NewAllocator(),
	}
	if opts.Source != nil {
		if err := c.SelectSource(opts.Source); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SelectSource sets the upstream document. Choosing a different document
// clears the lines already drafted against the previous one.
func (c *Composer) SelectSource(src *entities.SourceDocument) error {
	if !c.policy.HasSource {
		return fmt.Errorf("%s drafts do not take a source document", c.docType)
	}
	if src != nil && src.Type != c.policy.SourceType {
		return fmt.Errorf("%s drafts take a %s as source, got %s", c.docType, c.policy.SourceType, src.Type)
	}
	if c.source != nil && (src == nil || src.Code != c.source.Code) {
		c.lines = nil
	}
	c.source = src
	return nil
}

// AddLine validates a candidate line and appends it to the draft. Checks run
// in order and stop at the first failure: source selected, quantity positive,
// part selected, duplicate part, source line for the part, then bounds.
// Advisory flows never block; their notes come back as warnings.
func (c *Composer) AddLine(part *entities.Part, quantity entities.Quantity, extras entities.LineExtras) (AddResult, error) {
	if c.policy.SourceRequired && c.source == nil {
		return AddResult{}, entities.NewNoSourceDocumentSelectedError(
			fmt.Sprintf("select a %s before adding %s lines", c.policy.SourceType, c.docType))
	}
	if err := services.ValidateQuantity(quantity); err != nil {
		return AddResult{}, err
	}

	line, err := c.builder.BuildLine(part, quantity, c.filterExtras(extras), c.lines)
	if err != nil {
		return AddResult{}, err
	}

	var bounds []services.Bound
	var warnings []string

	if c.policy.StockBound {
		bounds = append(bounds, services.StockBound(c.stock.Available(part.ID, c.location)))
	}

	if c.source != nil {
		src, ok := c.source.LineFor(part.ID)
		switch {
		case !ok && c.policy.SourceRequired:
			return AddResult{}, entities.NewNoSourceDocumentSelectedError(
				fmt.Sprintf("part %s is not on %s %s", part.PartNumber, c.source.Type, c.source.Code))
		case !ok:
			warnings = append(warnings,
				fmt.Sprintf("part %s is not on %s %s", part.PartNumber, c.source.Type, c.source.Code))
		default:
			allocBounds, advisories := c.allocator.Check(c.policy.Flow, *src, quantity)
			bounds = append(bounds, allocBounds...)
			for _, a := range advisories {
				warnings = append(warnings, a.Message)
			}
			if line.SourceLineID == "" {
				line.SourceLineID = src.LineID
			}
			if c.policy.AllowPrice && line.UnitPrice == nil && src.UnitPrice != nil {
				price := *src.UnitPrice
				line.UnitPrice = &price
			}
		}
	}

	if err := services.ValidateQuantity(quantity, bounds...); err != nil {
		var ruleErr *entities.RuleError
		if errors.As(err, &ruleErr) {
			ruleErr.PartNumber = part.PartNumber
		}
		return AddResult{}, err
	}

	c.lines = append(c.lines, line)
	return AddResult{Line: line, Index: len(c.lines) - 1, Warnings: warnings}, nil
}

// RemoveLine drops the line at index. It only fails for an index out of range.
func (c *Composer) RemoveLine(index int) error {
	draft, err := c.State().WithoutLine(index)
	if err != nil {
		return err
	}
	c.lines = draft.Lines
	return nil
}

// Lines returns a copy of the accepted lines
func (c *Composer) Lines() []entities.DocumentLine {
	lines := make([]entities.DocumentLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// Len returns the number of accepted lines
func (c *Composer) Len() int {
	return len(c.lines)
}

// Type returns the document type being composed
func (c *Composer) Type() entities.DocumentType {
	return c.docType
}

// Source returns the selected source document, or nil
func (c *Composer) Source() *entities.SourceDocument {
	return c.source
}

// Location returns the location stock is checked against
func (c *Composer) Location() string {
	return c.location
}

// Policy returns the rules this composer applies
func (c *Composer) Policy() Policy {
	return c.policy
}

// Remaining reports what the source line for partID still allows
func (c *Composer) Remaining(partID entities.PartID) (services.Allocation, bool) {
	src, ok := c.source.LineFor(partID)
	if !ok {
		return services.Allocation{}, false
	}
	return c.allocator.ComputeAllocatable(c.policy.Flow, *src), true
}

// Available reports on-hand stock for partID at the composer's location
func (c *Composer) Available(partID entities.PartID) entities.Quantity {
	return c.stock.Available(partID, c.location)
}

// ToPayload assembles the create request body. Lines are not re-validated.
func (c *Composer) ToPayload(header entities.Header) dto.DocumentPayload {
	if c.source != nil {
		if header.SourceCode == "" {
			header.SourceCode = c.source.Code
		}
		if header.VendorID == "" {
			header.VendorID = c.source.VendorID
		}
		// a delivery ships to the requesting site
		if header.ToLocation == "" && c.docType == entities.Delivery {
			header.ToLocation = c.source.Location
		}
	}
	if header.Location == "" {
		header.Location = c.location
	}
	if !c.policy.Attachments {
		header.Attachments = nil
	}
	return dto.NewDocumentPayload(c.docType, header, c.lines)
}

// State returns the serializable draft
func (c *Composer) State() entities.Draft {
	draft := entities.Draft{
		Type:     c.docType,
		Location: c.location,
		Lines:    c.Lines(),
	}
	if c.source != nil {
		draft.SourceCode = c.source.Code
	}
	return draft
}

func (c *Composer) filterExtras(extras entities.LineExtras) entities.LineExtras {
	if c.policy.AllowPriority {
		if extras.Priority == "" {
			extras.Priority = entities.PriorityNormal
		}
	} else {
		extras.Priority = ""
	}
	if !c.policy.AllowPrice {
		extras.UnitPrice = nil
	}
	return extras
}

type emptyStock struct{}

func (emptyStock) Lookup(entities.PartID, string) (entities.Quantity, bool) { return 0, false }

func (emptyStock) Available(entities.PartID, string) entities.Quantity { return 0 }
