package services

import (
	"fmt"

	"github.com/embunadw/wms/pkg/domain/entities"
)

// LineBuilder turns a selected master part into a document line
type LineBuilder struct{}

// NewLineBuilder creates a new line builder
func NewLineBuilder() *LineBuilder {
	return &LineBuilder{}
}

// BuildLine returns a new line for part. It fails with NoPartSelected when no
// part was chosen and DuplicatePart when existing already holds the part.
// existing is never modified.
func (b *LineBuilder) BuildLine(
	part *entities.Part,
	quantity entities.Quantity,
	extras entities.LineExtras,
	existing []entities.DocumentLine,
) (entities.DocumentLine, error) {
	if part == nil {
		return entities.DocumentLine{}, entities.NewNoPartSelectedError()
	}
	for _, line := range existing {
		if line.PartID == part.ID {
			return entities.DocumentLine{}, entities.NewDuplicatePartError(part.PartNumber)
		}
	}
	if extras.UnitPrice != nil && extras.UnitPrice.IsNegative() {
		return entities.DocumentLine{}, &entities.RuleError{
			Code:       entities.CodeInvalidPrice,
			Message:    fmt.Sprintf("unit price for %s cannot be negative", part.PartNumber),
			PartNumber: part.PartNumber,
		}
	}

	line := entities.DocumentLine{
		PartID:       part.ID,
		PartNumber:   part.PartNumber,
		PartName:     part.Name,
		Unit:         part.UnitOfMeasure,
		Quantity:     quantity,
		Priority:     extras.Priority,
		SourceLineID: extras.SourceLineID,
		Notes:        extras.Notes,
	}
	if extras.UnitPrice != nil {
		price := *extras.UnitPrice
		line.UnitPrice = &price
	}
	return line, nil
}
