package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// PartID is the server-assigned identity of a master part
type PartID string

// PartNumber is the unique business key of a part
type PartNumber string

// Quantity represents an integer quantity of discrete units
type Quantity int64

// Part is a master part record as returned by the parts list
type Part struct {
	ID            PartID
	PartNumber    PartNumber
	Name          string
	UnitOfMeasure string
}

// NewPart creates a validated Part
func NewPart(id PartID, partNumber PartNumber, name, unitOfMeasure string) (*Part, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("part id cannot be empty")
	}
	if string(partNumber) == "" {
		return nil, fmt.Errorf("part number cannot be empty")
	}
	if unitOfMeasure == "" {
		unitOfMeasure = "PCS"
	}

	return &Part{
		ID:            id,
		PartNumber:    partNumber,
		Name:          name,
		UnitOfMeasure: unitOfMeasure,
	}, nil
}

// ParseQuantity converts raw form input into a Quantity.
// Anything that is not a base-10 integer is rejected as InvalidQuantity;
// the sign is left to ValidateQuantity.
func ParseQuantity(raw string) (Quantity, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, NewInvalidQuantityError("quantity is required")
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, NewInvalidQuantityError(fmt.Sprintf("quantity must be a whole number, got %q", raw))
	}
	return Quantity(n), nil
}
