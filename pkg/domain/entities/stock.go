package entities

import "fmt"

// StockEntry is the on-hand quantity of one part at one location
type StockEntry struct {
	PartID    PartID
	Location  string
	QtyOnHand Quantity
	Min       Quantity
	Max       Quantity
}

// NewStockEntry creates a validated StockEntry
func NewStockEntry(partID PartID, location string, qtyOnHand, min, max Quantity) (*StockEntry, error) {
	if string(partID) == "" {
		return nil, fmt.Errorf("part id cannot be empty")
	}
	if location == "" {
		return nil, fmt.Errorf("location cannot be empty")
	}
	if qtyOnHand < 0 {
		return nil, fmt.Errorf("quantity on hand cannot be negative, got %d", qtyOnHand)
	}
	if min < 0 || max < 0 {
		return nil, fmt.Errorf("min/max cannot be negative, got %d/%d", min, max)
	}
	if max > 0 && min > max {
		return nil, fmt.Errorf("min %d cannot exceed max %d", min, max)
	}

	return &StockEntry{
		PartID:    partID,
		Location:  location,
		QtyOnHand: qtyOnHand,
		Min:       min,
		Max:       max,
	}, nil
}

// BelowMinimum reports whether the entry has fallen under its reorder point
func (s StockEntry) BelowMinimum() bool {
	return s.Min > 0 && s.QtyOnHand < s.Min
}
