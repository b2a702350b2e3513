package memory

import (
	"sort"

	"github.com/embunadw/wms/pkg/domain/entities"
	"github.com/embunadw/wms/pkg/domain/repositories"
)

// StockIndex is a read-only (part, location) -> on-hand map built from one
// fetch of the stock list
type StockIndex struct {
	onHand  map[string]entities.Quantity
	entries []entities.StockEntry
}

// Verify interface compliance
var _ repositories.StockIndex = (*StockIndex)(nil)

// NewStockIndex builds an index from stock entries. Rows repeating the same
// part and location are summed.
func NewStockIndex(entries []*entities.StockEntry) *StockIndex {
	idx := &StockIndex{
		onHand:  make(map[string]entities.Quantity, len(entries)),
		entries: make([]entities.StockEntry, 0, len(entries)),
	}
	rows := make(map[string]int, len(entries))
	for _, e := range entries {
		key := makeKey(e.PartID, e.Location)
		if i, seen := rows[key]; seen {
			idx.entries[i].QtyOnHand += e.QtyOnHand
		} else {
			rows[key] = len(idx.entries)
			idx.entries = append(idx.entries, *e)
		}
		idx.onHand[key] += e.QtyOnHand
	}
	return idx
}

// Lookup returns the on-hand quantity and whether any entry exists
func (s *StockIndex) Lookup(partID entities.PartID, location string) (entities.Quantity, bool) {
	qty, ok := s.onHand[makeKey(partID, location)]
	return qty, ok
}

// Available returns the on-hand quantity, treating a missing entry as zero
func (s *StockIndex) Available(partID entities.PartID, location string) entities.Quantity {
	qty, _ := s.Lookup(partID, location)
	return qty
}

// Entries returns the merged stock rows, optionally filtered by location
func (s *StockIndex) Entries(location string) []entities.StockEntry {
	var out []entities.StockEntry
	for _, e := range s.entries {
		if location == "" || e.Location == location {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Location != out[j].Location {
			return out[i].Location < out[j].Location
		}
		return out[i].PartID < out[j].PartID
	})
	return out
}

// Len returns the number of distinct (part, location) pairs
func (s *StockIndex) Len() int {
	return len(s.onHand)
}

func makeKey(partID entities.PartID, location string) string {
	return string(partID) + "|" + location
}
