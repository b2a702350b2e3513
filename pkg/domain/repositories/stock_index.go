package repositories

import "github.com/embunadw/wms/pkg/domain/entities"

// StockIndex answers on-hand lookups built from the server's stock list.
// It has no mutation methods; fresh numbers require a new fetch.
type StockIndex interface {
	Lookup(partID entities.PartID, location string) (entities.Quantity, bool)
	Available(partID entities.PartID, location string) entities.Quantity
}
