package repositories

import "github.com/embunadw/wms/pkg/domain/entities"

// PartRepository provides access to master part data
type PartRepository interface {
	GetPart(id entities.PartID) (*entities.Part, error)
	GetPartByNumber(partNumber entities.PartNumber) (*entities.Part, error)
	GetAllParts() ([]*entities.Part, error)
	LoadParts(parts []*entities.Part) error
}
