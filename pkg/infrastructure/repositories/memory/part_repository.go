package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/embunadw/wms/pkg/domain/entities"
	"github.com/embunadw/wms/pkg/domain/repositories"
)

// PartRepository provides in-memory master part storage
type PartRepository struct {
	mu       sync.RWMutex
	parts    []entities.Part
	byID     map[entities.PartID]int
	byNumber map[entities.PartNumber]int
}

// NewPartRepository creates a new in-memory part repository
func NewPartRepository(expectedParts int) *PartRepository {
	return &PartRepository{
		parts:    make([]entities.Part, 0, expectedParts),
		byID:     make(map[entities.PartID]int, expectedParts),
		byNumber: make(map[entities.PartNumber]int, expectedParts),
	}
}

// Verify interface compliance
var _ repositories.PartRepository = (*PartRepository)(nil)

// LoadParts loads parts into the repository. The whole batch is rejected
// when it contains a part number or id twice.
func (r *PartRepository) LoadParts(parts []*entities.Part) error {
	seenID := make(map[entities.PartID]bool, len(parts))
	seenNumber := make(map[entities.PartNumber]bool, len(parts))
	var duplicates []string
	for _, part := range parts {
		if seenID[part.ID] || seenNumber[part.PartNumber] {
			duplicates = append(duplicates, string(part.PartNumber))
		}
		seenID[part.ID] = true
		seenNumber[part.PartNumber] = true
	}
	if len(duplicates) > 0 {
		return fmt.Errorf("duplicate part numbers found: %s", strings.Join(duplicates, ", "))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, part := range parts {
		if err := r.addPart(*part); err != nil {
			return err
		}
	}
	return nil
}

// SavePart adds a single part to the repository
func (r *PartRepository) SavePart(part *entities.Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addPart(*part)
}

func (r *PartRepository) addPart(part entities.Part) error {
	if _, exists := r.byNumber[part.PartNumber]; exists {
		return fmt.Errorf("duplicate part number: %s", part.PartNumber)
	}
	if _, exists := r.byID[part.ID]; exists {
		return fmt.Errorf("duplicate part id: %s", part.ID)
	}
	r.byID[part.ID] = len(r.parts)
	r.byNumber[part.PartNumber] = len(r.parts)
	r.parts = append(r.parts, part)
	return nil
}

// GetPart returns master data for a part id
func (r *PartRepository) GetPart(id entities.PartID) (*entities.Part, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.byID[id]
	if !exists {
		return nil, fmt.Errorf("part not found: %s", id)
	}
	part := r.parts[index]
	return &part, nil
}

// GetPartByNumber returns master data for a part number
func (r *PartRepository) GetPartByNumber(partNumber entities.PartNumber) (*entities.Part, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.byNumber[partNumber]
	if !exists {
		return nil, fmt.Errorf("part not found: %s", partNumber)
	}
	part := r.parts[index]
	return &part, nil
}

// GetAllParts returns all parts ordered by part number
func (r *PartRepository) GetAllParts() ([]*entities.Part, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	parts := make([]*entities.Part, 0, len(r.parts))
	for i := range r.parts {
		part := r.parts[i]
		parts = append(parts, &part)
	}
	sort.Slice(parts, func(i, j int) bool {
		return parts[i].PartNumber < parts[j].PartNumber
	})
	return parts, nil
}
