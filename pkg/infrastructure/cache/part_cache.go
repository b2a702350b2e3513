package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/embunadw/wms/pkg/domain/entities"
)

const partsKey = "wms:master:parts"

type cachedPart struct {
	ID         string `json:"id"`
	PartNumber string `json:"part_number"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
}

// PartCache is a read-through cache for the master part list. Cache failures
// are logged and fall back to the fetch; they never fail the caller.
type PartCache struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewPartCache(store Store, ttl time.Duration, logger *zap.Logger) *PartCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartCache{store: store, ttl: ttl, logger: logger}
}

// Parts returns the cached part list, calling fetch and storing its result on a miss
func (c *PartCache) Parts(ctx context.Context, fetch func(context.Context) ([]*entities.Part, error)) ([]*entities.Part, error) {
	val, err := c.store.Get(ctx, partsKey)
	switch {
	case err == nil:
		var rows []cachedPart
		if err := json.Unmarshal([]byte(val), &rows); err == nil {
			return fromCached(rows), nil
		}
		c.logger.Warn("discarding undecodable part cache entry")
	case !errors.Is(err, ErrMiss):
		c.logger.Warn("part cache read failed, fetching from api", zap.Error(err))
	}

	parts, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(toCached(parts))
	if err == nil {
		if err := c.store.Set(ctx, partsKey, string(data), c.ttl); err != nil {
			c.logger.Warn("part cache write failed", zap.Error(err))
		}
	}
	return parts, nil
}

// Invalidate drops the cached part list
func (c *PartCache) Invalidate(ctx context.Context) error {
	return c.store.Del(ctx, partsKey)
}

func toCached(parts []*entities.Part) []cachedPart {
	rows := make([]cachedPart, 0, len(parts))
	for _, p := range parts {
		rows = append(rows, cachedPart{
			ID:         string(p.ID),
			PartNumber: string(p.PartNumber),
			Name:       p.Name,
			Unit:       p.UnitOfMeasure,
		})
	}
	return rows
}

func fromCached(rows []cachedPart) []*entities.Part {
	parts := make([]*entities.Part, 0, len(rows))
	for _, r := range rows {
		parts = append(parts, &entities.Part{
			ID:            entities.PartID(r.ID),
			PartNumber:    entities.PartNumber(r.PartNumber),
			Name:          r.Name,
			UnitOfMeasure: r.Unit,
		})
	}
	return parts
}
