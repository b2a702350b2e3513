package reference

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/embunadw/wms/pkg/application/services/composer"
	"github.com/embunadw/wms/pkg/domain/entities"
	"github.com/embunadw/wms/pkg/infrastructure/repositories/memory"
)

// API is the part of the WMS client the loader reads from
type API interface {
	ListParts(ctx context.Context) ([]*entities.Part, error)
	ListStock(ctx context.Context) ([]*entities.StockEntry, error)
	ListOpenSources(ctx context.Context, docType entities.DocumentType) ([]*entities.SourceDocument, error)
}

// PartCache serves the master part list, falling back to fetch on a miss
type PartCache interface {
	Parts(ctx context.Context, fetch func(context.Context) ([]*entities.Part, error)) ([]*entities.Part, error)
}

// Snapshot is the reference data one draft is composed against
type Snapshot struct {
	Parts    *memory.PartRepository
	Stock    *memory.StockIndex
	Sources  *memory.SourceDocumentRepository
	LoadedAt time.Time
}

// Loader fetches the reference lists a draft needs
type Loader struct {
	api    API
	cache  PartCache
	logger *zap.Logger
}

// NewLoader creates a loader; cache may be nil
func NewLoader(api API, cache PartCache, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{api: api, cache: cache, logger: logger}
}

// Load fetches parts, plus stock and open source documents when docType
// needs them. The lists are fetched concurrently and only combined once all
// have arrived; the first failure cancels the rest.
func (l *Loader) Load(ctx context.Context, docType entities.DocumentType) (*Snapshot, error) {
	policy, ok := composer.PolicyFor(docType)
	if !ok {
		return nil, fmt.Errorf("unsupported document type: %s", docType)
	}

	var (
		parts   []*entities.Part
		stock   []*entities.StockEntry
		sources []*entities.SourceDocument
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if l.cache != nil {
			parts, err = l.cache.Parts(gctx, l.api.ListParts)
		} else {
			parts, err = l.api.ListParts(gctx)
		}
		if err != nil {
			return fmt.Errorf("failed to load parts: %w", err)
		}
		return nil
	})

	if policy.StockBound {
		g.Go(func() error {
			var err error
			stock, err = l.api.ListStock(gctx)
			if err != nil {
				return fmt.Errorf("failed to load stock: %w", err)
			}
			return nil
		})
	}

	if policy.HasSource {
		g.Go(func() error {
			var err error
			sources, err = l.api.ListOpenSources(gctx, policy.SourceType)
			if err != nil {
				return fmt.Errorf("failed to load open %s list: %w", policy.SourceType, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Parts:    memory.NewPartRepository(len(parts)),
		Stock:    memory.NewStockIndex(stock),
		Sources:  memory.NewSourceDocumentRepository(),
		LoadedAt: time.Now(),
	}
	for _, part := range parts {
		if err := snapshot.Parts.SavePart(part); err != nil {
			l.logger.Warn("skipping part", zap.String("part_number", string(part.PartNumber)), zap.Error(err))
		}
	}
	if err := snapshot.Sources.LoadSources(sources); err != nil {
		return nil, err
	}

	l.logger.Debug("reference data loaded",
		zap.String("document_type", docType.String()),
		zap.Int("parts", len(parts)),
		zap.Int("stock_rows", len(stock)),
		zap.Int("sources", len(sources)),
	)
	return snapshot, nil
}
