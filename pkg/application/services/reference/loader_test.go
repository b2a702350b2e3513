package reference

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/embunadw/wms/pkg/domain/entities"
)

type fakeAPI struct {
	partsErr    error
	stockCalls  atomic.Int32
	sourceCalls atomic.Int32
	sourceType  entities.DocumentType
}

func (f *fakeAPI) ListParts(context.Context) ([]*entities.Part, error) {
	if f.partsErr != nil {
		return nil, f.partsErr
	}
	return []*entities.Part{
		{ID: "1", PartNumber: "P-100"},
		{ID: "2", PartNumber: "P-200"},
		{ID: "3", PartNumber: "P-100"},
	}, nil
}

func (f *fakeAPI) ListStock(context.Context) ([]*entities.StockEntry, error) {
	f.stockCalls.Add(1)
	return []*entities.StockEntry{{PartID: "1", Location: "WH-A", QtyOnHand: 5}}, nil
}

func (f *fakeAPI) ListOpenSources(_ context.Context, docType entities.DocumentType) ([]*entities.SourceDocument, error) {
	f.sourceCalls.Add(1)
	f.sourceType = docType
	return []*entities.SourceDocument{{Type: docType, Code: "SRC-1"}}, nil
}

type countingCache struct {
	calls int
}

func (c *countingCache) Parts(ctx context.Context, fetch func(context.Context) ([]*entities.Part, error)) ([]*entities.Part, error) {
	c.calls++
	return fetch(ctx)
}

func TestLoader_Delivery(t *testing.T) {
	api := &fakeAPI{}
	cache := &countingCache{}
	snapshot, err := NewLoader(api, cache, zap.NewNop()).Load(context.Background(), entities.Delivery)
	require.NoError(t, err)

	require.Equal(t, int32(1), api.stockCalls.Load())
	require.Equal(t, int32(1), api.sourceCalls.Load())
	require.Equal(t, entities.MaterialRequest, api.sourceType)
	require.Equal(t, 1, cache.calls)

	require.Equal(t, entities.Quantity(5), snapshot.Stock.Available("1", "WH-A"))
	_, err = snapshot.Sources.GetSource(entities.MaterialRequest, "SRC-1")
	require.NoError(t, err)

	parts, _ := snapshot.Parts.GetAllParts()
	require.Len(t, parts, 2, "duplicate part number is skipped")
}

func TestLoader_MaterialRequestSkipsStockAndSources(t *testing.T) {
	api := &fakeAPI{}
	_, err := NewLoader(api, nil, nil).Load(context.Background(), entities.MaterialRequest)
	require.NoError(t, err)
	require.Equal(t, int32(0), api.stockCalls.Load())
	require.Equal(t, int32(0), api.sourceCalls.Load())
}

func TestLoader_FailureIsReturned(t *testing.T) {
	api := &fakeAPI{partsErr: errors.New("boom")}
	_, err := NewLoader(api, nil, nil).Load(context.Background(), entities.ReceiveItem)
	require.ErrorContains(t, err, "failed to load parts: boom")
}
