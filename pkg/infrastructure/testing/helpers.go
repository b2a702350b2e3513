package testing

import (
	"github.com/shopspring/decimal"

	"github.com/embunadw/wms/pkg/domain/entities"
	"github.com/embunadw/wms/pkg/infrastructure/repositories/memory"
)

// BuildSimpleTestData builds the smallest delivery scenario: P-100 has 5 on
// hand at WH-A and 10 requested on MR-001, P-200 has no stock anywhere
func BuildSimpleTestData() (*memory.PartRepository, *memory.StockIndex, *memory.SourceDocumentRepository) {
	parts := memory.NewPartRepository(2)
	mustLoadParts(parts, []*entities.Part{
		{ID: "1", PartNumber: "P-100", Name: "Oil Filter", UnitOfMeasure: "PCS"},
		{ID: "2", PartNumber: "P-200", Name: "Bolt M8", UnitOfMeasure: "PCS"},
	})

	stock := memory.NewStockIndex([]*entities.StockEntry{
		{PartID: "1", Location: "WH-A", QtyOnHand: 5},
	})

	sources := memory.NewSourceDocumentRepository()
	mustLoadSources(sources, []*entities.SourceDocument{{
		Type:     entities.MaterialRequest,
		ID:       "10",
		Code:     "MR-001",
		Location: "SITE-1",
		Lines: []entities.SourceLine{
			{LineID: "70", PartID: "1", PartNumber: "P-100", Requested: 10},
		},
	}})

	return parts, stock, sources
}

// BuildProcurementTestData builds an MR -> PR -> PO chain with partial
// fulfilment at every step
func BuildProcurementTestData() (*memory.PartRepository, *memory.StockIndex, *memory.SourceDocumentRepository) {
	parts := memory.NewPartRepository(3)
	mustLoadParts(parts, []*entities.Part{
		{ID: "1", PartNumber: "P-100", Name: "Oil Filter", UnitOfMeasure: "PCS"},
		{ID: "2", PartNumber: "P-200", Name: "Bolt M8", UnitOfMeasure: "PCS"},
		{ID: "3", PartNumber: "P-300", Name: "Hydraulic Hose", UnitOfMeasure: "M"},
	})

	stock := memory.NewStockIndex([]*entities.StockEntry{
		{PartID: "1", Location: "WH-A", QtyOnHand: 40, Min: 10, Max: 100},
		{PartID: "2", Location: "WH-A", QtyOnHand: 500},
		{PartID: "3", Location: "WH-B", QtyOnHand: 12},
	})

	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	sources := memory.NewSourceDocumentRepository()
	mustLoadSources(sources, []*entities.SourceDocument{
		{
			Type: entities.MaterialRequest, ID: "10", Code: "MR-001", Location: "SITE-1",
			Lines: []entities.SourceLine{
				{LineID: "70", PartID: "1", PartNumber: "P-100", Requested: 10, Fulfilled: 4},
				{LineID: "71", PartID: "3", PartNumber: "P-300", Requested: 25},
			},
		},
		{
			Type: entities.PurchaseRequest, ID: "20", Code: "PR-001", Location: "WH-A",
			Lines: []entities.SourceLine{
				{LineID: "80", PartID: "2", PartNumber: "P-200", Requested: 200, Fulfilled: 50, UnitPrice: price("1500")},
				{LineID: "81", PartID: "3", PartNumber: "P-300", Requested: 25, UnitPrice: price("84000.50")},
			},
		},
		{
			Type: entities.PurchaseOrder, ID: "30", Code: "PO-001", Location: "WH-A", VendorID: "V-7",
			Lines: []entities.SourceLine{
				{LineID: "90", PartID: "2", PartNumber: "P-200", Requested: 150, Fulfilled: 143, UnitPrice: price("1500")},
			},
		},
	})

	return parts, stock, sources
}

func mustLoadParts(repo *memory.PartRepository, parts []*entities.Part) {
	if err := repo.LoadParts(parts); err != nil {
		panic(err)
	}
}

func mustLoadSources(repo *memory.SourceDocumentRepository, docs []*entities.SourceDocument) {
	if err := repo.LoadSources(docs); err != nil {
		panic(err)
	}
}
