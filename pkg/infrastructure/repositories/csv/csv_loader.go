package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/embunadw/wms/pkg/domain/entities"
)

// Loader handles loading warehouse reference data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// CandidateLine is one line a user wants to add to a draft, as typed.
// Quantity is kept raw so the rules engine sees exactly what was entered.
type CandidateLine struct {
	Row         int
	PartNumber  entities.PartNumber
	RawQuantity string
	Priority    entities.Priority
	UnitPrice   *decimal.Decimal
	Notes       string
}

var (
	partsHeader      = []string{"id", "part_number", "name", "unit"}
	stockHeader      = []string{"part_id", "location", "qty_on_hand", "min", "max"}
	sourcesHeader    = []string{"doc_type", "code", "location", "vendor_id", "line_id", "part_id", "part_number", "requested", "fulfilled", "unit_price"}
	candidatesHeader = []string{"part_number", "quantity", "priority", "unit_price", "notes"}
)

// LoadParts loads master parts from a CSV file
func (l *Loader) LoadParts(filename string) ([]*entities.Part, error) {
	records, err := readRecords(filename, "parts", partsHeader)
	if err != nil {
		return nil, err
	}

	var parts []*entities.Part
	for i, record := range records {
		part, err := entities.NewPart(entities.PartID(record[0]), entities.PartNumber(record[1]), record[2], record[3])
		if err != nil {
			return nil, fmt.Errorf("parts CSV row %d: %w", i+2, err)
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// LoadStock loads stock entries from a CSV file
func (l *Loader) LoadStock(filename string) ([]*entities.StockEntry, error) {
	records, err := readRecords(filename, "stock", stockHeader)
	if err != nil {
		return nil, err
	}

	var entries []*entities.StockEntry
	for i, record := range records {
		qty, err := parseQuantity(record[2], "qty_on_hand")
		if err != nil {
			return nil, fmt.Errorf("stock CSV row %d: %w", i+2, err)
		}
		minQty, err := parseOptionalQuantity(record[3], "min")
		if err != nil {
			return nil, fmt.Errorf("stock CSV row %d: %w", i+2, err)
		}
		maxQty, err := parseOptionalQuantity(record[4], "max")
		if err != nil {
			return nil, fmt.Errorf("stock CSV row %d: %w", i+2, err)
		}

		entry, err := entities.NewStockEntry(entities.PartID(record[0]), record[1], qty, minQty, maxQty)
		if err != nil {
			return nil, fmt.Errorf("stock CSV row %d: %w", i+2, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// LoadSources loads open source documents from a CSV file with one row per
// line. Rows sharing doc_type and code are grouped into one document.
func (l *Loader) LoadSources(filename string) ([]*entities.SourceDocument, error) {
	records, err := readRecords(filename, "sources", sourcesHeader)
	if err != nil {
		return nil, err
	}

	type group struct {
		docType  entities.DocumentType
		code     string
		location string
		vendorID string
		lines    []entities.SourceLine
	}
	var order []string
	groups := make(map[string]*group)

	for i, record := range records {
		docType, err := entities.ParseDocumentType(record[0])
		if err != nil {
			return nil, fmt.Errorf("sources CSV row %d: %w", i+2, err)
		}
		switch docType {
		case entities.MaterialRequest, entities.PurchaseRequest, entities.PurchaseOrder:
		default:
			return nil, fmt.Errorf("sources CSV row %d: %s cannot be a source document", i+2, docType)
		}

		requested, err := parseQuantity(record[7], "requested")
		if err != nil {
			return nil, fmt.Errorf("sources CSV row %d: %w", i+2, err)
		}
		fulfilled, err := parseOptionalQuantity(record[8], "fulfilled")
		if err != nil {
			return nil, fmt.Errorf("sources CSV row %d: %w", i+2, err)
		}
		price, err := parsePrice(record[9])
		if err != nil {
			return nil, fmt.Errorf("sources CSV row %d: %w", i+2, err)
		}

		key := docType.String() + "|" + record[1]
		g, exists := groups[key]
		if !exists {
			g = &group{docType: docType, code: record[1], location: record[2], vendorID: record[3]}
			groups[key] = g
			order = append(order, key)
		}
		g.lines = append(g.lines, entities.SourceLine{
			LineID:     record[4],
			PartID:     entities.PartID(record[5]),
			PartNumber: entities.PartNumber(record[6]),
			Requested:  requested,
			Fulfilled:  fulfilled,
			UnitPrice:  price,
		})
	}

	docs := make([]*entities.SourceDocument, 0, len(order))
	for _, key := range order {
		g := groups[key]
		doc, err := entities.NewSourceDocument(g.docType, g.code, g.code, g.location, g.lines)
		if err != nil {
			return nil, fmt.Errorf("sources CSV: %w", err)
		}
		doc.VendorID = g.vendorID
		docs = append(docs, doc)
	}
	return docs, nil
}

// LoadCandidateLines loads the lines to compose from a CSV file
func (l *Loader) LoadCandidateLines(filename string) ([]*CandidateLine, error) {
	records, err := readRecords(filename, "lines", candidatesHeader)
	if err != nil {
		return nil, err
	}

	var lines []*CandidateLine
	for i, record := range records {
		priority, err := entities.ParsePriority(record[2])
		if err != nil {
			return nil, fmt.Errorf("lines CSV row %d: %w", i+2, err)
		}
		price, err := parsePrice(record[3])
		if err != nil {
			return nil, fmt.Errorf("lines CSV row %d: %w", i+2, err)
		}
		lines = append(lines, &CandidateLine{
			Row:         i + 2,
			PartNumber:  entities.PartNumber(strings.TrimSpace(record[0])),
			RawQuantity: record[1],
			Priority:    priority,
			UnitPrice:   price,
			Notes:       record[4],
		})
	}
	return lines, nil
}

func readRecords(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	rows := records[1:]
	for i, record := range rows {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseQuantity(s, field string) (entities.Quantity, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", field, s)
	}
	return entities.Quantity(n), nil
}

func parseOptionalQuantity(s, field string) (entities.Quantity, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return parseQuantity(s, field)
}

func parsePrice(s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	price, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid unit_price: %s", s)
	}
	return &price, nil
}
