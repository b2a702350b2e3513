package wmsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/embunadw/wms/pkg/domain/entities"
)

// ID accepts both numeric and string identifiers from the server
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s", string(b))
	}
	*id = ID(n.String())
	return nil
}

type partDTO struct {
	ID         ID     `json:"id"`
	PartNumber string `json:"part_number"`
	PartName   string `json:"part_name"`
	Unit       string `json:"unit"`
}

type stockDTO struct {
	PartID   ID     `json:"part_id"`
	Location string `json:"location"`
	Qty      int64  `json:"qty"`
	Min      int64  `json:"min"`
	Max      int64  `json:"max"`
}

type sourceLineDTO struct {
	ID          ID               `json:"id"`
	PartID      ID               `json:"part_id"`
	PartNumber  string           `json:"part_number"`
	QtyRequest  int64            `json:"qty_request"`
	QtyPR       int64            `json:"qty_pr"`
	QtyPO       int64            `json:"qty_po"`
	QtyOrdered  int64            `json:"qty_ordered"`
	QtyReceived int64            `json:"qty_received"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

type sourceDTO struct {
	ID       ID              `json:"id"`
	Code     string          `json:"code"`
	Location string          `json:"location"`
	Status   string          `json:"status"`
	VendorID ID              `json:"vendor_id"`
	Lines    []sourceLineDTO `json:"lines"`
}

type deliveryDTO struct {
	ID           ID     `json:"id"`
	Code         string `json:"code"`
	FromLocation string `json:"from_location"`
	ToLocation   string `json:"to_location"`
	Status       string `json:"status"`
}

// CreatedDocument is what the server returns for a successful create
type CreatedDocument struct {
	ID   ID     `json:"id"`
	Code string `json:"code"`
}

var documentPaths = map[entities.DocumentType]string{
	entities.MaterialRequest: "/material-requests",
	entities.PurchaseRequest: "/purchase-requests",
	entities.PurchaseOrder:   "/purchase-orders",
	entities.Delivery:        "/deliveries",
	entities.ReceiveItem:     "/receive-items",
	entities.GoodsIssue:      "/spb",
}

// DocumentPath returns the collection path for docType
func DocumentPath(docType entities.DocumentType) (string, error) {
	path, ok := documentPaths[docType]
	if !ok {
		return "", fmt.Errorf("no endpoint for document type %s", docType)
	}
	return path, nil
}

// ListParts fetches the master part list
func (c *Client) ListParts(ctx context.Context) ([]*entities.Part, error) {
	var rows []partDTO
	if err := c.doRequest(ctx, http.MethodGet, "/parts", nil, &rows); err != nil {
		return nil, err
	}

	parts := make([]*entities.Part, 0, len(rows))
	for _, row := range rows {
		part, err := entities.NewPart(entities.PartID(row.ID), entities.PartNumber(row.PartNumber), row.PartName, row.Unit)
		if err != nil {
			c.logger.Warn("skipping invalid part row", zap.String("id", string(row.ID)), zap.Error(err))
			continue
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// ListStock fetches the flat stock list
func (c *Client) ListStock(ctx context.Context) ([]*entities.StockEntry, error) {
	var rows []stockDTO
	if err := c.doRequest(ctx, http.MethodGet, "/stocks", nil, &rows); err != nil {
		return nil, err
	}

	entries := make([]*entities.StockEntry, 0, len(rows))
	for _, row := range rows {
		if row.PartID == "" || row.Location == "" {
			continue
		}
		entries = append(entries, &entities.StockEntry{
			PartID:    entities.PartID(row.PartID),
			Location:  row.Location,
			QtyOnHand: entities.Quantity(row.Qty),
			Min:       entities.Quantity(row.Min),
			Max:       entities.Quantity(row.Max),
		})
	}
	return entries, nil
}

// ListOpenSources fetches open MRs, PRs or POs with their lines
func (c *Client) ListOpenSources(ctx context.Context, docType entities.DocumentType) ([]*entities.SourceDocument, error) {
	switch docType {
	case entities.MaterialRequest, entities.PurchaseRequest, entities.PurchaseOrder:
	default:
		return nil, fmt.Errorf("%s is not a source document type", docType)
	}
	path, _ := DocumentPath(docType)

	var rows []sourceDTO
	if err := c.doRequest(ctx, http.MethodGet, path+"?status=open", nil, &rows); err != nil {
		return nil, err
	}

	docs := make([]*entities.SourceDocument, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, toSourceDocument(docType, row))
	}
	return docs, nil
}

func toSourceDocument(docType entities.DocumentType, row sourceDTO) *entities.SourceDocument {
	lines := make([]entities.SourceLine, 0, len(row.Lines))
	for _, l := range row.Lines {
		line := entities.SourceLine{
			LineID:     string(l.ID),
			PartID:     entities.PartID(l.PartID),
			PartNumber: entities.PartNumber(l.PartNumber),
			UnitPrice:  l.UnitPrice,
		}
		switch docType {
		case entities.MaterialRequest:
			line.Requested = entities.Quantity(l.QtyRequest)
			line.Fulfilled = entities.Quantity(l.QtyReceived)
		case entities.PurchaseRequest:
			line.Requested = entities.Quantity(l.QtyPR)
			line.Fulfilled = entities.Quantity(l.QtyOrdered)
		case entities.PurchaseOrder:
			line.Requested = entities.Quantity(l.QtyPO)
			line.Fulfilled = entities.Quantity(l.QtyReceived)
		}
		lines = append(lines, line)
	}
	return &entities.SourceDocument{
		Type:     docType,
		ID:       string(row.ID),
		Code:     row.Code,
		Location: row.Location,
		Status:   row.Status,
		VendorID: string(row.VendorID),
		Lines:    lines,
	}
}

// CreateDocument posts a composed document to the create endpoint of docType
func (c *Client) CreateDocument(ctx context.Context, docType entities.DocumentType, payload interface{}) (*CreatedDocument, error) {
	path, err := DocumentPath(docType)
	if err != nil {
		return nil, err
	}

	var created CreatedDocument
	if err := c.doRequest(ctx, http.MethodPost, path, payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetDelivery fetches the current server state of a delivery
func (c *Client) GetDelivery(ctx context.Context, id string) (*entities.DeliveryRef, error) {
	var row deliveryDTO
	if err := c.doRequest(ctx, http.MethodGet, "/deliveries/"+url.PathEscape(id), nil, &row); err != nil {
		return nil, err
	}
	status, err := entities.ParseDeliveryStatus(row.Status)
	if err != nil {
		return nil, fmt.Errorf("delivery %s: %w", id, err)
	}
	return &entities.DeliveryRef{
		ID:           string(row.ID),
		Code:         row.Code,
		FromLocation: row.FromLocation,
		ToLocation:   row.ToLocation,
		Status:       status,
	}, nil
}

type deliveryStatusBody struct {
	Status       string     `json:"status"`
	PickupPlanAt *time.Time `json:"pickup_plan_at,omitempty"`
}

// UpdateDeliveryStatus sends a delivery status transition
func (c *Client) UpdateDeliveryStatus(ctx context.Context, id string, change entities.StatusChange) error {
	body := deliveryStatusBody{Status: string(change.Status), PickupPlanAt: change.PickupPlanAt}
	return c.doRequest(ctx, http.MethodPatch, "/deliveries/"+url.PathEscape(id)+"/status", body, nil)
}

type purchaseOrderStatusBody struct {
	Status       string `json:"status"`
	DetailStatus string `json:"detail_status"`
	Keterangan   string `json:"keterangan"`
}

// UpdatePurchaseOrderStatus sends a PO status change
func (c *Client) UpdatePurchaseOrderStatus(ctx context.Context, id string, change entities.PurchaseOrderStatusChange) error {
	body := purchaseOrderStatusBody{
		Status:       change.Status,
		DetailStatus: change.DetailStatus,
		Keterangan:   change.Notes,
	}
	return c.doRequest(ctx, http.MethodPut, "/purchase-orders/"+url.PathEscape(id)+"/status", body, nil)
}
