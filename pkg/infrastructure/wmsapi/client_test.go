package wmsapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/embunadw/wms/pkg/domain/entities"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 0, zap.NewNop())
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"message": message, "data": data})
}

func TestClient_ListParts(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/parts", r.URL.Path)
		require.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "ok", []map[string]interface{}{
			{"id": 1, "part_number": "P-100", "part_name": "Oil Filter", "unit": "PCS"},
			{"id": "2", "part_number": "P-200", "part_name": "Bolt", "unit": ""},
			{"id": 3, "part_number": "", "part_name": "broken"},
		})
	})

	ctx := WithAuthorization(context.Background(), "Bearer abc")
	parts, err := client.ListParts(ctx)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	require.Equal(t, entities.PartID("1"), parts[0].ID)
	require.Equal(t, "PCS", parts[1].UnitOfMeasure)
}

func TestClient_ListStock(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "ok", []map[string]interface{}{
			{"part_id": 1, "location": "WH-A", "qty": 5, "min": 1, "max": 20},
			{"part_id": 2, "location": "", "qty": 9},
		})
	})

	entries, err := client.ListStock(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, entities.Quantity(5), entries[0].QtyOnHand)
}

func TestClient_ListOpenSources_MapsQuantityKeys(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "open", r.URL.Query().Get("status"))
		switch r.URL.Path {
		case "/material-requests":
			writeEnvelope(w, http.StatusOK, "ok", []map[string]interface{}{{
				"id": 7, "code": "MR-001", "location": "SITE-1",
				"lines": []map[string]interface{}{{"id": 70, "part_id": 1, "part_number": "P-100", "qty_request": 10, "qty_received": 4}},
			}})
		case "/purchase-orders":
			writeEnvelope(w, http.StatusOK, "ok", []map[string]interface{}{{
				"id": 9, "code": "PO-001", "vendor_id": 3,
				"lines": []map[string]interface{}{{"id": 90, "part_id": 1, "part_number": "P-100", "qty_po": 12, "qty_received": 5, "unit_price": "1500.50"}},
			}})
		default:
			writeEnvelope(w, http.StatusNotFound, "not found", nil)
		}
	})

	mrs, err := client.ListOpenSources(context.Background(), entities.MaterialRequest)
	require.NoError(t, err)
	require.Len(t, mrs, 1)
	require.Equal(t, entities.Quantity(10), mrs[0].Lines[0].Requested)
	require.Equal(t, entities.Quantity(4), mrs[0].Lines[0].Fulfilled)

	pos, err := client.ListOpenSources(context.Background(), entities.PurchaseOrder)
	require.NoError(t, err)
	require.Equal(t, "3", pos[0].VendorID)
	require.Equal(t, entities.Quantity(12), pos[0].Lines[0].Requested)
	require.Equal(t, "1500.5", pos[0].Lines[0].UnitPrice.String())

	_, err = client.ListOpenSources(context.Background(), entities.GoodsIssue)
	require.Error(t, err)
}

func TestClient_CreateDocument_APIError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/deliveries", r.URL.Path)
		writeEnvelope(w, http.StatusConflict, "quantity exceeds remaining request", nil)
	})

	_, err := client.CreateDocument(context.Background(), entities.Delivery, map[string]string{"a": "b"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
	require.Equal(t, "quantity exceeds remaining request", apiErr.Message)
}

func TestClient_CreateDocument_PlainTextError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := client.CreateDocument(context.Background(), entities.MaterialRequest, struct{}{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "upstream down", apiErr.Message)
}

func TestClient_CreateDocument_Success(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.JSONEq(t, `{"header":{"code":"SPB-1"}}`, string(body))
		writeEnvelope(w, http.StatusCreated, "created", map[string]interface{}{"id": 44, "code": "SPB-1"})
	})

	created, err := client.CreateDocument(context.Background(), entities.GoodsIssue,
		map[string]interface{}{"header": map[string]string{"code": "SPB-1"}})
	require.NoError(t, err)
	require.Equal(t, ID("44"), created.ID)
}

func TestClient_StatusUpdates(t *testing.T) {
	var got []string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = append(got, r.Method+" "+r.URL.Path+" "+string(body))
		writeEnvelope(w, http.StatusOK, "ok", nil)
	})

	require.NoError(t, client.UpdateDeliveryStatus(context.Background(), "5",
		entities.StatusChange{Status: entities.DeliveryOnDelivery}))
	require.NoError(t, client.UpdatePurchaseOrderStatus(context.Background(), "9",
		entities.PurchaseOrderStatusChange{Status: "approved", DetailStatus: "vendor confirmed", Notes: "ok"}))

	require.Equal(t, []string{
		`PATCH /deliveries/5/status {"status":"on delivery"}`,
		`PUT /purchase-orders/9/status {"status":"approved","detail_status":"vendor confirmed","keterangan":"ok"}`,
	}, got)
}

func TestClient_GetDelivery(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "ok", map[string]interface{}{
			"id": 5, "code": "DLV-5", "from_location": "WH-A", "to_location": "SITE-1", "status": "on_delivery",
		})
	})

	delivery, err := client.GetDelivery(context.Background(), "5")
	require.NoError(t, err)
	require.Equal(t, entities.DeliveryOnDelivery, delivery.Status)
	require.Equal(t, "WH-A", delivery.FromLocation)
}
