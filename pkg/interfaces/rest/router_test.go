package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/embunadw/wms/pkg/application/services/deliveries"
	"github.com/embunadw/wms/pkg/application/services/drafts"
	"github.com/embunadw/wms/pkg/application/services/reference"
	"github.com/embunadw/wms/pkg/config"
	"github.com/embunadw/wms/pkg/domain/entities"
	"github.com/embunadw/wms/pkg/infrastructure/events"
	testhelpers "github.com/embunadw/wms/pkg/infrastructure/testing"
	"github.com/embunadw/wms/pkg/infrastructure/wmsapi"
	"github.com/embunadw/wms/pkg/interfaces/rest/handler"
)

type stubLoader struct{}

func (stubLoader) Load(context.Context, entities.DocumentType) (*reference.Snapshot, error) {
	parts, stock, sources := testhelpers.BuildSimpleTestData()
	return &reference.Snapshot{Parts: parts, Stock: stock, Sources: sources}, nil
}

type stubSubmitter struct {
	err  error
	auth string
}

func (s *stubSubmitter) CreateDocument(ctx context.Context, _ entities.DocumentType, _ interface{}) (*wmsapi.CreatedDocument, error) {
	s.auth = wmsapi.AuthorizationFrom(ctx)
	if s.err != nil {
		return nil, s.err
	}
	return &wmsapi.CreatedDocument{ID: "99", Code: "DLV-0099"}, nil
}

type stubDeliveryAPI struct {
	delivery entities.DeliveryRef
}

func (s *stubDeliveryAPI) GetDelivery(context.Context, string) (*entities.DeliveryRef, error) {
	d := s.delivery
	return &d, nil
}

func (s *stubDeliveryAPI) UpdateDeliveryStatus(_ context.Context, _ string, change entities.StatusChange) error {
	s.delivery.Status = change.Status
	return nil
}

func (s *stubDeliveryAPI) UpdatePurchaseOrderStatus(context.Context, string, entities.PurchaseOrderStatusChange) error {
	return nil
}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T, submitter *stubSubmitter) *gin.Engine {
	t.Helper()
	eventStore := events.NewInMemoryEventStore(zap.NewNop())
	draftSvc := drafts.NewService(stubLoader{}, submitter, drafts.NewStore(), eventStore, zap.NewNop())
	deliverySvc := deliveries.NewService(&stubDeliveryAPI{delivery: entities.DeliveryRef{
		ID: "5", Code: "DLV-5", FromLocation: "WH-A", ToLocation: "SITE-1", Status: entities.DeliveryPending,
	}}, nil, eventStore, zap.NewNop())

	cfg := &config.Config{Server: config.ServerConfig{Mode: gin.TestMode}}
	router, err := NewRouter(cfg, handler.NewHandlers(draftSvc, deliverySvc, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}, headers map[string]string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func createDeliveryDraft(t *testing.T, router *gin.Engine) string {
	t.Helper()
	code, env := do(t, router, http.MethodPost, "/api/v1/drafts", gin.H{
		"document_type": "delivery", "source_code": "MR-001", "location": "WH-A",
	}, nil)
	require.Equal(t, http.StatusCreated, code)

	var view struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.NotEmpty(t, view.ID)
	return view.ID
}

func TestDraftLifecycle(t *testing.T) {
	submitter := &stubSubmitter{}
	router := newTestRouter(t, submitter)
	id := createDeliveryDraft(t, router)

	code, env := do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/lines", gin.H{"part_number": "P-100", "quantity": 6}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	var rule handler.RuleResponse
	require.NoError(t, json.Unmarshal(env.Data, &rule))
	require.Equal(t, entities.CodeQuantityExceedsLimit, rule.Code)
	require.NotNil(t, rule.Limit)
	require.Equal(t, int64(5), *rule.Limit)

	code, env = do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/lines", gin.H{"part_number": "P-100", "quantity": "abc"}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	rule = handler.RuleResponse{}
	require.NoError(t, json.Unmarshal(env.Data, &rule))
	require.Equal(t, entities.CodeInvalidQuantity, rule.Code)
	require.Nil(t, rule.Limit)

	code, _ = do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/lines", gin.H{"part_number": "P-100", "quantity": "5"}, nil)
	require.Equal(t, http.StatusCreated, code)

	code, env = do(t, router, http.MethodGet, "/api/v1/drafts/"+id+"/history", nil, nil)
	require.Equal(t, http.StatusOK, code)
	var history []handler.HistoryEntry
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 4)
	require.Equal(t, events.DraftLineAddedEvent, history[3].Type)

	code, env = do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/submit",
		gin.H{"date": "2026-05-01", "pic": "Budi"}, map[string]string{"Authorization": "Bearer abc"})
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "Bearer abc", submitter.auth)

	var created wmsapi.CreatedDocument
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.Equal(t, "DLV-0099", created.Code)

	code, _ = do(t, router, http.MethodGet, "/api/v1/drafts/"+id, nil, nil)
	require.Equal(t, http.StatusNotFound, code)
}

func TestSubmit_UpstreamFailureKeepsDraft(t *testing.T) {
	submitter := &stubSubmitter{err: &wmsapi.APIError{StatusCode: http.StatusInternalServerError, Message: "database down"}}
	router := newTestRouter(t, submitter)
	id := createDeliveryDraft(t, router)

	code, _ := do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/submit", gin.H{}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/lines", gin.H{"part_id": "1", "quantity": 2}, nil)
	require.Equal(t, http.StatusCreated, code)

	code, env := do(t, router, http.MethodPost, "/api/v1/drafts/"+id+"/submit", gin.H{}, nil)
	require.Equal(t, http.StatusBadGateway, code)
	require.Equal(t, "database down", env.Message)

	code, _ = do(t, router, http.MethodGet, "/api/v1/drafts/"+id, nil, nil)
	require.Equal(t, http.StatusOK, code)
}

func TestSubmit_InvalidAttachment(t *testing.T) {
	router := newTestRouter(t, &stubSubmitter{})
	code, env := do(t, router, http.MethodPost, "/api/v1/drafts", gin.H{"document_type": "spb", "location": "WH-A"}, nil)
	require.Equal(t, http.StatusCreated, code)
	var view struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))

	code, _ = do(t, router, http.MethodPost, "/api/v1/drafts/"+view.ID+"/submit", gin.H{
		"attachments": []gin.H{{"kind": "receipt", "number": "X-1"}},
	}, nil)
	require.Equal(t, http.StatusBadRequest, code)
}

func TestCreateDraft_Errors(t *testing.T) {
	router := newTestRouter(t, &stubSubmitter{})

	code, _ := do(t, router, http.MethodPost, "/api/v1/drafts", gin.H{"document_type": "invoice"}, nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, router, http.MethodPost, "/api/v1/drafts", gin.H{"document_type": "delivery", "location": "WH-A"}, nil)
	require.Equal(t, http.StatusCreated, code)

	code, env := do(t, router, http.MethodPost, "/api/v1/drafts", gin.H{
		"document_type": "delivery", "source_code": "MR-404", "location": "WH-A",
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	var rule handler.RuleResponse
	require.NoError(t, json.Unmarshal(env.Data, &rule))
	require.Equal(t, entities.CodeNoSourceDocumentSelected, rule.Code)
}

func TestSelectSource(t *testing.T) {
	router := newTestRouter(t, &stubSubmitter{})
	code, env := do(t, router, http.MethodPost, "/api/v1/drafts", gin.H{"document_type": "delivery", "location": "WH-A"}, nil)
	require.Equal(t, http.StatusCreated, code)
	var view struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))

	code, _ = do(t, router, http.MethodPut, "/api/v1/drafts/"+view.ID+"/source", gin.H{}, nil)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, router, http.MethodPut, "/api/v1/drafts/"+view.ID+"/source", gin.H{"source_code": "MR-404"}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = do(t, router, http.MethodPut, "/api/v1/drafts/"+view.ID+"/source", gin.H{"source_code": "MR-001"}, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = do(t, router, http.MethodPost, "/api/v1/drafts/"+view.ID+"/lines", gin.H{"part_number": "P-100", "quantity": 5}, nil)
	require.Equal(t, http.StatusCreated, code)
	var added handler.AddLineResponse
	require.NoError(t, json.Unmarshal(env.Data, &added))
	require.Equal(t, 0, added.Line.Index)
	require.Equal(t, "P-100", added.Line.PartNumber)
}

func TestDeliveryRoutes(t *testing.T) {
	router := newTestRouter(t, &stubSubmitter{})
	sender := map[string]string{"X-User-ID": "u1", "X-User-Location": "WH-A", "X-User-Role": "warehouse"}
	receiver := map[string]string{"X-User-ID": "u2", "X-User-Location": "SITE-1", "X-User-Role": "warehouse"}

	code, env := do(t, router, http.MethodGet, "/api/v1/deliveries/5/action", nil, sender)
	require.Equal(t, http.StatusOK, code)
	var action handler.ActionResponse
	require.NoError(t, json.Unmarshal(env.Data, &action))
	require.Equal(t, entities.ActionDispatch, action.Action)

	code, env = do(t, router, http.MethodPatch, "/api/v1/deliveries/5/status", gin.H{"status": "delivered"}, receiver)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	var rule handler.RuleResponse
	require.NoError(t, json.Unmarshal(env.Data, &rule))
	require.Equal(t, entities.CodeIllegalTransition, rule.Code)

	code, _ = do(t, router, http.MethodPatch, "/api/v1/deliveries/5/status", gin.H{"status": "on_delivery"}, sender)
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, router, http.MethodPatch, "/api/v1/deliveries/5/status", gin.H{"status": "delivered"}, receiver)
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, router, http.MethodPut, "/api/v1/purchase-orders/7/status", gin.H{"status": " "}, sender)
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, router, http.MethodPut, "/api/v1/purchase-orders/7/status", gin.H{"status": "approved"}, sender)
	require.Equal(t, http.StatusOK, code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, &stubSubmitter{})
	code, env := do(t, router, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "success", env.Message)
}
