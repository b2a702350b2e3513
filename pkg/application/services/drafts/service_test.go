package drafts

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/embunadw/wms/pkg/application/dto"
	"github.com/embunadw/wms/pkg/application/services/reference"
	"github.com/embunadw/wms/pkg/domain/entities"
	"github.com/embunadw/wms/pkg/infrastructure/events"
	testhelpers "github.com/embunadw/wms/pkg/infrastructure/testing"
	"github.com/embunadw/wms/pkg/infrastructure/wmsapi"
)

type stubLoader struct{}

func (stubLoader) Load(context.Context, entities.DocumentType) (*reference.Snapshot, error) {
	parts, stock, sources := testhelpers.BuildSimpleTestData()
	return &reference.Snapshot{Parts: parts, Stock: stock, Sources: sources}, nil
}

type stubSubmitter struct {
	err      error
	payloads []dto.DocumentPayload
}

func (s *stubSubmitter) CreateDocument(_ context.Context, _ entities.DocumentType, payload interface{}) (*wmsapi.CreatedDocument, error) {
	s.payloads = append(s.payloads, payload.(dto.DocumentPayload))
	if s.err != nil {
		return nil, s.err
	}
	return &wmsapi.CreatedDocument{ID: "99", Code: "DLV-0099"}, nil
}

type slowSubmitter struct {
	delay time.Duration
	calls int32
}

func (s *slowSubmitter) CreateDocument(context.Context, entities.DocumentType, interface{}) (*wmsapi.CreatedDocument, error) {
	atomic.AddInt32(&s.calls, 1)
	time.Sleep(s.delay)
	return &wmsapi.CreatedDocument{ID: "99", Code: "DLV-0099"}, nil
}

type failingDeleteStore struct {
	*events.InMemoryEventStore
	deletes int
}

func (f *failingDeleteStore) DeleteStream(string) error {
	f.deletes++
	return errors.New("store unavailable")
}

func newTestService(submitter Submitter) (*Service, *events.InMemoryEventStore) {
	eventStore := events.NewInMemoryEventStore(zap.NewNop())
	return NewService(stubLoader{}, submitter, NewStore(), eventStore, zap.NewNop()), eventStore
}

func TestService_DeliveryFlow(t *testing.T) {
	submitter := &stubSubmitter{}
	svc, _ := newTestService(submitter)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateRequest{Type: entities.Delivery, SourceCode: "MR-001", Location: "WH-A"})
	require.NoError(t, err)
	require.Equal(t, "Delivery", view.DocumentType)

	_, err = svc.AddLine(ctx, view.ID, AddLineRequest{PartNumber: "P-100", Quantity: "6"})
	var ruleErr *entities.RuleError
	require.True(t, errors.As(err, &ruleErr))
	require.Equal(t, entities.Quantity(5), ruleErr.Limit)

	_, err = svc.AddLine(ctx, view.ID, AddLineRequest{PartNumber: "P-100", Quantity: "five"})
	require.ErrorIs(t, err, entities.ErrInvalidQuantity)

	result, err := svc.AddLine(ctx, view.ID, AddLineRequest{PartID: "1", Quantity: " 5 "})
	require.NoError(t, err)
	require.Equal(t, entities.Quantity(5), result.Line.Quantity)

	_, err = svc.AddLine(ctx, view.ID, AddLineRequest{PartNumber: "P-100", Quantity: "1"})
	require.ErrorIs(t, err, entities.ErrDuplicatePart)

	history, err := svc.History(view.ID)
	require.NoError(t, err)
	types := make([]string, 0, len(history))
	for _, e := range history {
		types = append(types, e.Type())
	}
	require.Equal(t, []string{
		events.DraftCreatedEvent,
		events.DraftLineRejectedEvent,
		events.DraftLineRejectedEvent,
		events.DraftLineAddedEvent,
		events.DraftLineRejectedEvent,
	}, types)

	created, err := svc.Submit(ctx, view.ID, entities.Header{ToLocation: "SITE-1"})
	require.NoError(t, err)
	require.Equal(t, "DLV-0099", created.Code)
	require.Len(t, submitter.payloads, 1)
	require.Equal(t, "MR-001", submitter.payloads[0].Header.SourceCode)
	require.Equal(t, "WH-A", submitter.payloads[0].Header.Location)

	_, err = svc.Get(view.ID)
	require.ErrorIs(t, err, ErrDraftNotFound)
}

func TestService_FailedSubmitKeepsDraft(t *testing.T) {
	submitter := &stubSubmitter{err: &wmsapi.APIError{StatusCode: 409, Message: "over-allocated"}}
	svc, _ := newTestService(submitter)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateRequest{Type: entities.MaterialRequest})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, view.ID, entities.Header{})
	require.ErrorIs(t, err, ErrEmptyDraft)

	_, err = svc.AddLine(ctx, view.ID, AddLineRequest{PartNumber: "P-200", Quantity: "3", Priority: "high"})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, view.ID, entities.Header{})
	var apiErr *wmsapi.APIError
	require.True(t, errors.As(err, &apiErr))

	kept, err := svc.Get(view.ID)
	require.NoError(t, err)
	require.Len(t, kept.Lines, 1)
	require.Equal(t, "high", kept.Lines[0].Priority)

	history, _ := svc.History(view.ID)
	require.Equal(t, events.DraftSubmitFailedEvent, history[len(history)-1].Type())
}

func TestService_CreateErrors(t *testing.T) {
	svc, _ := newTestService(&stubSubmitter{})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{Type: entities.Delivery, SourceCode: "MR-404", Location: "WH-A"})
	require.ErrorIs(t, err, entities.ErrNoSourceDocumentSelected)

	_, err = svc.Create(ctx, CreateRequest{Type: entities.MaterialRequest, SourceCode: "MR-001"})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateRequest{Type: entities.GoodsIssue})
	require.ErrorContains(t, err, "location")
}

func TestService_MissingSourceBeatsBadQuantity(t *testing.T) {
	svc, _ := newTestService(&stubSubmitter{})
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateRequest{Type: entities.Delivery, Location: "WH-A"})
	require.NoError(t, err)

	_, err = svc.AddLine(ctx, view.ID, AddLineRequest{PartNumber: "P-100", Quantity: "x"})
	require.ErrorIs(t, err, entities.ErrNoSourceDocumentSelected)
}

func TestService_RemoveAndDiscard(t *testing.T) {
	svc, _ := newTestService(&stubSubmitter{})
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateRequest{Type: entities.MaterialRequest})
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, view.ID, AddLineRequest{PartNumber: "P-100", Quantity: "1"})
	require.NoError(t, err)

	require.Error(t, svc.RemoveLine(ctx, view.ID, 3))
	require.NoError(t, svc.RemoveLine(ctx, view.ID, 0))

	got, err := svc.Get(view.ID)
	require.NoError(t, err)
	require.Empty(t, got.Lines)

	require.NoError(t, svc.Discard(view.ID))
	require.ErrorIs(t, svc.Discard(view.ID), ErrDraftNotFound)
}

func TestService_Sweep(t *testing.T) {
	svc, _ := newTestService(&stubSubmitter{})

	view, err := svc.Create(context.Background(), CreateRequest{Type: entities.MaterialRequest})
	require.NoError(t, err)

	require.Equal(t, 0, svc.Sweep(time.Hour))
	time.Sleep(5 * time.Millisecond)
	require.Equal(t, 1, svc.Sweep(time.Millisecond))

	_, err = svc.Get(view.ID)
	require.ErrorIs(t, err, ErrDraftNotFound)
}

func TestService_ConcurrentSubmitPostsOnce(t *testing.T) {
	submitter := &slowSubmitter{delay: 20 * time.Millisecond}
	svc, _ := newTestService(submitter)
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateRequest{Type: entities.Delivery, SourceCode: "MR-001", Location: "WH-A"})
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, view.ID, AddLineRequest{PartNumber: "P-100", Quantity: "5"})
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(ctx, view.ID, entities.Header{})
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&submitter.calls))
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, ErrDraftNotFound)
	}
	require.Equal(t, 1, succeeded)

	_, err = svc.AddLine(ctx, view.ID, AddLineRequest{PartNumber: "P-100", Quantity: "1"})
	require.ErrorIs(t, err, ErrDraftNotFound)
	require.Equal(t, 0, svc.Open())
}

func TestService_SubmitReleasesHistory(t *testing.T) {
	svc, eventStore := newTestService(&stubSubmitter{})
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateRequest{Type: entities.MaterialRequest})
	require.NoError(t, err)
	_, err = svc.AddLine(ctx, view.ID, AddLineRequest{PartNumber: "P-100", Quantity: "1"})
	require.NoError(t, err)
	require.Equal(t, 1, eventStore.StreamCount())

	_, err = svc.Submit(ctx, view.ID, entities.Header{})
	require.NoError(t, err)
	require.Equal(t, 0, eventStore.StreamCount())
}

func TestService_HistoryDeleteFailureIsNotFatal(t *testing.T) {
	eventStore := &failingDeleteStore{InMemoryEventStore: events.NewInMemoryEventStore(zap.NewNop())}
	svc := NewService(stubLoader{}, &stubSubmitter{}, NewStore(), eventStore, zap.NewNop())
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateRequest{Type: entities.MaterialRequest})
	require.NoError(t, err)

	require.NoError(t, svc.Discard(view.ID))
	require.Equal(t, 1, eventStore.deletes)
	require.Equal(t, 0, svc.Open())
}

func TestService_SelectSource(t *testing.T) {
	svc, _ := newTestService(&stubSubmitter{})
	ctx := context.Background()

	view, err := svc.Create(ctx, CreateRequest{Type: entities.Delivery, Location: "WH-A"})
	require.NoError(t, err)
	require.Empty(t, view.SourceCode)

	_, err = svc.SelectSource(ctx, view.ID, "MR-404")
	require.ErrorIs(t, err, entities.ErrNoSourceDocumentSelected)

	view, err = svc.SelectSource(ctx, view.ID, "MR-001")
	require.NoError(t, err)
	require.Equal(t, "MR-001", view.SourceCode)

	result, err := svc.AddLine(ctx, view.ID, AddLineRequest{PartNumber: "P-100", Quantity: "5"})
	require.NoError(t, err)
	require.Equal(t, 0, result.Index)

	history, err := svc.History(view.ID)
	require.NoError(t, err)
	require.Equal(t, events.DraftSourceSelectedEvent, history[1].Type())

	mr, err := svc.Create(ctx, CreateRequest{Type: entities.MaterialRequest})
	require.NoError(t, err)
	_, err = svc.SelectSource(ctx, mr.ID, "MR-001")
	require.ErrorContains(t, err, "do not take a source")

	_, err = svc.SelectSource(ctx, "missing", "MR-001")
	require.ErrorIs(t, err, ErrDraftNotFound)
}
