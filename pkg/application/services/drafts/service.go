package drafts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/embunadw/wms/pkg/application/dto"
	"github.com/embunadw/wms/pkg/application/services/composer"
	"github.com/embunadw/wms/pkg/application/services/reference"
	"github.com/embunadw/wms/pkg/domain/entities"
	"github.com/embunadw/wms/pkg/infrastructure/events"
	"github.com/embunadw/wms/pkg/infrastructure/wmsapi"
)

// ErrEmptyDraft is returned when submitting a draft without lines
var ErrEmptyDraft = errors.New("draft has no lines")

// Submitter posts a finished document to the WMS server
type Submitter interface {
	CreateDocument(ctx context.Context, docType entities.DocumentType, payload interface{}) (*wmsapi.CreatedDocument, error)
}

// ReferenceLoader fetches the reference data a new draft needs
type ReferenceLoader interface {
	Load(ctx context.Context, docType entities.DocumentType) (*reference.Snapshot, error)
}

// CreateRequest opens a new draft
type CreateRequest struct {
	Type       entities.DocumentType
	SourceCode string
	Location   string
}

// AddLineRequest is one candidate line as entered. Quantity is raw input.
type AddLineRequest struct {
	PartID     entities.PartID
	PartNumber entities.PartNumber
	Quantity   string
	Priority   string
	UnitPrice  *decimal.Decimal
	Notes      string
}

// Service manages drafts for the HTTP layer
type Service struct {
	loader    ReferenceLoader
	submitter Submitter
	store     *Store
	events    events.EventStore
	logger    *zap.Logger
}

func NewService(loader ReferenceLoader, submitter Submitter, store *Store, eventStore events.EventStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		loader:    loader,
		submitter: submitter,
		store:     store,
		events:    eventStore,
		logger:    logger,
	}
}

// Create loads reference data and opens an empty draft
func (s *Service) Create(ctx context.Context, req CreateRequest) (*dto.DraftView, error) {
	policy, ok := composer.PolicyFor(req.Type)
	if !ok {
		return nil, fmt.Errorf("unsupported document type: %s", req.Type)
	}
	if req.SourceCode != "" && !policy.HasSource {
		return nil, fmt.Errorf("%s drafts do not take a source document", req.Type)
	}

	snapshot, err := s.loader.Load(ctx, req.Type)
	if err != nil {
		return nil, err
	}

	opts := composer.Options{Stock: snapshot.Stock, Location: req.Location}
	if req.SourceCode != "" {
		src, err := snapshot.Sources.GetSource(policy.SourceType, req.SourceCode)
		if err != nil {
			return nil, entities.NewNoSourceDocumentSelectedError(
				fmt.Sprintf("%s %s is not open", policy.SourceType, req.SourceCode))
		}
		opts.Source = src
	}

	c, err := composer.New(req.Type, opts)
	if err != nil {
		return nil, err
	}

	d := s.store.Put(c, snapshot)
	s.record(d.ID, events.DraftCreatedEvent, events.DraftCreated{
		DocumentType: req.Type.String(),
		SourceCode:   req.SourceCode,
		Location:     req.Location,
	})
	s.logger.Info("draft created",
		zap.String("draft_id", d.ID),
		zap.String("document_type", req.Type.String()),
		zap.String("source_code", req.SourceCode),
	)

	view := dto.NewDraftView(d.ID, d.CreatedAt, c.State())
	return &view, nil
}

// Get returns the current state of a draft
func (s *Service) Get(id string) (*dto.DraftView, error) {
	d, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	var view dto.DraftView
	err = d.Do(func(c *composer.Composer, _ *reference.Snapshot) error {
		view = dto.NewDraftView(d.ID, d.CreatedAt, c.State())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// SelectSource sets or replaces the source document of a draft. Replacing it
// drops every line drawn from the previous source.
func (s *Service) SelectSource(_ context.Context, id string, code string) (*dto.DraftView, error) {
	d, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	var view dto.DraftView
	err = d.Do(func(c *composer.Composer, snapshot *reference.Snapshot) error {
		policy := c.Policy()
		if !policy.HasSource {
			return fmt.Errorf("%s drafts do not take a source document", c.Type())
		}
		src, err := snapshot.Sources.GetSource(policy.SourceType, code)
		if err != nil {
			return entities.NewNoSourceDocumentSelectedError(
				fmt.Sprintf("%s %s is not open", policy.SourceType, code))
		}
		if err := c.SelectSource(src); err != nil {
			return err
		}
		view = dto.NewDraftView(d.ID, d.CreatedAt, c.State())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(id, events.DraftSourceSelectedEvent, events.DraftSourceSelected{SourceCode: code})
	return &view, nil
}

// AddLine resolves the part, parses the quantity and runs the composer rules
func (s *Service) AddLine(_ context.Context, id string, req AddLineRequest) (composer.AddResult, error) {
	d, err := s.store.Get(id)
	if err != nil {
		return composer.AddResult{}, err
	}

	priority, err := entities.ParsePriority(req.Priority)
	if err != nil {
		return composer.AddResult{}, err
	}

	var result composer.AddResult
	err = d.Do(func(c *composer.Composer, snapshot *reference.Snapshot) error {
		qty, err := entities.ParseQuantity(req.Quantity)
		if err != nil {
			// a missing source still takes precedence over bad input
			if _, srcErr := c.AddLine(nil, 0, entities.LineExtras{}); errors.Is(srcErr, entities.ErrNoSourceDocumentSelected) {
				return srcErr
			}
			return err
		}
		part := resolvePart(snapshot, req.PartID, req.PartNumber)
		result, err = c.AddLine(part, qty, entities.LineExtras{
			Priority:  priority,
			UnitPrice: req.UnitPrice,
			Notes:     req.Notes,
		})
		return err
	})

	var ruleErr *entities.RuleError
	switch {
	case err == nil:
		s.record(id, events.DraftLineAddedEvent, events.DraftLineAdded{
			PartNumber: result.Line.PartNumber,
			Quantity:   result.Line.Quantity,
			Warnings:   result.Warnings,
		})
	case errors.As(err, &ruleErr):
		rejected := events.DraftLineRejected{
			PartNumber: ruleErr.PartNumber,
			Code:       ruleErr.Code,
			Message:    ruleErr.Message,
		}
		if ruleErr.Code == entities.CodeQuantityExceedsLimit {
			limit := ruleErr.Limit
			rejected.Limit = &limit
		}
		if rejected.PartNumber == "" {
			rejected.PartNumber = req.PartNumber
		}
		s.record(id, events.DraftLineRejectedEvent, rejected)
	}
	return result, err
}

// RemoveLine drops a line by index
func (s *Service) RemoveLine(_ context.Context, id string, index int) error {
	d, err := s.store.Get(id)
	if err != nil {
		return err
	}

	var removed entities.DocumentLine
	err = d.Do(func(c *composer.Composer, _ *reference.Snapshot) error {
		lines := c.Lines()
		if index >= 0 && index < len(lines) {
			removed = lines[index]
		}
		return c.RemoveLine(index)
	})
	if err != nil {
		return err
	}

	s.record(id, events.DraftLineRemovedEvent, events.DraftLineRemoved{PartNumber: removed.PartNumber, Index: index})
	return nil
}

// Submit posts the draft. On success the draft is discarded; on failure it
// is kept unchanged so the user can correct it and resubmit.
func (s *Service) Submit(ctx context.Context, id string, header entities.Header) (*wmsapi.CreatedDocument, error) {
	d, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	var (
		created *wmsapi.CreatedDocument
		docType entities.DocumentType
		lines   int
	)
	// the draft closes under its own lock on success, so a second submit of
	// the same id waits here and then finds nothing to send
	err = d.doAndClose(func(c *composer.Composer, _ *reference.Snapshot) error {
		docType = c.Type()
		lines = c.Len()
		if lines == 0 {
			return ErrEmptyDraft
		}
		var err error
		created, err = s.submitter.CreateDocument(ctx, c.Type(), c.ToPayload(header))
		return err
	})
	if errors.Is(err, ErrDraftNotFound) {
		return nil, err
	}
	if err != nil {
		s.record(id, events.DraftSubmitFailedEvent, events.DraftSubmitFailed{
			DocumentType: docType.String(),
			Error:        err.Error(),
		})
		s.logger.Warn("draft submission failed",
			zap.String("draft_id", id),
			zap.String("document_type", docType.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.record(id, events.DraftSubmittedEvent, events.DraftSubmitted{DocumentType: docType.String(), Lines: lines})
	s.store.Delete(id)
	s.deleteHistory(id)
	s.logger.Info("draft submitted",
		zap.String("draft_id", id),
		zap.String("document_type", docType.String()),
		zap.String("code", created.Code),
	)
	return created, nil
}

// Discard drops a draft without submitting it
func (s *Service) Discard(id string) error {
	if !s.store.Delete(id) {
		return ErrDraftNotFound
	}
	s.deleteHistory(id)
	return nil
}

// History returns the recorded events of a live draft
func (s *Service) History(id string) ([]events.Event, error) {
	if _, err := s.store.Get(id); err != nil {
		return nil, err
	}
	if s.events == nil {
		return nil, nil
	}
	return s.events.ReadEvents(id, 0)
}

// Open returns the number of live drafts
func (s *Service) Open() int {
	return s.store.Len()
}

// Sweep discards drafts idle for longer than ttl
func (s *Service) Sweep(ttl time.Duration) int {
	expired := s.store.Sweep(time.Now(), ttl)
	for _, id := range expired {
		s.record(id, events.DraftExpiredEvent, events.DraftExpired{})
		s.deleteHistory(id)
	}
	if len(expired) > 0 {
		s.logger.Info("expired idle drafts", zap.Int("count", len(expired)))
	}
	return len(expired)
}

func (s *Service) record(streamID, eventType string, data interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.AppendEvent(streamID, events.NewEvent(eventType, streamID, data)); err != nil {
		s.logger.Warn("failed to record event", zap.String("event_type", eventType), zap.Error(err))
	}
}

func (s *Service) deleteHistory(streamID string) {
	if s.events == nil {
		return
	}
	if err := s.events.DeleteStream(streamID); err != nil {
		s.logger.Warn("failed to delete event history", zap.String("stream_id", streamID), zap.Error(err))
	}
}

func resolvePart(snapshot *reference.Snapshot, id entities.PartID, number entities.PartNumber) *entities.Part {
	if id != "" {
		if part, err := snapshot.Parts.GetPart(id); err == nil {
			return part
		}
		return nil
	}
	if number != "" {
		if part, err := snapshot.Parts.GetPartByNumber(number); err == nil {
			return part
		}
	}
	return nil
}
