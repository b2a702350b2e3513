package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type InMemoryEventStore struct {
	logger      *zap.Logger
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
}

func NewInMemoryEventStore(logger *zap.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventStore{
		logger:      logger,
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
	}
}

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.streams[streamID] == nil {
		s.streams[streamID] = make([]Event, 0)
	}

	eventWithVersion := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}

	s.streams[streamID] = append(s.streams[streamID], eventWithVersion)

	go s.notifySubscribers(eventWithVersion)

	return nil
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}

	if fromVersion > len(events) {
		return []Event{}, nil
	}

	out := make([]Event, len(events)-fromVersion+1)
	copy(out, events[fromVersion-1:])
	return out, nil
}

// DeleteStream drops a stream's history
func (s *InMemoryEventStore) DeleteStream(streamID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.streams, streamID)
	return nil
}

func (s *InMemoryEventStore) PruneStreams(cutoff time.Time) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	pruned := 0
	for id, events := range s.streams {
		if len(events) == 0 || events[len(events)-1].Timestamp().Before(cutoff) {
			delete(s.streams, id)
			pruned++
		}
	}
	return pruned
}

// StreamCount returns the number of streams with history
func (s *InMemoryEventStore) StreamCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.streams)
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		if s.subscribers[eventType] == nil {
			s.subscribers[eventType] = make([]EventHandler, 0)
		}
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		newHandlers := make([]EventHandler, 0)
		for _, h := range handlers {
			if h != handler {
				newHandlers = append(newHandlers, h)
			}
		}
		s.subscribers[eventType] = newHandlers
	}

	return nil
}

func (s *InMemoryEventStore) notifySubscribers(event Event) {
	s.mutex.RLock()
	handlers := append([]EventHandler(nil), s.subscribers[event.Type()]...)
	s.mutex.RUnlock()

	for _, handler := range handlers {
		if handler.CanHandle(event.Type()) {
			go func(h EventHandler, e Event) {
				if err := h.Handle(e); err != nil {
					s.logger.Warn("event handler failed",
						zap.String("event_type", e.Type()),
						zap.String("stream_id", e.StreamID()),
						zap.Error(err),
					)
				}
			}(handler, event)
		}
	}
}
