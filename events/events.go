package events

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"walrus/models"

	log "github.com/sirupsen/logrus"
)

// Handler handles a fired timer of the kind it was subscribed to
type Handler func(ctx context.Context, timer *models.Timer) error

// HandlerError wraps a failure raised by a timer handler
type HandlerError struct {
	Event   models.EventKind
	TimerID int64
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s handler failed for timer %d: %v", e.Event, e.TimerID, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Sink routes fired timers to the handlers registered for their event kind
type Sink struct {
	mu       sync.RWMutex
	handlers map[models.EventKind][]Handler
}

// NewSink creates an empty sink
func NewSink() *Sink {
	return &Sink{
		handlers: make(map[models.EventKind][]Handler),
	}
}

// Subscribe adds a handler for an event kind
func (s *Sink) Subscribe(kind models.EventKind, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[kind] = append(s.handlers[kind], handler)

	log.WithFields(log.Fields{
		"event":        kind,
		"handlerCount": len(s.handlers[kind]),
	}).Debug("Subscribed timer handler")
}

// Kinds returns the event kinds that have at least one handler
func (s *Sink) Kinds() []models.EventKind {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kinds := make([]models.EventKind, 0, len(s.handlers))
	for kind := range s.handlers {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Dispatch invokes every handler registered for the timer's kind, in
// subscription order. Timers without a handler are dropped. Handler errors
// and panics are logged and never reach the caller.
func (s *Sink) Dispatch(ctx context.Context, timer *models.Timer) {
	s.mu.RLock()
	handlers := make([]Handler, len(s.handlers[timer.Event]))
	copy(handlers, s.handlers[timer.Event])
	s.mu.RUnlock()

	if len(handlers) == 0 {
		log.WithFields(log.Fields{
			"event":   timer.Event,
			"timerID": timer.ID,
		}).Warn("No handler registered for timer event, dropping")
		return
	}

	for i, handler := range handlers {
		if err := s.invoke(ctx, handler, timer); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"event":        timer.Event,
				"timerID":      timer.ID,
				"handlerIndex": i,
			}).Error("Timer handler failed")
		}
	}
}

func (s *Sink) invoke(ctx context.Context, handler Handler, timer *models.Timer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{Event: timer.Event, TimerID: timer.ID, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if herr := handler(ctx, timer); herr != nil {
		return &HandlerError{Event: timer.Event, TimerID: timer.ID, Err: herr}
	}
	return nil
}
