package ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// DefaultHandlerTimeout bounds how long a single route handler may run
const DefaultHandlerTimeout = 5 * time.Second

// HandlerFunc serves one route. The returned value is sent back as JSON.
type HandlerFunc func(ctx context.Context, data json.RawMessage) (any, error)

// Observer is told about every served request
type Observer interface {
	IPCRequest(ctx context.Context, route string, duration time.Duration, failed bool)
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithObserver reports served requests to observer
func WithObserver(observer Observer) ServerOption {
	return func(s *Server) {
		s.observer = observer
	}
}

// Server answers dashboard requests on <prefix>.<route>
type Server struct {
	nc       *nats.Conn
	prefix   string
	timeout  time.Duration
	observer Observer

	mu     sync.RWMutex
	routes map[string]HandlerFunc
	sub    *nats.Subscription
}

// NewServer creates a server publishing routes under prefix
func NewServer(nc *nats.Conn, prefix string, opts ...ServerOption) *Server {
	s := &Server{
		nc:      nc,
		prefix:  prefix,
		timeout: DefaultHandlerTimeout,
		routes:  make(map[string]HandlerFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Route registers a handler, replacing any previous one for name
func (s *Server) Route(name string, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[name] = handler
}

// Routes returns the registered route names
func (s *Server) Routes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.routes))
	for name := range s.routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start subscribes to every route under the prefix
func (s *Server) Start() error {
	sub, err := s.nc.Subscribe(subject(s.prefix, "*"), s.handleMsg)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject(s.prefix, "*"), err)
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"prefix": s.prefix,
		"routes": s.Routes(),
	}).Info("IPC server listening")
	return nil
}

// Close stops receiving requests. The NATS connection is left open.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub == nil {
		return nil
	}
	err := s.sub.Unsubscribe()
	s.sub = nil
	return err
}

func (s *Server) handleMsg(msg *nats.Msg) {
	var req Request
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.WithError(err).WithField("subject", msg.Subject).Warn("Dropping malformed IPC request")
		return
	}
	if req.Route == "" {
		req.Route = strings.TrimPrefix(msg.Subject, s.prefix+".")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	resp := s.Serve(ctx, req)
	if s.observer != nil {
		s.observer.IPCRequest(ctx, req.Route, time.Since(start), resp.Error != "")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		log.WithError(err).WithField("route", req.Route).Error("Failed to encode IPC response")
		return
	}
	if err := msg.Respond(data); err != nil {
		log.WithError(err).WithField("route", req.Route).Error("Failed to send IPC response")
	}
}

// Serve runs the handler for req.Route and builds its response
func (s *Server) Serve(ctx context.Context, req Request) Response {
	resp := Response{ID: req.ID}

	s.mu.RLock()
	handler, ok := s.routes[req.Route]
	s.mu.RUnlock()
	if !ok {
		resp.Error = fmt.Sprintf("%v: %s", ErrUnknownRoute, req.Route)
		return resp
	}

	result, err := handler(ctx, req.Data)
	if err != nil {
		log.WithError(err).WithField("route", req.Route).Error("IPC handler failed")
		resp.Error = err.Error()
		return resp
	}

	data, err := json.Marshal(result)
	if err != nil {
		resp.Error = fmt.Sprintf("failed to encode result: %v", err)
		return resp
	}
	resp.Data = data
	return resp
}
