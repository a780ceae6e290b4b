package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Requester sends a request to the bot process and decodes the reply into out
type Requester interface {
	Request(ctx context.Context, route string, data any, out any) error
}

// APIResponse is the JSON envelope of every /api endpoint
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Server is the dashboard web process. It holds no state of its own and
// proxies every API call to the bot over IPC.
type Server struct {
	ipc     Requester
	timeout time.Duration
	router  *gin.Engine
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// NewServer creates a dashboard backed by ipc
func NewServer(ipc Requester) *Server {
	s := &Server{
		ipc:     ipc,
		timeout: 5 * time.Second,
		router:  gin.New(),
	}
	s.router.Use(gin.Recovery(), requestLogger())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello, World!")
	})
	s.router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := s.router.Group("/api")
	api.GET("/stats", s.proxy("stats"))
	api.GET("/timers", s.proxy("timers"))
}

// Handler returns the dashboard routes
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves the dashboard on addr in the background.
// Returns a cleanup function that shuts the server down.
func (s *Server) Start(addr string) func() {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Dashboard listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Dashboard server error: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("Dashboard shutdown did not complete cleanly")
		}
	}
}

func (s *Server) proxy(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
		defer cancel()

		var data json.RawMessage
		if err := s.ipc.Request(ctx, route, nil, &data); err != nil {
			log.WithError(err).WithField("route", route).Warn("Dashboard IPC request failed")
			responseError(c, http.StatusBadGateway, err)
			return
		}
		responseSuccess(c, data)
	}
}

func responseSuccess(c *gin.Context, data json.RawMessage) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func responseError(c *gin.Context, status int, err error) {
	c.JSON(status, APIResponse{Success: false, Error: err.Error()})
}

// requestLogger logs each request through logrus
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("Dashboard request")
	}
}
