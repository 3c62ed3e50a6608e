// Package server exposes the gateway over HTTP for local development,
// standing in for API Gateway in front of the Lambda function.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/diogo/concierge/internal/config"
	"github.com/diogo/concierge/internal/gateway"
	"github.com/diogo/concierge/internal/logger"
)

// ChatbotPath is the route the client POSTs to
const ChatbotPath = "/chatbot"

const shutdownTimeout = 10 * time.Second

// NewRouter builds the gin engine. In lambda integration every answer is
// a 200 whose JSON is the whole Lambda result, so the reply text sits in a
// JSON-encoded "body" string. In proxy integration the status code and body
// are passed through.
func NewRouter(h *gateway.Handler, integration string, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Logger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	chatbot := func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": gateway.MsgInvalidJSON})
			return
		}

		result := h.Handle(c.Request.Context(), string(body), c.GetHeader(gateway.SessionHeader))

		if integration == config.IntegrationProxy {
			c.Data(result.StatusCode, "application/json", []byte(result.Body()))
			return
		}
		c.JSON(http.StatusOK, result.Proxy())
	}
	router.POST(ChatbotPath, chatbot)
	router.POST("/:stage"+ChatbotPath, chatbot)

	return router
}

// Server runs the gateway router on an address
type Server struct {
	srv *http.Server
	log zerolog.Logger
}

// New creates a Server for cfg backed by h
func New(cfg config.GatewayConfig, h *gateway.Handler) *Server {
	log := logger.For("server")
	return &Server{
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(h, cfg.Integration, log),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		log: log,
	}
}

// Handler returns the underlying HTTP handler
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("gateway listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
