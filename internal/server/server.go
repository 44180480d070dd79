// Package server exposes the agent router over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lucienvoid/ai-hr-agent/internal/agent"
)

const (
	defaultAddr         = ":8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 180 * time.Second
	maxBodyBytes        = 1 << 20
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

type dispatcher interface {
	Dispatch(ctx context.Context, intent string, payload map[string]string) agent.Outcome
}

// Config controls the listener.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Server struct {
	engine *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// New builds the engine. metrics may be nil to leave /metrics unmounted.
func New(cfg Config, router dispatcher, metrics http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		engine.GET("/metrics", gin.WrapH(metrics))
	}
	engine.POST("/v1/agent/:intent", dispatchHandler(router))

	return &Server{
		engine: engine,
		logger: logger,
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe blocks until the server stops. A graceful shutdown is not an
// error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func dispatchHandler(router dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

		payload, err := bindPayload(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, agent.ErrorOutcome{Error: err.Error()})
			return
		}

		out := router.Dispatch(c.Request.Context(), c.Param("intent"), payload)
		c.JSON(statusFor(out), out)
	}
}

// bindPayload accepts a flat JSON object. Scalars are converted to strings;
// an empty body is an empty payload.
func bindPayload(c *gin.Context) (map[string]string, error) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("invalid JSON payload: %v", err)
	}

	payload := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			payload[key] = ""
		case string:
			payload[key] = v
		case bool:
			payload[key] = strconv.FormatBool(v)
		case float64:
			payload[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("invalid JSON payload: field %q must be a string", key)
		}
	}
	return payload, nil
}

func statusFor(out agent.Outcome) int {
	switch agent.Classify(out) {
	case agent.OutcomeOK:
		return http.StatusOK
	case agent.OutcomeUnknownIntent:
		return http.StatusNotFound
	case agent.OutcomeRejected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
