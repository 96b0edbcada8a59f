package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/review/internal/logger"
	oaitransport "github.com/kailas-cloud/review/internal/transport/openai"
	healthuc "github.com/kailas-cloud/review/internal/usecase/health"
	"github.com/kailas-cloud/review/internal/usecase/tools"
)

// Request limits.
const (
	MaxBodyBytes     = 1 << 20
	MaxToolCalls     = 32
	emptyArgs        = "{}"
	toolNameURLParam = "name"
)

// Registry is the tool catalog consumed by the HTTP layer (ISP).
type Registry interface {
	Tools() []tools.Tool
	Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error)
}

// ToolCaller answers assistant tool calls.
type ToolCaller interface {
	HandleAll(ctx context.Context, calls []openai.ToolCall) []openai.ChatCompletionMessage
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// ToolList is the GET /api/v1/tools response.
type ToolList struct {
	Tools []openai.Tool `json:"tools"`
}

// ToolCallsRequest is the POST /api/v1/tool-calls body.
type ToolCallsRequest struct {
	ToolCalls []openai.ToolCall `json:"tool_calls"`
}

// ToolCallsResponse carries one tool message per call, in call order.
type ToolCallsResponse struct {
	Messages []openai.ChatCompletionMessage `json:"messages"`
}

// Server serves the tool API.
type Server struct {
	registry      Registry
	caller        ToolCaller
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(registry Registry, caller ToolCaller, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{
		registry:      registry,
		caller:        caller,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers,
	}
}

// Register mounts the routes on r.
func (s *Server) Register(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tools", s.ListTools)
		r.Post("/tools/{"+toolNameURLParam+"}/invoke", s.InvokeTool)
		r.Post("/tool-calls", s.ToolCalls)
	})
}

// ListTools handles GET /api/v1/tools.
func (s *Server) ListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ToolList{Tools: oaitransport.ToolDefinitions(s.registry)})
}

// InvokeTool handles POST /api/v1/tools/{name}/invoke. The body is the tool's JSON arguments.
func (s *Server) InvokeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, toolNameURLParam)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, bodyErrorMessage(err))
		return
	}
	if len(body) == 0 {
		body = []byte(emptyArgs)
	}

	out, err := s.registry.Invoke(r.Context(), name, body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeRawJSON(w, http.StatusOK, out)
}

// ToolCalls handles POST /api/v1/tool-calls.
func (s *Server) ToolCalls(w http.ResponseWriter, r *http.Request) {
	var req ToolCallsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, bodyErrorMessage(err))
		return
	}
	if len(req.ToolCalls) == 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "tool_calls is required")
		return
	}
	if len(req.ToolCalls) > MaxToolCalls {
		writeError(w, http.StatusBadRequest, CodeBadRequest,
			fmt.Sprintf("too many tool_calls (max %d)", MaxToolCalls))
		return
	}

	writeJSON(w, http.StatusOK, ToolCallsResponse{Messages: s.caller.HandleAll(r.Context(), req.ToolCalls)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			logger.FromContext(r.Context()).Debug("Request rejected", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func bodyErrorMessage(err error) string {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Sprintf("request body too large (max %d bytes)", tooLarge.Limit)
	}
	return "invalid request body"
}
