package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/aashari/go-report-analyzer/internal/errors"
	"github.com/aashari/go-report-analyzer/internal/health"
	"github.com/aashari/go-report-analyzer/internal/logger"
	"github.com/aashari/go-report-analyzer/internal/types"
	"github.com/aashari/go-report-analyzer/internal/utils"
	"github.com/aashari/go-report-analyzer/internal/validator"
)

// startTime tracks when the application started
var startTime = time.Now()

// maxRequestBodySize bounds the uploaded image payload
const maxRequestBodySize = 20 << 20

// HealthResponse represents the structured health check response
type HealthResponse struct {
	Status    string                 `json:"status" example:"healthy"`
	Timestamp string                 `json:"timestamp" example:"2025-01-01T00:00:00Z"`
	Services  map[string]string      `json:"services"`
	Details   map[string]interface{} `json:"details"`
}

// Analyzer produces the analysis text for a validated request
type Analyzer interface {
	Analyze(ctx context.Context, req types.AnalysisRequest) (string, *errors.APIError)
}

// APIHandlers contains the dependencies needed for API handlers
type APIHandlers struct {
	Analyzer      Analyzer
	HealthChecker *health.HealthChecker
	Version       string
}

// NewAPIHandlers creates a new APIHandlers instance
func NewAPIHandlers(analyzer Analyzer, checker *health.HealthChecker, version string) *APIHandlers {
	if version == "" {
		version = "unknown"
	}
	return &APIHandlers{
		Analyzer:      analyzer,
		HealthChecker: checker,
		Version:       version,
	}
}

// AnalyzeHandler handles the report analysis endpoint
// @Summary      Analyze a medical report image
// @Description  Sends the uploaded image and a fixed instruction to Gemini and returns the model's Markdown analysis
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        request body      types.AnalysisRequest  true  "Base64 image, its MIME type and the answer language"
// @Success      200     {object}  types.AnalysisResult   "Model analysis"
// @Failure      400     {object}  errors.ErrorResponse   "Blocked by safety filters"
// @Failure      405     {object}  errors.ErrorResponse   "Method not allowed"
// @Failure      500     {object}  errors.ErrorResponse   "Configuration error, invalid body or empty provider response"
// @Router       /api/analyze [post]
func (h *APIHandlers) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithComponent(r.Context(), logger.ComponentNames.Handler)
	ctx = logger.WithStage(ctx, logger.LogStages.RequestReceived)

	if r.Method != http.MethodPost {
		errors.HandleError(ctx, w, errors.NewMethodNotAllowedError())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		logger.Error(ctx, "Failed to read request body", err)
		errors.HandleError(ctx, w, errors.NewInternalError(err))
		return
	}

	req, apiErr := validator.DecodeAnalysisRequest(body)
	if apiErr != nil {
		errors.HandleError(ctx, w, apiErr)
		return
	}

	ctx = logger.WithStage(ctx, logger.LogStages.RequestDecoded)
	logger.Info(ctx, "Analysis request received",
		"mime_type", req.MimeType,
		"language", req.Language,
		"image_size", len(req.ImageData),
	)

	analysis, apiErr := h.Analyzer.Analyze(ctx, req)
	if apiErr != nil {
		errors.HandleError(logger.WithStage(ctx, logger.LogStages.RequestFailed), w, apiErr)
		return
	}

	writeJSON(logger.WithStage(ctx, logger.LogStages.RequestCompleted), w, http.StatusOK, types.AnalysisResult{Analysis: analysis})
}

// HealthHandler handles the health check endpoint
// @Summary      Health check endpoint
// @Description  Returns status of the provider credential and the offline shell cache
// @Tags         health
// @Produce      json
// @Success      200  {object}  handlers.HealthResponse  "Healthy or degraded"
// @Failure      503  {object}  handlers.HealthResponse  "Unhealthy"
// @Router       /health [get]
func (h *APIHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithComponent(r.Context(), logger.ComponentNames.Handler)

	overallStatus := health.StatusHealthy
	services := make(map[string]string)
	checks := make(map[string]interface{})

	if h.HealthChecker != nil {
		var results map[string]health.HealthCheckResult
		overallStatus, results = h.HealthChecker.GetOverallHealth(ctx)
		for name, result := range results {
			services[name] = health.ServiceState(result)
			if len(result.Details) > 0 {
				checks[name] = result.Details
			}
		}
	}

	details := map[string]interface{}{
		"version": h.Version,
		"uptime":  int64(time.Since(startTime).Seconds()),
	}
	if len(checks) > 0 {
		details["checks"] = checks
	}

	statusCode := http.StatusOK
	if overallStatus == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(ctx, w, statusCode, HealthResponse{
		Status:    string(overallStatus),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  services,
		Details:   details,
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, payload interface{}) {
	jsonResponse, err := json.Marshal(payload)
	if err != nil {
		logger.Error(ctx, "Failed to marshal response", err)
		errors.HandleError(ctx, w, errors.NewInternalError(err))
		return
	}

	w.Header().Set(utils.HeaderContentType, utils.ContentTypeJSON)
	w.WriteHeader(statusCode)
	if _, err := w.Write(jsonResponse); err != nil {
		logger.Error(ctx, "Failed to write response", err, "response_size", len(jsonResponse))
	}
}
