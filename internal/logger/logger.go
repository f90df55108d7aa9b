package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aashari/go-report-analyzer/internal/utils"
)

// Logger levels
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Context keys
type contextKey string

const (
	RequestIDKey     contextKey = "request_id"
	CorrelationIDKey contextKey = "correlation_id"
	ComponentKey     contextKey = "component"
	StageKey         contextKey = "stage"
)

// Global logger instance
var Logger *slog.Logger

// Service configuration
var (
	ServiceName = "report-analyzer"
	Environment = "development"
)

// Config for the global logger
type Config struct {
	Level       slog.Level
	Format      string // "json" or "text"
	Output      string // "stdout", "stderr", or file path
	ServiceName string
	Environment string
}

// DefaultConfig is used when nothing else was initialised
var DefaultConfig = Config{
	Level:       LevelInfo,
	Format:      "json",
	Output:      "stdout",
	ServiceName: "report-analyzer",
	Environment: "development",
}

// StructuredLogEntry is the shape of one JSON log line
type StructuredLogEntry struct {
	Timestamp   string                 `json:"timestamp"`
	Level       string                 `json:"level"`
	Message     string                 `json:"message"`
	Service     string                 `json:"service"`
	Environment string                 `json:"environment"`
	Component   string                 `json:"component,omitempty"`
	Stage       string                 `json:"stage,omitempty"`
	Request     map[string]interface{} `json:"request,omitempty"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	Error       map[string]interface{} `json:"error,omitempty"`
}

// Init initializes the global logger
func Init(config Config) error {
	var output io.Writer

	ServiceName = config.ServiceName
	Environment = config.Environment

	switch config.Output {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		f, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", config.Output, err)
		}
		output = f
	}

	Logger = slog.New(newHandler(output, config))
	return nil
}

func newHandler(output io.Writer, config Config) slog.Handler {
	if config.Format == "text" {
		return slog.NewTextHandler(output, &slog.HandlerOptions{Level: config.Level})
	}
	return NewStructuredJSONHandler(output, config.Level, config.ServiceName, config.Environment)
}

// InitFromEnv initializes the logger from LOG_* and service variables
func InitFromEnv() error {
	config := DefaultConfig

	config.Level = ParseLevel(os.Getenv("LOG_LEVEL"), config.Level)
	config.Format = utils.GetEnvString("LOG_FORMAT", config.Format)
	config.Output = utils.GetEnvString("LOG_OUTPUT", config.Output)
	config.ServiceName = utils.GetEnvString("SERVICE_NAME", config.ServiceName)
	config.Environment = utils.GetEnvString("ENVIRONMENT", config.Environment)

	return Init(config)
}

// ParseLevel maps a level name to a slog level
func ParseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return fallback
	}
}

// StructuredJSONHandler writes StructuredLogEntry lines
type StructuredJSONHandler struct {
	mu          *sync.Mutex
	writer      io.Writer
	level       slog.Leveler
	serviceName string
	environment string
	attrs       []slog.Attr
}

// NewStructuredJSONHandler creates a handler writing to w
func NewStructuredJSONHandler(w io.Writer, level slog.Leveler, serviceName, environment string) *StructuredJSONHandler {
	return &StructuredJSONHandler{
		mu:          &sync.Mutex{},
		writer:      w,
		level:       level,
		serviceName: serviceName,
		environment: environment,
	}
}

func (h *StructuredJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *StructuredJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *StructuredJSONHandler) WithGroup(name string) slog.Handler {
	return h
}

func (h *StructuredJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := StructuredLogEntry{
		Timestamp:   r.Time.UTC().Format(time.RFC3339),
		Level:       r.Level.String(),
		Message:     r.Message,
		Service:     h.serviceName,
		Environment: h.environment,
	}

	if ctx != nil {
		if component, ok := ctx.Value(ComponentKey).(string); ok {
			entry.Component = component
		}
		if stage, ok := ctx.Value(StageKey).(string); ok {
			entry.Stage = stage
		}
		if requestID := ctx.Value(RequestIDKey); requestID != nil {
			setSection(&entry.Request, "request_id", requestID)
		}
		if correlationID := ctx.Value(CorrelationIDKey); correlationID != nil {
			setSection(&entry.Request, "correlation_id", correlationID)
		}
	}

	route := func(a slog.Attr) bool {
		key := a.Key
		value := a.Value.Any()

		switch {
		case key == "error":
			if err, ok := value.(error); ok {
				setSection(&entry.Error, "message", err.Error())
				setSection(&entry.Error, "type", fmt.Sprintf("%T", err))
			} else {
				setSection(&entry.Error, "message", fmt.Sprintf("%v", value))
			}
		case strings.HasPrefix(key, "error_"):
			setSection(&entry.Error, strings.TrimPrefix(key, "error_"), value)
		case strings.HasPrefix(key, "request_"):
			setSection(&entry.Request, strings.TrimPrefix(key, "request_"), value)
		default:
			setSection(&entry.Attributes, key, value)
		}
		return true
	}
	for _, a := range h.attrs {
		route(a)
	}
	r.Attrs(route)

	if entry.Attributes != nil {
		entry.Attributes = utils.TruncateBase64InData(entry.Attributes).(map[string]interface{})
	}
	if entry.Request != nil {
		entry.Request = utils.TruncateBase64InData(entry.Request).(map[string]interface{})
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.writer.Write(append(data, '\n'))
	return err
}

func setSection(section *map[string]interface{}, key string, value interface{}) {
	if *section == nil {
		*section = make(map[string]interface{})
	}
	(*section)[key] = value
}

// Context helpers

// WithComponent tags every log line written with ctx
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, ComponentKey, component)
}

// WithStage tags every log line written with ctx
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, StageKey, stage)
}

// WithRequestID stores the request id for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestIDFromContext returns the request id or an empty string
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

func current() *slog.Logger {
	if Logger == nil {
		if err := Init(DefaultConfig); err != nil {
			return slog.New(slog.NewTextHandler(os.Stderr, nil))
		}
	}
	return Logger
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// Debug logs at debug level
func Debug(ctx context.Context, msg string, args ...any) {
	current().DebugContext(orBackground(ctx), msg, args...)
}

// Info logs at info level
func Info(ctx context.Context, msg string, args ...any) {
	current().InfoContext(orBackground(ctx), msg, args...)
}

// Warn logs at warn level
func Warn(ctx context.Context, msg string, args ...any) {
	current().WarnContext(orBackground(ctx), msg, args...)
}

// Error logs at error level; err may be nil
func Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append([]any{"error", err}, args...)
	}
	current().ErrorContext(orBackground(ctx), msg, args...)
}
