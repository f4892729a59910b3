// internal/services/chat/gemini-delegate/handler.go
package geminidelegate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apphttp "product-chatbot/internal/common/http"
	"product-chatbot/internal/common/metrics"
)

const (
	TaskType = "gemini-delegate"

	// NoResponse replaces a successful reply that carries no text.
	NoResponse = "No response."
)

var (
	ErrAPIKeyMissing  = errors.New("DELEGATE_KEY_MISSING")
	ErrUpstreamFailed = errors.New("DELEGATE_UPSTREAM_FAILED")
	ErrRequestFailed  = errors.New("DELEGATE_REQUEST_FAILED")
)

// UpstreamError is a non-2xx answer from the API. Body is passed through
// unmodified for diagnostics.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: status %d", ErrUpstreamFailed, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstreamFailed
}

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

var tracer = otel.Tracer("product-chatbot/" + TaskType)

type Handler struct {
	config *Config
	client *apphttp.Client
	cache  *replyCache
	logger Logger
}

// NewHandler builds the delegate. redisClient may be nil, which disables the
// reply cache.
func NewHandler(config *Config, redisClient *redis.Client, log Logger) *Handler {
	h := &Handler{
		config: config,
		client: apphttp.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
			"model":    config.Model,
		}),
	}
	if redisClient != nil && config.CacheTTL > 0 {
		h.cache = &replyCache{rdb: redisClient, ttl: config.CacheTTL}
	}
	return h
}

// Configured reports whether an API key is present.
func (h *Handler) Configured() bool {
	return h.config.APIKey != ""
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !h.Configured() {
		metrics.DelegateRequests.WithLabelValues(metrics.OutcomeKeyMissing).Inc()
		return nil, ErrAPIKeyMissing
	}

	ctx, span := tracer.Start(ctx, "gemini.generateContent")
	span.SetAttributes(attribute.String("gemini.model", h.config.Model))
	defer span.End()

	var key string
	if h.cache != nil {
		key = cacheKey(h.config.Model, input.Message)
		reply, hit, err := h.cache.get(ctx, key)
		if err != nil {
			h.logger.Warn("reply cache read failed", map[string]interface{}{"error": err.Error()})
		}
		if hit {
			metrics.DelegateRequests.WithLabelValues(metrics.OutcomeCacheHit).Inc()
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &Output{Reply: reply, Cached: true}, nil
		}
	}

	reply, err := h.generate(ctx, input.Message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	metrics.DelegateRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()

	if h.cache != nil {
		if err := h.cache.set(ctx, key, reply); err != nil {
			h.logger.Warn("reply cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return &Output{Reply: reply}, nil
}

func (h *Handler) generate(ctx context.Context, message string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(h.config.BaseURL, "/"), url.PathEscape(h.config.Model))

	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: message}}}},
	}
	headers := map[string]string{"x-goog-api-key": h.config.APIKey}

	resp, err := h.client.PostJSON(ctx, endpoint, headers, payload)
	if err != nil {
		metrics.DelegateRequests.WithLabelValues(metrics.OutcomeRequestError).Inc()
		h.logger.Error("gemini request failed", map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	if !resp.OK() {
		metrics.DelegateRequests.WithLabelValues(metrics.OutcomeUpstreamError).Inc()
		h.logger.Error("gemini returned an error", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(resp.Body),
		})
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(resp.Body)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		metrics.DelegateRequests.WithLabelValues(metrics.OutcomeRequestError).Inc()
		return "", fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
	}

	text := parsed.firstText()
	if text == "" {
		text = NoResponse
	}

	h.logger.Info("gemini reply received", map[string]interface{}{
		"replyLength": len(text),
	})
	return text, nil
}

// Ask answers a free-text message.
func (h *Handler) Ask(ctx context.Context, message string) (string, error) {
	out, err := h.execute(ctx, &Input{Message: message})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
