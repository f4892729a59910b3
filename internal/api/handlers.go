// internal/api/handlers.go
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"

	apperrors "product-chatbot/internal/common/errors"
	"product-chatbot/internal/common/metrics"
	"product-chatbot/internal/common/observability"
	"product-chatbot/internal/models"
	productsearch "product-chatbot/internal/services/catalog/product-search"
	geminidelegate "product-chatbot/internal/services/chat/gemini-delegate"
	intentrouter "product-chatbot/internal/services/chat/intent-router"
)

// getProducts serves GET /products?q=<term>&names=true. The filter runs first,
// then the optional projection to names.
func (s *Server) getProducts(c echo.Context) error {
	namesOnly, _ := strconv.ParseBool(c.QueryParam("names"))
	input := &productsearch.Input{
		Term:      c.QueryParam("q"),
		NamesOnly: namesOnly,
	}

	out, err := s.search.Execute(c.Request().Context(), input)
	if err != nil {
		return toStandardError(err)
	}

	metrics.ProductSearchRequests.WithLabelValues(strconv.FormatBool(namesOnly)).Inc()
	return c.JSON(http.StatusOK, out.Result(namesOnly))
}

func (s *Server) postChat(c echo.Context) error {
	start := time.Now()
	ctx, span := s.obs.StartSpan(c.Request().Context(), "POST /chat")

	var req models.ChatRequest
	if err := c.Bind(&req); err != nil {
		stdErr := apperrors.NewInvalidRequestBodyError(err)
		s.recordChatFailure(c, stdErr)
		observability.EndSpan(span, stdErr)
		return stdErr
	}

	out, err := s.router.Execute(ctx, &intentrouter.Input{Message: req.Message})
	if err != nil {
		stdErr := toStandardError(err)
		s.recordChatFailure(c, stdErr)
		observability.EndSpan(span, err)
		return stdErr
	}

	intent := string(out.Intent)
	elapsed := time.Since(start)
	metrics.ChatRequests.WithLabelValues(intent).Inc()
	metrics.ChatRequestDuration.WithLabelValues(intent).Observe(elapsed.Seconds())
	s.obs.RecordChatProcessed(ctx, intent, "ok")
	s.obs.RecordChatDuration(ctx, elapsed, intent)
	span.SetAttributes(attribute.String("chat.intent", intent))
	observability.EndSpan(span, nil)

	return c.JSON(http.StatusOK, out.Reply)
}

func (s *Server) recordChatFailure(c echo.Context, stdErr *apperrors.StandardError) {
	metrics.ChatRequestsFailed.WithLabelValues(string(stdErr.Code)).Inc()
	s.obs.RecordChatProcessed(c.Request().Context(), "none", string(stdErr.Code))
}

// toStandardError maps service errors onto the API error taxonomy.
func toStandardError(err error) *apperrors.StandardError {
	var upstream *geminidelegate.UpstreamError
	switch {
	case errors.Is(err, intentrouter.ErrMessageRequired):
		return apperrors.NewMessageRequiredError()
	case errors.Is(err, geminidelegate.ErrAPIKeyMissing):
		return apperrors.NewDelegateKeyMissingError()
	case errors.As(err, &upstream):
		return apperrors.NewDelegateUpstreamError(upstream.Status, upstream.Body)
	case errors.Is(err, geminidelegate.ErrRequestFailed):
		return apperrors.NewDelegateRequestFailedError(err)
	case errors.Is(err, productsearch.ErrTermTooLong):
		return apperrors.NewInvalidQueryError("q", err.Error())
	default:
		return apperrors.NewInternalError(err)
	}
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ready always answers 200: an empty catalog or a missing key degrade
// individual requests but do not take the service out of rotation.
func (s *Server) ready(c echo.Context) error {
	delegateConfigured := s.delegate != nil && s.delegate.Configured()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":             "ready",
		"products":           s.catalog.Len(),
		"delegateConfigured": delegateConfigured,
		"time":               time.Now().Format(time.RFC3339),
	})
}
