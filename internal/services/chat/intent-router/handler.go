// internal/services/chat/intent-router/handler.go
package intentrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"product-chatbot/internal/models"
	productsearch "product-chatbot/internal/services/catalog/product-search"
)

const (
	TaskType = "intent-router"

	ListAllReply = "Here are the product names:"
)

var (
	ErrMessageRequired = errors.New("MESSAGE_REQUIRED")
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Catalog is the read-only product source.
type Catalog interface {
	All() []models.Product
}

// Delegate answers messages no local branch could handle.
type Delegate interface {
	Ask(ctx context.Context, message string) (string, error)
}

// branch resolves one intent. matched=false hands the message to the next branch.
type branch struct {
	intent  Intent
	resolve func(ctx context.Context, message string, products []models.Product) (reply *models.ChatReply, matched bool, err error)
}

var tracer = otel.Tracer("product-chatbot/" + TaskType)

type Handler struct {
	config   *Config
	catalog  Catalog
	delegate Delegate
	branches []branch
	logger   Logger
}

func NewHandler(config *Config, catalog Catalog, delegate Delegate, log Logger) *Handler {
	h := &Handler{
		config:   config,
		catalog:  catalog,
		delegate: delegate,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
	h.branches = []branch{
		{intent: IntentListAll, resolve: resolveListAll},
		{intent: IntentDirectLookup, resolve: resolveDirectLookup},
		{intent: IntentFuzzyLookup, resolve: resolveFuzzyLookup},
		{intent: IntentDelegate, resolve: h.resolveDelegate},
	}
	return h
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, ErrMessageRequired
	}

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	ctx, span := tracer.Start(ctx, "intent-router.route")
	defer span.End()

	products := h.catalog.All()

	for _, b := range h.branches {
		reply, matched, err := b.resolve(ctx, input.Message, products)
		if err != nil {
			span.SetAttributes(attribute.String("chat.intent", string(b.intent)))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			h.logger.Error("message routing failed", map[string]interface{}{
				"intent": string(b.intent),
				"error":  err.Error(),
			})
			return nil, err
		}
		if !matched {
			continue
		}

		span.SetAttributes(attribute.String("chat.intent", string(b.intent)))
		h.logger.Info("message routed", map[string]interface{}{
			"intent":       string(b.intent),
			"catalogSize":  len(products),
			"messageChars": len(input.Message),
		})
		return &Output{Intent: b.intent, Reply: *reply}, nil
	}

	// unreachable while the delegate branch is last
	return nil, fmt.Errorf("no branch resolved the message")
}

func resolveListAll(_ context.Context, message string, products []models.Product) (*models.ChatReply, bool, error) {
	if !MatchListAll(message) {
		return nil, false, nil
	}
	return &models.ChatReply{
		Reply:    ListAllReply,
		Products: productsearch.NamesOnly(products),
	}, true, nil
}

func resolveDirectLookup(_ context.Context, message string, products []models.Product) (*models.ChatReply, bool, error) {
	matches := DirectLookup(products, message)
	if len(matches) == 0 {
		return nil, false, nil
	}
	return &models.ChatReply{
		Reply:    fmt.Sprintf("Found %d product(s) matching your request.", len(matches)),
		Products: models.SummarizeAll(matches),
	}, true, nil
}

func resolveFuzzyLookup(_ context.Context, message string, products []models.Product) (*models.ChatReply, bool, error) {
	matches := FuzzyLookup(products, message)
	if len(matches) == 0 {
		return nil, false, nil
	}
	return &models.ChatReply{
		Reply:    fmt.Sprintf("I found %d product(s) related to your message.", len(matches)),
		Products: models.SummarizeAll(matches),
	}, true, nil
}

func (h *Handler) resolveDelegate(ctx context.Context, message string, _ []models.Product) (*models.ChatReply, bool, error) {
	answer, err := h.delegate.Ask(ctx, message)
	if err != nil {
		return nil, false, err
	}
	return &models.ChatReply{Reply: answer}, true, nil
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
