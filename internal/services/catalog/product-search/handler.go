// internal/services/catalog/product-search/handler.go
package productsearch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"product-chatbot/internal/models"
)

const (
	TaskType = "product-search"
)

var (
	ErrTermTooLong = errors.New("SEARCH_TERM_TOO_LONG")
)

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Catalog is the read-only product source searched by the handler.
type Catalog interface {
	All() []models.Product
}

type Handler struct {
	config  *Config
	catalog Catalog
	logger  Logger
}

func NewHandler(config *Config, catalog Catalog, log Logger) *Handler {
	return &Handler{
		config:  config,
		catalog: catalog,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if h.config.MaxTermLength > 0 && utf8.RuneCountInString(input.Term) > h.config.MaxTermLength {
		return nil, fmt.Errorf("%w: %d characters allowed", ErrTermTooLong, h.config.MaxTermLength)
	}

	products := Search(h.catalog.All(), input.Term)

	h.logger.Debug("product search completed", map[string]interface{}{
		"term":      input.Term,
		"namesOnly": input.NamesOnly,
		"matches":   len(products),
	})

	if input.NamesOnly {
		return &Output{Names: NamesOnly(products)}, nil
	}
	return &Output{Products: products}, nil
}

// Search keeps products whose name, description or category contains term.
// Both sides are lowercased with Unicode rules before comparing; letters are
// not expanded, so "ß" only matches "ß". An empty term keeps everything.
// Catalog order is preserved.
func Search(products []models.Product, term string) []models.Product {
	if term == "" {
		out := make([]models.Product, len(products))
		copy(out, products)
		return out
	}

	// a Caser carries state, so each call gets its own
	caser := cases.Lower(language.Und)
	needle := caser.String(term)

	out := make([]models.Product, 0)
	for _, p := range products {
		if strings.Contains(caser.String(p.Name), needle) ||
			strings.Contains(caser.String(p.Description), needle) ||
			strings.Contains(caser.String(p.Category), needle) {
			out = append(out, p)
		}
	}
	return out
}

// NamesOnly projects products to their names in the same order.
func NamesOnly(products []models.Product) []string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return names
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
