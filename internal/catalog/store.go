// internal/catalog/store.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	apperrors "product-chatbot/internal/common/errors"
	"product-chatbot/internal/common/metrics"
	"product-chatbot/internal/common/validation"
	"product-chatbot/internal/models"
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Catalog is the immutable, ordered product set loaded once at startup. It is
// safe for concurrent readers because nothing mutates it after construction.
type Catalog struct {
	products []models.Product
}

// New copies products so later changes to the caller's slice are not visible.
func New(products []models.Product) *Catalog {
	cp := make([]models.Product, len(products))
	copy(cp, products)
	return &Catalog{products: cp}
}

func Empty() *Catalog {
	return &Catalog{}
}

// All returns the products in insertion order. The slice is a copy.
func (c *Catalog) All() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// Parse decodes a catalog document. JSON null is an empty catalog.
func Parse(data []byte) ([]models.Product, error) {
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return products, nil
}

// Load reads the catalog file at path. A missing or unparseable file is logged
// and yields an empty catalog; it never fails startup.
func Load(path string, log Logger) *Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		logLoadFailure(log, path, err)
		return publish(Empty())
	}

	products, err := Parse(data)
	if err != nil {
		logLoadFailure(log, path, err)
		return publish(Empty())
	}

	reportIssues(log, path, data)

	log.Info("catalog loaded", map[string]interface{}{
		"source":   path,
		"products": len(products),
	})
	return publish(New(products))
}

// reportIssues surfaces schema problems and duplicate keys as warnings only.
func reportIssues(log Logger, source string, data []byte) {
	report, err := validation.ValidateCatalog(data)
	if err != nil {
		return
	}
	for _, issue := range report.Errors {
		log.Warn("catalog entry does not match schema", map[string]interface{}{
			"source": source,
			"field":  issue.Field,
			"issue":  issue.Message,
		})
	}
	for _, issue := range report.Warnings {
		log.Warn("catalog contains duplicate key", map[string]interface{}{
			"source": source,
			"field":  issue.Field,
			"issue":  issue.Message,
		})
	}
}

func logLoadFailure(log Logger, source string, err error) {
	stdErr := apperrors.NewCatalogLoadFailedError(source, err)
	log.Error("catalog unavailable, serving empty catalog", map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	})
}

func publish(c *Catalog) *Catalog {
	metrics.CatalogProductsLoaded.Set(float64(c.Len()))
	return c
}
