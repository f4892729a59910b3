// Package validation checks catalog documents against the product schema and
// reports duplicate keys.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// CatalogSchema describes the catalog file written by the ingestion step.
const CatalogSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "sku", "name"],
    "properties": {
      "id":          {"type": "integer"},
      "sku":         {"type": "string", "minLength": 1},
      "name":        {"type": "string", "minLength": 1},
      "brand":       {"type": ["string", "null"]},
      "category":    {"type": ["string", "null"]},
      "price":       {"type": ["number", "null"]},
      "stock":       {"type": ["integer", "null"]},
      "description": {"type": ["string", "null"]}
    }
  }
}`

var catalogSchemaLoader = gojsonschema.NewStringLoader(CatalogSchema)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Issue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Field, i.Message, i.Code)
}

// Report collects schema errors and duplicate-key warnings for one document.
type Report struct {
	Products int     `json:"products"`
	Errors   []Issue `json:"errors,omitempty"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Valid is true when there are no errors; warnings do not invalidate a catalog.
func (r *Report) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateCatalog validates a raw catalog document. A document that is not
// JSON at all yields an error rather than a report.
func ValidateCatalog(data []byte) (*Report, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("catalog is not valid JSON")
	}

	result, err := gojsonschema.Validate(catalogSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	report := &Report{}
	for _, re := range result.Errors() {
		report.Errors = append(report.Errors, Issue{
			Field:    re.Field(),
			Message:  re.Description(),
			Code:     strings.ToUpper(re.Type()),
			Severity: SeverityError,
		})
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		// not an array of objects; the schema errors already say so
		return report, nil
	}
	report.Products = len(rows)
	report.Warnings = append(report.Warnings, duplicates(rows, "id")...)
	report.Warnings = append(report.Warnings, duplicates(rows, "sku")...)

	return report, nil
}

func duplicates(rows []map[string]interface{}, key string) []Issue {
	var issues []Issue
	first := make(map[string]int)
	for i, row := range rows {
		v, ok := row[key]
		if !ok || v == nil {
			continue
		}
		k := fmt.Sprintf("%v", v)
		if key == "sku" {
			k = strings.ToLower(k)
		}
		if j, seen := first[k]; seen {
			issues = append(issues, Issue{
				Field:    fmt.Sprintf("%d.%s", i, key),
				Message:  fmt.Sprintf("duplicate %s %q (first seen at index %d)", key, k, j),
				Code:     "DUPLICATE_" + strings.ToUpper(key),
				Severity: SeverityWarning,
			})
			continue
		}
		first[k] = i
	}
	return issues
}
