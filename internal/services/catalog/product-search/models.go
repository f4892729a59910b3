// internal/services/catalog/product-search/models.go
package productsearch

import "product-chatbot/internal/models"

type Input struct {
	Term      string `json:"q"`
	NamesOnly bool   `json:"names"`
}

// Output holds exactly one of Products or Names, depending on Input.NamesOnly.
type Output struct {
	Products []models.Product `json:"products,omitempty"`
	Names    []string         `json:"names,omitempty"`
}

// Result returns whichever projection was requested, never nil.
func (o *Output) Result(namesOnly bool) interface{} {
	if namesOnly {
		if o.Names == nil {
			return []string{}
		}
		return o.Names
	}
	if o.Products == nil {
		return []models.Product{}
	}
	return o.Products
}
