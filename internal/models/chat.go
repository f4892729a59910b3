// internal/models/chat.go
package models

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatReply is the body of a successful /chat response. Products holds either
// []string (list-all) or []ProductSummary (lookups); it is omitted for
// delegated answers.
type ChatReply struct {
	Reply    string      `json:"reply"`
	Products interface{} `json:"products,omitempty"`
}

// ProductSummary is the projection of a Product returned in lookup replies.
type ProductSummary struct {
	ID          int      `json:"id"`
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Description string   `json:"description"`
}

func Summarize(p Product) ProductSummary {
	return ProductSummary{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		Description: p.Description,
	}
}

func SummarizeAll(products []Product) []ProductSummary {
	out := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		out = append(out, Summarize(p))
	}
	return out
}
