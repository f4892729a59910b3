// internal/services/chat/intent-router/matchers.go
package intentrouter

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"product-chatbot/internal/models"
)

// FuzzyLimit caps the products returned by a fuzzy lookup.
const FuzzyLimit = 20

// ListAllTriggers are matched as case-insensitive substrings of the message.
var ListAllTriggers = []string{
	"list",
	"names",
	"show products",
	"product list",
	"give the list",
	"give list",
	"give the list product",
	"product names",
}

var (
	// "sku" with an optional separator, or "product" with one, then 1-6 digits.
	skuTokenPattern    = regexp.MustCompile(`sku[\s:#_-]?(\d{1,6})|product[\s:#_-](\d{1,6})`)
	standaloneDigits   = regexp.MustCompile(`\b(\d{1,6})\b`)
	nonAlphanumeric    = regexp.MustCompile(`[^a-z0-9]`)
	nonAlphanumOrSpace = regexp.MustCompile(`[^a-z0-9 ]`)
)

// MatchListAll reports whether message asks for the whole product list.
func MatchListAll(message string) bool {
	lower := strings.ToLower(message)
	for _, trigger := range ListAllTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// DirectLookup resolves an explicit SKU or product number. With a SKU-like
// token, products match when their id equals the digits or their SKU contains
// them. Without one, every standalone digit run is compared to ids only.
// Duplicate keys in the catalog produce several matches.
func DirectLookup(products []models.Product, message string) []models.Product {
	lower := strings.ToLower(message)

	if m := skuTokenPattern.FindStringSubmatch(lower); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		var out []models.Product
		for _, p := range products {
			if strconv.Itoa(p.ID) == digits || strings.Contains(strings.ToLower(p.SKU), digits) {
				out = append(out, p)
			}
		}
		return out
	}

	runs := standaloneDigits.FindAllStringSubmatch(lower, -1)
	if len(runs) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(runs))
	for _, r := range runs {
		wanted[r[1]] = struct{}{}
	}

	var out []models.Product
	for _, p := range products {
		if _, ok := wanted[strconv.Itoa(p.ID)]; ok {
			out = append(out, p)
		}
	}
	return out
}

// FuzzyLookup is a deliberately loose, high-recall match of message words
// against each product's name, brand, description and category. A product
// matches on any stripped token, any raw token of 3+ runes, or the whole
// message reduced to [a-z0-9 ]. At most FuzzyLimit products are returned, in
// catalog order.
func FuzzyLookup(products []models.Product, message string) []models.Product {
	lower := strings.ToLower(message)
	words := strings.Fields(lower)

	var tokens, longTokens []string
	for _, w := range words {
		if t := nonAlphanumeric.ReplaceAllString(w, ""); t != "" {
			tokens = append(tokens, t)
		}
		if utf8.RuneCountInString(w) >= 3 {
			longTokens = append(longTokens, w)
		}
	}

	// a message with nothing left after cleaning matches every product
	whole := nonAlphanumOrSpace.ReplaceAllString(lower, "")

	var out []models.Product
	for _, p := range products {
		if len(out) == FuzzyLimit {
			break
		}
		haystack := strings.ToLower(p.Name + " " + p.Brand + " " + p.Description + " " + p.Category)
		if containsAny(haystack, tokens) || containsAny(haystack, longTokens) ||
			strings.Contains(haystack, whole) {
			out = append(out, p)
		}
	}
	return out
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
