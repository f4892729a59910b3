// internal/services/chat/intent-router/handler_test.go
package intentrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-chatbot/internal/catalog"
	"product-chatbot/internal/models"
)

// ==========================
// Test Doubles
// ==========================

type TestLogger struct {
	t *testing.T
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger { return l }

type BenchmarkLogger struct{}

func (b *BenchmarkLogger) Info(msg string, fields map[string]interface{})  {}
func (b *BenchmarkLogger) Error(msg string, fields map[string]interface{}) {}
func (b *BenchmarkLogger) With(fields map[string]interface{}) Logger       { return b }

// fakeDelegate records the messages it was asked.
type fakeDelegate struct {
	answer string
	err    error
	asked  []string
}

func (f *fakeDelegate) Ask(_ context.Context, message string) (string, error) {
	f.asked = append(f.asked, message)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

// ==========================
// Test Helper Functions
// ==========================

func blueJacket() models.Product {
	return models.Product{
		ID: 1, SKU: "TXJ001", Name: "Blue Jacket", Brand: "Acme", Category: "Outerwear",
		Price: models.Float64(49.99), Stock: models.Int(10), Description: "Warm blue jacket",
	}
}

func createTestProducts() []models.Product {
	return []models.Product{
		blueJacket(),
		{ID: 2, SKU: "MUG002", Name: "Coffee Mug", Brand: "Kiln", Category: "Kitchen", Description: "Ceramic mug"},
		{ID: 42, SKU: "HAT042", Name: "Sun Hat", Brand: "Acme", Category: "Accessories", Description: "Wide brim"},
		{ID: 7, SKU: "TXJ001", Name: "Red Jacket", Brand: "Acme", Category: "Outerwear", Description: "Duplicate sku row"},
	}
}

func newTestHandler(t *testing.T, products []models.Product, delegate Delegate) *Handler {
	return NewHandler(LoadConfig(), catalog.New(products), delegate, &TestLogger{t: t})
}

func summaryIDs(t *testing.T, reply models.ChatReply) []int {
	summaries, ok := reply.Products.([]models.ProductSummary)
	require.True(t, ok, "products should be summaries, got %T", reply.Products)
	out := make([]int, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s.ID)
	}
	return out
}

// ==========================
// Branch Ordering Tests
// ==========================

func TestHandler_Execute_EmptyMessage(t *testing.T) {
	delegate := &fakeDelegate{answer: "x"}
	h := newTestHandler(t, createTestProducts(), delegate)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := h.Execute(context.Background(), &Input{Message: msg})
		assert.True(t, errors.Is(err, ErrMessageRequired))
	}
	assert.Empty(t, delegate.asked)
}

func TestHandler_Execute_ListAll(t *testing.T) {
	h := newTestHandler(t, createTestProducts(), &fakeDelegate{})

	out, err := h.Execute(context.Background(), &Input{Message: "Can you SHOW PRODUCTS please"})
	require.NoError(t, err)

	assert.Equal(t, IntentListAll, out.Intent)
	assert.Equal(t, ListAllReply, out.Reply.Reply)
	assert.Equal(t, []string{"Blue Jacket", "Coffee Mug", "Sun Hat", "Red Jacket"}, out.Reply.Products)
}

func TestHandler_Execute_ListAllBeatsSKU(t *testing.T) {
	h := newTestHandler(t, createTestProducts(), &fakeDelegate{})

	out, err := h.Execute(context.Background(), &Input{Message: "list sku-001"})
	require.NoError(t, err)
	assert.Equal(t, IntentListAll, out.Intent)
}

func TestHandler_Execute_ListAllEmptyCatalog(t *testing.T) {
	h := newTestHandler(t, nil, &fakeDelegate{})

	out, err := h.Execute(context.Background(), &Input{Message: "product names"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, out.Reply.Products)
}

func TestHandler_Execute_DirectLookup(t *testing.T) {
	h := newTestHandler(t, createTestProducts(), &fakeDelegate{})

	out, err := h.Execute(context.Background(), &Input{Message: "sku-001"})
	require.NoError(t, err)

	assert.Equal(t, IntentDirectLookup, out.Intent)
	// duplicate SKU rows are both returned
	assert.Equal(t, []int{1, 7}, summaryIDs(t, out.Reply))
	assert.Equal(t, "Found 2 product(s) matching your request.", out.Reply.Reply)
}

func TestHandler_Execute_FuzzyLookup(t *testing.T) {
	delegate := &fakeDelegate{answer: "unused"}
	h := newTestHandler(t, []models.Product{blueJacket()}, delegate)

	out, err := h.Execute(context.Background(), &Input{Message: "I want a blue jacket"})
	require.NoError(t, err)

	assert.Equal(t, IntentFuzzyLookup, out.Intent)
	summaries := out.Reply.Products.([]models.ProductSummary)
	require.Len(t, summaries, 1)
	assert.Equal(t, models.Summarize(blueJacket()), summaries[0])
	assert.Equal(t, "I found 1 product(s) related to your message.", out.Reply.Reply)
	assert.Empty(t, delegate.asked)
}

func TestHandler_Execute_Delegate(t *testing.T) {
	delegate := &fakeDelegate{answer: "I can help with that."}
	h := newTestHandler(t, []models.Product{blueJacket()}, delegate)

	out, err := h.Execute(context.Background(), &Input{Message: "asdkjalksd"})
	require.NoError(t, err)

	assert.Equal(t, IntentDelegate, out.Intent)
	assert.Equal(t, "I can help with that.", out.Reply.Reply)
	assert.Nil(t, out.Reply.Products)
	assert.Equal(t, []string{"asdkjalksd"}, delegate.asked)
}

func TestHandler_Execute_DelegateReceivesOriginalText(t *testing.T) {
	delegate := &fakeDelegate{answer: "ok"}
	h := newTestHandler(t, nil, delegate)

	_, err := h.Execute(context.Background(), &Input{Message: "  Why Is The Sky Blue?  "})
	require.NoError(t, err)
	assert.Equal(t, []string{"  Why Is The Sky Blue?  "}, delegate.asked)
}

func TestHandler_Execute_DelegateError(t *testing.T) {
	boom := errors.New("DELEGATE_KEY_MISSING")
	h := newTestHandler(t, []models.Product{blueJacket()}, &fakeDelegate{err: boom})

	out, err := h.Execute(context.Background(), &Input{Message: "asdkjalksd"})
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, boom))
}

func TestHandler_Execute_DigitsOnlyFallThrough(t *testing.T) {
	delegate := &fakeDelegate{answer: "delegated"}
	h := newTestHandler(t, createTestProducts(), delegate)

	// no id 999, and "999" appears in no haystack
	out, err := h.Execute(context.Background(), &Input{Message: "999"})
	require.NoError(t, err)
	assert.Equal(t, IntentDelegate, out.Intent)
}

// ==========================
// Matcher Tests
// ==========================

func TestMatchListAll(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"list", true},
		{"Give The List", true},
		{"what are the product names?", true},
		{"checklist for camping", true},
		{"show me products", false},
		{"hello", false},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchListAll(tt.message))
		})
	}
}

func TestDirectLookup(t *testing.T) {
	products := createTestProducts()

	tests := []struct {
		name    string
		message string
		want    []int
	}{
		{"sku with dash", "sku-001", []int{1, 7}},
		{"sku without separator", "SKU042", []int{42}},
		{"sku with colon", "sku:002", []int{2}},
		{"product with space", "product 42", []int{42}},
		{"digits match id or sku substring", "product 2", []int{2, 42}},
		{"product needs separator", "product42", []int{}},
		{"token without products", "sku 555", []int{}},
		{"standalone id", "tell me about 42", []int{42}},
		{"standalone compares ids only", "001", []int{}},
		{"several standalone runs", "7 or 2", []int{2, 7}},
		{"seven digits is not a run", "1234567", []int{}},
		{"digits glued to letters", "item42", []int{}},
		{"no digits", "blue jacket", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DirectLookup(products, tt.message)
			ids := make([]int, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFuzzyLookup(t *testing.T) {
	products := createTestProducts()

	tests := []struct {
		name    string
		message string
		want    []int
	}{
		{"single word", "jacket", []int{1, 7}},
		{"punctuation stripped", "mug?!", []int{2}},
		{"brand searched", "kiln", []int{2}},
		{"category searched", "accessories", []int{42}},
		{"whole phrase", "wide brim", []int{42}},
		{"unrelated", "zzzz qqqq", []int{}},
		{"only punctuation matches everything", "???", []int{1, 2, 42, 7}},
		{"non-latin text cleans to nothing", "привет", []int{1, 2, 42, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FuzzyLookup(products, tt.message)
			ids := make([]int, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFuzzyLookup_MatchRules(t *testing.T) {
	products := []models.Product{
		{ID: 1, SKU: "TEE001", Name: "Logo T-Shirt", Brand: "Acme", Category: "Tops", Description: "Cotton"},
		{ID: 2, SKU: "MUG002", Name: "Coffee Mug", Brand: "Kiln", Category: "Kitchen", Description: "Ceramic"},
	}

	tests := []struct {
		name    string
		message string
		want    []int
	}{
		// "tshirt" is in no haystack, only the raw token keeps the hyphen
		{"raw token keeps punctuation", "t-shirt", []int{1}},
		// "¿?" leaves no stripped token and is too short as a raw token
		{"empty cleaned message", "¿?", []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]int, 0)
			for _, p := range FuzzyLookup(products, tt.message) {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestHandler_Execute_PunctuationOnlyIsFuzzy(t *testing.T) {
	var products []models.Product
	for i := 1; i <= 35; i++ {
		products = append(products, models.Product{ID: i, SKU: fmt.Sprintf("S%d", i), Name: fmt.Sprintf("Widget %d", i)})
	}
	delegate := &fakeDelegate{answer: "unused"}
	h := newTestHandler(t, products, delegate)

	out, err := h.Execute(context.Background(), &Input{Message: "???"})
	require.NoError(t, err)
	assert.Equal(t, IntentFuzzyLookup, out.Intent)
	assert.Len(t, summaryIDs(t, out.Reply), FuzzyLimit)
	assert.Empty(t, delegate.asked)
}

func TestFuzzyLookup_CapsAtLimit(t *testing.T) {
	var products []models.Product
	for i := 1; i <= 35; i++ {
		products = append(products, models.Product{ID: i, SKU: fmt.Sprintf("S%d", i), Name: fmt.Sprintf("Widget %d", i)})
	}

	got := FuzzyLookup(products, "widget")
	require.Len(t, got, FuzzyLimit)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 20, got[19].ID)
}

func TestHandler_Execute_FuzzyReplyCapped(t *testing.T) {
	var products []models.Product
	for i := 1; i <= 30; i++ {
		products = append(products, models.Product{ID: 1000 + i, Name: "Gadget", Description: strings.Repeat("x", i)})
	}
	h := newTestHandler(t, products, &fakeDelegate{})

	out, err := h.Execute(context.Background(), &Input{Message: "gadget"})
	require.NoError(t, err)
	assert.Len(t, summaryIDs(t, out.Reply), FuzzyLimit)
}

func BenchmarkHandler_Execute_Fuzzy(b *testing.B) {
	h := NewHandler(LoadConfig(), catalog.New(createTestProducts()), &fakeDelegate{}, &BenchmarkLogger{})
	input := &Input{Message: "warm jacket for winter"}
	for i := 0; i < b.N; i++ {
		_, _ = h.Execute(context.Background(), input)
	}
}
