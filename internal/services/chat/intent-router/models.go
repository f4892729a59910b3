// internal/services/chat/intent-router/models.go
package intentrouter

import "product-chatbot/internal/models"

// Intent names the branch that answered a message.
type Intent string

const (
	IntentListAll      Intent = "list_all"
	IntentDirectLookup Intent = "direct_lookup"
	IntentFuzzyLookup  Intent = "fuzzy_lookup"
	IntentDelegate     Intent = "delegate"
)

type Input struct {
	Message string `json:"message"`
}

type Output struct {
	Intent Intent           `json:"intent"`
	Reply  models.ChatReply `json:"reply"`
}
