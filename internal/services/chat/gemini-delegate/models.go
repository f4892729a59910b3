// internal/services/chat/gemini-delegate/models.go
package geminidelegate

type Input struct {
	Message string `json:"message"`
}

type Output struct {
	Reply  string `json:"reply"`
	Cached bool   `json:"cached"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// firstText returns candidates[0].content.parts[0].text, or "" when any step
// of that path is missing.
func (r *generateResponse) firstText() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].Text
}
