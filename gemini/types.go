package gemini

// Part is a single unit of content within a message turn. The REST API
// also allows media parts; this client deals in text.
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content is a role-tagged sequence of parts representing one turn.
type Content struct {
	Role  string `json:"role,omitempty"` // "user" or "model"
	Parts []Part `json:"parts"`
}

// Roles accepted by the generateContent endpoint.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// TextContent builds a single-part text Content with the given role.
func TextContent(role, text string) Content {
	return Content{
		Role:  role,
		Parts: []Part{{Text: text}},
	}
}

// GenerationConfig holds sampling parameters for a generation request.
// All fields are optional; absent fields fall back to server defaults.
// The client passes these through opaquely and performs no validation.
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
	CandidateCount  *int     `json:"candidateCount,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

// GenerateContentRequest is the request body for
// POST /{version}/models/{model}:generateContent.
// The target model travels in the URL path, not in the body.
type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// GenerateContentResponse is the response from generateContent.
// Candidates may be empty when the model declines to answer;
// PromptFeedback then usually explains why.
type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates,omitempty"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
}

// Text returns the concatenated text parts of the first candidate, or ""
// when no candidate carries text.
func (r *GenerateContentResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	c := r.Candidates[0]
	if c.Content == nil {
		return ""
	}
	var out string
	for _, p := range c.Content.Parts {
		out += p.Text
	}
	return out
}

// Candidate is one generated alternative. SafetyRatings and
// CitationMetadata are nil when the server performed no evaluation,
// which is distinct from an empty evaluation result.
type Candidate struct {
	Content          *Content          `json:"content,omitempty"`
	FinishReason     string            `json:"finishReason,omitempty"`
	SafetyRatings    []SafetyRating    `json:"safetyRatings,omitempty"`
	CitationMetadata *CitationMetadata `json:"citationMetadata,omitempty"`
	Index            int               `json:"index,omitempty"`
}

// SafetyRating is the per-category safety assessment of content.
type SafetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
	Blocked     bool   `json:"blocked,omitempty"`
}

// CitationMetadata lists source attributions for generated content.
type CitationMetadata struct {
	CitationSources []CitationSource `json:"citationSources,omitempty"`
}

// CitationSource attributes a span of the candidate to a source.
type CitationSource struct {
	StartIndex int    `json:"startIndex,omitempty"`
	EndIndex   int    `json:"endIndex,omitempty"`
	URI        string `json:"uri,omitempty"`
	License    string `json:"license,omitempty"`
}

// PromptFeedback reports prompt-level blocking decisions.
type PromptFeedback struct {
	BlockReason   string         `json:"blockReason,omitempty"`
	SafetyRatings []SafetyRating `json:"safetyRatings,omitempty"`
}

// UsageMetadata reports token consumption for a generation request.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount int `json:"candidatesTokenCount,omitempty"`
	TotalTokenCount      int `json:"totalTokenCount,omitempty"`
}

// Model is the model resource returned by GET /{version}/models/{model}
// and in list responses. Name carries the "models/" prefix as sent by
// the server. Instances are created only by decoding a response and are
// never mutated.
type Model struct {
	Name                       string   `json:"name"`
	BaseModelID                string   `json:"baseModelId,omitempty"`
	Version                    string   `json:"version,omitempty"`
	DisplayName                string   `json:"displayName,omitempty"`
	Description                string   `json:"description,omitempty"`
	InputTokenLimit            int      `json:"inputTokenLimit,omitempty"`
	OutputTokenLimit           int      `json:"outputTokenLimit,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods,omitempty"`
}

// ModelList is one page of the models collection, in server order.
// NextPageToken is carried opaquely; the client does not paginate.
type ModelList struct {
	Models        []Model `json:"models"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}

// CountTokensRequest is the request body for
// POST /{version}/models/{model}:countTokens. At most one of Contents
// and GenerateContentRequest should be populated.
type CountTokensRequest struct {
	Contents               []Content               `json:"contents,omitempty"`
	GenerateContentRequest *GenerateContentRequest `json:"generateContentRequest,omitempty"`
}

// CountTokensResponse is the response from countTokens.
type CountTokensResponse struct {
	TotalTokens int `json:"totalTokens"`
}
