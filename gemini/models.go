package gemini

// ModelID names a generative model. Values may carry the "models/"
// resource prefix or be bare identifiers; the client normalizes either
// form before building request paths.
type ModelID string

// Well-known model identifiers. The live set is served by ListModels;
// these constants cover the commonly used generation models.
const (
	ModelGemini25Pro       ModelID = "gemini-2.5-pro"
	ModelGemini25Flash     ModelID = "gemini-2.5-flash"
	ModelGemini25FlashLite ModelID = "gemini-2.5-flash-lite"
	ModelGemini20Flash     ModelID = "gemini-2.0-flash"
	ModelGemini20FlashLite ModelID = "gemini-2.0-flash-lite"
	ModelGemini15Pro       ModelID = "gemini-1.5-pro"
	ModelGemini15Flash     ModelID = "gemini-1.5-flash"
)

// DefaultModel is used by callers that do not care which model serves
// the request.
const DefaultModel = ModelGemini25Flash
