package llm

import (
	"context"
	"fmt"
	"log"
	"os"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when neither the provider nor the options name a model.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements the Provider interface for Google's Gemini models.
type GeminiProvider struct {
	Model string
}

var _ Provider = (*GeminiProvider)(nil)

// GenerateResponse sends a generateContent request through the GenAI SDK.
// A reply without text, or stopped for any reason other than STOP, is an error.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := p.modelName(options)
	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), geminiConfig(systemPrompt, options))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if u := result.UsageMetadata; u != nil {
		log.Printf("[LLM] gemini %s: %d prompt tokens, %d reply tokens", model, u.PromptTokenCount, u.CandidatesTokenCount)
	}
	return geminiText(result)
}

func (p *GeminiProvider) modelName(options map[string]interface{}) string {
	if model := stringOption(options, OptionModel, p.Model); model != "" {
		return model
	}
	return DefaultGeminiModel
}

// geminiConfig builds the request config. Temperature stays low: values are
// copied out of filings, not generated.
func geminiConfig(systemPrompt string, options map[string]interface{}) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}
	if boolOption(options, OptionJSONMode) {
		config.ResponseMIMEType = "application/json"
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	return config
}

func geminiText(result *genai.GenerateContentResponse) (string, error) {
	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", fmt.Errorf("GEMINI_BLOCKED: prompt blocked (%s)", fb.BlockReason)
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("GEMINI_EMPTY: no candidates returned")
	}
	if reason := result.Candidates[0].FinishReason; reason != "" && reason != genai.FinishReasonStop {
		return "", fmt.Errorf("GEMINI_TRUNCATED: generation stopped with %s", reason)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("GEMINI_EMPTY: candidate has no text")
	}
	return text, nil
}

func (p *GeminiProvider) AdaptInstructions(raw string) string {
	return raw
}
