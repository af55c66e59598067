package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kotonoha-dev/kotoba"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using OpenAI's API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key (uses OPENAI_API_KEY env var if empty)
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate translates one display string using OpenAI.
func (p *OpenAIProvider) Translate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return req.Text, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(req)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &kotoba.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &kotoba.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return parseResponse(resp.Choices[0].Message.Content)
}

func buildSystemPrompt(req Request) string {
	targetName := kotoba.GetLanguageName(req.TargetLang)

	contextText := "The strings are in-game display text from a game content pack."
	if req.Context != "" {
		contextText = fmt.Sprintf("The strings are for: %s. Adapt the tone to be appropriate for this content.", req.Context)
	}

	prompt := fmt.Sprintf(`# Role
You are an experienced game localization translator. You translate in-game text to %s with the fluency and nuance of a native speaker who knows the game's world and vocabulary.

# Context
%s

# Task
Translate the provided string into idiomatic %s.

# Style Guide
- **Natural Flow**: Avoid literal translations. Rephrase so the result sounds completely natural to a native-speaking player.
- **Register**: Item names and menu text stay short and conventional; dialogue stays casual and in character.
- **Format Codes**: Do NOT translate or remove placeholders or format codes (e.g. %%s, %%1$s, {0}, § color codes).
- **Whitespace**: Preserve leading and trailing whitespace and embedded escape sequences exactly.`, targetName, contextText, targetName)

	if len(req.Glossary) > 0 {
		prompt += "\n\n# Glossary\nThese terms have fixed canonical translations. Always use them:"
		terms := make([]string, 0, len(req.Glossary))
		for source := range req.Glossary {
			terms = append(terms, source)
		}
		sort.Strings(terms)
		for _, source := range terms {
			prompt += fmt.Sprintf("\n- %q → %s", source, req.Glossary[source])
		}
	}

	prompt += `

# Format
Return a valid JSON object with a single key "translation" containing the translated string.
Example: { "translation": "translated text" }
Do NOT wrap the output in Markdown code blocks.`

	return prompt
}

func buildUserMessage(req Request) string {
	data, _ := json.Marshal(map[string]string{"text": req.Text})
	return string(data)
}

func parseResponse(content string) (string, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		if v, ok := obj["translation"]; ok {
			if s, ok := v.(string); ok {
				return s, nil
			}
		}
		// Fallback: first string value
		for _, v := range obj {
			if s, ok := v.(string); ok {
				return s, nil
			}
		}
	}

	// Some models ignore the format instruction and return the bare string.
	var s string
	if err := json.Unmarshal([]byte(content), &s); err == nil && s != "" {
		return s, nil
	}

	return "", &kotoba.ProviderError{
		Message:   "invalid response format from OpenAI",
		Retryable: false,
	}
}

func isRetryableError(err error) bool {
	// Check for common retryable conditions
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
