package provider

import (
	"context"
	"fmt"
)

// MockProvider is a mock translation provider for testing.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	Errors       map[string]error  // Texts that should fail
	CallCount    int               // Number of times Translate was called
	LastRequest  *Request          // Last request received
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Owner":      "持ち主",
			"Hello!":     "やあ！",
			"Pokeball":   "モンスターボール",
			"Copper Axe": "銅の斧",
		},
		Errors: make(map[string]error),
	}
}

// Translate returns a mock translation, or the configured error for texts
// registered in Errors.
func (m *MockProvider) Translate(_ context.Context, req Request) (string, error) {
	m.CallCount++
	m.LastRequest = &req

	if err, ok := m.Errors[req.Text]; ok {
		return "", err
	}
	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}
	// Bracketed text for unknown translations
	return fmt.Sprintf("[%s]", req.Text), nil
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.CallCount = 0
	m.LastRequest = nil
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
