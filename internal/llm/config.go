// Package llm provides centralized LLM configuration and the Gemini client used by the AI gateway.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for map-grounded lookups
	TierLite ModelTier = "lite"
	// TierStandard is for structured output: plans, advice, pricing, logistics, web research
	TierStandard ModelTier = "standard"
	// TierAdvanced is for multi-turn chat with function calling
	TierAdvanced ModelTier = "advanced"
	// TierSpeech is the text-to-speech model
	TierSpeech ModelTier = "speech"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider, the only one implemented.
const ProviderGemini Provider = "gemini"

// DefaultVoice is the prebuilt voice used for speech synthesis.
const DefaultVoice = "Kore"

// SpeechSampleRate is the sample rate of the PCM audio returned by the speech model.
const SpeechSampleRate = 24000

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Voice       string
	Temperature float32
	// BaseURL overrides the REST endpoint root used for grounding and speech.
	BaseURL string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash",
			TierStandard: "gemini-3-flash-preview",
			TierAdvanced: "gemini-3-pro-preview",
			TierSpeech:   "gemini-2.5-flash-preview-tts",
		},
		Voice:       DefaultVoice,
		Temperature: 0.4,
		BaseURL:     DefaultBaseURL,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok && model != "" {
		return model
	}
	// Speech has no text fallback
	if tier == TierSpeech {
		return ""
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}
