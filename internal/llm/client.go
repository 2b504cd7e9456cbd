package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates free text using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON generates JSON constrained by the request's response schema
	GenerateJSON(ctx context.Context, req JSONRequest) (string, error)
	// StartChat opens a multi-turn session that may call the declared functions
	StartChat(ctx context.Context, opts ChatOptions) (ChatSession, error)
	// GenerateGrounded answers a prompt using search or maps grounding and returns citations
	GenerateGrounded(ctx context.Context, prompt string, tools []GroundingTool, tier ModelTier) (*GroundedResponse, error)
	// GenerateSpeech synthesizes text to PCM audio
	GenerateSpeech(ctx context.Context, text string) (*Audio, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// JSONRequest describes a structured generation call.
type JSONRequest struct {
	Prompt string
	System string
	Tier   ModelTier
	// Schema is a JSON Schema document sent as the response schema.
	Schema []byte
}

// NewClient creates a new LLM client based on configuration.
// Without an API key the returned client fails every call with ErrMissingAPIKey.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return &unavailableClient{config: config, err: ErrMissingAPIKey}, nil
	}
	return NewGeminiClient(ctx, config, apiKey)
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	rest   *restClient
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		rest:   newRESTClient(http.DefaultClient, config.BaseURL, apiKey),
		config: config,
	}, nil
}

func (c *GeminiClient) model(tier ModelTier) (*genai.GenerativeModel, string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, "", fmt.Errorf("no model configured for tier %s", tier)
	}
	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(c.config.Temperature)
	return model, modelName, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, name, err := c.model(tier)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &APICallError{Op: "generate", Model: name, Cause: err}
	}
	return extractTextFromResponse(resp)
}

// GenerateJSON generates JSON content constrained to req.Schema
func (c *GeminiClient) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	model, name, err := c.model(req.Tier)
	if err != nil {
		return "", err
	}
	model.ResponseMIMEType = "application/json"
	if len(req.Schema) > 0 {
		schema, err := SchemaFromJSON(req.Schema)
		if err != nil {
			return "", err
		}
		model.ResponseSchema = schema
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", &APICallError{Op: "generate_json", Model: name, Cause: err}
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GenerateGrounded runs a grounded request through the REST endpoint
func (c *GeminiClient) GenerateGrounded(ctx context.Context, prompt string, tools []GroundingTool, tier ModelTier) (*GroundedResponse, error) {
	name := c.config.GetModel(tier)
	if name == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}
	return c.rest.grounded(ctx, name, prompt, tools)
}

// GenerateSpeech synthesizes speech through the REST endpoint
func (c *GeminiClient) GenerateSpeech(ctx context.Context, text string) (*Audio, error) {
	name := c.config.GetModel(TierSpeech)
	if name == "" {
		return nil, fmt.Errorf("no model configured for tier %s", TierSpeech)
	}
	voice := c.config.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	return c.rest.speech(ctx, name, text, voice)
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// unavailableClient stands in when no credential is configured.
type unavailableClient struct {
	config *Config
	err    error
}

func (u *unavailableClient) GenerateContent(context.Context, string, ModelTier) (string, error) {
	return "", u.err
}

func (u *unavailableClient) GenerateJSON(context.Context, JSONRequest) (string, error) {
	return "", u.err
}

func (u *unavailableClient) StartChat(context.Context, ChatOptions) (ChatSession, error) {
	return nil, u.err
}

func (u *unavailableClient) GenerateGrounded(context.Context, string, []GroundingTool, ModelTier) (*GroundedResponse, error) {
	return nil, u.err
}

func (u *unavailableClient) GenerateSpeech(context.Context, string) (*Audio, error) {
	return nil, u.err
}

func (u *unavailableClient) GetModel(tier ModelTier) string { return u.config.GetModel(tier) }

func (u *unavailableClient) Close() error { return nil }
