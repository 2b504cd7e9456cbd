package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the Gemini REST API root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GroundingTool names a server-side grounding tool.
type GroundingTool string

// Grounding tools.
const (
	GoogleSearch GroundingTool = "google_search"
	GoogleMaps   GroundingTool = "google_maps"
)

// Source is a citation returned with a grounded answer. Kind is "web" or "maps".
type Source struct {
	Kind  string
	Title string
	URI   string
}

// GroundedResponse is answer text plus the sources it cites.
type GroundedResponse struct {
	Text    string
	Sources []Source
}

// restClient calls generateContent over HTTP for the features the Go SDK does not expose:
// search and maps grounding tools and the AUDIO response modality.
type restClient struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func newRESTClient(httpClient *http.Client, baseURL, apiKey string) *restClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &restClient{http: httpClient, baseURL: strings.TrimSuffix(baseURL, "/"), apiKey: apiKey}
}

type restPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *restInlineData `json:"inlineData,omitempty"`
}

type restInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type restRequest struct {
	Contents         []restContent         `json:"contents"`
	Tools            []map[string]struct{} `json:"tools,omitempty"`
	GenerationConfig *restGenerationConfig `json:"generationConfig,omitempty"`
}

type restGenerationConfig struct {
	ResponseModalities []string          `json:"responseModalities,omitempty"`
	SpeechConfig       *restSpeechConfig `json:"speechConfig,omitempty"`
}

type restSpeechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voiceName"`
		} `json:"prebuiltVoiceConfig"`
	} `json:"voiceConfig"`
}

type restGroundingChunk struct {
	Web *struct {
		URI   string `json:"uri"`
		Title string `json:"title"`
	} `json:"web,omitempty"`
	Maps *struct {
		URI   string `json:"uri"`
		Title string `json:"title"`
	} `json:"maps,omitempty"`
}

type restResponse struct {
	Candidates []struct {
		Content           restContent `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []restGroundingChunk `json:"groundingChunks"`
		} `json:"groundingMetadata,omitempty"`
	} `json:"candidates"`
}

type restErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (r *restClient) generate(ctx context.Context, op, model string, req *restRequest) (*restResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", r.baseURL, url.PathEscape(model), url.QueryEscape(r.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(httpReq)
	if err != nil {
		return nil, &APICallError{Op: op, Model: model, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APICallError{Op: op, Model: model, Cause: fmt.Errorf("failed to read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr restErrorBody
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return nil, &APICallError{Op: op, Model: model, StatusCode: resp.StatusCode, Cause: errors.New(msg)}
	}

	var out restResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &APICallError{Op: op, Model: model, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(out.Candidates) == 0 {
		return nil, ErrEmptyResponse
	}
	return &out, nil
}

func (r *restClient) grounded(ctx context.Context, model, prompt string, tools []GroundingTool) (*GroundedResponse, error) {
	req := &restRequest{
		Contents: []restContent{{Role: "user", Parts: []restPart{{Text: prompt}}}},
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, map[string]struct{}{string(t): {}})
	}

	resp, err := r.generate(ctx, "grounded", model, req)
	if err != nil {
		return nil, err
	}

	cand := resp.Candidates[0]
	var text []string
	for _, p := range cand.Content.Parts {
		if p.Text != "" {
			text = append(text, p.Text)
		}
	}
	out := &GroundedResponse{Text: strings.TrimSpace(strings.Join(text, ""))}
	if out.Text == "" {
		return nil, ErrEmptyResponse
	}

	if cand.GroundingMetadata != nil {
		seen := make(map[string]bool)
		for _, chunk := range cand.GroundingMetadata.GroundingChunks {
			var src Source
			switch {
			case chunk.Web != nil:
				src = Source{Kind: "web", Title: chunk.Web.Title, URI: chunk.Web.URI}
			case chunk.Maps != nil:
				src = Source{Kind: "maps", Title: chunk.Maps.Title, URI: chunk.Maps.URI}
			default:
				continue
			}
			if src.URI == "" || seen[src.URI] {
				continue
			}
			seen[src.URI] = true
			out.Sources = append(out.Sources, src)
		}
	}
	return out, nil
}

func (r *restClient) speech(ctx context.Context, model, text, voice string) (*Audio, error) {
	cfg := &restGenerationConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig:       &restSpeechConfig{},
	}
	cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = voice

	req := &restRequest{
		Contents:         []restContent{{Parts: []restPart{{Text: text}}}},
		GenerationConfig: cfg,
	}

	resp, err := r.generate(ctx, "speech", model, req)
	if err != nil {
		return nil, err
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData == nil || p.InlineData.Data == "" {
			continue
		}
		pcm, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
		if err != nil {
			return nil, &APICallError{Op: "speech", Model: model, Cause: fmt.Errorf("failed to decode audio: %w", err)}
		}
		return &Audio{
			MIMEType:   p.InlineData.MimeType,
			PCM:        pcm,
			SampleRate: SpeechSampleRate,
			Channels:   1,
		}, nil
	}
	return nil, ErrEmptyResponse
}
