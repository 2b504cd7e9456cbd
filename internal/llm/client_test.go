package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestExtractTextFromResponse(t *testing.T) {
	text, err := extractTextFromResponse(response(genai.Text("{\"a\":"), genai.Text("1}")))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)

	_, err = extractTextFromResponse(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = extractTextFromResponse(response(genai.Text("   ")))
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestChatReplyFromResponse(t *testing.T) {
	reply, err := chatReplyFromResponse(response(
		genai.Text("Opening pricing."),
		genai.FunctionCall{Name: "navigateApp", Args: map[string]any{"action": "show_pricing"}},
	))
	require.NoError(t, err)
	assert.Equal(t, "Opening pricing.", reply.Text)
	require.Len(t, reply.Calls, 1)
	assert.Equal(t, "navigateApp", reply.Calls[0].Name)
	assert.Equal(t, "show_pricing", reply.Calls[0].Args["action"])

	reply, err = chatReplyFromResponse(response(genai.FunctionCall{Name: "navigateApp"}))
	require.NoError(t, err)
	assert.Empty(t, reply.Text)
	assert.Len(t, reply.Calls, 1)

	_, err = chatReplyFromResponse(response())
	assert.ErrorIs(t, err, ErrEmptyResponse)
	_, err = chatReplyFromResponse(nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
