package gateway

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jonathan/architect/internal/llm"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

// fakeClient is an in-memory llm.Client.
type fakeClient struct {
	mu sync.Mutex

	jsonOut  string
	jsonErr  error
	requests []llm.JSONRequest

	grounded      *llm.GroundedResponse
	groundedErr   error
	groundedTools []llm.GroundingTool
	groundedTier  llm.ModelTier

	audio    *llm.Audio
	speechFn func(ctx context.Context, text string) (*llm.Audio, error)

	chat     *fakeChat
	chatOpts llm.ChatOptions
}

func (f *fakeClient) GenerateContent(context.Context, string, llm.ModelTier) (string, error) {
	return f.jsonOut, f.jsonErr
}

func (f *fakeClient) GenerateJSON(_ context.Context, req llm.JSONRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.jsonOut, f.jsonErr
}

func (f *fakeClient) StartChat(_ context.Context, opts llm.ChatOptions) (llm.ChatSession, error) {
	f.chatOpts = opts
	return f.chat, nil
}

func (f *fakeClient) GenerateGrounded(_ context.Context, _ string, tools []llm.GroundingTool, tier llm.ModelTier) (*llm.GroundedResponse, error) {
	f.groundedTools = tools
	f.groundedTier = tier
	return f.grounded, f.groundedErr
}

func (f *fakeClient) GenerateSpeech(ctx context.Context, text string) (*llm.Audio, error) {
	if f.speechFn != nil {
		return f.speechFn(ctx, text)
	}
	return f.audio, nil
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake" }
func (f *fakeClient) Close() error                  { return nil }

// fakeChat replays scripted replies and records what it was sent.
type fakeChat struct {
	replies []*llm.ChatReply
	err     error
	sent    []string
	results [][]llm.FunctionResult
}

func (c *fakeChat) next() (*llm.ChatReply, error) {
	if c.err != nil {
		return nil, c.err
	}
	if len(c.replies) == 0 {
		return nil, llm.ErrEmptyResponse
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r, nil
}

func (c *fakeChat) Send(_ context.Context, text string) (*llm.ChatReply, error) {
	c.sent = append(c.sent, text)
	return c.next()
}

func (c *fakeChat) SendFunctionResults(_ context.Context, results []llm.FunctionResult) (*llm.ChatReply, error) {
	c.results = append(c.results, results)
	return c.next()
}
