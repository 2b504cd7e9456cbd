package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// FunctionDeclaration is a local capability the chat model may call.
type FunctionDeclaration struct {
	Name        string
	Description string
	// Parameters is a JSON Schema document for the call arguments.
	Parameters []byte
}

// ChatOptions configures a chat session.
type ChatOptions struct {
	System    string
	Tier      ModelTier
	Functions []FunctionDeclaration
}

// FunctionCall is a model request to invoke a declared function.
type FunctionCall struct {
	Name string
	Args map[string]any
}

// FunctionResult reports the outcome of a FunctionCall back to the model.
type FunctionResult struct {
	Name     string
	Response map[string]any
}

// ChatReply is one model turn. A turn may carry text, function calls, or both.
type ChatReply struct {
	Text  string
	Calls []FunctionCall
}

// ChatSession is a multi-turn conversation.
type ChatSession interface {
	Send(ctx context.Context, text string) (*ChatReply, error)
	SendFunctionResults(ctx context.Context, results []FunctionResult) (*ChatReply, error)
}

// StartChat opens a chat session on the tier's model
func (c *GeminiClient) StartChat(_ context.Context, opts ChatOptions) (ChatSession, error) {
	tier := opts.Tier
	if tier == "" {
		tier = TierAdvanced
	}
	model, name, err := c.model(tier)
	if err != nil {
		return nil, err
	}
	if opts.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(opts.System)}}
	}

	if len(opts.Functions) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(opts.Functions))
		for _, fn := range opts.Functions {
			params, err := SchemaFromJSON(fn.Parameters)
			if err != nil {
				return nil, fmt.Errorf("function %s: %w", fn.Name, err)
			}
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        fn.Name,
				Description: fn.Description,
				Parameters:  params,
			})
		}
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	return &geminiChat{session: model.StartChat(), model: name}, nil
}

type geminiChat struct {
	session *genai.ChatSession
	model   string
}

func (g *geminiChat) Send(ctx context.Context, text string) (*ChatReply, error) {
	resp, err := g.session.SendMessage(ctx, genai.Text(text))
	if err != nil {
		return nil, &APICallError{Op: "chat", Model: g.model, Cause: err}
	}
	return chatReplyFromResponse(resp)
}

func (g *geminiChat) SendFunctionResults(ctx context.Context, results []FunctionResult) (*ChatReply, error) {
	parts := make([]genai.Part, 0, len(results))
	for _, r := range results {
		parts = append(parts, genai.FunctionResponse{Name: r.Name, Response: r.Response})
	}
	resp, err := g.session.SendMessage(ctx, parts...)
	if err != nil {
		return nil, &APICallError{Op: "chat_function_result", Model: g.model, Cause: err}
	}
	return chatReplyFromResponse(resp)
}

func chatReplyFromResponse(resp *genai.GenerateContentResponse) (*ChatReply, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}

	reply := &ChatReply{}
	var text []string
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text = append(text, string(p))
		case genai.FunctionCall:
			reply.Calls = append(reply.Calls, FunctionCall{Name: p.Name, Args: p.Args})
		}
	}
	reply.Text = strings.TrimSpace(strings.Join(text, ""))

	if reply.Text == "" && len(reply.Calls) == 0 {
		return nil, ErrEmptyResponse
	}
	return reply, nil
}
