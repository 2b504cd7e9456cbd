package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/architect/internal/llm"
	"github.com/jonathan/architect/internal/navigation"
	"github.com/jonathan/architect/internal/prompts"
)

// maxFunctionRounds bounds function-call round trips within one user turn.
const maxFunctionRounds = 5

// CommandHandler executes navigation commands requested by the chat model.
type CommandHandler interface {
	HandleCommand(ctx context.Context, cmd navigation.Command) navigation.Outcome
}

// CommandResult pairs a requested command with what it did.
type CommandResult struct {
	Command navigation.Command `json:"command"`
	Outcome navigation.Outcome `json:"outcome"`
}

// ChatResult is the model's final reply for one user message plus the commands it ran.
type ChatResult struct {
	Text     string          `json:"text"`
	Commands []CommandResult `json:"commands,omitempty"`
}

// ChatSession is a multi-turn conversation whose navigateApp calls are executed locally.
// Sends on one session are serialized.
type ChatSession struct {
	mu      sync.Mutex
	session llm.ChatSession
	handler CommandHandler
	g       *Gateway
}

// CreateChatSession opens a conversation in language. handler receives navigation commands.
func (g *Gateway) CreateChatSession(ctx context.Context, language string, handler CommandHandler) (*ChatSession, error) {
	system, err := prompts.Render(prompts.ChatSystem, map[string]string{"Language": languageOrDefault(language)})
	if err != nil {
		return nil, classify(OpChat, err)
	}

	session, err := g.client.StartChat(ctx, llm.ChatOptions{
		System: system,
		Tier:   llm.TierAdvanced,
		Functions: []llm.FunctionDeclaration{{
			Name:        navigation.FunctionName,
			Description: navigation.FunctionDescription,
			Parameters:  navigation.FunctionParameters(),
		}},
	})
	if err != nil {
		return nil, classify(OpChat, err)
	}
	return &ChatSession{session: session, handler: handler, g: g}, nil
}

// Send delivers one user message. Every function call the model makes is executed and
// reported back into the session before the final text reply is returned.
// onCommand, when non-nil, observes each command as it runs. If the turn fails after
// commands have run, the partial result listing them is returned with the error.
func (c *ChatSession) Send(ctx context.Context, text string, onCommand func(CommandResult)) (result *ChatResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	defer func() { c.g.record(OpChat, start, err) }()

	reply, err := c.session.Send(ctx, text)
	if err != nil {
		return nil, classify(OpChat, err)
	}

	result = &ChatResult{}
	for round := 0; len(reply.Calls) > 0; round++ {
		if round == maxFunctionRounds {
			return result, classify(OpChat, errTooManyCalls)
		}

		responses := make([]llm.FunctionResult, 0, len(reply.Calls))
		for _, call := range reply.Calls {
			responses = append(responses, c.execute(ctx, call, result, onCommand))
		}

		reply, err = c.session.SendFunctionResults(ctx, responses)
		if err != nil {
			return result, classify(OpChat, err)
		}
	}

	result.Text = reply.Text
	return result, nil
}

func (c *ChatSession) execute(ctx context.Context, call llm.FunctionCall, result *ChatResult, onCommand func(CommandResult)) llm.FunctionResult {
	if call.Name != navigation.FunctionName {
		return llm.FunctionResult{Name: call.Name, Response: map[string]any{
			"status": "error",
			"error":  fmt.Sprintf("unknown function %q", call.Name),
		}}
	}

	cmd, err := navigation.ParseCommand(call.Args)
	if err != nil {
		return llm.FunctionResult{Name: call.Name, Response: map[string]any{
			"status": "error",
			"error":  err.Error(),
		}}
	}

	outcome := navigation.Outcome{Message: "navigation unavailable"}
	if c.handler != nil {
		outcome = c.handler.HandleCommand(ctx, cmd)
	}
	cr := CommandResult{Command: cmd, Outcome: outcome}
	result.Commands = append(result.Commands, cr)
	if onCommand != nil {
		onCommand(cr)
	}

	c.g.logger.Info().
		Str("action", string(cmd.Action)).
		Str("target", cmd.Target).
		Bool("applied", outcome.Applied).
		Msg("chat navigation")

	return llm.FunctionResult{Name: call.Name, Response: map[string]any{
		"status":  "ok",
		"applied": outcome.Applied,
		"result":  outcome.Message,
	}}
}
