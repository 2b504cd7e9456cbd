package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/architect/internal/llm"
	"github.com/jonathan/architect/internal/metrics"
	"github.com/jonathan/architect/internal/navigation"
)

func testCounter(t *testing.T, m *metrics.Metrics, op, status string) float64 {
	t.Helper()
	return testutil.ToFloat64(m.GatewayCalls.WithLabelValues(op, status))
}

type recordingHandler struct {
	commands []navigation.Command
}

func (h *recordingHandler) HandleCommand(_ context.Context, cmd navigation.Command) navigation.Outcome {
	h.commands = append(h.commands, cmd)
	return navigation.Outcome{Applied: true, Message: "done " + string(cmd.Action)}
}

func navCall(args map[string]any) llm.FunctionCall {
	return llm.FunctionCall{Name: navigation.FunctionName, Args: args}
}

func TestCreateChatSession_DeclaresNavigation(t *testing.T) {
	client := &fakeClient{chat: &fakeChat{}}
	_, err := New(client).CreateChatSession(context.Background(), "Spanish", nil)
	require.NoError(t, err)

	assert.Equal(t, llm.TierAdvanced, client.chatOpts.Tier)
	assert.Contains(t, client.chatOpts.System, "Spanish")
	require.Len(t, client.chatOpts.Functions, 1)
	assert.Equal(t, "navigateApp", client.chatOpts.Functions[0].Name)
	assert.JSONEq(t, string(navigation.FunctionParameters()), string(client.chatOpts.Functions[0].Parameters))
}

func TestChatSession_PlainReply(t *testing.T) {
	chat := &fakeChat{replies: []*llm.ChatReply{{Text: "Hello!"}}}
	session, err := New(&fakeClient{chat: chat}).CreateChatSession(context.Background(), "English", &recordingHandler{})
	require.NoError(t, err)

	result, err := session.Send(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", result.Text)
	assert.Empty(t, result.Commands)
	assert.Equal(t, []string{"hi"}, chat.sent)
}

func TestChatSession_ExecutesNavigationAndReportsBack(t *testing.T) {
	chat := &fakeChat{replies: []*llm.ChatReply{
		{Calls: []llm.FunctionCall{navCall(map[string]any{"action": "switch_project", "target": "aether"})}},
		{Text: "Switched to Aether Moor Shop."},
	}}
	handler := &recordingHandler{}
	session, err := New(&fakeClient{chat: chat}).CreateChatSession(context.Background(), "English", handler)
	require.NoError(t, err)

	var observed []CommandResult
	result, err := session.Send(context.Background(), "open aether", func(cr CommandResult) {
		observed = append(observed, cr)
	})
	require.NoError(t, err)

	assert.Equal(t, "Switched to Aether Moor Shop.", result.Text)
	require.Len(t, handler.commands, 1)
	assert.Equal(t, navigation.Command{Action: navigation.SwitchProject, Target: "aether"}, handler.commands[0])
	assert.Equal(t, result.Commands, observed)

	require.Len(t, chat.results, 1)
	require.Len(t, chat.results[0], 1)
	resp := chat.results[0][0]
	assert.Equal(t, "navigateApp", resp.Name)
	assert.Equal(t, "ok", resp.Response["status"])
	assert.Equal(t, "done switch_project", resp.Response["result"])
}

func TestChatSession_BadCallsReportErrors(t *testing.T) {
	chat := &fakeChat{replies: []*llm.ChatReply{
		{Calls: []llm.FunctionCall{
			navCall(map[string]any{"target": "x"}),
			{Name: "deleteEverything"},
		}},
		{Text: "I could not do that."},
	}}
	handler := &recordingHandler{}
	session, err := New(&fakeClient{chat: chat}).CreateChatSession(context.Background(), "English", handler)
	require.NoError(t, err)

	result, err := session.Send(context.Background(), "go", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Commands)
	assert.Empty(t, handler.commands)

	require.Len(t, chat.results[0], 2)
	for _, r := range chat.results[0] {
		assert.Equal(t, "error", r.Response["status"])
	}
}

func TestChatSession_RoundLimit(t *testing.T) {
	var replies []*llm.ChatReply
	for i := 0; i <= maxFunctionRounds; i++ {
		replies = append(replies, &llm.ChatReply{Calls: []llm.FunctionCall{navCall(map[string]any{"action": "open_sidebar"})}})
	}
	handler := &recordingHandler{}
	session, err := New(&fakeClient{chat: &fakeChat{replies: replies}}).CreateChatSession(context.Background(), "English", handler)
	require.NoError(t, err)

	result, err := session.Send(context.Background(), "loop", nil)
	requireKind(t, err, KindEmpty)
	require.NotNil(t, result)
	assert.Len(t, result.Commands, maxFunctionRounds)
	assert.Len(t, handler.commands, maxFunctionRounds)
	assert.Empty(t, result.Text)
	for _, cr := range result.Commands {
		assert.Equal(t, navigation.OpenSidebar, cr.Command.Action)
		assert.True(t, cr.Outcome.Applied)
	}
}

func TestChatSession_SendFailure(t *testing.T) {
	chat := &fakeChat{err: &llm.APICallError{Op: "chat", Cause: errors.New("reset by peer")}}
	session, err := New(&fakeClient{chat: chat}).CreateChatSession(context.Background(), "English", nil)
	require.NoError(t, err)

	_, err = session.Send(context.Background(), "hi", nil)
	requireKind(t, err, KindNetwork)
}

func TestCreateChatSession_Unavailable(t *testing.T) {
	client, err := llm.NewClient(context.Background(), nil, "")
	require.NoError(t, err)

	_, err = New(client).CreateChatSession(context.Background(), "English", nil)
	requireKind(t, err, KindNetwork)
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}
