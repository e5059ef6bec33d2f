package scenario

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfujita/rivulet/console"
	"github.com/nfujita/rivulet/llm"
	"github.com/nfujita/rivulet/provider"
)

// fakeProvider replays the same fragment script for every stream and
// records the requests it received.
type fakeProvider struct {
	fragments []provider.Fragment
	streamErr error

	mu   sync.Mutex
	reqs []*provider.Request
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Stream(ctx context.Context, req *provider.Request) (provider.ResponseStream, error) {
	p.mu.Lock()
	p.reqs = append(p.reqs, req)
	p.mu.Unlock()

	if p.streamErr != nil {
		return nil, p.streamErr
	}
	return &replayStream{fragments: p.fragments}, nil
}

func (p *fakeProvider) requests() []*provider.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*provider.Request(nil), p.reqs...)
}

type replayStream struct {
	fragments []provider.Fragment
	idx       int
	current   *provider.Fragment
}

func (s *replayStream) Next() bool {
	if s.idx >= len(s.fragments) {
		return false
	}
	s.current = &s.fragments[s.idx]
	s.idx++
	return true
}

func (s *replayStream) Current() *provider.Fragment { return s.current }
func (s *replayStream) Err() error                  { return nil }
func (s *replayStream) Close() error                { return nil }
func (s *replayStream) Usage() provider.Usage       { return provider.Usage{} }

func register(t *testing.T, name string, p *fakeProvider) {
	t.Helper()
	provider.Register(name, func() (provider.Provider, error) {
		return p, nil
	})
}

func newTestRunner(providerName string) (*Runner, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewRunner(console.New(&buf), log, providerName, "test-model"), &buf
}

func textFragments(deltas ...string) []provider.Fragment {
	fragments := make([]provider.Fragment, 0, len(deltas))
	for _, d := range deltas {
		fragments = append(fragments, provider.Fragment{Delta: d})
	}
	return fragments
}

func TestRunChatScenario(t *testing.T) {
	p := &fakeProvider{fragments: textFragments("Hello", " world", ".")}
	register(t, "runner-chat", p)
	runner, buf := newTestRunner("runner-chat")

	failed := runner.Run(context.Background(), []Scenario{{
		Name:   "chat-demo",
		Title:  "Chat",
		Kind:   KindChat,
		Prompt: "say hello",
		System: "be brief",
	}})

	assert.Zero(t, failed)
	assert.Contains(t, buf.String(), "Hello world.")

	reqs := p.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "test-model", reqs[0].Model)
	assert.Equal(t, provider.RoleSystem, reqs[0].Messages[0].Role)
}

func TestRunFollowUpExtendsHistory(t *testing.T) {
	p := &fakeProvider{fragments: textFragments("A story.")}
	register(t, "runner-followup", p)
	runner, buf := newTestRunner("runner-followup")

	failed := runner.Run(context.Background(), []Scenario{{
		Name:     "followup-demo",
		Kind:     KindChat,
		Prompt:   "tell a story",
		FollowUp: "summarize it",
	}})

	assert.Zero(t, failed)
	assert.Contains(t, buf.String(), "Follow-up Response")

	reqs := p.requests()
	require.Len(t, reqs, 2)
	// The second turn carries user, assistant, user.
	require.Len(t, reqs[1].Messages, 3)
	assert.Equal(t, provider.RoleAssistant, reqs[1].Messages[1].Role)
	assert.Equal(t, "A story.", reqs[1].Messages[1].Content)
	assert.Equal(t, "summarize it", reqs[1].Messages[2].Content)
}

func TestRunFunctionCallScenario(t *testing.T) {
	p := &fakeProvider{fragments: []provider.Fragment{
		{FunctionCallDelta: &provider.FunctionCallDelta{ID: "call_1", Name: "get_weather", ArgumentsDelta: `{"loc`}},
		{FunctionCallDelta: &provider.FunctionCallDelta{ID: "call_1", ArgumentsDelta: `ation":"NYC"}`}},
		{FinishReason: provider.FinishReasonFunctionCall},
	}}
	register(t, "runner-fn", p)
	runner, buf := newTestRunner("runner-fn")

	failed := runner.Run(context.Background(), []Scenario{{
		Name:   "fn-demo",
		Kind:   KindFunctionCall,
		Prompt: "weather in NYC",
		Functions: []FunctionSpec{
			{Name: "get_weather", Description: "Weather lookup"},
		},
	}})

	assert.Zero(t, failed)
	out := buf.String()
	assert.Contains(t, out, "get_weather")
	assert.Contains(t, out, `{"location":"NYC"}`)

	reqs := p.requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].Functions, 1)
}

func TestRunLiveStatsScenario(t *testing.T) {
	p := &fakeProvider{fragments: textFragments("One two. ", "Three!")}
	register(t, "runner-stats", p)
	runner, buf := newTestRunner("runner-stats")

	failed := runner.Run(context.Background(), []Scenario{{
		Name:   "stats-demo",
		Kind:   KindLiveStats,
		Prompt: "count things",
	}})

	assert.Zero(t, failed)
	out := buf.String()
	assert.Contains(t, out, "Words: 3")
	assert.Contains(t, out, "Sentences: 2")
	assert.Contains(t, out, "One two. Three!")
}

func TestRunConcurrentScenario(t *testing.T) {
	p := &fakeProvider{fragments: textFragments("haiku")}
	register(t, "runner-concurrent", p)
	runner, buf := newTestRunner("runner-concurrent")

	failed := runner.Run(context.Background(), []Scenario{{
		Name:    "concurrent-demo",
		Kind:    KindConcurrent,
		Prompt:  "write a haiku",
		Streams: 3,
	}})

	assert.Zero(t, failed)
	out := buf.String()
	assert.Contains(t, out, "Stream 1")
	assert.Contains(t, out, "Stream 2")
	assert.Contains(t, out, "Stream 3")
	assert.Len(t, p.requests(), 3)
}

func TestRunIsolatesFailures(t *testing.T) {
	failing := &fakeProvider{streamErr: &provider.Error{
		Provider: "fake", Code: provider.CodeAuth, StatusCode: 401, Message: "bad key",
	}}
	register(t, "runner-failing", failing)
	working := &fakeProvider{fragments: textFragments("still running")}
	register(t, "runner-working", working)

	runner, buf := newTestRunner("runner-failing")

	failed := runner.Run(context.Background(), []Scenario{
		{Name: "broken", Kind: KindChat, Prompt: "hi"},
		{Name: "healthy", Kind: KindChat, Prompt: "hi", Provider: "runner-working"},
	})

	assert.Equal(t, 1, failed)
	out := buf.String()
	assert.Contains(t, out, "bad key")
	assert.Contains(t, out, "still running")
}

func TestErrorHandlingScenarioSucceedsOnClassifiedError(t *testing.T) {
	p := &fakeProvider{streamErr: &provider.Error{
		Provider: "fake", Code: provider.CodeInvalidRequest, StatusCode: 404,
		Message: "The model 'invalid-model-name' does not exist",
	}}
	register(t, "runner-errdemo", p)
	runner, buf := newTestRunner("runner-errdemo")

	failed := runner.Run(context.Background(), []Scenario{{
		Name:   "error-demo",
		Kind:   KindErrorHandling,
		Prompt: "hi",
	}})

	// The classified failure is the demonstration, not a defect.
	assert.Zero(t, failed)
	out := buf.String()
	assert.Contains(t, out, "Invalid Request")
	assert.Contains(t, out, "invalid-model-name")
}

func TestScenarioOverridesRunnerDefaults(t *testing.T) {
	p := &fakeProvider{fragments: textFragments("ok")}
	register(t, "runner-override", p)
	runner, _ := newTestRunner("unused-default")

	failed := runner.Run(context.Background(), []Scenario{{
		Name:     "override-demo",
		Kind:     KindChat,
		Prompt:   "hi",
		Provider: "runner-override",
		Model:    "scenario-model",
	}})

	assert.Zero(t, failed)
	reqs := p.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "scenario-model", reqs[0].Model)
}

func TestConsumedStream(t *testing.T) {
	// The runner goes through llm.Exchange; the collected text must
	// match the concatenated deltas in arrival order.
	p := &fakeProvider{fragments: textFragments("a", "b", "c")}
	register(t, "runner-order", p)

	msg, err := llm.Exchange(context.Background(),
		llm.History{}.AddUser("hi"),
		nil,
		llm.WithProvider("runner-order"),
		llm.WithModel("m"),
	)
	require.NoError(t, err)
	assert.Equal(t, "abc", msg.Text)
}
