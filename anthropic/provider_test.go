package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfujita/rivulet/provider"
)

// event is one SSE frame: an event line followed by its data line.
type event struct {
	name string
	data string
}

func newEventServer(t *testing.T, events []event, captured *[]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if captured != nil {
			*captured = body
		}

		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, ev := range events {
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, ev.data)
			flusher.Flush()
		}
	}))
}

func testRequest() *provider.Request {
	maxTokens := 1024
	return &provider.Request{
		Model: "claude-sonnet-4-5",
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: "Be brief."},
			{Role: provider.RoleUser, Content: "Hello"},
		},
		MaxTokens: &maxTokens,
	}
}

func drain(t *testing.T, stream provider.ResponseStream) (string, *provider.FunctionCallDelta, string) {
	t.Helper()
	var text, args string
	var first *provider.FunctionCallDelta
	for stream.Next() {
		f := stream.Current()
		text += f.Delta
		if f.FunctionCallDelta != nil {
			if first == nil {
				first = f.FunctionCallDelta
			}
			args += f.FunctionCallDelta.ArgumentsDelta
		}
	}
	require.NoError(t, stream.Err())
	return text, first, args
}

func TestStreamText(t *testing.T) {
	var captured []byte
	server := newEventServer(t, []event{
		{"message_start", `{"type":"message_start","message":{"id":"msg_1","model":"claude-sonnet-4-5","usage":{"input_tokens":12,"output_tokens":0}}}`},
		{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text"}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`},
		{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":5}}`},
		{"message_stop", `{"type":"message_stop"}`},
	}, &captured)
	defer server.Close()

	p, err := New(WithAPIKey("test-key"), WithBaseURL(server.URL))
	require.NoError(t, err)

	stream, err := p.Stream(context.Background(), testRequest())
	require.NoError(t, err)
	defer func() { _ = stream.Close() }()

	text, _, _ := drain(t, stream)
	assert.Equal(t, "Hello", text)

	usage := stream.Usage()
	assert.Equal(t, 12, usage.PromptTokens)
	assert.Equal(t, 5, usage.CompletionTokens)
	assert.Equal(t, 17, usage.TotalTokens)

	// System messages are hoisted out of the message list.
	var wire map[string]any
	require.NoError(t, json.Unmarshal(captured, &wire))
	assert.Equal(t, "Be brief.", wire["system"])
	assert.Len(t, wire["messages"], 1)
	assert.Equal(t, float64(1024), wire["max_tokens"])
}

func TestStreamToolUse(t *testing.T) {
	server := newEventServer(t, []event{
		{"message_start", `{"type":"message_start","message":{"id":"msg_1","usage":{"input_tokens":10,"output_tokens":0}}}`},
		{"content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_1","name":"get_weather"}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"loc"}}`},
		{"content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"ation\":\"NYC\"}"}}`},
		{"content_block_stop", `{"type":"content_block_stop","index":0}`},
		{"message_delta", `{"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":8}}`},
		{"message_stop", `{"type":"message_stop"}`},
	}, nil)
	defer server.Close()

	p, err := New(WithAPIKey("test-key"), WithBaseURL(server.URL))
	require.NoError(t, err)

	stream, err := p.Stream(context.Background(), testRequest())
	require.NoError(t, err)
	defer func() { _ = stream.Close() }()

	var finish provider.FinishReason
	var text, args string
	var first *provider.FunctionCallDelta
	for stream.Next() {
		f := stream.Current()
		text += f.Delta
		if f.FunctionCallDelta != nil {
			if first == nil {
				first = f.FunctionCallDelta
			}
			args += f.FunctionCallDelta.ArgumentsDelta
		}
		if f.FinishReason != "" {
			finish = f.FinishReason
		}
	}
	require.NoError(t, stream.Err())

	assert.Empty(t, text)
	require.NotNil(t, first)
	assert.Equal(t, "get_weather", first.Name)
	assert.Equal(t, "toolu_1", first.ID)
	assert.Equal(t, `{"location":"NYC"}`, args)
	assert.Equal(t, provider.FinishReasonFunctionCall, finish)
}

func TestStreamErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected provider.ErrorCode
	}{
		{
			name:     "bad credential",
			status:   http.StatusUnauthorized,
			body:     `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			expected: provider.CodeAuth,
		},
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     `{"type":"error","error":{"type":"rate_limit_error","message":"Number of requests has exceeded your rate limit"}}`,
			expected: provider.CodeRateLimited,
		},
		{
			name:     "invalid model",
			status:   http.StatusNotFound,
			body:     `{"type":"error","error":{"type":"not_found_error","message":"model: invalid-model-name"}}`,
			expected: provider.CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			p, err := New(WithAPIKey("test-key"), WithBaseURL(server.URL))
			require.NoError(t, err)

			_, err = p.Stream(context.Background(), testRequest())
			require.Error(t, err)

			var perr *provider.Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.expected, perr.Code)
			assert.Equal(t, "anthropic", perr.Provider)
		})
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := New()
	require.Error(t, err)
	assert.True(t, provider.IsAuth(err))
}
