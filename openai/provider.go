// Package openai provides an OpenAI streaming provider for Rivulet.
package openai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/nfujita/rivulet/provider"
)

func init() {
	provider.Register("openai", func() (provider.Provider, error) {
		return New()
	})
}

// Provider implements the OpenAI chat completions API.
type Provider struct {
	client *client
}

// Option configures the OpenAI provider.
type Option func(*providerConfig)

type providerConfig struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *providerConfig) {
		c.apiKey = key
	}
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) Option {
	return func(c *providerConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *providerConfig) {
		c.httpClient = client
	}
}

// New creates a new OpenAI provider.
func New(opts ...Option) (*Provider, error) {
	cfg := &providerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Fall back to environment variable
	if cfg.apiKey == "" {
		cfg.apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if cfg.apiKey == "" {
		return nil, &provider.Error{
			Provider: "openai",
			Code:     provider.CodeAuth,
			Message:  "OpenAI API key required: set OPENAI_API_KEY or use WithAPIKey",
		}
	}

	return &Provider{
		client: newClient(cfg.apiKey, cfg.baseURL, cfg.httpClient),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "openai"
}

// Stream implements provider.Provider.
func (p *Provider) Stream(ctx context.Context, req *provider.Request) (provider.ResponseStream, error) {
	apiReq := p.buildRequest(req)

	reader, err := p.client.chatCompletionStream(ctx, apiReq)
	if err != nil {
		return nil, err
	}

	return &openaiStream{
		reader: reader,
		calls:  make(map[int]*callState),
	}, nil
}

// buildRequest converts a provider.Request to an OpenAI API request.
func (p *Provider) buildRequest(req *provider.Request) *chatCompletionRequest {
	apiReq := &chatCompletionRequest{
		Model:       req.Model,
		Messages:    make([]message, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
		Stop:        req.StopSequences,
	}

	for _, msg := range req.Messages {
		apiReq.Messages = append(apiReq.Messages, message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	for _, fn := range req.Functions {
		apiReq.Tools = append(apiReq.Tools, toolDef{
			Type: "function",
			Function: functionDef{
				Name:        fn.Name,
				Description: fn.Description,
				Parameters:  fn.Parameters,
			},
		})
	}

	return apiReq
}

// convertFinishReason converts an OpenAI finish reason.
func convertFinishReason(reason string) provider.FinishReason {
	switch reason {
	case "tool_calls", "function_call":
		return provider.FinishReasonFunctionCall
	case "length":
		return provider.FinishReasonLength
	default:
		return provider.FinishReasonStop
	}
}

// callState tracks the identity of an in-progress function call so the
// emitted deltas carry a stable ID and name.
type callState struct {
	id   string
	name string
}

// openaiStream implements provider.ResponseStream for OpenAI.
type openaiStream struct {
	reader  *streamReader
	err     error
	current *provider.Fragment
	done    bool
	usage   provider.Usage
	calls   map[int]*callState
}

func (s *openaiStream) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	chunk, err := s.reader.ReadChunk()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.done = true
			return false
		}
		s.err = provider.WrapTransport("openai", err)
		return false
	}

	s.current = &provider.Fragment{}

	if len(chunk.Choices) > 0 {
		choice := chunk.Choices[0]
		delta := choice.Delta

		if delta.Content != "" {
			s.current.Delta = delta.Content
		}

		for _, tc := range delta.ToolCalls {
			state, exists := s.calls[tc.Index]
			if !exists {
				state = &callState{}
				s.calls[tc.Index] = state
			}
			if tc.ID != "" {
				state.id = tc.ID
			}

			fcd := &provider.FunctionCallDelta{
				ID:             state.id,
				ArgumentsDelta: tc.Function.Arguments,
			}
			// The name arrives only on the first delta of a call.
			if tc.Function.Name != "" && state.name == "" {
				state.name = tc.Function.Name
				fcd.Name = tc.Function.Name
			}
			s.current.FunctionCallDelta = fcd
		}

		if choice.FinishReason != nil {
			s.current.FinishReason = convertFinishReason(*choice.FinishReason)
		}
	}

	// Usage is sent in the final chunk when stream_options request it.
	if chunk.Usage != nil {
		s.usage = provider.Usage{
			PromptTokens:     chunk.Usage.PromptTokens,
			CompletionTokens: chunk.Usage.CompletionTokens,
			TotalTokens:      chunk.Usage.TotalTokens,
		}
	}

	return true
}

func (s *openaiStream) Current() *provider.Fragment {
	return s.current
}

func (s *openaiStream) Err() error {
	return s.err
}

func (s *openaiStream) Close() error {
	return s.reader.Close()
}

func (s *openaiStream) Usage() provider.Usage {
	return s.usage
}
