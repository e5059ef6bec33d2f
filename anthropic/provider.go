// Package anthropic provides an Anthropic streaming provider for Rivulet.
package anthropic

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/nfujita/rivulet/provider"
)

func init() {
	provider.Register("anthropic", func() (provider.Provider, error) {
		return New()
	})
}

// Provider implements the Anthropic Messages API.
type Provider struct {
	client *client
}

// Option configures the Anthropic provider.
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

// New creates a new Anthropic provider.
func New(opts ...Option) (*Provider, error) {
	cfg := &providerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Fall back to environment variable
	if cfg.apiKey == "" {
		cfg.apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	if cfg.apiKey == "" {
		return nil, &provider.Error{
			Provider: "anthropic",
			Code:     provider.CodeAuth,
			Message:  "Anthropic API key required: set ANTHROPIC_API_KEY or use WithAPIKey",
		}
	}

	return &Provider{
		client: newClient(cfg.apiKey, cfg.baseURL, cfg.httpClient),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "anthropic"
}

// Stream implements provider.Provider.
func (p *Provider) Stream(ctx context.Context, req *provider.Request) (provider.ResponseStream, error) {
	apiReq := p.buildRequest(req)

	reader, err := p.client.messagesStream(ctx, apiReq)
	if err != nil {
		return nil, err
	}

	return &anthropicStream{reader: reader}, nil
}

// buildRequest converts a provider.Request to an Anthropic API request.
// System messages are hoisted into the dedicated system field.
func (p *Provider) buildRequest(req *provider.Request) *messagesRequest {
	apiReq := &messagesRequest{
		Model:         req.Model,
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		StopSequences: req.StopSequences,
	}

	if req.MaxTokens != nil {
		apiReq.MaxTokens = *req.MaxTokens
	}

	for _, msg := range req.Messages {
		if msg.Role == provider.RoleSystem {
			if apiReq.System != "" {
				apiReq.System += "\n"
			}
			apiReq.System += msg.Content
			continue
		}
		apiReq.Messages = append(apiReq.Messages, message{
			Role:    convertRole(msg.Role),
			Content: []contentPart{{Type: "text", Text: msg.Content}},
		})
	}

	for _, fn := range req.Functions {
		apiReq.Tools = append(apiReq.Tools, toolDef{
			Name:        fn.Name,
			Description: fn.Description,
			InputSchema: fn.Parameters,
		})
	}

	return apiReq
}

func convertRole(role provider.Role) string {
	switch role {
	case provider.RoleAssistant:
		return "assistant"
	default:
		return "user"
	}
}

func convertStopReason(reason string) provider.FinishReason {
	switch reason {
	case "tool_use":
		return provider.FinishReasonFunctionCall
	case "max_tokens":
		return provider.FinishReasonLength
	default:
		return provider.FinishReasonStop
	}
}

// anthropicStream implements provider.ResponseStream for Anthropic.
type anthropicStream struct {
	reader  *streamReader
	err     error
	current *provider.Fragment
	done    bool
	usage   provider.Usage

	// Identity of the in-progress tool_use block
	callID   string
	callName string
}

func (s *anthropicStream) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	event, err := s.reader.ReadEvent()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.done = true
			return false
		}
		s.err = provider.WrapTransport("anthropic", err)
		return false
	}

	s.current = &provider.Fragment{}

	switch event.Type {
	case "content_block_start":
		if event.ContentBlock != nil && event.ContentBlock.Type == "tool_use" {
			s.callID = event.ContentBlock.ID
			s.callName = event.ContentBlock.Name
			// The name is known up front; emit it before any arguments.
			s.current.FunctionCallDelta = &provider.FunctionCallDelta{
				ID:   s.callID,
				Name: s.callName,
			}
		}

	case "content_block_delta":
		if event.Delta != nil {
			if event.Delta.Text != "" {
				s.current.Delta = event.Delta.Text
			}
			if event.Delta.PartialJSON != "" {
				s.current.FunctionCallDelta = &provider.FunctionCallDelta{
					ID:             s.callID,
					ArgumentsDelta: event.Delta.PartialJSON,
				}
			}
		}

	case "content_block_stop":
		s.callID = ""
		s.callName = ""

	case "message_delta":
		if event.Delta != nil && event.Delta.StopReason != "" {
			s.current.FinishReason = convertStopReason(event.Delta.StopReason)
		}
		if event.Usage != nil {
			s.usage.CompletionTokens = event.Usage.OutputTokens
			s.usage.TotalTokens = s.usage.PromptTokens + event.Usage.OutputTokens
		}

	case "message_start":
		if event.Message != nil {
			s.usage.PromptTokens = event.Message.Usage.InputTokens
		}

	case "message_stop":
		s.done = true
		return false
	}

	return true
}

func (s *anthropicStream) Current() *provider.Fragment {
	return s.current
}

func (s *anthropicStream) Err() error {
	return s.err
}

func (s *anthropicStream) Close() error {
	return s.reader.Close()
}

func (s *anthropicStream) Usage() provider.Usage {
	return s.usage
}
