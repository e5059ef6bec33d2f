// Package gemini provides a Google Gemini streaming provider for Rivulet.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/nfujita/rivulet/provider"
)

func init() {
	provider.Register("gemini", func() (provider.Provider, error) {
		return New()
	})
}

// Provider implements the Gemini generateContent API.
type Provider struct {
	client *client
}

// Option configures the Gemini provider.
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

// New creates a new Gemini provider.
func New(opts ...Option) (*Provider, error) {
	cfg := &providerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Fall back to environment variable
	if cfg.apiKey == "" {
		cfg.apiKey = os.Getenv("GEMINI_API_KEY")
	}

	if cfg.apiKey == "" {
		return nil, &provider.Error{
			Provider: "gemini",
			Code:     provider.CodeAuth,
			Message:  "Gemini API key required: set GEMINI_API_KEY or use WithAPIKey",
		}
	}

	return &Provider{
		client: newClient(cfg.apiKey, cfg.baseURL, cfg.httpClient),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "gemini"
}

// Stream implements provider.Provider.
func (p *Provider) Stream(ctx context.Context, req *provider.Request) (provider.ResponseStream, error) {
	apiReq := p.buildRequest(req)

	reader, err := p.client.streamGenerateContent(ctx, req.Model, apiReq)
	if err != nil {
		return nil, err
	}

	return &geminiStream{reader: reader}, nil
}

// buildRequest converts a provider.Request to a Gemini API request.
// System messages become the systemInstruction content.
func (p *Provider) buildRequest(req *provider.Request) *generateContentRequest {
	apiReq := &generateContentRequest{
		Contents: make([]content, 0, len(req.Messages)),
	}

	if req.Temperature != nil || req.MaxTokens != nil || req.TopP != nil || len(req.StopSequences) > 0 {
		apiReq.GenerationConfig = &generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
			TopP:            req.TopP,
			StopSequences:   req.StopSequences,
		}
	}

	for _, msg := range req.Messages {
		if msg.Role == provider.RoleSystem {
			apiReq.SystemInstruction = &content{
				Parts: []part{{Text: msg.Content}},
			}
			continue
		}

		apiReq.Contents = append(apiReq.Contents, content{
			Role:  convertRole(msg.Role),
			Parts: []part{{Text: msg.Content}},
		})
	}

	if len(req.Functions) > 0 {
		funcDecls := make([]functionDeclaration, 0, len(req.Functions))
		for _, fn := range req.Functions {
			funcDecls = append(funcDecls, functionDeclaration{
				Name:        fn.Name,
				Description: fn.Description,
				Parameters:  fn.Parameters,
			})
		}
		apiReq.Tools = []tool{{FunctionDeclarations: funcDecls}}
	}

	return apiReq
}

func convertRole(role provider.Role) string {
	switch role {
	case provider.RoleAssistant:
		return "model"
	default:
		return "user"
	}
}

func convertFinishReason(reason string) provider.FinishReason {
	switch reason {
	case "MAX_TOKENS":
		return provider.FinishReasonLength
	case "TOOL_USE", "FUNCTION_CALL":
		return provider.FinishReasonFunctionCall
	default:
		return provider.FinishReasonStop
	}
}

// geminiStream implements provider.ResponseStream for Gemini.
type geminiStream struct {
	reader  *streamReader
	err     error
	current *provider.Fragment
	done    bool
	usage   provider.Usage
}

func (s *geminiStream) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	chunk, err := s.reader.ReadChunk()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.done = true
			return false
		}
		s.err = provider.WrapTransport("gemini", err)
		return false
	}

	s.current = &provider.Fragment{}

	if chunk.UsageMetadata != nil {
		s.usage = provider.Usage{
			PromptTokens:     chunk.UsageMetadata.PromptTokenCount,
			CompletionTokens: chunk.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      chunk.UsageMetadata.TotalTokenCount,
		}
	}

	if len(chunk.Candidates) > 0 {
		cand := chunk.Candidates[0]
		if cand.FinishReason != "" {
			s.current.FinishReason = convertFinishReason(cand.FinishReason)
		}

		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if part.Text != "" {
					s.current.Delta += part.Text
				}
				if part.FunctionCall != nil {
					// Arguments arrive as one complete object.
					argsJSON, _ := json.Marshal(part.FunctionCall.Args)
					s.current.FunctionCallDelta = &provider.FunctionCallDelta{
						ID:             part.FunctionCall.Name, // Gemini has no call ID
						Name:           part.FunctionCall.Name,
						ArgumentsDelta: string(argsJSON),
					}
				}
			}
		}
	}

	return true
}

func (s *geminiStream) Current() *provider.Fragment {
	return s.current
}

func (s *geminiStream) Err() error {
	return s.err
}

func (s *geminiStream) Close() error {
	return s.reader.Close()
}

func (s *geminiStream) Usage() provider.Usage {
	return s.usage
}
