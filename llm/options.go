package llm

import (
	"time"

	"github.com/nfujita/rivulet/provider"
)

// Option configures a streaming chat call.
type Option func(*callConfig)

// callConfig holds all configuration for a call.
type callConfig struct {
	providerName  string
	model         string
	temperature   *float64
	maxTokens     *int
	topP          *float64
	stopSequences []string
	systemMessage string
	functions     []FunctionDef
	timeout       time.Duration
}

func newCallConfig() *callConfig {
	return &callConfig{}
}

func (c *callConfig) apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// WithProvider sets the chat provider (e.g., "openai", "anthropic").
func WithProvider(name string) Option {
	return func(c *callConfig) {
		c.providerName = name
	}
}

// WithModel sets the model to use (e.g., "gpt-4o-mini").
func WithModel(name string) Option {
	return func(c *callConfig) {
		c.model = name
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *callConfig) {
		c.temperature = &t
	}
}

// WithMaxTokens sets the maximum tokens in the response.
func WithMaxTokens(n int) Option {
	return func(c *callConfig) {
		c.maxTokens = &n
	}
}

// WithTopP sets the nucleus sampling parameter (0.0 to 1.0).
func WithTopP(p float64) Option {
	return func(c *callConfig) {
		c.topP = &p
	}
}

// WithStopSequences sets stop sequences to end generation.
func WithStopSequences(seqs ...string) Option {
	return func(c *callConfig) {
		c.stopSequences = seqs
	}
}

// WithSystemMessage sets a system message prepended to the history.
func WithSystemMessage(msg string) Option {
	return func(c *callConfig) {
		c.systemMessage = msg
	}
}

// WithFunctions offers function descriptors to the model.
func WithFunctions(fns ...FunctionDef) Option {
	return func(c *callConfig) {
		c.functions = append(c.functions, fns...)
	}
}

// WithTimeout bounds the whole exchange with a deadline. When the
// deadline elapses the in-flight request is aborted and any fragments
// received so far are discarded.
func WithTimeout(d time.Duration) Option {
	return func(c *callConfig) {
		c.timeout = d
	}
}

// buildRequest creates a provider.Request from the config and history.
func (c *callConfig) buildRequest(history []Message) *provider.Request {
	req := &provider.Request{
		Model:         c.model,
		Temperature:   c.temperature,
		MaxTokens:     c.maxTokens,
		TopP:          c.topP,
		StopSequences: c.stopSequences,
		Functions:     c.functions,
	}

	if c.systemMessage != "" {
		req.Messages = append(req.Messages, provider.Message{
			Role:    provider.RoleSystem,
			Content: c.systemMessage,
		})
	}

	req.Messages = append(req.Messages, history...)

	return req
}
