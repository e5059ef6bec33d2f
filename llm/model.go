package llm

import "context"

// Model represents a configured provider/model pair with default
// options. It provides a convenient way to reuse common configuration.
//
// Example:
//
//	model := llm.NewModel("openai", "gpt-4o-mini",
//	    llm.WithTemperature(0.7),
//	)
//
//	stream, err := model.Chat(ctx, "Tell me a joke")
type Model struct {
	providerName string
	modelName    string
	baseOpts     []Option
}

// NewModel creates a new Model with the given provider and model name.
// Additional options can be provided as default configuration.
func NewModel(providerName, modelName string, opts ...Option) *Model {
	return &Model{
		providerName: providerName,
		modelName:    modelName,
		baseOpts:     opts,
	}
}

// Chat opens a streaming call for a single user prompt using this
// model's configuration. Per-call options override the base options.
func (m *Model) Chat(ctx context.Context, prompt string, opts ...Option) (*Stream, error) {
	return Chat(ctx, prompt, m.mergeOptions(opts)...)
}

// ChatHistory opens a streaming call over a conversation using this
// model's configuration.
func (m *Model) ChatHistory(ctx context.Context, history History, opts ...Option) (*Stream, error) {
	return ChatHistory(ctx, history, m.mergeOptions(opts)...)
}

// Exchange runs one complete request/response cycle using this model's
// configuration.
func (m *Model) Exchange(ctx context.Context, history History, onFragment FragmentFunc, opts ...Option) (*AccumulatedMessage, error) {
	return Exchange(ctx, history, onFragment, m.mergeOptions(opts)...)
}

// mergeOptions combines base options with per-call options.
func (m *Model) mergeOptions(opts []Option) []Option {
	allOpts := make([]Option, 0, len(m.baseOpts)+len(opts)+2)
	allOpts = append(allOpts, WithProvider(m.providerName), WithModel(m.modelName))
	allOpts = append(allOpts, m.baseOpts...)
	allOpts = append(allOpts, opts...) // Per-call opts override base opts
	return allOpts
}
