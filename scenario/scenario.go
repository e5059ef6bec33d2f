// Package scenario defines and runs the demonstration scenarios: each
// one issues a streaming chat request and renders the incremental
// result in a particular way.
package scenario

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/nfujita/rivulet/llm"
)

// Kind selects how a scenario consumes and renders its stream.
type Kind string

const (
	// KindChat streams text and shows the collected response.
	KindChat Kind = "chat"

	// KindFunctionCall offers function descriptors and accumulates
	// the resulting call for display.
	KindFunctionCall Kind = "function-call"

	// KindLiveStats updates a words/sentences/characters counter as
	// fragments arrive.
	KindLiveStats Kind = "live-stats"

	// KindErrorHandling demonstrates the error taxonomy, typically by
	// requesting a model that does not exist.
	KindErrorHandling Kind = "error-handling"

	// KindConcurrent runs several independent streams, each with its
	// own accumulator.
	KindConcurrent Kind = "concurrent"
)

// Scenario is one demonstration, loadable from YAML.
type Scenario struct {
	Name        string `yaml:"name" validate:"required"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Kind        Kind   `yaml:"kind" validate:"omitempty,oneof=chat function-call live-stats error-handling concurrent"`

	// Provider and Model override the runner defaults when set.
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`

	System         string         `yaml:"system"`
	Prompt         string         `yaml:"prompt" validate:"required"`
	FollowUp       string         `yaml:"follow_up"`
	MaxTokens      int            `yaml:"max_tokens" validate:"omitempty,gt=0"`
	TimeoutSeconds int            `yaml:"timeout_seconds" validate:"omitempty,gt=0"`
	Streams        int            `yaml:"streams" validate:"omitempty,gt=0,lte=8"`
	Retry          bool           `yaml:"retry"`
	Functions      []FunctionSpec `yaml:"functions" validate:"dive"`
}

// FunctionSpec is a function descriptor in scenario YAML form.
type FunctionSpec struct {
	Name        string         `yaml:"name" validate:"required"`
	Description string         `yaml:"description"`
	Parameters  map[string]any `yaml:"parameters"`
}

// Descriptor converts the YAML definition into an llm.FunctionDef.
func (f FunctionSpec) Descriptor() (llm.FunctionDef, error) {
	params := json.RawMessage(`{"type":"object"}`)
	if f.Parameters != nil {
		raw, err := json.Marshal(f.Parameters)
		if err != nil {
			return llm.FunctionDef{}, fmt.Errorf("marshaling parameters for %q: %w", f.Name, err)
		}
		params = raw
	}
	return llm.FunctionDef{
		Name:        f.Name,
		Description: f.Description,
		Parameters:  params,
	}, nil
}

var validate = validator.New()

// Validate checks the scenario definition and fills in defaults.
func (s *Scenario) Validate() error {
	if s.Kind == "" {
		s.Kind = KindChat
	}
	if s.Kind == KindConcurrent && s.Streams == 0 {
		s.Streams = 3
	}
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid scenario %q: %w", s.Name, err)
	}
	return nil
}

// descriptors converts all function specs, failing on the first bad one.
func (s *Scenario) descriptors() ([]llm.FunctionDef, error) {
	if len(s.Functions) == 0 {
		return nil, nil
	}
	fns := make([]llm.FunctionDef, 0, len(s.Functions))
	for _, spec := range s.Functions {
		fn, err := spec.Descriptor()
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}
