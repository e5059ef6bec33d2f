package llm

import (
	"encoding/json"

	"github.com/nfujita/rivulet/provider"
	"github.com/nfujita/rivulet/schema"
)

// FunctionDef is an alias for provider.FunctionDef. Function
// descriptors are offered to the model; Rivulet accumulates and
// displays the resulting calls but never executes them.
type FunctionDef = provider.FunctionDef

// NewFunction builds a function descriptor whose parameter schema is
// reflected from the input type In.
//
// Example:
//
//	type WeatherInput struct {
//	    Location string `json:"location" jsonschema:"required,description=City and state"`
//	    Unit     string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit"`
//	}
//
//	weather, err := llm.NewFunction[WeatherInput]("get_weather",
//	    "Get the current weather for a location")
func NewFunction[In any](name, description string) (FunctionDef, error) {
	params, err := schema.Parameters[In]()
	if err != nil {
		return FunctionDef{}, err
	}
	return FunctionDef{
		Name:        name,
		Description: description,
		Parameters:  params,
	}, nil
}

// MustFunction is like NewFunction but panics on error.
// Useful for package-level descriptor definitions.
func MustFunction[In any](name, description string) FunctionDef {
	f, err := NewFunction[In](name, description)
	if err != nil {
		panic(err)
	}
	return f
}

// RawFunction builds a function descriptor from a hand-written schema.
func RawFunction(name, description string, parameters json.RawMessage) FunctionDef {
	return FunctionDef{
		Name:        name,
		Description: description,
		Parameters:  parameters,
	}
}
