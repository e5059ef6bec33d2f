// Package schema provides JSON Schema generation for function
// parameter descriptors.
package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Reflector is configured for function parameter schemas.
// DoNotReference inlines all definitions to avoid $ref.
var Reflector = &jsonschema.Reflector{
	DoNotReference: true,
}

// Parameters creates a JSON Schema from a Go type, for use as a
// function's parameter schema. The type should be a struct with json
// and jsonschema tags.
//
// Example:
//
//	type WeatherInput struct {
//	    Location string `json:"location" jsonschema:"required,description=City and state"`
//	    Unit     string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit"`
//	}
//
//	params, err := schema.Parameters[WeatherInput]()
func Parameters[T any]() (json.RawMessage, error) {
	var zero T
	s := Reflector.Reflect(&zero)
	return json.Marshal(s)
}

// FromValue creates a JSON Schema from a value instead of a type
// parameter.
func FromValue(v any) (json.RawMessage, error) {
	s := Reflector.Reflect(v)
	return json.Marshal(s)
}

// MustParameters is like Parameters but panics on error.
// Useful for package-level descriptor definitions.
func MustParameters[T any]() json.RawMessage {
	s, err := Parameters[T]()
	if err != nil {
		panic(err)
	}
	return s
}
