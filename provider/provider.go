// Package provider defines the interface for streaming chat providers.
package provider

import "context"

// Provider is the core abstraction for chat-completion providers.
// All provider implementations must satisfy this interface.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string

	// Stream opens an incremental chat-completion request.
	Stream(ctx context.Context, req *Request) (ResponseStream, error)
}

// ResponseStream is a lazy, single-pass, forward-only sequence of
// fragments. Fragments are delivered strictly in arrival order.
type ResponseStream interface {
	// Next advances to the next fragment, returns false when the
	// sequence is exhausted or a read failed.
	Next() bool

	// Current returns the current fragment.
	Current() *Fragment

	// Err returns the error that terminated the sequence, if any.
	Err() error

	// Close releases stream resources.
	Close() error

	// Usage returns token usage reported by the service, if any.
	// Only meaningful once the sequence is exhausted.
	Usage() Usage
}
