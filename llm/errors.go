package llm

import (
	"errors"

	"github.com/nfujita/rivulet/provider"
)

// Common errors.
var (
	// ErrProviderRequired is returned when WithProvider is not specified.
	ErrProviderRequired = errors.New("provider is required: use WithProvider option")

	// ErrModelRequired is returned when WithModel is not specified.
	ErrModelRequired = errors.New("model is required: use WithModel option")

	// ErrEmptyHistory is returned when a call is made with no messages.
	ErrEmptyHistory = errors.New("conversation history must not be empty")
)

// ProviderError is an alias for provider.Error for convenience.
type ProviderError = provider.Error

// Classification helpers re-exported from the provider package.
var (
	IsAuth           = provider.IsAuth
	IsRateLimited    = provider.IsRateLimited
	IsTimeout        = provider.IsTimeout
	IsInvalidRequest = provider.IsInvalidRequest
)
