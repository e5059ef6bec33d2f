// Package llm provides a provider-agnostic surface for streaming
// chat-completion calls and for accumulating their incremental output.
package llm

import (
	"context"
	"fmt"

	"github.com/nfujita/rivulet/provider"
)

// Chat opens a streaming call for a single user prompt.
//
// Example:
//
//	stream, err := llm.Chat(ctx, "Tell me a short joke about programming.",
//	    llm.WithProvider("openai"),
//	    llm.WithModel("gpt-4o-mini"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//
//	for f := range stream.Fragments() {
//	    fmt.Print(f.Delta)
//	}
//
//	if err := stream.Err(); err != nil {
//	    return err
//	}
func Chat(ctx context.Context, prompt string, opts ...Option) (*Stream, error) {
	return ChatHistory(ctx, History{UserMessage(prompt)}, opts...)
}

// ChatHistory opens a streaming call over an existing conversation.
// The history must be non-empty.
func ChatHistory(ctx context.Context, history History, opts ...Option) (*Stream, error) {
	cfg := newCallConfig()
	cfg.apply(opts...)

	if cfg.providerName == "" {
		return nil, ErrProviderRequired
	}
	if cfg.model == "" {
		return nil, ErrModelRequired
	}
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}

	p, err := provider.Get(cfg.providerName)
	if err != nil {
		return nil, fmt.Errorf("getting provider: %w", err)
	}

	cancel := func() {}
	if cfg.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
	}

	req := cfg.buildRequest(history)

	rs, err := p.Stream(ctx, req)
	if err != nil {
		cancel()
		return nil, err
	}

	return &Stream{stream: &cancelingStream{ResponseStream: rs, cancel: cancel}}, nil
}

// Exchange runs one complete request/response cycle: it opens a
// stream over the history, consumes it to exhaustion with the given
// fragment callback, and returns the accumulated message. On failure
// no partial result is returned.
func Exchange(ctx context.Context, history History, onFragment FragmentFunc, opts ...Option) (*AccumulatedMessage, error) {
	stream, err := ChatHistory(ctx, history, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stream.Close() }()

	return stream.Collect(onFragment)
}

// cancelingStream ties a context cancel function to stream lifetime so
// WithTimeout deadlines are released when the stream is closed.
type cancelingStream struct {
	provider.ResponseStream
	cancel context.CancelFunc
}

func (s *cancelingStream) Close() error {
	s.cancel()
	return s.ResponseStream.Close()
}
