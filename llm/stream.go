package llm

import (
	"iter"

	"github.com/nfujita/rivulet/provider"
)

// Stream represents an in-flight incremental response.
type Stream struct {
	stream provider.ResponseStream
	err    error
}

// Fragments returns an iterator over the stream fragments.
// This uses Go 1.23+ range-over-func.
//
// Example:
//
//	stream, err := llm.Chat(ctx, "Write a story", opts...)
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//
//	for f := range stream.Fragments() {
//	    fmt.Print(f.Delta)
//	}
func (s *Stream) Fragments() iter.Seq[Fragment] {
	return func(yield func(Fragment) bool) {
		for s.stream.Next() {
			if !yield(*s.stream.Current()) {
				return
			}
		}
		s.err = s.stream.Err()
	}
}

// Collect consumes the remaining fragments into an AccumulatedMessage,
// invoking onFragment for each text-carrying fragment. See Consume.
func (s *Stream) Collect(onFragment FragmentFunc) (*AccumulatedMessage, error) {
	msg, err := Consume(s.stream, onFragment)
	if err != nil {
		s.err = err
		return nil, err
	}
	return msg, nil
}

// Err returns any error that occurred during streaming.
func (s *Stream) Err() error {
	return s.err
}

// Close closes the stream and releases resources.
func (s *Stream) Close() error {
	return s.stream.Close()
}

// Usage returns token usage reported by the service, if any.
func (s *Stream) Usage() provider.Usage {
	return s.stream.Usage()
}
