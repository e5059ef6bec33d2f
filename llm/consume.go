package llm

import "github.com/nfujita/rivulet/provider"

// Fragment is an alias for provider.Fragment for convenience.
type Fragment = provider.Fragment

// FunctionCallDelta is an alias for provider.FunctionCallDelta.
type FunctionCallDelta = provider.FunctionCallDelta

// AccumulatedMessage is the completed result of consuming a stream.
type AccumulatedMessage struct {
	// Text is the concatenation of every text delta, in arrival order.
	Text string

	// FunctionCall is present when the model requested a function call.
	FunctionCall *FunctionCall
}

// FunctionCall is a fully accumulated function-call request. Arguments
// is the concatenation of every arguments delta, usually a JSON object.
type FunctionCall struct {
	Name      string
	Arguments string
}

// FragmentFunc observes fragments as they arrive. It is invoked once
// per fragment carrying a text delta, in arrival order. Side effects
// (printing, counters) never influence accumulation.
type FragmentFunc func(Fragment)

// Consume drains a fragment sequence into an AccumulatedMessage.
//
// Fragments are merged in arrival order: text deltas are appended to
// the accumulated text, the function-call name is set on its first
// occurrence, and arguments deltas are appended on every occurrence.
// The sequence is complete when the source reports no more fragments.
//
// If the source fails mid-stream the partial result is discarded and
// the classified error is returned instead.
func Consume(stream provider.ResponseStream, onFragment FragmentFunc) (*AccumulatedMessage, error) {
	msg := &AccumulatedMessage{}

	for stream.Next() {
		f := stream.Current()

		if f.Delta != "" {
			msg.Text += f.Delta
			if onFragment != nil {
				onFragment(*f)
			}
		}

		if fc := f.FunctionCallDelta; fc != nil {
			if msg.FunctionCall == nil {
				msg.FunctionCall = &FunctionCall{}
			}
			if fc.Name != "" && msg.FunctionCall.Name == "" {
				msg.FunctionCall.Name = fc.Name
			}
			msg.FunctionCall.Arguments += fc.ArgumentsDelta
		}
	}

	if err := stream.Err(); err != nil {
		return nil, err
	}

	return msg, nil
}
