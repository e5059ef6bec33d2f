package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nfujita/rivulet/console"
	"github.com/nfujita/rivulet/llm"
	"github.com/nfujita/rivulet/stats"
)

// Runner executes scenarios sequentially. Every failure is reported
// and isolated to its scenario; the run itself always continues.
type Runner struct {
	out *console.Renderer
	log *logrus.Logger

	// Defaults applied when a scenario does not name its own.
	providerName string
	model        string
}

// NewRunner creates a runner with the given output sink, logger, and
// default provider/model pair.
func NewRunner(out *console.Renderer, log *logrus.Logger, providerName, model string) *Runner {
	return &Runner{
		out:          out,
		log:          log,
		providerName: providerName,
		model:        model,
	}
}

// Run executes each scenario in order. It returns the number of
// scenarios that reported a failure.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) int {
	failed := 0
	for i := range scenarios {
		s := &scenarios[i]
		r.out.Println(fmt.Sprintf("Demo %d/%d", i+1, len(scenarios)))
		if err := r.runOne(ctx, s); err != nil {
			r.out.Error(err)
			failed++
		}
		r.out.Rule()
	}
	return failed
}

func (r *Runner) runOne(ctx context.Context, s *Scenario) error {
	providerName, model := r.resolve(s)

	log := r.log.WithFields(logrus.Fields{
		"scenario": s.Name,
		"run_id":   uuid.NewString(),
		"provider": providerName,
		"model":    model,
	})

	r.out.Banner(s.Title, s.Description)

	start := time.Now()
	err := r.execute(ctx, s, providerName, model)
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		log.WithError(err).WithField("elapsed", elapsed).Warn("scenario failed")
		return err
	}

	log.WithField("elapsed", elapsed).Info("scenario completed")
	return nil
}

// resolve picks the provider and model for a scenario, falling back
// to the runner defaults.
func (r *Runner) resolve(s *Scenario) (string, string) {
	providerName := s.Provider
	if providerName == "" {
		providerName = r.providerName
	}
	model := s.Model
	if model == "" {
		model = r.model
	}
	return providerName, model
}

// options builds the call options for a scenario.
func (s *Scenario) options(providerName, model string) ([]llm.Option, error) {
	opts := []llm.Option{
		llm.WithProvider(providerName),
		llm.WithModel(model),
	}
	if s.System != "" {
		opts = append(opts, llm.WithSystemMessage(s.System))
	}
	if s.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(s.MaxTokens))
	}
	if s.TimeoutSeconds > 0 {
		opts = append(opts, llm.WithTimeout(time.Duration(s.TimeoutSeconds)*time.Second))
	}
	fns, err := s.descriptors()
	if err != nil {
		return nil, err
	}
	if len(fns) > 0 {
		opts = append(opts, llm.WithFunctions(fns...))
	}
	return opts, nil
}

func (r *Runner) execute(ctx context.Context, s *Scenario, providerName, model string) error {
	opts, err := s.options(providerName, model)
	if err != nil {
		return err
	}

	switch s.Kind {
	case KindLiveStats:
		return r.runLiveStats(ctx, s, opts)
	case KindConcurrent:
		return r.runConcurrent(ctx, s, opts)
	case KindErrorHandling:
		return r.runErrorHandling(ctx, s, opts)
	default:
		// chat and function-call share one shape: stream, print
		// deltas, then show what accumulated.
		return r.runChat(ctx, s, opts)
	}
}

// runErrorHandling expects the call to fail. A classified provider
// error is the point of the demonstration: it is rendered with its
// label and the scenario completes. Anything else is a real failure.
func (r *Runner) runErrorHandling(ctx context.Context, s *Scenario, opts []llm.Option) error {
	err := r.runChat(ctx, s, opts)
	if err == nil {
		return nil
	}
	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		r.out.Error(err)
		return nil
	}
	return err
}

// runChat streams the response while printing each text delta, then
// shows the collected message. The accumulated text is appended to the
// session history, completing the exchange.
func (r *Runner) runChat(ctx context.Context, s *Scenario, opts []llm.Option) error {
	history := llm.History{}.AddUser(s.Prompt)

	var msg *llm.AccumulatedMessage
	op := func(ctx context.Context) error {
		var err error
		msg, err = llm.Exchange(ctx, history, func(f llm.Fragment) {
			r.out.Delta(f.Delta)
		}, opts...)
		return err
	}

	if err := r.call(ctx, s, op); err != nil {
		return err
	}

	if msg.Text != "" {
		r.out.Panel("Complete Response", msg.Text)
	}
	if msg.FunctionCall != nil {
		r.out.FunctionCall(msg.FunctionCall.Name, msg.FunctionCall.Arguments)
	}
	if msg.Text == "" && msg.FunctionCall == nil {
		r.out.Println("No errors occurred")
	}

	// A follow-up turn reuses the history with the assistant's reply
	// appended, demonstrating in-session conversation memory.
	if s.FollowUp != "" {
		history = history.AddAssistant(msg.Text).AddUser(s.FollowUp)

		var followMsg *llm.AccumulatedMessage
		followOp := func(ctx context.Context) error {
			var err error
			followMsg, err = llm.Exchange(ctx, history, func(f llm.Fragment) {
				r.out.Delta(f.Delta)
			}, opts...)
			return err
		}
		if err := r.call(ctx, s, followOp); err != nil {
			return err
		}
		r.out.Panel("Follow-up Response", followMsg.Text)
	}
	return nil
}

// runLiveStats rewrites a statistics line as text fragments arrive
// instead of printing the raw deltas.
func (r *Runner) runLiveStats(ctx context.Context, s *Scenario, opts []llm.Option) error {
	history := llm.History{}.AddUser(s.Prompt)
	counter := &stats.Counter{}

	var msg *llm.AccumulatedMessage
	op := func(ctx context.Context) error {
		var err error
		msg, err = llm.Exchange(ctx, history, func(f llm.Fragment) {
			counter.Observe(f.Delta)
			r.out.StatsLine(counter)
		}, opts...)
		return err
	}

	err := r.call(ctx, s, op)
	r.out.EndStatsLine()
	if err != nil {
		return err
	}

	r.out.Panel("Streaming Content", msg.Text)
	return nil
}

// runConcurrent runs independent streams of the same prompt. Each
// stream owns its accumulator; no state is shared and cross-stream
// ordering is not guaranteed.
func (r *Runner) runConcurrent(ctx context.Context, s *Scenario, opts []llm.Option) error {
	n := s.Streams
	results := make([]*llm.AccumulatedMessage, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			history := llm.History{}.AddUser(s.Prompt)
			results[i], errs[i] = llm.Exchange(ctx, history, nil, opts...)
		}(i)
	}
	wg.Wait()

	var firstErr error
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			r.out.Error(errs[i])
			continue
		}
		r.out.Panel(fmt.Sprintf("Stream %d", i+1), results[i].Text)
	}
	return firstErr
}

// call invokes op, applying the backoff retry policy when the
// scenario asks for it.
func (r *Runner) call(ctx context.Context, s *Scenario, op func(context.Context) error) error {
	if s.Retry {
		return llm.Retry(ctx, llm.DefaultRetryPolicy(), op)
	}
	return op(ctx)
}
