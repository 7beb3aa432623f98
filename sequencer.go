package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// State is a position in the fallback state machine.
type State int

// Sequencer states.
const (
	StateNotStarted State = iota
	StateTrying
	StateSucceeded
	StateAllFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateTrying:
		return "Trying"
	case StateSucceeded:
		return "Succeeded"
	case StateAllFailed:
		return "AllFailed"
	default:
		return "Unknown"
	}
}

// Plan describes one run: which document to convert, where to write it,
// and how to format it.
type Plan struct {
	Input  string
	Output string
	Format *Format
}

// Outcome is the final state of a run.
type Outcome struct {
	State    State
	Result   Result   // winning attempt, zero unless State is StateSucceeded
	Attempts []Result // every attempt, in order
}

// Succeeded reports whether a backend produced the output.
func (o *Outcome) Succeeded() bool { return o.State == StateSucceeded }

// Err returns nil on success, otherwise ErrAllBackendsFailed joined with
// every attempt error.
func (o *Outcome) Err() error {
	if o.Succeeded() {
		return nil
	}
	errs := []error{ErrAllBackendsFailed}
	for _, a := range o.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errors.Join(errs...)
}

// Reporter receives progress events from a Sequencer.
type Reporter interface {
	Start(plan Plan, backends []string)
	Attempt(index, total int, backend string)
	AttemptFailed(index, total int, res Result)
	Succeeded(res Result)
	AllFailed(plan Plan, instructions []string)
}

// NopReporter discards every event.
type NopReporter struct{}

func (NopReporter) Start(Plan, []string) {}

func (NopReporter) Attempt(int, int, string) {}

func (NopReporter) AttemptFailed(int, int, Result) {}

func (NopReporter) Succeeded(Result) {}

func (NopReporter) AllFailed(Plan, []string) {}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Sequencer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFs sets the filesystem used for input checks and output writes.
func WithFs(fs afero.Fs) Option {
	return func(s *Sequencer) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(s *Sequencer) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithInstall enables on-demand installation of missing backends.
func WithInstall(enabled bool) Option {
	return func(s *Sequencer) {
		s.install = enabled
	}
}

// WithAttemptTimeout bounds each attempt. Zero means no timeout.
func WithAttemptTimeout(d time.Duration) Option {
	return func(s *Sequencer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// Sequencer tries backends in a fixed order until one succeeds.
// It is not safe for concurrent use; each Run starts from StateNotStarted.
type Sequencer struct {
	backends []Backend
	fs       afero.Fs
	logger   *zap.Logger
	reporter Reporter
	install  bool
	timeout  time.Duration
	state    State
}

// NewSequencer creates a Sequencer over backends, tried in slice order.
func NewSequencer(backends []Backend, opts ...Option) *Sequencer {
	s := &Sequencer{
		backends: backends,
		fs:       afero.NewOsFs(),
		logger:   zap.NewNop(),
		reporter: NopReporter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Sequencer) State() State { return s.state }

// Backends returns the backend names in priority order.
func (s *Sequencer) Backends() []string {
	names := make([]string, len(s.backends))
	for i, b := range s.backends {
		names[i] = b.Name()
	}
	return names
}

// Run attempts each backend in order and stops at the first success.
// When every backend fails, the reporter receives the manual instructions.
// Run never panics on backend failure.
func (s *Sequencer) Run(ctx context.Context, plan Plan) *Outcome {
	s.state = StateNotStarted
	outcome := &Outcome{}
	invoker := NewInvoker(s.fs, s.logger)
	total := len(s.backends)

	s.reporter.Start(plan, s.Backends())
	s.logger.Debug("conversion started",
		zap.String("input", plan.Input),
		zap.String("output", plan.Output),
		zap.Strings("backends", s.Backends()))

	for i, b := range s.backends {
		if ctx.Err() != nil {
			s.logger.Warn("conversion interrupted", zap.Error(ctx.Err()))
			break
		}

		s.state = StateTrying
		s.reporter.Attempt(i+1, total, b.Name())

		res := s.attempt(ctx, invoker, b, plan)
		outcome.Attempts = append(outcome.Attempts, res)

		if res.OK() {
			s.state = StateSucceeded
			outcome.State = s.state
			outcome.Result = res
			s.reporter.Succeeded(res)
			return outcome
		}

		s.logger.Info("backend failed, trying next",
			zap.String("backend", res.Backend),
			zap.Stringer("kind", res.Kind()),
			zap.Error(res.Err))
		s.reporter.AttemptFailed(i+1, total, res)
	}

	s.state = StateAllFailed
	outcome.State = s.state
	s.reporter.AllFailed(plan, ManualInstructions(plan.Input, plan.Output))
	return outcome
}

// attempt runs one backend: input check, availability check, then render.
func (s *Sequencer) attempt(ctx context.Context, invoker *Invoker, b Backend, plan Plan) Result {
	if err := invoker.CheckInput(plan.Input); err != nil {
		return Result{Backend: b.Name(), Output: plan.Output, Err: err}
	}

	if a := CheckAvailability(ctx, b, s.install, s.logger); a != Available {
		err := fmt.Errorf("%w: %s is %s", ErrBackendUnavailable, b.Name(), a)
		if a == Installable {
			err = fmt.Errorf("%w (run with --install to install it)", err)
		}
		return Result{Backend: b.Name(), Output: plan.Output, Err: err}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	return invoker.Invoke(ctx, b, plan.Input, plan.Output, plan.Format)
}
