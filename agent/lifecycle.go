package agent

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/fnruntime/config"
	"github.com/dmitrymomot/fnruntime/handler"
	"github.com/dmitrymomot/fnruntime/logger"
	"github.com/dmitrymomot/fnruntime/runtimeapi"
)

// initErrorReportTimeout bounds the best-effort init-error POST attempted
// when NewLifecycle fails after the control-plane client is already built.
const initErrorReportTimeout = 5 * time.Second

// State is one node of the Lifecycle state machine:
// Initializing -> Running -> Draining -> Terminated, with the exceptional
// edge Running -> Failed -> Terminated.
type State int32

const (
	StateInitializing State = iota
	StateRunning
	StateDraining
	StateFailed
	StateTerminated
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateFailed:
		return "failed"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Lifecycle owns the process lifetime: it builds the control-plane client
// and Runner during construction (the "Initializing" step), then its Run
// method repeatedly calls Runner.RunOnce until a stop signal, the
// configured request bound, or a transport-terminal failure ends the loop.
type Lifecycle struct {
	cfg    config.Config
	client *runtimeapi.Client
	runner *Runner
	term   *Terminator
	log    *logger.Logger

	state   atomic.Int32
	stateMu sync.Mutex
}

// Option configures a Lifecycle constructed by NewLifecycle, mirroring the
// functional-options pattern used throughout this module.
type Option func(*Lifecycle)

// WithConfig injects an already-loaded Config, skipping config.Load.
func WithConfig(cfg config.Config) Option {
	return func(l *Lifecycle) { l.cfg = cfg }
}

// WithClient injects a pre-built control-plane client, for tests backed by
// an httptest.Server fake.
func WithClient(c *runtimeapi.Client) Option {
	return func(l *Lifecycle) { l.client = c }
}

// WithLifecycleLogger injects a logger. Defaults to logger.New().
func WithLifecycleLogger(log *logger.Logger) Option {
	return func(l *Lifecycle) {
		if log != nil {
			l.log = log
		}
	}
}

// WithTerminator injects a pre-built Terminator, for tests that want to
// trigger draining programmatically via Terminator.Trigger.
func WithTerminator(t *Terminator) Option {
	return func(l *Lifecycle) { l.term = t }
}

// NewLifecycle performs the Initializing step: load configuration (unless
// WithConfig was given), build the logger, construct the control-plane
// client, resolve the stop-signal handler, and bind the handler factory's
// output. A non-nil error here corresponds to ExitInitializationFailure.
// Failures after the client is built are also posted to the control
// plane's init-error endpoint (see reportInitFailure); the caller (cmd/
// bootstrap) is responsible for logging the error and exiting.
func NewLifecycle(h handler.ByteHandler, opts ...Option) (*Lifecycle, error) {
	l := &Lifecycle{}
	for _, opt := range opts {
		opt(l)
	}

	if l.log == nil {
		l.log = logger.New()
	}

	if l.cfg.APIEndpoint == "" {
		if err := config.Load(&l.cfg); err != nil {
			return nil, fmt.Errorf("%w: load configuration: %v", runtimeapi.ErrInitialization, err)
		}
	}

	if l.client == nil {
		l.client = runtimeapi.NewClient(l.cfg.APIEndpoint,
			runtimeapi.WithTimeout(l.cfg.RequestTimeout),
			runtimeapi.WithLogger(l.log))
	}

	if l.term == nil {
		term, err := NewTerminator(l.cfg.StopSignal)
		if err != nil {
			return nil, l.reportInitFailure(fmt.Errorf("%w: %v", runtimeapi.ErrInitialization, err))
		}
		l.term = term
	}

	if h == nil {
		return nil, l.reportInitFailure(fmt.Errorf("%w: no handler registered", runtimeapi.ErrInitialization))
	}

	l.runner = NewRunner(l.client, h, l.log, l.term)
	l.setState(StateInitializing)
	return l, nil
}

// reportInitFailure attempts to POST cause to the control plane's
// init-error endpoint before returning it, per spec.md §4.5's Failed-state
// requirement ("attempt to post a final initialization error ... if the
// failure occurred before any invocation"). By the time this is called,
// l.client is always already built (every NewLifecycle failure path after
// client construction routes through here); the POST attempt is
// best-effort and never replaces cause with its own failure.
func (l *Lifecycle) reportInitFailure(cause error) error {
	reportCtx, cancel := context.WithTimeout(context.Background(), initErrorReportTimeout)
	defer cancel()

	body := runtimeapi.ErrorBody{
		ErrorType:    "InitializationError",
		ErrorMessage: cause.Error(),
		StackTrace:   []string{},
	}
	if err := l.client.ReportInitError(reportCtx, body); err != nil {
		l.log.Warn("reportInitError failed",
			logger.Component("lifecycle"), logger.Event("init_error_post_failed"), logger.Error(err))
	}
	return cause
}

func (l *Lifecycle) setState(s State) {
	l.stateMu.Lock()
	defer l.stateMu.Unlock()
	l.state.Store(int32(s))
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	return State(l.state.Load())
}

// Run drives the loop until draining completes or a cycle fails
// transport-terminally, and returns the matching process exit code. ctx
// bounds the process's own lifetime (e.g. cancelled by the caller for
// tests); it is never cancelled mid-cycle by signal handling, since
// in-flight invocations always run to completion.
func (l *Lifecycle) Run(ctx context.Context) int {
	l.term.Start()
	defer l.term.Stop()

	l.setState(StateRunning)
	l.log.Info("lifecycle running", logger.Component("lifecycle"), logger.Event("running"))

	count := 0
	for {
		if l.term.Triggered() {
			l.log.Info("stop signal observed, draining", logger.Component("lifecycle"), logger.Event("drain_signal"))
			break
		}
		if ctx.Err() != nil {
			l.log.Info("context cancelled, draining", logger.Component("lifecycle"), logger.Event("drain_ctx"))
			break
		}

		processed, err := l.runner.RunOnce(ctx)
		if err != nil {
			l.setState(StateFailed)
			l.log.Error("cycle failed transport-terminally",
				logger.Component("lifecycle"), logger.Event("transport_failure"), logger.Error(err))
			l.setState(StateTerminated)
			return ExitTransportFailure
		}
		if !processed {
			// next() was cancelled by a stop signal before any work arrived;
			// the top-of-loop Triggered() check will observe it and drain.
			continue
		}

		count++
		if l.cfg.MaxRequests > 0 && count >= l.cfg.MaxRequests {
			l.log.Info("max requests reached, draining",
				logger.Component("lifecycle"), logger.Event("drain_bound"), logger.Count("count", count))
			break
		}
	}

	l.setState(StateDraining)
	l.setState(StateTerminated)
	l.log.Info("lifecycle terminated", logger.Component("lifecycle"), logger.Event("terminated"))
	return ExitClean
}
