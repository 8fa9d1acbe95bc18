package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/one-dragon/onedragon-agent/pkg/engine"
)

// DefaultMaxRetries is the retry budget given to executors created by the
// Manager.
const DefaultMaxRetries = 3

// Event codes injected by the executor.
const (
	ErrorCodeRetryAttempt       = "RETRY_ATTEMPT"
	ErrorCodeMaxRetriesExceeded = "MAX_RETRIES_EXCEEDED"
)

// Executor wraps one engine runner bound to a session and adds the retry
// protocol around each run:
//
//   - the user message is submitted to the engine on the first attempt
//     only; retries resume from the current session state with a nil
//     message, so the user turn enters the history exactly once
//   - attempt failures are retried up to the configured budget with
//     exponentially spaced delays (1s, 2s, 4s, ...)
//   - a retry event is injected into the stream before each reattempt and
//     a final-failure event terminates the stream when the budget is
//     exhausted
//
// The stream never surfaces engine failures as errors; they are either
// recovered or converted into the terminal MAX_RETRIES_EXCEEDED event.
type Executor struct {
	runner     engine.Runner
	appName    string
	userID     string
	sessionID  string
	maxRetries int

	// newBackOff builds the delay schedule for one run. Tests replace it
	// to avoid real sleeps.
	newBackOff func() backoff.BackOff
}

// NewExecutor wraps runner for the given session triple.
func NewExecutor(runner engine.Runner, appName, userID, sessionID string, maxRetries int) *Executor {
	return &Executor{
		runner:     runner,
		appName:    appName,
		userID:     userID,
		sessionID:  sessionID,
		maxRetries: maxRetries,
		newBackOff: newRetryBackOff,
	}
}

// newRetryBackOff yields 1s, 2s, 4s, ... with no jitter.
func newRetryBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// RunAsync executes the agent and returns a forward-only event stream. The
// stream is a strict concatenation of engine events per attempt with
// injected retry events between attempts and, when the retry budget is
// exhausted, a terminal final-failure event. Cancelling ctx stops the
// current engine run, skips any pending delay and closes the stream.
func (e *Executor) RunAsync(ctx context.Context, message string) <-chan *engine.Event {
	out := make(chan *engine.Event)
	go func() {
		defer close(out)
		e.run(ctx, message, out)
	}()
	return out
}

// Run is the synchronous mirror of RunAsync: it drains the stream and
// returns the collected events.
func (e *Executor) Run(ctx context.Context, message string) []*engine.Event {
	var events []*engine.Event
	for event := range e.RunAsync(ctx, message) {
		events = append(events, event)
	}
	return events
}

func (e *Executor) run(ctx context.Context, message string, out chan<- *engine.Event) {
	bo := e.newBackOff()
	retries := 0

	for {
		// First attempt submits the user message; retries pass nil and
		// resume from the session state the engine already holds.
		var newMessage *engine.Content
		if retries == 0 {
			newMessage = engine.NewUserContent(message)
		}

		attemptErr := e.runAttempt(ctx, newMessage, out)
		if attemptErr == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}

		retries++
		if retries > e.maxRetries {
			e.emit(ctx, out, &engine.Event{
				Author:       "system",
				ErrorCode:    ErrorCodeMaxRetriesExceeded,
				ErrorMessage: fmt.Sprintf("Agent execution failed after %d retry attempts", e.maxRetries),
				Actions:      engine.EventActions{Escalate: true},
				Timestamp:    time.Now(),
			})
			return
		}

		label := fmt.Sprintf("Retry attempt %d/%d for agent execution", retries, e.maxRetries)
		if !e.emit(ctx, out, &engine.Event{
			Author:       "system",
			Content:      &engine.Content{Parts: []engine.Part{{Text: label}}},
			ErrorCode:    ErrorCodeRetryAttempt,
			ErrorMessage: label,
			Timestamp:    time.Now(),
		}) {
			return
		}

		delay := bo.NextBackOff()
		slog.Warn("Agent execution failed, retrying",
			"session_id", e.sessionID,
			"attempt", retries,
			"max_retries", e.maxRetries,
			"delay", delay,
			"error", attemptErr)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

// runAttempt runs the engine once, forwarding its events to out. It
// returns nil on clean termination and the failure otherwise. An engine
// event carrying an error code is classified as a failure and is not
// forwarded; it is replaced by the injected retry or final-failure event.
func (e *Executor) runAttempt(ctx context.Context, newMessage *engine.Content, out chan<- *engine.Event) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, errs := e.runner.Run(runCtx, e.userID, e.sessionID, newMessage)

	var attemptErr error
	for events != nil || errs != nil {
		select {
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if attemptErr != nil {
				continue
			}
			if event.ErrorCode != "" {
				attemptErr = fmt.Errorf("engine error event %s: %s", event.ErrorCode, event.ErrorMessage)
				cancel()
				continue
			}
			if !e.emit(ctx, out, event) {
				return ctx.Err()
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil && attemptErr == nil {
				attemptErr = err
				cancel()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return attemptErr
}

// emit sends an event unless ctx is done. Reports whether the send
// happened.
func (e *Executor) emit(ctx context.Context, out chan<- *engine.Event, event *engine.Event) bool {
	select {
	case out <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close releases the underlying engine runner.
func (e *Executor) Close(ctx context.Context) error {
	return e.runner.Close(ctx)
}

// SessionID returns the session this executor is bound to.
func (e *Executor) SessionID() string { return e.sessionID }
