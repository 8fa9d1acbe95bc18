package engine

import (
	"context"
	"time"
)

// EchoRunnerFactory produces runners that echo the user message back as a
// single agent event. It stands in for a real LLM engine in local
// development and in tests; production hosts inject their own
// RunnerFactory.
type EchoRunnerFactory struct {
	Sessions SessionStore
}

// NewEchoRunnerFactory creates an echo factory writing history into the
// given session store.
func NewEchoRunnerFactory(sessions SessionStore) *EchoRunnerFactory {
	return &EchoRunnerFactory{Sessions: sessions}
}

func (f *EchoRunnerFactory) NewRunner(_ context.Context, appName string, spec *Spec) (Runner, error) {
	return &echoRunner{appName: appName, agentName: spec.Name, sessions: f.Sessions}, nil
}

type echoRunner struct {
	appName   string
	agentName string
	sessions  SessionStore
}

func (r *echoRunner) Run(ctx context.Context, userID, sessionID string, newMessage *Content) (<-chan *Event, <-chan error) {
	events := make(chan *Event, 1)
	errs := make(chan error, 1)
	go func() {
		defer close(events)
		defer close(errs)

		key := SessionKey{AppName: r.appName, UserID: userID, SessionID: sessionID}
		text := "(resumed)"
		if newMessage != nil {
			userEvent := &Event{Author: "user", Content: newMessage, Timestamp: time.Now()}
			if err := r.sessions.AppendEvent(ctx, key, userEvent); err != nil {
				errs <- err
				return
			}
			text = newMessage.Text()
		}

		reply := &Event{
			Author:    r.agentName,
			Content:   &Content{Role: "model", Parts: []Part{{Text: text}}},
			Timestamp: time.Now(),
		}
		if err := r.sessions.AppendEvent(ctx, key, reply); err != nil {
			errs <- err
			return
		}
		select {
		case events <- reply:
		case <-ctx.Done():
		}
	}()
	return events, errs
}

func (r *echoRunner) Close(context.Context) error { return nil }
