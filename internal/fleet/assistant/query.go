package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/fleetrics-io/fleetrics/internal/pkg/fsmutil"
	"github.com/fleetrics-io/fleetrics/pkg/log"
)

const (
	eventCreate  = "create"
	eventReady   = "ready"
	eventSend    = "send"
	eventAccept  = "accept"
	eventFinish  = "finish"
	eventFail    = "fail"
	eventTimeout = "timeout"
)

// query is the per-prompt poll session. It is built fresh for every Ask and
// discarded once it reaches a terminal state; the chat session id it ends up
// with is the only piece the Client keeps.
type query struct {
	client    *Client
	logger    log.Logger
	machine   *fsm.FSM
	sessionID string
	groupID   string
	attempts  int
	messages  []Message
}

func (c *Client) newQuery(sessionID string) *query {
	q := &query{
		client:    c,
		logger:    c.logger,
		sessionID: sessionID,
	}

	initial := StateNoSession
	if sessionID != "" {
		initial = StateSessionReady
	}

	q.machine = fsm.NewFSM(
		initial,
		fsm.Events{
			{Name: eventCreate, Src: []string{StateNoSession}, Dst: StateCreating},
			{Name: eventReady, Src: []string{StateCreating}, Dst: StateSessionReady},
			{Name: eventSend, Src: []string{StateSessionReady}, Dst: StateSending},
			{Name: eventAccept, Src: []string{StateSending}, Dst: StatePolling},
			{Name: eventFinish, Src: []string{StatePolling}, Dst: StateDone},
			{Name: eventFail, Src: []string{StateCreating, StateSending, StatePolling}, Dst: StateFailed},
			{Name: eventTimeout, Src: []string{StatePolling}, Dst: StateTimedOut},
		},
		fsm.Callbacks{
			"enter_state": fsmutil.WrapEvent(q.logTransition),
		},
	)
	return q
}

func (q *query) logTransition(_ context.Context, event *fsm.Event) error {
	q.logger.Debug("assistant state change",
		"event", event.Event, "from", event.Src, "to", event.Dst, "attempts", q.attempts)
	return nil
}

func (q *query) transition(ctx context.Context, event string) {
	if err := q.machine.Event(ctx, event); err != nil {
		// Transitions are driven in lockstep with the loop below, so a
		// rejected event is a programming error worth surfacing loudly.
		q.logger.Error(err, "illegal assistant transition", "event", event, "state", q.machine.Current())
	}
}

// run drives the query to a terminal state. The returned Result is non-nil
// for every terminal outcome; err is nil only for Done.
func (q *query) run(ctx context.Context, prompt string) (*Result, error) {
	cfg := q.client.cfg

	if q.machine.Current() == StateNoSession {
		q.transition(ctx, eventCreate)
		id, err := q.client.createSession(ctx)
		if err != nil {
			q.transition(ctx, eventFail)
			return q.result(), &SessionError{Stage: "create-chat", Err: err}
		}
		q.sessionID = id
		q.transition(ctx, eventReady)
	}

	q.transition(ctx, eventSend)
	groupID, err := q.client.sendPrompt(ctx, q.sessionID, prompt)
	if err != nil {
		q.transition(ctx, eventFail)
		return q.result(), &SessionError{Stage: "send-prompt", Err: err}
	}
	q.groupID = groupID
	q.transition(ctx, eventAccept)

	if err := q.client.sleep(ctx, cfg.InitialDelay); err != nil {
		q.transition(ctx, eventFail)
		return q.result(), err
	}

	for {
		if q.attempts > cfg.MaxAttempts {
			q.transition(ctx, eventTimeout)
			return q.result(), &TimeoutError{Attempts: q.attempts}
		}

		status, msgs, err := q.client.pollGroup(ctx, q.sessionID, q.groupID)
		switch {
		case err != nil:
			// Transport hiccups are retried on the same cadence as an
			// in-progress answer.
			q.logger.Warn("assistant poll failed, retrying", "attempt", q.attempts, "err", err)
		case status == remoteStatusDone:
			q.messages = msgs
			q.transition(ctx, eventFinish)
			return q.result(), nil
		case status == remoteStatusFailed:
			q.transition(ctx, eventFail)
			return q.result(), &QueryFailedError{}
		}

		q.attempts++
		if err := q.client.sleep(ctx, cfg.PollDelay); err != nil {
			q.transition(ctx, eventFail)
			return q.result(), err
		}
	}
}

func (q *query) result() *Result {
	return &Result{
		State:    q.machine.Current(),
		Messages: q.messages,
		Attempts: q.attempts,
	}
}

func decode(raw json.RawMessage, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("assistant: decoding response: %w", err)
	}
	return nil
}

func errEmptyResult(fn string) error {
	return fmt.Errorf("assistant: %s returned an empty result", fn)
}
