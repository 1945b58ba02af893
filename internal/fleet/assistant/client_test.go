package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core"
	"github.com/fleetrics-io/fleetrics/pkg/log"
)

// scriptedGateway replays canned responses per function name and records
// every call it sees.
type scriptedGateway struct {
	calls []callParams

	chatID  string
	groupID string

	// polls is consumed one entry per get-message-group call; an entry with
	// err set simulates a transport failure.
	polls []pollStep
}

type pollStep struct {
	status   string
	messages map[string]wireMessage
	err      error
}

func (g *scriptedGateway) BatchFetch(context.Context, []core.BatchRequest) ([]json.RawMessage, error) {
	return nil, errors.New("not used")
}

func (g *scriptedGateway) Call(_ context.Context, op string, params any, result any) error {
	p, ok := params.(callParams)
	if !ok {
		return fmt.Errorf("unexpected param type %T", params)
	}
	g.calls = append(g.calls, p)

	var payload any
	switch p.FunctionName {
	case fnCreateChat:
		if g.chatID == "" {
			return errors.New("create-chat unavailable")
		}
		payload = map[string]any{"chat_id": g.chatID}
	case fnSendPrompt:
		payload = map[string]any{"message_group_id": g.groupID}
	case fnGetMessageGroup:
		if len(g.polls) == 0 {
			return errors.New("no poll response scripted")
		}
		step := g.polls[0]
		g.polls = g.polls[1:]
		if step.err != nil {
			return step.err
		}
		payload = map[string]any{
			"message_group": map[string]any{
				"status":   map[string]any{"status": step.status},
				"messages": step.messages,
			},
		}
	default:
		return fmt.Errorf("unexpected function %q", p.FunctionName)
	}

	raw, err := json.Marshal(map[string]any{
		"apiResult": map[string]any{"results": []any{payload}},
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}

func newTestClient(gw *scriptedGateway) *Client {
	c := NewClient(gw, Config{}, log.NewNopLogger())
	c.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return c
}

func inProgress(n int) []pollStep {
	steps := make([]pollStep, n)
	for i := range steps {
		steps[i] = pollStep{status: "IN_PROGRESS"}
	}
	return steps
}

func TestAskHappyPath(t *testing.T) {
	gw := &scriptedGateway{
		chatID:  "chat-1",
		groupID: "group-1",
		polls: append(inProgress(2), pollStep{
			status: remoteStatusDone,
			messages: map[string]wireMessage{
				"m1": {Reasoning: "fleet looks healthy"},
				"m2": {Columns: []string{"vehicle", "tco"}, PreviewArray: []map[string]any{{"vehicle": "v1"}}},
				"m3": {},
			},
		}),
	}
	c := newTestClient(gw)

	res, err := c.Ask(context.Background(), "how is the fleet doing")
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, 2, res.Attempts)

	// Empty wire messages are dropped, the rest keep a stable order.
	require.Len(t, res.Messages, 2)
	assert.Equal(t, "fleet looks healthy", res.Messages[0].Reasoning)
	assert.Equal(t, []string{"vehicle", "tco"}, res.Messages[1].Columns)

	// create-chat, send-prompt, then one get-message-group per poll.
	require.Len(t, gw.calls, 5)
	assert.Equal(t, fnCreateChat, gw.calls[0].FunctionName)
	assert.Equal(t, fnSendPrompt, gw.calls[1].FunctionName)
	for _, call := range gw.calls {
		assert.True(t, call.CustomerData, "customerData must be set on %s", call.FunctionName)
		assert.Equal(t, defaultServiceName, call.ServiceName)
	}
}

func TestAskReusesSession(t *testing.T) {
	gw := &scriptedGateway{
		chatID:  "chat-1",
		groupID: "group-1",
		polls:   []pollStep{{status: remoteStatusDone}, {status: remoteStatusDone}},
	}
	c := newTestClient(gw)

	_, err := c.Ask(context.Background(), "first")
	require.NoError(t, err)
	_, err = c.Ask(context.Background(), "second")
	require.NoError(t, err)

	creates := 0
	for _, call := range gw.calls {
		if call.FunctionName == fnCreateChat {
			creates++
		}
	}
	assert.Equal(t, 1, creates, "chat session should be created once and reused")
}

func TestAskTimesOutAfterAttemptCeiling(t *testing.T) {
	gw := &scriptedGateway{
		chatID:  "chat-1",
		groupID: "group-1",
		polls:   inProgress(40),
	}
	c := newTestClient(gw)

	res, err := c.Ask(context.Background(), "slow question")
	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, StateTimedOut, res.State)
	assert.Equal(t, defaultMaxAttempts+1, res.Attempts)
	assert.Len(t, gw.polls, 40-(defaultMaxAttempts+1), "polling must stop at the ceiling")
}

func TestAskRetriesTransientPollErrors(t *testing.T) {
	gw := &scriptedGateway{
		chatID:  "chat-1",
		groupID: "group-1",
		polls: []pollStep{
			{err: errors.New("connection reset")},
			{err: errors.New("gateway timeout")},
			{status: remoteStatusDone},
		},
	}
	c := newTestClient(gw)

	res, err := c.Ask(context.Background(), "flaky network")
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, 2, res.Attempts)
}

func TestAskRemoteFailure(t *testing.T) {
	gw := &scriptedGateway{
		chatID:  "chat-1",
		groupID: "group-1",
		polls:   []pollStep{{status: remoteStatusFailed}},
	}
	c := newTestClient(gw)

	res, err := c.Ask(context.Background(), "bad question")
	var failed *QueryFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, StateFailed, res.State)
}

func TestAskSessionCreateFailure(t *testing.T) {
	gw := &scriptedGateway{chatID: ""} // create-chat errors
	c := newTestClient(gw)

	res, err := c.Ask(context.Background(), "anything")
	var sessionErr *SessionError
	require.ErrorAs(t, err, &sessionErr)
	assert.Equal(t, "create-chat", sessionErr.Stage)
	assert.Equal(t, StateFailed, res.State)

	// A failed create must not poison future queries with a bogus id.
	c.mu.Lock()
	cached := c.sessionID
	c.mu.Unlock()
	assert.Empty(t, cached)
}

func TestAskRejectsConcurrentQueries(t *testing.T) {
	gw := &scriptedGateway{
		chatID:  "chat-1",
		groupID: "group-1",
		polls:   []pollStep{{status: remoteStatusDone}},
	}
	c := newTestClient(gw)

	release := make(chan struct{})
	c.sleep = func(ctx context.Context, _ time.Duration) error {
		<-release
		return ctx.Err()
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.Ask(context.Background(), "long running")
		done <- err
	}()

	// Wait until the first query is parked in its initial delay.
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.busy
	}, time.Second, time.Millisecond)

	_, err := c.Ask(context.Background(), "impatient")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
}
