package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// States of a poll session. A session object lives for one top-level user
// query and is abandoned once it reaches a terminal state; only the remote
// chat session id survives across queries.
const (
	StateNoSession    = "NoSession"
	StateCreating     = "Creating"
	StateSessionReady = "SessionReady"
	StateSending      = "Sending"
	StatePolling      = "Polling"
	StateDone         = "Done"
	StateFailed       = "Failed"
	StateTimedOut     = "TimedOut"
)

// ErrBusy is returned when a prompt is submitted while a poll chain is still
// outstanding. New queries are rejected until the active one reaches a
// terminal state.
var ErrBusy = errors.New("assistant: a query is already in progress")

// SessionError is a terminal failure while creating the remote session or
// submitting the prompt.
type SessionError struct {
	Stage string
	Err   error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("assistant %s failed: %v", e.Stage, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// TimeoutError is the terminal state reached when the poll attempt ceiling
// is exceeded. It is distinct from a remote Failed status.
type TimeoutError struct {
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("assistant query timed out after %d poll attempts", e.Attempts)
}

// QueryFailedError is the terminal state for a remote Failed status.
type QueryFailedError struct{}

func (e *QueryFailedError) Error() string {
	return "assistant reported the query as failed"
}

// Message is one entry of a completed answer. A message may carry reasoning
// text, a tabular data preview, or both.
type Message struct {
	Reasoning string           `json:"reasoning,omitempty"`
	Columns   []string         `json:"columns,omitempty"`
	Preview   []map[string]any `json:"preview,omitempty"`
}

// Result is the outcome of one query.
type Result struct {
	State    string    `json:"state"`
	Messages []Message `json:"messages,omitempty"`

	// Attempts is the poll attempt counter at the moment the terminal state
	// was reached.
	Attempts int `json:"attempts"`
}

// Config tunes the poll loop. Zero values fall back to the defaults below.
type Config struct {
	// ServiceName routes the request to the orchestration backend.
	ServiceName string

	// InitialDelay is the wait before the first poll after a prompt is
	// accepted.
	InitialDelay time.Duration

	// PollDelay is the wait between polls, applied identically after an
	// in-progress response and after a transport error.
	PollDelay time.Duration

	// MaxAttempts caps re-polls; exceeding it is TimedOut, never Failed.
	MaxAttempts int
}

const (
	defaultServiceName  = "assist-orchestration"
	defaultInitialDelay = 8 * time.Second
	defaultPollDelay    = 5 * time.Second
	defaultMaxAttempts  = 30
)

func (c *Config) withDefaults() Config {
	out := *c
	if out.ServiceName == "" {
		out.ServiceName = defaultServiceName
	}
	if out.InitialDelay == 0 {
		out.InitialDelay = defaultInitialDelay
	}
	if out.PollDelay == 0 {
		out.PollDelay = defaultPollDelay
	}
	if out.MaxAttempts == 0 {
		out.MaxAttempts = defaultMaxAttempts
	}
	return out
}

// callParams is the wire parameter object shared by every assistant
// operation. CustomerData is the mandatory scoping flag marking the request
// as operating on customer-owned data; newCallParams is the only
// constructor, so no request can be built without it.
type callParams struct {
	ServiceName        string `json:"serviceName"`
	FunctionName       string `json:"functionName"`
	CustomerData       bool   `json:"customerData"`
	FunctionParameters any    `json:"functionParameters"`
}

func newCallParams(service, function string, params any) callParams {
	return callParams{
		ServiceName:        service,
		FunctionName:       function,
		CustomerData:       true,
		FunctionParameters: params,
	}
}

// envelope is the nested response wrapper of the orchestration backend.
type envelope struct {
	APIResult struct {
		Results []json.RawMessage `json:"results"`
	} `json:"apiResult"`
}

// first returns the first result payload, or nil when the envelope is empty.
func (e *envelope) first() json.RawMessage {
	if len(e.APIResult.Results) == 0 {
		return nil
	}
	return e.APIResult.Results[0]
}

type createChatResult struct {
	ChatID string `json:"chat_id"`
}

type sendPromptResult struct {
	MessageGroupID string `json:"message_group_id"`
	MessageGroup   struct {
		ID string `json:"id"`
	} `json:"message_group"`
}

func (r sendPromptResult) groupID() string {
	if r.MessageGroupID != "" {
		return r.MessageGroupID
	}
	return r.MessageGroup.ID
}

type pollResult struct {
	MessageGroup struct {
		Status struct {
			Status string `json:"status"`
		} `json:"status"`
		Messages map[string]wireMessage `json:"messages"`
	} `json:"message_group"`
}

type wireMessage struct {
	Reasoning    string           `json:"reasoning"`
	Columns      []string         `json:"columns"`
	PreviewArray []map[string]any `json:"preview_array"`
}

const (
	remoteStatusDone   = "DONE"
	remoteStatusFailed = "FAILED"
)
