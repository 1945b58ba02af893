package assistant

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fleetrics-io/fleetrics/internal/fleet/core"
	"github.com/fleetrics-io/fleetrics/internal/pkg/metrics"
	"github.com/fleetrics-io/fleetrics/pkg/log"
)

const (
	opAssist = "GetAssistResults"

	fnCreateChat      = "create-chat"
	fnSendPrompt      = "send-prompt"
	fnGetMessageGroup = "get-message-group"
)

// Client submits natural-language prompts to the assistant backend and polls
// for the completed answer. It holds at most one query in flight and reuses
// the remote chat session across queries once one has been created.
type Client struct {
	gateway core.Gateway
	cfg     Config
	logger  log.Logger

	// sleep is replaceable in tests to collapse the poll delays.
	sleep func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	busy      bool
	sessionID string
}

func NewClient(gw core.Gateway, cfg Config, logger log.Logger) *Client {
	logger = log.OrStd(logger)
	return &Client{
		gateway: gw,
		cfg:     cfg.withDefaults(),
		logger:  logger.WithName("assistant"),
		sleep:   sleepCtx,
	}
}

// Ask runs one prompt to completion. It blocks through the whole poll chain
// and returns the final result; a non-nil error accompanies every terminal
// state other than Done. While a chain is outstanding, concurrent calls are
// rejected with ErrBusy.
func (c *Client) Ask(ctx context.Context, prompt string) (*Result, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.busy = true
	sessionID := c.sessionID
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	q := c.newQuery(sessionID)
	res, err := q.run(ctx, prompt)
	if res != nil {
		metrics.AssistantQueryTotal.WithLabelValues(res.State).Inc()
		metrics.AssistantPollAttempts.Observe(float64(res.Attempts))
	}
	if q.sessionID != "" {
		c.mu.Lock()
		c.sessionID = q.sessionID
		c.mu.Unlock()
	}
	return res, err
}

// createSession calls create-chat and returns the new chat session id.
func (c *Client) createSession(ctx context.Context) (string, error) {
	var env envelope
	params := newCallParams(c.cfg.ServiceName, fnCreateChat, map[string]any{})
	if err := c.gateway.Call(ctx, opAssist, params, &env); err != nil {
		return "", err
	}
	var created createChatResult
	if raw := env.first(); raw != nil {
		if err := decode(raw, &created); err != nil {
			return "", err
		}
	}
	if created.ChatID == "" {
		return "", errEmptyResult("create-chat")
	}
	return created.ChatID, nil
}

// sendPrompt submits the prompt on an existing session and returns the
// message group id to poll.
func (c *Client) sendPrompt(ctx context.Context, sessionID, prompt string) (string, error) {
	var env envelope
	params := newCallParams(c.cfg.ServiceName, fnSendPrompt, map[string]any{
		"chat_id": sessionID,
		"prompt":  prompt,
	})
	if err := c.gateway.Call(ctx, opAssist, params, &env); err != nil {
		return "", err
	}
	var sent sendPromptResult
	if raw := env.first(); raw != nil {
		if err := decode(raw, &sent); err != nil {
			return "", err
		}
	}
	if sent.groupID() == "" {
		return "", errEmptyResult("send-prompt")
	}
	return sent.groupID(), nil
}

// pollGroup fetches the message group once and reports its remote status
// with any accumulated messages.
func (c *Client) pollGroup(ctx context.Context, sessionID, groupID string) (string, []Message, error) {
	var env envelope
	params := newCallParams(c.cfg.ServiceName, fnGetMessageGroup, map[string]any{
		"chat_id":          sessionID,
		"message_group_id": groupID,
	})
	if err := c.gateway.Call(ctx, opAssist, params, &env); err != nil {
		return "", nil, err
	}
	var polled pollResult
	if raw := env.first(); raw != nil {
		if err := decode(raw, &polled); err != nil {
			return "", nil, err
		}
	}
	return polled.MessageGroup.Status.Status, flattenMessages(polled.MessageGroup.Messages), nil
}

// flattenMessages orders the keyed wire messages deterministically and drops
// entries carrying neither reasoning nor a preview.
func flattenMessages(in map[string]wireMessage) []Message {
	if len(in) == 0 {
		return nil
	}
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Message, 0, len(in))
	for _, k := range keys {
		m := in[k]
		if m.Reasoning == "" && len(m.PreviewArray) == 0 {
			continue
		}
		out = append(out, Message{
			Reasoning: m.Reasoning,
			Columns:   m.Columns,
			Preview:   m.PreviewArray,
		})
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
