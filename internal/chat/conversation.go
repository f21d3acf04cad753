// Package chat owns the client-side conversation for one transaction's
// diary: the message history, the in-progress streaming reply, and the
// generate-diary flow. All mutations funnel through a Conversation, which
// mirrors every observable state change to the local store so a reload
// restores exactly what was last on screen.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"happymoney/internal/core"
	"happymoney/internal/mirror"
	"happymoney/internal/stream"
)

// DiaryAPI is the slice of the remote API a conversation needs.
type DiaryAPI interface {
	FetchChatHistory(ctx context.Context, txID string) ([]core.ChatMessage, error)
	StreamChat(ctx context.Context, txID string, messages []core.ChatMessage, onToken stream.TokenFunc) (string, error)
	GenerateDiary(ctx context.Context, txID string, messages []core.ChatMessage) (title, body string, err error)
}

// Session is an immutable snapshot of a conversation for rendering.
// StreamingAssistant is non-nil exactly while a stream is active.
type Session struct {
	Messages           []core.ChatMessage
	StreamingAssistant *string
	Streaming          bool
	Err                string
	DiaryTitle         string
	DiaryBody          string
}

// Conversation is the state machine for one transaction's diary chat.
// At most one stream is in flight at a time: starting a new turn cancels
// and invalidates the previous one, so a superseded stream can never land
// a ghost completion.
type Conversation struct {
	txID  string
	api   DiaryAPI
	store mirror.Store

	mu           sync.Mutex
	messages     []core.ChatMessage
	partial      string
	streaming    bool
	lastErr      string
	initialAsked bool
	diaryTitle   string
	diaryBody    string
	cancel       context.CancelFunc
	seq          uint64 // turn counter; stale turns see a newer seq and stand down

	genGroup singleflight.Group
}

func NewConversation(txID string, api DiaryAPI, store mirror.Store) *Conversation {
	return &Conversation{txID: txID, api: api, store: store}
}

// Restore seeds the session from durable state: the server's history wins
// when non-empty, the local mirror fills in otherwise (and always supplies
// any drafted diary title/body). Neither source being available is fine,
// the conversation just starts empty. Never returns an error.
func (c *Conversation) Restore(ctx context.Context) {
	cached, hasCache := c.store.TryRead(ctx, mirror.Key(c.txID))

	messages, err := c.api.FetchChatHistory(ctx, c.txID)
	if err != nil {
		slog.WarnContext(ctx, "Chat history fetch failed, falling back to mirror",
			"tx_id", c.txID, "error", err)
		messages = nil
	}
	if len(messages) == 0 && hasCache {
		messages = cached.Messages
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append([]core.ChatMessage(nil), messages...)
	if hasCache {
		c.diaryTitle = cached.DiaryTitle
		c.diaryBody = cached.DiaryBody
	}
	// A restored conversation or draft means the opening question was
	// already asked in a previous life.
	if len(c.messages) > 0 || c.diaryTitle != "" || c.diaryBody != "" {
		c.initialAsked = true
	}
}

// AskInitial starts the system-initiated first turn: the assistant asks an
// opening question unprompted. Fires at most once per conversation
// lifetime, and only while the session is still empty and idle.
func (c *Conversation) AskInitial(ctx context.Context, onToken stream.TokenFunc) error {
	c.mu.Lock()
	if c.initialAsked || c.streaming || len(c.messages) > 0 {
		c.mu.Unlock()
		return nil
	}
	c.initialAsked = true
	c.mu.Unlock()

	return c.runTurn(ctx, nil, onToken)
}

// Send appends the user's message and streams the assistant's reply.
// Empty input and sends during an active stream are no-ops. On failure the
// user's message stays in history and the error lands in the session's
// error slot; the caller may simply retry.
func (c *Conversation) Send(ctx context.Context, userText string, onToken stream.TokenFunc) error {
	trimmed := strings.TrimSpace(userText)

	c.mu.Lock()
	if trimmed == "" || c.streaming {
		c.mu.Unlock()
		return nil
	}
	c.messages = append(c.messages, core.ChatMessage{Role: core.RoleUser, Content: trimmed})
	history := append([]core.ChatMessage(nil), c.messages...)
	c.writeMirrorLocked(ctx)
	c.mu.Unlock()

	return c.runTurn(ctx, history, onToken)
}

// Abort cancels any active stream and discards the partial reply. The
// in-flight turn is invalidated outright, so even a completion already on
// the wire cannot append a message afterwards. Idempotent when idle.
func (c *Conversation) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
	c.streaming = false
	c.partial = ""
}

// runTurn drives one stream turn. Any previously active turn is cancelled
// and invalidated before the new one begins.
func (c *Conversation) runTurn(ctx context.Context, history []core.ChatMessage, onToken stream.TokenFunc) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	turnCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.seq++
	seq := c.seq
	c.streaming = true
	c.partial = ""
	c.lastErr = ""
	c.mu.Unlock()

	reply, err := c.api.StreamChat(turnCtx, c.txID, history, func(token string) {
		c.mu.Lock()
		live := c.seq == seq
		if live {
			c.partial += token
		}
		c.mu.Unlock()
		if live && onToken != nil {
			onToken(token)
		}
	})
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seq != seq {
		// Superseded or aborted; a newer turn owns the session state now.
		return nil
	}

	c.streaming = false
	c.partial = ""
	c.cancel = nil

	switch {
	case err == nil:
		c.messages = append(c.messages, core.ChatMessage{Role: core.RoleAssistant, Content: reply})
		c.writeMirrorLocked(ctx)
		return nil
	case errors.Is(err, context.Canceled):
		// User abort: not an error, partial already discarded.
		return nil
	default:
		c.lastErr = err.Error()
		return err
	}
}

// GenerateDiary asks the server to write the diary from the full history.
// Concurrent invocations collapse onto one in-flight generation. Empty
// title and body is a valid result: the caller must prompt for a retry
// rather than treat it as failure.
func (c *Conversation) GenerateDiary(ctx context.Context) (title, body string, err error) {
	v, err, _ := c.genGroup.Do("generate", func() (any, error) {
		c.mu.Lock()
		history := append([]core.ChatMessage(nil), c.messages...)
		c.mu.Unlock()

		genTitle, genBody, genErr := c.api.GenerateDiary(ctx, c.txID, history)
		if genErr != nil {
			return nil, genErr
		}
		genTitle = strings.TrimSpace(genTitle)
		genBody = strings.TrimSpace(genBody)

		c.mu.Lock()
		c.diaryTitle = genTitle
		c.diaryBody = genBody
		c.writeMirrorLocked(ctx)
		c.mu.Unlock()

		return [2]string{genTitle, genBody}, nil
	})
	if err != nil {
		return "", "", err
	}
	pair := v.([2]string)
	return pair[0], pair[1], nil
}

// Snapshot returns an immutable view of the session.
func (c *Conversation) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	session := Session{
		Messages:   append([]core.ChatMessage(nil), c.messages...),
		Streaming:  c.streaming,
		Err:        c.lastErr,
		DiaryTitle: c.diaryTitle,
		DiaryBody:  c.diaryBody,
	}
	if c.streaming {
		partial := c.partial
		session.StreamingAssistant = &partial
	}
	return session
}

// writeMirrorLocked mirrors the current state, fire-and-forget. Callers
// hold c.mu.
func (c *Conversation) writeMirrorLocked(ctx context.Context) {
	c.store.Write(ctx, mirror.Key(c.txID), mirror.State{
		Messages:   append([]core.ChatMessage(nil), c.messages...),
		DiaryTitle: c.diaryTitle,
		DiaryBody:  c.diaryBody,
	})
}
