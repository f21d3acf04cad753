package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"happymoney/internal/core"
	"happymoney/internal/stream"
)

type chatPayload struct {
	TxID     string             `json:"tx_id"`
	Messages []core.ChatMessage `json:"messages"`
}

// FetchChatHistory returns the server-side conversation for a transaction.
// The server is authoritative; the local mirror is only a fallback.
func (c *Client) FetchChatHistory(ctx context.Context, txID string) ([]core.ChatMessage, error) {
	query := url.Values{"tx_id": {txID}}
	var out struct {
		Messages []core.ChatMessage `json:"messages"`
	}
	if err := c.doResilient(ctx, http.MethodGet, "/diary/chat", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// StreamChat opens one chat turn and consumes its token stream, invoking
// onToken per token in stream order. An empty message list asks the server
// to open the conversation with its own question. The returned string is
// the full assistant reply; on cancellation or failure it is the partial
// accumulated so far and the error says which.
//
// Streams bypass the circuit breaker and retry: replaying half a reply is
// worse than failing it.
func (c *Client) StreamChat(ctx context.Context, txID string, messages []core.ChatMessage, onToken stream.TokenFunc) (string, error) {
	payload, err := json.Marshal(chatPayload{TxID: txID, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/diary/chat/stream", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create stream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("open chat stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", decodeError(resp)
	}

	return stream.Consume(ctx, resp.Body, onToken)
}

// GenerateDiary asks the server to write a diary from the conversation.
// Empty title and body is a valid "nothing generated" outcome, not an
// error.
func (c *Client) GenerateDiary(ctx context.Context, txID string, messages []core.ChatMessage) (title, body string, err error) {
	var out struct {
		DiaryTitle string `json:"diary_title"`
		DiaryBody  string `json:"diary_body"`
	}
	err = c.doResilient(ctx, http.MethodPost, "/diary/generate", nil,
		chatPayload{TxID: txID, Messages: messages}, &out)
	if err != nil {
		return "", "", err
	}
	return out.DiaryTitle, out.DiaryBody, nil
}

// SaveDiary persists a diary for the transaction, unconditionally
// overwriting any prior entry (last-write-wins). Confirmation for
// overwrites is the caller's job.
func (c *Client) SaveDiary(ctx context.Context, txID, diaryTitle, diaryBody string) (core.DiaryEntry, error) {
	payload := map[string]string{
		"tx_id":       txID,
		"diary_title": diaryTitle,
		"diary_body":  diaryBody,
	}
	var entry core.DiaryEntry
	if err := c.doResilient(ctx, http.MethodPost, "/diary/save", nil, payload, &entry); err != nil {
		return core.DiaryEntry{}, err
	}
	return entry, nil
}

// DiaryFilter narrows ListDiaries; nil fields are omitted.
type DiaryFilter struct {
	Year      *int
	Month     *int
	TxID      string
	PriceMin  *int
	PriceMax  *int
	Sentiment *int
}

// ListDiaries returns diary entries matching the filter, newest first as
// the server orders them. With only TxID set it doubles as the existence
// check before an overwrite.
func (c *Client) ListDiaries(ctx context.Context, filter DiaryFilter) ([]core.DiaryEntry, error) {
	query := url.Values{}
	setIntParam(query, "year", filter.Year)
	setIntParam(query, "month", filter.Month)
	if filter.TxID != "" {
		query.Set("tx_id", filter.TxID)
	}
	setIntParam(query, "price_min", filter.PriceMin)
	setIntParam(query, "price_max", filter.PriceMax)
	setIntParam(query, "sentiment", filter.Sentiment)

	var entries []core.DiaryEntry
	if err := c.doResilient(ctx, http.MethodGet, "/diary", query, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
