package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultErrorMessage = "request failed"

// Error is a non-2xx response from the diary API, with the server's detail
// flattened into one message.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

// IsClientError reports whether err is a 4xx API error, which retrying
// cannot fix.
func IsClientError(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
	}
	return false
}

// decodeError turns an error response into an *Error. The server reports
// problems as {"detail": ...} where detail may be a string, an object with
// a msg field, or an array of either; everything else falls back to a
// generic message.
func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode, Message: defaultErrorMessage}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return apiErr
	}

	if msg := normalizeDetail(payload.Detail); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}

func normalizeDetail(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Msg != "" {
		return obj.Msg
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if msg := normalizeDetail(item); msg != "" {
				parts = append(parts, msg)
			}
		}
		return strings.Join(parts, ", ")
	}

	return ""
}
