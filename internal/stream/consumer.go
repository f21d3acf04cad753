// Package stream consumes the incremental token stream of one diary chat
// turn. The transport frames each token as "data: <text>\n\n" and closes
// the turn with a "data: [DONE]" sentinel, which is consumed but never
// forwarded.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// TokenFunc receives each token synchronously, in stream order.
type TokenFunc func(token string)

// Consume reads token frames from r until end of input, invoking onToken
// per token and accumulating the full text. Tokens are delivered strictly
// in stream order, one callback per frame, no batching.
//
// Cancellation is cooperative: the context is checked before every
// delivery, and a context-aware transport (an http.Request body created
// with the same context) unblocks in-flight reads. After cancellation the
// accumulated partial is returned alongside ctx.Err(); callers decide
// whether to discard it.
//
// A frame split across reads is carried until its terminator arrives; a
// trailing frame never terminated is dropped, matching the transport
// contract that every token frame ends in a blank line.
func Consume(ctx context.Context, r io.Reader, onToken TokenFunc) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(splitFrames)

	var acc strings.Builder
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return acc.String(), err
		}
		for _, token := range parseFrame(scanner.Text()) {
			acc.WriteString(token)
			if onToken != nil {
				onToken(token)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return acc.String(), ctxErr
		}
		return acc.String(), fmt.Errorf("read stream: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return acc.String(), err
	}
	return acc.String(), nil
}

// splitFrames tokenizes the stream into blank-line-terminated frames.
func splitFrames(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.Index(data, []byte("\n\n")); i >= 0 {
		return i + 2, data[:i], nil
	}
	if atEOF {
		// Unterminated trailing data is not a frame.
		return len(data), nil, nil
	}
	return 0, nil, nil
}

// parseFrame extracts token payloads from the data lines of one frame.
func parseFrame(frame string) []string {
	var tokens []string
	for _, line := range strings.Split(frame, "\n") {
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := line[len(dataPrefix):]
		if data == doneSentinel {
			continue
		}
		tokens = append(tokens, data)
	}
	return tokens
}
