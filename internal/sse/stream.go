// Package sse implements the client side of the event hub's streaming
// protocol: a long-lived HTTP response carrying newline-delimited
// "data: <json>" frames.
package sse

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Conn is one open stream to the hub. It is not safe for concurrent use;
// the subscription manager owns a Conn from a single reader goroutine.
type Conn struct {
	resp *http.Response
	sc   *bufio.Scanner
}

// maxFrameSize bounds a single hub frame. Chat and location payloads are
// well under 1 KiB; anything larger is a misbehaving hub.
const maxFrameSize = 1 << 20

// Dial opens a stream for topic. The token, when non-empty, is sent as a
// bearer credential. The request context governs the entire life of the
// stream: cancelling it closes the connection.
func Dial(ctx context.Context, httpClient *http.Client, hubURL, topic, token string) (*Conn, error) {
	u, err := url.Parse(hubURL)
	if err != nil {
		return nil, fmt.Errorf("sse: parse hub url: %w", err)
	}
	q := u.Query()
	q.Set("topic", topic)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("sse: hub returned status %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 4096), maxFrameSize)
	return &Conn{resp: resp, sc: sc}, nil
}

// Next blocks until the next data frame arrives and returns its payload.
// Comment lines and field names other than "data" are skipped. Multi-line
// data fields are joined with newlines per the SSE wire format. Returns an
// error when the stream ends or the underlying connection fails.
func (c *Conn) Next() ([]byte, error) {
	var data []string
	for c.sc.Scan() {
		line := c.sc.Text()
		switch {
		case line == "":
			// Dispatch boundary.
			if len(data) > 0 {
				return []byte(strings.Join(data, "\n")), nil
			}
		case strings.HasPrefix(line, ":"):
			// Heartbeat/comment, ignore.
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// event:/id:/retry: fields are not used by the hub.
		}
	}
	if err := c.sc.Err(); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		// Stream ended without a trailing blank line; deliver what we have.
		return []byte(strings.Join(data, "\n")), nil
	}
	return nil, fmt.Errorf("sse: stream closed")
}

// Close releases the underlying connection. Safe to call more than once.
func (c *Conn) Close() error {
	return c.resp.Body.Close()
}
