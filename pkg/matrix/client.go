// Package matrix is a minimal Matrix client-server API client covering
// the single call this tool needs: sending one room message.
package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jamswat/checkmk-matrix-notify/pkg/message"
)

const (
	msgTypeText      = "m.text"
	formatCustomHTML = "org.matrix.custom.html"
)

// Client sends messages to a single Matrix homeserver.
type Client struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

// NewClient creates a client for the given homeserver. A homeserver
// value without a scheme is reached via https; the timeout bounds the
// whole request.
func NewClient(homeserver, accessToken string, timeout time.Duration) *Client {
	base := homeserver
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return &Client{
		baseURL:     strings.TrimSuffix(base, "/"),
		accessToken: accessToken,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// messagePayload is the m.room.message event content, carrying both the
// plain-text body and its HTML rendering.
type messagePayload struct {
	MsgType       string `json:"msgtype"`
	Body          string `json:"body"`
	Format        string `json:"format,omitempty"`
	FormattedBody string `json:"formatted_body,omitempty"`
}

// Send performs exactly one delivery attempt of msg to roomID. The
// transaction id in msg makes a retried send idempotent on the
// homeserver side; this client never retries by itself.
func (c *Client) Send(ctx context.Context, roomID string, msg *message.OutgoingMessage) Outcome {
	payload := messagePayload{
		MsgType:       msgTypeText,
		Body:          msg.PlainText,
		Format:        formatCustomHTML,
		FormattedBody: msg.HTMLBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return permanent(0, fmt.Sprintf("marshal message payload: %v", err))
	}

	// Room IDs contain '!' and ':', so they must be path-escaped.
	endpoint := fmt.Sprintf("%s/_matrix/client/v3/rooms/%s/send/m.room.message/%s",
		c.baseURL, url.PathEscape(roomID), url.PathEscape(msg.TransactionID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return permanent(0, fmt.Sprintf("create send request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		// DNS, connect, TLS and timeout failures all land here; they
		// are transient from the monitoring system's point of view.
		return retryable(0, fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	// The response body carries only the event id, which we do not use.
	_, _ = io.Copy(io.Discard, resp.Body)

	return classify(resp.StatusCode)
}
