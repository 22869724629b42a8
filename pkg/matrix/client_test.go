package matrix_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamswat/checkmk-matrix-notify/pkg/matrix"
	"github.com/jamswat/checkmk-matrix-notify/pkg/message"
)

const testRoomID = "!abc123:matrix.example.org"

func testMessage() *message.OutgoingMessage {
	return &message.OutgoingMessage{
		PlainText:     "🚨 HOST PROBLEM: web01",
		HTMLBody:      "<b>🚨 HOST PROBLEM</b>: web01",
		TransactionID: message.NewTransactionID(),
	}
}

func TestSend_Success(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotAuth   string
		gotBody   map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"event_id":"$evt"}`))
	}))
	defer server.Close()

	c := matrix.NewClient(server.URL, "secret-token", 5*time.Second)
	msg := testMessage()
	out := c.Send(context.Background(), testRoomID, msg)

	assert.Equal(t, matrix.StatusSent, out.Status)
	assert.Equal(t, http.StatusOK, out.HTTPStatus)

	assert.Equal(t, http.MethodPut, gotMethod)
	wantPath := "/_matrix/client/v3/rooms/" + testRoomID + "/send/m.room.message/" + msg.TransactionID
	assert.Equal(t, wantPath, gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)

	assert.Equal(t, "m.text", gotBody["msgtype"])
	assert.Equal(t, msg.PlainText, gotBody["body"])
	assert.Equal(t, "org.matrix.custom.html", gotBody["format"])
	assert.Equal(t, msg.HTMLBody, gotBody["formatted_body"])
}

func TestSend_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   matrix.Status
	}{
		{"200 ok", http.StatusOK, matrix.StatusSent},
		{"201 created", http.StatusCreated, matrix.StatusSent},
		{"401 bad token", http.StatusUnauthorized, matrix.StatusPermanent},
		{"403 forbidden", http.StatusForbidden, matrix.StatusPermanent},
		{"404 bad room", http.StatusNotFound, matrix.StatusPermanent},
		{"429 rate limited", http.StatusTooManyRequests, matrix.StatusRetryable},
		{"500 server error", http.StatusInternalServerError, matrix.StatusRetryable},
		{"503 unavailable", http.StatusServiceUnavailable, matrix.StatusRetryable},
		{"302 unexpected", http.StatusFound, matrix.StatusRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			c := matrix.NewClient(server.URL, "token", 5*time.Second)
			out := c.Send(context.Background(), testRoomID, testMessage())

			assert.Equal(t, tt.want, out.Status)
			assert.Equal(t, tt.status, out.HTTPStatus)
		})
	}
}

func TestSend_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := server.URL
	server.Close()

	c := matrix.NewClient(addr, "token", 2*time.Second)
	out := c.Send(context.Background(), testRoomID, testMessage())

	assert.Equal(t, matrix.StatusRetryable, out.Status)
	assert.Zero(t, out.HTTPStatus)
	assert.NotEmpty(t, out.Reason)
}

func TestSend_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	c := matrix.NewClient(server.URL, "token", 50*time.Millisecond)
	out := c.Send(context.Background(), testRoomID, testMessage())

	assert.Equal(t, matrix.StatusRetryable, out.Status)
}

func TestSend_ReasonNeverContainsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	const token = "syt_very_secret_token"
	c := matrix.NewClient(server.URL, token, 5*time.Second)
	out := c.Send(context.Background(), testRoomID, testMessage())

	assert.Equal(t, matrix.StatusPermanent, out.Status)
	assert.NotContains(t, out.Reason, token)
}

func TestSend_ExactlyOneRequest(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := matrix.NewClient(server.URL, "token", 5*time.Second)
	out := c.Send(context.Background(), testRoomID, testMessage())

	assert.Equal(t, matrix.StatusRetryable, out.Status)
	assert.Equal(t, 1, calls)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "sent", matrix.StatusSent.String())
	assert.Equal(t, "retryable", matrix.StatusRetryable.String())
	assert.Equal(t, "permanent", matrix.StatusPermanent.String())
}
