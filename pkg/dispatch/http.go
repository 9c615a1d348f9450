package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/teslashibe/go-ptz/internal/httpc"
)

// CommandsPath is where the PTZ backend accepts autotrack commands.
const CommandsPath = "/api/autotrack/commands"

// RequestIDHeader carries a per-request id so backend logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 512

// Batch is the request body of the commands endpoint.
type Batch struct {
	Commands []Command `json:"commands"`
}

// HTTPSink posts commands to the PTZ backend.
type HTTPSink struct {
	url    string
	client *http.Client
}

// NewHTTPSink creates a sink for the backend at baseURL, e.g.
// "http://localhost:8000". A nil client means the shared httpc client.
func NewHTTPSink(baseURL string, client *http.Client) *HTTPSink {
	if client == nil {
		client = httpc.Client
	}
	return &HTTPSink{
		url:    strings.TrimRight(baseURL, "/") + CommandsPath,
		client: client,
	}
}

// URL returns the full endpoint the sink posts to.
func (s *HTTPSink) URL() string {
	return s.url
}

// Send posts one batch. An empty batch is not sent.
func (s *HTTPSink) Send(ctx context.Context, cmds []Command) error {
	if len(cmds) == 0 {
		return nil
	}

	req, err := httpc.NewJSONRequest(ctx, http.MethodPost, s.url, Batch{Commands: cmds})
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	id := uuid.NewString()
	req.Header.Set(RequestIDHeader, id)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch: post commands: %w", err)
	}
	defer resp.Body.Close()

	if !httpc.OK(resp.StatusCode) {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Body:       httpc.Drain(resp.Body, maxErrorBody),
			RequestID:  id,
		}
	}
	httpc.Drain(resp.Body, 0)
	return nil
}
