package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/whiskerworthy/dogdiet/internal/apiclient"
)

// DefaultEndpoint is where the chat backend listens unless configured otherwise.
const DefaultEndpoint = "/api/chat"

const (
	fallbackStatus   = "Failed to get response"
	fallbackNoReply  = "No response from AI"
	unreachableReply = "Failed to reach the chat service. Please try again."
)

// ReplyError is a round-trip the backend answered but did not fulfil.
type ReplyError struct {
	StatusCode int
	Message    string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("chat failed (HTTP %d): %s", e.StatusCode, e.Message)
}

// Poster sends a JSON POST.
type Poster interface {
	Post(ctx context.Context, path string, body any) (*apiclient.Response, error)
}

// HTTPTransport posts turns to the chat endpoint of the backend.
type HTTPTransport struct {
	client   Poster
	endpoint string
}

// NewHTTPTransport returns a transport for endpoint, which may be a path
// under the client's base URL or an absolute URL.
func NewHTTPTransport(client Poster, endpoint string) *HTTPTransport {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPTransport{client: client, endpoint: endpoint}
}

type replyBody struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, req Request) (string, error) {
	resp, err := t.client.Post(ctx, t.endpoint, req)
	if err != nil {
		return "", err
	}

	if !resp.OK() {
		return "", t.replyErr(resp, fallbackStatus)
	}

	var body replyBody
	if err := resp.Decode(&body); err != nil {
		return "", err
	}
	if !body.Success || body.Response == "" {
		return "", t.replyErr(resp, fallbackNoReply)
	}
	return body.Response, nil
}

func (t *HTTPTransport) replyErr(resp *apiclient.Response, fallback string) *ReplyError {
	msg := resp.Field("detail", "error")
	if msg == "" {
		msg = fallback
	}
	return &ReplyError{StatusCode: resp.StatusCode, Message: msg}
}

// errorText is what the widget shows for a failed round-trip.
func errorText(err error) string {
	var re *ReplyError
	switch {
	case errors.As(err, &re):
		return re.Message
	case errors.Is(err, apiclient.ErrUnreachable):
		return unreachableReply
	default:
		return err.Error()
	}
}
