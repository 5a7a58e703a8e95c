package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w (HTTP %d): %w", ErrMalformedBody, r.StatusCode, err)
	}
	return nil
}

// Field returns the first non-empty string among keys of a JSON object body.
// Non-object bodies and non-string values yield "".
func (r *Response) Field(keys ...string) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(r.Body, &obj); err != nil {
		return ""
	}
	for _, k := range keys {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// StatusError is a non-2xx answer carrying the message the server reported.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// StatusErr builds a StatusError from the response using the first non-empty
// field among keys, falling back to fallback.
func (r *Response) StatusErr(fallback string, keys ...string) *StatusError {
	msg := r.Field(keys...)
	if msg == "" {
		msg = fallback
	}
	return &StatusError{StatusCode: r.StatusCode, Message: msg}
}
