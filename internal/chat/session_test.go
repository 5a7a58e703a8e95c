package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiskerworthy/dogdiet/internal/apiclient"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// chatBackend answers /api/chat and records raw request bodies.
type chatBackend struct {
	srv *httptest.Server

	mu     sync.Mutex
	bodies []json.RawMessage

	status int
	reply  string
}

func newChatBackend(t *testing.T, status int, reply string) *chatBackend {
	t.Helper()
	b := &chatBackend{status: status, reply: reply}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, body)
		b.mu.Unlock()
		if r.URL.Path != DefaultEndpoint || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(b.status)
		w.Write([]byte(b.reply))
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *chatBackend) session(t *testing.T, opts ...Option) *Session {
	t.Helper()
	c, err := apiclient.New(b.srv.URL, apiclient.WithHTTPClient(b.srv.Client()), apiclient.WithLogger(discard))
	require.NoError(t, err)
	return NewSession(NewHTTPTransport(c, ""), append([]Option{WithLogger(discard)}, opts...)...)
}

func (b *chatBackend) request(t *testing.T, i int) map[string]json.RawMessage {
	t.Helper()
	require.Greater(t, len(b.bodies), i)
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b.bodies[i], &m))
	return m
}

func send(s *Session, text string) bool {
	s.SetInput(text)
	return s.SendMessage(context.Background())
}

func TestSendMessage_FirstTurn(t *testing.T) {
	b := newChatBackend(t, http.StatusOK, `{"success":true,"response":"A balanced kibble."}`)
	s := b.session(t)

	require.True(t, send(s, "What food is best?"))

	st := s.State()
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "What food is best?"},
		{Role: RoleAssistant, Content: "A balanced kibble."},
	}, st.Messages)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.Error)
	assert.Empty(t, st.Input)

	req := b.request(t, 0)
	assert.JSONEq(t, `"What food is best?"`, string(req["message"]))
	assert.JSONEq(t, `[]`, string(req["conversation_history"]))
}

func TestSendMessage_HistoryExcludesCurrentTurn(t *testing.T) {
	b := newChatBackend(t, http.StatusOK, `{"success":true,"response":"ok"}`)
	s := b.session(t)

	send(s, "first")
	send(s, "  second  ")

	req := b.request(t, 1)
	assert.JSONEq(t, `"second"`, string(req["message"]))
	assert.JSONEq(t, `[{"role":"user","content":"first"},{"role":"assistant","content":"ok"}]`,
		string(req["conversation_history"]))
	assert.Len(t, s.State().Messages, 4)
}

type funcTransport func(ctx context.Context, req Request) (string, error)

func (f funcTransport) Send(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

func TestSendMessage_OptimisticAppendBeforeRequest(t *testing.T) {
	var s *Session
	var during State
	s = NewSession(funcTransport(func(ctx context.Context, req Request) (string, error) {
		during = s.State()
		return "reply", nil
	}), WithLogger(discard))

	send(s, "hello")

	assert.True(t, during.IsLoading)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "hello"}}, during.Messages)
	assert.Empty(t, during.Input)
}

func TestSendMessage_NoopWhileOutstanding(t *testing.T) {
	calls := 0
	var s *Session
	var nested bool
	var transcriptDuring int
	s = NewSession(funcTransport(func(ctx context.Context, req Request) (string, error) {
		calls++
		before := len(s.State().Messages)
		nested = send(s, "M1")
		transcriptDuring = len(s.State().Messages) - before
		return "reply", nil
	}), WithLogger(discard))

	require.True(t, send(s, "M0"))

	assert.False(t, nested, "second send while loading must be a no-op")
	assert.Equal(t, 0, transcriptDuring, "transcript must not change")
	assert.Equal(t, 1, calls)
	assert.Equal(t, "M1", s.State().Input, "the pending text stays in the input")
}

func TestSendMessage_BlankIsNoop(t *testing.T) {
	calls := 0
	s := NewSession(funcTransport(func(ctx context.Context, req Request) (string, error) {
		calls++
		return "x", nil
	}), WithLogger(discard))

	assert.False(t, send(s, ""))
	assert.False(t, send(s, " \n\t "))
	assert.Equal(t, 0, calls)
	assert.Empty(t, s.State().Messages)
}

func TestSendMessage_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
		want   string
	}{
		{"detail first", http.StatusInternalServerError, `{"detail":"AI service unavailable","error":"other"}`, "AI service unavailable"},
		{"error second", http.StatusBadRequest, `{"error":"Message is required"}`, "Message is required"},
		{"status fallback", http.StatusBadGateway, `<html>bad gateway</html>`, fallbackStatus},
		{"success false", http.StatusOK, `{"success":false,"error":"Failed to get AI response: quota"}`, "Failed to get AI response: quota"},
		{"empty response", http.StatusOK, `{"success":true,"response":""}`, fallbackNoReply},
		{"missing success", http.StatusOK, `{"response":"hi"}`, fallbackNoReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newChatBackend(t, tt.status, tt.reply)
			s := b.session(t)

			send(s, "hello")

			st := s.State()
			assert.Equal(t, tt.want, st.Error)
			assert.False(t, st.IsLoading)
			assert.Equal(t, []Message{{Role: RoleUser, Content: "hello"}}, st.Messages)
		})
	}
}

func TestSendMessage_MalformedSuccessBody(t *testing.T) {
	b := newChatBackend(t, http.StatusOK, `not json`)
	s := b.session(t)

	send(s, "hello")

	st := s.State()
	assert.NotEmpty(t, st.Error)
	assert.False(t, st.IsLoading)
	assert.Len(t, st.Messages, 1)
}

func TestSendMessage_Unreachable(t *testing.T) {
	b := newChatBackend(t, http.StatusOK, `{}`)
	s := b.session(t)
	b.srv.Close()

	send(s, "hello")

	st := s.State()
	assert.Equal(t, unreachableReply, st.Error)
	assert.False(t, st.IsLoading)
}

func TestSendMessage_ClearsPreviousError(t *testing.T) {
	fail := true
	s := NewSession(funcTransport(func(ctx context.Context, req Request) (string, error) {
		if fail {
			return "", &ReplyError{StatusCode: 500, Message: "boom"}
		}
		return "fine", nil
	}), WithLogger(discard))

	send(s, "one")
	require.Equal(t, "boom", s.State().Error)

	fail = false
	send(s, "two")
	st := s.State()
	assert.Empty(t, st.Error)
	assert.Equal(t, RoleAssistant, st.Messages[len(st.Messages)-1].Role)
}

func TestClearChat(t *testing.T) {
	b := newChatBackend(t, http.StatusOK, `{"success":true,"response":"ok"}`)
	s := b.session(t)

	send(s, "first")
	s.SetInput("draft")
	s.ClearChat()

	st := s.State()
	assert.Empty(t, st.Messages)
	assert.Empty(t, st.Error)
	assert.Equal(t, "draft", st.Input, "pending input survives a clear")

	s.SendMessage(context.Background())
	req := b.request(t, 1)
	assert.JSONEq(t, `[]`, string(req["conversation_history"]))
	assert.JSONEq(t, `"draft"`, string(req["message"]))
}

func TestHandleKey(t *testing.T) {
	calls := 0
	s := NewSession(funcTransport(func(ctx context.Context, req Request) (string, error) {
		calls++
		return "ok", nil
	}), WithLogger(discard))
	ctx := context.Background()

	s.SetInput("hi")
	assert.False(t, s.HandleKey(ctx, KeyEvent{Key: KeyEnter, Shift: true}))
	assert.False(t, s.HandleKey(ctx, KeyEvent{Key: "a"}))
	assert.Equal(t, 0, calls)

	assert.True(t, s.HandleKey(ctx, KeyEvent{Key: KeyEnter}))
	assert.Equal(t, 1, calls)
	assert.Len(t, s.State().Messages, 2)
}

func TestOnChange_ObservesLoadingTransitions(t *testing.T) {
	var loading []bool
	s := NewSession(funcTransport(func(ctx context.Context, req Request) (string, error) {
		return "", errors.New("boom")
	}), WithLogger(discard), WithOnChange(func(st State) {
		loading = append(loading, st.IsLoading)
	}))

	send(s, "hello")

	require.NotEmpty(t, loading)
	assert.Contains(t, loading, true)
	assert.False(t, loading[len(loading)-1], "session must end idle")
	assert.Equal(t, "boom", s.State().Error)
}

func TestHTTPTransport_CustomEndpoint(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"success":true,"response":"hey"}`))
	}))
	t.Cleanup(srv.Close)

	c, err := apiclient.New("", apiclient.WithHTTPClient(srv.Client()), apiclient.WithLogger(discard))
	require.NoError(t, err)

	reply, err := NewHTTPTransport(c, srv.URL+"/v2/chat").Send(context.Background(), Request{Message: "hi", History: []Message{}})
	require.NoError(t, err)
	assert.Equal(t, "hey", reply)
	assert.Equal(t, "/v2/chat", path)
}
