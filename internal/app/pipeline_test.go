package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestPipeline(t *testing.T, serverURL string, online bool) (*Pipeline, *Controller, *SessionStore) {
	t.Helper()
	store := newTestStore(t)
	ctrl := NewController(store)
	client := NewChatClient(serverURL, nil)
	streamer := NewStreamer(time.Millisecond)
	p := NewPipeline(ctrl, store, client, streamer, func() bool { return online }, "default_user", nil)
	return p, ctrl, store
}

func chatServer(t *testing.T, response string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat" {
			http.NotFound(w, r)
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.UserID == "" {
			http.Error(w, "missing user_id", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse{Response: response})
	}))
}

func TestSubmitSuccessScenario(t *testing.T) {
	srv := chatServer(t, "Bonds are generally lower risk.")
	defer srv.Close()

	p, ctrl, store := newTestPipeline(t, srv.URL, true)

	ctrl.NewConversation()
	if err := p.Submit(context.Background(), "Should I buy bonds?", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}

	sessions := store.Load()
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	sess := sessions[0]
	if sess.Title != "Should I buy bonds?..." {
		t.Fatalf("title = %q", sess.Title)
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("expected user+assistant, got %d messages", len(sess.Messages))
	}
	if sess.Messages[0].Role != RoleUser || sess.Messages[0].Content != "Should I buy bonds?" {
		t.Fatalf("user message wrong: %+v", sess.Messages[0])
	}
	if sess.Messages[1].Role != RoleAssistant || sess.Messages[1].Content != "Bonds are generally lower risk." {
		t.Fatalf("assistant message wrong: %+v", sess.Messages[1])
	}
	if p.Phase() != PhaseIdle {
		t.Fatalf("pipeline not back to idle: %v", p.Phase())
	}
}

func TestSubmitCreatesSessionWhenNoneActive(t *testing.T) {
	srv := chatServer(t, "ok")
	defer srv.Close()

	p, ctrl, store := newTestPipeline(t, srv.URL, true)
	if err := p.Submit(context.Background(), "hello", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ctrl.ActiveID() == "" {
		t.Fatalf("no session became active")
	}
	if len(store.Load()) != 1 {
		t.Fatalf("session not created")
	}
}

func TestSubmitFinalContentExactDespiteDoubleSpaces(t *testing.T) {
	full := "spaced  out   reply"
	srv := chatServer(t, full)
	defer srv.Close()

	p, ctrl, _ := newTestPipeline(t, srv.URL, true)

	var reveals []string
	err := p.Submit(context.Background(), "hi", func(ev Event) {
		if ev.Kind == EventReveal {
			reveals = append(reveals, ev.Content)
		}
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(reveals) == 0 {
		t.Fatalf("expected reveal events")
	}

	msgs := ctrl.Messages()
	if got := msgs[len(msgs)-1].Content; got != full {
		t.Fatalf("final content = %q, want exact original %q", got, full)
	}
}

func TestSubmitOfflineRejectedSilently(t *testing.T) {
	p, ctrl, store := newTestPipeline(t, "http://localhost:1", false)

	err := p.Submit(context.Background(), "hello", nil)
	if !errors.Is(err, ErrOffline) {
		t.Fatalf("expected ErrOffline, got %v", err)
	}
	if ctrl.MessageCount() != 0 {
		t.Fatalf("offline submit appended a message")
	}
	if len(store.Load()) != 0 {
		t.Fatalf("offline submit wrote to the store")
	}
}

func TestSubmitEmptyInputRejected(t *testing.T) {
	p, ctrl, _ := newTestPipeline(t, "http://localhost:1", true)

	for _, input := range []string{"", "   ", "\n\t"} {
		if err := p.Submit(context.Background(), input, nil); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("input %q: expected ErrEmptyInput, got %v", input, err)
		}
	}
	if ctrl.MessageCount() != 0 {
		t.Fatalf("empty submit appended a message")
	}
}

func TestSubmitServerFailureAppendsApology(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, _, store := newTestPipeline(t, srv.URL, true)

	var failed bool
	if err := p.Submit(context.Background(), "hello", func(ev Event) {
		if ev.Kind == EventFailed {
			failed = true
		}
	}); err != nil {
		t.Fatalf("failure path must not return an error, got %v", err)
	}
	if !failed {
		t.Fatalf("expected EventFailed")
	}

	sess := store.Load()[0]
	if len(sess.Messages) != 2 {
		t.Fatalf("expected user+apology, got %d", len(sess.Messages))
	}
	if sess.Messages[1].Role != RoleAssistant || sess.Messages[1].Content != ApologyText {
		t.Fatalf("apology wrong: %+v", sess.Messages[1])
	}
}

func TestSubmitTransportFailureAppendsApology(t *testing.T) {
	// Closed server: transport error rather than HTTP status.
	srv := chatServer(t, "unreachable")
	srv.Close()

	p, ctrl, _ := newTestPipeline(t, srv.URL, true)
	if err := p.Submit(context.Background(), "hello", nil); err != nil {
		t.Fatalf("submit: %v", err)
	}
	msgs := ctrl.Messages()
	if len(msgs) != 2 || msgs[1].Content != ApologyText {
		t.Fatalf("expected apology after transport failure: %+v", msgs)
	}
}

func TestSubmitBusyGuard(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_ = json.NewEncoder(w).Encode(chatResponse{Response: "late"})
	}))
	defer srv.Close()

	p, _, _ := newTestPipeline(t, srv.URL, true)

	firstDone := make(chan error, 1)
	go func() { firstDone <- p.Submit(context.Background(), "first", nil) }()

	// Wait until the first submission is past validation.
	deadline := time.After(2 * time.Second)
	for !p.Busy() {
		select {
		case <-deadline:
			t.Fatalf("first submission never started")
		case <-time.After(time.Millisecond):
		}
	}

	if err := p.Submit(context.Background(), "second", nil); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first submit: %v", err)
	}
}

func TestSubmitExactlyOneUserOneAssistantPerSubmission(t *testing.T) {
	srv := chatServer(t, "reply one")
	defer srv.Close()

	p, ctrl, _ := newTestPipeline(t, srv.URL, true)
	for i := 0; i < 3; i++ {
		if err := p.Submit(context.Background(), "question", nil); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	msgs := ctrl.Messages()
	if len(msgs) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		want := RoleUser
		if i%2 == 1 {
			want = RoleAssistant
		}
		if m.Role != want {
			t.Fatalf("message %d role = %s, want %s", i, m.Role, want)
		}
	}
}
