package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diogo/chatwidget/internal/completion"
	widgeterrors "github.com/diogo/chatwidget/internal/errors"
	"github.com/diogo/chatwidget/internal/history"
	"github.com/diogo/chatwidget/internal/models"
	"github.com/diogo/chatwidget/internal/reveal"
	"github.com/diogo/chatwidget/internal/store"
)

const sysPrompt = "You are a helpful AI assistant."

func newSession(t *testing.T, mock *completion.MockCompleter) (*Session, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	return New(st, "", mock, sysPrompt), st
}

func TestSend_PersistedLogMatchesMemory(t *testing.T) {
	mock := &completion.MockCompleter{Reply: "hello there"}
	s, st := newSession(t, mock)

	for _, text := range []string{"first", "second", "third"} {
		if _, err := s.Send(context.Background(), text); err != nil {
			t.Fatalf("Send(%q) failed: %v", text, err)
		}

		mem := s.Messages()
		persisted := history.Load(st, s.Key())
		if len(persisted) != len(mem) {
			t.Fatalf("persisted %d messages, memory has %d", len(persisted), len(mem))
		}
		for i := range mem {
			if persisted[i].Role != mem[i].Role || persisted[i].Content != mem[i].Content {
				t.Errorf("message %d: persisted {%s %q}, memory {%s %q}",
					i, persisted[i].Role, persisted[i].Content, mem[i].Role, mem[i].Content)
			}
		}
	}
}

func TestSubmit_EmptyInput(t *testing.T) {
	mock := &completion.MockCompleter{Reply: "unused"}
	s, _ := newSession(t, mock)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := s.Submit(text)
		if !errors.Is(err, widgeterrors.ErrEmptyInput) {
			t.Errorf("Submit(%q) = %v, want ErrEmptyInput", text, err)
		}
	}

	if n := len(s.Messages()); n != 0 {
		t.Errorf("log has %d messages after empty submissions, want 0", n)
	}
	if mock.CallCount != 0 {
		t.Errorf("completer invoked %d times, want 0", mock.CallCount)
	}
}

func TestSubmit_RejectedWhileOutstanding(t *testing.T) {
	mock := &completion.MockCompleter{Reply: "ok"}
	s, _ := newSession(t, mock)

	if _, err := s.Submit("first"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	_, err := s.Submit("second")
	if !errors.Is(err, widgeterrors.ErrBusy) {
		t.Errorf("second Submit = %v, want ErrBusy", err)
	}
	if n := len(s.Messages()); n != 1 {
		t.Errorf("log has %d messages, want 1", n)
	}

	reply := s.Resolve(context.Background())
	s.Commit(reply)

	if mock.CallCount != 1 {
		t.Errorf("completer invoked %d times, want exactly 1", mock.CallCount)
	}
	if s.InFlight() {
		t.Error("session still in flight after Commit")
	}
}

func TestSend_RemoteRejected(t *testing.T) {
	mock := &completion.MockCompleter{
		Err: widgeterrors.NewRemoteError(500, completion.Endpoint, "boom"),
	}
	s, _ := newSession(t, mock)

	reply, err := s.Send(context.Background(), "hello?")
	if err != nil {
		t.Fatalf("Send must resolve the exchange, got %v", err)
	}
	if reply.Content != Apology {
		t.Errorf("reply = %q, want the fixed apology", reply.Content)
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("log has %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[0].Content != "hello?" {
		t.Errorf("user turn missing: %+v", msgs[0])
	}
	if msgs[1].Role != models.RoleAssistant || msgs[1].Content != Apology {
		t.Errorf("apology turn wrong: %+v", msgs[1])
	}
}

func TestRevealDelaysCommit(t *testing.T) {
	mock := &completion.MockCompleter{Reply: "abc"}
	s, _ := newSession(t, mock)

	if _, err := s.Submit("show me"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	replyMsg := s.Resolve(context.Background())

	run := reveal.Start(replyMsg.Content, time.Millisecond, true)
	var prefixes []string
	for prefix := range run.C {
		prefixes = append(prefixes, prefix)
		if n := len(s.Messages()); n != 1 {
			t.Fatalf("reply committed mid-reveal: log has %d messages", n)
		}
		if s.InFlight() != true {
			t.Fatal("exchange no longer outstanding mid-reveal")
		}
	}
	s.Commit(replyMsg)

	want := []string{"a", "ab", "abc"}
	if len(prefixes) != len(want) {
		t.Fatalf("prefixes = %v, want %v", prefixes, want)
	}
	for i := range want {
		if prefixes[i] != want[i] {
			t.Errorf("prefix %d = %q, want %q", i, prefixes[i], want[i])
		}
	}

	msgs := s.Messages()
	if len(msgs) != 2 || msgs[1].Content != "abc" {
		t.Errorf("log after commit = %+v", msgs)
	}
}

func TestClear(t *testing.T) {
	mock := &completion.MockCompleter{Reply: "ack"}
	s, st := newSession(t, mock)

	_, _ = s.Send(context.Background(), "remember this")
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if n := len(s.Messages()); n != 0 {
		t.Errorf("in-memory log has %d messages after Clear", n)
	}
	if _, err := st.Get(s.Key()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("persisted value still present: %v", err)
	}
	if n := len(history.Load(st, s.Key())); n != 0 {
		t.Errorf("Load after Clear = %d messages, want 0", n)
	}
}

func TestQuickPromptScenario(t *testing.T) {
	mock := &completion.MockCompleter{Reply: "Hooks are functions..."}
	s, _ := newSession(t, mock)

	const prompt = "Explain React hooks"
	reply, err := s.Send(context.Background(), prompt)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if mock.CallCount != 1 {
		t.Fatalf("completer invoked %d times, want 1", mock.CallCount)
	}
	if mock.LastSystem != sysPrompt {
		t.Errorf("request system instruction = %q", mock.LastSystem)
	}
	if len(mock.LastHistory) != 0 {
		t.Errorf("request carried %d prior messages, want 0", len(mock.LastHistory))
	}
	if mock.LastUser != prompt {
		t.Errorf("request user text = %q, want %q", mock.LastUser, prompt)
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("log has %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[0].Content != prompt {
		t.Errorf("messages[0] = {%s %q}", msgs[0].Role, msgs[0].Content)
	}
	if msgs[1].Role != models.RoleAssistant || msgs[1].Content != "Hooks are functions..." {
		t.Errorf("messages[1] = {%s %q}", msgs[1].Role, msgs[1].Content)
	}
	if reply.Content != "Hooks are functions..." {
		t.Errorf("reply = %q", reply.Content)
	}
}

func TestNew_RestoresPersistedLog(t *testing.T) {
	st, _ := store.New(t.TempDir())
	mock := &completion.MockCompleter{Reply: "again"}

	first := New(st, "", mock, sysPrompt)
	_, _ = first.Send(context.Background(), "hello")

	second := New(st, "", mock, sysPrompt)
	msgs := second.Messages()
	if len(msgs) != 2 {
		t.Fatalf("restored %d messages, want 2", len(msgs))
	}
	if msgs[0].Content != "hello" || msgs[1].Content != "again" {
		t.Errorf("restored log = %+v", msgs)
	}
}

func TestFullHistoryReplay(t *testing.T) {
	mock := &completion.MockCompleter{Reply: "reply"}
	s, _ := newSession(t, mock)

	_, _ = s.Send(context.Background(), "one")
	_, _ = s.Send(context.Background(), "two")

	// The second request must replay the full prior history in order.
	if len(mock.LastHistory) != 2 {
		t.Fatalf("second request carried %d prior messages, want 2", len(mock.LastHistory))
	}
	if mock.LastHistory[0].Content != "one" || mock.LastHistory[1].Content != "reply" {
		t.Errorf("prior history = %+v", mock.LastHistory)
	}
	if mock.LastUser != "two" {
		t.Errorf("user text = %q, want %q", mock.LastUser, "two")
	}
}
