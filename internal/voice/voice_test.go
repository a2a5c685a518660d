package voice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	widgeterrors "github.com/diogo/chatwidget/internal/errors"
)

func TestDetect_NoCapability(t *testing.T) {
	t.Setenv(EnvASRURL, "")
	t.Setenv(EnvASRCommand, "")

	if rec, ok := Detect("", ""); ok || rec != nil {
		t.Error("Detect reported a capability on a bare host")
	}
}

func TestDetect_URLWins(t *testing.T) {
	t.Setenv(EnvASRURL, "")
	t.Setenv(EnvASRCommand, "")

	rec, ok := Detect("ws://localhost:9999/asr", "")
	if !ok {
		t.Fatal("Detect = false with explicit URL")
	}
	if _, isStream := rec.(*streamRecognizer); !isStream {
		t.Errorf("Detect returned %T, want stream recognizer", rec)
	}
}

func TestDetect_EnvURL(t *testing.T) {
	t.Setenv(EnvASRURL, "ws://localhost:9999/asr")

	if _, ok := Detect("", ""); !ok {
		t.Error("Detect ignored the environment URL")
	}
}

func TestDetect_MissingCommand(t *testing.T) {
	t.Setenv(EnvASRURL, "")
	t.Setenv(EnvASRCommand, "")

	if _, ok := Detect("", "definitely-not-a-real-transcriber-binary"); ok {
		t.Error("Detect reported a capability for an unresolvable command")
	}
}

func writeStubTranscriber(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub transcriber script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "transcriber")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}
	return path
}

func TestCommandRecognizer(t *testing.T) {
	path := writeStubTranscriber(t, "#!/bin/sh\necho '  hello from the microphone  '\n")

	rec, ok := Detect("", path)
	if !ok {
		t.Fatal("Detect = false for an existing command")
	}

	got, err := rec.Recognize(context.Background())
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if got != "hello from the microphone" {
		t.Errorf("transcript = %q", got)
	}
}

func TestCommandRecognizer_Failure(t *testing.T) {
	path := writeStubTranscriber(t, "#!/bin/sh\nexit 3\n")

	rec, _ := Detect("", path)
	_, err := rec.Recognize(context.Background())

	var re *widgeterrors.RecognitionError
	if !errors.As(err, &re) {
		t.Errorf("error = %v, want RecognitionError", err)
	}
}

func asrTestServer(t *testing.T, frames []transcriptFrame) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		}
		// Hold the connection open briefly so the client closes first.
		time.Sleep(100 * time.Millisecond)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamRecognizer(t *testing.T) {
	srv := asrTestServer(t, []transcriptFrame{
		{Text: "expl", Final: false},
		{Text: "explain react", Final: false},
		{Text: " Explain React hooks ", Final: true},
	})
	defer srv.Close()

	rec := &streamRecognizer{url: wsURL(srv)}
	got, err := rec.Recognize(context.Background())
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if got != "Explain React hooks" {
		t.Errorf("transcript = %q", got)
	}
}

func TestStreamRecognizer_ServiceError(t *testing.T) {
	srv := asrTestServer(t, []transcriptFrame{{Error: "no audio device"}})
	defer srv.Close()

	rec := &streamRecognizer{url: wsURL(srv)}
	_, err := rec.Recognize(context.Background())

	var re *widgeterrors.RecognitionError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want RecognitionError", err)
	}
}

func TestStreamRecognizer_Cancel(t *testing.T) {
	// Server that never sends a final frame.
	srv := asrTestServer(t, nil)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	rec := &streamRecognizer{url: wsURL(srv)}

	errc := make(chan error, 1)
	go func() {
		_, err := rec.Recognize(ctx)
		errc <- err
	}()

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Recognize did not return after cancellation")
	}
}

func TestStreamRecognizer_Unreachable(t *testing.T) {
	rec := &streamRecognizer{url: "ws://127.0.0.1:1/asr"}

	_, err := rec.Recognize(context.Background())
	var re *widgeterrors.RecognitionError
	if !errors.As(err, &re) {
		t.Errorf("error = %v, want RecognitionError", err)
	}
}
