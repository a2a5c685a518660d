// Package voice provides the optional speech-recognition input adapter.
//
// The adapter exists only when the host advertises a recognition
// capability; callers receive nil otherwise and must not render the voice
// affordance at all. One recognition session runs at a time per widget:
// idle, listening, then idle again once an utterance is recognized, the
// session fails, or the user toggles it off.
package voice

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	widgeterrors "github.com/diogo/chatwidget/internal/errors"
)

// Environment variables advertising a recognition capability.
const (
	EnvASRURL     = "CHATWIDGET_ASR_URL"
	EnvASRCommand = "CHATWIDGET_ASR_COMMAND"
)

// Recognizer converts one spoken utterance into text.
type Recognizer interface {
	// Recognize blocks until one utterance is recognized, the context is
	// cancelled, or recognition fails. The transcript fully replaces the
	// pending input; it is never appended.
	Recognize(ctx context.Context) (string, error)
}

// Detect probes the host for a speech-recognition capability: a streaming
// recognizer endpoint, or a local transcriber command resolvable on PATH.
// Explicit arguments win over the environment. Returns (nil, false) when
// the host advertises nothing.
func Detect(asrURL, asrCommand string) (Recognizer, bool) {
	if asrURL == "" {
		asrURL = os.Getenv(EnvASRURL)
	}
	if asrURL != "" {
		return &streamRecognizer{url: asrURL}, true
	}

	if asrCommand == "" {
		asrCommand = os.Getenv(EnvASRCommand)
	}
	if asrCommand != "" {
		if path, err := exec.LookPath(asrCommand); err == nil {
			return &commandRecognizer{path: path}, true
		}
	}

	return nil, false
}

// streamRecognizer reads transcript frames from a websocket ASR service.
// The service captures audio on its side and streams partial results; the
// first final frame ends the session.
type streamRecognizer struct {
	url string
}

type transcriptFrame struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
	Error string `json:"error,omitempty"`
}

func (r *streamRecognizer) Recognize(ctx context.Context) (string, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return "", widgeterrors.NewRecognitionError("failed to reach recognizer", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	// Unblock the read loop when the caller cancels the session.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.SetReadDeadline(time.Now())
		case <-done:
		}
	}()

	for {
		var frame transcriptFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", widgeterrors.NewRecognitionError("recognizer connection lost", err)
		}
		if frame.Error != "" {
			return "", widgeterrors.NewRecognitionError(frame.Error, nil)
		}
		if frame.Final {
			return strings.TrimSpace(frame.Text), nil
		}
	}
}

// commandRecognizer shells out to a local transcriber that records one
// utterance and prints the transcript on stdout.
type commandRecognizer struct {
	path string
}

func (r *commandRecognizer) Recognize(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, r.path).Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", widgeterrors.NewRecognitionError("transcriber command failed", err)
	}
	return strings.TrimSpace(string(out)), nil
}
