package app

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
)

// Recognizer is the speech-to-text port. A recognition either yields a final
// transcript or an error; there is no partial-result channel.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

var ErrRecognitionActive = errors.New("recognition already in progress")

// CommandRecognizer shells out to a user-configured capture command (for
// example a whisper wrapper) and takes its stdout as the transcript. Only one
// recognition may run at a time.
type CommandRecognizer struct {
	Command string

	mu     sync.Mutex
	active bool
}

func NewCommandRecognizer(command string) *CommandRecognizer {
	return &CommandRecognizer{Command: command}
}

func (r *CommandRecognizer) Recognize(ctx context.Context) (string, error) {
	if strings.TrimSpace(r.Command) == "" {
		return "", errors.New("no speech command configured")
	}

	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return "", ErrRecognitionActive
	}
	r.active = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
	}()

	cmd := exec.CommandContext(ctx, "sh", "-c", r.Command)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}
