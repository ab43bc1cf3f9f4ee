package app

import (
	"context"
	"strings"
	"time"
)

// defaultRevealDelay is the pause before each token is revealed.
const defaultRevealDelay = 50 * time.Millisecond

// Streamer reveals an already-complete response as a monotonically growing
// prefix, one space-separated token at a time, so the viewer perceives
// incremental generation.
//
// Splitting and rejoining on single spaces is lossy for runs of whitespace;
// the final overwrite with the original string (done by the caller after
// Stream returns) is what guarantees the committed content matches the server
// response exactly.
type Streamer struct {
	Delay time.Duration
}

func NewStreamer(delay time.Duration) *Streamer {
	if delay <= 0 {
		delay = defaultRevealDelay
	}
	return &Streamer{Delay: delay}
}

// Stream emits the space-joined prefix of tokens 0..i after each per-token
// delay. It returns nil after the last token, or the context error if the
// caller cancels mid-reveal. A cancelled stream simply stops emitting;
// nothing needs rolling back.
func (s *Streamer) Stream(ctx context.Context, fullText string, emit func(partial string)) error {
	tokens := strings.Split(fullText, " ")

	t := time.NewTimer(s.Delay)
	defer t.Stop()

	for i := range tokens {
		if i > 0 {
			t.Reset(s.Delay)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		emit(strings.Join(tokens[:i+1], " "))
	}
	return nil
}
