package tts

import (
	"context"

	"github.com/podforge/podforge/internal/audio"
)

// Mock is a scripted Synthesizer for tests and local development: it replays
// a fixed chunk sequence and optionally fails afterwards.
type Mock struct {
	Chunks []audio.Chunk
	Err    error
}

// Synthesize emits the scripted chunks in order, then the scripted error
// if any.
func (m *Mock) Synthesize(ctx context.Context, req Request) (<-chan audio.Chunk, <-chan error) {
	chunks := make(chan audio.Chunk)
	errs := make(chan error, 1)
	go func() {
		defer close(chunks)
		defer close(errs)
		for _, c := range m.Chunks {
			select {
			case chunks <- c:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
		if m.Err != nil {
			errs <- m.Err
		}
	}()
	return chunks, errs
}
