// Package tts defines the contract for streaming multi-speaker speech
// synthesis.
//
// A Synthesizer is handed the full speaker-tagged transcript once and emits
// an ordered, finite sequence of audio chunks. The sequence is lazy and
// non-restartable: the caller consumes it exactly once per request and must
// preserve arrival order.
package tts

import (
	"context"

	"github.com/podforge/podforge/internal/audio"
)

// SpeakerVoice binds one transcript speaker label to a named synthetic voice.
type SpeakerVoice struct {
	// Speaker is the label as it appears in the transcript (e.g., "Speaker 1").
	Speaker string

	// Voice is the backend voice name (e.g., "Zephyr").
	Voice string
}

// VoiceConfig is the immutable speaker-to-voice mapping for one generation
// request. Order is preserved when building the backend payload.
type VoiceConfig struct {
	Speakers []SpeakerVoice
}

// Request contains everything the backend needs for one synthesis session.
type Request struct {
	// Transcript is the full speaker-tagged text, submitted once.
	Transcript string

	// Voices maps the transcript's speaker labels to backend voices.
	Voices VoiceConfig
}

// Synthesizer produces a stream of audio chunks for a transcript.
//
// The chunk channel is closed when the backend signals stream completion.
// At most one error is delivered on the error channel, after which it is
// closed. Both channels must be drained.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (<-chan audio.Chunk, <-chan error)
}
