// Package podcast implements the generation orchestrator: it owns the TTS
// session lifecycle for one request and drives the chunk stream through
// assembly and transcoding into the final MP3 artifact.
//
// One Generator serves many concurrent requests; all mutable state
// (assembler, buffers) is request-scoped inside Generate.
package podcast

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/podforge/podforge/internal/audio"
	"github.com/podforge/podforge/internal/transcode"
	"github.com/podforge/podforge/internal/tts"
)

// defaultSpeakerLabels are assigned to the configured voices when the
// transcript carries no speaker labels of its own.
var defaultSpeakerLabels = []string{"Speaker 1", "Speaker 2"}

// Result is the finished artifact of one generation request.
type Result struct {
	// MP3 is the complete distribution-format audio.
	MP3 []byte

	// Params are the PCM parameters resolved from the backend stream.
	Params audio.Params

	// Chunks is the number of audio chunks the backend emitted.
	Chunks int
}

// Generator runs end-to-end podcast generation: transcript in, MP3 out.
type Generator struct {
	synth      tts.Synthesizer
	transcoder transcode.Transcoder
	voices     []string
	logger     *slog.Logger
}

// New creates a Generator. voices is the fixed speaker roster, in order:
// the first voice is bound to the transcript's first distinct speaker, and
// so on. Transcripts referencing more speakers than voices are rejected.
func New(synth tts.Synthesizer, transcoder transcode.Transcoder, voices []string, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		synth:      synth,
		transcoder: transcoder,
		voices:     voices,
		logger:     log.With(slog.String("component", "podcast-generator")),
	}
}

// Generate runs one generation request. Failures carry a Kind (input,
// backend, assembly, conversion) so callers can distinguish them; partial
// output is never returned as success.
func (g *Generator) Generate(ctx context.Context, transcript string) (*Result, error) {
	start := time.Now()

	if strings.TrimSpace(transcript) == "" {
		return nil, inputErr(ErrEmptyTranscript)
	}

	voiceCfg, err := g.buildVoiceConfig(transcript)
	if err != nil {
		return nil, err
	}

	assembled, chunkCount, err := g.synthesize(ctx, transcript, voiceCfg)
	if err != nil {
		return nil, err
	}

	mp3, err := g.transcoder.ToMP3(ctx, assembled.Bytes())
	if err != nil {
		return nil, conversionErr(err)
	}

	g.logger.Info("generation complete",
		"chunks", chunkCount,
		"wav_bytes", len(assembled.Header)+len(assembled.Payload),
		"mp3_bytes", len(mp3),
		"duration", time.Since(start))

	return &Result{
		MP3:    mp3,
		Params: assembled.Params,
		Chunks: chunkCount,
	}, nil
}

// buildVoiceConfig binds the transcript's distinct speaker labels to the
// configured voice roster in order of first appearance. A transcript with
// no labels gets the full roster under the default labels, matching what
// the backend expects for multi-speaker prompts.
func (g *Generator) buildVoiceConfig(transcript string) (tts.VoiceConfig, error) {
	labels := distinctSpeakers(ParseSpeakerTurns(transcript))
	if len(labels) > len(g.voices) {
		return tts.VoiceConfig{}, inputErr(fmt.Errorf("%w: %d labels, %d voices",
			ErrTooManySpeakers, len(labels), len(g.voices)))
	}
	if len(labels) == 0 {
		labels = defaultSpeakerLabels
		if len(labels) > len(g.voices) {
			labels = labels[:len(g.voices)]
		}
	}

	cfg := tts.VoiceConfig{Speakers: make([]tts.SpeakerVoice, 0, len(labels))}
	for i, label := range labels {
		cfg.Speakers = append(cfg.Speakers, tts.SpeakerVoice{
			Speaker: label,
			Voice:   g.voices[i],
		})
	}
	return cfg, nil
}

// synthesize opens one streaming session, feeds the transcript once, and
// drains the chunk stream through the assembler in strict arrival order.
func (g *Generator) synthesize(ctx context.Context, transcript string, voices tts.VoiceConfig) (audio.Assembled, int, error) {
	chunks, errs := g.synth.Synthesize(ctx, tts.Request{
		Transcript: transcript,
		Voices:     voices,
	})

	asm := audio.NewAssembler()
	var synthErr error
	for chunks != nil || errs != nil {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				chunks = nil
				continue
			}
			if err := asm.Add(chunk); err != nil {
				return audio.Assembled{}, 0, assemblyErr(err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil && synthErr == nil {
				synthErr = err
			}
		case <-ctx.Done():
			return audio.Assembled{}, 0, backendErr(ctx.Err())
		}
	}
	if synthErr != nil {
		return audio.Assembled{}, 0, backendErr(synthErr)
	}

	assembled, err := asm.Finalize()
	if err != nil {
		return audio.Assembled{}, 0, assemblyErr(err)
	}

	params := asm.Params()
	g.logger.Debug("stream assembled",
		"chunks", asm.ChunkCount(),
		"sample_rate", params.SampleRate,
		"bits_per_sample", params.BitsPerSample,
		"channels", params.Channels)
	return assembled, asm.ChunkCount(), nil
}
