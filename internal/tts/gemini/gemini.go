// Package gemini implements the tts.Synthesizer using Google's Gemini
// multi-speaker speech generation API.
//
// The streaming endpoint (streamGenerateContent with alt=sse) returns
// server-sent events, each carrying a base64-encoded slice of raw PCM
// tagged with a MIME type such as "audio/L16;rate=24000". The chunks are
// forwarded in arrival order; assembling them into a playable container is
// the caller's concern.
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/podforge/podforge/internal/audio"
	"github.com/podforge/podforge/internal/config"
	"github.com/podforge/podforge/internal/tts"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// promptPreamble frames the transcript as a podcast read for the model.
const promptPreamble = "Please read aloud the following in a podcast interview style:\n"

// sseBufferSize bounds a single SSE event. Audio events carry base64 PCM
// and routinely exceed bufio.Scanner's default 64 KiB token limit.
const sseBufferSize = 16 << 20

// Synthesizer implements tts.Synthesizer against the Gemini API.
type Synthesizer struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	client      *http.Client
}

// New creates a Gemini synthesizer from config.
func New(cfg config.GeminiConfig) *Synthesizer {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Synthesizer{
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		baseURL:     baseURL,
		temperature: cfg.Temperature,
		client:      &http.Client{},
	}
}

// Synthesize submits the transcript once and streams back audio chunks.
func (s *Synthesizer) Synthesize(ctx context.Context, req tts.Request) (<-chan audio.Chunk, <-chan error) {
	chunks := make(chan audio.Chunk)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)
		if err := s.stream(ctx, req, chunks); err != nil {
			errs <- err
		}
	}()

	return chunks, errs
}

func (s *Synthesizer) stream(ctx context.Context, req tts.Request, chunks chan<- audio.Chunk) error {
	if s.apiKey == "" {
		return fmt.Errorf("gemini api key not configured")
	}

	bodyBytes, err := json.Marshal(s.buildRequest(req))
	if err != nil {
		return fmt.Errorf("marshalling generate request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", s.baseURL, s.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("creating generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("generate failed (status %d): %s", resp.StatusCode, respBody)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), sseBufferSize)

	sent := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var event generateResponse
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return fmt.Errorf("decoding stream event: %w", err)
		}

		inline := event.firstInlineData()
		if inline == nil || inline.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(inline.Data)
		if err != nil {
			return fmt.Errorf("decoding audio data: %w", err)
		}

		select {
		case chunks <- audio.Chunk{MIME: inline.MIMEType, Data: data}:
			sent++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stream: %w", err)
	}

	slog.Debug("gemini stream complete", "model", s.model, "chunks", sent)
	return nil
}

func (s *Synthesizer) buildRequest(req tts.Request) generateRequest {
	voices := make([]speakerVoiceConfig, 0, len(req.Voices.Speakers))
	for _, sv := range req.Voices.Speakers {
		voices = append(voices, speakerVoiceConfig{
			Speaker: sv.Speaker,
			VoiceConfig: voiceConfig{
				PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: sv.Voice},
			},
		})
	}

	return generateRequest{
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: promptPreamble + req.Transcript}},
			},
		},
		GenerationConfig: generationConfig{
			Temperature:        s.temperature,
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				MultiSpeakerVoiceConfig: multiSpeakerVoiceConfig{
					SpeakerVoiceConfigs: voices,
				},
			},
		},
	}
}

// --- Wire types ---

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature        float64       `json:"temperature"`
	ResponseModalities []string      `json:"responseModalities"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	MultiSpeakerVoiceConfig multiSpeakerVoiceConfig `json:"multiSpeakerVoiceConfig"`
}

type multiSpeakerVoiceConfig struct {
	SpeakerVoiceConfigs []speakerVoiceConfig `json:"speakerVoiceConfigs"`
}

type speakerVoiceConfig struct {
	Speaker     string      `json:"speaker"`
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *inlineData `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

func (r *generateResponse) firstInlineData() *inlineData {
	if len(r.Candidates) == 0 {
		return nil
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return nil
	}
	return parts[0].InlineData
}
