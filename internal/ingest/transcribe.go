package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/podforge/podforge/internal/config"
)

// Transcriber converts an audio file to text against any OpenAI-compatible
// transcription endpoint (whisper.cpp server, faster-whisper, the hosted
// API).
type Transcriber struct {
	endpoint string
	client   *http.Client
}

// NewTranscriber creates a Transcriber for the given endpoint.
func NewTranscriber(endpoint string) *Transcriber {
	return &Transcriber{
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

// Transcribe uploads the audio file and returns the transcribed text.
// An empty or unintelligible transcription is an error, never an empty
// success.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}
	_ = writer.WriteField("model", "whisper-1")
	_ = writer.WriteField("response_format", "json")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding transcription: %w", err)
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", fmt.Errorf("could not transcribe audio, or audio was unintelligible")
	}

	slog.Debug("transcription complete", "text_length", len(text))
	return text, nil
}

// Service combines download and transcription into one transcript source.
type Service struct {
	downloader  *Downloader
	transcriber *Transcriber
}

// NewService creates an ingest Service from config.
func NewService(cfg config.IngestConfig) *Service {
	return &Service{
		downloader:  NewDownloader(cfg),
		transcriber: NewTranscriber(cfg.WhisperEndpoint),
	}
}

// Transcript downloads the video's audio, transcribes it, and cleans up the
// intermediate file regardless of outcome.
func (s *Service) Transcript(ctx context.Context, url string) (string, error) {
	audioPath, err := s.downloader.DownloadAudio(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove downloaded audio", "path", audioPath, "error", err)
		}
	}()

	return s.transcriber.Transcribe(ctx, audioPath)
}
