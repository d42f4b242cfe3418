package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podforge/podforge/internal/audio"
	"github.com/podforge/podforge/internal/health"
	"github.com/podforge/podforge/internal/podcast"
)

type stubGenerator struct {
	res        *podcast.Result
	err        error
	transcript string
}

func (s *stubGenerator) Generate(ctx context.Context, transcript string) (*podcast.Result, error) {
	s.transcript = transcript
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

type stubIngest struct {
	transcript string
	err        error
}

func (s *stubIngest) Transcript(ctx context.Context, url string) (string, error) {
	return s.transcript, s.err
}

func newTestServer(gen Generator, ingest TranscriptSource) http.Handler {
	probe := health.NewProbe("podforge", "test", true)
	probe.SetReady(true)
	return New(0, gen, ingest, probe).Handler()
}

func TestGeneratePodcast(t *testing.T) {
	gen := &stubGenerator{res: &podcast.Result{
		MP3:    []byte("mp3-payload"),
		Params: audio.Params{SampleRate: 24000, BitsPerSample: 16, Channels: 1},
	}}
	h := newTestServer(gen, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-podcast",
		strings.NewReader(`{"text": "Speaker 1: Hello. Speaker 2: Hi."}`))
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "podcast.mp3")
	require.Equal(t, "mp3-payload", rec.Body.String())
	require.Equal(t, "Speaker 1: Hello. Speaker 2: Hi.", gen.transcript)
}

func TestGeneratePodcastEmptyText(t *testing.T) {
	gen := &stubGenerator{err: &podcast.Error{Kind: podcast.KindInput, Err: podcast.ErrEmptyTranscript}}
	h := newTestServer(gen, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-podcast", strings.NewReader(`{"text": ""}`))
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "input", resp.Kind)
}

func TestGeneratePodcastMalformedJSON(t *testing.T) {
	h := newTestServer(&stubGenerator{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-podcast", strings.NewReader(`{"text": "unterminated`))
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid JSON body")
}

func TestGeneratePodcastBackendFailure(t *testing.T) {
	gen := &stubGenerator{err: &podcast.Error{
		Kind: podcast.KindBackend,
		Err:  context.DeadlineExceeded,
	}}
	h := newTestServer(gen, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-podcast", strings.NewReader(`{"text": "Speaker 1: Hi."}`))
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), `"kind":"backend"`)
}

func TestGeneratePodcastClientCancellation(t *testing.T) {
	gen := &stubGenerator{err: &podcast.Error{
		Kind: podcast.KindBackend,
		Err:  context.Canceled,
	}}
	h := newTestServer(gen, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-podcast", strings.NewReader(`{"text": "Speaker 1: Hi."}`))
	h.ServeHTTP(rec, req)

	// Cancellation is the client's doing, not a backend failure.
	require.Equal(t, 499, rec.Code)
}

func TestCORSHeaders(t *testing.T) {
	gen := &stubGenerator{res: &podcast.Result{MP3: []byte("mp3")}}
	h := newTestServer(gen, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-podcast", strings.NewReader(`{"text": "Speaker 1: Hi."}`))
	req.Header.Set("Origin", "https://example.com")
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(&stubGenerator{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/generate-podcast", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestConvertYouTube(t *testing.T) {
	gen := &stubGenerator{res: &podcast.Result{MP3: []byte("yt-mp3")}}
	ingest := &stubIngest{transcript: "Speaker 1: transcribed text."}
	h := newTestServer(gen, ingest)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/convert-youtube",
		strings.NewReader(`{"youtube_url": "https://youtube.com/watch?v=abc"}`))
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "yt-mp3", rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Disposition"), "youtube_podcast.mp3")
	require.Equal(t, "Speaker 1: transcribed text.", gen.transcript)
}

func TestConvertYouTubeEmptyURL(t *testing.T) {
	h := newTestServer(&stubGenerator{}, &stubIngest{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/convert-youtube", strings.NewReader(`{"youtube_url": "  "}`))
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestServer(&stubGenerator{}, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Status           string `json:"status"`
		Service          string `json:"service"`
		APIKeyConfigured bool   `json:"api_key_configured"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "healthy", status.Status)
	require.Equal(t, "podforge", status.Service)
	require.True(t, status.APIKeyConfigured)
}

func TestHealthNotReady(t *testing.T) {
	probe := health.NewProbe("podforge", "test", false)
	h := New(0, &stubGenerator{}, nil, probe).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRootBanner(t *testing.T) {
	h := newTestServer(&stubGenerator{}, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Podcast Audio Generator API")
}
