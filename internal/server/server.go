// Package server implements the HTTP service mode for podforge.
//
// It exposes a REST API that accepts transcript text (or a YouTube URL) and
// responds with the generated podcast as an MP3 byte stream. Failures are
// returned as a structured error payload whose kind distinguishes client
// input problems from backend, assembly, and conversion failures.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/podforge/podforge/internal/health"
	"github.com/podforge/podforge/internal/podcast"
)

// maxRequestBody bounds transcript uploads.
const maxRequestBody = 1 << 20

// Generator runs one end-to-end podcast generation.
type Generator interface {
	Generate(ctx context.Context, transcript string) (*podcast.Result, error)
}

// TranscriptSource supplies transcript text for non-text inputs.
type TranscriptSource interface {
	Transcript(ctx context.Context, url string) (string, error)
}

// Server is the podforge HTTP API server.
type Server struct {
	port   int
	gen    Generator
	ingest TranscriptSource
	probe  *health.Probe
	server *http.Server
}

// New creates a Server on the given port.
func New(port int, gen Generator, ingest TranscriptSource, probe *health.Probe) *Server {
	return &Server{port: port, gen: gen, ingest: ingest, probe: probe}
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /generate-podcast", s.handleGenerate)
	mux.HandleFunc("POST /convert-youtube", s.handleConvertYouTube)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	if s.probe != nil {
		s.probe.Register(mux)
	}

	// Swagger UI — serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return withCORS(mux)
}

// withCORS applies the permissive cross-origin policy browser clients need
// to call the API directly, and answers preflight requests before they hit
// the method-routed mux.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe starts the API server. It blocks until the context is
// cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("api server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("api listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

type podcastRequest struct {
	Text string `json:"text"`
}

type youtubeRequest struct {
	YouTubeURL string `json:"youtube_url"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Hint  string `json:"hint,omitempty"`
}

// handleGenerate processes a POST /generate-podcast request.
//
// @Summary     Generate a podcast from transcript text
// @Description Runs the speaker-tagged transcript through multi-speaker TTS and returns the result as an MP3 stream.
// @Tags        podcast
// @Accept      json
// @Produce     audio/mpeg
// @Param       request  body      podcastRequest  true  "Transcript to voice (e.g. \"Speaker 1: Hello. Speaker 2: Hi.\")"
// @Success     200  {file}    file  "MP3 audio"
// @Failure     400  {object}  errorResponse  "Empty transcript or too many speakers"
// @Failure     422  {object}  errorResponse  "Malformed JSON body"
// @Failure     502  {object}  errorResponse  "TTS backend failure"
// @Failure     500  {object}  errorResponse  "Assembly or conversion failure"
// @Router      /generate-podcast [post]
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req podcastRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s.generateAndStream(w, r, req.Text, "podcast.mp3")
}

// handleConvertYouTube processes a POST /convert-youtube request.
//
// @Summary     Convert a YouTube video into a podcast
// @Description Downloads the video's audio, transcribes it, and voices the transcript as a multi-speaker podcast MP3.
// @Tags        podcast
// @Accept      json
// @Produce     audio/mpeg
// @Param       request  body      youtubeRequest  true  "Video to convert"
// @Success     200  {file}    file  "MP3 audio"
// @Failure     400  {object}  errorResponse  "Empty URL"
// @Failure     422  {object}  errorResponse  "Malformed JSON body"
// @Failure     502  {object}  errorResponse  "Download, transcription, or TTS failure"
// @Router      /convert-youtube [post]
func (s *Server) handleConvertYouTube(w http.ResponseWriter, r *http.Request) {
	var req youtubeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.YouTubeURL) == "" {
		writeError(w, http.StatusBadRequest, errorResponse{
			Error: "youtube_url cannot be empty",
			Kind:  string(podcast.KindInput),
		})
		return
	}
	if s.ingest == nil {
		writeError(w, http.StatusServiceUnavailable, errorResponse{
			Error: "youtube ingestion is not configured",
		})
		return
	}

	transcript, err := s.ingest.Transcript(r.Context(), req.YouTubeURL)
	if err != nil {
		slog.Error("youtube ingestion failed", "error", err)
		writeError(w, http.StatusBadGateway, errorResponse{
			Error: err.Error(),
			Kind:  string(podcast.KindBackend),
		})
		return
	}

	s.generateAndStream(w, r, transcript, "youtube_podcast.mp3")
}

// handleRoot serves the service banner.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": "Podcast Audio Generator API",
		"docs":    "/swagger/index.html",
	})
}

// generateAndStream runs generation and streams the MP3 to the caller.
// The artifact is fully assembled before the first byte is written: the
// container length fields and the MP3 size are only known once the backend
// stream ends, so emitting earlier would corrupt the declared sizes.
func (s *Server) generateAndStream(w http.ResponseWriter, r *http.Request, transcript, filename string) {
	res, err := s.gen.Generate(r.Context(), transcript)
	if err != nil {
		status, resp := classifyError(err)
		slog.Error("generation failed", "kind", resp.Kind, "error", err)
		writeError(w, status, resp)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(res.MP3)))
	if _, err := io.Copy(w, bytes.NewReader(res.MP3)); err != nil {
		slog.Warn("client disconnected mid-stream", "error", err)
	}
}

// decodeJSON decodes the request body into v, answering 422 with a hint on
// malformed JSON. Returns false if the request was already answered.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, errorResponse{
			Error: "invalid JSON body: " + err.Error(),
			Hint:  "escape newlines as \\n, escape quotes, and ensure proper JSON syntax",
		})
		return false
	}
	return true
}

// classifyError maps a generation failure to an HTTP status and payload.
func classifyError(err error) (int, errorResponse) {
	kind := podcast.KindOf(err)
	resp := errorResponse{Error: err.Error(), Kind: string(kind)}

	// Cancellation wins over the kind: an abandoned request is not a
	// backend failure even though the pipeline reports it as one.
	if errors.Is(err, context.Canceled) {
		return 499, resp // client closed request
	}

	switch kind {
	case podcast.KindInput:
		return http.StatusBadRequest, resp
	case podcast.KindBackend:
		return http.StatusBadGateway, resp
	case podcast.KindAssembly, podcast.KindConversion:
		return http.StatusInternalServerError, resp
	}
	return http.StatusInternalServerError, resp
}

func writeError(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
