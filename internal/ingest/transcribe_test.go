package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("RIFF fake"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("bad multipart form: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Fatalf("missing file field: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "  hello from the video  "}`))
	}))
	defer srv.Close()

	tr := NewTranscriber(srv.URL)
	text, err := tr.Transcribe(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello from the video" {
		t.Fatalf("unexpected transcript %q", text)
	}
}

func TestTranscribeEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text": "   "}`))
	}))
	defer srv.Close()

	tr := NewTranscriber(srv.URL)
	if _, err := tr.Transcribe(context.Background(), writeTempAudio(t)); err == nil {
		t.Fatal("expected error for empty transcription")
	}
}

func TestTranscribeBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := NewTranscriber(srv.URL)
	_, err := tr.Transcribe(context.Background(), writeTempAudio(t))
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("expected status error, got %v", err)
	}
}
