package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Fatalf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.TTS.Backend != "gemini" {
		t.Fatalf("expected default backend gemini, got %q", cfg.TTS.Backend)
	}
	if cfg.TTS.Gemini.Model != "gemini-2.5-pro-preview-tts" {
		t.Fatalf("unexpected default model %q", cfg.TTS.Gemini.Model)
	}
	if len(cfg.Podcast.Voices) != 2 || cfg.Podcast.Voices[0] != "Zephyr" {
		t.Fatalf("unexpected default voices %v", cfg.Podcast.Voices)
	}
	if cfg.Transcode.Bitrate != "192k" {
		t.Fatalf("unexpected default bitrate %q", cfg.Transcode.Bitrate)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PODFORGE_SERVER_PORT", "9000")
	t.Setenv("PODFORGE_TTS_BACKEND", "mock")
	t.Setenv("PODFORGE_TRANSCODE_BITRATE", "128k")
	t.Setenv("PODFORGE_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("expected port override, got %d", cfg.Server.Port)
	}
	if cfg.TTS.Backend != "mock" {
		t.Fatalf("expected backend override, got %q", cfg.TTS.Backend)
	}
	if cfg.Transcode.Bitrate != "128k" {
		t.Fatalf("expected bitrate override, got %q", cfg.Transcode.Bitrate)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level override, got %q", cfg.Logging.Level)
	}
}

func TestAPIKeyEnvResolution(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key-123")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TTS.Gemini.APIKey != "test-key-123" {
		t.Fatalf("expected api key from env, got %q", cfg.TTS.Gemini.APIKey)
	}
}
