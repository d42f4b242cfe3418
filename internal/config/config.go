// Package config handles loading and validating the podforge configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the podforge daemon and CLI.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	TTS       TTSConfig       `mapstructure:"tts"`
	Transcode TranscodeConfig `mapstructure:"transcode"`
	Podcast   PodcastConfig   `mapstructure:"podcast"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds the HTTP API server settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Backend string       `mapstructure:"backend"` // "gemini" or "mock"
	Gemini  GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Gemini speech generation API settings.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`
}

// TranscodeConfig holds ffmpeg transcoder settings.
type TranscodeConfig struct {
	FFmpegPath string `mapstructure:"ffmpeg_path"`
	Bitrate    string `mapstructure:"bitrate"`
}

// PodcastConfig holds generation settings: the fixed voice roster (bound to
// speaker labels in order) and file-mode output defaults.
type PodcastConfig struct {
	Voices    []string `mapstructure:"voices"`
	OutputDir string   `mapstructure:"output_dir"`
	BaseName  string   `mapstructure:"base_name"`
}

// IngestConfig holds YouTube download and transcription settings.
type IngestConfig struct {
	YTDLPPath       string `mapstructure:"ytdlp_path"`
	FFmpegPath      string `mapstructure:"ffmpeg_path"`
	WhisperEndpoint string `mapstructure:"whisper_endpoint"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./podforge.yaml, ./configs/podforge.yaml,
// /etc/podforge/podforge.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("tts.backend", "gemini")
	v.SetDefault("tts.gemini.api_key", "${GEMINI_API_KEY}")
	v.SetDefault("tts.gemini.model", "gemini-2.5-pro-preview-tts")
	v.SetDefault("tts.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("tts.gemini.temperature", 1.0)
	v.SetDefault("transcode.ffmpeg_path", "ffmpeg")
	v.SetDefault("transcode.bitrate", "192k")
	v.SetDefault("podcast.voices", []string{"Zephyr", "Puck"})
	v.SetDefault("podcast.output_dir", ".")
	v.SetDefault("podcast.base_name", "podcast")
	v.SetDefault("ingest.ytdlp_path", "yt-dlp")
	v.SetDefault("ingest.ffmpeg_path", "ffmpeg")
	v.SetDefault("ingest.whisper_endpoint", "http://localhost:8080/v1/audio/transcriptions")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("podforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/podforge")
	}

	// Environment variables: PODFORGE_SERVER_PORT, PODFORGE_TTS_BACKEND, etc.
	v.SetEnvPrefix("PODFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${GEMINI_API_KEY}")
	cfg.TTS.Gemini.APIKey = resolveEnvRef(cfg.TTS.Gemini.APIKey)

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env
// var value. An unset variable resolves to the empty string so a missing
// key is reported as unconfigured rather than used verbatim.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
