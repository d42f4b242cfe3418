// Package ingest turns an external video into transcript text: it downloads
// a YouTube video's audio track with yt-dlp, downmixes it to mono WAV, and
// transcribes it against a Whisper-compatible endpoint.
//
// All intermediate files are request-scoped temp files, removed on every
// exit path including partial-download failures. The semantic quality of
// the transcript is the backend's concern, not validated here.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/podforge/podforge/internal/config"
)

// ErrMissingTool indicates a required external binary (yt-dlp or ffmpeg)
// is not installed.
var ErrMissingTool = errors.New("required tool not found")

// Downloader fetches a video's audio track as a mono WAV file.
type Downloader struct {
	ytdlp  string
	ffmpeg string
}

// NewDownloader creates a Downloader from config.
func NewDownloader(cfg config.IngestConfig) *Downloader {
	ytdlp := cfg.YTDLPPath
	if ytdlp == "" {
		ytdlp = "yt-dlp"
	}
	ffmpeg := cfg.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return &Downloader{ytdlp: ytdlp, ffmpeg: ffmpeg}
}

// DownloadAudio downloads the best audio stream of url, converts it to a
// mono WAV file, and returns the file path. The caller owns the returned
// file and must remove it.
func (d *Downloader) DownloadAudio(ctx context.Context, url string) (string, error) {
	ytdlpPath, err := exec.LookPath(d.ytdlp)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMissingTool, d.ytdlp)
	}
	ffmpegPath, err := exec.LookPath(d.ffmpeg)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMissingTool, d.ffmpeg)
	}

	base := filepath.Join(os.TempDir(), uuid.NewString())
	wavPath := base + ".wav"
	monoPath := base + "_mono.wav"

	cleanup := func(paths ...string) {
		for _, p := range paths {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				slog.Warn("failed to remove temp file", "path", p, "error", err)
			}
		}
	}

	dl := exec.CommandContext(ctx, ytdlpPath,
		"-f", "bestaudio/best",
		"-x", "--audio-format", "wav",
		"-o", base+".%(ext)s",
		url,
	)
	var dlErr bytes.Buffer
	dl.Stderr = &dlErr
	if err := dl.Run(); err != nil {
		cleanup(wavPath, monoPath)
		return "", fmt.Errorf("downloading audio: %w: %s", err, tail(dlErr.Bytes(), 512))
	}

	// Downmix to mono for transcription compatibility.
	mix := exec.CommandContext(ctx, ffmpegPath,
		"-y", "-i", wavPath, "-ac", "1", monoPath)
	var mixErr bytes.Buffer
	mix.Stderr = &mixErr
	if err := mix.Run(); err != nil {
		cleanup(wavPath, monoPath)
		return "", fmt.Errorf("downmixing audio: %w: %s", err, tail(mixErr.Bytes(), 512))
	}

	cleanup(wavPath)
	slog.Debug("youtube audio downloaded", "path", monoPath)
	return monoPath, nil
}

// tail returns the last n bytes of b as a string.
func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(bytes.TrimSpace(b))
}
