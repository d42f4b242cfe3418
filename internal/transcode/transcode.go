// Package transcode converts assembled WAV audio into the MP3 distribution
// format.
//
// The conversion shells out to ffmpeg through a temporary-file round trip.
// Temp files are request-scoped and removed on every exit path, including
// conversion failures. Two failure classes are kept distinct: a malformed
// input container (data error) and a missing ffmpeg binary (configuration
// error).
package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/go-audio/wav"
	"github.com/google/uuid"

	"github.com/podforge/podforge/internal/config"
)

// ErrMissingFFmpeg indicates the ffmpeg binary is not installed or not on
// PATH. This is a deployment problem, not a data problem.
var ErrMissingFFmpeg = errors.New("ffmpeg binary not found")

// ErrInvalidContainer indicates the input bytes are not a decodable WAV
// container.
var ErrInvalidContainer = errors.New("invalid wav container")

// Transcoder converts a complete WAV artifact to distribution-format bytes.
type Transcoder interface {
	// ToMP3 converts WAV bytes to MP3, preserving sample rate and channel
	// count. It never returns partial output.
	ToMP3(ctx context.Context, wavData []byte) ([]byte, error)
}

// FFmpeg implements Transcoder by invoking the ffmpeg binary.
type FFmpeg struct {
	binary  string
	bitrate string
}

// NewFFmpeg creates an ffmpeg-backed transcoder from config.
func NewFFmpeg(cfg config.TranscodeConfig) *FFmpeg {
	binary := cfg.FFmpegPath
	if binary == "" {
		binary = "ffmpeg"
	}
	bitrate := cfg.Bitrate
	if bitrate == "" {
		bitrate = "192k"
	}
	return &FFmpeg{binary: binary, bitrate: bitrate}
}

// ToMP3 converts the assembled WAV bytes to MP3 via a temp-file round trip.
func (f *FFmpeg) ToMP3(ctx context.Context, wavData []byte) ([]byte, error) {
	// Validate and probe the input before touching the filesystem so a
	// malformed container never reaches ffmpeg.
	d := wav.NewDecoder(bytes.NewReader(wavData))
	d.ReadInfo()
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: input failed to decode", ErrInvalidContainer)
	}
	sampleRate := int(d.SampleRate)
	channels := int(d.NumChans)

	binPath, err := exec.LookPath(f.binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingFFmpeg, f.binary)
	}

	id := uuid.NewString()
	wavPath := filepath.Join(os.TempDir(), id+".wav")
	mp3Path := filepath.Join(os.TempDir(), id+".mp3")
	defer func() {
		if err := os.Remove(wavPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove temp wav", "path", wavPath, "error", err)
		}
		if err := os.Remove(mp3Path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove temp mp3", "path", mp3Path, "error", err)
		}
	}()

	if err := os.WriteFile(wavPath, wavData, 0o600); err != nil {
		return nil, fmt.Errorf("writing temp wav: %w", err)
	}

	// Preserve the probed sample rate and channel count explicitly.
	cmd := exec.CommandContext(ctx, binPath,
		"-y",
		"-i", wavPath,
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-b:a", f.bitrate,
		"-f", "mp3",
		mp3Path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg conversion: %w: %s", err, tail(stderr.Bytes(), 512))
	}

	mp3Data, err := os.ReadFile(mp3Path)
	if err != nil {
		return nil, fmt.Errorf("reading converted output: %w", err)
	}
	if len(mp3Data) == 0 {
		return nil, fmt.Errorf("ffmpeg produced empty output")
	}

	slog.Debug("transcode complete",
		"wav_bytes", len(wavData),
		"mp3_bytes", len(mp3Data),
		"sample_rate", sampleRate,
		"channels", channels)
	return mp3Data, nil
}

// tail returns the last n bytes of b as a string.
func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(bytes.TrimSpace(b))
}
