// Podforge turns speaker-tagged transcripts into multi-speaker podcast MP3s.
//
// Usage:
//
//	podforge serve [flags]                 run the HTTP API server
//	podforge generate [flags] <transcript> voice a transcript to an MP3 file
//	podforge youtube [flags] <url>         convert a YouTube video to an MP3 file
//	podforge --config /path/to/podforge.yaml serve
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/podforge/podforge/docs"
	"github.com/podforge/podforge/internal/audio"
	"github.com/podforge/podforge/internal/config"
	"github.com/podforge/podforge/internal/health"
	"github.com/podforge/podforge/internal/ingest"
	"github.com/podforge/podforge/internal/podcast"
	"github.com/podforge/podforge/internal/server"
	"github.com/podforge/podforge/internal/store"
	"github.com/podforge/podforge/internal/transcode"
	"github.com/podforge/podforge/internal/tts"
	"github.com/podforge/podforge/internal/tts/gemini"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/podforge.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("podforge %s\n", version)
		os.Exit(0)
	}

	// A .env file is optional; real env vars take precedence over it.
	_ = godotenv.Load()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	config.SetupLogging(cfg.Logging)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := flag.Args()
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		err = runServe(ctx, cfg)
	case "generate":
		err = runGenerate(ctx, cfg, args)
	case "youtube":
		err = runYouTube(ctx, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (expected serve, generate, or youtube)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("podforge failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// runServe starts the HTTP API server and blocks until shutdown.
func runServe(ctx context.Context, cfg *config.Config) error {
	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}
	ingestSvc := ingest.NewService(cfg.Ingest)

	probe := health.NewProbe("podforge", version, cfg.TTS.Gemini.APIKey != "")
	srv := server.New(cfg.Server.Port, gen, ingestSvc, probe)
	probe.SetReady(true)

	slog.Info("podforge starting", "version", version,
		"port", cfg.Server.Port, "backend", cfg.TTS.Backend)
	return srv.ListenAndServe(ctx)
}

// runGenerate voices a transcript and writes the MP3 to disk.
func runGenerate(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	output := fs.String("o", "", "output file path (default: next free <base>_<n>.mp3)")
	inFile := fs.String("f", "", "read the transcript from a file instead of the argument")
	if err := fs.Parse(args); err != nil {
		return err
	}

	transcript, err := readTranscript(fs.Args(), *inFile)
	if err != nil {
		return err
	}

	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}
	return generateToFile(ctx, cfg, gen, transcript, *output)
}

// runYouTube downloads, transcribes, and voices a YouTube video.
func runYouTube(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("youtube", flag.ExitOnError)
	output := fs.String("o", "", "output file path (default: next free <base>_<n>.mp3)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: podforge youtube [-o out.mp3] <url>")
	}

	slog.Info("ingesting youtube audio", "url", fs.Arg(0))
	transcript, err := ingest.NewService(cfg.Ingest).Transcript(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("ingesting youtube audio: %w", err)
	}

	gen, err := buildGenerator(cfg)
	if err != nil {
		return err
	}
	return generateToFile(ctx, cfg, gen, transcript, *output)
}

func generateToFile(ctx context.Context, cfg *config.Config, gen *podcast.Generator, transcript, output string) error {
	res, err := gen.Generate(ctx, transcript)
	if err != nil {
		return err
	}

	st := store.NewFileStore(cfg.Podcast.OutputDir, cfg.Podcast.BaseName)
	path, err := st.Save(res.MP3, output)
	if err != nil {
		return err
	}
	slog.Info("podcast saved", "path", path,
		"mp3_bytes", len(res.MP3), "chunks", res.Chunks)
	fmt.Println(path)
	return nil
}

// buildGenerator wires the configured TTS backend and transcoder.
func buildGenerator(cfg *config.Config) (*podcast.Generator, error) {
	var synth tts.Synthesizer
	switch cfg.TTS.Backend {
	case "gemini":
		synth = gemini.New(cfg.TTS.Gemini)
		slog.Info("using gemini synthesizer", "model", cfg.TTS.Gemini.Model)
	case "mock":
		// One second of silence at the default PCM parameters, for smoke
		// testing the pipeline without an API key.
		p := audio.DefaultParams()
		synth = &tts.Mock{Chunks: []audio.Chunk{{
			MIME: "audio/L16;rate=24000",
			Data: make([]byte, p.ByteRate()),
		}}}
		slog.Info("using mock synthesizer")
	default:
		return nil, fmt.Errorf("unknown tts backend %q", cfg.TTS.Backend)
	}

	return podcast.New(synth, transcode.NewFFmpeg(cfg.Transcode), cfg.Podcast.Voices, nil), nil
}

// readTranscript resolves the transcript from -f or the positional args.
func readTranscript(args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading transcript file: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("usage: podforge generate [-o out.mp3] [-f transcript.txt] <transcript>")
	}
	return strings.Join(args, " "), nil
}
