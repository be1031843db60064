package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"pdf2x/internal/cache"
	"pdf2x/internal/config"
	"pdf2x/internal/convert"
	"pdf2x/internal/llamaparse"
	"pdf2x/internal/storage"
)

func main() {
	cmd := &cli.Command{
		Name:      "pdf2x",
		Usage:     "Convert documents to Markdown, text, or JSON using LlamaParse",
		ArgsUsage: "<input> [<input>...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: markdown, text, or json",
				Value:   "markdown",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path: file, directory, or s3://bucket/key",
			},
			&cli.StringFlag{
				Name:  "engine",
				Usage: "Parsing engine: llamaparse or local",
				Value: "llamaparse",
			},
			&cli.StringFlag{
				Name:  "language",
				Usage: "Document language hint passed to the API",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Bypass the local result cache",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Parallel conversions in batch mode (0 = from CONCURRENCY env)",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "Path to a .env file to load",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("conversion failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if err := config.LoadEnvFile(cmd.String("env")); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	format, err := llamaparse.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if cmd.Args().Len() == 0 {
		return fmt.Errorf("no input files given (usage: pdf2x <input> [<input>...])")
	}

	engine, err := buildEngine(cmd, cfg)
	if err != nil {
		return err
	}

	inputs, err := expandInputs(cmd.Args().Slice(), engine)
	if err != nil {
		return err
	}

	converter := &convert.Converter{Engine: engine}

	if !cfg.CacheDisabled && !cmd.Bool("no-cache") {
		resultCache, err := cache.Open(cfg.CacheDir)
		if err != nil {
			slog.Warn("result cache unavailable, continuing without it", "dir", cfg.CacheDir, "error", err)
		} else {
			converter.Cache = resultCache
		}
	}

	sink, jobs, err := resolveOutputs(cfg, inputs, cmd.String("output"), format)
	if err != nil {
		return err
	}
	converter.Sink = sink

	if len(jobs) == 1 {
		return converter.Convert(ctx, jobs[0].Input, jobs[0].OutputKey, format)
	}

	concurrency := int(cmd.Int("concurrency"))
	if concurrency <= 0 {
		concurrency = cfg.Concurrency
	}

	return convert.RunBatch(ctx, converter, jobs, format, concurrency)
}

func buildEngine(cmd *cli.Command, cfg *config.Config) (convert.Engine, error) {
	switch cmd.String("engine") {
	case "local":
		return &convert.LocalEngine{}, nil
	case "llamaparse":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("LLAMA_CLOUD_API_KEY environment variable is not set")
		}

		client, err := llamaparse.NewClient(llamaparse.ClientConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, err
		}

		return &convert.LlamaParseEngine{
			Client: client,
			Options: llamaparse.ParseOptions{
				UploadOptions: llamaparse.UploadOptions{
					Language:       cmd.String("language"),
					PremiumMode:    cfg.PremiumMode,
					ContinuousMode: cfg.ContinuousMode,
				},
				PollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
				Timeout:      time.Duration(cfg.ParseTimeoutSeconds) * time.Second,
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported engine: %s (use 'llamaparse' or 'local')", cmd.String("engine"))
	}
}

// expandInputs resolves arguments to concrete files. Directory arguments
// contribute every supported file they contain directly.
func expandInputs(args []string, engine convert.Engine) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("input not found: %s", arg)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("error reading directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(arg, entry.Name())
			if engine.SupportsFile(path) {
				files = append(files, path)
			} else {
				slog.Debug("skipping unsupported file", "path", path)
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no convertible input files found")
	}

	return files, nil
}

// resolveOutputs picks the sink and the per-input output keys for the given
// -o destination.
func resolveOutputs(cfg *config.Config, inputs []string, output string, format llamaparse.Format) (storage.Sink, []convert.Job, error) {
	if storage.IsS3URI(output) {
		return resolveS3Outputs(cfg, inputs, output, format)
	}

	sink, err := storage.NewLocalSink("")
	if err != nil {
		return nil, nil, err
	}

	jobs := make([]convert.Job, 0, len(inputs))

	if output == "" {
		// Results land next to each input.
		for _, input := range inputs {
			jobs = append(jobs, convert.Job{
				Input:     input,
				OutputKey: convert.DeriveOutputPath(input, "", format),
			})
		}
		return sink, jobs, nil
	}

	if info, err := os.Stat(output); (err == nil && info.IsDir()) || strings.HasSuffix(output, string(os.PathSeparator)) || len(inputs) > 1 {
		for _, input := range inputs {
			jobs = append(jobs, convert.Job{
				Input:     input,
				OutputKey: filepath.Join(output, convert.OutputName(input, format)),
			})
		}
		return sink, jobs, nil
	}

	jobs = append(jobs, convert.Job{Input: inputs[0], OutputKey: output})
	return sink, jobs, nil
}

func resolveS3Outputs(cfg *config.Config, inputs []string, output string, format llamaparse.Format) (storage.Sink, []convert.Job, error) {
	bucket, prefix, err := storage.ParseS3URI(output)
	if err != nil {
		return nil, nil, err
	}

	s3Cfg := storage.S3Config{
		S3EndpointURL:     cfg.S3EndpointURL,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
		S3Region:          cfg.S3Region,
	}

	// A single input with a non-slash-terminated key is an exact object key;
	// anything else treats the URI as a prefix.
	if len(inputs) == 1 && prefix != "" && !strings.HasSuffix(output, "/") {
		sink, err := storage.NewS3Sink(s3Cfg, bucket, "")
		if err != nil {
			return nil, nil, err
		}
		return sink, []convert.Job{{Input: inputs[0], OutputKey: prefix}}, nil
	}

	sink, err := storage.NewS3Sink(s3Cfg, bucket, prefix)
	if err != nil {
		return nil, nil, err
	}

	jobs := make([]convert.Job, 0, len(inputs))
	for _, input := range inputs {
		jobs = append(jobs, convert.Job{Input: input, OutputKey: convert.OutputName(input, format)})
	}
	return sink, jobs, nil
}
