package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docsummarizer/internal/config"
	"docsummarizer/internal/handler"
	"docsummarizer/internal/metrics"
	"docsummarizer/internal/scheduler"
	"docsummarizer/internal/server"
	"docsummarizer/internal/storage"
	"docsummarizer/internal/summarizer"
	"docsummarizer/internal/watcher"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

type services struct {
	cfg      config.Config
	log      *slog.Logger
	storage  *storage.MinioStorage
	handler  *handler.Handler
	recorder *metrics.Recorder
}

func main() {
	app := &cli.App{
		Name:  "docsummarizer",
		Usage: "Summarize documents written to object storage",
		Commands: []*cli.Command{
			{
				Name:  "invoke",
				Usage: "Handle a single notification payload and print the result",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "event",
						Aliases: []string{"e"},
						Usage:   "Path to the notification JSON (stdin when empty)",
						EnvVars: []string{"EVENT_FILE"},
					},
				},
				Action: runInvoke,
			},
			{
				Name:   "serve",
				Usage:  "Serve a notification webhook with metrics",
				Action: runServe,
			},
			{
				Name:   "watch",
				Usage:  "Listen for bucket notifications and summarize new objects",
				Action: runWatch,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Command failed",
			"error", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	st, err := storage.NewMinioStorage(storage.MinioConfig{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Region:    cfg.S3Region,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoContext(ctx, "Storage is initialized",
		"endpoint", cfg.S3Endpoint,
		"region", cfg.S3Region)

	if cfg.APIKey == "" {
		log.WarnContext(ctx, "GROQ_API_KEY is missing so every invocation will fail",
			"envVar", "GROQ_API_KEY")
	}

	completer := summarizer.NewOpenAICompleter(summarizer.OpenAIConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.CompletionBaseURL,
	})

	recorder := metrics.NewRecorder()
	h := handler.New(st, completer, handler.Config{
		Mode:  cfg.PromptMode,
		Model: cfg.CompletionModel,
	}, recorder, log)
	log.InfoContext(ctx, "Handler is initialized",
		"mode", cfg.PromptMode,
		"model", cfg.CompletionModel)

	return &services{
		cfg:      cfg,
		log:      log,
		storage:  st,
		handler:  h,
		recorder: recorder,
	}, nil
}

func runInvoke(c *cli.Context) error {
	ctx := c.Context

	rt, err := setup(ctx)
	if err != nil {
		return err
	}

	raw, err := readEvent(c.String("event"))
	if err != nil {
		return err
	}

	result := rt.handler.Handle(ctx, raw)

	enc := json.NewEncoder(c.App.Writer)
	enc.SetEscapeHTML(false)

	return enc.Encode(result)
}

func readEvent(path string) ([]byte, error) {
	if path == "" || path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read event from stdin: %w", err)
		}

		return raw, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event file: %w", err)
	}

	return raw, nil
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}

	if rt.cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              rt.cfg.HTTPAddr,
		Handler:           server.NewRouter(rt.handler, rt.recorder.Handler(), rt.log),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	stopBackfill, err := startBackfill(gctx, rt)
	if err != nil {
		return err
	}
	defer stopBackfill()

	g.Go(func() error {
		rt.log.InfoContext(gctx, "Server is started",
			"addr", rt.cfg.HTTPAddr)

		if serveErr := srv.ListenAndServe(); !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", serveErr)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		rt.log.InfoContext(shutdownCtx, "Shutting down server",
			"addr", rt.cfg.HTTPAddr)

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runWatch(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}

	if rt.cfg.WatchBucket == "" {
		return errors.New("WATCH_BUCKET is required for watch")
	}

	stopBackfill, err := startBackfill(ctx, rt)
	if err != nil {
		return err
	}
	defer stopBackfill()

	w := watcher.New(
		rt.storage,
		rt.handler,
		rt.cfg.WatchBucket,
		rt.cfg.WatchPrefix,
		rt.cfg.MaxParallelInvokes,
		rt.log,
	)

	return w.Run(ctx)
}

func startBackfill(ctx context.Context, rt *services) (func(), error) {
	if rt.cfg.BackfillSpec == "" {
		return func() {}, nil
	}

	sched := scheduler.New(ctx, rt.storage, rt.handler, scheduler.Config{
		Spec:        rt.cfg.BackfillSpec,
		Bucket:      rt.cfg.WatchBucket,
		Prefix:      rt.cfg.WatchPrefix,
		MaxParallel: rt.cfg.MaxParallelInvokes,
	}, rt.log)

	if err := sched.Start(); err != nil {
		return nil, fmt.Errorf("start scheduler: %w", err)
	}
	rt.log.InfoContext(ctx, "Scheduler is started",
		"spec", rt.cfg.BackfillSpec,
		"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String(),
		"bucket", rt.cfg.WatchBucket)

	return sched.Stop, nil
}
