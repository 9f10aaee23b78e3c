package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/handler"
	"docsummarizer/internal/storage"

	"github.com/robfig/cron/v3"
)

const (
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	sweepTimeout          = 15 * time.Minute
)

type Config struct {
	Spec        string
	Bucket      string
	Prefix      string
	MaxParallel int
}

// Scheduler periodically summarizes objects that have no summary artifact,
// covering notifications that were lost or failed.
type Scheduler struct {
	ctx     context.Context
	cron    *cron.Cron
	storage storage.ObjectStorage
	handler *handler.Handler
	cfg     Config
	log     *slog.Logger
}

func New(
	ctx context.Context,
	st storage.ObjectStorage,
	h *handler.Handler,
	cfg Config,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 1
	}

	return &Scheduler{
		ctx:     ctx,
		cron:    c,
		storage: st,
		handler: h,
		cfg:     cfg,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	if s.cfg.Bucket == "" {
		return errors.New("backfill bucket is empty")
	}

	if _, err := s.cron.AddFunc(s.cfg.Spec, s.runSweep); err != nil {
		return fmt.Errorf("add backfill job (spec = %s): %w", s.cfg.Spec, err)
	}

	s.cron.Start()

	return nil
}

// Stop stops scheduling and waits for a running sweep to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(s.ctx, sweepTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	if err := s.Sweep(ctx); err != nil {
		s.log.ErrorContext(ctx, "Backfill sweep failed",
			"error", err,
			"bucket", s.cfg.Bucket,
			"prefix", s.cfg.Prefix)
	}
}

// Sweep invokes the handler for every listed object lacking a summary.
func (s *Scheduler) Sweep(ctx context.Context) error {
	start := time.Now()

	objects, err := s.storage.ListObjects(ctx, s.cfg.Bucket, s.cfg.Prefix)
	if err != nil {
		return fmt.Errorf("list objects: %w", err)
	}

	pending := PendingKeys(objects)
	if len(pending) == 0 {
		s.log.DebugContext(ctx, "Nothing to backfill",
			"bucket", s.cfg.Bucket,
			"objectsCount", len(objects))
		return nil
	}

	var wg sync.WaitGroup
	semCh := make(chan struct{}, min(s.cfg.MaxParallel, len(pending)))
	errCh := make(chan error, len(pending))

	for _, key := range pending {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		semCh <- struct{}{}

		go func(key string) {
			defer wg.Done()
			defer func() { <-semCh }()

			outcome := s.handler.Process(ctx, domain.ObjectRef{Bucket: s.cfg.Bucket, Key: key})
			if !outcome.Succeeded() {
				errCh <- fmt.Errorf("process %s: %w", key, outcome.Err)
			}
		}(key)
	}

	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}

	s.log.InfoContext(ctx, "Backfill sweep is done",
		"bucket", s.cfg.Bucket,
		"prefix", s.cfg.Prefix,
		"pendingCount", len(pending),
		"failedCount", len(errs),
		"elapsedSeconds", time.Since(start).Seconds())

	return errors.Join(errs...)
}

// PendingKeys returns, in listing order, the keys that are neither summary
// artifacts nor folder markers and whose summary artifact is not listed.
func PendingKeys(objects []storage.ObjectInfo) []string {
	present := make(map[string]struct{}, len(objects))
	for _, obj := range objects {
		present[obj.Key] = struct{}{}
	}

	var pending []string
	for _, obj := range objects {
		if domain.IsSummaryKey(obj.Key) || strings.HasSuffix(obj.Key, "/") {
			continue
		}
		if _, ok := present[domain.SummaryKey(obj.Key)]; ok {
			continue
		}

		pending = append(pending, obj.Key)
	}

	return pending
}
