// Package watcher runs the handler for every object-created notification of
// a bucket.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/event"

	"github.com/minio/minio-go/v7/pkg/notification"
)

// ErrStreamClosed reports a notification stream that ended while the
// watcher was still supposed to run.
var ErrStreamClosed = errors.New("bucket notification stream closed")

// Listener streams bucket notifications until ctx is done.
type Listener interface {
	Listen(ctx context.Context, bucket string, prefix string) <-chan notification.Info
}

// Invoker runs one invocation per notification.
type Invoker interface {
	HandleNotification(ctx context.Context, n event.Notification) domain.Outcome
}

type Watcher struct {
	listener    Listener
	invoker     Invoker
	bucket      string
	prefix      string
	maxParallel int
	log         *slog.Logger
}

func New(
	listener Listener,
	invoker Invoker,
	bucket string,
	prefix string,
	maxParallel int,
	log *slog.Logger,
) *Watcher {
	if maxParallel <= 0 {
		maxParallel = 1
	}

	return &Watcher{
		listener:    listener,
		invoker:     invoker,
		bucket:      bucket,
		prefix:      prefix,
		maxParallel: maxParallel,
		log:         log,
	}
}

// Run blocks until ctx is done. Each record of a batch becomes its own
// invocation so no record is dropped. A stream that closes before ctx is done
// is an error, wrapping the last error the listener reported.
func (w *Watcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	semCh := make(chan struct{}, w.maxParallel)

	w.log.InfoContext(ctx, "Listening for bucket notifications",
		"bucket", w.bucket,
		"prefix", w.prefix,
		"maxParallel", w.maxParallel)

	var listenErr error
	for info := range w.listener.Listen(ctx, w.bucket, w.prefix) {
		if info.Err != nil {
			w.log.ErrorContext(ctx, "Failed to receive bucket notification",
				"error", info.Err,
				"bucket", w.bucket)
			listenErr = info.Err
			continue
		}

		for _, n := range event.FromInfo(info).Split() {
			select {
			case semCh <- struct{}{}:
			case <-ctx.Done():
				return nil
			}

			wg.Add(1)
			go func(n event.Notification) {
				defer wg.Done()
				defer func() { <-semCh }()

				w.invoker.HandleNotification(ctx, n)
			}(n)
		}
	}

	if ctx.Err() != nil {
		return nil
	}

	if listenErr != nil {
		return fmt.Errorf("listen bucket notifications: %w: %w", ErrStreamClosed, listenErr)
	}

	return ErrStreamClosed
}
