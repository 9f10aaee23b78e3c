// Package handler turns storage-write notifications into summary artifacts.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/event"
	"docsummarizer/internal/storage"
	"docsummarizer/internal/summarizer"
)

// Observer receives per-invocation measurements.
type Observer interface {
	ObserveInvocation(outcome domain.Outcome, elapsed time.Duration)
	ObserveCompletion(elapsed time.Duration, err error)
}

type Config struct {
	Mode  summarizer.Mode
	Model string
}

// Handler is safe for concurrent use; it keeps no per-invocation state.
type Handler struct {
	storage   storage.ObjectStorage
	completer summarizer.Completer
	mode      summarizer.Mode
	model     string
	observer  Observer
	log       *slog.Logger
}

func New(
	st storage.ObjectStorage,
	completer summarizer.Completer,
	cfg Config,
	observer Observer,
	log *slog.Logger,
) *Handler {
	mode := cfg.Mode
	if mode == "" {
		mode = summarizer.ModeContent
	}

	model := cfg.Model
	if model == "" {
		model = summarizer.DefaultModel
	}

	if observer == nil {
		observer = noopObserver{}
	}

	return &Handler{
		storage:   st,
		completer: completer,
		mode:      mode,
		model:     model,
		observer:  observer,
		log:       log,
	}
}

// Handle runs one invocation for a raw notification payload.
func (h *Handler) Handle(ctx context.Context, raw []byte) domain.Result {
	n, err := event.Decode(raw)
	if err != nil {
		start := time.Now()
		outcome := newInvocation().fail(err)
		h.finish(ctx, outcome, start)

		return outcome.Result()
	}

	return h.HandleNotification(ctx, n).Result()
}

// HandleNotification runs one invocation for the first record of n.
func (h *Handler) HandleNotification(ctx context.Context, n event.Notification) (outcome domain.Outcome) {
	start := time.Now()
	inv := newInvocation()
	defer func() {
		if r := recover(); r != nil {
			outcome = inv.fail(fmt.Errorf("panic: %v", r))
		}
		h.finish(ctx, outcome, start)
	}()

	record, err := n.First()
	if err != nil {
		return inv.fail(err)
	}

	if ignored := len(n.Records) - 1; ignored > 0 {
		h.log.WarnContext(ctx, "Only the first record is processed",
			"recordsCount", len(n.Records),
			"ignoredCount", ignored)
	}

	ref, err := record.Ref()
	if err != nil {
		return inv.fail(err)
	}
	inv.decoded(ref)

	if !record.IsObjectCreated() {
		return inv.skip(fmt.Sprintf("event %s is not an object write", record.EventName))
	}

	return h.process(ctx, inv)
}

// Process runs one invocation for an already decoded object reference.
func (h *Handler) Process(ctx context.Context, ref domain.ObjectRef) (outcome domain.Outcome) {
	start := time.Now()
	inv := newInvocation()
	inv.decoded(ref)
	defer func() {
		if r := recover(); r != nil {
			outcome = inv.fail(fmt.Errorf("panic: %v", r))
		}
		h.finish(ctx, outcome, start)
	}()

	return h.process(ctx, inv)
}

func (h *Handler) process(ctx context.Context, inv *invocation) domain.Outcome {
	ref := inv.ref
	if domain.IsSummaryKey(ref.Key) {
		return inv.skip("")
	}

	var content string
	if h.mode == summarizer.ModeContent {
		body, err := h.storage.GetObject(ctx, ref)
		if err != nil {
			return inv.fail(fmt.Errorf("%w: %w", domain.ErrContentFetch, err))
		}

		content = summarizer.Truncate(summarizer.DecodeLossy(body), summarizer.MaxContentChars)
		inv.advance(domain.StateFetched)

		h.log.DebugContext(ctx, "Content is fetched",
			"bucket", ref.Bucket,
			"key", ref.Key,
			"bodyBytes", len(body),
			"contentBytes", len(content))
	}

	req := summarizer.NewCompletionRequest(h.model, summarizer.BuildPrompt(h.mode, ref.Key, content))
	inv.advance(domain.StatePrompted)

	completionStart := time.Now()
	summary, err := h.completer.Complete(ctx, req)
	h.observer.ObserveCompletion(time.Since(completionStart), err)
	if err != nil {
		if !isKnownKind(err) {
			err = fmt.Errorf("%w: %w", domain.ErrCompletionAPI, err)
		}

		return inv.fail(err)
	}
	inv.advance(domain.StateCompleted)

	summaryRef := ref.SummaryRef()
	if err = h.storage.PutObject(ctx, summaryRef, []byte(summary), domain.SummaryContentType); err != nil {
		return inv.fail(fmt.Errorf("%w: %w", domain.ErrPersist, err))
	}
	inv.advance(domain.StatePersisted)

	return inv.succeed(summaryRef)
}

func (h *Handler) finish(ctx context.Context, outcome domain.Outcome, start time.Time) {
	elapsed := time.Since(start)
	h.observer.ObserveInvocation(outcome, elapsed)

	switch outcome.State {
	case domain.StateSkipped:
		h.log.InfoContext(ctx, "Invocation is skipped",
			"bucket", outcome.Ref.Bucket,
			"key", outcome.Ref.Key,
			"reason", outcome.Result().Body)
	case domain.StateSucceeded:
		h.log.InfoContext(ctx, "Summary is saved",
			"bucket", outcome.SummaryRef.Bucket,
			"key", outcome.Ref.Key,
			"summaryKey", outcome.SummaryRef.Key,
			"mode", h.mode,
			"elapsedSeconds", elapsed.Seconds())
	default:
		h.log.ErrorContext(ctx, "Invocation failed",
			"error", outcome.Err,
			"bucket", outcome.Ref.Bucket,
			"key", outcome.Ref.Key,
			"failedAt", outcome.FailedAt,
			"elapsedSeconds", elapsed.Seconds())
	}
}

// invocation tracks the object and the states reached so far so that a
// recovered panic still reports where it happened.
type invocation struct {
	ref  domain.ObjectRef
	path []domain.State
}

func newInvocation() *invocation {
	return &invocation{path: []domain.State{domain.StateStart}}
}

func (inv *invocation) decoded(ref domain.ObjectRef) {
	inv.ref = ref
	inv.advance(domain.StateDecoded)
}

func (inv *invocation) advance(state domain.State) {
	inv.path = append(inv.path, state)
}

func (inv *invocation) current() domain.State {
	return inv.path[len(inv.path)-1]
}

func (inv *invocation) fail(err error) domain.Outcome {
	return domain.Outcome{
		State:    domain.StateFailed,
		FailedAt: inv.current(),
		Ref:      inv.ref,
		Err:      err,
		Path:     append(slices.Clone(inv.path), domain.StateFailed),
	}
}

func (inv *invocation) skip(reason string) domain.Outcome {
	return domain.Outcome{
		State:  domain.StateSkipped,
		Ref:    inv.ref,
		Reason: reason,
		Path:   append(slices.Clone(inv.path), domain.StateSkipped),
	}
}

func (inv *invocation) succeed(summaryRef domain.ObjectRef) domain.Outcome {
	return domain.Outcome{
		State:      domain.StateSucceeded,
		Ref:        inv.ref,
		SummaryRef: summaryRef,
		Path:       append(slices.Clone(inv.path), domain.StateSucceeded),
	}
}

func isKnownKind(err error) bool {
	for _, kind := range []error{
		domain.ErrMalformedEvent,
		domain.ErrContentFetch,
		domain.ErrConfiguration,
		domain.ErrCompletionAPI,
		domain.ErrPersist,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}

	return false
}

type noopObserver struct{}

func (noopObserver) ObserveInvocation(domain.Outcome, time.Duration) {}

func (noopObserver) ObserveCompletion(time.Duration, error) {}
