package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/GDSC-UTSC/gdg-website/internal/observability"
	"github.com/GDSC-UTSC/gdg-website/pkg/ai"
)

// MaxReviewAttempts is the number of model calls made for one batch before giving up.
const MaxReviewAttempts = 3

// DefaultAttemptTimeout bounds a single model call.
const DefaultAttemptTimeout = 60 * time.Second

const responsePreviewLength = 500

// ReviewPhase is the state of a batch review.
type ReviewPhase int

const (
	PhaseAwaitingModel ReviewPhase = iota
	PhaseValidated
	PhaseExhausted
)

func (p ReviewPhase) String() string {
	switch p {
	case PhaseAwaitingModel:
		return "awaiting_model"
	case PhaseValidated:
		return "validated"
	case PhaseExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ReviewState tracks one batch through its attempts. Attempt counts the
// attempts already made.
type ReviewState struct {
	Phase       ReviewPhase
	Attempt     int
	MaxAttempts int
	Results     []ModelReviewResult
	Failures    []error
}

// NewReviewState starts a batch awaiting its first model call.
func NewReviewState(maxAttempts int) ReviewState {
	if maxAttempts <= 0 {
		maxAttempts = MaxReviewAttempts
	}
	return ReviewState{Phase: PhaseAwaitingModel, MaxAttempts: maxAttempts}
}

// Advance records the verdict of one attempt and returns the next state.
// Terminal states are returned unchanged.
func (s ReviewState) Advance(verdict Verdict) ReviewState {
	if s.Phase != PhaseAwaitingModel {
		return s
	}

	next := s
	next.Attempt = s.Attempt + 1
	next.Failures = append([]error(nil), s.Failures...)

	switch v := verdict.(type) {
	case Validated:
		next.Phase = PhaseValidated
		next.Results = v.Results
		return next
	case Rejected:
		next.Failures = append(next.Failures, v.Reason)
	default:
		next.Failures = append(next.Failures, fmt.Errorf("unknown verdict %T", verdict))
	}

	if next.Attempt >= next.MaxAttempts {
		next.Phase = PhaseExhausted
	}
	return next
}

// ExhaustedError reports a batch for which no attempt produced usable results.
type ExhaustedError struct {
	Attempts int
	Failures []error
}

func (e *ExhaustedError) Error() string {
	last := "no attempts made"
	if n := len(e.Failures); n > 0 {
		last = e.Failures[n-1].Error()
	}
	return fmt.Sprintf("%s after %d attempts: %s", ErrReviewExhausted, e.Attempts, last)
}

// Is matches ErrReviewExhausted, and ErrModelUnavailable when every attempt
// failed calling the model rather than on its output.
func (e *ExhaustedError) Is(target error) bool {
	switch target {
	case ErrReviewExhausted:
		return true
	case ErrModelUnavailable:
		if len(e.Failures) == 0 {
			return false
		}
		for _, failure := range e.Failures {
			if !errors.Is(failure, ErrModelUnavailable) {
				return false
			}
		}
		return true
	}
	return false
}

// ReviewBatch is the input of one orchestrated review.
type ReviewBatch struct {
	Job     JobDescriptor
	Entries []PromptEntry
}

// IDs returns the application ids of the batch in order.
func (b ReviewBatch) IDs() []string {
	ids := make([]string, 0, len(b.Entries))
	for _, entry := range b.Entries {
		ids = append(ids, entry.ApplicationID)
	}
	return ids
}

// OrchestrationResult is a validated batch together with the attempts it took.
type OrchestrationResult struct {
	Results  []ModelReviewResult
	Attempts int
}

// ReviewOrchestrator drives the prompt, call, validate and retry loop for a batch.
type ReviewOrchestrator struct {
	generator      ai.Generator
	model          string
	validator      *ResponseValidator
	attemptTimeout time.Duration
	logger         zerolog.Logger
	tracer         trace.Tracer
}

// NewReviewOrchestrator constructs an orchestrator. A non-positive attemptTimeout
// selects DefaultAttemptTimeout.
func NewReviewOrchestrator(generator ai.Generator, validator *ResponseValidator, attemptTimeout time.Duration, logger zerolog.Logger) *ReviewOrchestrator {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	if validator == nil {
		validator = MustResponseValidator()
	}
	model := "unknown"
	if named, ok := generator.(ai.Named); ok {
		model = named.Model()
	}
	return &ReviewOrchestrator{
		generator:      generator,
		model:          model,
		validator:      validator,
		attemptTimeout: attemptTimeout,
		logger:         logger.With().Str("component", "review_orchestrator").Str("model", model).Logger(),
		tracer:         otel.Tracer("github.com/GDSC-UTSC/gdg-website/internal/service/review"),
	}
}

// Review returns validated results for every entry of batch or an error. When
// all attempts fail the error is an *ExhaustedError. Cancellation of ctx stops
// the loop immediately.
func (o *ReviewOrchestrator) Review(ctx context.Context, batch ReviewBatch) (OrchestrationResult, error) {
	if o.generator == nil {
		return OrchestrationResult{}, ErrReviewerUnavailable
	}
	if len(batch.Entries) == 0 {
		return OrchestrationResult{}, ErrNoReviewableContent
	}

	ids := batch.IDs()
	spanCtx, span := o.tracer.Start(ctx, "review.orchestrate", trace.WithAttributes(
		attribute.Int("review.batch_size", len(ids)),
		attribute.String("review.position", batch.Job.Name),
		attribute.String("review.model", o.model),
	))
	defer span.End()

	start := time.Now()
	observability.ReviewBatchSize().Observe(float64(len(ids)))
	prompt := BuildBatchPrompt(batch.Job, batch.Entries)

	state := NewReviewState(MaxReviewAttempts)
	for state.Phase == PhaseAwaitingModel {
		if err := spanCtx.Err(); err != nil {
			span.RecordError(err)
			return OrchestrationResult{}, err
		}

		attempt := state.Attempt + 1
		o.logger.Debug().
			Int("attempt", attempt).
			Int("max_attempts", state.MaxAttempts).
			Int("prompt_length", len(prompt)).
			Msg("calling language model")
		raw, err := o.callModel(spanCtx, prompt)
		if err != nil {
			if ctxErr := spanCtx.Err(); ctxErr != nil {
				span.RecordError(ctxErr)
				return OrchestrationResult{}, ctxErr
			}
			observability.ReviewAttempts().WithLabelValues("model_error").Inc()
			o.logger.Warn().Err(err).Int("attempt", attempt).Msg("language model call failed")
			state = state.Advance(Rejected{Reason: err})
			continue
		}

		verdict := o.validator.Check(raw, ids)
		if rejected, ok := verdict.(Rejected); ok {
			observability.ReviewAttempts().WithLabelValues("rejected").Inc()
			o.logger.Warn().Err(rejected.Reason).
				Int("attempt", attempt).
				Str("response_preview", truncateForLog(raw, responsePreviewLength)).
				Msg("language model response rejected")
		} else {
			observability.ReviewAttempts().WithLabelValues("accepted").Inc()
		}
		state = state.Advance(verdict)
	}

	observability.ReviewLatency().Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("review.attempts", state.Attempt))

	if state.Phase == PhaseExhausted {
		observability.ReviewBatches().WithLabelValues("exhausted").Inc()
		exhausted := &ExhaustedError{Attempts: state.Attempt, Failures: state.Failures}
		span.RecordError(exhausted)
		span.SetStatus(codes.Error, exhausted.Error())
		o.logger.Error().Err(exhausted).Int("batch_size", len(ids)).Msg("review attempts exhausted")
		return OrchestrationResult{}, exhausted
	}

	observability.ReviewBatches().WithLabelValues("validated").Inc()
	o.logger.Info().
		Int("batch_size", len(ids)).
		Int("attempts", state.Attempt).
		Dur("duration", time.Since(start)).
		Msg("review batch validated")

	return OrchestrationResult{Results: state.Results, Attempts: state.Attempt}, nil
}

func (o *ReviewOrchestrator) callModel(ctx context.Context, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.attemptTimeout)
	defer cancel()

	raw, err := o.generator.Generate(attemptCtx, prompt)
	if err != nil {
		if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w", ErrModelUnavailable, ErrAttemptTimeout)
		}
		return "", fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	return raw, nil
}

func truncateForLog(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
