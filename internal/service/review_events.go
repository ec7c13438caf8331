package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/GDSC-UTSC/gdg-website/internal/observability"
)

// ReviewCompletedEventType names the event emitted after a batch is reconciled.
const ReviewCompletedEventType = "review.completed"

// ReviewCompletedEvent announces one saved review.
type ReviewCompletedEvent struct {
	Type          string    `json:"type"`
	Source        string    `json:"source"`
	PositionID    string    `json:"position_id"`
	ApplicationID string    `json:"application_id"`
	ReviewID      string    `json:"review_id"`
	Rating        int       `json:"rating"`
	Created       bool      `json:"created"`
	CompletedAt   time.Time `json:"completed_at"`
}

// ReviewEventPublisher fans completion events out to other services.
type ReviewEventPublisher interface {
	PublishReviewCompleted(ctx context.Context, event ReviewCompletedEvent) error
}

type brokerEventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	nodeID       string
	now          func() time.Time
	logger       zerolog.Logger
}

// NewReviewEventPublisher publishes on redis channel "<base>:review.completed" and
// NATS subject "<base>.review.completed". Nil clients or an empty base disable
// the corresponding broker.
func NewReviewEventPublisher(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) ReviewEventPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":" + ReviewCompletedEventType
		subject = strings.ReplaceAll(channelBase, ":", ".") + "." + ReviewCompletedEventType
	}

	return &brokerEventPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		nodeID:       uuid.NewString(),
		now:          time.Now,
		logger:       logger.With().Str("component", "review_events").Logger(),
	}
}

func (p *brokerEventPublisher) PublishReviewCompleted(ctx context.Context, event ReviewCompletedEvent) error {
	event.Type = ReviewCompletedEventType
	event.Source = p.nodeID
	if event.CompletedAt.IsZero() {
		event.CompletedAt = p.now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			observability.ReviewEventsPublished().WithLabelValues("redis", "error").Inc()
			errs = append(errs, err)
		} else {
			observability.ReviewEventsPublished().WithLabelValues("redis", "success").Inc()
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			observability.ReviewEventsPublished().WithLabelValues("nats", "error").Inc()
			errs = append(errs, err)
		} else {
			observability.ReviewEventsPublished().WithLabelValues("nats", "success").Inc()
		}
	}

	if len(errs) == 0 {
		p.logger.Debug().Str("position_id", event.PositionID).Str("review_id", event.ReviewID).Msg("review event published")
	}
	return errors.Join(errs...)
}
