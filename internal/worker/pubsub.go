package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Job types carried in Pub/Sub messages.
const (
	JobInsightsRefresh = "insights_refresh"
	JobHealthCheck     = "health_check"
)

// healthCheckTimeout bounds the store ping of a health_check job.
const healthCheckTimeout = 10 * time.Second

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	dispatcher       *Dispatcher
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	RefreshJob       *InsightsRefreshJob
	Logger           zerolog.Logger
}

// JobMessage is the payload of a worker trigger message.
type JobMessage struct {
	Type string `json:"type"`
}

// Ack tells the caller what to do with a message after dispatch.
type Ack int

const (
	// AckDone acknowledges the message.
	AckDone Ack = iota
	// AckRetry asks for redelivery.
	AckRetry
)

// Dispatcher runs the job a message names.
type Dispatcher struct {
	refreshJob *InsightsRefreshJob
	logger     zerolog.Logger
}

// NewDispatcher creates a dispatcher for the refresh job.
func NewDispatcher(refreshJob *InsightsRefreshJob, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{refreshJob: refreshJob, logger: logger}
}

// Dispatch parses data and runs the named job. Malformed payloads are
// retried; unknown job types are acknowledged to prevent redelivery.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) (Ack, error) {
	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return AckRetry, fmt.Errorf("parsing job message: %w", err)
	}

	switch msg.Type {
	case JobInsightsRefresh:
		if err := d.handleInsightsRefresh(ctx); err != nil {
			return AckRetry, err
		}
	case JobHealthCheck:
		if err := d.handleHealthCheck(ctx); err != nil {
			return AckRetry, err
		}
	default:
		d.logger.Warn().Str("job_type", msg.Type).Msg("unknown job type")
	}
	return AckDone, nil
}

func (d *Dispatcher) handleInsightsRefresh(ctx context.Context) error {
	stats, err := d.refreshJob.Run(ctx)
	if err != nil {
		return fmt.Errorf("insights refresh: %w", err)
	}

	// Retry when most lots failed.
	if stats.Failed > stats.Generated {
		return fmt.Errorf("too many refresh failures: %d/%d", stats.Failed, stats.Lots)
	}
	return nil
}

func (d *Dispatcher) handleHealthCheck(ctx context.Context) error {
	d.logger.Debug().Msg("running health check")

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := d.refreshJob.Ping(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	d.logger.Debug().Msg("health check passed")
	return nil
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		dispatcher:       NewDispatcher(cfg.RefreshJob, cfg.Logger),
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages. It blocks until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	ack, err := h.dispatcher.Dispatch(ctx, msg.Data)
	if ack == AckRetry {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	logger.Info().
		Dur("duration", time.Since(startTime)).
		Msg("job completed")
	msg.Ack()
}
