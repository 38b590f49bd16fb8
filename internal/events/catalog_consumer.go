package events

import (
	"context"

	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/Kilat-Rental/service-reservation/internal/platform/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AvailabilityApplier records availability changes. *application.CatalogService satisfies it.
type AvailabilityApplier interface {
	ApplyAvailabilityChange(ctx context.Context, id uuid.UUID, availability string) error
}

// CatalogEventConsumer listens to catalog events and keeps vehicle availability current.
type CatalogEventConsumer struct {
	consumer *kafka.Consumer
	applier  AvailabilityApplier
	logger   *zap.Logger
}

// NewCatalogEventConsumer creates a new CatalogEventConsumer.
func NewCatalogEventConsumer(
	brokers []string,
	groupID string,
	applier AvailabilityApplier,
	logger *zap.Logger,
) *CatalogEventConsumer {
	return &CatalogEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicCatalogEvents, logger),
		applier:  applier,
		logger:   logger,
	}
}

// Start begins consuming catalog events. This blocks until the context is cancelled.
func (c *CatalogEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CatalogEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CatalogEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from catalog topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // malformed messages are not retried
	}

	switch ce.Type {
	case VehicleAvailabilityChanged:
		return c.handleAvailabilityChanged(ctx, ce)
	default:
		c.logger.Debug("ignoring unhandled catalog event type", zap.String("type", ce.Type))
		return nil
	}
}

func (c *CatalogEventConsumer) handleAvailabilityChanged(ctx context.Context, ce kafka.CloudEvent) error {
	var evt VehicleAvailabilityChangedEvent
	if err := ce.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse VehicleAvailabilityChangedEvent data", zap.Error(err))
		return nil
	}

	c.logger.Info("processing vehicle availability change",
		zap.String("vehicle_id", evt.VehicleID.String()),
		zap.String("availability", evt.Availability),
	)

	err := c.applier.ApplyAvailabilityChange(ctx, evt.VehicleID, evt.Availability)
	switch {
	case err == nil:
		return nil
	case apperr.IsValidation(err), apperr.IsNotFound(err):
		c.logger.Warn("dropping availability change",
			zap.String("vehicle_id", evt.VehicleID.String()),
			zap.Error(err),
		)
		return nil
	default:
		return err
	}
}
