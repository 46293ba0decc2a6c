package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/adelfree2023-dev/storefront-engine/internal/service"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
)

// EventTypePlanUpdated marks a plan create/update record
const EventTypePlanUpdated = "plan_updated"

// PlanEvent is the wire shape on the plan events topic
type PlanEvent struct {
	Type       string    `json:"type"`
	PlanID     string    `json:"plan_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PlanEventPublisher broadcasts plan changes so other instances can
// invalidate their caches ahead of TTL expiry
type PlanEventPublisher interface {
	// PlanUpdated publishes a plan_updated event. Best-effort: a
	// publish failure is logged, never surfaced — TTL expiry is the
	// consistency backstop.
	PlanUpdated(ctx context.Context, planID string)
	// Close flushes and closes the underlying client
	Close()
}

// kafkaPublisher implements PlanEventPublisher on franz-go
type kafkaPublisher struct {
	client *kgo.Client
	topic  string
	log    *logger.Logger
}

// NewPlanEventPublisher creates a Kafka-backed publisher
func NewPlanEventPublisher(brokers []string, clientID, topic string, log *logger.Logger) (PlanEventPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, err
	}
	return &kafkaPublisher{client: client, topic: topic, log: log}, nil
}

// PlanUpdated publishes a plan_updated event
func (p *kafkaPublisher) PlanUpdated(ctx context.Context, planID string) {
	event := PlanEvent{
		Type:       EventTypePlanUpdated,
		PlanID:     planID,
		OccurredAt: time.Now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		p.log.Error("marshal plan event", zap.Error(err))
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(planID),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.log.Warn("plan event publish failed",
				zap.String("plan_id", planID),
				zap.Error(err))
		}
	})
}

// Close flushes and closes the underlying client
func (p *kafkaPublisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}

// InvalidationConsumer applies plan events from other instances to the
// local plan cache
type InvalidationConsumer struct {
	client  *kgo.Client
	catalog service.PlanCatalog
	log     *logger.Logger
}

// NewInvalidationConsumer creates a consumer in the given group
func NewInvalidationConsumer(brokers []string, group, clientID, topic string, catalog service.PlanCatalog, log *logger.Logger) (*InvalidationConsumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ClientID(clientID),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topic),
	)
	if err != nil {
		return nil, err
	}
	return &InvalidationConsumer{client: client, catalog: catalog, log: log}, nil
}

// Run polls until the context is cancelled. Call in its own goroutine.
func (c *InvalidationConsumer) Run(ctx context.Context) {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.log.Warn("plan event fetch error",
				zap.String("topic", topic),
				zap.Int32("partition", partition),
				zap.Error(err))
		})
		fetches.EachRecord(func(record *kgo.Record) {
			var event PlanEvent
			if err := json.Unmarshal(record.Value, &event); err != nil {
				c.log.Warn("malformed plan event", zap.Error(err))
				return
			}
			if event.Type == EventTypePlanUpdated && event.PlanID != "" {
				c.catalog.Invalidate(event.PlanID)
				c.log.Debug("plan cache invalidated by event",
					zap.String("plan_id", event.PlanID))
			}
		})
	}
}

// Close closes the underlying client
func (c *InvalidationConsumer) Close() {
	c.client.Close()
}
