package repository

import (
	"context"

	"FolioPulse/internal/domain/models"
	pkgkafka "FolioPulse/pkg/kafka"
)

// KafkaEventPublisher emits canonical snapshots and allocation runs to
// Kafka for downstream consumers.
type KafkaEventPublisher struct {
	producer        *pkgkafka.Producer
	snapshotTopic   string
	allocationTopic string
}

// NewKafkaEventPublisher creates the Kafka-backed publisher.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, snapshotTopic, allocationTopic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer:        producer,
		snapshotTopic:   snapshotTopic,
		allocationTopic: allocationTopic,
	}
}

func (p *KafkaEventPublisher) PublishSnapshots(ctx context.Context, snaps []models.CanonicalSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(snaps))
	for i, s := range snaps {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(s.AssetID),
			Value: s,
		}
	}
	return p.producer.PublishBatch(ctx, p.snapshotTopic, msgs)
}

func (p *KafkaEventPublisher) PublishAllocation(ctx context.Context, res *models.AllocationResult) error {
	return p.producer.Publish(ctx, p.allocationTopic, []byte(string(res.RiskProfile)), res)
}

// PublishMessage satisfies the logger collector's publisher interface so
// aggregated error logs can ride the same producer.
func (p *KafkaEventPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
