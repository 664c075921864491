// Package events publishes committed category mutations to Kafka so other
// services (product listings, storefront menus) can refresh their copies.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	logger logger.ZapLogger
}

var _ category.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher writes to cfg.Topic. Messages are keyed by the first
// subject id so all events of one category land on the same partition.
func NewKafkaPublisher(cfg config.KafkaConfig, log logger.ZapLogger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	log.Info("kafka publisher ready", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return newPublisher(w, log)
}

func newPublisher(w messageWriter, log logger.ZapLogger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...model.CategoryEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := toMessage(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	p.logger.Debug("category events published", zap.Int("count", len(msgs)))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(e model.CategoryEvent) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s event: %w", e.EventType, err)
	}

	var key []byte
	if len(e.SubjectIDs) > 0 {
		key = []byte(e.SubjectIDs[0])
	}
	return kafka.Message{
		Key:   key,
		Value: value,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.EventType)},
			{Key: "event_id", Value: []byte(e.EventID)},
		},
	}, nil
}
