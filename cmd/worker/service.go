package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/dealhaven/dealhaven-backend/pkg/enums"
	"github.com/dealhaven/dealhaven-backend/pkg/logger"
	"github.com/dealhaven/dealhaven-backend/pkg/outbox"
)

type eventProcessor interface {
	Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error
}

// Service drains the domain event subscription and hands each envelope to
// the analytics consumer. Undecodable messages are acked so a poison payload
// cannot wedge the subscription; processing failures nack for redelivery.
type Service struct {
	subscription *gcppubsub.Subscriber
	processor    eventProcessor
	logg         *logger.Logger
}

func NewService(subscription *gcppubsub.Subscriber, processor eventProcessor, logg *logger.Logger) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("domain subscription is required")
	}
	if processor == nil {
		return nil, errors.New("event processor is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		subscription: subscription,
		processor:    processor,
		logg:         logg,
	}, nil
}

type processResult struct {
	nack bool
}

// Run consumes messages until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.handle(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (s *Service) handle(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{
		"message_id": msg.ID,
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		fields["error"] = err.Error()
		s.logg.Warn(s.logg.WithFields(ctx, fields), "undecodable event envelope")
		return processResult{}
	}

	rawType := strings.TrimSpace(msg.Attributes["event_type"])
	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		fields["event_type"] = rawType
		s.logg.Warn(s.logg.WithFields(ctx, fields), "unknown event type")
		return processResult{}
	}

	fields["event_id"] = envelope.EventID
	fields["event_type"] = string(eventType)
	logCtx := s.logg.WithFields(ctx, fields)

	if err := s.processor.Process(logCtx, eventType, envelope); err != nil {
		s.logg.Error(logCtx, "event processing failed", err)
		return processResult{nack: true}
	}
	return processResult{}
}
