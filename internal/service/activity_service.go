package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/models"
	"github.com/kishan34-Mac/AcreCap-Full-stack/internal/repository"
)

// ActivityService appends audit entries. Everything here is
// best-effort: a failed append is logged and forgotten, never surfaced
// to the caller.
type ActivityService struct {
	repo   *repository.ActivityRepo
	writer *kafka.Writer // nil unless an event broker is configured
	log    *zap.Logger
}

func NewActivityService(repo *repository.ActivityRepo, writer *kafka.Writer, log *zap.Logger) *ActivityService {
	return &ActivityService{repo: repo, writer: writer, log: log}
}

// NewKafkaWriter builds the audit event producer, or nil when no
// brokers are configured.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	if len(brokers) == 0 {
		return nil
	}
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
}

// Log records an action with an arbitrary structured payload.
func (s *ActivityService) Log(ctx context.Context, action string, data map[string]any, userID *string) {
	payload, err := json.Marshal(data)
	if err != nil {
		s.log.Warn("activity: marshal payload failed", zap.String("action", action), zap.Error(err))
		return
	}

	if s.repo != nil {
		entry := &models.ActivityLog{
			Action: action,
			Data:   payload,
			UserID: userID,
		}
		if err := s.repo.Append(ctx, entry); err != nil {
			s.log.Warn("activity: append failed", zap.String("action", action), zap.Error(err))
		}
	}

	if s.writer != nil {
		wctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		msg := kafka.Message{
			Key:   []byte(action),
			Value: payload,
		}
		if err := s.writer.WriteMessages(wctx, msg); err != nil {
			s.log.Warn("activity: kafka publish failed", zap.String("action", action), zap.Error(err))
		}
	}
}
