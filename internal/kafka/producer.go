package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-attendance/internal/config"
	"ms-attendance/internal/models"
)

// Producer streams domain events to Kafka, one topic-bound writer each.
type Producer struct {
	eventCreated *kafka.Writer
	eventDeleted *kafka.Writer
	checkedIn    *kafka.Writer
}

func NewProducer(brokers []string, topics config.TopicConfig) *Producer {
	return &Producer{
		eventCreated: newWriter(brokers, topics.EventCreated),
		eventDeleted: newWriter(brokers, topics.EventDeleted),
		checkedIn:    newWriter(brokers, topics.AttendanceChecked),
	}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
}

// PublishEventCreated streams a newly materialized or manually created event.
func (p *Producer) PublishEventCreated(event models.Event) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.eventCreated.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(event.ID),
			Value: msgBytes,
		},
	)
}

// PublishEventDeleted streams an event removal.
func (p *Producer) PublishEventDeleted(event models.Event) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.eventDeleted.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(event.ID),
			Value: msgBytes,
		},
	)
}

type checkInMessage struct {
	AttendanceID  string    `json:"attendance_id"`
	ParticipantID string    `json:"participant_id"`
	EventID       string    `json:"event_id"`
	EventName     string    `json:"event_name"`
	GroupID       string    `json:"group_id,omitempty"`
	CheckedInAt   time.Time `json:"checked_in_at"`
}

// PublishCheckedIn streams a successful check-in.
func (p *Producer) PublishCheckedIn(att models.Attendance, event models.Event) error {
	msgBytes, err := json.Marshal(checkInMessage{
		AttendanceID:  att.ID,
		ParticipantID: att.ParticipantID,
		EventID:       event.ID,
		EventName:     event.Name,
		GroupID:       event.GroupID,
		CheckedInAt:   att.CreatedAt,
	})
	if err != nil {
		return err
	}
	return p.checkedIn.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(att.EventID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	for _, w := range []*kafka.Writer{p.eventCreated, p.eventDeleted, p.checkedIn} {
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}
