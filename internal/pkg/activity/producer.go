package activity

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

// Event types of the workflow activity stream
const (
	RequestCreated      = "request.created"
	RequestAccepted     = "request.accepted"
	RequestRejected     = "request.rejected"
	RatingSubmitted     = "rating.submitted"
	AssignmentCreated   = "assignment.created"
	AssignmentCompleted = "assignment.completed"
)

// Event is one workflow state change
type Event struct {
	Type      string      `json:"type"`
	ActorID   string      `json:"actorId"`
	SubjectID string      `json:"subjectId"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher emits activity events. Publishing never fails the workflow
// that triggered it; errors are only reported to the caller for logging.
type Publisher interface {
	Publish(evt Event) error
	Close() error
}

// Nop is used when no broker is configured
type Nop struct{}

func (Nop) Publish(Event) error { return nil }
func (Nop) Close() error        { return nil }

// Producer writes events to a Kafka topic keyed by subject id, so all
// events of one request, mentor or chat land on the same partition.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewConfig returns the producer settings used for the activity topic
func NewConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.ClientID = "mentorlink"
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	return config
}

// NewProducer dials the brokers
func NewProducer(brokers []string, topic string, logger zerolog.Logger) (*Producer, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewConfig())
	if err != nil {
		return nil, err
	}

	logger.Info().Strs("brokers", brokers).Str("topic", topic).Msg("Kafka producer initialized")
	return NewProducerWith(producer, topic, logger), nil
}

// NewProducerWith wraps an existing sync producer
func NewProducerWith(producer sarama.SyncProducer, topic string, logger zerolog.Logger) *Producer {
	return &Producer{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish sends evt and waits for the broker acknowledgement
func (p *Producer) Publish(evt Event) error {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error().Err(err).Str("type", evt.Type).Msg("Failed to marshal activity event")
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(evt.SubjectID),
		Value:     sarama.ByteEncoder(value),
		Timestamp: evt.Timestamp,
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(evt.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error().Err(err).Str("type", evt.Type).Msg("Failed to send activity event to Kafka")
		return err
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Str("type", evt.Type).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Activity event sent")
	return nil
}

// Close flushes and closes the producer
func (p *Producer) Close() error {
	return p.producer.Close()
}
