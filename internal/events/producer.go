package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

var producer *Producer
var producerName string

type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

// Init wires the shared lifecycle producer. With no brokers configured
// the stream is disabled and Publish becomes a no-op.
func Init(brokers []string, topic, serviceName string) {
	producerName = serviceName
	if len(brokers) == 0 {
		log.Println("kafka brokers not configured, lifecycle event stream disabled")
		return
	}
	producer = NewProducer(brokers, topic, 256)
	producer.Start(context.Background())
	log.Printf("Kafka lifecycle producer initialized (topic=%s)", topic)
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				close(p.inbox)
				for m := range p.inbox {
					_ = p.w.WriteMessages(context.Background(), m)
				}
				_ = p.w.Close()
				close(p.closeCh)
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					return
				}
				if err := p.w.WriteMessages(context.Background(), m); err != nil {
					log.Printf("[events][ERROR] publish failed: %v", err)
				}
			}
		}
	}()
}

// Publish emits a lifecycle event, fire-and-forget. The correlation ID
// keys the message so one aggregate's events stay ordered.
func Publish(eventType, correlationID string, payload any) {
	if producer == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[events][ERROR] marshal payload for %s: %v", eventType, err)
		return
	}
	env := Envelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: correlationID,
		Payload:       raw,
	}
	value, err := json.Marshal(env)
	if err != nil {
		log.Printf("[events][ERROR] marshal envelope for %s: %v", eventType, err)
		return
	}
	select {
	case producer.inbox <- kafka.Message{Key: []byte(correlationID), Value: value, Time: time.Now()}:
	default:
		log.Printf("[events][WARN] inbox full, dropped %s for %s", eventType, correlationID)
	}
}

// Close flushes queued messages and stops the producer goroutine.
func Close() {
	if producer != nil {
		close(producer.inbox)
	}
}
