package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Checkout event types written to the checkout topic.
const (
	CheckoutSucceeded   = "checkout.succeeded"
	CheckoutFailed      = "checkout.failed"
	CheckoutOrderUnpaid = "checkout.order_unpaid"
)

type KafkaProducer struct {
	brokers []string
	topic   string
	logger  *zap.Logger

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewKafkaProducer(brokers []string, topic string, logger *zap.Logger) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		topic:   topic,
		logger:  logger,
		writers: make(map[string]*kafka.Writer),
	}
}

func (kp *KafkaProducer) GetWriter(topic string) *kafka.Writer {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	if writer, exists := kp.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(kp.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	kp.writers[topic] = writer
	return writer
}

func (kp *KafkaProducer) SendMessage(ctx context.Context, topic string, key string, value interface{}) error {
	writer := kp.GetWriter(topic)

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: jsonData,
	}

	return writer.WriteMessages(ctx, message)
}

// PublishCheckoutEvent writes event to the checkout topic keyed by order
// number, so all events of one order land on one partition.
func (kp *KafkaProducer) PublishCheckoutEvent(ctx context.Context, event CheckoutEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	key := event.OrderNumber
	if key == "" {
		key = event.SessionID
	}
	return kp.SendMessage(ctx, kp.topic, key, event)
}

func (kp *KafkaProducer) Close() {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	for topic, writer := range kp.writers {
		if err := writer.Close(); err != nil {
			kp.logger.Warn("Failed to close kafka writer", zap.String("topic", topic), zap.Error(err))
		}
	}
}

// CheckoutEvent is the payload published for each finished checkout attempt.
type CheckoutEvent struct {
	Type           string    `json:"type"`
	SessionID      string    `json:"session_id,omitempty"`
	OrderNumber    string    `json:"order_number,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	TotalAmount    int64     `json:"total_amount"`
	DiscountCode   string    `json:"discount_code,omitempty"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
