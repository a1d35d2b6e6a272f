package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/reflex/inventario-api/internal/domain/entity"
)

// MessageWriter subconjunto de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher escribe cada alerta en un tópico; la clave es el código de producto
// para que las alertas de un producto queden en la misma partición.
type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// NewKafkaWriter writer de baja latencia para el tópico de alertas.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}
}

func (p *KafkaPublisher) Name() string { return "kafka" }

func (p *KafkaPublisher) Publish(ctx context.Context, alert entity.ExpirationAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("serializar alerta: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(alert.ProductCode, 10)),
		Value: payload,
		Time:  alert.EmittedAt,
		Headers: []kafka.Header{
			{Key: "alert-kind", Value: []byte(alert.Kind)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close cierra el writer subyacente.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
