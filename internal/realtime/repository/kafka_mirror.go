package repository

import (
	"context"

	"trading_hub/internal/realtime/domain"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

// KafkaMirror definition kafka topic mirror
type KafkaMirror struct {
	writer *kafka.Writer
}

// NewKafkaMirror create KafkaMirror
func NewKafkaMirror(writer *kafka.Writer) *KafkaMirror {
	return &KafkaMirror{writer: writer}
}

// Publish write the event keyed by its target so one room stays in one partition
func (k *KafkaMirror) Publish(ctx context.Context, evt domain.MirroredEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(string(evt.Scope) + ":" + evt.Target),
		Value: data,
	})
}

// Close flush and close the writer
func (k *KafkaMirror) Close() error {
	return k.writer.Close()
}
