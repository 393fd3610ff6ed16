// internal/webhooklog/mirror.go
package webhooklog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/segmentio/kafka-go"
)

// Mirror receives a copy of every attempt after it is stored. Mirror
// failures never fail a delivery.
type Mirror interface {
	Name() string
	Publish(ctx context.Context, attempt models.DeliveryAttempt) error
}

// IndexMapping is the Elasticsearch mapping for mirrored attempts.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "idempotency_key": {"type": "keyword"},
      "attempt":         {"type": "integer"},
      "timestamp":       {"type": "date"},
      "success":         {"type": "boolean"},
      "lead_name":       {"type": "text"},
      "lead_email":      {"type": "keyword"},
      "status_code":     {"type": "integer"},
      "error":           {"type": "text"},
      "duration_ms":     {"type": "long"}
    }
  }
}`

// ElasticsearchMirror indexes attempts for search. The document id is
// <idempotency key>-<attempt> so a replayed publish overwrites itself.
type ElasticsearchMirror struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchMirror(client *elasticsearch.Client, index string) *ElasticsearchMirror {
	return &ElasticsearchMirror{client: client, index: index}
}

func (m *ElasticsearchMirror) Name() string { return "elasticsearch" }

func (m *ElasticsearchMirror) Publish(ctx context.Context, a models.DeliveryAttempt) error {
	body, err := json.Marshal(a)
	if err != nil {
		return apperrors.NewIndexingFailedError(m.index, err)
	}

	res, err := m.client.Index(
		m.index,
		bytes.NewReader(body),
		m.client.Index.WithContext(ctx),
		m.client.Index.WithDocumentID(documentID(a)),
	)
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewIndexingFailedError(m.index, fmt.Errorf("%s", res.Status()))
	}
	return nil
}

func documentID(a models.DeliveryAttempt) string {
	return a.IdempotencyKey + "-" + strconv.Itoa(a.Attempt)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaStream publishes attempts to an audit topic keyed by idempotency key,
// so every attempt of a submission lands on the same partition.
type KafkaStream struct {
	writer messageWriter
	topic  string
}

func NewKafkaStream(brokers []string, topic string, batchTimeout time.Duration) *KafkaStream {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	if batchTimeout > 0 {
		w.BatchTimeout = batchTimeout
	}
	return &KafkaStream{writer: w, topic: topic}
}

func (k *KafkaStream) Name() string { return "kafka" }

func (k *KafkaStream) Publish(ctx context.Context, a models.DeliveryAttempt) error {
	value, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal delivery attempt: %w", err)
	}

	result := "failure"
	if a.Success {
		result = "success"
	}
	msg := kafka.Message{
		Key:   []byte(a.IdempotencyKey),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("lead.delivery.attempt")},
			{Key: "result", Value: []byte(result)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return apperrors.NewExternalServiceError("kafka", fmt.Errorf("publish to %s: %w", k.topic, err))
	}
	return nil
}

func (k *KafkaStream) Close() error {
	return k.writer.Close()
}
