package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"

	"github.com/willojs/FARS/internal/config"
	"github.com/willojs/FARS/internal/domain"
)

// batchSize caps the number of messages handed to one WriteMessages call.
const batchSize = 500

// tripAfter consecutive failed batches open the breaker; it probes again
// after breakerTimeout.
const (
	tripAfter      = 3
	breakerTimeout = 30 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes accident records to a Kafka topic, one message per
// accident. It implements pipeline.Publisher.
type Writer struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newWriter(w, logger)
}

func newWriter(w messageWriter, logger *slog.Logger) *Writer {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "kafka-publish",
		Timeout: breakerTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= tripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &Writer{writer: w, breaker: cb, logger: logger}
}

// accidentMessage is the JSON value of a published accident.
type accidentMessage struct {
	Year int `json:"year"`
	domain.AccidentRecord
}

// Publish writes every record of tables in batches and returns how many
// messages were accepted by the broker.
func (w *Writer) Publish(ctx context.Context, tables []domain.YearTable) (int, error) {
	publishedAt := domain.Now()
	sent := 0
	batch := make([]kafkago.Message, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := w.breaker.Execute(func() (interface{}, error) {
			return nil, w.writer.WriteMessages(ctx, batch...)
		})
		if err != nil {
			return fmt.Errorf("write %d messages: %w", len(batch), err)
		}
		sent += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, table := range tables {
		year, ok := table.Year.Int()
		if !ok {
			continue
		}
		for i := range table.Records {
			msg, err := serializeToMessage(year, table.Records[i], publishedAt)
			if err != nil {
				return sent, err
			}
			batch = append(batch, msg)
			if len(batch) == batchSize {
				if err := flush(); err != nil {
					return sent, err
				}
			}
		}
		w.logger.Debug("year queued for publish", "year", year, "records", len(table.Records))
	}

	if err := flush(); err != nil {
		return sent, err
	}
	return sent, nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// MessageKey identifies an accident across years: <year>-<state>-<case>.
func MessageKey(year int, rec domain.AccidentRecord) string {
	return fmt.Sprintf("%d-%d-%d", year, rec.State, rec.Case)
}

// serializeToMessage marshals one accident into a Kafka message.
func serializeToMessage(year int, rec domain.AccidentRecord, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(accidentMessage{Year: year, AccidentRecord: rec})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize accident %s: %w", MessageKey(year, rec), err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(year, rec)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "year", Value: []byte(strconv.Itoa(year))},
			{Key: "published_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
