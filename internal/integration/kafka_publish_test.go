//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willojs/FARS/internal/adapter/census"
	"github.com/willojs/FARS/internal/adapter/kafka"
	"github.com/willojs/FARS/internal/config"
	"github.com/willojs/FARS/internal/domain"
	"github.com/willojs/FARS/internal/fixture"
	"github.com/willojs/FARS/internal/observability"
	"github.com/willojs/FARS/internal/pipeline"
)

const testTopic = "fars-accidents-test"

type publishedAccident struct {
	Year     int                `json:"year"`
	State    int                `json:"state"`
	Case     int                `json:"st_case"`
	Month    int                `json:"month"`
	Location *domain.Coordinate `json:"location"`
}

// TestPublishYears_RoundTrip publishes two year files plus a missing year and
// reads every message back from the topic.
func TestPublishYears_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	publishedAt := time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(publishedAt))
	t.Cleanup(func() { domain.SetClock(nil) })

	dir := t.TempDir()
	y2013 := fixture.Generate(domain.NewYear(2013), 40, []int{1, 6}, 7)
	y2014 := fixture.Generate(domain.NewYear(2014), 25, []int{48}, 7)
	require.NoError(t, fixture.WriteFile(filepath.Join(dir, "accident_2013.csv.bz2"), y2013))
	require.NoError(t, fixture.WriteFile(filepath.Join(dir, "accident_2014.csv.bz2"), y2014))

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	svc := pipeline.New(dir, census.FileReader{}, discardLogger(), metrics)

	years := domain.ParseYears([]int{2013, 1999, 2014})
	n, err := svc.PublishYears(ctx, years, writer)
	require.NoError(t, err)
	require.Equal(t, len(y2013)+len(y2014), n)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	perYear := map[int]int{}
	for i := 0; i < n; i++ {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read message %d", i)

		var acc publishedAccident
		require.NoError(t, json.Unmarshal(msg.Value, &acc))
		perYear[acc.Year]++

		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, publishedAt.Format(time.RFC3339), headers["published_at"])
		assert.Equal(t, kafka.MessageKey(acc.Year, domain.AccidentRecord{State: acc.State, Case: acc.Case}), string(msg.Key))

		if acc.Location != nil {
			assert.Less(t, acc.Location.Lat, domain.MissingLatitude)
		}
	}

	assert.Equal(t, map[int]int{2013: len(y2013), 2014: len(y2014)}, perYear)
}
