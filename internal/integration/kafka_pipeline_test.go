//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/storm-sounding-validator/internal/adapter/kafka"
	"github.com/couchcryptid/storm-sounding-validator/internal/config"
	"github.com/couchcryptid/storm-sounding-validator/internal/domain"
	"github.com/couchcryptid/storm-sounding-validator/internal/observability"
	"github.com/couchcryptid/storm-sounding-validator/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
)

// reportMessage holds a deserialized message read from the sink topic.
type reportMessage struct {
	Report  domain.Report
	Key     string
	Headers map[string]string
}

// mockCase mirrors one entry of the genmock fixture.
type mockCase struct {
	Name          string          `json:"name"`
	ExpectedKinds []string        `json:"expected_kinds"`
	Sounding      json.RawMessage `json:"sounding"`
}

// readReport reads a single message from the sink consumer and deserializes it.
func readReport(ctx context.Context, t *testing.T, consumer *kafkago.Reader) reportMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var report domain.Report
	require.NoError(t, json.Unmarshal(msg.Value, &report), "unmarshal sink message")

	return reportMessage{
		Report:  report,
		Key:     string(msg.Key),
		Headers: headers,
	}
}

func newSinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func newProducer(t *testing.T, broker string) *kafkago.Writer {
	t.Helper()
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })
	return producer
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (BatchExtractor)
// and kafka.Writer (BatchLoader) correctly round-trip a sounding through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-reader")

	// Publish the station-pressure case: one ordering failure.
	cases := loadMockData(t)
	tc := findCase(t, cases, "station_pressure_below_lowest_level")

	producer := newProducer(t, broker)
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("test-key"),
		Value: tc.Sounding,
	}))

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("test-key"), raw.Key)
	assert.JSONEq(t, string(tc.Sounding), string(raw.Value))
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")

	require.NoError(t, raw.Commit(ctx))

	validator := pipeline.NewSoundingValidator(discardLogger(), observability.NewMetricsForTesting())
	report, err := validator.Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.LoadBatch(ctx, []domain.Report{report}))

	rm := readReport(ctx, t, newSinkConsumer(t, broker))
	assert.Equal(t, report.SoundingID, rm.Key)
	assert.Equal(t, "KBOI", rm.Headers["station"])
	assert.Equal(t, "false", rm.Headers["valid"])
	_, err = time.Parse(time.RFC3339, rm.Headers["validated_at"])
	assert.NoError(t, err, "validated_at should be valid RFC3339")

	require.Len(t, rm.Report.Violations, 1)
	v := rm.Report.Violations[0]
	assert.Equal(t, "pressure_not_decreasing_with_height", v.Kind)
	assert.Equal(t, []float64{830, 840}, v.Values)
}

// TestPipelineEndToEnd wires the full pipeline (Reader → SoundingValidator →
// Writer) with real Kafka and verifies a report for every fixture case.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-pipeline")

	cases := loadMockData(t)
	msgs := make([]kafkago.Message, 0, len(cases))
	for _, tc := range cases {
		msgs = append(msgs, kafkago.Message{Key: []byte(tc.Name), Value: tc.Sounding})
	}
	require.NoError(t, newProducer(t, broker).WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	validator := pipeline.NewSoundingValidator(discardLogger(), metrics)
	p := pipeline.New(reader, validator, writer, discardLogger(), metrics, 50, true)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	received := make(map[int]reportMessage, len(cases))
	for len(received) < len(cases) {
		rm := readReport(ctx, t, consumer)
		received[rm.Report.LeadTime] = rm
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	// genmock assigns each case its index as lead time.
	for i, tc := range cases {
		rm, ok := received[i]
		require.True(t, ok, "missing report for %s", tc.Name)

		kinds := make([]string, 0, len(rm.Report.Violations))
		for _, v := range rm.Report.Violations {
			kinds = append(kinds, v.Kind)
		}
		assert.Equal(t, tc.ExpectedKinds, kinds, tc.Name)
		assert.Equal(t, strconv.FormatBool(len(tc.ExpectedKinds) == 0), rm.Headers["valid"], tc.Name)
		assert.Equal(t, rm.Report.SoundingID, rm.Key, tc.Name)
	}
	require.NoError(t, p.CheckReadiness(ctx))
}

// TestPipelineSkipsValidWhenDisabled verifies that with report publishing for
// valid soundings turned off only failing soundings reach the sink.
func TestPipelineSkipsValidWhenDisabled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-invalid-only")

	cases := loadMockData(t)
	valid := findCase(t, cases, "valid")
	invalid := findCase(t, cases, "wind_direction_out_of_range")

	require.NoError(t, newProducer(t, broker).WriteMessages(ctx,
		kafkago.Message{Key: []byte("valid"), Value: valid.Sounding},
		kafkago.Message{Key: []byte("invalid"), Value: invalid.Sounding},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, pipeline.NewSoundingValidator(discardLogger(), metrics), writer, discardLogger(), metrics, 50, false)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	rm := readReport(ctx, t, consumer)
	assert.False(t, rm.Report.Valid)
	assert.Len(t, rm.Report.Violations, 5)

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no report for the valid sounding")

	pipelineCancel()
	require.NoError(t, <-errCh)
}

// TestPipelineDecodeError verifies that an undecodable message (poison pill)
// is skipped and the pipeline continues processing valid messages.
func TestPipelineDecodeError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-poison")

	cases := loadMockData(t)
	good := findCase(t, cases, "valid")

	require.NoError(t, newProducer(t, broker).WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("good"), Value: good.Sounding},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, pipeline.NewSoundingValidator(discardLogger(), metrics), writer, discardLogger(), metrics, 50, true)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	rm := readReport(ctx, t, consumer)
	assert.True(t, rm.Report.Valid)
	assert.Equal(t, "KBOI", rm.Report.StationID)

	// Verify no second message arrives (the poison pill was skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}

// --- helpers ---

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("sounding-validator"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadMockData(t *testing.T) []mockCase {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "..", "data", "mock", "soundings.json"))
	require.NoError(t, err)

	var cases []mockCase
	require.NoError(t, json.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)
	return cases
}

func findCase(t *testing.T, cases []mockCase, name string) mockCase {
	t.Helper()
	for _, tc := range cases {
		if tc.Name == name {
			return tc
		}
	}
	t.Fatalf("fixture case %q not found", name)
	return mockCase{}
}
