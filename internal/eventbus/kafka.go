package eventbus

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"cogmem/internal/observability"
)

// KafkaBus publishes signals to a Kafka topic (agent_id carried as the
// message key so consumers can partition by agent) for durable replay,
// grounded on the teacher's internal/workspaces/kafka_events.go
// KafkaCommitPublisher. Everything the bus offers beyond publish/replay
// (subscribe, interrupts, intent/percept correlation) is process-local and
// delegated to an embedded InMemoryBus, optionally backed by a
// RedisInterruptStore for the interrupt surface.
type KafkaBus struct {
	*InMemoryBus

	writer     *kafka.Writer
	brokers    string
	topic      string
	interrupts *RedisInterruptStore // nil falls back to InMemoryBus's own map
}

// NewKafkaBus builds a KafkaBus publishing to topic on brokers (comma
// separated host:port list). interrupts may be nil to use the in-memory
// interrupt store instead of Redis.
func NewKafkaBus(brokers, topic string, interrupts *RedisInterruptStore) *KafkaBus {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(brokers, ",")...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaBus{
		InMemoryBus: NewInMemoryBus(),
		writer:      writer,
		brokers:     brokers,
		topic:       topic,
		interrupts:  interrupts,
	}
}

func (b *KafkaBus) Publish(ctx context.Context, sig Signal) error {
	if sig.Timestamp.IsZero() {
		sig.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(sig)
	if err != nil {
		return err
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(sig.AgentID),
		Value: payload,
		Time:  sig.Timestamp,
	}); err != nil {
		observability.LoggerWithTrace(ctx).Warn().Err(err).Str("agent_id", sig.AgentID).Msg("eventbus_kafka_publish_failed")
		return err
	}
	// Also feed the local bus so same-process subscribers, intent/percept
	// correlation, and SignalCount stay correct without round-tripping
	// through the broker.
	return b.InMemoryBus.Publish(ctx, sig)
}

// Replay reads the topic from its first offset and collects every message
// belonging to agentID. It stops at the first read error, which at the
// latest is when the 10-second deadline set at the start of the call (or
// ctx) expires; it does not check the high water mark, so a caught-up
// replay still waits out that deadline.
func (b *KafkaBus) Replay(ctx context.Context, agentID string) ([]Signal, bool) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(b.brokers, ","),
		Topic:    b.topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	if err := reader.SetOffset(kafka.FirstOffset); err != nil {
		observability.LoggerWithTrace(ctx).Warn().Err(err).Msg("eventbus_kafka_replay_seek_failed")
		return nil, false
	}

	out := make([]Signal, 0)
	readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for {
		msg, err := reader.ReadMessage(readCtx)
		if err != nil {
			break
		}
		var sig Signal
		if err := json.Unmarshal(msg.Value, &sig); err != nil {
			continue
		}
		if sig.AgentID == agentID {
			out = append(out, sig)
		}
	}
	return out, true
}

func (b *KafkaBus) Interrupt(target, agentID, reason string, opts InterruptOptions) error {
	if b.interrupts != nil {
		return b.interrupts.Set(context.Background(), target, Interruption{
			Reason:              reason,
			AgentID:             agentID,
			TargetID:            target,
			InterruptedAt:       time.Now().UTC().UnixMilli(),
			ReplacementIntentID: opts.ReplacementIntentID,
			AllowResume:         opts.AllowResume,
		})
	}
	return b.InMemoryBus.Interrupt(target, agentID, reason, opts)
}

func (b *KafkaBus) Interrupted(target string) (Interruption, bool) {
	if b.interrupts != nil {
		return b.interrupts.Get(context.Background(), target)
	}
	return b.InMemoryBus.Interrupted(target)
}

func (b *KafkaBus) ClearInterrupt(target string) error {
	if b.interrupts != nil {
		return b.interrupts.Clear(context.Background(), target)
	}
	return b.InMemoryBus.ClearInterrupt(target)
}

func (b *KafkaBus) Close() error {
	return b.writer.Close()
}
