package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-grading-api/pkg/config"
	"github.com/noah-isme/sma-grading-api/pkg/logger"
)

// HandlerFunc consumes one message. A non-nil error nacks it.
type HandlerFunc func(ctx context.Context, msg *message.Message) error

// Bus pairs a watermill publisher with a subscriber on the same transport.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *zap.Logger
	shared     bool

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New builds the bus selected by cfg.Publisher.
func New(cfg config.EventsConfig, log *zap.Logger) (*Bus, error) {
	if log == nil {
		log = zap.NewNop()
	}
	wmLogger := logger.NewWatermillAdapter(log)

	switch cfg.Publisher {
	case config.PublisherKafka:
		return newKafkaBus(cfg, wmLogger, log)
	case config.PublisherGoChannel, "":
		return NewGoChannelBus(cfg.SubscriberBufSize, log), nil
	default:
		return nil, fmt.Errorf("unknown events publisher %q", cfg.Publisher)
	}
}

// NewGoChannelBus runs events in process.
func NewGoChannelBus(buffer int64, log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: buffer}, logger.NewWatermillAdapter(log))
	return &Bus{publisher: pubSub, subscriber: pubSub, logger: log, shared: true}
}

func newKafkaBus(cfg config.EventsConfig, wmLogger watermill.LoggerAdapter, log *zap.Logger) (*Bus, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               cfg.KafkaBrokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		ConsumerGroup:         cfg.KafkaConsumerGrp,
		OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("create kafka subscriber: %w", err)
	}
	return &Bus{publisher: publisher, subscriber: subscriber, logger: log}, nil
}

// Publish sends msg to topic.
func (b *Bus) Publish(ctx context.Context, topic string, msg *message.Message) error {
	msg.SetContext(ctx)
	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	b.logger.Debug("event published",
		zap.String("topic", topic),
		zap.String("event_id", msg.UUID),
		zap.String("event_type", msg.Metadata.Get("event_type")))
	return nil
}

// Subscribe consumes topic in a goroutine until ctx is done or the bus closes.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler HandlerFunc) error {
	messages, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			if err := handler(msg.Context(), msg); err != nil {
				b.logger.Warn("event handler failed",
					zap.String("topic", topic),
					zap.String("event_id", msg.UUID),
					zap.Error(err))
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

// Close shuts both sides of the transport and waits for consumers to drain.
func (b *Bus) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = b.publisher.Close()
		if !b.shared {
			err = errors.Join(err, b.subscriber.Close())
		}
		b.wg.Wait()
	})
	return err
}
