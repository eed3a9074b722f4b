package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/pkg/config"
)

func TestGoChannelBusDeliversGradeCalculated(t *testing.T) {
	bus := NewGoChannelBus(8, nil)
	defer bus.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan GradeCalculated, 1)
	require.NoError(t, bus.Subscribe(ctx, "grades", func(_ context.Context, msg *message.Message) error {
		var evt GradeCalculated
		env, err := Decode(msg, &evt)
		if err != nil {
			return err
		}
		assert.Equal(t, TypeGradeCalculated, env.Type)
		received <- evt
		return nil
	}))

	msg, err := NewMessage(TypeGradeCalculated, GradeCalculated{StudentID: "stu-1", FinalScore: 34, LetterGrade: "E"})
	require.NoError(t, err)
	assert.Equal(t, string(TypeGradeCalculated), msg.Metadata.Get("event_type"))
	require.NoError(t, bus.Publish(ctx, "grades", msg))

	select {
	case evt := <-received:
		assert.Equal(t, "stu-1", evt.StudentID)
		assert.Equal(t, "E", evt.LetterGrade)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBusRedeliversAfterHandlerError(t *testing.T) {
	bus := NewGoChannelBus(8, nil)
	defer bus.Close() //nolint:errcheck
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts atomic.Int32
	done := make(chan struct{})
	require.NoError(t, bus.Subscribe(ctx, "grades", func(context.Context, *message.Message) error {
		if attempts.Add(1) == 1 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}))

	msg, err := NewMessage(TypeGradeCalculated, GradeCalculated{StudentID: "stu-1"})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, "grades", msg))

	select {
	case <-done:
		assert.Equal(t, int32(2), attempts.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("message not redelivered")
	}
}

func TestNewRejectsUnknownPublisher(t *testing.T) {
	_, err := New(config.EventsConfig{Publisher: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}

func TestNewKafkaRequiresBrokers(t *testing.T) {
	_, err := New(config.EventsConfig{Publisher: config.PublisherKafka}, nil)
	assert.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(message.NewMessage("x", []byte("not json")), nil)
	assert.Error(t, err)
}
