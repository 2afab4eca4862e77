package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	srvtest "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startServer(t *testing.T) *server.Server {
	t.Helper()
	opts := srvtest.DefaultTestOptions
	opts.Port = -1
	s := srvtest.RunServer(&opts)
	t.Cleanup(s.Shutdown)
	return s
}

func TestNewPublisher_Disabled(t *testing.T) {
	p, err := NewPublisher(Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)
	assert.NoError(t, p.Publish(context.Background(), Event{Type: TypeReconciled}))
	p.Close()
}

func TestNewPublisher_Unreachable(t *testing.T) {
	_, err := NewPublisher(Config{NatsURL: "nats://127.0.0.1:1", ConnectTimeoutSeconds: 1}, zap.NewNop())
	assert.Error(t, err)
}

func TestNATSPublisher_Publish(t *testing.T) {
	s := startServer(t)

	sub, err := nats.Connect(s.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	msgs, err := sub.SubscribeSync("test.inventory.reconciled.12")
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	p, err := NewPublisher(Config{NatsURL: s.ClientURL(), SubjectPrefix: "test.inventory"}, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	userID := uint(3)
	err = p.Publish(context.Background(), Event{
		Type:     TypeReconciled,
		ServerID: 12,
		Mode:     "merge",
		UserID:   &userID,
		Payload:  map[string]int{"added": 2},
	})
	require.NoError(t, err)

	msg, err := msgs.NextMsg(2 * time.Second)
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.OccurredAt.IsZero())
	assert.Equal(t, uint(12), got.ServerID)
	assert.Equal(t, "merge", got.Mode)
	assert.Equal(t, uint(3), *got.UserID)
}

func TestNATSPublisher_CanceledContext(t *testing.T) {
	s := startServer(t)
	p, err := NewPublisher(Config{NatsURL: s.ClientURL()}, zap.NewNop())
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, Event{Type: TypeChanged}), context.Canceled)
}
