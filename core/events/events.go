package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Config holds configuration for the event publisher.
type Config struct {
	// NatsURL is the NATS server URL. Empty disables publishing.
	NatsURL string `mapstructure:"nats_url" default:""`
	// SubjectPrefix is prepended to every subject.
	SubjectPrefix string `mapstructure:"subject_prefix" default:"beryll.components"`
	// ConnectTimeoutSeconds bounds the initial connection.
	ConnectTimeoutSeconds int `mapstructure:"connect_timeout_seconds" default:"5"`
}

const (
	// TypeReconciled is emitted after a force or merge run commits.
	TypeReconciled = "reconciled"
	// TypeResolved is emitted after a discrepancy is resolved.
	TypeResolved = "resolved"
	// TypeChanged is emitted after a manual component change.
	TypeChanged = "changed"
)

// Event describes a committed inventory change.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ServerID   uint      `json:"serverId"`
	Mode       string    `json:"mode,omitempty"`
	Action     string    `json:"action,omitempty"`
	UserID     *uint     `json:"userId,omitempty"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher publishes inventory events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close()
}

// NewPublisher connects to NATS, or returns a no-op publisher when no URL is configured.
func NewPublisher(cfg Config, logger *zap.Logger) (Publisher, error) {
	if cfg.NatsURL == "" {
		return Noop{}, nil
	}

	timeout := time.Duration(cfg.ConnectTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name("beryll-inventory"),
		nats.Timeout(timeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return &NATSPublisher{conn: conn, prefix: cfg.SubjectPrefix}, nil
}

// NATSPublisher publishes JSON events on core NATS subjects.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// Subject returns the subject an event is published on: <prefix>.<type>.<serverId>.
func (p *NATSPublisher) Subject(e Event) string {
	return fmt.Sprintf("%s.%s.%d", p.prefix, e.Type, e.ServerID)
}

// Publish stamps and sends the event.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(e), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	_ = p.conn.Drain()
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close()                               {}
