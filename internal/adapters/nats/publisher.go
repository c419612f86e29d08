package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/facilitymap/internal/core/domain"
)

// Subjects used for facility events. The last token is the operation.
const (
	FacilityEventsSubject       = "facilities.events.>"
	FacilityEventsSubjectPrefix = "facilities.events."
	facilityEventsStream        = "FACILITY_EVENTS"
	facilityEventsMaxAge        = 24 * time.Hour
	facilityEventsMaxRetry      = 3
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and makes sure the facility event stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      facilityEventsStream,
		Subjects:  []string{FacilityEventsSubject},
		Retention: nats.InterestPolicy,
		MaxAge:    facilityEventsMaxAge,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishFacilityEvent publishes event on facilities.events.<operation>.
func (p *Publisher) PublishFacilityEvent(ctx context.Context, event *domain.FacilityEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(FacilityEventsSubjectPrefix+event.Operation, data, nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
