package events

import (
	"context"
	"fmt"

	"github.com/teslashibe/go-virtualpainting/internal/config"
	"github.com/teslashibe/go-virtualpainting/internal/log"
)

// Publisher sends events to an external broker.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Open connects the publisher selected by cfg.Backend. "none" returns nil.
func Open(cfg config.EventsConfig) (Publisher, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "mqtt":
		p, err := NewMQTTPublisher(cfg.URL, cfg.ClientID, cfg.Topic)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "amqp":
		p, err := NewAMQPPublisher(cfg.URL, cfg.Topic)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: events backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}

// Forward publishes everything received on sub until it closes or ctx is done.
// Failures are logged and the event is dropped.
func Forward(ctx context.Context, sub <-chan Event, pub Publisher) {
	log.Info("event forwarding started", "publisher", pub.Name())
	defer log.Info("event forwarding stopped", "publisher", pub.Name())

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			if err := pub.Publish(ctx, e); err != nil {
				log.Warn("event publish failed", "publisher", pub.Name(), "type", string(e.Type), "error", err)
			}
		}
	}
}
