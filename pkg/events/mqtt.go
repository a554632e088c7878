package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/teslashibe/go-virtualpainting/internal/log"
)

const mqttPublishTimeout = 5 * time.Second

// MQTTPublisher publishes each event to <topic>/<type>.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string

	mu        sync.RWMutex
	connected bool
}

// NewMQTTPublisher connects to broker. The client reconnects on its own.
func NewMQTTPublisher(broker, clientID, topic string) (*MQTTPublisher, error) {
	p := &MQTTPublisher{topic: strings.TrimSuffix(topic, "/")}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(1 * time.Minute)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		p.setConnected(true)
		log.Info("mqtt connected", "broker", broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		log.Warn("mqtt connection lost", "broker", broker, "error", err)
	})

	p.client = mqtt.NewClient(opts)
	token := p.client.Connect()
	if token.WaitTimeout(mqttPublishTimeout) && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	return p, nil
}

func (p *MQTTPublisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

// Name implements Publisher
func (p *MQTTPublisher) Name() string { return "mqtt" }

// Publish implements Publisher. Events are dropped while disconnected.
func (p *MQTTPublisher) Publish(ctx context.Context, e Event) error {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	if !connected {
		return nil
	}

	payload, err := e.Marshal()
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Type, err)
	}

	token := p.client.Publish(p.topic+"/"+string(e.Type), 1, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(mqttPublishTimeout):
		return fmt.Errorf("mqtt publish %s: timeout", e.Type)
	}
}

// Close disconnects from the broker
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
