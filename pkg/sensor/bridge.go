// Package sensor delivers body frames and color frames to the kiosk.
//
// A Source pushes frames into a channel until its context ends. The
// Bridge reads a live sensor bridge over websocket, the Player replays a
// recorded session and Demo generates a scripted visitor.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-virtualpainting/internal/config"
	"github.com/teslashibe/go-virtualpainting/internal/log"
	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

// Source produces body frames until ctx is done or the source ends.
type Source interface {
	Run(ctx context.Context, out chan<- *skeleton.Frame) error
}

const (
	maxBackoff   = 30 * time.Second
	readTimeout  = 10 * time.Second
	dialTimeout  = 10 * time.Second
	readLimitMax = 16 << 20
)

// Bridge is a websocket client for the sensor bridge. It reconnects with
// backoff until its context ends. Body frames are delivered latest-wins: if
// the consumer is busy the frame is dropped and counted.
type Bridge struct {
	url       string
	codec     Codec
	reconnect time.Duration
	feed      *LiveFeed
	dialer    websocket.Dialer

	received atomic.Uint64
	dropped  atomic.Uint64
	bad      atomic.Uint64
}

// NewBridge creates a bridge client. feed may be nil when color frames are
// not wanted.
func NewBridge(cfg config.SensorConfig, feed *LiveFeed) (*Bridge, error) {
	codec, err := CodecFor(cfg.Codec)
	if err != nil {
		return nil, err
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: empty sensor url", config.ErrInvalidConfig)
	}
	reconnect := cfg.Reconnect
	if reconnect <= 0 {
		reconnect = time.Second
	}
	return &Bridge{
		url:       cfg.URL,
		codec:     codec,
		reconnect: reconnect,
		feed:      feed,
		dialer:    websocket.Dialer{HandshakeTimeout: dialTimeout},
	}, nil
}

// Run connects and reads until ctx is done. It only returns ctx.Err().
func (b *Bridge) Run(ctx context.Context, out chan<- *skeleton.Frame) error {
	backoff := b.reconnect
	for {
		err := b.session(ctx, out)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			backoff = b.reconnect
		}
		log.Warn("sensor bridge disconnected", "url", b.url, "error", err, "retry", backoff.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// session runs one connection. A nil error means the connection was
// established before it dropped.
func (b *Bridge) session(ctx context.Context, out chan<- *skeleton.Frame) error {
	conn, _, err := b.dialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return fmt.Errorf("dial sensor bridge: %w", err)
	}
	defer conn.Close()
	conn.SetReadLimit(readLimitMax)
	log.Info("sensor bridge connected", "url", b.url, "codec", b.codec.Name())

	stop := context.AfterFunc(ctx, func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("sensor bridge closed the connection")
			} else {
				log.Debug("sensor read failed", "error", err)
			}
			return nil
		}
		if err := b.dispatch(data, out); err != nil {
			b.bad.Add(1)
			log.Debug("bad sensor message", "error", err)
		}
	}
}

func (b *Bridge) dispatch(data []byte, out chan<- *skeleton.Frame) error {
	var msg Message
	if err := b.codec.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode %s message: %w", b.codec.Name(), err)
	}

	switch msg.Kind {
	case KindBody:
		if msg.Body == nil {
			return errors.New("body message without frame")
		}
		f := normalize(msg.Body)
		b.received.Add(1)
		select {
		case out <- f:
		default:
			b.dropped.Add(1)
		}
		return nil

	case KindColor:
		if b.feed == nil {
			return nil
		}
		return b.feed.UpdateJPEG(msg.Color)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, msg.Kind)
	}
}

// normalize pads the frame to MaxSubjects slots and stamps it if the bridge
// did not.
func normalize(f *skeleton.Frame) *skeleton.Frame {
	if len(f.Subjects) < skeleton.MaxSubjects {
		f.Subjects = append(f.Subjects, make([]*skeleton.Subject, skeleton.MaxSubjects-len(f.Subjects))...)
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now()
	}
	return f
}

// BridgeStats counts bridge traffic.
type BridgeStats struct {
	Received uint64 `json:"received"`
	Dropped  uint64 `json:"dropped"`
	Bad      uint64 `json:"bad"`
}

// Stats returns the message counters.
func (b *Bridge) Stats() BridgeStats {
	return BridgeStats{
		Received: b.received.Load(),
		Dropped:  b.dropped.Load(),
		Bad:      b.bad.Load(),
	}
}
