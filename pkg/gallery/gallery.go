// Package gallery keeps a Redis index of saved paintings so the dashboard
// can list recent work without scanning the output directories.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/teslashibe/go-virtualpainting/internal/config"
	"github.com/teslashibe/go-virtualpainting/internal/log"
	"github.com/teslashibe/go-virtualpainting/pkg/imagestore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultKey is the sorted set used when none is configured.
const DefaultKey = "kiosk:gallery"

// Entry is one saved painting.
type Entry struct {
	JobID     string    `json:"job_id"`
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	Layout    string    `json:"layout"`
	Files     []string  `json:"files"`
	Saved     time.Time `json:"saved"`
}

// EntryFromResult builds an entry for a successful save.
func EntryFromResult(r imagestore.Result, saved time.Time) Entry {
	return Entry{
		JobID:     r.JobID.String(),
		SessionID: r.SessionID,
		Name:      r.Name,
		Layout:    r.Layout,
		Files:     r.Files,
		Saved:     saved.UTC(),
	}
}

// score orders entries by job id time, falling back to the save time.
func score(r imagestore.Result, saved time.Time) float64 {
	if r.JobID != (ulid.ULID{}) {
		return float64(r.JobID.Time())
	}
	return float64(saved.UnixMilli())
}

// Gallery is an imagestore.Sink backed by a Redis sorted set.
type Gallery struct {
	client *redis.Client
	key    string
	keep   int64
}

// New connects to Redis. The connection is checked but a failed ping is
// only logged; entries are retried per save.
func New(cfg config.GalleryConfig) *Gallery {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("gallery redis unreachable", "addr", cfg.Addr, "error", err)
	} else {
		log.Info("gallery redis connected", "addr", cfg.Addr)
	}

	return NewWithClient(client, cfg.Key, cfg.Keep)
}

// NewWithClient wraps an existing client. keep <= 0 keeps everything.
func NewWithClient(client *redis.Client, key string, keep int64) *Gallery {
	if key == "" {
		key = DefaultKey
	}
	return &Gallery{client: client, key: key, keep: keep}
}

// Name implements imagestore.Sink
func (g *Gallery) Name() string { return "gallery" }

// Handle implements imagestore.Sink. Failed saves are not indexed.
func (g *Gallery) Handle(ctx context.Context, r imagestore.Result) error {
	if r.Err != nil {
		return nil
	}
	now := time.Now()
	data, err := json.Marshal(EntryFromResult(r, now))
	if err != nil {
		return fmt.Errorf("encode gallery entry: %w", err)
	}

	pipe := g.client.TxPipeline()
	pipe.ZAdd(ctx, g.key, redis.Z{Score: score(r, now), Member: data})
	if g.keep > 0 {
		pipe.ZRemRangeByRank(ctx, g.key, 0, -g.keep-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index %s: %w", r.Name, err)
	}
	log.Debug("gallery entry added", "name", r.Name, "key", g.key)
	return nil
}

// Recent returns up to n entries, newest first.
func (g *Gallery) Recent(ctx context.Context, n int64) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	members, err := g.client.ZRevRange(ctx, g.key, 0, n-1).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read gallery: %w", err)
	}
	return decodeEntries(members), nil
}

// Count returns the number of indexed paintings.
func (g *Gallery) Count(ctx context.Context) (int64, error) {
	return g.client.ZCard(ctx, g.key).Result()
}

// Close closes the Redis client.
func (g *Gallery) Close() error {
	return g.client.Close()
}

// decodeEntries skips members that are not valid entries.
func decodeEntries(members []string) []Entry {
	out := make([]Entry, 0, len(members))
	for _, m := range members {
		var e Entry
		if err := json.Unmarshal([]byte(m), &e); err != nil {
			log.Debug("skipping bad gallery entry", "error", err)
			continue
		}
		out = append(out, e)
	}
	return out
}
