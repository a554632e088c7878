package events

import (
	"context"

	"github.com/teslashibe/go-virtualpainting/pkg/imagestore"
)

// SaveSink turns image store results into SaveCompleted and SaveFailed events.
type SaveSink struct {
	bus *Bus
}

// NewSaveSink creates a sink publishing on bus
func NewSaveSink(bus *Bus) *SaveSink {
	return &SaveSink{bus: bus}
}

// Name implements imagestore.Sink
func (s *SaveSink) Name() string { return "events" }

// Handle implements imagestore.Sink
func (s *SaveSink) Handle(_ context.Context, r imagestore.Result) error {
	data := SaveData{
		SessionID: r.SessionID,
		JobID:     r.JobID.String(),
		Name:      r.Name,
		Files:     r.Files,
		Error:     r.Failure(),
	}
	if r.Err != nil {
		s.bus.Emit(SaveFailed, data)
	} else {
		s.bus.Emit(SaveCompleted, data)
	}
	return nil
}
