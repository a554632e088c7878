// Package events carries kiosk notifications from the session to the
// dashboard and to external brokers.
package events

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Type identifies an event.
type Type string

const (
	PhaseChanged  Type = "phase_changed"
	CountdownTick Type = "countdown_tick"
	Flash         Type = "flash"
	SaveQueued    Type = "save_queued"
	SaveCompleted Type = "save_completed"
	SaveFailed    Type = "save_failed"
	PersonEntered Type = "person_entered"
	PersonLeft    Type = "person_left"
)

// Types lists every event type.
var Types = []Type{
	PhaseChanged, CountdownTick, Flash,
	SaveQueued, SaveCompleted, SaveFailed,
	PersonEntered, PersonLeft,
}

// Event is one notification.
type Event struct {
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// New stamps an event with the current time.
func New(t Type, data any) Event {
	return Event{Type: t, Timestamp: time.Now(), Data: data}
}

// Marshal encodes the event as JSON.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// PhaseData accompanies PhaseChanged.
type PhaseData struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Header    string `json:"header"`
	SubHeader string `json:"subheader"`
}

// CountdownData accompanies CountdownTick.
type CountdownData struct {
	Remaining int `json:"remaining"`
}

// PersonData accompanies PersonEntered and PersonLeft.
type PersonData struct {
	Slot       int     `json:"slot"`
	TrackingID uint64  `json:"tracking_id"`
	Distance   float64 `json:"distance,omitempty"`
}

// SaveData accompanies the save events.
type SaveData struct {
	SessionID string   `json:"session_id"`
	JobID     string   `json:"job_id,omitempty"`
	Name      string   `json:"name,omitempty"`
	Files     []string `json:"files,omitempty"`
	Error     string   `json:"error,omitempty"`
}
