// Package session runs the kiosk's presence and painting state machine.
//
// The machine is driven from a single goroutine: frames go through
// HandleFrame and timer expirations through Tick. Every transition stops the
// phase timer, runs the source exit action, switches phase, emits
// PhaseChanged and then runs the destination entry action.
package session

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/teslashibe/go-virtualpainting/internal/log"
	"github.com/teslashibe/go-virtualpainting/pkg/calibration"
	"github.com/teslashibe/go-virtualpainting/pkg/events"
	"github.com/teslashibe/go-virtualpainting/pkg/imagestore"
	"github.com/teslashibe/go-virtualpainting/pkg/painting"
	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
	"github.com/teslashibe/go-virtualpainting/pkg/tracking"
)

// Timer schedules a single tick. The tick must be delivered to Machine.Tick
// with the generation passed to Start.
type Timer interface {
	Start(d time.Duration, gen uint64)
	Stop()
}

// Stage is the live camera view.
type Stage interface {
	// ResumeFeed un-pauses the live view.
	ResumeFeed()
	// FreezeFeed pauses the live view and returns a private copy of the
	// current frame.
	FreezeFeed() *image.RGBA
}

// Saver accepts save jobs without blocking.
type Saver interface {
	Save(job imagestore.Job) error
}

// Notifier receives one-way notifications for the presentation layer.
type Notifier interface {
	Emit(t events.Type, data any)
}

// Config holds phase timing and output settings.
type Config struct {
	ConfirmPresence   time.Duration
	CountdownFrom     int
	CountdownInterval time.Duration
	SnapshotDelay     time.Duration
	Painting          time.Duration
	SavingDisplay     time.Duration

	// DefaultDistance is the calibration result when no samples were taken
	DefaultDistance float64

	ImagesDir     string
	BackgroundDir string
	TestMode      bool
}

// DefaultConfig returns the kiosk timings
func DefaultConfig() Config {
	return Config{
		ConfirmPresence:   1 * time.Second,
		CountdownFrom:     3,
		CountdownInterval: 1 * time.Second,
		SnapshotDelay:     750 * time.Millisecond,
		Painting:          10 * time.Second,
		SavingDisplay:     4 * time.Second,
		DefaultDistance:   calibration.DefaultDistance,
	}
}

// Deps are the machine's collaborators. Notifier may be nil.
type Deps struct {
	Tracker  *tracking.Tracker
	Timer    Timer
	Stage    Stage
	Saver    Saver
	Painter  *painting.Factory
	Notifier Notifier
}

// Machine is the session state machine.
type Machine struct {
	config Config
	deps   Deps

	mu         sync.RWMutex
	phase      Phase
	countdown  int
	calibrator *calibration.Calibrator
	painting   *painting.Session
	background *image.RGBA

	timerGen    uint64
	timerActive bool

	paintingEntries int
	savesRequested  int
}

// New creates a machine in WaitingForPresence. The waiting entry action is
// run so the feed is live and the tracker is clean.
func New(config Config, deps Deps) *Machine {
	m := &Machine{config: config, deps: deps, phase: WaitingForPresence}
	m.enterWaiting(WaitingForPresence)
	return m
}

// Fire applies a trigger. It returns ErrTriggerIgnored when the current
// phase has no rule for it.
func (m *Machine) Fire(t Trigger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fire(t)
}

func (m *Machine) fire(t Trigger) error {
	cur := phases[m.phase]
	r, ok := cur.rules[t]
	if !ok {
		return fmt.Errorf("%w: %s in %s", ErrTriggerIgnored, t, m.phase)
	}
	if r.internal != nil && r.internal(m) {
		return nil
	}

	from, to := m.phase, r.to
	m.stopTimer()
	if cur.exit != nil {
		cur.exit(m, to)
	}

	m.phase = to
	h := Headers(to)
	log.Info("phase changed", "from", from.String(), "to", to.String(), "trigger", t.String())
	m.notify(events.PhaseChanged, events.PhaseData{
		From:      from.String(),
		To:        to.String(),
		Header:    h.Header,
		SubHeader: h.SubHeader,
	})

	if entry := phases[to].entry; entry != nil {
		entry(m, from)
	}
	return nil
}

// Tick delivers a timer expiration. Ticks from a stopped or restarted timer
// return ErrStaleTick and change nothing.
func (m *Machine) Tick(gen uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.timerActive || gen != m.timerGen {
		return ErrStaleTick
	}
	m.timerActive = false
	return m.fire(TimerTick)
}

// HandleFrame runs the tracker over a frame and dispatches what it saw.
func (m *Machine) HandleFrame(f *skeleton.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obs := m.deps.Tracker.Update(f)
	switch obs.Signal {
	case tracking.Entered:
		m.notify(events.PersonEntered, personData(obs))
		m.fireLogged(PersonEnters)

	case tracking.Left:
		m.notify(events.PersonLeft, personData(obs))
		if err := m.fire(PersonLeaves); err != nil {
			// Nothing to leave; drop the stale record so the next person can be found.
			m.deps.Tracker.Reset()
		}

	default:
		if !obs.Present {
			return
		}
		switch m.phase {
		case ConfirmingPresence:
			if m.calibrator != nil {
				m.calibrator.AddSample(obs.Distance)
			}
		case Painting:
			if m.painting != nil {
				m.painting.Paint(obs.Subject, f)
			}
		}
	}
}

func (m *Machine) fireLogged(t Trigger) {
	if err := m.fire(t); err != nil {
		log.Debug("trigger ignored", "trigger", t.String(), "phase", m.phase.String())
	}
}

func personData(obs tracking.Observation) events.PersonData {
	d := events.PersonData{Slot: obs.Slot, Distance: obs.Distance}
	if obs.Subject != nil {
		d.TrackingID = obs.Subject.TrackingID
	}
	return d
}

func (m *Machine) notify(t events.Type, data any) {
	if m.deps.Notifier != nil {
		m.deps.Notifier.Emit(t, data)
	}
}

func (m *Machine) startTimer(d time.Duration) {
	m.timerGen++
	m.timerActive = true
	m.deps.Timer.Start(d, m.timerGen)
}

// stopTimer runs on every transition, whether or not a timer is pending.
func (m *Machine) stopTimer() {
	if m.timerActive {
		m.timerActive = false
		m.timerGen++
	}
	m.deps.Timer.Stop()
}

// Phase returns the current phase
func (m *Machine) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// Countdown returns the displayed countdown digit, 0 outside Countdown
func (m *Machine) Countdown() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countdown
}

// Primary returns the tracked primary person, if any
func (m *Machine) Primary() (tracking.PrimaryPerson, bool) {
	return m.deps.Tracker.Primary()
}

// SavesRequested returns how many save jobs were handed to the saver
func (m *Machine) SavesRequested() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.savesRequested
}

// PaintingEntries returns how many times Painting was entered
func (m *Machine) PaintingEntries() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paintingEntries
}

// HasPainting reports whether a painting session is held
func (m *Machine) HasPainting() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.painting != nil
}

// Status is a point-in-time view for the dashboard.
type Status struct {
	Phase     Phase                   `json:"phase"`
	Countdown int                     `json:"countdown,omitempty"`
	Header    Header                  `json:"header"`
	Primary   *tracking.PrimaryPerson `json:"primary,omitempty"`
	MaxDist   float64                 `json:"max_distance"`
	SessionID string                  `json:"session_id,omitempty"`
	Saves     int                     `json:"saves"`
}

// Status returns the current state
func (m *Machine) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		Phase:     m.phase,
		Countdown: m.countdown,
		Header:    Headers(m.phase),
		MaxDist:   m.deps.Tracker.MaxDistance(),
		Saves:     m.savesRequested,
	}
	if p, ok := m.deps.Tracker.Primary(); ok {
		s.Primary = &p
	}
	if m.painting != nil {
		s.SessionID = m.painting.ID.String()
	}
	return s
}
