package session

import (
	"time"

	"github.com/teslashibe/go-virtualpainting/internal/log"
	"github.com/teslashibe/go-virtualpainting/pkg/calibration"
	"github.com/teslashibe/go-virtualpainting/pkg/events"
	"github.com/teslashibe/go-virtualpainting/pkg/imagestore"
)

func (m *Machine) enterWaiting(Phase) {
	m.deps.Tracker.Reset()
	m.background = nil
	m.deps.Stage.ResumeFeed()
}

func (m *Machine) enterConfirming(Phase) {
	m.calibrator = calibration.NewWithDefault(m.config.DefaultDistance)
	m.startTimer(m.config.ConfirmPresence)
}

// exitConfirming hands the median to the primary person on either exit.
func (m *Machine) exitConfirming(Phase) {
	if m.calibrator == nil {
		return
	}
	median := m.calibrator.Median()
	samples := m.calibrator.Len()
	m.calibrator = nil

	if m.deps.Tracker.SetCalibratedDistance(median) {
		log.Info("distance calibrated", "median", median, "samples", samples)
	}
}

func (m *Machine) enterCountdown(Phase) {
	m.countdown = m.config.CountdownFrom
	m.notify(events.CountdownTick, events.CountdownData{Remaining: m.countdown})
	m.startTimer(m.config.CountdownInterval)
}

// countdownStep handles a countdown tick inside the phase until the last one.
func (m *Machine) countdownStep() bool {
	if m.countdown <= 1 {
		return false
	}
	m.countdown--
	m.notify(events.CountdownTick, events.CountdownData{Remaining: m.countdown})
	m.startTimer(m.config.CountdownInterval)
	return true
}

func (m *Machine) exitCountdown(Phase) {
	m.countdown = 0
}

func (m *Machine) enterSnapshot(Phase) {
	m.notify(events.Flash, nil)
	m.background = m.deps.Stage.FreezeFeed()
	m.startTimer(m.config.SnapshotDelay)
}

func (m *Machine) enterPainting(Phase) {
	m.painting = m.deps.Painter.New()
	m.paintingEntries++
	log.Info("painting started", "session", m.painting.ID.String(), "color", m.painting.Brush.Color)
	m.startTimer(m.config.Painting)
}

// exitPainting saves an interrupted painting. The timed exit saves on
// entering SavingImage instead.
func (m *Machine) exitPainting(to Phase) {
	if to != WaitingForPresence || m.painting == nil {
		return
	}
	m.requestSave()
	m.painting = nil
	m.background = nil
}

func (m *Machine) enterSaving(Phase) {
	m.notify(events.Flash, nil)
	m.requestSave()
	m.startTimer(m.config.SavingDisplay)
}

func (m *Machine) exitSaving(Phase) {
	m.painting = nil
	m.background = nil
}

// requestSave renders the composite and hands both frozen images to the saver.
func (m *Machine) requestSave() {
	p := m.painting
	if p == nil {
		return
	}

	job := imagestore.Job{
		SessionID:     p.ID.String(),
		Composite:     p.Composite(m.background),
		Background:    m.background,
		PrimaryDir:    m.config.ImagesDir,
		BackgroundDir: m.config.BackgroundDir,
		Requested:     time.Now(),
	}
	if m.config.TestMode {
		job.Layout = imagestore.LayoutTestMode
		job.Recording = p.Recording()
	}

	m.savesRequested++
	if err := m.deps.Saver.Save(job); err != nil {
		log.Error("save request rejected", "session", job.SessionID, "error", err)
		return
	}
	m.notify(events.SaveQueued, events.SaveData{SessionID: job.SessionID})
}
