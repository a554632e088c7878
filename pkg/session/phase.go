package session

import "fmt"

// Phase is the kiosk session state. Exactly one is active.
type Phase int

const (
	WaitingForPresence Phase = iota
	ConfirmingPresence
	Countdown
	Snapshot
	Painting
	SavingImage
)

var phaseNames = [...]string{
	"WaitingForPresence",
	"ConfirmingPresence",
	"Countdown",
	"Snapshot",
	"Painting",
	"SavingImage",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Trigger moves the machine between phases.
type Trigger int

const (
	PersonEnters Trigger = iota
	PersonLeaves
	TimerTick
)

func (t Trigger) String() string {
	switch t {
	case PersonEnters:
		return "PersonEnters"
	case PersonLeaves:
		return "PersonLeaves"
	case TimerTick:
		return "TimerTick"
	default:
		return fmt.Sprintf("Trigger(%d)", int(t))
	}
}

// Header is the text shown above the camera view.
type Header struct {
	Header    string `json:"header"`
	SubHeader string `json:"subheader"`
}

// Headers returns the display text for a phase.
func Headers(p Phase) Header {
	switch p {
	case Snapshot:
		return Header{Header: "Hold still!"}
	case Painting:
		return Header{Header: "Paint with your right hand", SubHeader: "Move your hand through the air to paint"}
	case SavingImage:
		return Header{Header: "Saving your painting", SubHeader: "Thanks for painting with us"}
	default:
		return Header{Header: "Want to paint?", SubHeader: "Step into the frame to begin"}
	}
}
