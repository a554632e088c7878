package tracking

// PrimaryPerson is the one subject the kiosk session follows.
// Slot is where it was first found; TrackingID is what keeps it the same person.
type PrimaryPerson struct {
	Slot               int     `json:"slot"`
	TrackingID         uint64  `json:"tracking_id"`
	CalibratedDistance float64 `json:"calibrated_distance"`
	Calibrated         bool    `json:"calibrated"`
}

// MaxDistance returns the presence ceiling for this person: the calibrated
// distance plus margin once calibrated, otherwise fallback.
func (p PrimaryPerson) MaxDistance(fallback, margin float64) float64 {
	if !p.Calibrated {
		return fallback
	}
	return p.CalibratedDistance + margin
}

// Signal is what a frame means for the session.
type Signal int

const (
	None Signal = iota
	Entered
	Left
)

func (s Signal) String() string {
	switch s {
	case Entered:
		return "entered"
	case Left:
		return "left"
	default:
		return "none"
	}
}
