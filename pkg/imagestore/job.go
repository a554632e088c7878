package imagestore

import (
	"crypto/rand"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

// Layout selects how a job's files are arranged on disk.
type Layout int

const (
	// LayoutDefault writes <ts>.png into the primary dir and
	// <ts>_original.png into the background dir.
	LayoutDefault Layout = iota
	// LayoutTestMode writes a <ts>/ directory holding both images and the
	// recorded sensor data.
	LayoutTestMode
)

func (l Layout) String() string {
	if l == LayoutTestMode {
		return "test_mode"
	}
	return "default"
}

// TimestampFormat names saved files.
const TimestampFormat = "2006-01-02T15-04-05"

// Job is one save request. Images must not be modified after the job is queued.
type Job struct {
	ID            ulid.ULID
	SessionID     string
	Composite     *image.RGBA
	Background    *image.RGBA
	PrimaryDir    string
	BackgroundDir string
	Layout        Layout
	Recording     *skeleton.Recording
	Requested     time.Time
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewJobID returns a time-ordered job id.
func NewJobID(t time.Time) ulid.ULID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy)
}

// Result describes the outcome of one job. Files are absolute or
// dir-relative paths as given in the job.
type Result struct {
	JobID     ulid.ULID     `json:"job_id"`
	SessionID string        `json:"session_id"`
	Name      string        `json:"name"`
	Layout    string        `json:"layout"`
	Files     []string      `json:"files"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// Failure returns the error text or "".
func (r Result) Failure() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Primary returns the path of the composite image, or "".
func (r Result) Primary() string {
	if len(r.Files) == 0 {
		return ""
	}
	return r.Files[0]
}

func (j Job) validate() error {
	if j.Composite == nil {
		return fmt.Errorf("%w: nil composite", ErrInvalidJob)
	}
	if j.PrimaryDir == "" {
		return fmt.Errorf("%w: empty primary dir", ErrInvalidJob)
	}
	if j.Layout == LayoutDefault && j.Background != nil && j.BackgroundDir == "" {
		return fmt.Errorf("%w: empty background dir", ErrInvalidJob)
	}
	return nil
}
