package imagestore

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

var fixedTime = time.Date(2024, 5, 17, 14, 30, 5, 0, time.Local)

type recordingSink struct {
	mu      sync.Mutex
	results []Result
	err     error
}

func (r *recordingSink) Name() string { return "recording" }

func (r *recordingSink) Handle(_ context.Context, res Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return r.err
}

func (r *recordingSink) all() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Result(nil), r.results...)
}

func testImage() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 8, 4))
}

// runStore starts the worker and returns a function that closes and waits.
func runStore(t *testing.T, s *Store) func() {
	t.Helper()
	go s.Run(context.Background())
	return func() {
		s.Close()
		select {
		case <-s.Drained():
		case <-time.After(5 * time.Second):
			t.Fatal("store did not drain")
		}
	}
}

func TestStore_DefaultLayout(t *testing.T) {
	primary := filepath.Join(t.TempDir(), "saved")
	background := filepath.Join(t.TempDir(), "backgrounds")
	sink := &recordingSink{}
	s := New(WithClock(func() time.Time { return fixedTime }), WithSinks(sink))
	stop := runStore(t, s)

	for i := 0; i < 2; i++ {
		err := s.Save(Job{
			SessionID:     "session",
			Composite:     testImage(),
			Background:    testImage(),
			PrimaryDir:    primary,
			BackgroundDir: background,
		})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	stop()

	for _, p := range []string{
		filepath.Join(primary, "2024-05-17T14-30-05.png"),
		filepath.Join(background, "2024-05-17T14-30-05_original.png"),
		filepath.Join(primary, "2024-05-17T14-30-05-1.png"),
		filepath.Join(background, "2024-05-17T14-30-05-1_original.png"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected %s to exist: %v", p, err)
		}
	}

	stats := s.Stats()
	if stats.Queued != 2 || stats.Saved != 2 || stats.Failed != 0 || stats.Pending != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	results := sink.all()
	if len(results) != 2 {
		t.Fatalf("Expected 2 sink calls, got %d", len(results))
	}
	if results[0].Name != "2024-05-17T14-30-05" || results[1].Name != "2024-05-17T14-30-05-1" {
		t.Errorf("Unexpected names %q, %q", results[0].Name, results[1].Name)
	}
	if results[0].JobID.Compare(results[1].JobID) >= 0 {
		t.Error("Expected job ids to be ordered")
	}
}

func TestStore_TestModeLayout(t *testing.T) {
	dir := t.TempDir()
	s := New(WithClock(func() time.Time { return fixedTime }))
	stop := runStore(t, s)

	rec := skeleton.NewRecorder()
	rec.Record(skeleton.NewFrame(1, map[int]*skeleton.Subject{
		0: skeleton.Synthetic(1, skeleton.Point{X: 10, Y: 10}, 1.5, skeleton.Point{X: 20, Y: 20}),
	}))

	err := s.Save(Job{
		Composite:  testImage(),
		Background: testImage(),
		PrimaryDir: dir,
		Layout:     LayoutTestMode,
		Recording:  rec.Snapshot(),
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	stop()

	saveDir := filepath.Join(dir, "2024-05-17T14-30-05")
	for _, name := range []string{PaintingFile, BackgroundFile, SensorCSVFile, SensorJSONFile} {
		if _, err := os.Stat(filepath.Join(saveDir, name)); err != nil {
			t.Errorf("Expected %s: %v", name, err)
		}
	}

	f, err := os.Open(filepath.Join(saveDir, SensorJSONFile))
	if err != nil {
		t.Fatalf("open sensor json: %v", err)
	}
	defer f.Close()
	back, err := skeleton.ReadRecording(f)
	if err != nil {
		t.Fatalf("ReadRecording failed: %v", err)
	}
	if len(back.Frames) != 1 {
		t.Errorf("Expected 1 recorded frame, got %d", len(back.Frames))
	}
}

func TestStore_FailureIsCountedNotReturned(t *testing.T) {
	// a regular file where a directory is needed
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	sink := &recordingSink{err: errors.New("sink down")}
	s := New(WithSinks(sink))
	stop := runStore(t, s)

	if err := s.Save(Job{Composite: testImage(), PrimaryDir: filepath.Join(blocker, "sub")}); err != nil {
		t.Fatalf("Expected Save to accept the job, got %v", err)
	}
	if err := s.Save(Job{PrimaryDir: t.TempDir()}); err != nil {
		t.Fatalf("Expected Save to accept the job, got %v", err)
	}
	stop()

	stats := s.Stats()
	if stats.Failed != 2 || stats.Saved != 0 {
		t.Errorf("Expected 2 failures, got %+v", stats)
	}

	results := sink.all()
	if len(results) != 2 {
		t.Fatalf("Expected sinks to see failures, got %d results", len(results))
	}
	if !errors.Is(results[1].Err, ErrInvalidJob) {
		t.Errorf("Expected ErrInvalidJob, got %v", results[1].Err)
	}
}

func TestStore_SaveAfterClose(t *testing.T) {
	s := New()
	s.Close()
	if err := s.Save(Job{}); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Expected ErrStoreClosed, got %v", err)
	}
}

func TestStore_SaveDoesNotBlockWithoutWorker(t *testing.T) {
	s := New()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Save(Job{Composite: testImage(), PrimaryDir: "unused"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Save blocked with no worker running")
	}
	if got := s.Stats().Pending; got != 100 {
		t.Errorf("Expected 100 pending jobs, got %d", got)
	}
}

func TestStore_NamesFollowRequestTime(t *testing.T) {
	dir := t.TempDir()
	requested := time.Date(2024, 5, 17, 9, 15, 0, 0, time.Local)
	s := New(WithClock(func() time.Time { return fixedTime }))
	stop := runStore(t, s)

	err := s.Save(Job{
		Composite:     testImage(),
		Background:    testImage(),
		PrimaryDir:    dir,
		BackgroundDir: dir,
		Requested:     requested,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	stop()

	if _, err := os.Stat(filepath.Join(dir, "2024-05-17T09-15-00.png")); err != nil {
		t.Errorf("Expected composite named after the request time: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "2024-05-17T14-30-05.png")); err == nil {
		t.Error("Expected no composite named after the worker clock")
	}
}

// stallingSink blocks until its context ends.
type stallingSink struct {
	mu   sync.Mutex
	errs []error
}

func (s *stallingSink) Name() string { return "stalling" }

func (s *stallingSink) Handle(ctx context.Context, _ Result) error {
	<-ctx.Done()
	s.mu.Lock()
	s.errs = append(s.errs, ctx.Err())
	s.mu.Unlock()
	return ctx.Err()
}

func TestStore_SinkTimeoutKeepsWorkerMoving(t *testing.T) {
	dir := t.TempDir()
	stall := &stallingSink{}
	s := New(WithSinks(stall), WithSinkTimeout(20*time.Millisecond))
	stop := runStore(t, s)

	for i := 0; i < 2; i++ {
		err := s.Save(Job{
			Composite:     testImage(),
			Background:    testImage(),
			PrimaryDir:    dir,
			BackgroundDir: dir,
		})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	stop()

	if got := s.Stats().Saved; got != 2 {
		t.Errorf("Expected both paintings saved past a stalled sink, got %d", got)
	}
	stall.mu.Lock()
	defer stall.mu.Unlock()
	if len(stall.errs) != 2 {
		t.Fatalf("Expected 2 sink calls, got %d", len(stall.errs))
	}
	for _, err := range stall.errs {
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Expected context.DeadlineExceeded, got %v", err)
		}
	}
}
