package imagestore

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/teslashibe/go-virtualpainting/pkg/skeleton"
)

// Test-mode file names inside the per-save directory.
const (
	PaintingFile   = "painting.png"
	BackgroundFile = "background.png"
	SensorCSVFile  = "sensor_data.csv"
	SensorJSONFile = "sensor_data.json"
)

func (s *Store) write(job Job) Result {
	res := Result{JobID: job.ID, SessionID: job.SessionID, Layout: job.Layout.String()}
	if err := job.validate(); err != nil {
		res.Err = err
		return res
	}

	// saves are named after the request time
	requested := job.Requested
	if requested.IsZero() {
		requested = s.now()
	}
	ts := requested.Format(TimestampFormat)
	var err error
	switch job.Layout {
	case LayoutTestMode:
		res.Name, res.Files, err = writeTestMode(job, ts)
	default:
		res.Name, res.Files, err = writeDefault(job, ts)
	}
	res.Err = err
	return res
}

func writeDefault(job Job, ts string) (string, []string, error) {
	if err := os.MkdirAll(job.PrimaryDir, 0755); err != nil {
		return "", nil, fmt.Errorf("create primary dir: %w", err)
	}
	if job.Background != nil {
		if err := os.MkdirAll(job.BackgroundDir, 0755); err != nil {
			return "", nil, fmt.Errorf("create background dir: %w", err)
		}
	}

	name := uniqueName(ts, func(n string) []string {
		paths := []string{filepath.Join(job.PrimaryDir, n+".png")}
		if job.Background != nil {
			paths = append(paths, filepath.Join(job.BackgroundDir, n+"_original.png"))
		}
		return paths
	})

	primary := filepath.Join(job.PrimaryDir, name+".png")
	if err := writePNG(primary, job.Composite); err != nil {
		return name, nil, err
	}
	files := []string{primary}

	if job.Background != nil {
		bg := filepath.Join(job.BackgroundDir, name+"_original.png")
		if err := writePNG(bg, job.Background); err != nil {
			return name, files, err
		}
		files = append(files, bg)
	}
	return name, files, nil
}

func writeTestMode(job Job, ts string) (string, []string, error) {
	name := uniqueName(ts, func(n string) []string {
		return []string{filepath.Join(job.PrimaryDir, n)}
	})
	dir := filepath.Join(job.PrimaryDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, fmt.Errorf("create save dir: %w", err)
	}

	var files []string
	painting := filepath.Join(dir, PaintingFile)
	if err := writePNG(painting, job.Composite); err != nil {
		return name, files, err
	}
	files = append(files, painting)

	if job.Background != nil {
		bg := filepath.Join(dir, BackgroundFile)
		if err := writePNG(bg, job.Background); err != nil {
			return name, files, err
		}
		files = append(files, bg)
	}

	rec := job.Recording
	if rec == nil {
		rec = &skeleton.Recording{}
	}

	csvPath := filepath.Join(dir, SensorCSVFile)
	if err := writeFile(csvPath, rec.WriteCSV); err != nil {
		return name, files, err
	}
	files = append(files, csvPath)

	jsonPath := filepath.Join(dir, SensorJSONFile)
	if err := writeFile(jsonPath, rec.WriteJSON); err != nil {
		return name, files, err
	}
	files = append(files, jsonPath)

	return name, files, nil
}

// maxSuffix bounds the collision search when a directory cannot be inspected.
const maxSuffix = 1000

// uniqueName returns ts, or ts-N when any of paths(ts) already exists.
func uniqueName(ts string, paths func(string) []string) string {
	name := ts
	for n := 1; n < maxSuffix && taken(paths(name)); n++ {
		name = fmt.Sprintf("%s-%d", ts, n)
	}
	return name
}

func taken(paths []string) bool {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil || !errors.Is(err, fs.ErrNotExist) {
			return true
		}
	}
	return false
}

func writePNG(path string, img image.Image) error {
	return writeFile(path, func(w io.Writer) error {
		return png.Encode(w, img)
	})
}

// writeFile writes through a temp file so readers never see partial output.
func writeFile(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
