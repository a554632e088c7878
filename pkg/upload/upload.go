// Package upload copies saved paintings to remote storage after the image
// store has written them locally.
package upload

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"path/filepath"

	"github.com/teslashibe/go-virtualpainting/internal/config"
	"github.com/teslashibe/go-virtualpainting/internal/log"
	"github.com/teslashibe/go-virtualpainting/pkg/imagestore"
)

// ErrInvalidConfig is returned for an incomplete upload configuration.
var ErrInvalidConfig = errors.New("upload: invalid configuration")

// Uploader puts one local file at a remote key and returns its location.
type Uploader interface {
	Name() string
	Upload(ctx context.Context, localPath, key string) (string, error)
}

// Open returns the uploader selected by cfg.Backend, or nil for "none".
func Open(ctx context.Context, cfg config.UploadConfig) (Uploader, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "s3":
		u, err := NewS3(cfg)
		if err != nil {
			return nil, err
		}
		return u, nil
	case "drive":
		u, err := NewDrive(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return u, nil
	default:
		return nil, fmt.Errorf("%w: backend %q", ErrInvalidConfig, cfg.Backend)
	}
}

// ObjectKey names a saved file remotely: <prefix>/<save name>/<file name>.
func ObjectKey(prefix, saveName, localPath string) string {
	return path.Join(prefix, saveName, filepath.Base(localPath))
}

// contentType guesses from the extension, defaulting to octet-stream.
func contentType(localPath string) string {
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Sink adapts an Uploader to imagestore.Sink.
type Sink struct {
	uploader Uploader
	prefix   string
}

// NewSink uploads every file of a successful save under prefix.
func NewSink(u Uploader, prefix string) *Sink {
	return &Sink{uploader: u, prefix: prefix}
}

// Name implements imagestore.Sink
func (s *Sink) Name() string { return "upload:" + s.uploader.Name() }

// Handle implements imagestore.Sink. Every file is attempted; the errors
// are joined.
func (s *Sink) Handle(ctx context.Context, r imagestore.Result) error {
	if r.Err != nil {
		return nil
	}

	var errs []error
	for _, f := range r.Files {
		key := ObjectKey(s.prefix, r.Name, f)
		loc, err := s.uploader.Upload(ctx, f, key)
		if err != nil {
			errs = append(errs, fmt.Errorf("upload %s: %w", filepath.Base(f), err))
			continue
		}
		log.Debug("uploaded", "backend", s.uploader.Name(), "key", key, "location", loc)
	}
	return errors.Join(errs...)
}
