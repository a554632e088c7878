package upload

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/teslashibe/go-virtualpainting/internal/config"
	"github.com/teslashibe/go-virtualpainting/internal/httpc"
)

// Drive uploads into a Google Drive folder using a service account.
// Keys become file names; Drive folders are flat so the save name is kept
// as a prefix of the file name.
type Drive struct {
	folderID string
	service  *drive.Service
}

// NewDrive creates a Drive uploader from cfg.CredentialsFile.
func NewDrive(ctx context.Context, cfg config.UploadConfig) (*Drive, error) {
	if cfg.DriveFolderID == "" || cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("%w: drive needs a folder id and a credentials file", ErrInvalidConfig)
	}

	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read drive credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("parse drive credentials: %w", err)
	}

	// token refreshes and API calls share the timeout-bound client
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpc.Client)
	client := oauth2.NewClient(ctx, creds.TokenSource)

	svc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &Drive{folderID: cfg.DriveFolderID, service: svc}, nil
}

// Name implements Uploader
func (u *Drive) Name() string { return "drive" }

// Upload implements Uploader. It returns the Drive file id.
func (u *Drive) Upload(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	meta := &drive.File{
		Name:     driveName(key),
		Parents:  []string{u.folderID},
		MimeType: contentType(localPath),
	}
	created, err := u.service.Files.Create(meta).Media(f).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

// driveName flattens a key: prefix/2024-03-09T14-30-00/painting.png becomes
// 2024-03-09T14-30-00_painting.png. Files already named after the save keep
// their name.
func driveName(key string) string {
	dir, file := path.Split(key)
	save := path.Base(dir)
	if save == "." || save == "/" || strings.HasPrefix(file, save) {
		return file
	}
	return save + "_" + file
}
