package upload

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/teslashibe/go-virtualpainting/internal/config"
	"github.com/teslashibe/go-virtualpainting/internal/httpc"
)

// S3 uploads to an S3 bucket. Credentials come from the usual AWS
// environment and shared config.
type S3 struct {
	bucket   string
	uploader *s3manager.Uploader
}

// NewS3 creates an S3 uploader for cfg.Bucket.
func NewS3(cfg config.UploadConfig) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: empty s3 bucket", ErrInvalidConfig)
	}

	awsCfg := aws.NewConfig().WithHTTPClient(httpc.Client)
	if cfg.Region != "" {
		awsCfg = awsCfg.WithRegion(cfg.Region)
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsCfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}

	return &S3{bucket: cfg.Bucket, uploader: s3manager.NewUploader(sess)}, nil
}

// Name implements Uploader
func (u *S3) Name() string { return "s3" }

// Upload implements Uploader
func (u *S3) Upload(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	out, err := u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		return "", err
	}
	return out.Location, nil
}
