// Package storage uploads rendered videos to Backblaze B2 through its
// S3-compatible endpoint.
package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

// UploadError reports a failed upload. The rendered local file stays valid;
// upload failure never invalidates an otherwise successful job.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %s failed: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// UploadInfo describes a stored object.
type UploadInfo struct {
	URL  string `json:"url"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Config carries the bucket credentials, usually sourced from B2_* env vars
// at the binary boundary.
type Config struct {
	KeyID    string
	AppKey   string
	Bucket   string
	Endpoint string
	Region   string
}

// Client wraps the S3 uploader for one bucket.
type Client struct {
	bucket   string
	uploader *s3manager.Uploader
	verbose  bool
}

// New validates cfg and builds a Client. Missing credentials are a
// configuration fault, reported before any upload is attempted.
func New(cfg Config, verbose bool) (*Client, error) {
	if cfg.KeyID == "" || cfg.AppKey == "" {
		return nil, errors.New("storage credentials must be provided (key id and application key)")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket name must be provided")
	}
	if cfg.Region == "" {
		cfg.Region = "us-west-000"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = fmt.Sprintf("https://s3.%s.backblazeb2.com", cfg.Region)
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		Endpoint:         aws.String(cfg.Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.KeyID, cfg.AppKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create storage session")
	}

	return &Client{
		bucket:   cfg.Bucket,
		uploader: s3manager.NewUploader(sess),
		verbose:  verbose,
	}, nil
}

// Upload stores the local file under remoteName (defaulting to its base
// name) and returns the object's URL, ID and name.
func (c *Client) Upload(ctx context.Context, localPath, remoteName string) (*UploadInfo, error) {
	if remoteName == "" {
		remoteName = filepath.Base(localPath)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, &UploadError{Path: localPath, Err: err}
	}
	defer f.Close()

	if c.verbose {
		if info, err := f.Stat(); err == nil {
			log.Printf("Uploading %s (%.2f MB) as %s\n", localPath, float64(info.Size())/1024/1024, remoteName)
		}
	}

	out, err := c.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(remoteName),
		Body:        f,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return nil, &UploadError{Path: localPath, Err: err}
	}

	id := aws.StringValue(out.VersionID)
	if id == "" {
		id = aws.StringValue(out.ETag)
	}
	return &UploadInfo{
		URL:  out.Location,
		ID:   id,
		Name: remoteName,
	}, nil
}

// DeleteLocal removes the local file after a successful upload and reports
// whether it is gone.
func (c *Client) DeleteLocal(path string) bool {
	if err := os.Remove(path); err != nil {
		log.Printf("Warning: could not delete local file %s: %v", path, err)
		return false
	}
	return true
}
