// Package quizvideo is the public entry point for building quiz videos from
// a manifest file.
package quizvideo

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/quizreel/quizreel/config"
	"github.com/quizreel/quizreel/internal/job"
	"github.com/quizreel/quizreel/internal/manifest"
	"github.com/quizreel/quizreel/internal/metadata"
	"github.com/quizreel/quizreel/internal/storage"
)

// Credentials are the metadata API keys. Keys embedded in a manifest
// override these.
type Credentials struct {
	OMDBAPIKey string
	TMDBAPIKey string
}

// UploadConfig enables the post-render upload when non-nil.
type UploadConfig struct {
	KeyID       string
	AppKey      string
	Bucket      string
	Endpoint    string
	Region      string
	RemoteName  string
	DeleteLocal bool
}

// Result describes a finished job.
type Result struct {
	OutputPath   string
	Duration     float64
	Warnings     []string
	UploadURL    string
	UploadID     string
	UploadName   string
	UploadError  string
	LocalDeleted bool
}

// Validate checks the manifest file and returns a *manifest.ValidationError
// listing every violation, or nil when the manifest is well formed.
func Validate(manifestPath string) error {
	_, _, err := loadPlan(manifestPath)
	return err
}

// Compose builds the quiz video described by the manifest at
// opts.ManifestPath, writing it to opts.OutputPath. upload may be nil.
func Compose(ctx context.Context, opts config.RenderOptions, creds Credentials, upload *UploadConfig) (*Result, error) {
	m, plan, err := loadPlan(opts.ManifestPath)
	if err != nil {
		return nil, err
	}

	mergedCreds := metadata.Credentials{
		OMDBAPIKey: creds.OMDBAPIKey,
		TMDBAPIKey: creds.TMDBAPIKey,
	}
	if m.OMDBAPIKey != "" {
		mergedCreds.OMDBAPIKey = m.OMDBAPIKey
	}
	if m.TMDBAPIKey != "" {
		mergedCreds.TMDBAPIKey = m.TMDBAPIKey
	}

	var uploader job.Uploader
	up := config.UploadOptions{}
	if upload != nil {
		client, err := storage.New(storage.Config{
			KeyID:    upload.KeyID,
			AppKey:   upload.AppKey,
			Bucket:   upload.Bucket,
			Endpoint: upload.Endpoint,
			Region:   upload.Region,
		}, opts.Verbose)
		if err != nil {
			return nil, err
		}
		uploader = client
		up = config.UploadOptions{
			Enabled:     true,
			RemoteName:  upload.RemoteName,
			DeleteLocal: upload.DeleteLocal,
		}
	}

	runner := job.NewRunner(opts.Verbose, uploader)
	res, err := runner.Run(ctx, plan, opts, up, mergedCreds)
	if err != nil {
		return nil, err
	}

	out := &Result{
		OutputPath:   res.OutputPath,
		Duration:     res.Duration,
		Warnings:     res.Warnings,
		UploadError:  res.UploadErr,
		LocalDeleted: res.LocalDeleted,
	}
	if res.Upload != nil {
		out.UploadURL = res.Upload.URL
		out.UploadID = res.Upload.ID
		out.UploadName = res.Upload.Name
	}
	return out, nil
}

func loadPlan(manifestPath string) (*manifest.Manifest, *manifest.Plan, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open manifest %s", manifestPath)
	}
	defer f.Close()

	m, err := manifest.Decode(f)
	if err != nil {
		return nil, nil, err
	}
	plan, err := manifest.Normalize(m)
	if err != nil {
		return nil, nil, err
	}
	return m, plan, nil
}
