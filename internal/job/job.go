// Package job orchestrates a full composition run: asset resolution, scene
// rendering, and optional upload, with a per-job temp workspace.
package job

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/quizreel/quizreel/config"
	"github.com/quizreel/quizreel/internal/compose"
	"github.com/quizreel/quizreel/internal/fetch"
	ffmpegwrap "github.com/quizreel/quizreel/internal/ffmpeg"
	"github.com/quizreel/quizreel/internal/manifest"
	"github.com/quizreel/quizreel/internal/metadata"
	"github.com/quizreel/quizreel/internal/profile"
	"github.com/quizreel/quizreel/internal/storage"
	"github.com/quizreel/quizreel/pkg/types"
)

// DefaultProfile is used when a job does not name an encoding profile.
const DefaultProfile = string(types.OutputProfileTikTok)

func newEngine(profileName, tempDir string, verbose bool) (Renderer, error) {
	if profileName == "" {
		profileName = DefaultProfile
	}
	prof, err := profile.Get(profileName)
	if err != nil {
		return nil, err
	}
	return compose.NewEngine(prof, tempDir, verbose), nil
}

// AssetFetcher resolves one image per slot. *fetch.Fetcher is the production
// implementation.
type AssetFetcher interface {
	MovieImage(ctx context.Context, slot string, ref manifest.MovieRef) (fetch.Asset, error)
	AnswerImage(ctx context.Context, spec manifest.AnswerSpec) (fetch.Asset, error)
}

// Renderer turns a fully resolved plan into a video file.
type Renderer interface {
	Render(ctx context.Context, plan *manifest.Plan, outputPath string) error
}

// Uploader stores a rendered file remotely. *storage.Client is the
// production implementation.
type Uploader interface {
	Upload(ctx context.Context, localPath, remoteName string) (*storage.UploadInfo, error)
	DeleteLocal(path string) bool
}

// Result is the outcome of one run. A non-nil Result means the video was
// rendered; upload problems are recorded here rather than failing the run.
type Result struct {
	OutputPath   string
	Duration     float64
	Warnings     []string
	Upload       *storage.UploadInfo
	LocalDeleted bool
	UploadErr    string
}

// Runner executes composition jobs. The factory fields exist so tests can
// substitute fakes; NewRunner wires the real implementations.
type Runner struct {
	verbose     bool
	uploader    Uploader
	newFetcher  func(creds metadata.Credentials, dir string, verbose bool) AssetFetcher
	newRenderer func(profileName, tempDir string, verbose bool) (Renderer, error)
}

// NewRunner builds a Runner using the real fetcher and render engine.
// uploader may be nil when uploads are disabled.
func NewRunner(verbose bool, uploader Uploader) *Runner {
	return &Runner{
		verbose:  verbose,
		uploader: uploader,
		newFetcher: func(creds metadata.Credentials, dir string, verbose bool) AssetFetcher {
			return fetch.New(creds, dir, verbose)
		},
		newRenderer: newEngine,
	}
}

// Run executes one job end to end: resolve every slot's image, render the
// scenes into opts.OutputPath, then upload if configured. Fetching runs
// concurrently across slots; rendering starts only once every slot is
// resolved. The temp workspace is removed on every exit path.
func (r *Runner) Run(ctx context.Context, plan *manifest.Plan, opts config.RenderOptions, up config.UploadOptions, creds metadata.Credentials) (*Result, error) {
	if plan == nil || len(plan.Scenes) == 0 {
		return nil, errors.New("plan has no scenes; run the manifest through validation first")
	}

	verbose := r.verbose || opts.Verbose

	// Normalize the extension up front so the renderer, the result, and the
	// uploader all refer to the same file.
	outputPath := ffmpegwrap.EnsureExtension(opts.OutputPath, ffmpegwrap.MP4Settings().FileExtension)

	tempDir := filepath.Join(os.TempDir(), config.TempDirPrefix+uuid.NewString())
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	renderer, err := r.newRenderer(opts.Profile, tempDir, verbose)
	if err != nil {
		return nil, err
	}

	warnings, err := r.resolveAssets(ctx, plan, tempDir, creds, verbose)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create output directory")
		}
	}

	if err := renderer.Render(ctx, plan, outputPath); err != nil {
		return nil, err
	}

	result := &Result{
		OutputPath: outputPath,
		Duration:   plan.Total(),
		Warnings:   warnings,
	}

	if up.Enabled {
		r.upload(ctx, result, up)
	}
	return result, nil
}

// resolveAssets fills each scene's Images slice, one goroutine per slot.
// Slots that cannot be resolved at all get a placeholder and a warning; only
// I/O failures writing the placeholder itself abort the job.
func (r *Runner) resolveAssets(ctx context.Context, plan *manifest.Plan, tempDir string, creds metadata.Credentials, verbose bool) ([]string, error) {
	fetcher := r.newFetcher(creds, tempDir, verbose)

	type slotKey struct{ scene, img int }
	assets := make(map[slotKey]fetch.Asset, len(plan.Scenes)*3)

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i := range plan.Scenes {
		scene := &plan.Scenes[i]
		if scene.Role == manifest.RoleAnswer {
			i := i
			g.Go(func() error {
				asset, err := fetcher.AnswerImage(gctx, *scene.Answer)
				if err != nil {
					return err
				}
				mu.Lock()
				assets[slotKey{i, 0}] = asset
				mu.Unlock()
				return nil
			})
			continue
		}
		for j := range scene.Refs {
			i, j := i, j
			slot := fmt.Sprintf("%s_movie_%d", scene.Role, j+1)
			g.Go(func() error {
				asset, err := fetcher.MovieImage(gctx, slot, scene.Refs[j])
				if err != nil {
					var resErr *fetch.ResolutionError
					if !errors.As(err, &resErr) {
						return err
					}
					// Validation should have caught this; degrade to a
					// placeholder rather than failing the whole video.
					path, werr := fetch.WritePlaceholder(tempDir, slot)
					if werr != nil {
						return werr
					}
					asset = fetch.Asset{Path: path, Source: fetch.SourcePlaceholder, Detail: resErr.Error()}
				}
				mu.Lock()
				assets[slotKey{i, j}] = asset
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var warnings []string
	for i := range plan.Scenes {
		scene := &plan.Scenes[i]
		n := len(scene.Refs)
		if scene.Role == manifest.RoleAnswer {
			n = 1
		}
		scene.Images = make([]string, n)
		for j := 0; j < n; j++ {
			asset := assets[slotKey{i, j}]
			scene.Images[j] = asset.Path
			if asset.Placeholder() {
				warnings = append(warnings, fmt.Sprintf("scene %s, image %d: placeholder substituted (%s)", scene.Role, j+1, asset.Detail))
			}
		}
	}
	if verbose && len(warnings) > 0 {
		for _, w := range warnings {
			log.Println("Warning:", w)
		}
	}
	return warnings, nil
}

// upload pushes the rendered file and records the outcome on result. Upload
// failure is non-fatal; the local file is deleted only after a confirmed
// upload.
func (r *Runner) upload(ctx context.Context, result *Result, up config.UploadOptions) {
	if r.uploader == nil {
		result.UploadErr = "upload requested but no storage client configured"
		return
	}
	info, err := r.uploader.Upload(ctx, result.OutputPath, up.RemoteName)
	if err != nil {
		result.UploadErr = err.Error()
		return
	}
	result.Upload = info
	if up.DeleteLocal {
		result.LocalDeleted = r.uploader.DeleteLocal(result.OutputPath)
	}
}
