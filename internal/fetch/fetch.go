// Package fetch resolves the image asset for each movie and answer slot,
// following a fixed fallback chain and substituting placeholders so that one
// missing poster never fails the whole job.
package fetch

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/quizreel/quizreel/internal/imdb"
	"github.com/quizreel/quizreel/internal/manifest"
	"github.com/quizreel/quizreel/internal/metadata"
)

// Source records where an asset came from.
type Source string

const (
	SourceSupplied    Source = "supplied"
	SourceDownloaded  Source = "downloaded"
	SourcePlaceholder Source = "placeholder"
)

// Asset is a concrete local image file ready for compositing. Assets live in
// the job's temp directory (downloads, placeholders) or wherever the caller
// supplied them, and are discarded with the job.
type Asset struct {
	Path   string
	Source Source
	Detail string // set on placeholders: why the real image was unavailable
}

// Placeholder reports whether the asset is a substitute image.
func (a Asset) Placeholder() bool { return a.Source == SourcePlaceholder }

// ResolutionError signals a slot with no usable lookup source at all:
// neither a resolvable identifier nor a title. The validator catches this up
// front, so hitting it here means the contract was violated; the caller
// decides between placeholder substitution and aborting the job.
type ResolutionError struct {
	Slot string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("slot %s has neither a resolvable imdb_url nor a title", e.Slot)
}

// Fetcher resolves image assets for one job. It performs a single attempt
// per fallback step; retries are the caller's concern, at whole-job level.
type Fetcher struct {
	OMDB       *metadata.OMDBClient
	TMDB       *metadata.TMDBClient
	HTTPClient *http.Client
	Dir        string // job-scoped directory for downloads and placeholders
	Verbose    bool
}

// New builds a Fetcher writing into dir.
func New(creds metadata.Credentials, dir string, verbose bool) *Fetcher {
	return &Fetcher{
		OMDB:       metadata.NewOMDBClient(creds.OMDBAPIKey),
		TMDB:       metadata.NewTMDBClient(creds.TMDBAPIKey),
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Dir:        dir,
		Verbose:    verbose,
	}
}

// MovieImage resolves the poster for one movie slot. Priority order, first
// success wins: supplied poster_path verbatim, OMDb lookup by IMDb ID
// extracted from imdb_url, OMDb title search, placeholder.
func (f *Fetcher) MovieImage(ctx context.Context, slot string, ref manifest.MovieRef) (Asset, error) {
	if ref.PosterPath != "" {
		// Explicit local path always wins; no network call is made.
		return Asset{Path: ref.PosterPath, Source: SourceSupplied}, nil
	}

	mode := ref.Mode()
	if mode == manifest.LookupNone {
		return Asset{}, &ResolutionError{Slot: slot}
	}

	var lastErr error

	if mode == manifest.LookupURLOnly || mode == manifest.LookupTitleAndURL {
		if id, ok := imdb.ExtractID(ref.IMDBURL); ok {
			asset, err := f.downloadPoster(ctx, slot, func() (string, error) {
				return f.OMDB.PosterByID(ctx, id)
			})
			if err == nil {
				return asset, nil
			}
			lastErr = err
			if f.Verbose {
				log.Printf("slot %s: lookup by %s failed, falling back: %v", slot, id, err)
			}
		} else if f.Verbose {
			log.Printf("slot %s: imdb_url %q not resolvable, falling back", slot, ref.IMDBURL)
		}
	}

	if ref.Title != "" {
		asset, err := f.downloadPoster(ctx, slot, func() (string, error) {
			return f.OMDB.PosterByTitle(ctx, ref.Title, ref.ReleaseYear)
		})
		if err == nil {
			return asset, nil
		}
		lastErr = err
		if f.Verbose {
			log.Printf("slot %s: title search %q failed: %v", slot, ref.Title, err)
		}
	}

	return f.placeholder(slot, lastErr)
}

// AnswerImage resolves the actor portrait: supplied image_path verbatim,
// TMDB person search by caption, placeholder.
func (f *Fetcher) AnswerImage(ctx context.Context, spec manifest.AnswerSpec) (Asset, error) {
	if spec.ImagePath != "" {
		return Asset{Path: spec.ImagePath, Source: SourceSupplied}, nil
	}

	asset, err := f.downloadPoster(ctx, "answer_"+spec.Caption, func() (string, error) {
		return f.TMDB.PortraitByName(ctx, spec.Caption)
	})
	if err == nil {
		return asset, nil
	}
	if f.Verbose {
		log.Printf("answer portrait for %q unavailable: %v", spec.Caption, err)
	}
	return f.placeholder("answer", err)
}

func (f *Fetcher) downloadPoster(ctx context.Context, slot string, lookup func() (string, error)) (Asset, error) {
	posterURL, err := lookup()
	if err != nil {
		return Asset{}, err
	}
	path := filepath.Join(f.Dir, "poster_"+sanitize(slot)+".jpg")
	if err := metadata.DownloadImage(ctx, f.HTTPClient, posterURL, path); err != nil {
		return Asset{}, err
	}
	return Asset{Path: path, Source: SourceDownloaded}, nil
}

func (f *Fetcher) placeholder(slot string, cause error) (Asset, error) {
	path, err := WritePlaceholder(f.Dir, sanitize(slot))
	if err != nil {
		return Asset{}, err
	}
	detail := "no image source available"
	if cause != nil {
		detail = cause.Error()
	}
	return Asset{Path: path, Source: SourcePlaceholder, Detail: detail}, nil
}

func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
