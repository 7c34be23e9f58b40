// Package http exposes the composition pipeline over a small JSON API.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/quizreel/quizreel/config"
	"github.com/quizreel/quizreel/internal/job"
	"github.com/quizreel/quizreel/internal/manifest"
	"github.com/quizreel/quizreel/internal/metadata"
	"github.com/quizreel/quizreel/internal/storage"
)

// JobRunner executes one composition job. *job.Runner is the production
// implementation.
type JobRunner interface {
	Run(ctx context.Context, plan *manifest.Plan, opts config.RenderOptions, up config.UploadOptions, creds metadata.Credentials) (*job.Result, error)
}

// VideoHandler serves video composition requests.
type VideoHandler struct {
	runner    JobRunner
	creds     metadata.Credentials
	profile   string
	outputDir string
	upload    config.UploadOptions
}

// NewVideoHandler wires a handler. creds are the server's default API keys;
// a manifest carrying its own keys overrides them per request.
func NewVideoHandler(runner JobRunner, creds metadata.Credentials, profileName, outputDir string, upload config.UploadOptions) *VideoHandler {
	return &VideoHandler{
		runner:    runner,
		creds:     creds,
		profile:   profileName,
		outputDir: outputDir,
		upload:    upload,
	}
}

type errorResponse struct {
	Error  string   `json:"error"`
	Issues []string `json:"issues,omitempty"`
}

type videoResponse struct {
	OutputPath   string              `json:"output_path"`
	Duration     float64             `json:"duration"`
	Warnings     []string            `json:"warnings,omitempty"`
	Upload       *storage.UploadInfo `json:"upload,omitempty"`
	UploadError  string              `json:"upload_error,omitempty"`
	LocalDeleted bool                `json:"local_deleted,omitempty"`
}

// CreateVideo handles POST /api/videos: decode the manifest, validate and
// normalize it, then run the full job. Validation problems come back as 422
// with every issue listed; render failures are 500.
func (h *VideoHandler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	m, err := manifest.Decode(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid manifest JSON: %v", err), nil)
		return
	}

	plan, err := manifest.Normalize(m)
	if err != nil {
		var verr *manifest.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusUnprocessableEntity, "manifest validation failed", verr.Issues)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	creds := h.creds
	if m.OMDBAPIKey != "" {
		creds.OMDBAPIKey = m.OMDBAPIKey
	}
	if m.TMDBAPIKey != "" {
		creds.TMDBAPIKey = m.TMDBAPIKey
	}

	opts := config.RenderOptions{
		OutputPath: filepath.Join(h.outputDir, fmt.Sprintf("quiz_%s.mp4", uuid.NewString()[:8])),
		Profile:    h.profile,
	}

	result, err := h.runner.Run(r.Context(), plan, opts, h.upload, creds)
	if err != nil {
		log.Printf("job failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusCreated, videoResponse{
		OutputPath:   result.OutputPath,
		Duration:     result.Duration,
		Warnings:     result.Warnings,
		Upload:       result.Upload,
		UploadError:  result.UploadErr,
		LocalDeleted: result.LocalDeleted,
	})
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

// NewMux builds the route table for the API server.
func NewMux(h *VideoHandler, mh *ManifestHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", Healthz)
	mux.HandleFunc("/api/videos", h.CreateVideo)
	mux.HandleFunc("/api/manifests", mh.GenerateManifest)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, issues []string) {
	writeJSON(w, status, errorResponse{Error: msg, Issues: issues})
}
