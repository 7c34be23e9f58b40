package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/pkg/errors"

	"github.com/quizreel/quizreel/internal/generate"
	"github.com/quizreel/quizreel/internal/metadata"
)

// ManifestGenerator builds a quiz manifest for an actor. *generate.Generator
// is the production implementation.
type ManifestGenerator interface {
	Manifest(ctx context.Context, actorName string, hintCaptions []string) (*generate.Output, error)
}

// ManifestHandler serves manifest generation requests. A request may carry
// its own TMDB key; the server default is used otherwise.
type ManifestHandler struct {
	tmdbKey      string
	newGenerator func(tmdbKey string) ManifestGenerator
}

func NewManifestHandler(tmdbKey string) *ManifestHandler {
	return &ManifestHandler{
		tmdbKey: tmdbKey,
		newGenerator: func(tmdbKey string) ManifestGenerator {
			return generate.New(metadata.NewTMDBClient(tmdbKey))
		},
	}
}

type manifestRequest struct {
	ActorName    string   `json:"actor_name"`
	HintCaptions []string `json:"hint_captions,omitempty"`
	TMDBAPIKey   string   `json:"tmdb_api_key,omitempty"`
}

// GenerateManifest handles POST /api/manifests: rank the actor's
// filmography on TMDB and return a ready-to-render manifest alongside the
// movie details it was built from. An unknown actor is 404; a filmography
// too small for three hint groups is 422.
func (h *ManifestHandler) GenerateManifest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	var req manifestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request JSON: %v", err), nil)
		return
	}
	if req.ActorName == "" {
		writeError(w, http.StatusBadRequest, "actor_name is required", nil)
		return
	}

	key := h.tmdbKey
	if req.TMDBAPIKey != "" {
		key = req.TMDBAPIKey
	}
	if key == "" {
		writeError(w, http.StatusBadRequest, "no TMDB API key configured or supplied", nil)
		return
	}

	out, err := h.newGenerator(key).Manifest(r.Context(), req.ActorName, req.HintCaptions)
	if err != nil {
		if errors.Is(err, metadata.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error(), nil)
			return
		}
		log.Printf("manifest generation failed: %v", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
