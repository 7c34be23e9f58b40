package manifest

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Manifest is the declarative description of one quiz video: three hint
// groups ordered hard, medium, easy, plus the answer reveal.
type Manifest struct {
	Hints           []HintGroup `json:"hints"`
	Answer          AnswerSpec  `json:"answer"`
	BackgroundAudio string      `json:"background_audio,omitempty"`
	BackgroundVideo string      `json:"background_video,omitempty"`

	// API keys may ride along with the manifest payload; the server boundary
	// folds them into Credentials with environment values as fallback.
	OMDBAPIKey string `json:"omdb_api_key,omitempty"`
	TMDBAPIKey string `json:"tmdb_api_key,omitempty"`
}

// HintGroup is one difficulty tier: a caption and exactly 3 movie clues.
type HintGroup struct {
	Caption string     `json:"caption"`
	Movies  []MovieRef `json:"movies"`
}

// MovieRef identifies one movie clue. At least one of Title or IMDBURL must
// be present; PosterPath short-circuits any lookup.
type MovieRef struct {
	Title       string `json:"title,omitempty"`
	ReleaseYear string `json:"release_year,omitempty"`
	PosterPath  string `json:"poster_path,omitempty"`
	IMDBURL     string `json:"imdb_url,omitempty"`
}

// AnswerSpec names the actor being guessed, with an optional pre-supplied
// portrait image.
type AnswerSpec struct {
	Caption   string `json:"caption"`
	ImagePath string `json:"image_path,omitempty"`
}

// LookupMode is the explicit fallback chain for a MovieRef, resolved once at
// normalization time instead of re-checking field presence downstream.
type LookupMode int

const (
	LookupNone LookupMode = iota
	LookupTitleOnly
	LookupURLOnly
	LookupTitleAndURL
)

// Mode reports how the movie's poster can be looked up.
func (m MovieRef) Mode() LookupMode {
	hasTitle := strings.TrimSpace(m.Title) != ""
	hasURL := strings.TrimSpace(m.IMDBURL) != ""
	switch {
	case hasTitle && hasURL:
		return LookupTitleAndURL
	case hasURL:
		return LookupURLOnly
	case hasTitle:
		return LookupTitleOnly
	default:
		return LookupNone
	}
}

// Decode reads a JSON manifest.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, "failed to decode manifest")
	}
	return &m, nil
}
