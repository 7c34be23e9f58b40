// Package generate builds a quiz manifest from an actor's TMDB filmography.
// The actor's nine most recognizable movies become the three hint groups,
// ordered hardest to easiest.
package generate

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/quizreel/quizreel/internal/manifest"
	"github.com/quizreel/quizreel/internal/metadata"
)

// MoviesPerGroup movies per hint tier, GroupCount tiers per quiz.
const (
	MoviesPerGroup = 3
	GroupCount     = 3
	moviesNeeded   = MoviesPerGroup * GroupCount
)

// DefaultHintCaptions, hardest tier first.
var DefaultHintCaptions = [GroupCount]string{
	"Hardest\nLevel\nHints",
	"Medium\nLevel\nHints",
	"Easiest\nLevel\nHints",
}

// castOrderWeight rewards top billing: a lead role scores 1.0 and the value
// decays linearly to 0 at billing position 50.
func castOrderWeight(order int) float64 {
	w := 1.0 - float64(order)/50.0
	if w < 0 {
		return 0
	}
	return w
}

// recognizability blends how widely known the movie is with how prominent
// the actor's role in it was.
func recognizability(c metadata.MovieCredit) float64 {
	return 0.8*c.Popularity + 0.2*castOrderWeight(*c.CastOrder)*100
}

// RankedMovie is one credit with its computed score, most recognizable first
// in Generator results.
type RankedMovie struct {
	Title       string  `json:"title"`
	ReleaseYear string  `json:"release_year"`
	Character   string  `json:"character"`
	CastOrder   int     `json:"cast_order"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	MovieID     int64   `json:"movie_id"`
	Overview    string  `json:"overview"`
	Score       float64 `json:"score"`
}

// Output is one generated quiz: the ranked filmography and the manifest
// built from it.
type Output struct {
	ActorName        string             `json:"actor_name"`
	TotalMoviesFound int                `json:"total_movies_found"`
	Movies           []RankedMovie      `json:"movie_details"`
	Manifest         *manifest.Manifest `json:"manifest"`
}

// Credits is the filmography source. *metadata.TMDBClient is the production
// implementation.
type Credits interface {
	SearchPerson(ctx context.Context, name string) (metadata.Person, error)
	MovieCredits(ctx context.Context, personID int64) ([]metadata.MovieCredit, error)
}

// Generator builds manifests for actors.
type Generator struct {
	TMDB Credits
}

func New(tmdb Credits) *Generator {
	return &Generator{TMDB: tmdb}
}

// Manifest ranks the actor's acting credits and builds a quiz manifest from
// the top nine. Credits without a popularity value or a billing position are
// skipped. hintCaptions may be empty to use the defaults.
//
// The hint groups go hardest first: the least recognizable third of the nine
// opens the quiz and the most recognizable third closes it, so the clues get
// easier as the video plays.
func (g *Generator) Manifest(ctx context.Context, actorName string, hintCaptions []string) (*Output, error) {
	if actorName == "" {
		return nil, errors.New("actor name is required")
	}
	captions, err := resolveCaptions(hintCaptions)
	if err != nil {
		return nil, err
	}

	person, err := g.TMDB.SearchPerson(ctx, actorName)
	if err != nil {
		return nil, err
	}
	credits, err := g.TMDB.MovieCredits(ctx, person.ID)
	if err != nil {
		return nil, err
	}

	ranked := rankCredits(credits)
	if len(ranked) < moviesNeeded {
		return nil, errors.Errorf("found only %d rankable movies for %q, need %d", len(ranked), person.Name, moviesNeeded)
	}
	top := ranked[:moviesNeeded]

	m := &manifest.Manifest{Answer: manifest.AnswerSpec{Caption: person.Name}}
	for group := 0; group < GroupCount; group++ {
		hint := manifest.HintGroup{Caption: captions[group]}
		// Hardest group takes the tail of the ranking
		start := (GroupCount - 1 - group) * MoviesPerGroup
		for _, movie := range top[start : start+MoviesPerGroup] {
			hint.Movies = append(hint.Movies, manifest.MovieRef{
				Title:       movie.Title,
				ReleaseYear: movie.ReleaseYear,
			})
		}
		m.Hints = append(m.Hints, hint)
	}

	return &Output{
		ActorName:        person.Name,
		TotalMoviesFound: len(ranked),
		Movies:           top,
		Manifest:         m,
	}, nil
}

func resolveCaptions(captions []string) ([]string, error) {
	if len(captions) == 0 {
		return DefaultHintCaptions[:], nil
	}
	if len(captions) != GroupCount {
		return nil, errors.Errorf("expected %d hint captions, got %d", GroupCount, len(captions))
	}
	return captions, nil
}

// rankCredits filters out credits that cannot be scored and sorts the rest
// most recognizable first.
func rankCredits(credits []metadata.MovieCredit) []RankedMovie {
	ranked := make([]RankedMovie, 0, len(credits))
	for _, c := range credits {
		if c.Popularity <= 0 || c.CastOrder == nil {
			continue
		}
		ranked = append(ranked, RankedMovie{
			Title:       c.Title,
			ReleaseYear: c.ReleaseYear(),
			Character:   c.Character,
			CastOrder:   *c.CastOrder,
			Popularity:  c.Popularity,
			VoteAverage: c.VoteAverage,
			MovieID:     c.ID,
			Overview:    c.Overview,
			Score:       recognizability(c),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
