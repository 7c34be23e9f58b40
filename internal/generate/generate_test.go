package generate

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/quizreel/quizreel/internal/metadata"
)

type fakeCredits struct {
	person    metadata.Person
	searchErr error
	credits   []metadata.MovieCredit
}

func (f *fakeCredits) SearchPerson(ctx context.Context, name string) (metadata.Person, error) {
	if f.searchErr != nil {
		return metadata.Person{}, f.searchErr
	}
	return f.person, nil
}

func (f *fakeCredits) MovieCredits(ctx context.Context, personID int64) ([]metadata.MovieCredit, error) {
	return f.credits, nil
}

func order(n int) *int { return &n }

// credit builds an acting credit whose score is dominated by popularity.
func credit(title string, popularity float64) metadata.MovieCredit {
	return metadata.MovieCredit{
		ID:          int64(len(title)),
		Title:       title,
		ReleaseDate: "2015-06-12",
		Character:   "Lead",
		CastOrder:   order(0),
		Popularity:  popularity,
		VoteAverage: 7.0,
	}
}

func tenCredits() []metadata.MovieCredit {
	titles := []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8", "m9", "m10"}
	credits := make([]metadata.MovieCredit, 0, len(titles))
	for i, title := range titles {
		// m1 is the most popular, m10 the least
		credits = append(credits, credit(title, float64(100-i*10)))
	}
	return credits
}

func TestManifestGroupsHardestFirst(t *testing.T) {
	g := New(&fakeCredits{
		person:  metadata.Person{ID: 7, Name: "Some Actor"},
		credits: tenCredits(),
	})

	out, err := g.Manifest(context.Background(), "some actor", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.ActorName != "Some Actor" {
		t.Errorf("expected the canonical TMDB name, got %q", out.ActorName)
	}
	if out.TotalMoviesFound != 10 {
		t.Errorf("expected 10 rankable movies, got %d", out.TotalMoviesFound)
	}
	if len(out.Movies) != 9 {
		t.Fatalf("expected the top 9 movies, got %d", len(out.Movies))
	}
	if out.Movies[0].Title != "m1" || out.Movies[8].Title != "m9" {
		t.Errorf("ranking is off: first %q, last %q", out.Movies[0].Title, out.Movies[8].Title)
	}

	m := out.Manifest
	if m.Answer.Caption != "Some Actor" {
		t.Errorf("answer caption should name the actor, got %q", m.Answer.Caption)
	}
	if len(m.Hints) != 3 {
		t.Fatalf("expected 3 hint groups, got %d", len(m.Hints))
	}
	for i, want := range DefaultHintCaptions {
		if m.Hints[i].Caption != want {
			t.Errorf("group %d caption %q, want %q", i, m.Hints[i].Caption, want)
		}
		if len(m.Hints[i].Movies) != 3 {
			t.Fatalf("group %d has %d movies", i, len(m.Hints[i].Movies))
		}
	}

	// Least recognizable third opens the quiz, most recognizable closes it
	firstGroup := []string{m.Hints[0].Movies[0].Title, m.Hints[0].Movies[1].Title, m.Hints[0].Movies[2].Title}
	lastGroup := []string{m.Hints[2].Movies[0].Title, m.Hints[2].Movies[1].Title, m.Hints[2].Movies[2].Title}
	if firstGroup[0] != "m7" || firstGroup[2] != "m9" {
		t.Errorf("hardest group should hold the ranking tail, got %v", firstGroup)
	}
	if lastGroup[0] != "m1" || lastGroup[2] != "m3" {
		t.Errorf("easiest group should hold the ranking head, got %v", lastGroup)
	}

	for _, ref := range m.Hints[0].Movies {
		if ref.ReleaseYear != "2015" {
			t.Errorf("expected release year 2015, got %q", ref.ReleaseYear)
		}
	}
}

func TestManifestCustomCaptions(t *testing.T) {
	g := New(&fakeCredits{person: metadata.Person{ID: 7, Name: "Some Actor"}, credits: tenCredits()})

	captions := []string{"tricky", "middling", "obvious"}
	out, err := g.Manifest(context.Background(), "some actor", captions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range captions {
		if out.Manifest.Hints[i].Caption != want {
			t.Errorf("group %d caption %q, want %q", i, out.Manifest.Hints[i].Caption, want)
		}
	}

	if _, err := g.Manifest(context.Background(), "some actor", []string{"only one"}); err == nil {
		t.Fatal("expected error for a wrong caption count")
	}
}

func TestManifestRequiresNineRankableMovies(t *testing.T) {
	credits := tenCredits()[:8]
	g := New(&fakeCredits{person: metadata.Person{ID: 7, Name: "Some Actor"}, credits: credits})

	if _, err := g.Manifest(context.Background(), "some actor", nil); err == nil {
		t.Fatal("expected error for a too small filmography")
	}
}

func TestManifestPropagatesNotFound(t *testing.T) {
	g := New(&fakeCredits{searchErr: errors.Wrap(metadata.ErrNotFound, "tmdb")})

	_, err := g.Manifest(context.Background(), "nobody", nil)
	if !errors.Is(err, metadata.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestManifestRequiresActorName(t *testing.T) {
	g := New(&fakeCredits{})
	if _, err := g.Manifest(context.Background(), "", nil); err == nil {
		t.Fatal("expected error for an empty actor name")
	}
}

func TestRankCreditsSkipsUnscorable(t *testing.T) {
	credits := []metadata.MovieCredit{
		{Title: "no popularity", CastOrder: order(1)},
		{Title: "no billing", Popularity: 50},
		credit("scored", 50),
	}
	ranked := rankCredits(credits)
	if len(ranked) != 1 || ranked[0].Title != "scored" {
		t.Fatalf("expected only the scorable credit, got %v", ranked)
	}
}

func TestRecognizabilityWeighsBilling(t *testing.T) {
	lead := credit("lead", 50)
	background := credit("background", 50)
	background.CastOrder = order(40)

	if recognizability(lead) <= recognizability(background) {
		t.Error("top billing must outscore a background role at equal popularity")
	}

	distant := credit("distant", 50)
	distant.CastOrder = order(80)
	if got := castOrderWeight(*distant.CastOrder); got != 0 {
		t.Errorf("billing weight must floor at 0, got %g", got)
	}
}
