package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/quizreel/quizreel/config"
	"github.com/quizreel/quizreel/internal/generate"
	"github.com/quizreel/quizreel/internal/manifest"
	"github.com/quizreel/quizreel/internal/metadata"
)

type fakeGenerator struct {
	out         *generate.Output
	err         error
	gotActor    string
	gotCaptions []string
}

func (f *fakeGenerator) Manifest(ctx context.Context, actorName string, hintCaptions []string) (*generate.Output, error) {
	f.gotActor = actorName
	f.gotCaptions = hintCaptions
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func newManifestTestServer(gen ManifestGenerator, serverKey string) (*httptest.Server, *string) {
	var usedKey string
	h := &ManifestHandler{
		tmdbKey: serverKey,
		newGenerator: func(tmdbKey string) ManifestGenerator {
			usedKey = tmdbKey
			return gen
		},
	}
	return httptest.NewServer(NewMux(NewVideoHandler(&fakeRunner{}, metadata.Credentials{}, "tiktok", "output", config.UploadOptions{}), h)), &usedKey
}

func TestGenerateManifestSuccess(t *testing.T) {
	gen := &fakeGenerator{out: &generate.Output{
		ActorName:        "Some Actor",
		TotalMoviesFound: 12,
		Manifest: &manifest.Manifest{
			Answer: manifest.AnswerSpec{Caption: "Some Actor"},
		},
	}}
	srv, usedKey := newManifestTestServer(gen, "env-tmdb")
	defer srv.Close()

	body := `{"actor_name": "some actor", "hint_captions": ["a", "b", "c"]}`
	resp, err := http.Post(srv.URL+"/api/manifests", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gen.gotActor != "some actor" {
		t.Errorf("generator got actor %q", gen.gotActor)
	}
	if len(gen.gotCaptions) != 3 || gen.gotCaptions[0] != "a" {
		t.Errorf("generator got captions %v", gen.gotCaptions)
	}
	if *usedKey != "env-tmdb" {
		t.Errorf("expected the server key, got %q", *usedKey)
	}

	var out generate.Output
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if out.ActorName != "Some Actor" || out.TotalMoviesFound != 12 {
		t.Errorf("unexpected response %+v", out)
	}
	if out.Manifest == nil || out.Manifest.Answer.Caption != "Some Actor" {
		t.Error("response should embed the generated manifest")
	}
}

func TestGenerateManifestKeyOverride(t *testing.T) {
	gen := &fakeGenerator{out: &generate.Output{Manifest: &manifest.Manifest{}}}
	srv, usedKey := newManifestTestServer(gen, "env-tmdb")
	defer srv.Close()

	body := `{"actor_name": "some actor", "tmdb_api_key": "request-tmdb"}`
	resp, err := http.Post(srv.URL+"/api/manifests", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if *usedKey != "request-tmdb" {
		t.Errorf("request key must override the server key, got %q", *usedKey)
	}
}

func TestGenerateManifestUnknownActor(t *testing.T) {
	gen := &fakeGenerator{err: errors.Wrap(metadata.ErrNotFound, "tmdb: person \"nobody\" not found")}
	srv, _ := newManifestTestServer(gen, "env-tmdb")
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/manifests", "application/json", strings.NewReader(`{"actor_name": "nobody"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGenerateManifestTooFewMovies(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("found only 4 rankable movies for \"Some Actor\", need 9")}
	srv, _ := newManifestTestServer(gen, "env-tmdb")
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/manifests", "application/json", strings.NewReader(`{"actor_name": "some actor"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestGenerateManifestBadRequests(t *testing.T) {
	tests := []struct {
		name      string
		serverKey string
		body      string
	}{
		{"invalid json", "env-tmdb", `{`},
		{"missing actor", "env-tmdb", `{}`},
		{"no key anywhere", "", `{"actor_name": "some actor"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newManifestTestServer(&fakeGenerator{}, tt.serverKey)
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/api/manifests", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestGenerateManifestMethodNotAllowed(t *testing.T) {
	srv, _ := newManifestTestServer(&fakeGenerator{}, "env-tmdb")
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/manifests")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}
