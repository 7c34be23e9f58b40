package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
)

func newOMDBTestClient(handler http.HandlerFunc) (*OMDBClient, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewOMDBClient("test-key")
	c.BaseURL = srv.URL
	c.HTTPClient = srv.Client()
	return c, srv
}

func TestPosterByIDSendsIDAndKey(t *testing.T) {
	var gotQuery map[string]string
	c, srv := newOMDBTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"i":      r.URL.Query().Get("i"),
			"apikey": r.URL.Query().Get("apikey"),
		}
		fmt.Fprint(w, `{"Response":"True","Title":"The Shawshank Redemption","Poster":"https://img.example/poster.jpg"}`)
	})
	defer srv.Close()

	got, err := c.PosterByID(context.Background(), "tt0111161")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://img.example/poster.jpg" {
		t.Errorf("unexpected poster URL %q", got)
	}
	if gotQuery["i"] != "tt0111161" || gotQuery["apikey"] != "test-key" {
		t.Errorf("unexpected query params: %v", gotQuery)
	}
}

func TestPosterByTitleSendsYearOnlyWhenSet(t *testing.T) {
	var lastQuery string
	c, srv := newOMDBTestClient(func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"Response":"True","Title":"Heat","Poster":"https://img.example/heat.jpg"}`)
	})
	defer srv.Close()

	if _, err := c.PosterByTitle(context.Background(), "Heat", "1995"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := mustParseQuery(t, lastQuery)
	if q.Get("t") != "Heat" || q.Get("y") != "1995" {
		t.Errorf("expected title and year, got %q", lastQuery)
	}

	if _, err := c.PosterByTitle(context.Background(), "Heat", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q = mustParseQuery(t, lastQuery)
	if q.Has("y") {
		t.Errorf("year param should be absent, got %q", lastQuery)
	}
}

func TestPosterNotFoundCases(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"movie not found", `{"Response":"False","Error":"Movie not found!"}`},
		{"poster NA", `{"Response":"True","Title":"Obscure","Poster":"N/A"}`},
		{"poster empty", `{"Response":"True","Title":"Obscure","Poster":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newOMDBTestClient(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			defer srv.Close()

			_, err := c.PosterByID(context.Background(), "tt0000001")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestPosterHTTPErrorIsNotNotFound(t *testing.T) {
	c, srv := newOMDBTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer srv.Close()

	_, err := c.PosterByID(context.Background(), "tt0000001")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("HTTP failure must stay distinct from a not-found result")
	}
}
