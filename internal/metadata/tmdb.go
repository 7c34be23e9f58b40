package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

const (
	defaultTMDBBaseURL  = "https://api.themoviedb.org/3"
	defaultTMDBImageURL = "https://image.tmdb.org/t/p/original"
)

// TMDBClient queries the TMDB API for actor portraits and filmographies.
type TMDBClient struct {
	BaseURL      string
	ImageBaseURL string
	APIKey       string
	HTTPClient   *http.Client
}

func NewTMDBClient(apiKey string) *TMDBClient {
	return &TMDBClient{
		BaseURL:      defaultTMDBBaseURL,
		ImageBaseURL: defaultTMDBImageURL,
		APIKey:       apiKey,
		HTTPClient:   newHTTPClient(),
	}
}

// Person is one person search result.
type Person struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path"`
}

type tmdbPersonSearch struct {
	Results []Person `json:"results"`
}

// MovieCredit is one acting credit from a person's filmography. CastOrder is
// the billing position; nil when TMDB does not report one.
type MovieCredit struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Character   string  `json:"character"`
	CastOrder   *int    `json:"order"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
}

// ReleaseYear is the four digit year of the release date, or empty.
func (m MovieCredit) ReleaseYear() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

type tmdbMovieCredits struct {
	Cast []MovieCredit `json:"cast"`
}

func (c *TMDBClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "tmdb request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("tmdb returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode tmdb response")
	}
	return nil
}

// SearchPerson returns TMDB's most popular match for the name.
func (c *TMDBClient) SearchPerson(ctx context.Context, name string) (Person, error) {
	params := url.Values{
		"query":         {name},
		"include_adult": {"false"},
		"language":      {"en-US"},
		"page":          {"1"},
	}
	var body tmdbPersonSearch
	if err := c.get(ctx, "/search/person", params, &body); err != nil {
		return Person{}, err
	}
	if len(body.Results) == 0 {
		return Person{}, errors.Wrapf(ErrNotFound, "tmdb: person %q not found", name)
	}
	return body.Results[0], nil
}

// PortraitByName returns the portrait image URL for the best person match.
func (c *TMDBClient) PortraitByName(ctx context.Context, name string) (string, error) {
	person, err := c.SearchPerson(ctx, name)
	if err != nil {
		return "", err
	}
	if person.ProfilePath == "" {
		return "", errors.Wrapf(ErrNotFound, "tmdb: no portrait for %q", person.Name)
	}
	return c.ImageBaseURL + person.ProfilePath, nil
}

// MovieCredits returns every acting credit for the person. Crew credits are
// not included.
func (c *TMDBClient) MovieCredits(ctx context.Context, personID int64) ([]MovieCredit, error) {
	params := url.Values{"language": {"en-US"}}
	var body tmdbMovieCredits
	if err := c.get(ctx, fmt.Sprintf("/person/%d/movie_credits", personID), params, &body); err != nil {
		return nil, err
	}
	return body.Cast, nil
}
