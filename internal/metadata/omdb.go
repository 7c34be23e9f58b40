package metadata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

const defaultOMDBBaseURL = "https://www.omdbapi.com/"

// OMDBClient queries the OMDb API for movie posters, either by canonical
// IMDb ID or by title text search. Lookup by ID is strictly more precise.
type OMDBClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewOMDBClient(apiKey string) *OMDBClient {
	return &OMDBClient{
		BaseURL:    defaultOMDBBaseURL,
		APIKey:     apiKey,
		HTTPClient: newHTTPClient(),
	}
}

type omdbResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Title    string `json:"Title"`
	Poster   string `json:"Poster"`
}

// PosterByID returns the poster image URL for a canonical IMDb title ID.
func (c *OMDBClient) PosterByID(ctx context.Context, imdbID string) (string, error) {
	return c.poster(ctx, url.Values{"i": {imdbID}})
}

// PosterByTitle returns the poster image URL for a title text search, with
// the release year as an additional filter when present.
func (c *OMDBClient) PosterByTitle(ctx context.Context, title, year string) (string, error) {
	params := url.Values{"t": {title}}
	if year != "" {
		params.Set("y", year)
	}
	return c.poster(ctx, params)
}

func (c *OMDBClient) poster(ctx context.Context, params url.Values) (string, error) {
	params.Set("apikey", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "omdb request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("omdb returned HTTP %d", resp.StatusCode)
	}

	var body omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.Wrap(err, "failed to decode omdb response")
	}

	if body.Response == "False" {
		return "", errors.Wrapf(ErrNotFound, "omdb: %s", body.Error)
	}
	if body.Poster == "" || body.Poster == "N/A" {
		return "", errors.Wrapf(ErrNotFound, "omdb: no poster for %q", body.Title)
	}
	return body.Poster, nil
}
