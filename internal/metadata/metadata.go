// Package metadata talks to the external movie/person metadata APIs: OMDb
// for movie posters, TMDB for actor portraits.
package metadata

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Credentials carries the metadata API keys for one job. It is built once at
// the binary boundary (request payload first, environment fallback) and
// passed by parameter; core packages never read ambient process state.
type Credentials struct {
	OMDBAPIKey string
	TMDBAPIKey string
}

// ErrNotFound is returned when the API answered but has no image for the
// query. It is distinct from transport failures so the fetch fallback chain
// can treat both the same way while logging differs.
var ErrNotFound = errors.New("no image found")

const defaultTimeout = 30 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// DownloadImage fetches an image URL and writes it to destPath.
func DownloadImage(ctx context.Context, httpc *http.Client, imageURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to download image %s", imageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("image download returned HTTP %d for %s", resp.StatusCode, imageURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read image body")
	}
	// Tiny bodies are error pages, not images
	if len(data) < 100 {
		return errors.Errorf("image response too small (%d bytes) for %s", len(data), imageURL)
	}

	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write image file")
	}
	return nil
}
