package fetch

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/quizreel/quizreel/config"
)

// WritePlaceholder writes a solid dark poster-cell-sized PNG into dir and
// returns its path. Placeholders are composited like any other image, so
// they only need to be valid image files.
func WritePlaceholder(dir, name string) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, config.PosterCellWidth, config.PosterCellHeight))
	fill := color.RGBA{R: 24, G: 24, B: 28, A: 255}
	for y := 0; y < config.PosterCellHeight; y++ {
		for x := 0; x < config.PosterCellWidth; x++ {
			img.Set(x, y, fill)
		}
	}

	path := filepath.Join(dir, "placeholder_"+name+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to create placeholder file")
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", errors.Wrap(err, "failed to encode placeholder image")
	}
	return path, nil
}
