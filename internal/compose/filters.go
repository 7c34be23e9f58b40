package compose

import (
	"fmt"
	"strings"

	"github.com/quizreel/quizreel/config"
)

// escapeDrawtext escapes the characters that terminate or corrupt a drawtext
// argument inside a filter graph.
func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ":", `\:`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return s
}

// captionArgs builds the drawtext argument string for caption text centered
// horizontally at the given vertical position expression.
func captionArgs(text string, fontSize int, yExpr string) string {
	return fmt.Sprintf("text='%s':fontsize=%d:fontcolor=%s:bordercolor=%s:borderw=%d:x=(w-text_w)/2:y=%s",
		escapeDrawtext(text), fontSize,
		config.TextColor, config.TextBorderColor, config.TextBorderWidth,
		yExpr)
}

// cardFilter is the single-input video filter for a full-frame caption card.
func cardFilter(text string, fontSize int) string {
	return "drawtext=" + captionArgs(text, fontSize, "(h-text_h)/2")
}

// cellScale fits a poster into its fixed grid cell.
func cellScale() string {
	return fmt.Sprintf("%d:%d", config.PosterCellWidth, config.PosterCellHeight)
}

// cellPad centers the scaled poster on the cell with black bars.
func cellPad() string {
	return fmt.Sprintf("%d:%d:(ow-iw)/2:(oh-ih)/2", config.PosterCellWidth, config.PosterCellHeight)
}

// portraitScale fits the answer portrait inside its reveal box.
func portraitScale() string {
	return fmt.Sprintf("%d:%d", config.OutputWidth*3/4, config.OutputHeight*3/5)
}

// coverScale fits the background video over the full output frame.
func coverScale() string {
	return fmt.Sprintf("%d:%d", config.OutputWidth, config.OutputHeight)
}
