package manifest

import (
	"fmt"
	"strings"

	"github.com/quizreel/quizreel/config"
)

const (
	hintGroupCount     = 3
	moviesPerHintGroup = 3
)

// ValidationError reports every structural violation found in a manifest,
// not just the first, so the caller gets one actionable report.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid manifest: %s", strings.Join(e.Issues, "; "))
}

// Normalize validates a raw manifest and builds the plan skeleton: four
// scenes in fixed order (hard, medium, easy, answer) with their time spans,
// without resolved image assets. On failure it returns a *ValidationError
// listing all violations.
func Normalize(m *Manifest) (*Plan, error) {
	var issues []string

	if len(m.Hints) != hintGroupCount {
		issues = append(issues, fmt.Sprintf("manifest must contain exactly %d hint groups, got %d",
			hintGroupCount, len(m.Hints)))
	}

	for i, group := range m.Hints {
		if strings.TrimSpace(group.Caption) == "" {
			issues = append(issues, fmt.Sprintf("hint group %d: caption is required", i+1))
		}
		if len(group.Movies) != moviesPerHintGroup {
			issues = append(issues, fmt.Sprintf("hint group %d must contain exactly %d movies, got %d",
				i+1, moviesPerHintGroup, len(group.Movies)))
		}
		for j, movie := range group.Movies {
			if movie.Mode() == LookupNone {
				issues = append(issues, fmt.Sprintf("hint group %d, movie %d: either title or imdb_url is required",
					i+1, j+1))
			}
		}
	}

	if strings.TrimSpace(m.Answer.Caption) == "" {
		issues = append(issues, "answer: caption is required")
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	plan := &Plan{
		Scenes:          make([]Scene, 0, hintGroupCount+1),
		BackgroundAudio: m.BackgroundAudio,
		BackgroundVideo: m.BackgroundVideo,
	}

	roles := []Role{RoleHint1, RoleHint2, RoleHint3}
	start := float64(config.IntroSeconds)
	for i, group := range m.Hints {
		refs := make([]MovieRef, len(group.Movies))
		copy(refs, group.Movies)
		plan.Scenes = append(plan.Scenes, Scene{
			Role:    roles[i],
			Caption: group.Caption,
			Refs:    refs,
			Start:   start,
			Seconds: config.HintSceneSeconds,
		})
		start += config.HintSceneSeconds
	}

	answer := m.Answer
	plan.Scenes = append(plan.Scenes, Scene{
		Role:    RoleAnswer,
		Caption: answer.Caption,
		Answer:  &answer,
		Start:   start,
		Seconds: config.AnswerSceneSeconds,
	})

	return plan, nil
}
