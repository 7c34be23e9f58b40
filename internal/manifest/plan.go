package manifest

import "github.com/quizreel/quizreel/config"

// Role tags a scene's position in the quiz.
type Role string

const (
	RoleHint1  Role = "hint-1"
	RoleHint2  Role = "hint-2"
	RoleHint3  Role = "hint-3"
	RoleAnswer Role = "answer"
)

// Scene is one timed segment of the output video. Refs and Answer carry the
// unresolved image sources; Images is filled in by the fetch stage before
// rendering and holds exactly one local file path per slot.
type Scene struct {
	Role    Role
	Caption string
	Refs    []MovieRef  // hint scenes: the 3 movie slots
	Answer  *AnswerSpec // answer scene only
	Images  []string
	Start   float64
	Seconds float64
}

// Plan is the normalized composition plan: four scenes in fixed quiz order
// plus the background tracks. Built once per job, immutable during rendering.
type Plan struct {
	Scenes          []Scene
	BackgroundAudio string
	BackgroundVideo string
}

// Total returns the output duration in seconds: the intro padding plus the
// four scene durations.
func (p *Plan) Total() float64 {
	total := float64(config.IntroSeconds)
	for _, s := range p.Scenes {
		total += s.Seconds
	}
	return total
}

// Resolved reports whether every scene slot has a resolved image.
func (p *Plan) Resolved() bool {
	for _, s := range p.Scenes {
		want := len(s.Refs)
		if s.Role == RoleAnswer {
			want = 1
		}
		if len(s.Images) != want {
			return false
		}
	}
	return true
}
