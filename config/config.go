package config

// RenderOptions defines options for a single quiz-video render job
type RenderOptions struct {
	ManifestPath string
	OutputPath   string
	Profile      string // output profile name, e.g. "tiktok"
	Verbose      bool
}

// UploadOptions defines the optional post-render upload step
type UploadOptions struct {
	Enabled     bool
	RemoteName  string
	DeleteLocal bool
}

type VideoDimensions struct {
	Width  int
	Height int
}

const (
	// Output resolution (vertical 9:16) and frame rate
	OutputWidth  = 1080
	OutputHeight = 1920
	OutputFPS    = 30

	// Poster column layout: 3 cells stacked vertically in the middle third
	PosterCellWidth  = OutputWidth / 3  // 360
	PosterCellHeight = OutputHeight / 3 // 640
	PosterColumnX    = PosterCellWidth  // middle column

	// Scene timing (seconds). The intro card is fixed lead-in padding and is
	// not one of the four quiz scenes.
	IntroSeconds       = 5
	HintCaptionSeconds = 5
	HintGridSeconds    = 9
	HintSceneSeconds   = HintCaptionSeconds + HintGridSeconds
	AnswerLeadSeconds  = 3
	AnswerShowSeconds  = 5
	AnswerSceneSeconds = AnswerLeadSeconds + AnswerShowSeconds

	// TotalSeconds is the full output duration: intro padding plus the three
	// hint scenes plus the answer scene.
	TotalSeconds = IntroSeconds + 3*HintSceneSeconds + AnswerSceneSeconds

	// Background audio is ducked under the visuals
	BackgroundAudioVolume = 0.1

	// Temporary directory prefix
	TempDirPrefix = "quizreel_"

	// Text overlay settings
	IntroText       = "Can you\nguess this\nactor from\nonly their\nfilms?"
	AnswerLeadText  = "The answer is ..."
	CaptionFontSize = 96
	AnswerFontSize  = 72
	TextColor       = "white"
	TextBorderColor = "black"
	TextBorderWidth = 2
)
