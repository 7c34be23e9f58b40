// Package compose renders a fully-resolved composition plan into a single
// vertical quiz video.
package compose

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/quizreel/quizreel/config"
	ffmpegwrap "github.com/quizreel/quizreel/internal/ffmpeg"
	"github.com/quizreel/quizreel/internal/manifest"
	"github.com/quizreel/quizreel/internal/profile"
)

// RenderError is fatal to the whole job: composition or encoding failed and
// no partial output is valid.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed at %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Engine turns a composition plan with resolved assets into one MP4 file at
// the fixed output geometry.
type Engine struct {
	ffmpeg  *ffmpegwrap.Processor
	profile profile.Profile
	tempDir string
	verbose bool
}

// NewEngine creates an engine writing intermediate segments into tempDir.
func NewEngine(prof profile.Profile, tempDir string, verbose bool) *Engine {
	return &Engine{
		ffmpeg:  ffmpegwrap.NewProcessor(verbose),
		profile: prof,
		tempDir: tempDir,
		verbose: verbose,
	}
}

// needsAlpha reports whether scene segments must carry an alpha channel.
// With a background video the scenes are overlaid on it, so everything that
// is not a caption, poster cell or portrait has to stay transparent; without
// one the scenes render on an opaque black base and become the output track.
func needsAlpha(plan *manifest.Plan) bool {
	return plan.BackgroundVideo != ""
}

// segmentExt is the container for intermediate scene segments. Transparent
// segments use the png codec in MOV; H.264 MP4 cannot carry alpha.
func segmentExt(alpha bool) string {
	if alpha {
		return ".mov"
	}
	return ".mp4"
}

// Render produces the output video: intro card, three hint scenes, answer
// scene, concatenated over the looped/trimmed background tracks. Scene order
// is the plan order and is never reordered. Any failure removes a partially
// written output file.
func (e *Engine) Render(ctx context.Context, plan *manifest.Plan, outputPath string) error {
	if len(plan.Scenes) != 4 {
		return &RenderError{Stage: "plan", Err: errors.Errorf("expected 4 scenes, got %d", len(plan.Scenes))}
	}
	if !plan.Resolved() {
		return &RenderError{Stage: "plan", Err: errors.New("plan has unresolved image slots")}
	}

	outputPath = ffmpegwrap.EnsureExtension(outputPath, ffmpegwrap.MP4Settings().FileExtension)

	if err := e.render(ctx, plan, outputPath); err != nil {
		// No partial output is ever valid
		os.Remove(outputPath)
		if rerr, ok := err.(*RenderError); ok {
			return rerr
		}
		return &RenderError{Stage: "render", Err: err}
	}
	return nil
}

func (e *Engine) render(ctx context.Context, plan *manifest.Plan, outputPath string) error {
	alpha := needsAlpha(plan)
	ext := segmentExt(alpha)

	segments := make([]string, 0, 2*len(plan.Scenes)+1)

	intro := filepath.Join(e.tempDir, "segment_intro"+ext)
	if err := e.renderCard(config.IntroText, config.IntroSeconds, alpha, intro); err != nil {
		return &RenderError{Stage: "intro card", Err: err}
	}
	segments = append(segments, intro)

	for i, scene := range plan.Scenes {
		if err := ctx.Err(); err != nil {
			return &RenderError{Stage: "cancelled", Err: err}
		}

		if scene.Role == manifest.RoleAnswer {
			lead := filepath.Join(e.tempDir, "segment_answer_lead"+ext)
			if err := e.renderCard(config.AnswerLeadText, config.AnswerLeadSeconds, alpha, lead); err != nil {
				return &RenderError{Stage: "answer lead card", Err: err}
			}
			reveal := filepath.Join(e.tempDir, "segment_answer"+ext)
			if err := e.renderAnswer(scene, alpha, reveal); err != nil {
				return &RenderError{Stage: "answer scene", Err: err}
			}
			segments = append(segments, lead, reveal)
			continue
		}

		card := filepath.Join(e.tempDir, fmt.Sprintf("segment_%s_card%s", scene.Role, ext))
		if err := e.renderCard(scene.Caption, config.HintCaptionSeconds, alpha, card); err != nil {
			return &RenderError{Stage: fmt.Sprintf("%s card", scene.Role), Err: err}
		}
		grid := filepath.Join(e.tempDir, fmt.Sprintf("segment_%s_grid%s", scene.Role, ext))
		if err := e.renderGrid(scene, alpha, grid); err != nil {
			return &RenderError{Stage: fmt.Sprintf("%s grid", scene.Role), Err: err}
		}
		segments = append(segments, card, grid)

		if e.verbose {
			log.Printf("Rendered scene %d/%d (%s)\n", i+1, len(plan.Scenes), scene.Role)
		}
	}

	sceneTrack := filepath.Join(e.tempDir, "scenes"+ext)
	if err := e.concatSegments(segments, sceneTrack); err != nil {
		return &RenderError{Stage: "concat", Err: err}
	}

	if err := e.mux(plan, sceneTrack, outputPath); err != nil {
		return &RenderError{Stage: "mux", Err: err}
	}

	if e.verbose {
		log.Printf("Rendered %s (%.0fs)\n", outputPath, plan.Total())
	}
	return nil
}

// renderCard renders a full-frame caption card segment of the given length.
func (e *Engine) renderCard(text string, seconds int, alpha bool, outPath string) error {
	err := ffmpeg.Input(e.colorSource(seconds, alpha), ffmpeg.KwArgs{"f": "lavfi"}).
		Output(outPath, e.outputKwargs(seconds, alpha, ffmpeg.KwArgs{
			"vf": cardFilter(text, config.CaptionFontSize),
		})).
		OverWriteOutput().
		ErrorToStdOut().
		Run()
	if err != nil {
		return errors.Wrap(err, "failed to render caption card")
	}
	return nil
}

// renderGrid renders a hint scene's poster column segment: each poster
// fitted into its fixed cell, the cells stacked vertically and overlaid onto
// the middle third of the frame.
func (e *Engine) renderGrid(scene manifest.Scene, alpha bool, outPath string) error {
	seconds := config.HintGridSeconds

	bg := ffmpeg.Input(e.colorSource(seconds, alpha), ffmpeg.KwArgs{"f": "lavfi"})

	cells := make([]*ffmpeg.Stream, 0, len(scene.Images))
	for _, img := range scene.Images {
		cell := e.stillInput(img, seconds).
			Filter("scale", ffmpeg.Args{cellScale()}, ffmpeg.KwArgs{"force_original_aspect_ratio": "decrease"}).
			Filter("pad", ffmpeg.Args{cellPad()})
		cells = append(cells, cell)
	}

	column := ffmpeg.Filter(cells, "vstack", ffmpeg.Args{}, ffmpeg.KwArgs{"inputs": len(cells)})
	comp := ffmpeg.Filter([]*ffmpeg.Stream{bg, column}, "overlay", ffmpeg.Args{}, ffmpeg.KwArgs{
		"x": config.PosterColumnX,
		"y": 0,
	})

	err := comp.Output(outPath, e.outputKwargs(seconds, alpha, nil)).
		OverWriteOutput().
		ErrorToStdOut().
		Run()
	if err != nil {
		return errors.Wrap(err, "failed to render poster grid")
	}
	return nil
}

// renderAnswer renders the answer reveal: the portrait centered over the
// frame with the actor's name above it.
func (e *Engine) renderAnswer(scene manifest.Scene, alpha bool, outPath string) error {
	seconds := config.AnswerShowSeconds

	bg := ffmpeg.Input(e.colorSource(seconds, alpha), ffmpeg.KwArgs{"f": "lavfi"})
	portrait := e.stillInput(scene.Images[0], seconds).
		Filter("scale", ffmpeg.Args{portraitScale()}, ffmpeg.KwArgs{"force_original_aspect_ratio": "decrease"})

	comp := ffmpeg.Filter([]*ffmpeg.Stream{bg, portrait}, "overlay", ffmpeg.Args{}, ffmpeg.KwArgs{
		"x": "(W-w)/2",
		"y": "(H-h)/2",
	}).Filter("drawtext", ffmpeg.Args{
		captionArgs(scene.Caption, config.AnswerFontSize, fmt.Sprintf("%d", config.OutputHeight/8)),
	})

	err := comp.Output(outPath, e.outputKwargs(seconds, alpha, nil)).
		OverWriteOutput().
		ErrorToStdOut().
		Run()
	if err != nil {
		return errors.Wrap(err, "failed to render answer scene")
	}
	return nil
}

// concatSegments joins the rendered segments in order with the concat
// demuxer. Segments share identical codec settings, so streams are copied.
func (e *Engine) concatSegments(segments []string, outPath string) error {
	listFile := filepath.Join(e.tempDir, "segments.txt")
	var lines []string
	for _, seg := range segments {
		lines = append(lines, fmt.Sprintf("file '%s'", seg))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return errors.Wrap(err, "failed to write concat list")
	}

	err := ffmpeg.Input(listFile, ffmpeg.KwArgs{"f": "concat", "safe": 0}).
		Output(outPath, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput().
		ErrorToStdOut().
		Run()
	if err != nil {
		return errors.Wrap(err, "failed to concatenate segments")
	}
	return nil
}

// mux lays the scene track over the background video and mixes in the
// background audio. With a background video present, the scene track carries
// alpha and only its captions and images cover the video; the video loops
// when shorter than the total duration and is trimmed by the output -t when
// longer. The same loop/trim rule applies to the audio.
func (e *Engine) mux(plan *manifest.Plan, sceneTrack, outputPath string) error {
	total := plan.Total()

	video := ffmpeg.Input(sceneTrack)
	if plan.BackgroundVideo != "" {
		if e.verbose {
			if meta, err := e.ffmpeg.Probe(plan.BackgroundVideo); err == nil {
				verb := "trimming"
				if meta.Duration < total {
					verb = "looping"
				}
				log.Printf("Background video is %.1fs for a %.1fs output, %s\n", meta.Duration, total, verb)
			}
		}
		bg := ffmpeg.Input(plan.BackgroundVideo, ffmpeg.KwArgs{"stream_loop": -1}).
			Filter("scale", ffmpeg.Args{coverScale()}, ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
			Filter("crop", ffmpeg.Args{coverScale()})
		video = ffmpeg.Filter([]*ffmpeg.Stream{bg, video}, "overlay", ffmpeg.Args{}, ffmpeg.KwArgs{
			"x": "(W-w)/2",
			"y": "(H-h)/2",
		})
	}

	var audio *ffmpeg.Stream
	if plan.BackgroundAudio != "" {
		audio = ffmpeg.Input(plan.BackgroundAudio, ffmpeg.KwArgs{"stream_loop": -1}).
			Filter("volume", ffmpeg.Args{fmt.Sprintf("%g", config.BackgroundAudioVolume)})
	} else {
		// Silent track so the container always carries audio
		audio = ffmpeg.Input("anullsrc=channel_layout=stereo:sample_rate=44100", ffmpeg.KwArgs{"f": "lavfi"})
	}

	codec := ffmpegwrap.MP4Settings()
	kwargs := ffmpeg.KwArgs{
		"c:v":     e.profile.GetVideoCodec(),
		"c:a":     e.profile.GetAudioCodec(),
		"b:v":     e.profile.GetVideoBitrate(),
		"b:a":     e.profile.GetAudioBitrate(),
		"t":       total,
		"r":       config.OutputFPS,
		"pix_fmt": "yuv420p",
		"threads": ffmpegwrap.GetOptimalThreadCount(),
	}
	for k, v := range codec.EncoderPreset {
		kwargs[k] = v
	}

	err := ffmpeg.Output([]*ffmpeg.Stream{video, audio}, outputPath, kwargs).
		OverWriteOutput().
		ErrorToStdOut().
		Run()
	if err != nil {
		return errors.Wrap(err, "failed to mux final output")
	}
	return nil
}

// stillInput opens an image file as a looped video stream of the given
// length.
func (e *Engine) stillInput(path string, seconds int) *ffmpeg.Stream {
	return ffmpeg.Input(path, ffmpeg.KwArgs{
		"loop":      1,
		"framerate": config.OutputFPS,
		"t":         seconds,
	})
}

// colorSource is the base canvas for a scene segment: fully transparent when
// the segment will be overlaid on a background video, opaque black otherwise.
func (e *Engine) colorSource(seconds int, alpha bool) string {
	c := "black"
	if alpha {
		c = "black@0.0"
	}
	return fmt.Sprintf("color=c=%s:s=%dx%d:d=%d:r=%d",
		c, config.OutputWidth, config.OutputHeight, seconds, config.OutputFPS)
}

// outputKwargs encodes an intermediate scene segment. Transparent segments
// use the png codec with rgba frames; opaque ones use the profile codec.
func (e *Engine) outputKwargs(seconds int, alpha bool, extra ffmpeg.KwArgs) ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"t":       seconds,
		"r":       config.OutputFPS,
		"threads": ffmpegwrap.GetOptimalThreadCount(),
	}
	if alpha {
		kwargs["c:v"] = "png"
		kwargs["pix_fmt"] = "rgba"
	} else {
		kwargs["c:v"] = e.profile.GetVideoCodec()
		kwargs["b:v"] = e.profile.GetVideoBitrate()
		kwargs["pix_fmt"] = "yuv420p"
	}
	for k, v := range extra {
		kwargs[k] = v
	}
	return kwargs
}
