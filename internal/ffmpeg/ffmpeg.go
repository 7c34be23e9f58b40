// Package ffmpeg wraps the ffmpeg-go bindings: probing media metadata and
// the shared encoder settings used by every rendered segment.
package ffmpeg

import (
	"encoding/json"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type CodecSettings struct {
	VideoCodec      string
	AudioCodec      string
	ContainerFormat string
	FileExtension   string
	EncoderPreset   ffmpeg.KwArgs
}

// MP4Settings is the fixed output codec configuration. The quiz output is a
// single H.264/AAC MP4 with faststart for social upload.
func MP4Settings() CodecSettings {
	return CodecSettings{
		VideoCodec:      "libx264",
		AudioCodec:      "aac",
		ContainerFormat: "mp4",
		FileExtension:   ".mp4",
		EncoderPreset: ffmpeg.KwArgs{
			"preset":    "medium",
			"profile:v": "high",
			"level":     "4.1",
			"movflags":  "+faststart",
			"crf":       23,
		},
	}
}

// MediaMetadata contains probed metadata about a media file. Width, Height
// and Codec are zero for audio-only files.
type MediaMetadata struct {
	Duration float64
	Width    int
	Height   int
	Codec    string
}

// Processor wraps FFmpeg functionality
type Processor struct {
	verbose bool
}

// NewProcessor creates a new FFmpeg processor
func NewProcessor(verbose bool) *Processor {
	return &Processor{verbose: verbose}
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Duration   string `json:"duration"`
	NBFrames   string `json:"nb_frames"`
	RFrameRate string `json:"r_frame_rate"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeData struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

// Probe retrieves metadata about a media file. For video files the duration
// is taken from the video stream, falling back to the container format and
// finally to frame count divided by frame rate.
func (p *Processor) Probe(inputPath string) (*MediaMetadata, error) {
	raw, err := ffmpeg.Probe(inputPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error probing %s", inputPath)
	}

	var data probeData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, errors.WithStack(err)
	}
	if len(data.Streams) == 0 {
		return nil, errors.Errorf("no streams found in %s", inputPath)
	}

	var video *probeStream
	for i := range data.Streams {
		if data.Streams[i].CodecType == "video" {
			video = &data.Streams[i]
			break
		}
	}

	meta := &MediaMetadata{}
	if video != nil {
		meta.Width = video.Width
		meta.Height = video.Height
		meta.Codec = video.CodecName
		meta.Duration = parseSeconds(video.Duration)
	}
	if meta.Duration == 0 {
		meta.Duration = parseSeconds(data.Format.Duration)
	}
	if meta.Duration == 0 && video != nil {
		if frames := parseSeconds(video.NBFrames); frames > 0 {
			if rate := parseFrameRate(video.RFrameRate); rate > 0 {
				meta.Duration = frames / rate
			}
		}
	}

	if meta.Duration == 0 {
		return nil, errors.Errorf("could not determine duration of %s", inputPath)
	}
	return meta, nil
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFrameRate(s string) float64 {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}

// GetOptimalThreadCount returns the encoder thread count: 75% of available
// cores to prevent overload.
func GetOptimalThreadCount() int {
	cpuCount := runtime.NumCPU()
	return int(math.Max(1, float64(cpuCount)*0.75))
}

// EnsureExtension replaces any video extension on filename with extension.
func EnsureExtension(filename, extension string) string {
	extensions := []string{".mp4", ".webm", ".mkv", ".avi", ".mov"}
	for _, ext := range extensions {
		filename = strings.TrimSuffix(filename, ext)
	}
	return filename + extension
}
