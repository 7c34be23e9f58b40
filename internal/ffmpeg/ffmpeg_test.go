package ffmpeg

import "testing"

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 30000.0 / 1001.0},
		{"0/0", 0},
		{"30", 0},
		{"x/y", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseFrameRate(tt.in); got != tt.want {
			t.Errorf("parseFrameRate(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.5", 12.5},
		{" 55 ", 55},
		{"N/A", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseSeconds(tt.in); got != tt.want {
			t.Errorf("parseSeconds(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestEnsureExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"quiz", "quiz.mp4"},
		{"quiz.mp4", "quiz.mp4"},
		{"quiz.webm", "quiz.mp4"},
		{"quiz.mov", "quiz.mp4"},
		{"dir/quiz.mkv", "dir/quiz.mp4"},
	}
	for _, tt := range tests {
		if got := EnsureExtension(tt.filename, ".mp4"); got != tt.want {
			t.Errorf("EnsureExtension(%q): expected %q, got %q", tt.filename, tt.want, got)
		}
	}
}

func TestGetOptimalThreadCount(t *testing.T) {
	if got := GetOptimalThreadCount(); got < 1 {
		t.Errorf("thread count must be at least 1, got %d", got)
	}
}

func TestMP4Settings(t *testing.T) {
	s := MP4Settings()
	if s.VideoCodec != "libx264" || s.AudioCodec != "aac" || s.FileExtension != ".mp4" {
		t.Errorf("unexpected settings: %+v", s)
	}
	if s.EncoderPreset["movflags"] != "+faststart" {
		t.Errorf("faststart missing from encoder preset: %v", s.EncoderPreset)
	}
}
