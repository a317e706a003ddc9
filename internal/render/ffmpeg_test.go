package render

import (
	"context"
	"image"
	"strings"
	"sync"
	"testing"

	"github.com/lyricframe/api/internal/model"
)

type recordingSink struct {
	mu       sync.Mutex
	lines    []string
	percents []int
}

func (s *recordingSink) Log(line string) {
	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.mu.Unlock()
}

func (s *recordingSink) Progress(percent int) {
	s.mu.Lock()
	s.percents = append(s.percents, percent)
	s.mu.Unlock()
}

func (s *recordingSink) joined() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.lines, "\n")
}

func TestEncoderForModes(t *testing.T) {
	cases := []struct {
		mode  model.HWAccelMode
		codec string
	}{
		{model.HWAccelNone, "libx264"},
		{model.HWAccelNvidia, "h264_nvenc"},
		{model.HWAccelAMD, "h264_amf"},
		{model.HWAccelIntel, "h264_qsv"},
		{model.HWAccelMode("bogus"), "libx264"},
	}
	for _, tc := range cases {
		if got := encoderFor(tc.mode).codec; got != tc.codec {
			t.Errorf("encoderFor(%q).codec = %q, want %q", tc.mode, got, tc.codec)
		}
	}
}

func TestEncodeArgs(t *testing.T) {
	args := encodeArgs(1920, 1080, 60, softwareEncoder, "/tmp/song.mp3", "/tmp/out.mp4", 187.5)
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-f rawvideo",
		"-pixel_format rgba",
		"-video_size 1920x1080",
		"-framerate 60",
		"-i pipe:0",
		"-i /tmp/song.mp3",
		"-map 0:v -map 1:a",
		"-c:v libx264 -preset veryfast -crf 20",
		"-c:a aac -b:a 320k",
		"-pix_fmt yuv420p",
		"-t 187.500",
		"-movflags +faststart",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q:\n%s", want, joined)
		}
	}
	if args[len(args)-1] != "/tmp/out.mp4" {
		t.Errorf("output path must be last, got %q", args[len(args)-1])
	}
}

func TestEncodeArgsHardwareFlags(t *testing.T) {
	args := strings.Join(encodeArgs(1280, 720, 30, encoderFor(model.HWAccelNvidia), "a.mp3", "o.mp4", 10), " ")
	if !strings.Contains(args, "-c:v h264_nvenc -preset fast -cq 23 -profile:v high") {
		t.Errorf("nvenc flags missing:\n%s", args)
	}

	args = strings.Join(encodeArgs(1280, 720, 30, encoderFor(model.HWAccelAMD), "a.mp3", "o.mp4", 10), " ")
	if !strings.Contains(args, "-c:v h264_amf -quality balanced -rc cqp -qp_p 23 -qp_i 23") {
		t.Errorf("amf flags missing:\n%s", args)
	}
}

func TestProbePathDefaults(t *testing.T) {
	if got := ProbePath(""); got != "ffprobe" {
		t.Errorf("ProbePath(\"\") = %q", got)
	}
	if got := ProbePath("ffmpeg"); got != "ffprobe" {
		t.Errorf("ProbePath(\"ffmpeg\") = %q", got)
	}
	// a sibling ffprobe that does not exist falls back to the search path
	if got := ProbePath("/nonexistent/dir/ffmpeg"); got != "ffprobe" {
		t.Errorf("ProbePath with missing sibling = %q", got)
	}
}

func TestResolveEncoderFallsBackWhenUnavailable(t *testing.T) {
	sink := &recordingSink{}
	p := &Pipeline{FFmpegPath: "/nonexistent/ffmpeg", HWAccel: model.HWAccelNvidia, Sink: sink}

	enc := p.resolveEncoder(context.Background())
	if enc.codec != softwareEncoder.codec {
		t.Fatalf("expected software fallback, got %q", enc.codec)
	}
	if !strings.Contains(sink.joined(), "falling back") {
		t.Error("fallback must be reported to the sink")
	}
}

func TestEncodeRejectsZeroDuration(t *testing.T) {
	p := &Pipeline{FPS: 30, Width: 16, Height: 16, Sink: &recordingSink{}}
	_, err := p.Encode(context.Background(), nil, "a.mp3", "o.mp4", 0)
	if err == nil {
		t.Fatal("expected error for zero duration")
	}
}

func TestDrainStderrReportsOversizedLine(t *testing.T) {
	sink := &recordingSink{}
	p := &Pipeline{Sink: sink}

	// a single line larger than the scanner buffer stops the scan;
	// the truncation must be visible in the log and the tail
	tail := p.drainStderr(strings.NewReader("before\n" + strings.Repeat("x", 128*1024) + "\nafter\n"))

	joined := sink.joined()
	if !strings.Contains(joined, "before") {
		t.Error("lines before the oversized one should be captured")
	}
	if !strings.Contains(joined, "truncated") {
		t.Error("scan failure must be reported to the sink")
	}
	if len(tail) == 0 || !strings.Contains(tail[len(tail)-1], "truncated") {
		t.Errorf("tail should end with the truncation notice: %v", tail)
	}
}

func TestEncodeMissingBinary(t *testing.T) {
	p := &Pipeline{
		FFmpegPath: "/nonexistent/ffmpeg",
		Width:      16, Height: 16, FPS: 30,
		Sink: &recordingSink{},
	}
	frame := func(float64) (*image.RGBA, error) {
		return image.NewRGBA(image.Rect(0, 0, 16, 16)), nil
	}
	if _, err := p.Encode(context.Background(), frame, "a.mp3", "o.mp4", 1); err == nil {
		t.Fatal("expected start error for missing encoder binary")
	}
}
