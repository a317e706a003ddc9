package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lyricframe/api/internal/model"
)

// ProbePath locates the ffprobe executable that belongs to the given
// ffmpeg binary: a sibling in the same directory when ffmpeg was given as
// a path, otherwise plain "ffprobe" from the search path.
func ProbePath(ffmpegPath string) string {
	if ffmpegPath == "" || ffmpegPath == "ffmpeg" {
		return "ffprobe"
	}
	sibling := filepath.Join(filepath.Dir(ffmpegPath), "ffprobe")
	if _, err := exec.LookPath(sibling); err == nil {
		return sibling
	}
	return "ffprobe"
}

// ProbeDuration returns the duration of a media file in seconds.
func ProbeDuration(ctx context.Context, ffmpegPath, mediaPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, ProbePath(ffmpegPath),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mediaPath,
	)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w: %s", mediaPath, err, strings.TrimSpace(errOut.String()))
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(out.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: unparseable duration %q", mediaPath, out.String())
	}
	if dur <= 0 {
		return 0, fmt.Errorf("ffprobe %s: non-positive duration %v", mediaPath, dur)
	}
	return dur, nil
}

// encoderChoice is one H.264 encoder plus its quality flags, mirroring the
// per-vendor presets the encoder profiles were tuned with.
type encoderChoice struct {
	codec string
	args  []string
}

var softwareEncoder = encoderChoice{
	codec: "libx264",
	args:  []string{"-preset", "veryfast", "-crf", "20"},
}

func encoderFor(mode model.HWAccelMode) encoderChoice {
	switch mode {
	case model.HWAccelNvidia:
		return encoderChoice{codec: "h264_nvenc", args: []string{"-preset", "fast", "-cq", "23", "-profile:v", "high"}}
	case model.HWAccelAMD:
		return encoderChoice{codec: "h264_amf", args: []string{"-quality", "balanced", "-rc", "cqp", "-qp_p", "23", "-qp_i", "23"}}
	case model.HWAccelIntel:
		return encoderChoice{codec: "h264_qsv", args: []string{"-preset", "fast", "-global_quality", "23"}}
	default:
		return softwareEncoder
	}
}

// encoderAvailable checks the ffmpeg build's encoder list for the codec.
func encoderAvailable(ctx context.Context, ffmpegPath, codec string) bool {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, ffmpegPath, "-hide_banner", "-encoders")
	out, err := cmd.Output()
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == codec {
			return true
		}
	}
	return false
}

// encodeArgs builds the full ffmpeg argument list for streaming raw RGBA
// frames from stdin alongside the audio track.
func encodeArgs(width, height, fps int, enc encoderChoice, audioPath, outPath string, duration float64) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", strconv.Itoa(fps),
		"-i", "pipe:0",
		"-i", audioPath,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", enc.codec,
	}
	args = append(args, enc.args...)
	args = append(args,
		"-c:a", "aac",
		"-b:a", "320k",
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(fps),
		"-t", strconv.FormatFloat(duration, 'f', 3, 64),
		"-movflags", "+faststart",
		outPath,
	)
	return args
}
