package render

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"os/exec"
	"strings"

	"github.com/lyricframe/api/internal/model"
)

// LogSink receives diagnostic lines and progress updates from a running
// encode. Implementations append to the owning task's log.
type LogSink interface {
	Log(line string)
	Progress(percent int)
}

// FrameFunc produces the frame for elapsed time t.
type FrameFunc func(t float64) (*image.RGBA, error)

// Pipeline drives a FrameFunc across the full audio duration and streams
// the frames into an ffmpeg subprocess together with the audio track.
type Pipeline struct {
	FFmpegPath string
	Width      int
	Height     int
	FPS        int
	HWAccel    model.HWAccelMode
	Sink       LogSink
}

// stderrTailLines bounds how much engine output is kept for the error
// message; the full stream still goes to the sink line by line.
const stderrTailLines = 20

// Encode renders duration seconds of video at the pipeline's frame rate
// and encodes it with the audio at audioPath into outPath. It returns the
// number of frames piped to the encoder.
func (p *Pipeline) Encode(ctx context.Context, frame FrameFunc, audioPath, outPath string, duration float64) (int, error) {
	total := int(math.Ceil(duration * float64(p.FPS)))
	if total <= 0 {
		return 0, fmt.Errorf("nothing to encode: duration %vs at %d fps", duration, p.FPS)
	}

	enc := p.resolveEncoder(ctx)
	args := encodeArgs(p.Width, p.Height, p.FPS, enc, audioPath, outPath, duration)

	ffmpeg := p.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	p.Sink.Log(fmt.Sprintf("encoding %d frames with %s: %s %s", total, enc.codec, ffmpeg, strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, ffmpeg, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return 0, fmt.Errorf("open encoder stdin: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("open encoder stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start encoder %s: %w", ffmpeg, err)
	}

	tail := make(chan []string, 1)
	go func() { tail <- p.drainStderr(stderr) }()

	frameBytes := p.Width * p.Height * 4
	written := 0
	lastPercent := -1
	var writeErr error

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			writeErr = err
			break
		}

		t := float64(i) / float64(p.FPS)
		img, err := frame(t)
		if err != nil {
			writeErr = fmt.Errorf("compose frame %d (t=%.2fs): %w", i, t, err)
			break
		}
		if len(img.Pix) != frameBytes {
			writeErr = fmt.Errorf("frame %d: %d bytes, expected %d", i, len(img.Pix), frameBytes)
			break
		}

		if _, err := stdin.Write(img.Pix); err != nil {
			// ffmpeg exiting early closes the pipe; the exit error below
			// carries the real diagnostic.
			writeErr = fmt.Errorf("write frame %d: %w", i, err)
			break
		}
		written++

		if percent := written * 100 / total; percent > lastPercent {
			lastPercent = percent
			p.Sink.Progress(percent)
		}
	}

	stdin.Close()
	waitErr := cmd.Wait()
	tailLines := <-tail

	if waitErr != nil {
		return written, fmt.Errorf("encoder failed: %w\n%s", waitErr, strings.Join(tailLines, "\n"))
	}
	if writeErr != nil {
		return written, writeErr
	}

	p.Sink.Log(fmt.Sprintf("encoded %d frames to %s", written, outPath))
	return written, nil
}

// resolveEncoder picks the encoder for the requested hardware mode,
// falling back to software when the build lacks the hardware codec. The
// fallback is reported through the sink, never applied silently.
func (p *Pipeline) resolveEncoder(ctx context.Context) encoderChoice {
	if p.HWAccel == "" || p.HWAccel == model.HWAccelNone {
		return softwareEncoder
	}
	enc := encoderFor(p.HWAccel)
	if !encoderAvailable(ctx, p.FFmpegPath, enc.codec) {
		p.Sink.Log(fmt.Sprintf("hardware encoder %s (%s) unavailable, falling back to %s",
			enc.codec, p.HWAccel, softwareEncoder.codec))
		return softwareEncoder
	}
	p.Sink.Log(fmt.Sprintf("hardware acceleration enabled: %s (%s)", enc.codec, p.HWAccel))
	return enc
}

func (p *Pipeline) drainStderr(r io.Reader) []string {
	var tail []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024)
	for sc.Scan() {
		line := sc.Text()
		p.Sink.Log(line)
		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[1:]
		}
	}
	if err := sc.Err(); err != nil {
		line := fmt.Sprintf("stderr capture truncated: %v", err)
		p.Sink.Log(line)
		tail = append(tail, line)
	}
	return tail
}
