package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/hibiken/asynq"

	"github.com/lyricframe/api/internal/animation"
	"github.com/lyricframe/api/internal/config"
	"github.com/lyricframe/api/internal/lrc"
	"github.com/lyricframe/api/internal/model"
	"github.com/lyricframe/api/internal/palette"
	"github.com/lyricframe/api/internal/render"
	"github.com/lyricframe/api/internal/taskstore"
)

// VideoWorker executes preview and generation jobs from the queue.
type VideoWorker struct {
	store     *taskstore.Store
	registry  *animation.Registry
	renderCfg config.RenderConfig
}

func NewVideoWorker(store *taskstore.Store, registry *animation.Registry, renderCfg config.RenderConfig) *VideoWorker {
	return &VideoWorker{
		store:     store,
		registry:  registry,
		renderCfg: renderCfg,
	}
}

// ProcessTask handles one queued video task. Errors are recorded on the
// task; the queue never retries (input mistakes do not heal themselves).
func (w *VideoWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var envelope model.VideoTaskEnvelope
	if err := json.Unmarshal(t.Payload(), &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal task envelope: %w", err)
	}
	taskID := envelope.TaskID

	var payload model.VideoJobPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		w.failJob(taskID, "invalid payload")
		return fmt.Errorf("failed to unmarshal video payload: %w", err)
	}

	log.Printf("starting %s task %s", payload.Kind, taskID)
	w.store.Start(taskID)

	if err := w.run(ctx, taskID, &payload); err != nil {
		w.failJob(taskID, err.Error())
		log.Printf("task %s failed: %v", taskID, err)
		return err
	}
	log.Printf("task %s completed", taskID)
	return nil
}

func (w *VideoWorker) run(ctx context.Context, taskID string, payload *model.VideoJobPayload) error {
	w.progress(taskID, 2, "probing audio")
	duration, err := render.ProbeDuration(ctx, w.ffmpegPath(payload), payload.AudioPath)
	if err != nil {
		return err
	}

	w.progress(taskID, 4, "parsing lyrics")
	content, err := os.ReadFile(payload.LrcPath)
	if err != nil {
		return fmt.Errorf("read lrc: %w", err)
	}
	timeline, meta, err := lrc.Parse(string(content))
	if err != nil {
		return fmt.Errorf("parse lrc: %w", err)
	}
	w.log(taskID, fmt.Sprintf("parsed %d lyric events, audio %.1fs", len(timeline), duration))

	cover, err := imaging.Open(payload.CoverPath)
	if err != nil {
		return fmt.Errorf("open cover: %w", err)
	}
	var background image.Image
	if payload.BackgroundPath != "" {
		background, err = imaging.Open(payload.BackgroundPath)
		if err != nil {
			return fmt.Errorf("open background: %w", err)
		}
	}

	style := payload.Style
	if style.AutoColors {
		w.progress(taskID, 6, "extracting colors")
		pal := palette.Extract(cover)
		style.ColorPrimary = pal.Primary
		style.ColorSecondary = pal.Secondary
		style.OutlineColor = pal.Outline
		w.log(taskID, fmt.Sprintf("colors: primary %s secondary %s outline %s",
			pal.Primary, pal.Secondary, pal.Outline))
	}

	composer, err := render.NewComposer(w.registry, render.ComposerOptions{
		Width:      w.renderCfg.Width,
		Height:     w.renderCfg.Height,
		FPS:        w.renderCfg.FPS,
		Duration:   duration,
		Cover:      cover,
		Background: background,
		Timeline:   timeline,
		Style:      style,
	})
	if err != nil {
		return err
	}

	switch payload.Kind {
	case model.JobKindPreview:
		return w.renderPreview(taskID, payload, composer, duration)
	case model.JobKindGenerate:
		return w.renderVideo(ctx, taskID, payload, composer, meta, duration)
	default:
		return fmt.Errorf("unknown job kind %q", payload.Kind)
	}
}

func (w *VideoWorker) renderPreview(taskID string, payload *model.VideoJobPayload, composer *render.Composer, duration float64) error {
	t := payload.PreviewTime
	if t > duration {
		t = duration
	}

	w.progress(taskID, 40, "rendering preview frame")
	frame, err := composer.ComposeFrame(t)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("preview_%s.png", taskID)
	outPath := filepath.Join(w.renderCfg.OutputDir, filename)
	if err := os.MkdirAll(w.renderCfg.OutputDir, 0o755); err != nil {
		return err
	}
	w.progress(taskID, 80, "saving preview")
	if err := gg.SavePNG(outPath, frame); err != nil {
		return fmt.Errorf("save preview: %w", err)
	}

	return w.store.Complete(taskID, &model.PreviewResult{
		ImagePath: outPath,
		ImageURL:  "/output/" + filename,
	})
}

func (w *VideoWorker) renderVideo(ctx context.Context, taskID string, payload *model.VideoJobPayload, composer *render.Composer, meta lrc.Metadata, duration float64) error {
	if err := os.MkdirAll(w.renderCfg.OutputDir, 0o755); err != nil {
		return err
	}
	filename := outputFilename(meta, taskID)
	outPath := filepath.Join(w.renderCfg.OutputDir, filename)

	style := payload.Style
	hw := style.HWAccel
	if hw == "" {
		hw = model.HWAccelMode(w.renderCfg.HWAccel)
	}

	pipeline := &render.Pipeline{
		FFmpegPath: w.ffmpegPath(payload),
		Width:      w.renderCfg.Width,
		Height:     w.renderCfg.Height,
		FPS:        w.renderCfg.FPS,
		HWAccel:    hw,
		Sink:       newTaskSink(w.store, taskID),
	}

	frames, err := pipeline.Encode(ctx, composer.ComposeFrame, payload.AudioPath, outPath, duration)
	if err != nil {
		return err
	}

	return w.store.Complete(taskID, &model.GenerateResult{
		VideoPath: outPath,
		VideoURL:  "/output/" + filename,
		Filename:  filename,
		Duration:  duration,
		Frames:    frames,
	})
}

func (w *VideoWorker) ffmpegPath(payload *model.VideoJobPayload) string {
	if payload.Style.FFmpegPath != "" {
		return payload.Style.FFmpegPath
	}
	return w.renderCfg.FFmpegPath
}

func (w *VideoWorker) failJob(taskID, reason string) {
	if err := w.store.Fail(taskID, reason); err != nil {
		log.Printf("failed to mark task %s failed: %v", taskID, err)
	}
}

func (w *VideoWorker) progress(taskID string, percent int, message string) {
	w.store.SetProgress(taskID, percent, message)
	w.store.AppendLog(taskID, message)
}

func (w *VideoWorker) log(taskID, line string) {
	w.store.AppendLog(taskID, line)
}

// outputFilename derives "Artist - Title.mp4" from the LRC tags, falling
// back to the task ID when neither tag is present.
func outputFilename(meta lrc.Metadata, taskID string) string {
	title := sanitizeFilename(meta["ti"])
	artist := sanitizeFilename(meta["ar"])

	switch {
	case artist != "" && title != "":
		return artist + " - " + title + ".mp4"
	case title != "":
		return title + ".mp4"
	case artist != "":
		return artist + ".mp4"
	default:
		return taskID + ".mp4"
	}
}

func sanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	return replacer.Replace(s)
}

// taskSink maps encode progress into the task record. Encoding occupies
// the 10..100 band; the setup steps before it use the band below.
type taskSink struct {
	store   *taskstore.Store
	taskID  string
	started time.Time
}

func newTaskSink(store *taskstore.Store, taskID string) *taskSink {
	return &taskSink{store: store, taskID: taskID, started: time.Now()}
}

func (s *taskSink) Log(line string) {
	s.store.AppendLog(s.taskID, line)
}

func (s *taskSink) Progress(percent int) {
	// 100 is reserved for the completed transition: the final frame is
	// piped before the encoder finishes, and a job that fails at
	// finalization must not show full progress.
	overall := 10 + percent*90/100
	if overall > 99 {
		overall = 99
	}
	msg := fmt.Sprintf("encoding %d%%", percent)
	if percent > 0 && percent < 100 {
		elapsed := time.Since(s.started)
		remaining := time.Duration(float64(elapsed) * float64(100-percent) / float64(percent))
		msg = fmt.Sprintf("encoding %d%% (~%s remaining)", percent, remaining.Round(time.Second))
	}
	s.store.SetProgress(s.taskID, overall, msg)
}
