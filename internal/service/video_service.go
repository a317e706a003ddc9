package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/lyricframe/api/internal/animation"
	"github.com/lyricframe/api/internal/config"
	"github.com/lyricframe/api/internal/lrc"
	"github.com/lyricframe/api/internal/model"
	"github.com/lyricframe/api/internal/palette"
	"github.com/lyricframe/api/internal/render"
	"github.com/lyricframe/api/internal/taskstore"
)

// TaskTypeVideo is the asynq task type both preview and generation jobs
// are enqueued under.
const TaskTypeVideo = "video:render"

// InputError marks a submission problem the caller can correct, as
// opposed to a server fault. Handlers map it to a 400 response.
type InputError struct {
	msg string
}

func (e *InputError) Error() string { return e.msg }

func inputErrorf(format string, args ...interface{}) error {
	return &InputError{msg: fmt.Sprintf(format, args...)}
}

// VideoService validates render submissions, registers them with the
// task store and hands them to the queue.
type VideoService struct {
	store       *taskstore.Store
	asynqClient *asynq.Client
	registry    *animation.Registry
	renderCfg   config.RenderConfig
}

func NewVideoService(store *taskstore.Store, asynqClient *asynq.Client, registry *animation.Registry, renderCfg config.RenderConfig) *VideoService {
	return &VideoService{
		store:       store,
		asynqClient: asynqClient,
		registry:    registry,
		renderCfg:   renderCfg,
	}
}

// SubmitGenerate queues a full video generation job.
func (s *VideoService) SubmitGenerate(ctx context.Context, req *model.GenerateRequest) (*model.SubmitResponse, error) {
	payload := &model.VideoJobPayload{
		Kind:           model.JobKindGenerate,
		AudioPath:      req.AudioPath,
		CoverPath:      req.CoverPath,
		LrcPath:        req.LrcPath,
		BackgroundPath: req.BackgroundPath,
		Style:          req.Style,
	}
	return s.submit(ctx, payload)
}

// SubmitPreview queues a single-frame preview job.
func (s *VideoService) SubmitPreview(ctx context.Context, req *model.PreviewRequest) (*model.SubmitResponse, error) {
	payload := &model.VideoJobPayload{
		Kind:           model.JobKindPreview,
		AudioPath:      req.AudioPath,
		CoverPath:      req.CoverPath,
		LrcPath:        req.LrcPath,
		BackgroundPath: req.BackgroundPath,
		Style:          req.Style,
		PreviewTime:    req.PreviewTime,
	}
	return s.submit(ctx, payload)
}

// submit rejects bad submissions up front so clients see input mistakes
// synchronously instead of as a failed task.
func (s *VideoService) submit(ctx context.Context, payload *model.VideoJobPayload) (*model.SubmitResponse, error) {
	if err := s.validatePayload(payload); err != nil {
		return nil, err
	}

	taskID := uuid.New().String()
	task := s.store.Create(taskID, payload.Kind)

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	asynqTask, err := newVideoTask(taskID, payloadBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	_, err = s.asynqClient.EnqueueContext(ctx, asynqTask,
		asynq.Queue("video"),
		asynq.MaxRetry(0),
		asynq.Timeout(2*time.Hour),
	)
	if err != nil {
		s.store.Fail(taskID, "failed to enqueue")
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return &model.SubmitResponse{
		TaskID:    taskID,
		Status:    task.Status,
		CreatedAt: task.CreatedAt,
	}, nil
}

func (s *VideoService) validatePayload(p *model.VideoJobPayload) error {
	for _, f := range []struct{ label, path string }{
		{"audio", p.AudioPath},
		{"cover", p.CoverPath},
		{"lrc", p.LrcPath},
	} {
		if _, err := os.Stat(f.path); err != nil {
			return inputErrorf("%s file not found: %s", f.label, f.path)
		}
	}
	if p.BackgroundPath != "" {
		if _, err := os.Stat(p.BackgroundPath); err != nil {
			return inputErrorf("background file not found: %s", p.BackgroundPath)
		}
	}
	if err := s.registry.Validate(p.Style); err != nil {
		return inputErrorf("%s", err.Error())
	}
	return nil
}

// GetStatus returns a snapshot of the task.
func (s *VideoService) GetStatus(taskID string) (*model.Task, error) {
	task, err := s.store.Get(taskID)
	if err != nil {
		return nil, fmt.Errorf("task not found")
	}
	return task, nil
}

// ExtractColors derives a text palette from the cover artwork.
func (s *VideoService) ExtractColors(req *model.ExtractColorsRequest) (*palette.Palette, error) {
	p, err := palette.ExtractFile(req.CoverPath)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Catalog lists the animation variants, encoder modes and fonts a client
// can pick from.
func (s *VideoService) Catalog() *model.CatalogResponse {
	return &model.CatalogResponse{
		BackgroundAnimations: s.registry.BackgroundNames(),
		TextAnimations:       s.registry.TextNames(),
		CoverAnimations:      s.registry.CoverNames(),
		HWAccelModes:         model.ValidHWAccelModes,
		Fonts:                s.listFonts(),
	}
}

// AudioDuration probes a media file's duration in seconds.
func (s *VideoService) AudioDuration(ctx context.Context, path string) (float64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("audio file not found: %s", path)
	}
	return render.ProbeDuration(ctx, s.renderCfg.FFmpegPath, path)
}

// LrcMetadata parses an LRC file and reports its tags and event count
// without starting a job.
func (s *VideoService) LrcMetadata(path string) (lrc.Metadata, int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("lrc file not found: %s", path)
	}
	events, meta, err := lrc.Parse(string(content))
	if err != nil {
		return nil, 0, err
	}
	return meta, len(events), nil
}

func (s *VideoService) listFonts() []string {
	entries, err := os.ReadDir(s.renderCfg.FontsDir)
	if err != nil {
		return nil
	}
	var fonts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".ttf" || ext == ".otf" {
			fonts = append(fonts, e.Name())
		}
	}
	sort.Strings(fonts)
	return fonts
}

func newVideoTask(taskID string, payload []byte) (*asynq.Task, error) {
	data, err := json.Marshal(model.VideoTaskEnvelope{
		TaskID:  taskID,
		Payload: payload,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeVideo, data), nil
}
