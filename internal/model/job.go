package model

import (
	"encoding/json"
	"time"
)

// Task is the observable state of a background job. Snapshots of it are
// what pollers receive; only the executing worker mutates the live record.
type Task struct {
	ID          string          `json:"id"`
	Kind        JobKind         `json:"kind"`
	Status      JobStatus       `json:"status"`
	Progress    int             `json:"progress"`
	Message     string          `json:"message,omitempty"`
	Logs        []string        `json:"logs"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       *string         `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// VideoTaskEnvelope is the queue message linking a task record to its
// payload. Both the enqueuing service and the worker use this type, so
// the wire format cannot drift between them.
type VideoTaskEnvelope struct {
	TaskID  string          `json:"taskId"`
	Payload json.RawMessage `json:"payload"`
}

// VideoJobPayload is the unit of work carried through the queue for both
// preview and full generation jobs.
type VideoJobPayload struct {
	Kind           JobKind     `json:"kind"`
	AudioPath      string      `json:"audioPath"`
	CoverPath      string      `json:"coverPath"`
	LrcPath        string      `json:"lrcPath"`
	BackgroundPath string      `json:"backgroundPath,omitempty"`
	Style          StyleConfig `json:"style"`
	PreviewTime    float64     `json:"previewTime,omitempty"`
}
