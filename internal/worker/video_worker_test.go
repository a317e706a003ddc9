package worker

import (
	"strings"
	"testing"

	"github.com/lyricframe/api/internal/lrc"
	"github.com/lyricframe/api/internal/model"
	"github.com/lyricframe/api/internal/taskstore"
)

func TestOutputFilename(t *testing.T) {
	cases := []struct {
		meta lrc.Metadata
		want string
	}{
		{lrc.Metadata{"ti": "Yellow", "ar": "Coldplay"}, "Coldplay - Yellow.mp4"},
		{lrc.Metadata{"ti": "Yellow"}, "Yellow.mp4"},
		{lrc.Metadata{"ar": "Coldplay"}, "Coldplay.mp4"},
		{lrc.Metadata{}, "task-123.mp4"},
		{lrc.Metadata{"ti": "a/b:c?d"}, "a_b_c_d.mp4"},
		{lrc.Metadata{"ti": "  spaced  "}, "spaced.mp4"},
	}
	for _, tc := range cases {
		if got := outputFilename(tc.meta, "task-123"); got != tc.want {
			t.Errorf("outputFilename(%v) = %q, want %q", tc.meta, got, tc.want)
		}
	}
}

func TestTaskSinkMapsEncodePercentIntoUpperBand(t *testing.T) {
	store := taskstore.New()
	store.Create("t1", model.JobKindGenerate)
	store.Start("t1")

	sink := newTaskSink(store, "t1")

	sink.Progress(0)
	task, _ := store.Get("t1")
	if task.Progress != 10 {
		t.Errorf("encode 0%% should map to 10, got %d", task.Progress)
	}

	sink.Progress(50)
	task, _ = store.Get("t1")
	if task.Progress != 55 {
		t.Errorf("encode 50%% should map to 55, got %d", task.Progress)
	}
	if !strings.Contains(task.Message, "remaining") {
		t.Errorf("mid-encode message should estimate remaining time, got %q", task.Message)
	}

	sink.Progress(100)
	task, _ = store.Get("t1")
	if task.Progress != 99 {
		t.Errorf("encode 100%% should hold at 99 until completion, got %d", task.Progress)
	}
}

func TestFailedJobNeverShowsFullProgress(t *testing.T) {
	store := taskstore.New()
	store.Create("t1", model.JobKindGenerate)
	store.Start("t1")

	// all frames piped, then the encoder exits non-zero at finalization
	sink := newTaskSink(store, "t1")
	sink.Progress(100)
	store.Fail("t1", "muxer error")

	task, _ := store.Get("t1")
	if task.Status != model.JobStatusFailed {
		t.Fatalf("status = %q", task.Status)
	}
	if task.Progress >= 100 {
		t.Errorf("failed job shows progress %d", task.Progress)
	}
}

func TestTaskSinkLogsGoToTask(t *testing.T) {
	store := taskstore.New()
	store.Create("t1", model.JobKindGenerate)

	sink := newTaskSink(store, "t1")
	sink.Log("frame=  42 fps=60")

	task, _ := store.Get("t1")
	if len(task.Logs) != 1 || task.Logs[0] != "frame=  42 fps=60" {
		t.Errorf("logs = %v", task.Logs)
	}
}
