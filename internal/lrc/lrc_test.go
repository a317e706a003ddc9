package lrc

import (
	"math"
	"strings"
	"testing"
)

func TestParseSortsAndCounts(t *testing.T) {
	doc := strings.Join([]string{
		"[00:20.00]third line",
		"[00:00.00]first line",
		"[00:10.50]second line",
	}, "\n")

	events, _, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Time < events[i-1].Time {
			t.Fatalf("events not sorted: %v before %v", events[i-1], events[i])
		}
	}
	if events[0].Text != "first line" || events[2].Text != "third line" {
		t.Fatalf("unexpected order: %+v", events)
	}
}

func TestParseMultipleTagsPerLine(t *testing.T) {
	events, _, err := Parse("[00:05.00][00:15.00]repeated chorus\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected one event per tag, got %d", len(events))
	}
	if events[0].Text != "repeated chorus" || events[1].Text != "repeated chorus" {
		t.Fatalf("shared text not applied: %+v", events)
	}
	if events[0].Time != 5 || events[1].Time != 15 {
		t.Fatalf("unexpected times: %+v", events)
	}
}

func TestParseStableOnEqualTimestamps(t *testing.T) {
	doc := "[00:10.00]english line\n[00:10.00]translated line\n"
	events, _, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Text != "english line" || events[1].Text != "translated line" {
		t.Fatalf("tie order not stable: %+v", events)
	}
}

func TestParseBilingualSlashSplit(t *testing.T) {
	events, _, err := Parse("[00:12.00]hello world / translated text\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if events[0].Text != "hello world" {
		t.Fatalf("primary = %q", events[0].Text)
	}
	if events[0].Secondary != "translated text" {
		t.Fatalf("secondary = %q", events[0].Secondary)
	}
}

func TestParseSkipsMalformedLines(t *testing.T) {
	doc := strings.Join([]string{
		"just some text",
		"[bad:tag]nope",
		"[00:07.25]good line",
		"[00:09.00]",
	}, "\n")

	events, _, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected malformed lines skipped, got %d events", len(events))
	}
	if math.Abs(events[0].Time-7.25) > 1e-9 {
		t.Fatalf("time = %v", events[0].Time)
	}
}

func TestParseMillisecondPadding(t *testing.T) {
	events, _, err := Parse("[00:01.5]short frac\n[00:02.345]long frac\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if math.Abs(events[0].Time-1.5) > 1e-9 {
		t.Fatalf("two-digit frac = %v, want 1.5", events[0].Time)
	}
	if math.Abs(events[1].Time-2.345) > 1e-9 {
		t.Fatalf("three-digit frac = %v, want 2.345", events[1].Time)
	}
}

func TestParseMetadata(t *testing.T) {
	doc := "[ti:Song Title]\n[ar:Some Artist]\n[al:]\n[00:00.00]line\n"
	_, meta, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if meta["ti"] != "Song Title" || meta["ar"] != "Some Artist" {
		t.Fatalf("metadata = %v", meta)
	}
	if _, ok := meta["al"]; ok {
		t.Fatal("empty metadata value should be dropped")
	}
}

func TestParseEmptyDocument(t *testing.T) {
	if _, _, err := Parse("no timestamps here\n"); err != ErrNoEvents {
		t.Fatalf("err = %v, want ErrNoEvents", err)
	}
}

func TestActiveIndex(t *testing.T) {
	events := []Event{{Time: 0, Text: "A"}, {Time: 5, Text: "B"}}

	cases := []struct {
		t    float64
		want int
	}{
		{-1, -1},
		{0, 0},
		{2, 0},
		{5, 1},
		{100, 1},
	}
	for _, c := range cases {
		if got := ActiveIndex(events, c.t); got != c.want {
			t.Errorf("ActiveIndex(%v) = %d, want %d", c.t, got, c.want)
		}
	}
}

func TestWindow(t *testing.T) {
	events := []Event{{Time: 0}, {Time: 5}, {Time: 12}}

	if s, e := Window(events, 0, 30); s != 0 || e != 5 {
		t.Fatalf("window 0 = [%v,%v]", s, e)
	}
	if s, e := Window(events, 2, 30); s != 12 || e != 30 {
		t.Fatalf("last window = [%v,%v], want end at duration", s, e)
	}
}
