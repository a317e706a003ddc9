// Package lrc parses timestamped LRC lyric documents into a sorted
// event timeline.
package lrc

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrNoEvents is returned when a document contains no usable timed lines.
var ErrNoEvents = errors.New("lrc: no timed lyric lines found")

// Event is a single timed lyric line. Secondary carries the translation
// half of a bilingual "primary / secondary" line, if present.
type Event struct {
	Time      float64 `json:"time"`
	Text      string  `json:"text"`
	Secondary string  `json:"secondary,omitempty"`
}

// Metadata holds the LRC header tags (ti, ar, al, by).
type Metadata map[string]string

var (
	timeTagRe = regexp.MustCompile(`\[(\d{2,}):(\d{2})\.(\d{2,3})\]`)
	metaTagRe = regexp.MustCompile(`\[(ti|ar|al|by):([^\]]*)\]`)
)

// Parse extracts all timed lyric events and header metadata from an LRC
// document. Each timestamp tag on a line yields one event sharing the
// line's text; lines with no parseable tag, or tags with no text, are
// skipped. Events are returned sorted by time, stable on input order for
// equal timestamps. A document that yields zero events returns ErrNoEvents.
func Parse(content string) ([]Event, Metadata, error) {
	meta := Metadata{}
	var events []Event

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")

		if m := metaTagRe.FindStringSubmatch(line); m != nil {
			if v := strings.TrimSpace(m[2]); v != "" {
				meta[m[1]] = v
			}
			continue
		}

		tags := timeTagRe.FindAllStringSubmatch(line, -1)
		if len(tags) == 0 {
			continue
		}
		locs := timeTagRe.FindAllStringIndex(line, -1)
		text := strings.TrimSpace(line[locs[len(locs)-1][1]:])
		if text == "" {
			continue
		}

		primary, secondary := splitBilingual(text)
		if primary == "" {
			continue
		}

		for _, tag := range tags {
			ts, err := tagSeconds(tag)
			if err != nil {
				continue
			}
			events = append(events, Event{Time: ts, Text: primary, Secondary: secondary})
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Time < events[j].Time })

	if len(events) == 0 {
		return nil, meta, ErrNoEvents
	}
	return events, meta, nil
}

// ActiveIndex returns the index of the last event whose timestamp is at or
// before t, or -1 when t precedes the first event.
func ActiveIndex(events []Event, t float64) int {
	return sort.Search(len(events), func(i int) bool { return events[i].Time > t }) - 1
}

// Window returns the time span during which event i is active. The span
// ends at the next event's timestamp, or at duration for the final event.
func Window(events []Event, i int, duration float64) (start, end float64) {
	start = events[i].Time
	if i+1 < len(events) {
		return start, events[i+1].Time
	}
	return start, duration
}

func splitBilingual(text string) (primary, secondary string) {
	parts := strings.SplitN(text, " / ", 2)
	primary = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		secondary = strings.TrimSpace(parts[1])
	}
	return primary, secondary
}

func tagSeconds(tag []string) (float64, error) {
	minutes, err := strconv.Atoi(tag[1])
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.Atoi(tag[2])
	if err != nil {
		return 0, err
	}
	// pad fractional part to milliseconds, "34" -> 340
	frac := tag[3]
	for len(frac) < 3 {
		frac += "0"
	}
	millis, err := strconv.Atoi(frac)
	if err != nil {
		return 0, err
	}
	return float64(minutes)*60 + float64(seconds) + float64(millis)/1000, nil
}
