package transcript

import (
	"fmt"
	"strings"
	"time"
)

// DefaultNoSpeechThreshold matches the probability above which Whisper
// segments are treated as silence rather than speech.
const DefaultNoSpeechThreshold = 0.6

type Segment struct {
	Index        int
	StartMs      int64
	EndMs        int64
	Text         string
	NoSpeechProb float64
}

type Result struct {
	Language string
	Segments []Segment
}

func (s Segment) Start() time.Duration {
	return time.Duration(s.StartMs) * time.Millisecond
}

func (s Segment) End() time.Duration {
	return time.Duration(s.EndMs) * time.Millisecond
}

// DropNoSpeech returns a copy of the result without segments whose
// no-speech probability meets or exceeds threshold. Engines that do not
// report probabilities leave them at zero, which always passes.
func (r Result) DropNoSpeech(threshold float64) Result {
	kept := make([]Segment, 0, len(r.Segments))
	for _, seg := range r.Segments {
		if seg.NoSpeechProb >= threshold {
			continue
		}
		kept = append(kept, seg)
	}

	for i := range kept {
		kept[i].Index = i + 1
	}

	return Result{Language: r.Language, Segments: kept}
}

// FullText joins trimmed segment texts with single spaces.
func (r Result) FullText() string {
	parts := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

func (r Result) IsEmpty() bool {
	return strings.TrimSpace(r.FullText()) == ""
}

// FormatTimestamp renders a millisecond offset as HH:MM:SS,mmm.
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}

	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	seconds := (ms % 60_000) / 1000
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
