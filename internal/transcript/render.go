package transcript

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatSRT  Format = "srt"
	FormatText Format = "txt"
)

func Formats() []Format {
	return []Format{FormatJSON, FormatSRT, FormatText}
}

func ParseFormat(input string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "json":
		return FormatJSON, nil
	case "srt":
		return FormatSRT, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: json, srt, txt)", input)
	}
}

func (f Format) Extension() string {
	return "." + string(f)
}

type jsonSegment struct {
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	StartFormatted string  `json:"start_formatted"`
	EndFormatted   string  `json:"end_formatted"`
	Text           string  `json:"text"`
}

type jsonDocument struct {
	Language    string        `json:"language"`
	GeneratedAt string        `json:"generated_at"`
	Segments    []jsonSegment `json:"segments"`
	FullText    string        `json:"full_text"`
}

// Render serializes the result in the requested format.
func Render(r Result, format Format, now time.Time) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(r, now)
	case FormatSRT:
		return renderSRT(r), nil
	case FormatText:
		return r.FullText(), nil
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}

func renderJSON(r Result, now time.Time) (string, error) {
	doc := jsonDocument{
		Language:    r.Language,
		GeneratedAt: now.Format(time.RFC3339),
		Segments:    make([]jsonSegment, 0, len(r.Segments)),
		FullText:    r.FullText(),
	}

	for _, seg := range r.Segments {
		doc.Segments = append(doc.Segments, jsonSegment{
			Start:          float64(seg.StartMs) / 1000,
			End:            float64(seg.EndMs) / 1000,
			StartFormatted: FormatTimestamp(seg.StartMs),
			EndFormatted:   FormatTimestamp(seg.EndMs),
			Text:           strings.TrimSpace(seg.Text),
		})
	}

	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode transcript json: %w", err)
	}

	return string(encoded), nil
}

func renderSRT(r Result) string {
	blocks := make([]string, 0, len(r.Segments))
	for i, seg := range r.Segments {
		blocks = append(blocks, fmt.Sprintf(
			"%d\n%s --> %s\n%s\n",
			i+1,
			FormatTimestamp(seg.StartMs),
			FormatTimestamp(seg.EndMs),
			strings.TrimSpace(seg.Text),
		))
	}
	return strings.Join(blocks, "\n")
}
