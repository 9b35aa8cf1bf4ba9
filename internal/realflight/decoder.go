package realflight

import (
	"bytes"
	"strconv"
	"strings"

	"rflink/internal/models"
)

// Decode extracts every KeyTable field from a raw reply into state.
// Each tag is matched independently against its first occurrence in data;
// a missing or unparsable tag sets its field to 0.
func Decode(data []byte, state *models.TelemetryState) {
	for _, entry := range models.KeyTable {
		v, _ := extractValue(data, entry.Tag)
		*entry.Field(state) = v
	}
}

// DecodePartial is Decode for a truncated reply. Tags that come after the
// last decoded tag in KeyTable order may have fallen past the cut and keep
// their previous value; tags missing before it are set to 0 as in Decode.
func DecodePartial(data []byte, state *models.TelemetryState) {
	values := make([]float64, len(models.KeyTable))
	found := make([]bool, len(models.KeyTable))
	last := -1
	for i, entry := range models.KeyTable {
		if v, ok := extractValue(data, entry.Tag); ok {
			values[i], found[i] = v, true
			last = i
		}
	}

	for i, entry := range models.KeyTable {
		if found[i] || i < last {
			*entry.Field(state) = values[i]
		}
	}
}

// extractValue finds <tag>text</tag> and decodes text
func extractValue(data []byte, tag string) (float64, bool) {
	open := []byte("<" + tag + ">")
	start := bytes.Index(data, open)
	if start < 0 {
		return 0, false
	}
	start += len(open)

	end := bytes.Index(data[start:], []byte("</"+tag+">"))
	if end < 0 {
		return 0, false
	}

	return DecodeValue(string(data[start : start+end])), true
}

// DecodeValue converts a telemetry text node to a number.
// "true" and "false" map to 1 and 0; anything unparsable is 0.
func DecodeValue(text string) float64 {
	switch text {
	case "true":
		return 1
	case "false":
		return 0
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0
	}
	return v
}
