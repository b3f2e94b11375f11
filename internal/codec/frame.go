package codec

import "strings"

const (
	DefaultStartMarker = "[start]"
	DefaultEndMarker   = "[end]"
)

// Markers frame a payload so completion and extraction can be detected in a
// growing decoded buffer.
type Markers struct {
	Start string
	End   string
}

func DefaultMarkers() Markers {
	return Markers{Start: DefaultStartMarker, End: DefaultEndMarker}
}

// WithDefaults fills empty markers; markers are never empty.
func (m Markers) WithDefaults() Markers {
	if m.Start == "" {
		m.Start = DefaultStartMarker
	}
	if m.End == "" {
		m.End = DefaultEndMarker
	}
	return m
}

// Frame returns Start ++ payload ++ End.
func (m Markers) Frame(payload string) string {
	return m.Start + payload + m.End
}

// Complete reports whether decoded already holds the end marker.
func (m Markers) Complete(decoded string) bool {
	return strings.Contains(decoded, m.End)
}

// Extract returns the text between the first start marker and the first end
// marker following it, or "" when either is missing.
func (m Markers) Extract(decoded string) string {
	start := strings.Index(decoded, m.Start)
	if start < 0 {
		return ""
	}
	rest := decoded[start+len(m.Start):]
	end := strings.Index(rest, m.End)
	if end < 0 {
		return ""
	}
	return rest[:end]
}
