// Package logs parses raw pod log lines into structured entries and merges
// multi-pod streams into a single newest-first view.
package logs

import (
	"strings"
	"time"
)

// Level is a log severity.
type Level string

const (
	LevelDebug    Level = "debug"
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

// severity orders levels for minimum-severity filtering.
var severity = map[Level]int{
	LevelDebug:    0,
	LevelInfo:     1,
	LevelWarning:  2,
	LevelError:    3,
	LevelCritical: 4,
}

// ValidLevel reports whether l is a known severity.
func ValidLevel(l Level) bool {
	_, ok := severity[l]
	return ok
}

// AtLeast reports whether l is at or above min.
func AtLeast(l, min Level) bool {
	return severity[l] >= severity[min]
}

// Entry is one parsed log line.
type Entry struct {
	Timestamp     time.Time `json:"timestamp"`
	Level         Level     `json:"level"`
	Message       string    `json:"message"`
	PodName       string    `json:"pod_name"`
	ContainerName string    `json:"container_name"`
}

// timestampLayouts are tried in order against the leading token of a line.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// levelAliases maps foreign tokens onto the platform levels.
var levelAliases = map[string]Level{
	"TRACE":    LevelDebug,
	"DEBUG":    LevelDebug,
	"INFO":     LevelInfo,
	"WARN":     LevelWarning,
	"WARNING":  LevelWarning,
	"ERROR":    LevelError,
	"ERR":      LevelError,
	"FATAL":    LevelCritical,
	"CRITICAL": LevelCritical,
}

// ParseLine extracts a timestamp and level from one log line. Lines with no
// recognizable timestamp get fallback (the time supplied by the caller); lines with
// no recognizable level token are info.
func ParseLine(line string, fallback time.Time) (time.Time, Level, string) {
	rest := line
	ts := fallback

	if t, remainder, ok := leadingTimestamp(rest); ok {
		ts = t
		rest = remainder
	}

	level := LevelInfo
	if l, remainder, ok := leadingLevel(rest); ok {
		level = l
		rest = remainder
	}

	return ts, level, strings.TrimSpace(rest)
}

// leadingTimestamp tries to parse the first whitespace-delimited token (or
// first two, for "date time" forms) as a timestamp.
func leadingTimestamp(line string) (time.Time, string, bool) {
	trimmed := strings.TrimLeft(line, " ")

	first, rest, _ := strings.Cut(trimmed, " ")
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, first); err == nil {
			return t, rest, true
		}
	}

	// "2006-01-02 15:04:05" splits across two tokens.
	second, rest2, ok := strings.Cut(rest, " ")
	if ok || second != "" {
		if t, err := time.Parse("2006-01-02 15:04:05", first+" "+second); err == nil {
			return t, rest2, true
		}
	}

	return time.Time{}, line, false
}

// leadingLevel recognizes "[LEVEL]", "LEVEL:" and bare "LEVEL" prefixes.
func leadingLevel(line string) (Level, string, bool) {
	trimmed := strings.TrimLeft(line, " ")

	token, rest, _ := strings.Cut(trimmed, " ")
	candidate := strings.TrimSuffix(token, ":")
	if strings.HasPrefix(candidate, "[") && strings.HasSuffix(candidate, "]") {
		candidate = candidate[1 : len(candidate)-1]
	}

	if level, ok := levelAliases[strings.ToUpper(candidate)]; ok {
		return level, rest, true
	}
	return "", line, false
}
