package logs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fallback = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantLevel   Level
		wantMessage string
		wantTime    time.Time
	}{
		{
			name:        "rfc3339 with bracketed level",
			line:        "2026-07-01T10:30:00Z [ERROR] upstream timed out",
			wantLevel:   LevelError,
			wantMessage: "upstream timed out",
			wantTime:    time.Date(2026, 7, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:        "rfc3339 nano",
			line:        "2026-07-01T10:30:00.123456789Z INFO listening on :8000",
			wantLevel:   LevelInfo,
			wantMessage: "listening on :8000",
			wantTime:    time.Date(2026, 7, 1, 10, 30, 0, 123456789, time.UTC),
		},
		{
			name:        "space separated timestamp",
			line:        "2026-07-01 10:30:00 WARN slow query",
			wantLevel:   LevelWarning,
			wantMessage: "slow query",
			wantTime:    time.Date(2026, 7, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:        "warn maps to warning",
			line:        "[WARN] disk almost full",
			wantLevel:   LevelWarning,
			wantMessage: "disk almost full",
			wantTime:    fallback,
		},
		{
			name:        "fatal maps to critical",
			line:        "FATAL: cannot bind port",
			wantLevel:   LevelCritical,
			wantMessage: "cannot bind port",
			wantTime:    fallback,
		},
		{
			name:        "no level token defaults to info",
			line:        "plain message with no markers",
			wantLevel:   LevelInfo,
			wantMessage: "plain message with no markers",
			wantTime:    fallback,
		},
		{
			name:        "level with colon suffix",
			line:        "ERROR: boom",
			wantLevel:   LevelError,
			wantMessage: "boom",
			wantTime:    fallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, level, message := ParseLine(tt.line, fallback)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantMessage, message)
			assert.True(t, ts.Equal(tt.wantTime), "timestamp %v != %v", ts, tt.wantTime)
		})
	}
}

func TestValidLevel(t *testing.T) {
	for _, l := range []Level{LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical} {
		assert.True(t, ValidLevel(l), string(l))
	}
	assert.False(t, ValidLevel("verbose"))
	assert.False(t, ValidLevel("WARN"))
}

func TestAtLeast(t *testing.T) {
	assert.True(t, AtLeast(LevelCritical, LevelError))
	assert.True(t, AtLeast(LevelError, LevelError))
	assert.False(t, AtLeast(LevelWarning, LevelError))
	assert.False(t, AtLeast(LevelDebug, LevelInfo))
}
