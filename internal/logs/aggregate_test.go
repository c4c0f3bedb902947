package logs

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var receivedAt = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func TestAggregate_NewestFirst(t *testing.T) {
	streams := []PodStream{
		{
			PodName:       "weather-abc",
			ContainerName: "mcp-server",
			Raw: "2026-07-01T10:00:00Z INFO first\n" +
				"2026-07-01T10:02:00Z INFO third\n",
		},
		{
			PodName:       "weather-def",
			ContainerName: "mcp-server",
			Raw:           "2026-07-01T10:01:00Z INFO second\n",
		},
	}

	result := Aggregate(streams, Query{Limit: 10}, receivedAt)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, "third", result.Entries[0].Message)
	assert.Equal(t, "second", result.Entries[1].Message)
	assert.Equal(t, "first", result.Entries[2].Message)
	assert.False(t, result.HasMore)
}

func TestAggregate_TiesBrokenByPodName(t *testing.T) {
	streams := []PodStream{
		{PodName: "weather-zzz", Raw: "2026-07-01T10:00:00Z INFO from zzz\n"},
		{PodName: "weather-aaa", Raw: "2026-07-01T10:00:00Z INFO from aaa\n"},
	}

	result := Aggregate(streams, Query{Limit: 10}, receivedAt)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "weather-aaa", result.Entries[0].PodName)
	assert.Equal(t, "weather-zzz", result.Entries[1].PodName)
}

func TestAggregate_LevelFilter(t *testing.T) {
	streams := []PodStream{
		{
			PodName: "weather-abc",
			Raw: "2026-07-01T10:00:00Z DEBUG noise\n" +
				"2026-07-01T10:00:01Z INFO business as usual\n" +
				"2026-07-01T10:00:02Z ERROR it broke\n" +
				"2026-07-01T10:00:03Z FATAL it really broke\n",
		},
	}

	result := Aggregate(streams, Query{Limit: 10, Level: LevelError}, receivedAt)
	require.Len(t, result.Entries, 2)
	for _, entry := range result.Entries {
		assert.True(t, AtLeast(entry.Level, LevelError), "level %s below error", entry.Level)
	}
}

func TestAggregate_LimitAndHasMore(t *testing.T) {
	var raw string
	for i := 0; i < 20; i++ {
		raw += fmt.Sprintf("2026-07-01T10:00:%02dZ INFO line %d\n", i, i)
	}
	streams := []PodStream{{PodName: "weather-abc", Raw: raw}}

	result := Aggregate(streams, Query{Limit: 5}, receivedAt)
	require.Len(t, result.Entries, 5)
	assert.True(t, result.HasMore)
	assert.Equal(t, "line 19", result.Entries[0].Message)
}

func TestAggregate_TimeBounds(t *testing.T) {
	streams := []PodStream{
		{
			PodName: "weather-abc",
			Raw: "2026-07-01T09:00:00Z INFO too early\n" +
				"2026-07-01T10:00:00Z INFO in window\n" +
				"2026-07-01T11:00:00Z INFO too late\n",
		},
	}
	since := time.Date(2026, 7, 1, 9, 30, 0, 0, time.UTC)
	until := time.Date(2026, 7, 1, 10, 30, 0, 0, time.UTC)

	result := Aggregate(streams, Query{Limit: 10, Since: &since, Until: &until}, receivedAt)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "in window", result.Entries[0].Message)
}

func TestAggregate_PodNameFilter(t *testing.T) {
	streams := []PodStream{
		{PodName: "weather-abc", Raw: "2026-07-01T10:00:00Z INFO from abc\n"},
		{PodName: "weather-def", Raw: "2026-07-01T10:00:00Z INFO from def\n"},
	}

	result := Aggregate(streams, Query{Limit: 10, PodName: "weather-def"}, receivedAt)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "weather-def", result.Entries[0].PodName)
}

func TestAggregate_Empty(t *testing.T) {
	result := Aggregate(nil, Query{Limit: 10}, receivedAt)
	assert.Empty(t, result.Entries)
	assert.False(t, result.HasMore)
}

func TestAggregate_BlankLinesSkipped(t *testing.T) {
	streams := []PodStream{
		{PodName: "weather-abc", Raw: "\n\n2026-07-01T10:00:00Z INFO only line\n\n"},
	}

	result := Aggregate(streams, Query{Limit: 10}, receivedAt)
	require.Len(t, result.Entries, 1)
}
