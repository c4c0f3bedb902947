package logs

import (
	"sort"
	"strings"
	"time"
)

// Query bounds and filters a log aggregation request.
type Query struct {
	// Limit is the maximum number of entries returned, in [1, 1000].
	Limit int

	// Since and Until bound entry timestamps, inclusive.
	Since *time.Time
	Until *time.Time

	// Level is the minimum severity; entries below it are dropped.
	Level Level

	// PodName restricts aggregation to one pod.
	PodName string
}

// MaxLimit caps a single query.
const MaxLimit = 1000

// DefaultLimit applies when the caller specifies none.
const DefaultLimit = 10

// PodStream is the raw log tail of one container.
type PodStream struct {
	PodName       string
	ContainerName string
	Raw           string
}

// Result is the merged, filtered, newest-first view.
type Result struct {
	Entries []Entry
	// HasMore is true when more matching entries existed than Limit allowed.
	HasMore bool
}

// Aggregate parses every stream, applies the query filters, merges the
// entries newest-first (ties broken by pod name), and truncates to the
// limit.
func Aggregate(streams []PodStream, q Query, receivedAt time.Time) Result {
	var entries []Entry

	for _, stream := range streams {
		if q.PodName != "" && stream.PodName != q.PodName {
			continue
		}
		for _, line := range strings.Split(stream.Raw, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			ts, level, message := ParseLine(line, receivedAt)
			if q.Level != "" && !AtLeast(level, q.Level) {
				continue
			}
			if q.Since != nil && ts.Before(*q.Since) {
				continue
			}
			if q.Until != nil && ts.After(*q.Until) {
				continue
			}
			entries = append(entries, Entry{
				Timestamp:     ts,
				Level:         level,
				Message:       message,
				PodName:       stream.PodName,
				ContainerName: stream.ContainerName,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		return entries[i].PodName < entries[j].PodName
	})

	hasMore := len(entries) > q.Limit
	if hasMore {
		entries = entries[:q.Limit]
	}

	return Result{Entries: entries, HasMore: hasMore}
}
