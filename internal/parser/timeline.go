package parser

import (
	"sort"
	"strings"
	"time"
)

const maxTitleWords = 6

// Timeline is the chronological view of experience entries.
type Timeline struct {
	Entries    []TimelineEntry `json:"entries"`
	TotalYears float64         `json:"total_years"`
}

type TimelineEntry struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BuildTimeline swaps reversed intervals, shortens long titles and sorts by start date.
func BuildTimeline(entries []ExperienceEntry) Timeline {
	timeline := Timeline{Entries: make([]TimelineEntry, 0, len(entries))}

	var days float64
	for _, e := range entries {
		start, end := e.Normalized()
		timeline.Entries = append(timeline.Entries, TimelineEntry{
			Title: shortenTitle(e.Title()),
			Start: start,
			End:   end,
		})
		days += e.Days()
	}

	sort.SliceStable(timeline.Entries, func(i, j int) bool {
		return timeline.Entries[i].Start.Before(timeline.Entries[j].Start)
	})

	timeline.TotalYears = days / daysPerYear
	return timeline
}

func shortenTitle(title string) string {
	words := strings.Fields(title)
	if len(words) <= maxTitleWords {
		return title
	}
	return strings.Join(words[:maxTitleWords], " ") + " ..."
}
