// Package metrics derives aggregate performance numbers from a history of
// finished sessions. It is pure: no storage access, no input mutation.
package metrics

import (
	"sort"
	"time"

	"github.com/claude/murph/internal/models"
)

// Report is the aggregate view of a user's session history.
// FastestMurph and AverageMurph consider FULL-tier sessions only, are
// expressed in milliseconds, and are nil when no FULL session exists.
type Report struct {
	TotalDistance float64 `json:"total_distance"`
	TotalPullups  int     `json:"total_pullups"`
	TotalPushups  int     `json:"total_pushups"`
	TotalSquats   int     `json:"total_squats"`
	TotalMurphs   float64 `json:"total_murphs"`

	FastestMurph *int64 `json:"fastest_murph_ms,omitempty"`
	AverageMurph *int64 `json:"average_murph_ms,omitempty"`

	LongestStreak int `json:"longest_streak"`
}

// Compute builds a Report from the session history. An empty history yields
// zero totals, nil fastest/average, and a zero streak.
func Compute(murphs []models.MurphRow) Report {
	var r Report
	var fullDays []string
	var fullTotalMS int64
	var fullCount int64

	for _, m := range murphs {
		r.TotalDistance += float64(m.FirstRunDistance) + float64(m.SecondRunDistance)
		r.TotalPullups += m.Pullups
		r.TotalPushups += m.Pushups
		r.TotalSquats += m.Squats
		r.TotalMurphs += m.MurphType.Weight()

		if m.MurphType != models.MurphFull {
			continue
		}
		if r.FastestMurph == nil || m.DurationMS < *r.FastestMurph {
			fastest := m.DurationMS
			r.FastestMurph = &fastest
		}
		fullTotalMS += m.DurationMS
		fullCount++
		fullDays = append(fullDays, m.StartTime.UTC().Format("2006-01-02"))
	}

	if fullCount > 0 {
		avg := fullTotalMS / fullCount
		r.AverageMurph = &avg
	}
	r.LongestStreak = longestStreak(fullDays)
	return r
}

// longestStreak walks the FULL-tier session days in calendar order and
// returns the longest run of consecutive UTC days. Multiple sessions on the
// same day neither extend nor break a streak.
func longestStreak(days []string) int {
	if len(days) == 0 {
		return 0
	}
	sort.Strings(days)

	longest, current := 1, 1
	prev, _ := time.Parse("2006-01-02", days[0])
	for _, day := range days[1:] {
		curr, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		switch gap := int(curr.Sub(prev).Hours() / 24); gap {
		case 0:
			// same day, ignore
		case 1:
			current++
		default:
			current = 1
		}
		prev = curr
		longest = max(longest, current)
	}
	return longest
}
