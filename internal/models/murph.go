package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunDistance is a run leg's declared distance in miles.
// Zero means the leg was explicitly skipped.
type RunDistance float64

const (
	RunSkipped      RunDistance = 0
	RunQuarterMile  RunDistance = 0.25
	RunHalfMile     RunDistance = 0.5
	RunThreeQuarter RunDistance = 0.75
	RunFullMile     RunDistance = 1
)

// Valid reports whether d is one of the five allowed distances.
func (d RunDistance) Valid() bool {
	switch d {
	case RunSkipped, RunQuarterMile, RunHalfMile, RunThreeQuarter, RunFullMile:
		return true
	}
	return false
}

// Exercise names the three rep-counted movements.
type Exercise string

const (
	Pullups Exercise = "pullups"
	Pushups Exercise = "pushups"
	Squats  Exercise = "squats"
)

// Rep ceilings per exercise. Additions past the ceiling are clamped, never errors.
const (
	MaxPullups = 100
	MaxPushups = 200
	MaxSquats  = 300
)

// MaxReps returns the rep ceiling for an exercise, or 0 for an unknown one.
func MaxReps(ex Exercise) int {
	switch ex {
	case Pullups:
		return MaxPullups
	case Pushups:
		return MaxPushups
	case Squats:
		return MaxSquats
	}
	return 0
}

// MurphType is the completeness tier of a finished session.
type MurphType string

const (
	MurphFull         MurphType = "FULL"
	MurphThreeQuarter MurphType = "THREE_QUARTER"
	MurphHalf         MurphType = "HALF"
	MurphQuarter      MurphType = "QUARTER"
	MurphIncomplete   MurphType = "INCOMPLETE"
)

// Weight returns the tier's contribution to the totalMurphs aggregate.
func (t MurphType) Weight() float64 {
	switch t {
	case MurphFull:
		return 1
	case MurphThreeQuarter:
		return 0.75
	case MurphHalf:
		return 0.5
	case MurphQuarter:
		return 0.25
	}
	return 0
}

// tier holds the minimum thresholds a session must meet to earn a MurphType.
type tier struct {
	murphType MurphType
	distance  RunDistance // minimum for each run leg
	pullups   int
	pushups   int
	squats    int
}

// tiers are ordered most to least demanding; the first full match wins.
// Thresholds are strictly nested, so ties are impossible.
var tiers = []tier{
	{MurphFull, 1, 100, 200, 300},
	{MurphThreeQuarter, 0.75, 75, 150, 225},
	{MurphHalf, 0.5, 50, 100, 150},
	{MurphQuarter, 0.25, 25, 50, 75},
}

// Classify derives the MurphType from both run distances and all three rep
// counts. Both legs must individually meet a tier's distance threshold.
func Classify(firstRun, secondRun RunDistance, pullups, pushups, squats int) MurphType {
	for _, t := range tiers {
		if firstRun >= t.distance && secondRun >= t.distance &&
			pullups >= t.pullups && pushups >= t.pushups && squats >= t.squats {
			return t.murphType
		}
	}
	return MurphIncomplete
}

// MurphRow is a finished session ready for insertion into the murphs table.
// The ID is minted when the session starts and doubles as the idempotency
// key: re-submitting the same session is a no-op at the store.
type MurphRow struct {
	ID     uuid.UUID `json:"id"`
	UserID int       `json:"user_id"`

	StartTime time.Time `json:"start_time"`

	FirstRunDistance RunDistance `json:"first_run_distance"`
	FirstRunEndTime  time.Time   `json:"first_run_end_time"`

	Pullups          int       `json:"pullups"`
	Pushups          int       `json:"pushups"`
	Squats           int       `json:"squats"`
	ExercisesEndTime time.Time `json:"exercises_end_time"`

	SecondRunDistance RunDistance `json:"second_run_distance"`
	SecondRunEndTime  time.Time   `json:"second_run_end_time"`

	MurphType  MurphType `json:"murph_type"`
	DurationMS int64     `json:"duration_ms"`
}

// Finalize recomputes the derived fields from the raw ones. The server calls
// this on every submission so clients can never claim a tier or duration
// their timestamps and counts don't support.
func (m *MurphRow) Finalize() {
	m.MurphType = Classify(m.FirstRunDistance, m.SecondRunDistance, m.Pullups, m.Pushups, m.Squats)
	m.DurationMS = m.SecondRunEndTime.Sub(m.StartTime).Milliseconds()
}

// Duration returns the session's wall-clock duration.
func (m *MurphRow) Duration() time.Duration {
	return time.Duration(m.DurationMS) * time.Millisecond
}

// Validate checks the submitted raw fields: allowed distances, rep counts
// within ceilings, and end timestamps in stage order.
func (m *MurphRow) Validate() error {
	if !m.FirstRunDistance.Valid() {
		return fmt.Errorf("invalid first run distance %v", m.FirstRunDistance)
	}
	if !m.SecondRunDistance.Valid() {
		return fmt.Errorf("invalid second run distance %v", m.SecondRunDistance)
	}
	if m.Pullups < 0 || m.Pullups > MaxPullups {
		return fmt.Errorf("pullups %d out of range [0,%d]", m.Pullups, MaxPullups)
	}
	if m.Pushups < 0 || m.Pushups > MaxPushups {
		return fmt.Errorf("pushups %d out of range [0,%d]", m.Pushups, MaxPushups)
	}
	if m.Squats < 0 || m.Squats > MaxSquats {
		return fmt.Errorf("squats %d out of range [0,%d]", m.Squats, MaxSquats)
	}
	if m.StartTime.IsZero() {
		return fmt.Errorf("missing start time")
	}
	if m.FirstRunEndTime.Before(m.StartTime) {
		return fmt.Errorf("first run ends before start")
	}
	if m.ExercisesEndTime.Before(m.FirstRunEndTime) {
		return fmt.Errorf("exercises end before first run")
	}
	if m.SecondRunEndTime.Before(m.ExercisesEndTime) {
		return fmt.Errorf("second run ends before exercises")
	}
	return nil
}
