// Package session owns the lifecycle of a single in-progress Murph attempt:
// stage transitions, rep accumulation, elapsed-time tracking, local
// persistence across restarts, and exactly-once submission of the finished
// record.
package session

import (
	"time"

	"github.com/claude/murph/internal/models"
	"github.com/google/uuid"
)

// Stage is the current phase of a workout attempt. Stages are totally
// ordered and never revisited except via Reset.
type Stage int

const (
	StageNotStarted Stage = iota
	StageFirstRun
	StageExercises
	StageSecondRun
	StageCompleted
)

// String returns the wire/display name of the stage.
func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not_started"
	case StageFirstRun:
		return "first_run"
	case StageExercises:
		return "exercises"
	case StageSecondRun:
		return "second_run"
	case StageCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Running reports whether the stage is between start and completion, i.e.
// the stopwatch should be ticking.
func (s Stage) Running() bool {
	return s > StageNotStarted && s < StageCompleted
}

// Draft is the mutable working state of an attempt. Timestamps become
// non-nil in field order, and the stage is derived purely from which of
// them are nil; no separate stage field exists to drift out of sync.
type Draft struct {
	ID        uuid.UUID  `json:"id"`
	StartTime *time.Time `json:"start_time"`

	FirstRunDistance models.RunDistance `json:"first_run_distance"`
	FirstRunEndTime  *time.Time         `json:"first_run_end_time"`

	Pullups          int        `json:"pullups"`
	Pushups          int        `json:"pushups"`
	Squats           int        `json:"squats"`
	ExercisesEndTime *time.Time `json:"exercises_end_time"`

	SecondRunDistance models.RunDistance `json:"second_run_distance"`
	SecondRunEndTime  *time.Time         `json:"second_run_end_time"`
}

// Stage derives the current stage from the draft's timestamps.
func (d *Draft) Stage() Stage {
	switch {
	case d.StartTime == nil:
		return StageNotStarted
	case d.FirstRunEndTime == nil:
		return StageFirstRun
	case d.ExercisesEndTime == nil:
		return StageExercises
	case d.SecondRunEndTime == nil:
		return StageSecondRun
	default:
		return StageCompleted
	}
}

// Reps returns the current count for an exercise.
func (d *Draft) Reps(ex models.Exercise) int {
	switch ex {
	case models.Pullups:
		return d.Pullups
	case models.Pushups:
		return d.Pushups
	case models.Squats:
		return d.Squats
	}
	return 0
}

// ExercisesCompleted reports whether all three counters sit at their
// ceilings. Informational only: partial completion is valid.
func (d *Draft) ExercisesCompleted() bool {
	return d.Pullups >= models.MaxPullups &&
		d.Pushups >= models.MaxPushups &&
		d.Squats >= models.MaxSquats
}

// Row converts a completed draft into the immutable record submitted to
// storage, with the derived tier and duration filled in.
func (d *Draft) Row(userID int) models.MurphRow {
	row := models.MurphRow{
		ID:                d.ID,
		UserID:            userID,
		StartTime:         *d.StartTime,
		FirstRunDistance:  d.FirstRunDistance,
		FirstRunEndTime:   *d.FirstRunEndTime,
		Pullups:           d.Pullups,
		Pushups:           d.Pushups,
		Squats:            d.Squats,
		ExercisesEndTime:  *d.ExercisesEndTime,
		SecondRunDistance: d.SecondRunDistance,
		SecondRunEndTime:  *d.SecondRunEndTime,
	}
	row.Finalize()
	return row
}
