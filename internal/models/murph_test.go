package models

import (
	"testing"
	"time"
)

// TestClassifyFull verifies that meeting every FULL threshold exactly earns
// the FULL tier.
func TestClassifyFull(t *testing.T) {
	got := Classify(RunFullMile, RunFullMile, 100, 200, 300)
	if got != MurphFull {
		t.Errorf("Classify = %s, want FULL", got)
	}
}

// TestClassifyDropsToNextTier verifies that missing one FULL threshold
// falls through to the highest tier whose thresholds all still hold:
// pullups=80 fails FULL (needs 100) but satisfies THREE_QUARTER (needs 75).
func TestClassifyDropsToNextTier(t *testing.T) {
	got := Classify(RunFullMile, RunFullMile, 80, 200, 300)
	if got != MurphThreeQuarter {
		t.Errorf("Classify = %s, want THREE_QUARTER", got)
	}
}

// TestClassifyTiers verifies the full threshold table, including that both
// run legs must individually meet the distance requirement.
func TestClassifyTiers(t *testing.T) {
	tests := []struct {
		name                     string
		first, second            RunDistance
		pullups, pushups, squats int
		want                     MurphType
	}{
		{"exact three-quarter", 0.75, 0.75, 75, 150, 225, MurphThreeQuarter},
		{"exact half", 0.5, 0.5, 50, 100, 150, MurphHalf},
		{"exact quarter", 0.25, 0.25, 25, 50, 75, MurphQuarter},
		{"below quarter reps", 0.25, 0.25, 24, 50, 75, MurphIncomplete},
		{"one leg skipped", 1, 0, 100, 200, 300, MurphIncomplete},
		{"one leg short", 1, 0.5, 100, 200, 300, MurphHalf},
		{"everything zero", 0, 0, 0, 0, 0, MurphIncomplete},
		{"reps beyond ceiling thresholds", 1, 1, 100, 200, 300, MurphFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.first, tt.second, tt.pullups, tt.pushups, tt.squats)
			if got != tt.want {
				t.Errorf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

// TestClassifyMonotonic verifies that increasing any single input never
// lowers the tier.
func TestClassifyMonotonic(t *testing.T) {
	rank := map[MurphType]int{
		MurphIncomplete: 0, MurphQuarter: 1, MurphHalf: 2, MurphThreeQuarter: 3, MurphFull: 4,
	}
	distances := []RunDistance{0, 0.25, 0.5, 0.75, 1}

	base := Classify(0.5, 0.5, 50, 100, 150)
	for _, d := range distances {
		if d < 0.5 {
			continue
		}
		got := Classify(d, 0.5, 50, 100, 150)
		if rank[got] < rank[base] {
			t.Errorf("raising first run to %v lowered tier: %s < %s", d, got, base)
		}
	}
	for reps := 50; reps <= 100; reps += 10 {
		got := Classify(0.5, 0.5, reps, 100, 150)
		if rank[got] < rank[base] {
			t.Errorf("raising pullups to %d lowered tier: %s < %s", reps, got, base)
		}
	}
}

// TestMurphTypeWeight verifies the totalMurphs weighting per tier.
func TestMurphTypeWeight(t *testing.T) {
	tests := []struct {
		tier   MurphType
		weight float64
	}{
		{MurphFull, 1},
		{MurphThreeQuarter, 0.75},
		{MurphHalf, 0.5},
		{MurphQuarter, 0.25},
		{MurphIncomplete, 0},
	}
	for _, tt := range tests {
		if got := tt.tier.Weight(); got != tt.weight {
			t.Errorf("%s weight = %v, want %v", tt.tier, got, tt.weight)
		}
	}
}

// TestRunDistanceValid verifies that only the five enumerated distances
// are accepted.
func TestRunDistanceValid(t *testing.T) {
	for _, d := range []RunDistance{0, 0.25, 0.5, 0.75, 1} {
		if !d.Valid() {
			t.Errorf("%v should be valid", d)
		}
	}
	for _, d := range []RunDistance{-0.25, 0.1, 0.3, 1.5, 2} {
		if d.Valid() {
			t.Errorf("%v should be invalid", d)
		}
	}
}

// TestFinalizeDerivesTierAndDuration verifies that Finalize computes the
// tier and millisecond duration from the raw fields.
func TestFinalizeDerivesTierAndDuration(t *testing.T) {
	start := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
	row := MurphRow{
		StartTime:         start,
		FirstRunDistance:  RunFullMile,
		FirstRunEndTime:   start.Add(9 * time.Minute),
		Pullups:           100,
		Pushups:           200,
		Squats:            300,
		ExercisesEndTime:  start.Add(35 * time.Minute),
		SecondRunDistance: RunFullMile,
		SecondRunEndTime:  start.Add(45 * time.Minute),
		MurphType:         MurphIncomplete, // client-claimed value must be overwritten
	}
	row.Finalize()

	if row.MurphType != MurphFull {
		t.Errorf("murph type = %s, want FULL", row.MurphType)
	}
	if want := int64(45 * 60 * 1000); row.DurationMS != want {
		t.Errorf("duration = %d ms, want %d", row.DurationMS, want)
	}
}

// TestValidateOrdering verifies that out-of-order end timestamps are
// rejected.
func TestValidateOrdering(t *testing.T) {
	start := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
	row := MurphRow{
		StartTime:         start,
		FirstRunDistance:  RunFullMile,
		FirstRunEndTime:   start.Add(10 * time.Minute),
		ExercisesEndTime:  start.Add(5 * time.Minute), // before first run end
		SecondRunDistance: RunFullMile,
		SecondRunEndTime:  start.Add(45 * time.Minute),
	}
	if err := row.Validate(); err == nil {
		t.Error("expected error for exercises ending before first run")
	}

	row.ExercisesEndTime = start.Add(35 * time.Minute)
	if err := row.Validate(); err != nil {
		t.Errorf("unexpected error for ordered timestamps: %v", err)
	}
}

// TestValidateBounds verifies rejection of rep counts outside [0, max] and
// of distances not in the enumeration.
func TestValidateBounds(t *testing.T) {
	start := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
	valid := MurphRow{
		StartTime:         start,
		FirstRunDistance:  RunFullMile,
		FirstRunEndTime:   start.Add(10 * time.Minute),
		ExercisesEndTime:  start.Add(35 * time.Minute),
		SecondRunDistance: RunFullMile,
		SecondRunEndTime:  start.Add(45 * time.Minute),
	}

	row := valid
	row.Pullups = MaxPullups + 1
	if err := row.Validate(); err == nil {
		t.Error("expected error for pullups above ceiling")
	}

	row = valid
	row.Squats = -1
	if err := row.Validate(); err == nil {
		t.Error("expected error for negative squats")
	}

	row = valid
	row.FirstRunDistance = 0.3
	if err := row.Validate(); err == nil {
		t.Error("expected error for non-enumerated distance")
	}
}
