package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/murph/internal/models"
	"github.com/google/uuid"
)

// State-machine contract violations. Operations invoked outside their
// precondition stage fail loudly rather than silently no-op, since the
// surrounding UI should never expose a disallowed action.
var (
	ErrWrongStage      = errors.New("operation not allowed in current stage")
	ErrUnknownExercise = errors.New("unknown exercise")
	ErrInvalidDistance = errors.New("invalid run distance")
)

// Store persists the working draft and the submission flag across process
// restarts. A missing or malformed draft loads as nil rather than failing.
type Store interface {
	SaveDraft(d *Draft) error
	LoadDraft() (*Draft, error)
	SaveSubmitted(submitted bool) error
	LoadSubmitted() (bool, error)
	Clear() error
}

// Submitter delivers a finished session to the remote store. Idempotency is
// the session's responsibility via the persisted submission flag; the
// record's UUID gives the server a second line of defense.
type Submitter interface {
	SubmitMurph(ctx context.Context, row models.MurphRow) error
}

// Session is the state machine for one workout attempt. It has a single
// writer; the mutex exists so a display goroutine can read stage and
// elapsed time while an operation is in flight.
type Session struct {
	mu         sync.Mutex
	draft      Draft
	submitted  bool
	submitting bool

	userID    int
	store     Store
	submitter Submitter
	stopwatch Stopwatch
	log       *slog.Logger

	now func() time.Time
}

// New creates a Session in the not_started stage.
func New(store Store, submitter Submitter, userID int, log *slog.Logger) *Session {
	return &Session{
		userID:    userID,
		store:     store,
		submitter: submitter,
		log:       log,
		now:       time.Now,
	}
}

// Resume restores a persisted draft, if any, and re-anchors the stopwatch
// to the persisted start time so elapsed time continues from where the
// previous process left off instead of resetting to zero.
func (s *Session) Resume() (Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.store.LoadDraft()
	if err != nil {
		return StageNotStarted, fmt.Errorf("loading draft: %w", err)
	}
	if d == nil {
		return StageNotStarted, nil
	}

	s.draft = *d
	s.submitted, err = s.store.LoadSubmitted()
	if err != nil {
		return StageNotStarted, fmt.Errorf("loading submission flag: %w", err)
	}

	if d.StartTime != nil {
		s.stopwatch.StartAt(*d.StartTime)
		if d.SecondRunEndTime != nil {
			s.stopwatch.StopAt(*d.SecondRunEndTime)
		}
	}

	stage := s.draft.Stage()
	s.log.Info("session resumed", "stage", stage.String(), "elapsed", s.stopwatch.Elapsed().String())
	return stage, nil
}

// Start begins the attempt: mints the record ID, anchors the start time,
// and starts the stopwatch. Starting over a previous attempt requires an
// explicit Reset first.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stage := s.draft.Stage(); stage != StageNotStarted {
		return fmt.Errorf("%w: start requires not_started, session is %s", ErrWrongStage, stage)
	}

	now := s.now()
	s.draft.ID = uuid.New()
	s.draft.StartTime = &now
	s.stopwatch.StartAt(now)
	return s.persist()
}

// FinishFirstRun records the first run leg's distance and end time.
func (s *Session) FinishFirstRun(distance models.RunDistance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !distance.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidDistance, distance)
	}
	if stage := s.draft.Stage(); stage != StageFirstRun {
		return fmt.Errorf("%w: finishFirstRun requires first_run, session is %s", ErrWrongStage, stage)
	}

	now := s.now()
	s.draft.FirstRunDistance = distance
	s.draft.FirstRunEndTime = &now
	return s.persist()
}

// AddReps adds n reps to an exercise counter, clamped to [0, max]. Adding
// past the ceiling is not an error; the excess is discarded.
func (s *Session) AddReps(ex models.Exercise, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	max := models.MaxReps(ex)
	if max == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownExercise, ex)
	}
	if stage := s.draft.Stage(); stage != StageExercises {
		return fmt.Errorf("%w: addReps requires exercises, session is %s", ErrWrongStage, stage)
	}

	v := clamp(s.draft.Reps(ex)+n, 0, max)
	switch ex {
	case models.Pullups:
		s.draft.Pullups = v
	case models.Pushups:
		s.draft.Pushups = v
	case models.Squats:
		s.draft.Squats = v
	}
	return s.persist()
}

// CompleteExercises closes the exercise block. Counters need not be at
// their ceilings; partial completion is recorded as such.
func (s *Session) CompleteExercises() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stage := s.draft.Stage(); stage != StageExercises {
		return fmt.Errorf("%w: completeExercises requires exercises, session is %s", ErrWrongStage, stage)
	}

	now := s.now()
	s.draft.ExercisesEndTime = &now
	return s.persist()
}

// FinishSecondRun records the final leg, freezes the stopwatch, and returns
// the finished record with its derived tier and duration. The record still
// needs Submit to reach the remote store.
func (s *Session) FinishSecondRun(distance models.RunDistance) (models.MurphRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !distance.Valid() {
		return models.MurphRow{}, fmt.Errorf("%w: %v", ErrInvalidDistance, distance)
	}
	if stage := s.draft.Stage(); stage != StageSecondRun {
		return models.MurphRow{}, fmt.Errorf("%w: finishSecondRun requires second_run, session is %s", ErrWrongStage, stage)
	}

	now := s.now()
	s.draft.SecondRunDistance = distance
	s.draft.SecondRunEndTime = &now
	s.stopwatch.StopAt(now)
	if err := s.persist(); err != nil {
		return models.MurphRow{}, err
	}

	row := s.draft.Row(s.userID)
	s.log.Info("session completed",
		"murph_type", string(row.MurphType),
		"duration", FormatElapsed(row.Duration()),
	)
	return row, nil
}

// Submit delivers the completed session to the remote store exactly once.
// A successful submission persists the flag so retries after success are
// no-ops; a failed submission leaves the flag clear and is safe to retry.
// Concurrent calls while an attempt is in flight do not trigger a second
// submission.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.draft.Stage() != StageCompleted {
		s.mu.Unlock()
		return fmt.Errorf("%w: submit requires completed, session is %s", ErrWrongStage, s.draft.Stage())
	}
	if s.submitted || s.submitting {
		s.mu.Unlock()
		return nil
	}
	s.submitting = true
	row := s.draft.Row(s.userID)
	s.mu.Unlock()

	err := s.submitter.SubmitMurph(ctx, row)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		s.log.Warn("submission failed", "error", err)
		return fmt.Errorf("submitting session: %w", err)
	}
	s.submitted = true
	if err := s.store.SaveSubmitted(true); err != nil {
		return fmt.Errorf("persisting submission flag: %w", err)
	}
	return nil
}

// Reset discards the draft and submission flag and stops the stopwatch.
// Allowed in any stage. An in-flight submission of the discarded draft may
// still complete; it carries its own copy of the record and cannot touch
// the fresh draft.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = Draft{}
	s.submitted = false
	s.stopwatch.Reset()
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clearing draft store: %w", err)
	}
	return nil
}

// Draft returns a copy of the working draft for display.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Stage returns the current stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Stage()
}

// Submitted reports whether the finished record has reached the remote store.
func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// Elapsed returns the live (or frozen, once completed) elapsed time.
func (s *Session) Elapsed() time.Duration {
	return s.stopwatch.Elapsed()
}

// Tick runs the redraw loop, invoking fn at the given interval while the
// session is running. See Stopwatch.Tick.
func (s *Session) Tick(ctx context.Context, interval time.Duration, fn func(time.Duration)) {
	s.stopwatch.Tick(ctx, interval, fn)
}

// persist writes the draft to the local store. Called with s.mu held after
// every mutation so a crash at any point resumes from the last transition.
func (s *Session) persist() error {
	if err := s.store.SaveDraft(&s.draft); err != nil {
		return fmt.Errorf("persisting draft: %w", err)
	}
	return nil
}

func clamp(n, lo, hi int) int {
	return min(max(n, lo), hi)
}
