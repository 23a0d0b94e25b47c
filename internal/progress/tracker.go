// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress tracks completion of the five-step checklist. A Tracker
// owns the completed set and mirrors it to a key-value store as a JSON
// array in insertion order.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/workflow-mapper/internal/kvstore"
	"github.com/pdiddy/workflow-mapper/pkg/types"
)

const (
	// ResetPrompt is the confirmation question asked before a reset.
	ResetPrompt = "Are you sure you want to reset all progress?"

	// FlashSymbol is shown on a step card that was just completed.
	FlashSymbol = "✓"

	// FlashDuration is how long the completion flash stays visible.
	FlashDuration = time.Second

	// CompletionTitle and CompletionBody make up the celebration message.
	CompletionTitle = "🎉 Workflow Complete!"
	CompletionBody  = "Congratulations! You've completed all steps in the augmented workflow."
)

// ErrInvalidStep is returned for step numbers outside 1..5.
var ErrInvalidStep = errors.New("invalid step")

// ValidStep reports whether n identifies a checklist step.
func ValidStep(n int) bool {
	return n >= 1 && n <= types.StepCount
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// Confirmed answers yes without asking. Used for --yes and confirmed API
// requests.
var Confirmed Confirmer = ConfirmFunc(func(string) (bool, error) { return true, nil })

// Outcome describes the effect of one MarkComplete call.
type Outcome struct {
	Step  int  `json:"step" msgpack:"step"`
	Newly bool `json:"newly" msgpack:"newly"`

	// Flash is the confirmation symbol for a newly completed step.
	Flash         string        `json:"flash,omitempty" msgpack:"flash,omitempty"`
	FlashDuration time.Duration `json:"flashDuration,omitempty" msgpack:"flashDuration,omitempty"`

	Completed  int     `json:"completed" msgpack:"completed"`
	Percentage float64 `json:"percentage" msgpack:"percentage"`

	// Celebrate is true whenever all steps are complete after the call.
	Celebrate bool `json:"celebrate" msgpack:"celebrate"`
}

// HydrateReport describes what Hydrate found in storage.
type HydrateReport struct {
	Found       bool  `json:"found"`
	Loaded      []int `json:"loaded"`
	OutOfRange  []int `json:"outOfRange,omitempty"`
	Duplicates  []int `json:"duplicates,omitempty"`
	Unparseable bool  `json:"unparseable,omitempty"`
}

// Clean reports whether the stored record needed no correction.
func (r HydrateReport) Clean() bool {
	return !r.Unparseable && len(r.OutOfRange) == 0 && len(r.Duplicates) == 0
}

// Tracker owns the completed-step set.
type Tracker struct {
	store kvstore.Store
	key   string

	order []int
	done  map[int]bool
}

// NewTracker returns an empty tracker persisting under key. An empty key
// uses workflowProgress.
func NewTracker(store kvstore.Store, key string) *Tracker {
	if key == "" {
		key = types.DefaultProgressKey
	}
	return &Tracker{store: store, key: key, done: make(map[int]bool)}
}

// Key returns the storage key.
func (t *Tracker) Key() string { return t.key }

// Hydrate replaces the in-memory set with the persisted one. A missing
// record is an empty set. Values outside 1..5 and repeats are dropped and
// listed in the report; a record that is not a JSON integer array is
// treated as empty.
func (t *Tracker) Hydrate() (HydrateReport, error) {
	t.order = nil
	t.done = make(map[int]bool)

	raw, ok, err := t.store.Get(t.key)
	if err != nil {
		return HydrateReport{}, fmt.Errorf("loading progress: %w", err)
	}
	report := HydrateReport{Found: ok}
	if !ok {
		return report, nil
	}

	var saved []int
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		report.Unparseable = true
		return report, nil
	}

	for _, n := range saved {
		switch {
		case !ValidStep(n):
			report.OutOfRange = append(report.OutOfRange, n)
		case t.done[n]:
			report.Duplicates = append(report.Duplicates, n)
		default:
			t.add(n)
		}
	}
	report.Loaded = t.Completed()
	return report, nil
}

func (t *Tracker) add(n int) {
	t.done[n] = true
	t.order = append(t.order, n)
}

// MarkComplete moves step to Completed. Repeating it is harmless: the set is
// re-persisted and the same percentage is reported.
func (t *Tracker) MarkComplete(step int) (Outcome, error) {
	if !ValidStep(step) {
		return Outcome{}, fmt.Errorf("%w: %d (want 1-%d)", ErrInvalidStep, step, types.StepCount)
	}

	out := Outcome{Step: step}
	next := t.Completed()
	if !t.done[step] {
		next = append(next, step)
		out.Newly = true
		out.Flash = FlashSymbol
		out.FlashDuration = FlashDuration
	}

	// Memory changes only once the store has the new set.
	if err := t.save(next); err != nil {
		return Outcome{}, err
	}
	if out.Newly {
		t.add(step)
	}

	out.Completed = t.Count()
	out.Percentage = t.Percentage()
	out.Celebrate = t.AllComplete()
	return out, nil
}

// Reset clears every step after confirmation. It reports whether the reset
// happened.
func (t *Tracker) Reset(c Confirmer) (bool, error) {
	if c == nil {
		c = Confirmed
	}
	ok, err := c.Confirm(ResetPrompt)
	if err != nil {
		return false, fmt.Errorf("confirming reset: %w", err)
	}
	if !ok {
		return false, nil
	}

	if err := t.store.Delete(t.key); err != nil {
		return false, fmt.Errorf("erasing progress: %w", err)
	}
	t.order = nil
	t.done = make(map[int]bool)
	return true, nil
}

func (t *Tracker) save(steps []int) error {
	data, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}
	if err := t.store.Set(t.key, string(data)); err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}

// Completed returns the completed steps in the order they were completed.
func (t *Tracker) Completed() []int {
	return append([]int{}, t.order...)
}

// IsComplete reports whether step is completed.
func (t *Tracker) IsComplete(step int) bool { return t.done[step] }

// Count returns the number of completed steps.
func (t *Tracker) Count() int { return len(t.order) }

// Percentage returns completed/5 × 100.
func (t *Tracker) Percentage() float64 {
	return float64(t.Count()) / float64(types.StepCount) * 100
}

// AllComplete reports whether every step is completed.
func (t *Tracker) AllComplete() bool { return t.Count() == types.StepCount }

// Status returns the step's state.
func (t *Tracker) Status(step int) types.StepStatus {
	if t.done[step] {
		return types.StepCompleted
	}
	return types.StepPending
}
