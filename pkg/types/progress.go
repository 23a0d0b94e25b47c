// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StepCount is the number of checklist steps tracked.
const StepCount = 5

// StepStatus is a step's position in the one-way Pending → Completed machine.
type StepStatus string

const (
	StepPending   StepStatus = "Pending"
	StepCompleted StepStatus = "Completed"
)

// Step describes one checklist item in the step catalog.
type Step struct {
	// Number identifies the step (1..5).
	Number int `json:"number" yaml:"number"`

	// Title is the step card heading.
	Title string `json:"title" yaml:"title"`

	// Summary is the one-line description shown on the card.
	Summary string `json:"summary" yaml:"summary"`

	// Details lists the expandable bullet points of the card.
	Details []string `json:"details,omitempty" yaml:"details,omitempty"`
}

// StepCatalog holds the five steps loaded from steps.yaml.
type StepCatalog struct {
	Steps []Step `json:"steps" yaml:"steps"`
}
