// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/workflow-mapper/pkg/types"
)

// Button and toggle labels of a step card.
const (
	LabelMarkComplete = "Mark Complete"
	LabelCompleted    = "Completed"
	LabelViewDetails  = "View Details"
	LabelHideDetails  = "Hide Details"
)

// Card is the view of one step.
type Card struct {
	Number         int              `json:"number" yaml:"number" msgpack:"number"`
	Title          string           `json:"title" yaml:"title" msgpack:"title"`
	Summary        string           `json:"summary,omitempty" yaml:"summary,omitempty" msgpack:"summary,omitempty"`
	Status         types.StepStatus `json:"status" yaml:"status" msgpack:"status"`
	ButtonLabel    string           `json:"buttonLabel" yaml:"button_label" msgpack:"buttonLabel"`
	ButtonDisabled bool             `json:"buttonDisabled" yaml:"button_disabled" msgpack:"buttonDisabled"`
	DetailsLabel   string           `json:"detailsLabel" yaml:"details_label" msgpack:"detailsLabel"`
	Details        []string         `json:"details,omitempty" yaml:"details,omitempty" msgpack:"details,omitempty"`
}

// Board is the full progress view.
type Board struct {
	Cards      []Card  `json:"cards" yaml:"cards" msgpack:"cards"`
	Completed  int     `json:"completed" yaml:"completed" msgpack:"completed"`
	Total      int     `json:"total" yaml:"total" msgpack:"total"`
	Percentage float64 `json:"percentage" yaml:"percentage" msgpack:"percentage"`
}

// RenderOptions selects which cards show their details.
type RenderOptions struct {
	AllDetails bool
	Details    map[int]bool
}

func (o RenderOptions) expanded(step int) bool {
	return o.AllDetails || o.Details[step]
}

// Render projects the tracker state onto the catalog.
func Render(t *Tracker, cat types.StepCatalog, opts RenderOptions) Board {
	b := Board{
		Completed:  t.Count(),
		Total:      types.StepCount,
		Percentage: t.Percentage(),
	}
	for _, s := range cat.Steps {
		c := Card{
			Number:       s.Number,
			Title:        s.Title,
			Summary:      s.Summary,
			Status:       t.Status(s.Number),
			ButtonLabel:  LabelMarkComplete,
			DetailsLabel: LabelViewDetails,
		}
		if c.Status == types.StepCompleted {
			c.ButtonLabel = LabelCompleted
			c.ButtonDisabled = true
		}
		if opts.expanded(s.Number) {
			c.DetailsLabel = LabelHideDetails
			c.Details = s.Details
		}
		b.Cards = append(b.Cards, c)
	}
	return b
}

// progressBarWidth is the number of cells in the text progress bar.
const progressBarWidth = 20

// WriteBoard prints the board as text.
func WriteBoard(w io.Writer, b Board) {
	filled := 0
	if b.Total > 0 {
		filled = b.Completed * progressBarWidth / b.Total
	}
	fmt.Fprintf(w, "[%s%s] %d/%d steps completed (%.0f%%)\n\n",
		strings.Repeat("#", filled), strings.Repeat("-", progressBarWidth-filled),
		b.Completed, b.Total, b.Percentage)

	for _, c := range b.Cards {
		fmt.Fprintf(w, "%d. %-34s %s\n", c.Number, c.Title, c.Status)
		if c.Summary != "" {
			fmt.Fprintf(w, "   %s\n", c.Summary)
		}
		for _, d := range c.Details {
			fmt.Fprintf(w, "     - %s\n", d)
		}
	}
}

// WriteCompletion prints the celebration message.
func WriteCompletion(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n%s\n", CompletionTitle, CompletionBody)
}

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Export writes the board in the given format.
func Export(w io.Writer, b Board, format string) error {
	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(b); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q: use yaml or json", format)
	}
}
