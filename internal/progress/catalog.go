// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package progress

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/workflow-mapper/pkg/types"
)

//go:embed steps.yaml
var defaultStepsYAML []byte

// DefaultCatalog returns the built-in five-step checklist.
func DefaultCatalog() types.StepCatalog {
	cat, err := parseCatalog(defaultStepsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded steps.yaml: %v", err))
	}
	return cat
}

// LoadCatalog reads a step catalog from path, or returns the built-in
// catalog when path is empty.
func LoadCatalog(path string) (types.StepCatalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.StepCatalog{}, fmt.Errorf("reading step catalog: %w", err)
	}
	cat, err := parseCatalog(data)
	if err != nil {
		return types.StepCatalog{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cat, nil
}

// parseCatalog decodes YAML and requires exactly one step per number 1..5.
func parseCatalog(data []byte) (types.StepCatalog, error) {
	var cat types.StepCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return types.StepCatalog{}, err
	}
	if len(cat.Steps) != types.StepCount {
		return types.StepCatalog{}, fmt.Errorf("catalog has %d steps, want %d", len(cat.Steps), types.StepCount)
	}

	seen := make(map[int]bool, types.StepCount)
	for _, s := range cat.Steps {
		if !ValidStep(s.Number) {
			return types.StepCatalog{}, fmt.Errorf("step number %d out of range 1-%d", s.Number, types.StepCount)
		}
		if seen[s.Number] {
			return types.StepCatalog{}, fmt.Errorf("duplicate step number %d", s.Number)
		}
		if s.Title == "" {
			return types.StepCatalog{}, fmt.Errorf("step %d has no title", s.Number)
		}
		seen[s.Number] = true
	}

	sort.Slice(cat.Steps, func(i, j int) bool { return cat.Steps[i].Number < cat.Steps[j].Number })
	return cat, nil
}
