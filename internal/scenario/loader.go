// Package scenario loads canned experiment scenarios.
//
// A scenario set is a directory holding a config.yaml (metadata) and a
// scenarios.json (the scenarios themselves). Sets ship embedded in the
// binary; an external directory can override or extend them.
package scenario

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed all:testdata
var embeddedSets embed.FS

// Load loads a scenario set by name, searching first in the external
// directory (if provided), then in the embedded sets.
func Load(name string, externalDir string) (*Set, error) {
	// Try external directory first.
	if externalDir != "" {
		p := filepath.Join(externalDir, name)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return loadFromFS(os.DirFS(p), name)
		}
	}

	// Fall back to embedded sets.
	// Use path.Join (not filepath.Join) because embed.FS always uses forward slashes.
	subFS, err := fs.Sub(embeddedSets, path.Join("testdata", name))
	if err != nil {
		return nil, fmt.Errorf("scenario set %q not found: %w", name, err)
	}
	return loadFromFS(subFS, name)
}

// List returns the names of all available scenario sets.
func List(externalDir string) ([]string, error) {
	seen := make(map[string]bool)
	var names []string

	entries, err := fs.ReadDir(embeddedSets, "testdata")
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				seen[e.Name()] = true
				names = append(names, e.Name())
			}
		}
	}

	if externalDir != "" {
		entries, err := os.ReadDir(externalDir)
		if err == nil {
			for _, e := range entries {
				if e.IsDir() && !seen[e.Name()] {
					names = append(names, e.Name())
				}
			}
		}
	}

	return names, nil
}

func loadFromFS(fsys fs.FS, name string) (*Set, error) {
	configData, err := fs.ReadFile(fsys, "config.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read config.yaml for set %q: %w", name, err)
	}

	var set Set
	if err := yaml.Unmarshal(configData, &set); err != nil {
		return nil, fmt.Errorf("failed to parse config.yaml for set %q: %w", name, err)
	}

	if set.ScenariosFile == "" {
		set.ScenariosFile = "scenarios.json"
	}

	scenarios, err := loadScenariosFromFS(fsys, set.ScenariosFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios for set %q: %w", name, err)
	}
	set.Scenarios = scenarios

	return &set, nil
}

func loadScenariosFromFS(fsys fs.FS, filename string) ([]Scenario, error) {
	data, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	var doc struct {
		Scenarios []Scenario `json:"scenarios"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	if err := validate(doc.Scenarios); err != nil {
		return nil, err
	}
	return doc.Scenarios, nil
}

// validate enforces the load-time invariants: at least one scenario, a
// non-empty query for each, and unique ids.
func validate(scenarios []Scenario) error {
	if len(scenarios) == 0 {
		return fmt.Errorf("scenario set has no scenarios")
	}

	ids := make(map[string]bool, len(scenarios))
	for i, s := range scenarios {
		if strings.TrimSpace(s.Query) == "" {
			return fmt.Errorf("scenario %d (id %q) has an empty query", i+1, s.ID)
		}
		if s.ID == "" {
			return fmt.Errorf("scenario %d has no id", i+1)
		}
		if ids[s.ID] {
			return fmt.Errorf("duplicate scenario id %q", s.ID)
		}
		ids[s.ID] = true
	}
	return nil
}
