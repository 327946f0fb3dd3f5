// Package settings persists the disabled services of each project in a
// single JSON file.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorruptStore is returned when the settings file exists but cannot be parsed.
var ErrCorruptStore = errors.New("corrupt settings store")

// Disabled maps a project name to the names of its disabled services.
type Disabled map[string][]string

// Store reads and writes the settings file at Path.
type Store struct {
	Path string
}

// NewStore returns a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the whole settings file. A missing file yields an empty mapping.
func (s *Store) Load() (Disabled, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Disabled{}, nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	var all Disabled
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.Path, err)
	}
	if all == nil {
		all = Disabled{}
	}
	return all, nil
}

// LoadProject returns the disabled service names for project, or an empty
// slice if the project has no entry.
func (s *Store) LoadProject(project string) ([]string, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}
	names := all[project]
	if names == nil {
		return []string{}, nil
	}
	return names, nil
}

// Save overwrites the settings file with all, creating the parent
// directory if needed. Entries not present in all are lost.
func (s *Store) Save(all Disabled) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}
	out := make(Disabled, len(all))
	for project, names := range all {
		if names == nil {
			names = []string{}
		}
		out[project] = names
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := os.WriteFile(s.Path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// SaveProject replaces project's entry and rewrites the file, keeping every
// other project's entry as it was on disk.
func (s *Store) SaveProject(project string, names []string) error {
	all, err := s.Load()
	if err != nil {
		return err
	}
	all[project] = names
	return s.Save(all)
}
