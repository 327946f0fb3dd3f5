// Package selection holds the toggle state shown in the service menu.
//
// A State is treated as an immutable value: Toggle returns a fresh copy so
// earlier snapshots stay valid for comparison with NeedsSave.
package selection

import (
	"errors"
	"slices"
	"strings"

	"github.com/ruminaider/devdock/internal/catalog"
)

// ErrEmptyCatalog is returned by Merge when the descriptor has no toggleable services.
var ErrEmptyCatalog = errors.New("no available services were found in the app")

// Entry is one toggleable service and whether it is currently disabled.
type Entry struct {
	Name        string
	Description string
	Setting     string
	Disabled    bool
}

// State is the ordered list of entries shown in the menu.
type State []Entry

// Merge combines the catalog with the persisted disabled names and sorts
// the result by description. Entries with equal descriptions keep their
// catalog order.
func Merge(services []catalog.Service, disabled []string) (State, error) {
	if len(services) == 0 {
		return nil, ErrEmptyCatalog
	}
	s := make(State, 0, len(services))
	for _, svc := range services {
		s = append(s, Entry{
			Name:        svc.Name,
			Description: svc.Description,
			Setting:     svc.Setting,
			Disabled:    slices.Contains(disabled, svc.Name),
		})
	}
	return SortByDescription(s), nil
}

// SortByDescription returns a stably sorted copy of s.
func SortByDescription(s State) State {
	out := slices.Clone(s)
	slices.SortStableFunc(out, func(a, b Entry) int {
		return strings.Compare(a.Description, b.Description)
	})
	return out
}

// Toggle returns a copy of s with entry i's Disabled flag flipped. An out
// of range index returns an unchanged copy.
func (s State) Toggle(i int) State {
	out := slices.Clone(s)
	if i >= 0 && i < len(out) {
		out[i].Disabled = !out[i].Disabled
	}
	return out
}

// Disabled returns the disabled entries in menu order.
func (s State) Disabled() []Entry {
	var out []Entry
	for _, e := range s {
		if e.Disabled {
			out = append(out, e)
		}
	}
	return out
}

// DisabledNames returns the names of the disabled entries in menu order.
// The result is never nil.
func (s State) DisabledNames() []string {
	names := []string{}
	for _, e := range s {
		if e.Disabled {
			names = append(names, e.Name)
		}
	}
	return names
}

// NeedsSave reports whether the set of disabled names differs between the
// two snapshots. Order is ignored.
func NeedsSave(original, updated State) bool {
	before := original.DisabledNames()
	after := updated.DisabledNames()
	if len(before) != len(after) {
		return true
	}
	for _, name := range after {
		if !slices.Contains(before, name) {
			return true
		}
	}
	return false
}
