package build

import (
	"github.com/starford/docbrief/internal/models"
)

// Action is what a run does with one document.
type Action int

const (
	ActionSkip Action = iota
	ActionAdd
	ActionUpdate
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionUpdate:
		return "update"
	case ActionRemove:
		return "remove"
	default:
		return "skip"
	}
}

// Step is one planned document action.
type Step struct {
	Path        string
	Action      Action
	Fingerprint string
}

// Plan reconciles the current scan against the manifest. fingerprints must
// hold a digest for every scanned path. Removals come first in sorted order,
// followed by the scanned documents in scan order. With force set, every
// scanned document that would be skipped is updated instead.
func Plan(scanned []string, fingerprints map[string]string, m *models.Manifest, force bool) []Step {
	current := make(map[string]struct{}, len(scanned))
	for _, p := range scanned {
		current[p] = struct{}{}
	}

	steps := make([]Step, 0, len(scanned)+len(m.Files))
	for _, p := range m.Paths() {
		if _, ok := current[p]; !ok {
			steps = append(steps, Step{Path: p, Action: ActionRemove})
		}
	}

	for _, p := range scanned {
		fp := fingerprints[p]
		prev, tracked := m.Files[p]
		var action Action
		switch {
		case !tracked:
			action = ActionAdd
		case force || prev.Fingerprint != fp:
			action = ActionUpdate
		default:
			action = ActionSkip
		}
		steps = append(steps, Step{Path: p, Action: action, Fingerprint: fp})
	}
	return steps
}
