package step

import (
	"fmt"
	"sort"
)

// Role selects which steps a run needs.
type Role int

const (
	RoleInstallInit Role = iota
	RoleInstallConfig
	RoleUpdate
	RoleUninstall
)

func (r Role) String() string {
	switch r {
	case RoleInstallInit:
		return "install-init"
	case RoleInstallConfig:
		return "install-config"
	case RoleUpdate:
		return "update"
	case RoleUninstall:
		return "uninstall"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Constructor creates a fresh step bound to env. It must not have side
// effects.
type Constructor func(env *Env) Step

// Registry is a static table of step constructors per role.
type Registry struct {
	entries map[Role][]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Role][]Constructor)}
}

// Register appends c to role. Registration order breaks weight ties.
func (r *Registry) Register(role Role, c Constructor) {
	r.entries[role] = append(r.entries[role], c)
}

// Discover instantiates every step of role and sorts them by ascending
// weight, keeping registration order between equal weights.
func (r *Registry) Discover(role Role, env *Env) []Step {
	constructors := r.entries[role]
	steps := make([]Step, 0, len(constructors))
	for _, c := range constructors {
		steps = append(steps, c(env))
	}
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Weight() < steps[j].Weight()
	})
	return steps
}

// LastAvailableWeight is the highest update step weight, or 0.
func (r *Registry) LastAvailableWeight(env *Env) int {
	last := 0
	for _, s := range r.Discover(RoleUpdate, env) {
		if s.Weight() > last {
			last = s.Weight()
		}
	}
	return last
}

// FilterNewerThan keeps steps heavier than threshold, in order.
func FilterNewerThan(steps []Step, threshold int) []Step {
	var out []Step
	for _, s := range steps {
		if s.Weight() > threshold {
			out = append(out, s)
		}
	}
	return out
}

// Names returns the names of steps, for logs and listings.
func Names(steps []Step) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name()
	}
	return names
}
