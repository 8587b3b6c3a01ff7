package sites

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned when a site key is not registered.
var ErrNotFound = errors.New("site not found")

// ErrDuplicateKey is returned when two profiles share a key. Uniqueness is a
// constructor-time invariant, not an import-time side effect.
var ErrDuplicateKey = errors.New("duplicate site key")

// Registry is an immutable map of site key to profile, built once before
// any crawl begins.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry validates the profiles, applies defaults, and builds the
// registry. A duplicate key or an invalid profile is a startup error.
func NewRegistry(profiles []Profile) (*Registry, error) {
	byKey := make(map[string]Profile, len(profiles))
	for i := range profiles {
		p := profiles[i]
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, exists := byKey[p.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, p.Key)
		}
		p.applyDefaults()
		byKey[p.Key] = p
	}
	return &Registry{profiles: byKey}, nil
}

// Keys returns the registered site keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.profiles))
	for key := range r.profiles {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the profile for the given key.
func (r *Registry) Get(key string) (Profile, error) {
	profile, ok := r.profiles[key]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return profile, nil
}

// Len returns the number of registered sites.
func (r *Registry) Len() int {
	return len(r.profiles)
}
