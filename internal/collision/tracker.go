// Package collision tracks package names and detects xxHash64 fingerprint
// collisions during protocol registration.
package collision

import (
	"github.com/yanzhen74/apdl/errs"
)

// Tracker tracks package names and detects hash collisions during
// registration. It maintains a map of fingerprint-to-name mappings and an
// ordered list of names for deterministic iteration.
type Tracker struct {
	names        map[uint64]string
	namesList    []string
	hasCollision bool
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names:     make(map[uint64]string),
		namesList: make([]string, 0),
	}
}

// TrackFingerprint tracks a fingerprint without an associated name. This is
// used when the caller supplies a bare fingerprint rather than a name.
// Returns ErrFingerprintCollision if the fingerprint was already used - this
// indicates a collision that cannot be disambiguated without a name.
func (t *Tracker) TrackFingerprint(fp uint64) error {
	if _, exists := t.names[fp]; exists {
		return errs.ErrFingerprintCollision
	}

	t.names[fp] = ""

	return nil
}

// TrackName tracks a package name with its fingerprint.
//
// Returns ErrDuplicatePackage if the same name is registered twice. A hash
// collision (different names, same fingerprint) is not an error here;
// instead the collision flag is set so the caller can report it via
// HasCollision, the same way the registry surfaces it to callers.
func (t *Tracker) TrackName(name string, fp uint64) error {
	if existingName, exists := t.names[fp]; exists {
		if existingName == name {
			return errs.ErrDuplicatePackage
		}
		t.hasCollision = true
	}

	t.names[fp] = name
	t.namesList = append(t.namesList, name)

	return nil
}

// HasCollision returns true if a fingerprint collision has been detected.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the ordered list of tracked package names.
func (t *Tracker) Names() []string {
	return t.namesList
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.namesList)
}

// Reset clears all tracked names and collision state, preserving capacity.
func (t *Tracker) Reset() {
	for k := range t.names {
		delete(t.names, k)
	}
	t.namesList = t.namesList[:0]
	t.hasCollision = false
}
