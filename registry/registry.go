// Package registry names and looks up protocol packages by name, so layered
// disassembly and connector configuration can refer to a frame layout
// ("tm.frame.v1", "can.frame.std") instead of wiring a *fieldtable.Table
// literal at every call site.
package registry

import (
	"fmt"

	"github.com/yanzhen74/apdl/errs"
	"github.com/yanzhen74/apdl/fieldtable"
	"github.com/yanzhen74/apdl/internal/collision"
	"github.com/yanzhen74/apdl/internal/hash"
)

// Registry maps package names to field tables, fingerprinting each name with
// xxHash64. The fingerprint covers the name only, not the table's fields.
type Registry struct {
	tables   map[string]*fieldtable.Table
	tracker  *collision.Tracker
	fpByName map[string]uint64
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		tables:   make(map[string]*fieldtable.Table),
		tracker:  collision.NewTracker(),
		fpByName: make(map[string]uint64),
	}
}

// Register adds table under name, fingerprinted by xxHash64 over the name.
// It fails with ErrDuplicatePackage if name is already registered. A
// fingerprint collision between two distinct names does not fail
// registration; it only sets the flag HasFingerprintCollision reports, since
// collisions between package names (unlike field names within one table)
// cannot realistically be disambiguated by falling back to a longer key.
func (r *Registry) Register(name string, table *fieldtable.Table) error {
	if name == "" {
		return fmt.Errorf("%w: empty package name", errs.ErrValidationError)
	}
	if _, exists := r.tables[name]; exists {
		return errs.ErrDuplicatePackage
	}

	fp := hash.Fingerprint(name)
	if err := r.tracker.TrackName(name, fp); err != nil {
		return err
	}

	r.tables[name] = table
	r.fpByName[name] = fp

	return nil
}

// Lookup returns the table registered under name.
func (r *Registry) Lookup(name string) (*fieldtable.Table, error) {
	table, ok := r.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: package %q not registered", errs.ErrFieldNotFound, name)
	}

	return table, nil
}

// Fingerprint returns the xxHash64 fingerprint registered for name.
func (r *Registry) Fingerprint(name string) (uint64, error) {
	fp, ok := r.fpByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: package %q not registered", errs.ErrFieldNotFound, name)
	}

	return fp, nil
}

// HasFingerprintCollision reports whether two distinct registered package
// names fingerprinted to the same xxHash64 value. This should never happen
// in practice and likely indicates a naming bug, but is reported rather than
// treated as fatal since the registry can still function correctly as long
// as Lookup is always called by name, never by fingerprint alone.
func (r *Registry) HasFingerprintCollision() bool {
	return r.tracker.HasCollision()
}

// Names returns every registered package name, in registration order.
func (r *Registry) Names() []string {
	return r.tracker.Names()
}

// Count returns the number of registered packages.
func (r *Registry) Count() int {
	return r.tracker.Count()
}
