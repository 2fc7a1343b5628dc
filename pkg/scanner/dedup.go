package scanner

import (
	"sort"

	"github.com/gnana997/uiregistry/pkg/registry"
	"github.com/gnana997/uiregistry/pkg/theme"
)

// descriptor is a component on its way into the registry, carrying the
// classes it uses for token and theme work.
type descriptor struct {
	component registry.Component
	classes   []string
	// file is the absolute path of the declaring file.
	file  string
	theme *theme.Context
}

// rank orders duplicates of one exposed name: canonical beats barrel, then
// named beats default.
func (d *descriptor) rank() int {
	r := 0
	if d.component.Provenance.Canonical {
		r += 2
	}
	if d.component.Provenance.ExportKind == registry.ExportNamed {
		r++
	}
	return r
}

// Deduplicator keeps exactly one descriptor per exposed name. Duplicates
// are folded incrementally: a later candidate replaces the kept one only
// when it ranks strictly higher, so the outcome does not depend on arrival
// order except between equal ranks, where the first is kept.
type Deduplicator struct {
	byName  map[string]int
	kept    []*descriptor
	dropped int
}

// NewDeduplicator creates an empty deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{byName: make(map[string]int)}
}

// Add folds d in and reports whether it is now the kept descriptor for its
// name.
func (dd *Deduplicator) Add(d *descriptor) bool {
	name := d.component.Name
	i, ok := dd.byName[name]
	if !ok {
		dd.byName[name] = len(dd.kept)
		dd.kept = append(dd.kept, d)
		return true
	}
	dd.dropped++
	if d.rank() > dd.kept[i].rank() {
		dd.kept[i] = d
		return true
	}
	return false
}

// Dropped reports how many duplicates were discarded or replaced.
func (dd *Deduplicator) Dropped() int {
	return dd.dropped
}

// descriptors returns the kept descriptors sorted by name.
func (dd *Deduplicator) descriptors() []*descriptor {
	out := append([]*descriptor(nil), dd.kept...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].component.Name < out[j].component.Name
	})
	return out
}
