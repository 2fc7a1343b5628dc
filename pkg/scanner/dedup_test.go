package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiregistry/pkg/registry"
)

func desc(name, file string, canonical bool, kind registry.ExportKind) *descriptor {
	return &descriptor{
		component: registry.Component{
			Name:       name,
			SourceFile: file,
			Provenance: registry.Provenance{Canonical: canonical, ExportKind: kind},
		},
		file: "/p/" + file,
	}
}

func kept(dd *Deduplicator) []registry.Component {
	var out []registry.Component
	for _, d := range dd.descriptors() {
		out = append(out, d.component)
	}
	return out
}

func TestDeduplicator_CanonicalBeatsBarrel(t *testing.T) {
	canonical := desc("Button", "button.tsx", true, registry.ExportNamed)
	barrel := desc("Button", "button.tsx", false, registry.ExportNamed)
	barrel.component.Provenance.ReExportedFrom = "index.ts"

	orders := [][]*descriptor{{canonical, barrel}, {barrel, canonical}}
	for _, order := range orders {
		dd := NewDeduplicator()
		for _, d := range order {
			dd.Add(d)
		}
		comps := kept(dd)
		require.Len(t, comps, 1)
		assert.True(t, comps[0].Provenance.Canonical)
		assert.Empty(t, comps[0].Provenance.ReExportedFrom)
		assert.Equal(t, 1, dd.Dropped())
	}
}

func TestDeduplicator_NamedBeatsDefault(t *testing.T) {
	named := desc("Card", "a/card.tsx", true, registry.ExportNamed)
	def := desc("Card", "b/card.tsx", true, registry.ExportDefault)

	for _, order := range [][]*descriptor{{named, def}, {def, named}} {
		dd := NewDeduplicator()
		for _, d := range order {
			dd.Add(d)
		}
		comps := kept(dd)
		require.Len(t, comps, 1)
		assert.Equal(t, "a/card.tsx", comps[0].SourceFile)
	}
}

func TestDeduplicator_EqualRankKeepsFirst(t *testing.T) {
	dd := NewDeduplicator()
	assert.True(t, dd.Add(desc("Icon", "a.tsx", true, registry.ExportNamed)))
	assert.False(t, dd.Add(desc("Icon", "b.tsx", true, registry.ExportNamed)))
	assert.Equal(t, "a.tsx", kept(dd)[0].SourceFile)
}

func TestDeduplicator_SortedByName(t *testing.T) {
	dd := NewDeduplicator()
	for _, name := range []string{"Tabs", "Alert", "Card"} {
		dd.Add(desc(name, "x.tsx", true, registry.ExportNamed))
	}
	assert.Len(t, kept(dd), 3)
	names := make([]string, 0, 3)
	for _, c := range kept(dd) {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Alert", "Card", "Tabs"}, names)
	assert.Zero(t, dd.Dropped())
}
