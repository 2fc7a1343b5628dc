package scanner

import (
	"sort"
	"strings"
	"time"

	"github.com/gnana997/uiregistry/pkg/registry"
	"github.com/gnana997/uiregistry/pkg/theme"
)

// Assembler turns deduplicated descriptors into a registry document.
type Assembler struct {
	Name string
	Root string
	// Theme is the scan root's theme, summarized into the document. May be
	// nil.
	Theme *theme.Context
	// Now stamps GeneratedAt; defaults to time.Now.
	Now func() time.Time
}

// Assemble builds the registry. Components come out sorted by name, tokens
// by id and diagnostics by file, kind and symbol.
func (as *Assembler) Assemble(descs []*descriptor, diags []registry.Diagnostic) *registry.Registry {
	now := time.Now
	if as.Now != nil {
		now = as.Now
	}
	reg := &registry.Registry{
		Name:        as.Name,
		Version:     registry.SchemaVersion,
		GeneratedAt: now().UTC(),
		Root:        as.Root,
		Components:  make([]registry.Component, 0, len(descs)),
		Tokens:      []registry.Token{},
	}
	if as.Theme != nil {
		reg.Theme = as.Theme.Summary()
	}

	sorted := append([]*descriptor(nil), descs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].component.Name < sorted[j].component.Name
	})

	tokens := newTokenDictionary()
	for _, d := range sorted {
		comp := d.component
		matches := TokensForClasses(d.classes)
		ids := make(map[string]bool, len(matches)+len(comp.TokensUsed))
		for _, id := range comp.TokensUsed {
			ids[id] = true
			tokens.addTyped(id, comp.Name)
		}
		for _, m := range matches {
			ids[m.ID] = true
			tokens.add(m, comp.Name, d.theme)
		}
		comp.TokensUsed = sortedKeys(ids)
		if len(comp.TokensUsed) == 0 {
			comp.TokensUsed = nil
		}

		if d.theme != nil {
			if usages := d.theme.Annotate(d.classes); len(usages) > 0 {
				comp.Theme = usages
			}
		}
		if comp.Props == nil {
			comp.Props = []registry.Prop{}
		}
		reg.Components = append(reg.Components, comp)
	}
	reg.Tokens = tokens.list()

	if len(diags) > 0 {
		reg.Diagnostics = append([]registry.Diagnostic(nil), diags...)
		sortDiagnostics(reg.Diagnostics)
	}
	return reg
}

type tokenDictionary struct {
	byID    map[string]*registry.Token
	classes map[string]map[string]bool
	users   map[string]map[string]bool
}

func newTokenDictionary() *tokenDictionary {
	return &tokenDictionary{
		byID:    make(map[string]*registry.Token),
		classes: make(map[string]map[string]bool),
		users:   make(map[string]map[string]bool),
	}
}

func (td *tokenDictionary) entry(id, category string, inferred bool) *registry.Token {
	tok, ok := td.byID[id]
	if !ok {
		tok = &registry.Token{ID: id, Category: category, Inferred: inferred}
		td.byID[id] = tok
		td.classes[id] = make(map[string]bool)
		td.users[id] = make(map[string]bool)
	}
	// a catalog match anywhere makes the token a catalog token
	if !inferred {
		tok.Inferred = false
	}
	return tok
}

func (td *tokenDictionary) add(m TokenMatch, user string, ctx *theme.Context) {
	tok := td.entry(m.ID, m.Category, m.Inferred)
	td.classes[m.ID][theme.StripClassModifiers(m.Class)] = true
	td.users[m.ID][user] = true

	if ctx == nil || tok.Verified {
		return
	}
	name, ok := ctx.VariableForClass(m.Class)
	if !ok {
		return
	}
	tok.Variable = name
	tok.Light, _ = ctx.Value(theme.ModeLight, name)
	if len(ctx.Dark) > 0 {
		tok.Dark, _ = ctx.Value(theme.ModeDark, name)
	}
	tok.Verified = true
}

// addTyped records a token id reported by type-aware analysis without a
// class behind it.
func (td *tokenDictionary) addTyped(id, user string) {
	category, _, _ := strings.Cut(id, ".")
	if _, ok := td.byID[id]; !ok {
		td.entry(id, category, true)
	}
	td.users[id][user] = true
}

func (td *tokenDictionary) list() []registry.Token {
	out := make([]registry.Token, 0, len(td.byID))
	for id, tok := range td.byID {
		t := *tok
		t.Classes = sortedKeys(td.classes[id])
		if users := sortedKeys(td.users[id]); len(users) > 0 {
			t.UsedBy = users
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortDiagnostics(diags []registry.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Message < b.Message
	})
}
