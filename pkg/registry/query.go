package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// QueryService provides read-only lookups over a loaded registry.
type QueryService struct {
	Registry *Registry

	byName     map[string]*Component
	byCategory map[string][]*Component
}

// NewQueryService indexes reg for lookups. reg must not be modified
// afterwards.
func NewQueryService(reg *Registry) *QueryService {
	q := &QueryService{
		Registry:   reg,
		byName:     make(map[string]*Component, len(reg.Components)),
		byCategory: make(map[string][]*Component),
	}
	for i := range reg.Components {
		comp := &reg.Components[i]
		q.byName[comp.Name] = comp
		q.byCategory[comp.Category] = append(q.byCategory[comp.Category], comp)
	}
	return q
}

// LoadAndQuery loads a registry file and returns a ready-to-use QueryService.
func LoadAndQuery(path string) (*QueryService, error) {
	reg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewQueryService(reg), nil
}

// Find looks up a component by exposed name.
func (q *QueryService) Find(name string) (*Component, bool) {
	comp, ok := q.byName[name]
	return comp, ok
}

// Categories returns the category names in sorted order.
func (q *QueryService) Categories() []string {
	cats := make([]string, 0, len(q.byCategory))
	for c := range q.byCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// ListComponents returns components filtered by category and a
// case-insensitive name keyword. Empty filters match everything.
func (q *QueryService) ListComponents(category, keyword string) []*Component {
	var candidates []*Component
	if category != "" {
		candidates = q.byCategory[category]
	} else {
		candidates = make([]*Component, 0, len(q.Registry.Components))
		for i := range q.Registry.Components {
			candidates = append(candidates, &q.Registry.Components[i])
		}
	}

	keyword = strings.ToLower(keyword)
	result := make([]*Component, 0, len(candidates))
	for _, comp := range candidates {
		if keyword != "" && !strings.Contains(strings.ToLower(comp.Name), keyword) {
			continue
		}
		result = append(result, comp)
	}
	return result
}

// FilterTokens returns tokens whose id matches pattern and whose category
// equals category. Patterns are globs over dot-separated ids: "*" matches one
// segment, "**" any number. Empty pattern or category matches everything.
func (q *QueryService) FilterTokens(pattern, category string) ([]Token, error) {
	var g glob.Glob
	if pattern != "" {
		var err error
		g, err = glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid token pattern %q: %w", pattern, err)
		}
	}

	result := make([]Token, 0)
	for _, tok := range q.Registry.Tokens {
		if category != "" && tok.Category != category {
			continue
		}
		if g != nil && !g.Match(tok.ID) {
			continue
		}
		result = append(result, tok)
	}
	return result, nil
}

// VariantOptions lists the options of one variant group of a component.
func (q *QueryService) VariantOptions(component, group string) ([]string, error) {
	comp, ok := q.byName[component]
	if !ok {
		return nil, fmt.Errorf("component %q not found", component)
	}
	opts, ok := comp.Variants.Get(group)
	if !ok {
		return nil, fmt.Errorf("component %q has no variant group %q (groups: %s)",
			component, group, strings.Join(comp.Variants.Names(), ", "))
	}
	return opts, nil
}
