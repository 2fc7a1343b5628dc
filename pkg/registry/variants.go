package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// VariantGroup is one named set of mutually exclusive style options.
type VariantGroup struct {
	Name    string
	Options []string
}

// Variants is an ordered list of variant groups. It serializes as a JSON
// object whose key order follows the source declaration.
type Variants []VariantGroup

// Get returns the options of the named group.
func (v Variants) Get(name string) ([]string, bool) {
	for _, g := range v {
		if g.Name == name {
			return g.Options, true
		}
	}
	return nil, false
}

// Names returns the group names in declaration order.
func (v Variants) Names() []string {
	names := make([]string, len(v))
	for i, g := range v {
		names[i] = g.Name
	}
	return names
}

// Map flattens the groups into a map, losing order.
func (v Variants) Map() map[string][]string {
	m := make(map[string][]string, len(v))
	for _, g := range v {
		m[g.Name] = g.Options
	}
	return m
}

func (v Variants) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(g.Name)
		if err != nil {
			return nil, err
		}
		opts := g.Options
		if opts == nil {
			opts = []string{}
		}
		val, err := json.Marshal(opts)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (v *Variants) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*v = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("variants: expected object, got %v", tok)
	}

	var groups Variants
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("variants: expected string key, got %v", keyTok)
		}
		var opts []string
		if err := dec.Decode(&opts); err != nil {
			return fmt.Errorf("variants: group %q: %w", key, err)
		}
		groups = append(groups, VariantGroup{Name: key, Options: opts})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*v = groups
	return nil
}
