package catalog

import (
	"fmt"

	"github.com/aretw0/architect/pkg/domain"
)

// Entry is a single key and its descriptive text.
type Entry struct {
	Key  string
	Text string
}

// Set is an ordered, immutable key → text mapping.
type Set struct {
	entries []Entry
	index   map[string]int
}

// NewSet builds a Set from entries. Duplicate or empty keys are rejected.
func NewSet(entries ...Entry) (*Set, error) {
	s := &Set{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("empty key")
		}
		if _, dup := s.index[e.Key]; dup {
			return nil, fmt.Errorf("duplicate key %q", e.Key)
		}
		s.index[e.Key] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return s, nil
}

// MustSet is NewSet for static tables; it panics on invalid input.
func MustSet(entries ...Entry) *Set {
	s, err := NewSet(entries...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the text of key, matched by exact string equality.
func (s *Set) Lookup(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	i, ok := s.index[key]
	if !ok {
		return "", false
	}
	return s.entries[i].Text, true
}

// Has reports whether key is part of the set.
func (s *Set) Has(key string) bool {
	_, ok := s.Lookup(key)
	return ok
}

// Keys returns the keys in insertion order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in insertion order.
func (s *Set) Entries() []Entry {
	if s == nil {
		return nil
	}
	return append([]Entry(nil), s.entries...)
}

// Len returns the number of entries.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Catalog groups the four vocabularies used by the wizard.
type Catalog struct {
	Interiors     *Set
	Photographers *Set
	Lighting      *Set
	Clutter       *Set
}

// Validate checks that every set is populated and that the clutter set
// carries the entry used for light clutter.
func (c *Catalog) Validate() error {
	sets := []struct {
		name string
		set  *Set
	}{
		{"interiors", c.Interiors},
		{"photographers", c.Photographers},
		{"lighting", c.Lighting},
		{"clutter", c.Clutter},
	}
	for _, s := range sets {
		if s.set.Len() == 0 {
			return fmt.Errorf("catalog %s is empty", s.name)
		}
	}
	if !c.Clutter.Has(domain.ClutterLight) {
		return fmt.Errorf("catalog clutter is missing the %q entry", domain.ClutterLight)
	}
	return nil
}

// SetFor returns the catalog set backing step, or nil for steps validated
// against a fixed enumeration.
func (c *Catalog) SetFor(step domain.Step) *Set {
	switch step {
	case domain.StepInterior:
		return c.Interiors
	case domain.StepPhotographer:
		return c.Photographers
	case domain.StepLighting:
		return c.Lighting
	}
	return nil
}
