// Package fields provides an explicit registry for page-object extraction
// fields. A page-object type declares its fields once, at definition time,
// in a FieldSet; derived types extend a base set rather than re-declaring
// it, and ItemFromFields assembles an item by running every registered
// getter.
package fields

import (
	"fmt"
	"sync"
)

// Getter computes a single field value from a page object.
type Getter func(page any) (any, error)

// Processor transforms a field value before it is returned, e.g. trimming
// or normalizing extracted text. Processors run in declaration order.
type Processor func(value any) any

// Field describes one extractable field: its name, free-form metadata,
// output processors and the getter that computes it.
type Field struct {
	Name string
	Meta map[string]any
	Out  []Processor
	Get  Getter

	// Cached memoizes the getter's result per page object. The page
	// value must be comparable (a pointer is).
	Cached bool
}

// FieldSet is the ordered field registry of a page-object type. Build it
// once per type, at definition time (a package-level variable), and share
// it between instances; it is safe for concurrent readers.
type FieldSet struct {
	order  []string
	fields map[string]Field

	cache sync.Map // cacheKey -> any
}

type cacheKey struct {
	page any
	name string
}

// New returns an empty field set.
func New() *FieldSet {
	return &FieldSet{fields: make(map[string]Field)}
}

// Extend returns a new set containing the fields of every base, merged
// left to right: a later field with an existing name replaces it in place,
// keeping the original position; new names append. This is the
// inheritance merge — run it when the derived type is defined, never per
// instance.
func Extend(bases ...*FieldSet) *FieldSet {
	merged := New()
	for _, base := range bases {
		for _, name := range base.order {
			merged.Add(base.fields[name])
		}
	}
	return merged
}

// Add registers a field, replacing any previous field of the same name in
// place. It returns the set for chaining and panics on a nameless field or
// nil getter, since both are definition-time programming errors.
func (s *FieldSet) Add(f Field) *FieldSet {
	if f.Name == "" {
		panic("fields: field without a name")
	}
	if f.Get == nil {
		panic(fmt.Sprintf("fields: field %q without a getter", f.Name))
	}
	if _, exists := s.fields[f.Name]; !exists {
		s.order = append(s.order, f.Name)
	}
	s.fields[f.Name] = f
	return s
}

// Names returns the field names in declaration order.
func (s *FieldSet) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Lookup returns the named field.
func (s *FieldSet) Lookup(name string) (Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Len returns the number of registered fields.
func (s *FieldSet) Len() int { return len(s.order) }

// Extract computes the named field for page, applying its processors and
// honoring its cache flag.
func (s *FieldSet) Extract(page any, name string) (any, error) {
	f, ok := s.fields[name]
	if !ok {
		return nil, fmt.Errorf("field %q is not registered", name)
	}
	if f.Cached {
		if v, ok := s.cache.Load(cacheKey{page: page, name: name}); ok {
			return v, nil
		}
	}
	value, err := f.Get(page)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", name, err)
	}
	for _, proc := range f.Out {
		value = proc(value)
	}
	if f.Cached {
		s.cache.Store(cacheKey{page: page, name: name}, value)
	}
	return value, nil
}

// Provider is implemented by page objects: it exposes the type's field
// set.
type Provider interface {
	FieldSet() *FieldSet
}

// ItemFromFields builds an item by extracting every registered field from
// page, in declaration order. The first failing field aborts the whole
// item.
func ItemFromFields(page Provider) (map[string]any, error) {
	set := page.FieldSet()
	item := make(map[string]any, set.Len())
	for _, name := range set.order {
		value, err := set.Extract(page, name)
		if err != nil {
			return nil, err
		}
		item[name] = value
	}
	return item, nil
}
