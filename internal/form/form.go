// Package form models a submitted HTML form as an ordered list of name/value
// entries, the same view a browser hands to FormData.
package form

import (
	"fmt"
	"strings"
)

// Field is one submitted control.
type Field struct {
	Name  string
	Value string
}

// Form holds entries in document order. Names may repeat (checkbox groups).
type Form struct {
	fields []Field
}

// New returns a form holding the given entries.
func New(fields ...Field) *Form {
	f := &Form{}
	f.fields = append(f.fields, fields...)
	return f
}

// Add appends an entry, keeping any existing entries with the same name.
func (f *Form) Add(name, value string) {
	f.fields = append(f.fields, Field{Name: name, Value: value})
}

// Set replaces the first entry named name and drops the rest, or appends one.
func (f *Form) Set(name, value string) {
	out := f.fields[:0]
	set := false
	for _, fl := range f.fields {
		if fl.Name != name {
			out = append(out, fl)
			continue
		}
		if !set {
			out = append(out, Field{Name: name, Value: value})
			set = true
		}
	}
	f.fields = out
	if !set {
		f.fields = append(f.fields, Field{Name: name, Value: value})
	}
}

// Get returns the first value for name, or "" when absent.
func (f *Form) Get(name string) string {
	for _, fl := range f.fields {
		if fl.Name == name {
			return fl.Value
		}
	}
	return ""
}

// GetAll returns every value for name in document order. The result is never nil.
func (f *Form) GetAll(name string) []string {
	values := []string{}
	for _, fl := range f.fields {
		if fl.Name == name {
			values = append(values, fl.Value)
		}
	}
	return values
}

// Entries returns a copy of all entries in document order.
func (f *Form) Entries() []Field {
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Reset blanks every value, leaving the field names in place.
func (f *Form) Reset() {
	for i := range f.fields {
		f.fields[i].Value = ""
	}
}

// ParseAssignments turns "key=value" pairs into fields. The value may be
// empty; the key may not.
func ParseAssignments(pairs []string) ([]Field, error) {
	fields := make([]Field, 0, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q, want key=value", p)
		}
		fields = append(fields, Field{Name: key, Value: value})
	}
	return fields, nil
}
