// Package object provides the tracked-object boundary between caller-owned
// mutable state and the canonical state trees the search engine hashes.
//
// A Record is a named object with a declared field set. All reads and writes
// go through Get/Set at this fixed boundary; the engine never inspects a
// tracked object's internals directly, and never hashes by object identity.
package object

import (
	"fmt"
	"sort"

	"github.com/statewalk/statewalk/internal/statetree"
)

// FieldError reports access to a field outside the record's declared set.
type FieldError struct {
	Record string
	Field  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("object: record %q has no field %q", e.Record, e.Field)
}

// Record is a tracked mutable object: a name plus a declared set of fields.
// Fields start Absent until written. The field set is fixed at construction;
// Get and Set reject undeclared fields so silent state drift cannot hide from
// the hasher.
type Record struct {
	name   string
	fields map[string]statetree.Value
}

// NewRecord declares a tracked record with the given field names.
func NewRecord(name string, fields ...string) *Record {
	r := &Record{
		name:   name,
		fields: make(map[string]statetree.Value, len(fields)),
	}
	for _, f := range fields {
		r.fields[f] = statetree.Absent{}
	}
	return r
}

// Name returns the record's identity within a snapshot.
func (r *Record) Name() string {
	return r.name
}

// FieldNames returns the declared field names in sorted order.
func (r *Record) FieldNames() []string {
	names := make([]string, 0, len(r.fields))
	for f := range r.fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// Get reads a declared field.
func (r *Record) Get(field string) (statetree.Value, error) {
	v, ok := r.fields[field]
	if !ok {
		return nil, &FieldError{Record: r.name, Field: field}
	}
	return v, nil
}

// Set writes a declared field.
func (r *Record) Set(field string, v statetree.Value) error {
	if _, ok := r.fields[field]; !ok {
		return &FieldError{Record: r.name, Field: field}
	}
	if v == nil {
		v = statetree.Absent{}
	}
	r.fields[field] = v
	return nil
}

// ToTree snapshots the record as a canonical map of its fields.
func (r *Record) ToTree() statetree.Value {
	m := make(statetree.Map, len(r.fields))
	for f, v := range r.fields {
		m[f] = statetree.Clone(v)
	}
	return m
}

// FromTree restores the record's fields from a snapshot produced by ToTree.
// The tree must be a map covering exactly the declared field set.
func (r *Record) FromTree(v statetree.Value) error {
	m, ok := v.(statetree.Map)
	if !ok {
		return fmt.Errorf("object: restore %q: want map, got %T", r.name, v)
	}
	for f := range m {
		if _, declared := r.fields[f]; !declared {
			return &FieldError{Record: r.name, Field: f}
		}
	}
	for f := range r.fields {
		v, ok := m[f]
		if !ok {
			return fmt.Errorf("object: restore %q: snapshot missing field %q", r.name, f)
		}
		r.fields[f] = statetree.Clone(v)
	}
	return nil
}

// Clone returns an independent copy sharing no mutable state with r.
func (r *Record) Clone() *Record {
	cp := &Record{
		name:   r.name,
		fields: make(map[string]statetree.Value, len(r.fields)),
	}
	for f, v := range r.fields {
		cp.fields[f] = statetree.Clone(v)
	}
	return cp
}
