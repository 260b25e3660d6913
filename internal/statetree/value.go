package statetree

import (
	"bytes"
	"fmt"
	"sort"
)

// Value is a sealed interface over the canonical state value types.
// Only String, Int, Bool, Bytes, Absent, HashRef, Seq, Map, and Choice
// implement it. Floats are deliberately excluded: they break deterministic
// encoding across platforms.
type Value interface {
	treeValue() // Sealed - only the types in this package implement it
}

// String is a UTF-8 string leaf. NFC normalization happens at the encoding
// boundary, not at construction.
type String string

func (String) treeValue() {}

// Int is an integer leaf. Always int64, never a float.
type Int int64

func (Int) treeValue() {}

// Bool is a boolean leaf.
type Bool bool

func (Bool) treeValue() {}

// Bytes is an opaque byte-string leaf.
type Bytes []byte

func (Bytes) treeValue() {}

// Absent marks a field with no value. Distinct from an empty string or a
// missing map key: a field that exists but is unset still contributes to the
// state's identity.
type Absent struct{}

func (Absent) treeValue() {}

// HashRef is an embedded Hash standing in for an already-reduced compound
// child. The encoder frames it with its own type tag so it can never collide
// with a Bytes leaf of the same raw content.
type HashRef Hash

func (HashRef) treeValue() {}

// Seq is an ordered sequence of values. Position is significant: two
// sequences with the same members in different orders hash differently.
type Seq []Value

func (Seq) treeValue() {}

// Map is a string-keyed mapping with unique keys. Iteration for encoding
// always uses sorted key order, so insertion order never leaks into the hash.
type Map map[string]Value

func (Map) treeValue() {}

// Choice is a finite nondeterministic choice set. The evaluator forks one
// successor per member when a step consumes it. Members enumerate in a fixed
// content-derived order (sorted by per-member canonical hash), never in
// construction order, so two runs over the same input always fork identically.
type Choice struct {
	members []Value
}

func (Choice) treeValue() {}

// NewChoice builds a choice set from the given members. Duplicates (by
// canonical hash) are coalesced. Returns an error if any member cannot be
// canonically encoded, since an unhashable member would make the enumeration
// order undefined.
func NewChoice(members ...Value) (Choice, error) {
	type ranked struct {
		h Hash
		v Value
	}
	rs := make([]ranked, 0, len(members))
	for i, m := range members {
		h, err := HashTree(m)
		if err != nil {
			return Choice{}, &EncodeError{
				Path: fmt.Sprintf("choice[%d]", i),
				Err:  err,
			}
		}
		rs = append(rs, ranked{h: h, v: m})
	}
	sort.Slice(rs, func(i, j int) bool {
		return bytes.Compare(rs[i].h[:], rs[j].h[:]) < 0
	})
	out := make([]Value, 0, len(rs))
	var prev Hash
	for i, r := range rs {
		if i > 0 && r.h == prev {
			continue
		}
		out = append(out, r.v)
		prev = r.h
	}
	return Choice{members: out}, nil
}

// MustChoice is like NewChoice but panics on error. Use only in tests or when
// members are known to be encodable.
func MustChoice(members ...Value) Choice {
	c, err := NewChoice(members...)
	if err != nil {
		panic(err)
	}
	return c
}

// Members returns the choice members in their fixed enumeration order.
// The returned slice is shared; callers must not mutate it.
func (c Choice) Members() []Value {
	return c.members
}

// Len returns the number of distinct members.
func (c Choice) Len() int {
	return len(c.members)
}

// SortedKeys returns the map's keys in the byte order used by the canonical
// encoder.
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of v. Compound nodes are copied recursively;
// leaves are value types and copy by assignment. Byte leaves are duplicated
// so no mutable backing array is shared between a configuration and its
// successors.
func Clone(v Value) Value {
	switch val := v.(type) {
	case Seq:
		out := make(Seq, len(val))
		for i, e := range val {
			out[i] = Clone(e)
		}
		return out
	case Map:
		out := make(Map, len(val))
		for k, e := range val {
			out[k] = Clone(e)
		}
		return out
	case Bytes:
		out := make(Bytes, len(val))
		copy(out, val)
		return out
	case Choice:
		// Choice members are never mutated after construction.
		return val
	default:
		return v
	}
}

// isCompound reports whether v must be reduced to a Hash before its parent
// can be encoded.
func isCompound(v Value) bool {
	switch v.(type) {
	case Seq, Map, Choice:
		return true
	default:
		return false
	}
}
