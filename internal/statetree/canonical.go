package statetree

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Canonical wire tags. One byte per value, written before the payload, so the
// decoder of a framed node can never confuse value kinds - in particular an
// embedded HashRef can never collide with a Bytes leaf of the same content.
const (
	tagString  byte = 0x01
	tagInt     byte = 0x02
	tagBool    byte = 0x03
	tagBytes   byte = 0x04
	tagAbsent  byte = 0x05
	tagHashRef byte = 0x06
	tagSeq     byte = 0x10
	tagMap     byte = 0x11
	tagChoice  byte = 0x12
)

// EncodeError reports a value that could not be canonically encoded.
// Path locates the offending node from the root of the encoded tree.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("statetree: cannot encode: %v", e.Err)
	}
	return fmt.Sprintf("statetree: cannot encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// encodeFlat serializes a single-level node whose compound children have
// already been substituted by HashRefs. It is an internal invariant violation
// for a raw Seq, Map, or Choice to appear below the top level here.
func encodeFlat(buf *bytes.Buffer, v Value, path string) error {
	switch val := v.(type) {
	case String:
		buf.WriteByte(tagString)
		s := norm.NFC.String(string(val))
		writeLen(buf, len(s))
		buf.WriteString(s)
		return nil

	case Int:
		buf.WriteByte(tagInt)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(val))
		buf.Write(b[:])
		return nil

	case Bool:
		buf.WriteByte(tagBool)
		if val {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		return nil

	case Bytes:
		buf.WriteByte(tagBytes)
		writeLen(buf, len(val))
		buf.Write(val)
		return nil

	case Absent:
		buf.WriteByte(tagAbsent)
		return nil

	case HashRef:
		buf.WriteByte(tagHashRef)
		buf.Write(val[:])
		return nil

	case Seq:
		buf.WriteByte(tagSeq)
		writeLen(buf, len(val))
		for i, e := range val {
			child := fmt.Sprintf("%s[%d]", path, i)
			if isCompound(e) {
				return &EncodeError{Path: child, Err: errUnreducedChild}
			}
			if err := encodeFlat(buf, e, child); err != nil {
				return err
			}
		}
		return nil

	case Map:
		buf.WriteByte(tagMap)
		keys := val.SortedKeys()
		writeLen(buf, len(keys))
		for _, k := range keys {
			nk := norm.NFC.String(k)
			writeLen(buf, len(nk))
			buf.WriteString(nk)
			child := fmt.Sprintf("%s.%s", path, k)
			e := val[k]
			if e == nil {
				return &EncodeError{Path: child, Err: errNilValue}
			}
			if isCompound(e) {
				return &EncodeError{Path: child, Err: errUnreducedChild}
			}
			if err := encodeFlat(buf, e, child); err != nil {
				return err
			}
		}
		return nil

	case Choice:
		// Members are already in canonical order; by the time a choice set is
		// encoded each member has been reduced to a HashRef.
		buf.WriteByte(tagChoice)
		writeLen(buf, len(val.members))
		for i, e := range val.members {
			child := fmt.Sprintf("%s{%d}", path, i)
			if isCompound(e) {
				return &EncodeError{Path: child, Err: errUnreducedChild}
			}
			if err := encodeFlat(buf, e, child); err != nil {
				return err
			}
		}
		return nil

	case nil:
		return &EncodeError{Path: path, Err: errNilValue}

	default:
		return &EncodeError{Path: path, Err: fmt.Errorf("unsupported value type %T", v)}
	}
}

// writeLen emits a fixed-width big-endian length prefix. Fixed width keeps
// the framing unambiguous without a varint decoder.
func writeLen(buf *bytes.Buffer, n int) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(n))
	buf.Write(b[:])
}

var (
	errUnreducedChild = fmt.Errorf("compound child was not reduced to a hash")
	errNilValue       = fmt.Errorf("nil value")
)
