package statetree

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// treeDomain is the domain-separation prefix for tree hashing.
// Format: SHA256(domain + 0x00 + canonical node bytes). The null separator
// prevents domain/payload boundary ambiguity. The version suffix enables
// future encoding migration.
const treeDomain = "statewalk/tree/v1"

// HashSize is the size of a Hash in bytes.
const HashSize = sha256.Size

// Hash is a fixed-size content fingerprint of a canonical tree. Equality and
// ordering are defined purely over the raw bytes, never over object identity,
// and are stable across runs for identical content.
type Hash [HashSize]byte

// Hex returns the lowercase hex encoding of the hash.
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Short returns a truncated hex form for logs and dumps.
func (h Hash) Short() string {
	return hex.EncodeToString(h[:6])
}

// Compare orders two hashes by their raw bytes.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// ParseHash decodes a full-length hex string produced by Hex.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("parse hash: %w", err)
	}
	if len(b) != HashSize {
		return h, fmt.Errorf("parse hash: want %d bytes, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashTree computes the content hash of v.
//
// Reduction is depth-first post-order: every compound child (Map, Seq,
// Choice) is hashed first and substituted by a HashRef before the parent's
// single-level encoding is hashed. A parent's hash is therefore a pure
// function of its flat leaves plus its children's hashes, so mutating one
// subtree only invalidates hashes on the path to the root.
func HashTree(v Value) (Hash, error) {
	flat, err := flatten(v, "$")
	if err != nil {
		return Hash{}, err
	}
	return hashFlat(flat, "$")
}

// Flatten returns v with every compound child reduced to a HashRef. The
// result is a single-level node suitable for diagnostics and incremental
// re-hashing.
func Flatten(v Value) (Value, error) {
	return flatten(v, "$")
}

func flatten(v Value, path string) (Value, error) {
	switch val := v.(type) {
	case Seq:
		out := make(Seq, len(val))
		for i, e := range val {
			r, err := reduceChild(e, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil

	case Map:
		out := make(Map, len(val))
		for _, k := range val.SortedKeys() {
			r, err := reduceChild(val[k], fmt.Sprintf("%s.%s", path, k))
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil

	case Choice:
		out := make([]Value, len(val.members))
		for i, e := range val.members {
			r, err := reduceChild(e, fmt.Sprintf("%s{%d}", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return Choice{members: out}, nil

	default:
		return v, nil
	}
}

// reduceChild substitutes a compound child with the hash of its own flattened
// form; flat children pass through unchanged.
func reduceChild(v Value, path string) (Value, error) {
	if v == nil {
		return nil, &EncodeError{Path: path, Err: errNilValue}
	}
	if !isCompound(v) {
		return v, nil
	}
	flat, err := flatten(v, path)
	if err != nil {
		return nil, err
	}
	h, err := hashFlat(flat, path)
	if err != nil {
		return nil, err
	}
	return HashRef(h), nil
}

func hashFlat(v Value, path string) (Hash, error) {
	var buf bytes.Buffer
	if err := encodeFlat(&buf, v, path); err != nil {
		return Hash{}, err
	}
	hasher := sha256.New()
	hasher.Write([]byte(treeDomain))
	hasher.Write([]byte{0x00})
	hasher.Write(buf.Bytes())
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h, nil
}

// IsEncodeError reports whether err is, or wraps, an EncodeError.
func IsEncodeError(err error) bool {
	var ee *EncodeError
	return errors.As(err, &ee)
}
