// Package statetree defines the canonical value model for tracked state and
// its content-addressed hashing.
//
// Tracked objects are snapshotted into trees of statetree values: flat leaves
// (strings, integers, booleans, byte strings, the absent marker), positional
// sequences, string-keyed maps, and finite nondeterministic choice sets.
//
// Hashing is Merkle-style: before a node is hashed, every compound child is
// reduced to its own Hash and substituted in place, so a node's hash depends
// only on its flat leaves and the hashes of its compound children. This makes
// whole-state equality an O(1) hash comparison and bounds the cost of
// re-hashing after a local mutation to the path from the mutated leaf to the
// root.
//
// The byte encoding is deterministic: map entries are emitted in sorted key
// order, sequences positionally, strings NFC-normalized, and every value is
// framed with an explicit type tag so an embedded Hash can never be confused
// with a byte-string leaf. Identical content therefore hashes identically
// regardless of construction or insertion order.
package statetree
