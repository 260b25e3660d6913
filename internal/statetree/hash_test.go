package statetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashDeterminism(t *testing.T) {
	// Build the same content twice with different insertion orders.
	a := Map{}
	a["alpha"] = String("x")
	a["beta"] = Int(7)
	a["gamma"] = Seq{Bool(true), Bytes{0x01, 0x02}}

	b := Map{}
	b["gamma"] = Seq{Bool(true), Bytes{0x01, 0x02}}
	b["beta"] = Int(7)
	b["alpha"] = String("x")

	ha, err := HashTree(a)
	require.NoError(t, err)
	hb, err := HashTree(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb, "insertion order must not affect the hash")
}

func TestHashDistinguishesContent(t *testing.T) {
	h1, err := HashTree(Map{"k": String("a")})
	require.NoError(t, err)
	h2, err := HashTree(Map{"k": String("b")})
	require.NoError(t, err)
	h3, err := HashTree(Map{"j": String("a")})
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "different values must hash differently")
	assert.NotEqual(t, h1, h3, "different keys must hash differently")
}

func TestSequenceOrderIsSignificant(t *testing.T) {
	h1, err := HashTree(Seq{String("a"), String("b")})
	require.NoError(t, err)
	h2, err := HashTree(Seq{String("b"), String("a")})
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHashRefDistinctFromBytes(t *testing.T) {
	// A HashRef and a Bytes leaf with identical raw content must not collide:
	// the tag byte keeps the two encodings apart.
	var ref HashRef
	for i := range ref {
		ref[i] = byte(i)
	}
	raw := make(Bytes, HashSize)
	copy(raw, ref[:])

	h1, err := HashTree(Map{"v": ref})
	require.NoError(t, err)
	h2, err := HashTree(Map{"v": raw})
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestMerkleLocality(t *testing.T) {
	// Mutating one subtree must not change the hash of an unrelated sibling.
	left := Map{"x": Int(1)}
	tree := Map{
		"left":  left,
		"right": Map{"y": Int(2)},
	}

	flatBefore, err := Flatten(tree)
	require.NoError(t, err)
	leftBefore := flatBefore.(Map)["left"]

	tree["right"] = Map{"y": Int(99)}

	flatAfter, err := Flatten(tree)
	require.NoError(t, err)
	leftAfter := flatAfter.(Map)["left"]

	assert.Equal(t, leftBefore, leftAfter, "sibling mutation must not move the left subtree hash")

	rootBefore, err := HashTree(Map{"left": left, "right": Map{"y": Int(2)}})
	require.NoError(t, err)
	rootAfter, err := HashTree(tree)
	require.NoError(t, err)
	assert.NotEqual(t, rootBefore, rootAfter, "root hash must see the mutation")
}

func TestCompoundChildSubstitution(t *testing.T) {
	// The flat form of a parent holds HashRefs for compound children and raw
	// leaves for flat children.
	child := Seq{Int(1), Int(2)}
	parent := Map{"nested": child, "leaf": String("v")}

	flat, err := Flatten(parent)
	require.NoError(t, err)

	m := flat.(Map)
	_, isRef := m["nested"].(HashRef)
	assert.True(t, isRef, "compound child must be reduced to a HashRef")
	assert.Equal(t, String("v"), m["leaf"])

	childHash, err := HashTree(child)
	require.NoError(t, err)
	assert.Equal(t, HashRef(childHash), m["nested"], "substituted ref must equal the child's own hash")
}

func TestHashAbsent(t *testing.T) {
	h1, err := HashTree(Map{"f": Absent{}})
	require.NoError(t, err)
	h2, err := HashTree(Map{"f": String("")})
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "absent is not the empty string")
}

func TestEncodeErrorOnNil(t *testing.T) {
	_, err := HashTree(Map{"bad": nil})
	require.Error(t, err)
	assert.True(t, IsEncodeError(err))
}

func TestChoiceEnumerationOrderIsContentDerived(t *testing.T) {
	c1, err := NewChoice(String("b"), String("a"), String("c"))
	require.NoError(t, err)
	c2, err := NewChoice(String("c"), String("b"), String("a"))
	require.NoError(t, err)

	assert.Equal(t, c1.Members(), c2.Members(), "enumeration order must not depend on construction order")

	h1, err := HashTree(c1)
	require.NoError(t, err)
	h2, err := HashTree(c2)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestChoiceCoalescesDuplicates(t *testing.T) {
	c, err := NewChoice(Int(1), Int(2), Int(1))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestCloneIsDeep(t *testing.T) {
	orig := Map{
		"seq":   Seq{Int(1)},
		"bytes": Bytes{0xAA},
	}
	cp := Clone(orig).(Map)

	cp["seq"].(Seq)[0] = Int(2)
	cp["bytes"].(Bytes)[0] = 0xBB

	assert.Equal(t, Int(1), orig["seq"].(Seq)[0])
	assert.Equal(t, byte(0xAA), orig["bytes"].(Bytes)[0])
}

func TestParseHashRoundTrip(t *testing.T) {
	h, err := HashTree(String("round-trip"))
	require.NoError(t, err)

	parsed, err := ParseHash(h.Hex())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)

	_, err = ParseHash("zz")
	assert.Error(t, err)
}
