package goPerm

import "fmt"

// Mask is an 8-bit capability bitset. Each of the eight bits is an
// independent capability flag; goPerm assigns no meaning to individual
// bits. All operations are closed over the byte domain, so a Mask can
// never hold a value outside [0x00, 0xFF].
type Mask uint8

const (
	// MaskNone is the empty capability set. It doubles as the
	// conventional "admin role required" marker in [PermissionError].
	MaskNone Mask = 0x00
	// MaskFull has all eight capability bits set.
	MaskFull Mask = 0xFF
)

// Has reports whether m holds at least one of the bits in required.
// Has(MaskNone) is always false.
func (m Mask) Has(required Mask) bool {
	return m&required != 0
}

// Union returns the capability-set union of m and other (bitwise OR).
func (m Mask) Union(other Mask) Mask {
	return m | other
}

// Difference returns m with the bits of other removed (bitwise AND-NOT).
// Removing a bit that is not set is a no-op on that bit.
func (m Mask) Difference(other Mask) Mask {
	return m &^ other
}

// Raw returns the mask as its underlying byte.
func (m Mask) Raw() uint8 {
	return uint8(m)
}

// Bit returns a Mask with only bit i set, for i in [0, 7]. Out-of-range
// indices return MaskNone.
func Bit(i int) Mask {
	if i < 0 || i > 7 {
		return MaskNone
	}
	return Mask(1) << i
}

func (m Mask) String() string {
	return fmt.Sprintf("0x%02x", uint8(m))
}
