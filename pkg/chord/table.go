// Package chord maps 6-key chord bitmasks to GKOS reference numbers.
//
// The six physical keys are A=0x01, B=0x02, C=0x04, D=0x08, E=0x10, F=0x20.
// Any non-zero combination of them (1-63) is a valid chord. The GKOS
// specification enumerates outcomes by a dense reference number 1-63 rather
// than by bitmask, so layouts are addressed by ref and this package holds
// the bijection between the two encodings.
package chord

// refToBitmask is the official GKOS combo table, ref (1-63) -> chord
// bitmask, extracted from gkos.com/gkos/table. Index 0 is unused.
var refToBitmask = [64]int{
	0, 1, 2, 4, 8, 16, 32, 24, 25, 26, 28, 48, 49, 50, 52, 3, 11, 19, 35, 6, 14, 22, 38, 40, 41, 42, 44,
	5, 13, 21, 37, 34, 20, 12, 33, 17, 10, 51, 30, 53, 46, 29, 9, 36, 27, 54, 7, 15, 23, 39, 56, 57, 58, 60,
	59, 61, 31, 62, 43, 18, 45, 63, 47, 55,
}

// bitmaskToRef is the inverse of refToBitmask, built once at init.
var bitmaskToRef = buildBitmaskToRef()

func buildBitmaskToRef() [64]int {
	var m [64]int
	for ref := 1; ref <= 63; ref++ {
		mask := refToBitmask[ref]
		if mask >= 1 && mask < 64 {
			m[mask] = ref
		}
	}
	return m
}

// ToRef converts a chord bitmask to its GKOS ref (1-63).
// Returns 0 for an invalid chord (zero or out of range).
func ToRef(bitmask int) int {
	if bitmask <= 0 || bitmask >= 64 {
		return 0
	}
	return bitmaskToRef[bitmask]
}

// ToChord converts a GKOS ref (1-63) to its chord bitmask.
// Returns 0 for an invalid ref.
func ToChord(ref int) int {
	if ref < 1 || ref > 63 {
		return 0
	}
	return refToBitmask[ref]
}
