// Package safeconv holds integer conversions that panic instead of wrapping.
package safeconv

// MustIntToUint64 converts a length or byte count to uint64.
// It panics on negative input, which would mean a corrupted count.
func MustIntToUint64(v int) uint64 {
	if v < 0 {
		panic("safeconv: negative int to uint64 conversion")
	}

	return uint64(v)
}
