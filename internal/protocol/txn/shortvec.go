package txn

import (
	"errors"
	"fmt"
)

var errShortVecOverflow = errors.New("compact-u16 overflows")

// appendCompactU16 appends n in the ledger's compact-u16 encoding: seven bits
// per byte, least significant first, high bit set on every byte but the last.
func appendCompactU16(b []byte, n int) []byte {
	v := uint16(n)
	for {
		elem := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(b, elem)
		}
		b = append(b, elem|0x80)
	}
}

// readCompactU16 decodes a compact-u16 and returns the value and bytes consumed.
func readCompactU16(b []byte) (int, int, error) {
	var v int
	for i := 0; i < 3; i++ {
		if i >= len(b) {
			return 0, 0, fmt.Errorf("compact-u16: %w", errTruncated)
		}
		elem := int(b[i])
		v |= (elem & 0x7f) << (7 * i)
		if elem&0x80 == 0 {
			if v > 0xffff {
				return 0, 0, errShortVecOverflow
			}
			return v, i + 1, nil
		}
	}
	return 0, 0, errShortVecOverflow
}
