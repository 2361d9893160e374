package btcleveldb

import (
	"math/bits"

	"github.com/pkg/errors"
)

// Amount compression, as bitcoin core stores it:
//   - If the amount is 0, output 0
//   - divide the amount by the largest power of 10 possible, call the exponent e (e is max 9)
//   - if e<9, the last digit of the resulting number cannot be 0, store it as d and drop it, call the result n
//     and output 1 + 10*(9*n + d - 1) + e
//   - if e==9, we only know the resulting number is not zero, so output 1 + 10*(n - 1) + 9

// CompressAmount returns the compact form of a satoshi amount.
func CompressAmount(n uint64) uint64 {
	if n == 0 {
		return 0
	}

	var e uint64
	for n%10 == 0 && e < 9 {
		n /= 10
		e++
	}

	if e < 9 {
		d := n % 10
		n /= 10
		return 1 + (n*9+d-1)*10 + e
	}

	return 1 + (n-1)*10 + 9
}

// DecompressAmount expands a compact amount back into satoshis.
func DecompressAmount(x uint64) (uint64, error) {
	// x = 0  OR  x = 1+10*(9*n + d - 1) + e  OR  x = 1+10*(n - 1) + 9
	if x == 0 {
		return 0, nil
	}

	compressed := x
	x--
	e := x % 10
	x /= 10

	var n uint64
	if e < 9 {
		d := (x % 9) + 1
		x /= 9
		hi, lo := bits.Mul64(x, 10)
		if hi != 0 || lo+d < lo {
			return 0, errors.Wrapf(ErrOverflow, "compressed amount %d", compressed)
		}
		n = lo + d
	} else {
		n = x + 1
	}

	for ; e > 0; e-- {
		hi, lo := bits.Mul64(n, 10)
		if hi != 0 {
			return 0, errors.Wrapf(ErrOverflow, "compressed amount %d", compressed)
		}
		n = lo
	}

	return n, nil
}
