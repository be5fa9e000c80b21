package amount

import (
	"github.com/holiman/uint256"
)

// Size is the length in bytes of an Amount's canonical big-endian encoding.
const Size = 16

// Amount is a raw account chain balance or transfer quantity: a 128-bit
// unsigned integer, stored and compared without any notion of a decimal
// point or display denomination.
type Amount struct {
	i uint256.Int
}

// Zero is the zero Amount.
var Zero = Amount{}

// FromUint64 builds an Amount out of a uint64 magnitude.
func FromUint64(v uint64) Amount {
	var a Amount
	a.i.SetUint64(v)
	return a
}

// FromBytes decodes a big-endian, 16-byte encoded Amount, as stored in
// sidebands and pending entries.
func FromBytes(b []byte) Amount {
	var a Amount
	a.i.SetBytes(b)
	return a
}

// Bytes encodes the amount as a big-endian, zero-padded 16-byte slice.
func (a Amount) Bytes() []byte {
	buf := make([]byte, Size)
	a.i.WriteToSlice(buf)
	return buf
}

// Add returns a+b. Callers are responsible for checking for overflow using
// Cmp against a known maximum where the domain requires it; account chain
// balances that would overflow 128 bits are rejected earlier, at the
// negative_spend check.
func (a Amount) Add(b Amount) Amount {
	var out Amount
	out.i.Add(&a.i, &b.i)
	return out
}

// Sub returns a-b. The result is undefined (wraps) if b > a; callers must
// check Cmp first, exactly as the negative_spend check does.
func (a Amount) Sub(b Amount) Amount {
	var out Amount
	out.i.Sub(&a.i, &b.i)
	return out
}

// Cmp compares a to b: -1 if a<b, 0 if a==b, +1 if a>b.
func (a Amount) Cmp(b Amount) int {
	return a.i.Cmp(&b.i)
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.i.IsZero()
}

// String renders the amount in base 10.
func (a Amount) String() string {
	return a.i.Dec()
}
