package btcleveldb

import (
	"github.com/pkg/errors"
)

// ObfuscationKeyRecord is the store key holding the obfuscation key: a length
// prefixed 0x0e tag followed by "obfuscate_key".
var ObfuscationKeyRecord = append([]byte{0x0e, 0x00}, "obfuscate_key"...)

// ObfuscationKey is the XOR keystream applied to every chainstate value.
type ObfuscationKey []byte

// ParseObfuscationKey strips the size byte from the stored obfuscation key record.
//
//	08 b12dcefd8f872536
//	<> <-------------->
//	size   key
func ParseObfuscationKey(record []byte) (ObfuscationKey, error) {
	if len(record) < 2 {
		return nil, ErrEmptyObfuscationKey
	}
	if int(record[0]) != len(record)-1 {
		return nil, errors.Wrapf(ErrEmptyObfuscationKey, "size byte %d does not match %d key bytes", record[0], len(record)-1)
	}

	key := make(ObfuscationKey, len(record)-1)
	copy(key, record[1:])

	return key, nil
}

// Deobfuscate XORs value with the key repeated to the length of value.
// Applying it twice gives back the input.
//
//	71a9e87d62de25953e189f706bcf59263f15de1bf6c893bda9b045 <- obfuscated
//	b12dcefd8f872536b12dcefd8f872536b12dcefd8f872536b12dce <- key, repeated
//	c0842680ed5900a38f35518de4487c108e3810e6794fb68b189d8b <- plaintext
func (k ObfuscationKey) Deobfuscate(value []byte) []byte {
	out := make([]byte, len(value))
	if len(k) == 0 {
		copy(out, value)
		return out
	}

	for i, j := 0, 0; i < len(value); i++ {
		out[i] = value[i] ^ k[j]
		if j++; j == len(k) {
			j = 0
		}
	}

	return out
}
