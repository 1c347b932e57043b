// Copyright (c) 2017-2020 The qitmeer developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/holiman/uint256"
)

const (
	// compactSignBit is bit 23 of a compact value.
	compactSignBit = 0x00800000

	// compactMantissaMask selects the 23 mantissa bits of a compact value.
	compactMantissaMask = 0x007fffff
)

// CompactToTarget converts a compact representation of a whole number N to
// an unsigned 256-bit target.  The representation is similar to IEEE754
// floating point numbers.
//
// Like IEEE754 floating point, there are three basic components: the sign,
// the exponent, and the mantissa.  They are broken out as follows:
//
//	* the most significant 8 bits represent the unsigned base 256 exponent
//	* bit 23 (the 24th bit) represents the sign bit
//	* the least significant 23 bits represent the mantissa
//
//	-------------------------------------------------
//	|   Exponent     |    Sign    |    Mantissa     |
//	-------------------------------------------------
//	| 8 bits [31-24] | 1 bit [23] | 23 bits [22-00] |
//	-------------------------------------------------
//
// The formula to calculate N is:
//
//	N = (-1^sign) * mantissa * 256^(exponent-3)
//
// Targets are unsigned, so a set sign bit is reported through isNegative
// and the returned magnitude is left positive.  isOverflow reports a value
// which needs more than 256 bits.  Both flags are only raised for a
// non-zero mantissa, and neither one alters the returned magnitude; the
// caller decides whether the encoding is acceptable.
func CompactToTarget(compact uint32) (target *uint256.Int, isNegative, isOverflow bool) {
	// Extract the mantissa and exponent.
	word := compact & compactMantissaMask
	exponent := uint(compact >> 24)

	// Since the base for the exponent is 256, the exponent can be treated
	// as the number of bytes to represent the full 256-bit number.  So,
	// treat the exponent as the number of bytes and shift the mantissa
	// right or left accordingly.  This is equivalent to:
	// N = mantissa * 256^(exponent-3)
	target = new(uint256.Int)
	if exponent <= 3 {
		word >>= 8 * (3 - exponent)
		target.SetUint64(uint64(word))
	} else {
		target.SetUint64(uint64(word))
		target.Lsh(target, 8*(exponent-3))
	}

	isNegative = word != 0 && compact&compactSignBit != 0
	isOverflow = word != 0 && (exponent > 34 ||
		(word > 0xff && exponent > 33) ||
		(word > 0xffff && exponent > 32))
	return target, isNegative, isOverflow
}

// maxCompactBitLen is the widest target whose compact exponent stays at or
// below 32.
const maxCompactBitLen = 255

// TargetFitsCompact reports whether TargetToCompact accepts target.
func TargetFitsCompact(target *uint256.Int) bool {
	return target.BitLen() <= maxCompactBitLen
}

// TargetToCompact converts a 256-bit target to the canonical compact
// representation.  The compact form only provides 23 bits of precision, so
// values larger than (2^23 - 1) only encode the most significant digits of
// the number.  See CompactToTarget for details.
//
// Targets of 2^255 and above would need an exponent above 32, which no
// consensus value may carry.  Passing one is a programming error and panics;
// check untrusted input with TargetFitsCompact.
func TargetToCompact(target *uint256.Int) uint32 {
	// No need to do any work if it's zero.
	if target.IsZero() {
		return 0
	}
	if !TargetFitsCompact(target) {
		panic("TargetToCompact: target needs a compact exponent above 32")
	}

	// Since the base for the exponent is 256, the exponent can be treated
	// as the number of bytes.  So, shift the number right or left
	// accordingly.  This is equivalent to:
	// mantissa = mantissa / 256^(exponent-3)
	var mantissa uint32
	exponent := uint(target.ByteLen())
	if exponent <= 3 {
		mantissa = uint32(target.Uint64())
		mantissa <<= 8 * (3 - exponent)
	} else {
		// Use a copy to avoid modifying the caller's original number.
		tn := new(uint256.Int).Rsh(target, 8*(exponent-3))
		mantissa = uint32(tn.Uint64())
	}

	// When the mantissa already has the sign bit set, the number is too
	// large to fit into the available 23-bits, so divide the number by 256
	// and increment the exponent accordingly.
	if mantissa&compactSignBit != 0 {
		mantissa >>= 8
		exponent++
	}

	return uint32(exponent<<24) | mantissa
}

// CompactToBig converts a compact representation to a signed big integer.
// Unlike CompactToTarget the sign bit is applied, which matches the view of
// tools that display the raw encoding.
func CompactToBig(compact uint32) *big.Int {
	target, isNegative, _ := CompactToTarget(compact)
	bn := target.ToBig()
	if isNegative {
		bn = bn.Neg(bn)
	}
	return bn
}

// BigToCompact converts a whole number N to a compact representation using
// an unsigned 32-bit number.  Negative numbers get the sign bit set.  The
// magnitude must be below 2^255.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}
	abs := new(big.Int).Abs(n)
	target, overflow := uint256.FromBig(abs)
	if overflow {
		panic("BigToCompact: magnitude exceeds 256 bits")
	}
	compact := TargetToCompact(target)
	if n.Sign() < 0 {
		compact |= compactSignBit
	}
	return compact
}

// HashToTarget converts a chainhash.Hash into a 256-bit integer that can be
// compared against a target.
func HashToTarget(hash *chainhash.Hash) *uint256.Int {
	// A Hash is in little-endian, but the integer wants the bytes in
	// big-endian, so reverse them.
	buf := *hash
	blen := len(buf)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = buf[blen-1-i], buf[i]
	}

	return new(uint256.Int).SetBytes32(buf[:])
}

// TargetToHash is the inverse of HashToTarget.
func TargetToHash(target *uint256.Int) chainhash.Hash {
	var h chainhash.Hash
	buf := target.Bytes32()
	for i := 0; i < chainhash.HashSize; i++ {
		h[i] = buf[chainhash.HashSize-1-i]
	}
	return h
}

// CompactToDifficulty returns the floating point difficulty of bits relative
// to the easiest target limitBits, the figure shown to users.
func CompactToDifficulty(bits, limitBits uint32) float64 {
	limit, _, _ := CompactToTarget(limitBits)
	target, _, _ := CompactToTarget(bits)
	if target.IsZero() {
		return 0
	}
	l, _ := new(big.Float).SetInt(limit.ToBig()).Float64()
	t, _ := new(big.Float).SetInt(target.ToBig()).Float64()
	return l / t
}
