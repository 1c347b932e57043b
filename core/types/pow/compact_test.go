// Copyright (c) 2017-2020 The qitmeer developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactToTarget(t *testing.T) {
	tests := []struct {
		in       uint32
		out      string // hex magnitude
		negative bool
		overflow bool
		reencode uint32
	}{
		{0x00000000, "0x0", false, false, 0},
		{0x00123456, "0x0", false, false, 0},
		{0x01003456, "0x0", false, false, 0},
		{0x02000056, "0x0", false, false, 0},
		{0x03000000, "0x0", false, false, 0},
		{0x04000000, "0x0", false, false, 0},
		{0x00923456, "0x0", false, false, 0},
		{0x01803456, "0x0", false, false, 0},
		{0x02800056, "0x0", false, false, 0},
		{0x03800000, "0x0", false, false, 0},
		{0x04800000, "0x0", false, false, 0},
		{0x01123456, "0x12", false, false, 0x01120000},
		{0x01fedcba, "0x7e", true, false, 0x017e0000},
		{0x02123456, "0x1234", false, false, 0x02123400},
		{0x03123456, "0x123456", false, false, 0x03123456},
		{0x04123456, "0x12345600", false, false, 0x04123456},
		{0x04923456, "0x12345600", true, false, 0x04123456},
		{0x05009234, "0x92340000", false, false, 0x05009234},
		{0x02008000, "0x80", false, false, 0x02008000},
		{0x1d00ffff, "0xffff0000000000000000000000000000000000000000000000000000", false, false, 0x1d00ffff},
		{0x20123456, "0x1234560000000000000000000000000000000000000000000000000000000000", false, false, 0x20123456},
		{0x2100ffff, "0xffff000000000000000000000000000000000000000000000000000000000000", false, false, 0x2100ffff},
		{0xff000000, "0x0", false, false, 0},
	}

	for _, test := range tests {
		target, negative, overflow := CompactToTarget(test.in)
		assert.Equal(t, test.out, target.Hex(), "CompactToTarget(%08x)", test.in)
		assert.Equal(t, test.negative, negative, "negative flag of %08x", test.in)
		assert.Equal(t, test.overflow, overflow, "overflow flag of %08x", test.in)
		assert.Equal(t, test.reencode, TargetToCompact(target),
			"TargetToCompact(%s)", spew.Sdump(target))
	}
}

func TestCompactOverflow(t *testing.T) {
	tests := []uint32{
		0xff123456,
		0x23000001, // exponent 35
		0x22000100, // two significant bytes at exponent 34
		0x21010000, // three significant bytes at exponent 33
		0x2200ffff,
	}
	for _, bits := range tests {
		_, _, overflow := CompactToTarget(bits)
		assert.True(t, overflow, "expected overflow for %08x", bits)
	}

	// The same mantissas one exponent lower still fit in 256 bits.
	for _, bits := range []uint32{0x22000001, 0x21000100, 0x20010000, 0x210000ff} {
		_, _, overflow := CompactToTarget(bits)
		assert.False(t, overflow, "unexpected overflow for %08x", bits)
	}
}

func TestTargetToCompact(t *testing.T) {
	tests := []struct {
		in  string
		out uint32
	}{
		{"0x0", 0},
		{"0x80", 0x02008000},
		{"0x7f", 0x017f0000},
		{"0xffff", 0x0300ffff},
		{"0x123456789abcdef", 0x08012345},
		// ~uint256(0) >> 20, the main network limit.
		{"0xfffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", 0x1e0fffff},
		// The widest value with exponent 32.
		{"0x7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", 0x207fffff},
	}
	for _, test := range tests {
		v := uint256.MustFromHex(test.in)
		assert.Equal(t, test.out, TargetToCompact(v), "TargetToCompact(%s)", test.in)
	}
}

// TestCompactRoundTrip ensures every value with at most 23 significant bits
// survives an encode/decode cycle unchanged and decodes without flags.
// TestTargetToCompactTooWide ensures values which would need an exponent
// above 32 are refused instead of encoded.
func TestTargetToCompactTooWide(t *testing.T) {
	tests := []string{
		"0x8000000000000000000000000000000000000000000000000000000000000000",
		"0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	}
	for _, in := range tests {
		v := uint256.MustFromHex(in)
		assert.False(t, TargetFitsCompact(v), in)
		assert.Panics(t, func() { TargetToCompact(v) }, in)
	}
	assert.True(t, TargetFitsCompact(new(uint256.Int)))
	assert.Panics(t, func() {
		BigToCompact(new(big.Int).Lsh(big.NewInt(1), 255))
	})
}

func TestCompactRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(0x5eed))
	for i := 0; i < 2000; i++ {
		mantissa := uint64(rng.Uint32() & compactMantissaMask)
		shift := uint(rng.Intn(30)) * 8
		v := new(uint256.Int).Lsh(new(uint256.Int).SetUint64(mantissa), shift)

		compact := TargetToCompact(v)
		got, negative, overflow := CompactToTarget(compact)
		require.False(t, negative, "negative flag for %s", v.Hex())
		require.False(t, overflow, "overflow flag for %s", v.Hex())
		require.True(t, got.Eq(v), "round trip of %s gave %s (bits %08x)",
			v.Hex(), got.Hex(), compact)
	}
}

// TestCompactLossy ensures arbitrary values decode to their truncation and
// that re-encoding the truncation is stable.
func TestCompactLossy(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		var buf [32]byte
		rng.Read(buf[rng.Intn(32):])
		buf[0] &= 0x7f
		v := new(uint256.Int).SetBytes32(buf[:])

		compact := TargetToCompact(v)
		got, negative, overflow := CompactToTarget(compact)
		require.False(t, negative)
		require.False(t, overflow)
		require.False(t, got.Gt(v), "truncation of %s grew to %s", v.Hex(), got.Hex())
		require.Equal(t, compact, TargetToCompact(got))
	}
}

func TestBigCompact(t *testing.T) {
	assert.Equal(t, uint32(0x1300000), BigToCompact(big.NewInt(48)))
	assert.Equal(t, uint32(0x04923456), BigToCompact(big.NewInt(-0x12345600)))
	assert.Zero(t, big.NewInt(-0x12345600).Cmp(CompactToBig(0x04923456)))
	assert.Zero(t, big.NewInt(0x12).Cmp(CompactToBig(0x01123456)))
}

func TestHashToTarget(t *testing.T) {
	hash, err := chainhash.NewHashFromStr("00000000ffff0000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)

	target := HashToTarget(hash)
	assert.Equal(t, "0xffff0000000000000000000000000000000000000000000000000001", target.Hex())
	assert.Equal(t, *hash, TargetToHash(target))

	// The conversion must not reverse the caller's hash in place.
	assert.Equal(t, "00000000ffff0000000000000000000000000000000000000000000000000001", hash.String())
}

func TestCompactToDifficulty(t *testing.T) {
	assert.Equal(t, 1.0, CompactToDifficulty(0x1d00ffff, 0x1d00ffff))
	assert.Equal(t, 256.0, CompactToDifficulty(0x1c00ffff, 0x1d00ffff))
	assert.Equal(t, 0.0, CompactToDifficulty(0, 0x1d00ffff))
}
