// Copyright (c) 2017-2018 The qitmeer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/guncoin/powcore/core/types/pow"
	"github.com/guncoin/powcore/params"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBits  = 0x1c0ffff0
	testStart = 1400000000
)

func isAssertError(err error) bool {
	_, ok := err.(AssertError)
	return ok
}

func TestSelectEra(t *testing.T) {
	main := &params.MainNetParams
	dash := cloneParams(main)
	dash.ReplacementFundsHeight = 900
	dash.MasternodeEnforcePaymentHeight = 1000

	tests := []struct {
		p      *params.Params
		height int64
		era    Era
	}{
		{main, 1, EraBootstrap},
		{main, 29, EraBootstrap},
		{main, 30, EraLegacy},
		{main, 160, EraLegacy},
		{main, 119999, EraLegacy},
		{main, 120000, EraNeoScryptReset},
		{main, 120009, EraNeoScryptReset},
		{main, 120010, EraLegacy},
		{main, 344999, EraLegacy},
		{main, 345000, EraEHRC},
		{main, 900000, EraEHRC},
		// A profile without the masternode heights never selects them,
		// even at height 0.
		{main, 0, EraBootstrap},
		{dash, 29, EraBootstrap},
		{dash, 899, EraLegacy},
		{dash, 900, EraEasyReset},
		{dash, 901, EraLegacy},
		{dash, 1000, EraEasyReset},
		{dash, 1001, EraDarkGravity},
		{dash, 345000, EraDarkGravity},
	}
	for _, test := range tests {
		assert.Equal(t, test.era, SelectEra(test.p, test.height),
			"%s height %d", test.p.Name, test.height)
	}

	// Bootstrap wins over everything else.
	early := cloneParams(main)
	early.DiffChangeHeight = 10
	early.NeoScryptHeight = 5
	assert.Equal(t, EraBootstrap, SelectEra(early, 29))
	assert.Equal(t, EraEHRC, SelectEra(early, 30))

	assert.Equal(t, "ehrc", EraEHRC.String())
	assert.Equal(t, "Unknown Era (42)", Era(42).String())
}

func TestBootstrapFloor(t *testing.T) {
	p := &params.MainNetParams
	bi := NewBlockIndex()
	parent := NoNode
	for i := int64(0); i < 29; i++ {
		// Distinct bits per height so the returned value identifies the
		// node it came from.
		id, err := bi.AddNode(fakeHash(i, 0), parent, testStart+uint32(i), 0x1d00ff00+uint32(i))
		require.NoError(t, err)
		parent = id

		for _, newTime := range []uint32{0, testStart, testStart + 1000000} {
			bits, err := CalcNextRequiredDifficulty(p, bi, id, newTime)
			require.NoError(t, err)
			assert.Equal(t, 0x1d00ff00+uint32(i), bits, "height %d", i+1)
		}
	}
}

func TestScenarioNoRetargeting(t *testing.T) {
	p := cloneParams(&params.MainNetParams)
	p.PowNoRetargeting = true
	bi := newTestIndex(t, 30, testStart, 90, testBits)

	tip := bi.Tip()
	node, _ := bi.LookupNode(tip)
	require.Equal(t, int64(29), node.Height)

	bits, err := CalcNextRequiredDifficulty(p, bi, tip, testStart+30*90)
	require.NoError(t, err)
	assert.Equal(t, uint32(testBits), bits)
}

func TestPeriodicIdempotence(t *testing.T) {
	p := &params.MainNetParams
	require.False(t, p.PowNoRetargeting)
	require.False(t, p.ReduceMinDifficulty)

	// Wildly irregular timestamps must not matter between boundaries.
	bi := NewBlockIndex()
	parent := NoNode
	rng := rand.New(rand.NewSource(7))
	for i := int64(0); i < 102; i++ {
		id, err := bi.AddNode(fakeHash(i, 0), parent, uint32(rng.Int31()), testBits)
		require.NoError(t, err)
		parent = id
	}
	for _, h := range []int64{100, 101} {
		id := NodeID(h)
		bits, err := CalcNextRequiredDifficulty(p, bi, id, testStart)
		require.NoError(t, err)
		assert.Equal(t, uint32(testBits), bits, "height %d", h+1)
	}
}

func TestLegacyRetarget(t *testing.T) {
	p := &params.MainNetParams
	tests := []struct {
		name    string
		spacing uint32
		bits    uint32
		want    uint32
	}{
		{"on pace", 90, testBits, testBits},
		{"slow clamps to 3/2", 9000, testBits, 0x1c17ffe8},
		{"fast is damped", 1, testBits, 0x1c0e05a2},
		{"slow at the limit", 9000, 0x1e0fffff, 0x1e0fffff},
		{"fast near the limit", 1, 0x1e0fffff, 0x1e0e05af},
	}
	for _, test := range tests {
		bi := newTestIndex(t, 320, testStart, test.spacing, test.bits)
		bits, err := CalcNextRequiredDifficulty(p, bi, bi.Tip(), testStart)
		require.NoError(t, err, test.name)
		assert.Equal(t, test.want, bits, "%s: got %08x", test.name, bits)
	}
}

func TestLegacyClampBounds(t *testing.T) {
	p := &params.MainNetParams
	for _, spacing := range []uint32{0, 1, 45, 90, 180, 9000, 90 * 100} {
		bi := newTestIndex(t, 320, testStart, spacing, testBits)
		bits, err := CalcNextRequiredDifficulty(p, bi, bi.Tip(), testStart)
		require.NoError(t, err)

		oldTarget, _, _ := pow.CompactToTarget(testBits)
		newTarget, negative, overflow := pow.CompactToTarget(bits)
		require.False(t, negative || overflow)

		upper := new(uint256.Int).Mul(oldTarget, uint256.NewInt(3))
		upper.Div(upper, uint256.NewInt(2))
		lower := new(uint256.Int).Div(oldTarget, uint256.NewInt(4))
		assert.False(t, newTarget.Gt(upper), "spacing %d: %s", spacing, spew.Sdump(newTarget))
		assert.False(t, newTarget.Lt(lower), "spacing %d: %s", spacing, spew.Sdump(newTarget))
		assert.False(t, newTarget.Gt(p.PowLimit))
	}
}

func TestLegacyBoundaryNeedsHistory(t *testing.T) {
	// The walk goes back a whole interval, so the first boundary at
	// height 160 would step past genesis.
	p := &params.MainNetParams
	bi := newTestIndex(t, 160, testStart, 90, testBits)
	_, err := CalcNextRequiredDifficulty(p, bi, bi.Tip(), testStart)
	assert.True(t, isAssertError(err), "got %v", err)

	// The walk happens before the no-retargeting check.
	noRetarget := cloneParams(p)
	noRetarget.PowNoRetargeting = true
	_, err = CalcNextRequiredDifficulty(noRetarget, bi, bi.Tip(), testStart)
	assert.True(t, isAssertError(err), "got %v", err)

	bi = newTestIndex(t, 320, testStart, 9000, testBits)
	bits, err := CalcNextRequiredDifficulty(noRetarget, bi, bi.Tip(), testStart)
	require.NoError(t, err)
	assert.Equal(t, uint32(testBits), bits)
}

func TestUnknownTip(t *testing.T) {
	bi := newTestIndex(t, 5, testStart, 90, testBits)
	_, err := CalcNextRequiredDifficulty(&params.MainNetParams, bi, 5, testStart)
	assert.True(t, isAssertError(err))
	_, err = CalcNextRequiredDifficulty(&params.MainNetParams, bi, NoNode, testStart)
	assert.True(t, isAssertError(err))
}

func TestMinDifficultyRule(t *testing.T) {
	p := &params.TestNetParams
	require.True(t, p.ReduceMinDifficulty)
	limitBits := p.PowLimitBits

	// Heights 0-159 carry testBits, 160 is a boundary block with its own
	// bits, 161-164 are real blocks and 165-170 were mined at the limit.
	const boundaryBits, realBits = 0x1c0fff00, 0x1c0ff000
	bi := NewBlockIndex()
	parent := NoNode
	for i := int64(0); i <= 170; i++ {
		bits := uint32(testBits)
		switch {
		case i == 160:
			bits = boundaryBits
		case i > 160 && i < 165:
			bits = realBits
		case i >= 165:
			bits = limitBits
		}
		id, err := bi.AddNode(fakeHash(i, 0), parent, testStart+uint32(i)*90, bits)
		require.NoError(t, err)
		parent = id
	}
	tip, _ := bi.LookupNode(bi.Tip())

	// A long gap allows a block at the limit.
	bits, err := CalcNextRequiredDifficulty(p, bi, bi.Tip(), tip.Timestamp+181)
	require.NoError(t, err)
	assert.Equal(t, limitBits, bits)

	// Exactly twice the spacing is not enough.
	bits, err = CalcNextRequiredDifficulty(p, bi, bi.Tip(), tip.Timestamp+180)
	require.NoError(t, err)
	assert.Equal(t, uint32(realBits), bits)

	// A real block ends the walk at once.
	bits, err = CalcNextRequiredDifficulty(p, bi, NodeID(162), 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(realBits), bits)

	chain := newSliceChain(170, 11, testStart, 90, limitBits)
	chain[0].Bits = boundaryBits
	require.Equal(t, int64(160), chain[0].Height)
	bits, err = CalcNextRequiredDifficulty(p, chain, chain.tip(), chain[10].Timestamp)
	require.NoError(t, err)
	assert.Equal(t, uint32(boundaryBits), bits)

	// The boundary stops the walk even when it was mined at the limit.
	chain[0].Bits = limitBits
	bits, err = CalcNextRequiredDifficulty(p, chain, chain.tip(), chain[10].Timestamp)
	require.NoError(t, err)
	assert.Equal(t, limitBits, bits)

	// The main network never relaxes.
	bits, err = CalcNextRequiredDifficulty(&params.MainNetParams, bi, bi.Tip(), tip.Timestamp+100000)
	require.NoError(t, err)
	assert.Equal(t, limitBits, bits)
	bits, err = CalcNextRequiredDifficulty(&params.MainNetParams, bi, NodeID(163), tip.Timestamp+100000)
	require.NoError(t, err)
	assert.Equal(t, uint32(realBits), bits)
}

func TestMinDifficultyWalkStopsAtGenesis(t *testing.T) {
	p := cloneParams(&params.TestNetParams)
	chain := newSliceChain(40, 5, testStart, 90, p.PowLimitBits)
	chain[0].Bits = 0x1d00ffff
	bits, err := CalcNextRequiredDifficulty(p, chain, chain.tip(), chain[4].Timestamp)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1d00ffff), bits)

	// A reader missing a parent is the caller's bug.
	chain[1].Parent = 99
	_, err = CalcNextRequiredDifficulty(p, chain, chain.tip(), chain[4].Timestamp)
	assert.True(t, isAssertError(err), "got %v", err)
}

func TestNeoScryptReset(t *testing.T) {
	p := &params.MainNetParams
	want := pow.TargetToCompact(p.PowNeoScryptLimit)
	require.Equal(t, uint32(0x1d0fffff), want)
	for _, tipHeight := range []int64{119999, 120005, 120008} {
		chain := newSliceChain(tipHeight, 1, testStart, 90, testBits)
		bits, err := CalcNextRequiredDifficulty(p, chain, chain.tip(), testStart)
		require.NoError(t, err)
		assert.Equal(t, want, bits, "height %d", tipHeight+1)
	}

	// The window is ten blocks long.
	chain := newSliceChain(120009, 1, testStart, 90, testBits)
	bits, err := CalcNextRequiredDifficulty(p, chain, chain.tip(), testStart)
	require.NoError(t, err)
	assert.Equal(t, uint32(testBits), bits)
}

func TestEHRC(t *testing.T) {
	p := &params.MainNetParams
	tests := []struct {
		name    string
		spacing uint32
		want    uint32
	}{
		{"on pace", 90, testBits},
		{"fast hits the lower band", 30, 0x1c0e93da},
		{"slow hits the upper band", 1000, 0x1c116c05},
	}
	for _, test := range tests {
		// The tip sits exactly at the switch height.
		chain := newSliceChain(p.DiffChangeHeight, 800, testStart, test.spacing, testBits)
		bits, err := CalcNextRequiredDifficulty(p, chain, chain.tip(), testStart)
		require.NoError(t, err, test.name)
		assert.Equal(t, test.want, bits, "%s: got %08x", test.name, bits)
	}

	// The tip target is clamped to the limit.
	chain := newSliceChain(p.DiffChangeHeight, 800, testStart, 1000, p.PowLimitBits)
	bits, err := CalcNextRequiredDifficulty(p, chain, chain.tip(), testStart)
	require.NoError(t, err)
	assert.Equal(t, p.PowLimitBits, bits)
}

func TestEHRCShortHistory(t *testing.T) {
	p := cloneParams(&params.MainNetParams)
	p.DiffChangeHeight = 100

	// Up to height 721 there is not enough history.
	bi := newTestIndex(t, 721, testStart, 90, testBits)
	bits, err := CalcNextRequiredDifficulty(p, bi, bi.Tip(), testStart)
	require.NoError(t, err)
	assert.Equal(t, p.PowLimitBits, bits)

	bi = newTestIndex(t, 722, testStart, 90, testBits)
	bits, err = CalcNextRequiredDifficulty(p, bi, bi.Tip(), testStart)
	require.NoError(t, err)
	assert.Equal(t, uint32(testBits), bits)

	// A truncated reader is a contract violation.
	chain := newSliceChain(5000, 100, testStart, 90, testBits)
	_, err = CalcNextRequiredDifficulty(p, chain, chain.tip(), testStart)
	assert.True(t, isAssertError(err), "got %v", err)
}

func TestEHRCBand(t *testing.T) {
	assert.Equal(t, int64(82), int64(ehrcMinTimespan))
	assert.Equal(t, int64(98), int64(ehrcMaxTimespan))

	// All windows without elapsed time still get damped and clamped.
	assert.Equal(t, int64(82), ehrcTimespan(testStart, testStart, testStart, testStart))
	assert.Equal(t, int64(90), ehrcTimespan(testStart+720*90, testStart+705*90,
		testStart+540*90, testStart))

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 5000; i++ {
		last := int64(testStart + rng.Intn(1<<24))
		short := last - int64(rng.Intn(1<<16)) + int64(rng.Intn(1<<10))
		medium := last - int64(rng.Intn(1<<20)) + int64(rng.Intn(1<<10))
		long := last - int64(rng.Intn(1<<22)) + int64(rng.Intn(1<<10))
		got := ehrcTimespan(last, short, medium, long)
		require.True(t, got >= ehrcMinTimespan && got <= ehrcMaxTimespan,
			"timespan %d for %d %d %d %d", got, last, short, medium, long)
	}
}

func TestDarkGravity(t *testing.T) {
	p := cloneParams(&params.MainNetParams)
	p.ReplacementFundsHeight = 900
	p.MasternodeEnforcePaymentHeight = 1000

	tests := []struct {
		name    string
		spacing uint32
		want    uint32
	}{
		{"on pace", 90, 0x1c0f7768},
		{"fast clamps to a third", 10, 0x1c055550},
	}
	for _, test := range tests {
		chain := newSliceChain(1500, 40, testStart, test.spacing, testBits)
		bits, err := CalcNextRequiredDifficulty(p, chain, chain.tip(), testStart)
		require.NoError(t, err, test.name)
		assert.Equal(t, test.want, bits, "%s: got %08x", test.name, bits)
	}

	// Reaching genesis inside the window yields the limit.
	chain := newSliceChain(1500, 20, testStart, 90, testBits)
	bits, err := CalcNextRequiredDifficulty(p, chain, chain.tip(), testStart)
	require.NoError(t, err)
	assert.Equal(t, p.PowLimitBits, bits)

	// Exactly thirty nodes are enough.
	chain = newSliceChain(1500, 30, testStart, 90, testBits)
	bits, err = CalcNextRequiredDifficulty(p, chain, chain.tip(), testStart)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1c0f7768), bits)

	// The easy heights come first.
	for _, tipHeight := range []int64{899, 999} {
		chain = newSliceChain(tipHeight, 40, testStart, 90, testBits)
		bits, err = CalcNextRequiredDifficulty(p, chain, chain.tip(), testStart)
		require.NoError(t, err)
		assert.Equal(t, p.PowLimitBits, bits, "height %d", tipHeight+1)
	}

	// Disabled on the default profile.
	assert.Equal(t, EraEHRC, SelectEra(&params.MainNetParams, 1500000))
}
