// Copyright (c) 2017-2018 The qitmeer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/guncoin/powcore/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedHasher returns the same proof of work hash for every header.
type fixedHasher struct {
	hash chainhash.Hash
	err  error
}

func (f *fixedHasher) PowHash(*wire.BlockHeader) (chainhash.Hash, error) {
	return f.hash, f.err
}

func highHash() chainhash.Hash {
	var h chainhash.Hash
	for i := range h {
		h[i] = 0xff
	}
	return h
}

func newRegtestChain(t *testing.T, hasher *fixedHasher) *BlockChain {
	cfg := &Config{ChainParams: &params.RegressionNetParams}
	if hasher != nil {
		cfg.PowHasher = hasher
	}
	b, err := New(cfg)
	require.NoError(t, err)
	return b
}

func TestNewChain(t *testing.T) {
	p := &params.RegressionNetParams
	b := newRegtestChain(t, nil)
	assert.Equal(t, 1, b.Index().Len())
	assert.Equal(t, p, b.Params())
	tip, ok := b.Index().LookupNode(b.Index().Tip())
	require.True(t, ok)
	assert.Equal(t, p.Genesis.Hash(), tip.Hash)

	_, err := New(&Config{})
	assert.True(t, isAssertError(err), "got %v", err)

	_, err = New(&Config{ChainParams: p, Index: NewBlockIndex()})
	assert.True(t, isAssertError(err), "got %v", err)

	// An index built on another network.
	bi := NewBlockIndex()
	_, err = bi.AddHeader(&params.MainNetParams.Genesis.Block().Header)
	require.NoError(t, err)
	_, err = New(&Config{ChainParams: p, Index: bi})
	assert.True(t, IsErrorCode(err, ErrBadGenesis), "got %v", err)

	bad := cloneParams(p)
	bad.PowLimitBits = 0x1d00ffff
	_, err = New(&Config{ChainParams: bad})
	assert.Error(t, err)
}

func TestProcessBlockHeader(t *testing.T) {
	p := &params.RegressionNetParams
	hasher := &fixedHasher{}
	b := newRegtestChain(t, hasher)

	prev := p.Genesis.Block().Header
	for i := 1; i <= 40; i++ {
		bits, err := b.CalcNextRequiredDifficulty(prev.Timestamp.Add(90 * time.Second))
		require.NoError(t, err)
		require.Equal(t, p.PowLimitBits, bits)

		header := childHeader(&prev, 90, bits, 0)
		id, err := b.ProcessBlockHeader(header)
		require.NoError(t, err, "height %d", i)
		assert.Equal(t, id, b.Index().Tip())
		prev = *header
	}
	assert.Equal(t, 41, b.Index().Len())

	// Duplicate.
	_, err := b.ProcessBlockHeader(&prev)
	assert.True(t, IsErrorCode(err, ErrDuplicateBlock), "got %v", err)

	// Wrong bits.
	header := childHeader(&prev, 90, 0x1e0fffff, 0)
	err = b.CheckBlockHeader(header)
	assert.True(t, IsErrorCode(err, ErrUnexpectedDifficulty), "got %v", err)
	_, err = b.ProcessBlockHeader(header)
	assert.True(t, IsErrorCode(err, ErrUnexpectedDifficulty), "got %v", err)

	// Unknown parent.
	header = childHeader(&prev, 90, p.PowLimitBits, 0)
	header.PrevBlock = fakeHash(99, 9)
	_, err = b.ProcessBlockHeader(header)
	assert.True(t, IsErrorCode(err, ErrMissingParent), "got %v", err)

	// Too little work.
	hasher.hash = highHash()
	header = childHeader(&prev, 90, p.PowLimitBits, 1)
	_, err = b.ProcessBlockHeader(header)
	assert.True(t, IsErrorCode(err, ErrHighHash), "got %v", err)

	// The hash function fails.
	hasher.hash = chainhash.Hash{}
	hasher.err = errors.New("boom")
	_, err = b.ProcessBlockHeader(header)
	assert.True(t, IsErrorCode(err, ErrInvalidPow), "got %v", err)

	assert.Equal(t, 41, b.Index().Len())
}

func TestProcessBlockHeaderScrypt(t *testing.T) {
	p := &params.RegressionNetParams
	b := newRegtestChain(t, nil)
	genesis := p.Genesis.Block().Header

	// Nonce 0 does not meet the regression test limit.
	header := childHeader(&genesis, 90, p.PowLimitBits, 0)
	_, err := b.ProcessBlockHeader(header)
	assert.True(t, IsErrorCode(err, ErrHighHash), "got %v", err)

	header.Nonce = 6
	require.Equal(t, int64(1296688692), header.Timestamp.Unix())
	id, err := b.ProcessBlockHeader(header)
	require.NoError(t, err)
	node, ok := b.Index().LookupNode(id)
	require.True(t, ok)
	assert.Equal(t, int64(1), node.Height)
	assert.Equal(t,
		"3693e7f996f2d404894cf90419d0ab0483db00ce8d7c57e235052f8491e9e652",
		node.Hash.String())
}

func TestCalcNextRequiredDiffFromNode(t *testing.T) {
	p := &params.RegressionNetParams
	b := newRegtestChain(t, nil)

	genesis := p.Genesis.Hash()
	bits, err := b.CalcNextRequiredDiffFromNode(&genesis, time.Unix(1296688692, 0))
	require.NoError(t, err)
	assert.Equal(t, p.PowLimitBits, bits)

	unknown := fakeHash(5, 5)
	_, err = b.CalcNextRequiredDiffFromNode(&unknown, time.Now())
	_, ok := err.(HashError)
	assert.True(t, ok, "got %v", err)
}
