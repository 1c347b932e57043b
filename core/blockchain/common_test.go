// Copyright (c) 2017-2018 The qitmeer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/binary"
	"io/ioutil"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	l "github.com/guncoin/powcore/log"
	"github.com/guncoin/powcore/params"
)

func init() {
	glogger := l.NewGlogHandler(l.StreamHandler(ioutil.Discard, l.TerminalFormat(false)))
	glogger.Verbosity(l.LvlTrace)
	logger := l.New(l.Ctx{"module": "blockchain"})
	logger.SetHandler(glogger)
	UseLogger(logger)
}

// fakeHash derives a unique hash from a height and a salt.
func fakeHash(height int64, salt uint32) chainhash.Hash {
	var buf [12]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(height))
	binary.LittleEndian.PutUint32(buf[8:], salt)
	return chainhash.DoubleHashH(buf[:])
}

// sliceChain is a ChainReader whose first node may sit at any height, so
// rules which only fire at large heights can be exercised without building
// the whole history.
type sliceChain []BlockNode

func (c sliceChain) LookupNode(id NodeID) (BlockNode, bool) {
	if id < 0 || int(id) >= len(c) {
		return BlockNode{}, false
	}
	return c[id], true
}

func (c sliceChain) tip() NodeID {
	return NodeID(len(c) - 1)
}

// newSliceChain returns count nodes ending at tipHeight, spaced by spacing
// seconds and all carrying bits.
func newSliceChain(tipHeight int64, count int, startTime, spacing, bits uint32) sliceChain {
	c := make(sliceChain, count)
	base := tipHeight - int64(count) + 1
	for i := range c {
		c[i] = BlockNode{
			Hash:      fakeHash(base+int64(i), 0),
			Parent:    NodeID(i - 1),
			Height:    base + int64(i),
			Timestamp: startTime + uint32(i)*spacing,
			Bits:      bits,
		}
	}
	return c
}

// newTestIndex returns an index holding heights 0 to count-1.
func newTestIndex(t *testing.T, count int, startTime, spacing, bits uint32) *BlockIndex {
	bi := NewBlockIndex()
	parent := NoNode
	for i := 0; i < count; i++ {
		id, err := bi.AddNode(fakeHash(int64(i), 0), parent,
			startTime+uint32(i)*spacing, bits)
		if err != nil {
			t.Fatalf("AddNode %d: %v", i, err)
		}
		parent = id
	}
	return bi
}

// cloneParams returns a modifiable copy of p.
func cloneParams(p *params.Params) *params.Params {
	c := *p
	return &c
}

// childHeader returns a header which extends prev.
func childHeader(prev *wire.BlockHeader, spacing int64, bits, nonce uint32) *wire.BlockHeader {
	return &wire.BlockHeader{
		Version:    prev.Version,
		PrevBlock:  prev.BlockHash(),
		MerkleRoot: prev.MerkleRoot,
		Timestamp:  prev.Timestamp.Add(time.Duration(spacing) * time.Second),
		Bits:       bits,
		Nonce:      nonce,
	}
}
