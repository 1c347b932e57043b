// Copyright (c) 2017-2018 The qitmeer developers
// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// NodeID is the handle of a node inside a BlockIndex.  Handles are dense and
// assigned in insertion order, so the genesis node is always 0.
type NodeID int32

// NoNode is the parent handle of the genesis node.
const NoNode NodeID = -1

// BlockNode represents a block within the ancestor chain.  It only carries
// the header fields the difficulty rules read.  A node is a value: once it
// is appended to an index it is never modified.
type BlockNode struct {
	// Hash is the double sha256 of the block header.
	Hash chainhash.Hash

	// Parent is the handle of the previous block, NoNode for genesis.
	Parent NodeID

	// Height is the position of the block in the chain.
	Height int64

	// Timestamp and Bits are copied from the block header.
	Timestamp uint32
	Bits      uint32
}

// newBlockNode returns a node for the given header linked to parent.
func newBlockNode(header *wire.BlockHeader, parent NodeID, height int64) BlockNode {
	return BlockNode{
		Hash:      header.BlockHash(),
		Parent:    parent,
		Height:    height,
		Timestamp: uint32(header.Timestamp.Unix()),
		Bits:      header.Bits,
	}
}

// Time returns the node timestamp as a time.Time.
func (node BlockNode) Time() time.Time {
	return time.Unix(int64(node.Timestamp), 0)
}

// IsGenesis reports whether the node has no parent.
func (node BlockNode) IsGenesis() bool {
	return node.Parent == NoNode
}

func (node BlockNode) String() string {
	return fmt.Sprintf("%s (height %d, time %d, bits %08x)",
		node.Hash, node.Height, node.Timestamp, node.Bits)
}
