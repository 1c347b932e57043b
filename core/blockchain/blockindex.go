// Copyright (c) 2017-2018 The qitmeer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// ChainReader is the read side of an ancestor chain.  The difficulty rules
// only walk backwards through it by handle.
type ChainReader interface {
	// LookupNode returns the node with the given handle and false when no
	// such node exists, which includes NoNode.
	LookupNode(id NodeID) (BlockNode, bool)
}

// BlockIndex is an append-only arena of block nodes.  Nodes are addressed by
// NodeID and link to their parent by handle, so any number of readers can
// walk history while a single writer extends it.
//
// The index may hold side branches.  Tip is the first node seen at the
// greatest height; it does not do fork choice by accumulated work.
type BlockIndex struct {
	sync.RWMutex
	nodes  []BlockNode
	byHash map[chainhash.Hash]NodeID
	tip    NodeID
}

// NewBlockIndex returns a new empty instance of a block index.
func NewBlockIndex() *BlockIndex {
	return &BlockIndex{
		byHash: make(map[chainhash.Hash]NodeID),
		tip:    NoNode,
	}
}

// lookupNode returns the node with the given handle.
//
// This function MUST be called with the block index lock held (for reads).
func (bi *BlockIndex) lookupNode(id NodeID) (BlockNode, bool) {
	if id < 0 || int(id) >= len(bi.nodes) {
		return BlockNode{}, false
	}
	return bi.nodes[id], true
}

// LookupNode returns the node with the given handle.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) LookupNode(id NodeID) (BlockNode, bool) {
	bi.RLock()
	node, ok := bi.lookupNode(id)
	bi.RUnlock()
	return node, ok
}

// LookupHash returns the handle of the node with the given block hash.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) LookupHash(hash *chainhash.Hash) (NodeID, bool) {
	bi.RLock()
	id, ok := bi.byHash[*hash]
	bi.RUnlock()
	return id, ok
}

// HaveBlock returns whether or not the block index contains the provided hash.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) HaveBlock(hash *chainhash.Hash) bool {
	_, ok := bi.LookupHash(hash)
	return ok
}

// AddNode appends a node to the index and returns its handle.  A node with
// parent NoNode is only accepted as the first node.  Its height is the
// parent height plus one.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) AddNode(hash chainhash.Hash, parent NodeID, timestamp, bits uint32) (NodeID, error) {
	bi.Lock()
	defer bi.Unlock()

	if _, exists := bi.byHash[hash]; exists {
		str := fmt.Sprintf("already have block %v", hash)
		return NoNode, ruleError(ErrDuplicateBlock, str)
	}

	var height int64
	if parent == NoNode {
		if len(bi.nodes) != 0 {
			return NoNode, AssertError(fmt.Sprintf("block %v has no "+
				"parent but the index already has a genesis block", hash))
		}
	} else {
		p, ok := bi.lookupNode(parent)
		if !ok {
			str := fmt.Sprintf("parent node %d of block %v is unknown",
				parent, hash)
			return NoNode, ruleError(ErrMissingParent, str)
		}
		height = p.Height + 1
	}

	id := NodeID(len(bi.nodes))
	bi.nodes = append(bi.nodes, BlockNode{
		Hash:      hash,
		Parent:    parent,
		Height:    height,
		Timestamp: timestamp,
		Bits:      bits,
	})
	bi.byHash[hash] = id
	if bi.tip == NoNode || height > bi.nodes[bi.tip].Height {
		bi.tip = id
	}
	return id, nil
}

// AddHeader links a header to its parent by PrevBlock and appends it.  The
// first header added to an empty index becomes genesis whatever its
// PrevBlock is.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) AddHeader(header *wire.BlockHeader) (NodeID, error) {
	parent := NoNode
	if bi.Len() != 0 {
		id, ok := bi.LookupHash(&header.PrevBlock)
		if !ok {
			str := fmt.Sprintf("previous block %v is unknown",
				header.PrevBlock)
			return NoNode, ruleError(ErrMissingParent, str)
		}
		parent = id
	}
	node := newBlockNode(header, parent, 0)
	return bi.AddNode(node.Hash, parent, node.Timestamp, node.Bits)
}

// Tip returns the handle of the highest node, NoNode for an empty index.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) Tip() NodeID {
	bi.RLock()
	tip := bi.tip
	bi.RUnlock()
	return tip
}

// Len returns the number of nodes in the index.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) Len() int {
	bi.RLock()
	n := len(bi.nodes)
	bi.RUnlock()
	return n
}

// Ancestor returns the ancestor of the node id at the given height.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) Ancestor(id NodeID, height int64) (BlockNode, bool) {
	bi.RLock()
	defer bi.RUnlock()

	node, ok := bi.lookupNode(id)
	if !ok || height < 0 || height > node.Height {
		return BlockNode{}, false
	}
	for node.Height > height {
		node, ok = bi.lookupNode(node.Parent)
		if !ok {
			return BlockNode{}, false
		}
	}
	return node, true
}

// MainChain returns the nodes from genesis to the tip.
//
// This function is safe for concurrent access.
func (bi *BlockIndex) MainChain() []BlockNode {
	bi.RLock()
	defer bi.RUnlock()

	node, ok := bi.lookupNode(bi.tip)
	if !ok {
		return nil
	}
	chain := make([]BlockNode, node.Height+1)
	for ok {
		chain[node.Height] = node
		node, ok = bi.lookupNode(node.Parent)
	}
	return chain
}

// walkBack steps back n parents from node through chain.  It reports false
// when the walk leaves the chain.
func walkBack(chain ChainReader, node BlockNode, n int64) (BlockNode, bool) {
	ok := true
	for i := int64(0); ok && i < n; i++ {
		node, ok = chain.LookupNode(node.Parent)
	}
	return node, ok
}
