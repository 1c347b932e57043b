// Copyright (c) 2017-2018 The qitmeer developers
// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/guncoin/powcore/crypto/powhash"
	"github.com/guncoin/powcore/metrics"
	"github.com/guncoin/powcore/params"
	gometrics "github.com/rcrowley/go-metrics"
)

// Config is a descriptor which specifies the blockchain instance
// configuration.
type Config struct {
	// ChainParams identifies which chain parameters the chain is associated
	// with.
	//
	// This field is required.
	ChainParams *params.Params

	// Index is the ancestor chain.  A new index holding only the genesis
	// block of ChainParams is created when it is nil.
	Index *BlockIndex

	// PowHasher computes the proof of work hash of headers.  It defaults to
	// powhash.ForParams(ChainParams).
	PowHasher powhash.Hasher
}

// BlockChain validates block headers against the difficulty and proof of
// work rules and keeps the accepted ones in its block index.
type BlockChain struct {
	// The following fields are set when the instance is created and can't
	// be changed afterwards, so there is no need to protect them with a
	// separate mutex.
	params    *params.Params
	index     *BlockIndex
	powHasher powhash.Hasher

	// processLock serializes ProcessBlockHeader so the checks and the
	// append see the same parent.
	processLock sync.Mutex

	eraCounters  map[Era]gometrics.Counter
	powRejected  gometrics.Meter
	headerTimer  gometrics.Timer
	headersAdded gometrics.Counter
}

// New returns a BlockChain instance using the provided configuration details.
func New(config *Config) (*BlockChain, error) {
	// Enforce required config fields.
	if config.ChainParams == nil {
		return nil, AssertError("blockchain.New chain parameters nil")
	}
	p := config.ChainParams
	if err := p.Check(); err != nil {
		return nil, err
	}

	index := config.Index
	if index == nil {
		index = NewBlockIndex()
		genesis := p.Genesis.Block()
		if _, err := index.AddHeader(&genesis.Header); err != nil {
			return nil, err
		}
	}
	if index.Len() == 0 {
		return nil, AssertError("blockchain.New block index is empty")
	}
	genesis, _ := index.LookupNode(0)
	if want := p.Genesis.Hash(); genesis.Hash != want {
		str := fmt.Sprintf("genesis block %v of the index does not match "+
			"%v of network %s", genesis.Hash, want, p.Name)
		return nil, ruleError(ErrBadGenesis, str)
	}

	hasher := config.PowHasher
	if hasher == nil {
		hasher = powhash.ForParams(p)
	}

	b := &BlockChain{
		params:       p,
		index:        index,
		powHasher:    hasher,
		eraCounters:  make(map[Era]gometrics.Counter),
		powRejected:  metrics.NewMeter("chain/pow/rejected"),
		headerTimer:  metrics.NewTimer("chain/header/validate"),
		headersAdded: metrics.NewCounter("chain/header/added"),
	}
	for era := range eraStrings {
		b.eraCounters[era] = metrics.NewCounter("chain/era/" + era.String())
	}

	tip, _ := index.LookupNode(index.Tip())
	log.Info("Chain state", "network", p.Name, "height", tip.Height,
		"hash", tip.Hash, "bits", fmt.Sprintf("%08x", tip.Bits))
	return b, nil
}

// Index returns the block index of the chain.
func (b *BlockChain) Index() *BlockIndex {
	return b.index
}

// Params returns the chain parameters.
func (b *BlockChain) Params() *params.Params {
	return b.params
}

// CalcNextRequiredDifficulty calculates the required difficulty for the block
// after the end of the current best chain based on the difficulty retarget
// rules.
//
// This function is safe for concurrent access.
func (b *BlockChain) CalcNextRequiredDifficulty(newBlockTime time.Time) (uint32, error) {
	return CalcNextRequiredDifficulty(b.params, b.index, b.index.Tip(),
		uint32(newBlockTime.Unix()))
}

// CalcNextRequiredDiffFromNode calculates the required difficulty for the block
// given with the passed hash along with the given timestamp.
//
// This function is safe for concurrent access.
func (b *BlockChain) CalcNextRequiredDiffFromNode(hash *chainhash.Hash, newBlockTime time.Time) (uint32, error) {
	id, ok := b.index.LookupHash(hash)
	if !ok {
		return 0, HashError(hash.String())
	}
	return CalcNextRequiredDifficulty(b.params, b.index, id,
		uint32(newBlockTime.Unix()))
}

// CheckBlockHeader ensures header extends a known block, carries the bits the
// retarget rules require and has enough proof of work.
//
// This function is safe for concurrent access.
func (b *BlockChain) CheckBlockHeader(header *wire.BlockHeader) error {
	_, err := b.checkBlockHeader(header)
	return err
}

func (b *BlockChain) checkBlockHeader(header *wire.BlockHeader) (NodeID, error) {
	defer b.headerTimer.UpdateSince(time.Now())

	parent, ok := b.index.LookupHash(&header.PrevBlock)
	if !ok {
		str := fmt.Sprintf("previous block %v is unknown", header.PrevBlock)
		return NoNode, ruleError(ErrMissingParent, str)
	}
	last, ok := b.index.LookupNode(parent)
	if !ok {
		return NoNode, AssertError(fmt.Sprintf("node %d vanished", parent))
	}

	expected, era, err := calcNextRequiredDifficulty(b.params, b.index, last,
		uint32(header.Timestamp.Unix()))
	if err != nil {
		return NoNode, err
	}
	b.eraCounters[era].Inc(1)
	if header.Bits != expected {
		str := fmt.Sprintf("block difficulty of %08x is not the expected "+
			"value of %08x (era %v, height %d)", header.Bits, expected,
			era, last.Height+1)
		return NoNode, ruleError(ErrUnexpectedDifficulty, str)
	}

	powHash, err := b.powHasher.PowHash(header)
	if err != nil {
		str := fmt.Sprintf("unable to compute the proof of work hash: %v", err)
		return NoNode, ruleError(ErrInvalidPow, str)
	}
	if err := checkProofOfWork(&powHash, header.Bits, b.params); err != nil {
		b.powRejected.Mark(1)
		return NoNode, err
	}
	return parent, nil
}

// ProcessBlockHeader checks header and appends it to the block index.
//
// This function is safe for concurrent access.
func (b *BlockChain) ProcessBlockHeader(header *wire.BlockHeader) (NodeID, error) {
	b.processLock.Lock()
	defer b.processLock.Unlock()

	hash := header.BlockHash()
	if b.index.HaveBlock(&hash) {
		str := fmt.Sprintf("already have block %v", hash)
		return NoNode, ruleError(ErrDuplicateBlock, str)
	}

	parent, err := b.checkBlockHeader(header)
	if err != nil {
		return NoNode, err
	}
	id, err := b.index.AddNode(hash, parent, uint32(header.Timestamp.Unix()),
		header.Bits)
	if err != nil {
		return NoNode, err
	}
	b.headersAdded.Inc(1)
	log.Trace("Accepted header", "hash", hash, "node", id)
	return id, nil
}
