// Copyright (c) 2017-2018 The qitmeer developers
// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package params

import (
	"encoding/hex"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// genesisCoinbaseMessage is pushed by the scriptSig of every genesis coinbase.
const genesisCoinbaseMessage = "1May launch of guncoin"

// genesisOutputKey is the uncompressed public key paid by the genesis
// coinbase output.
var genesisOutputKey = hexMustDecode("040184710fa689ad5023690c80f3a49c8f13f8d45b8c857fbcbc8bc4a8e4d3eb4b10f4d4604fa08dce601aaf0f470216fe1b51850b4acf21b179c45070ac7b03a9")

// GenesisParams holds the header fields which differ between the genesis
// blocks of the networks.  The coinbase transaction is shared.
type GenesisParams struct {
	Version int32
	Time    uint32
	Nonce   uint32
	Bits    uint32

	// Reward is the value of the coinbase output in atoms.
	Reward int64
}

// genesisCoinbaseTx builds the coinbase transaction of the genesis block.
// The scriptSig bytes are written literally: a 0x04 length byte before the
// 0x04 value is what the chain committed to, where a canonical script
// builder would emit OP_4.
func genesisCoinbaseTx(reward int64) *wire.MsgTx {
	sigScript := []byte{
		0x04, 0xff, 0xff, 0x00, 0x1d, // push 0x1d00ffff
		0x01, 0x04, // push 4
		byte(len(genesisCoinbaseMessage)),
	}
	sigScript = append(sigScript, genesisCoinbaseMessage...)

	pkScript := make([]byte, 0, len(genesisOutputKey)+2)
	pkScript = append(pkScript, byte(len(genesisOutputKey)))
	pkScript = append(pkScript, genesisOutputKey...)
	pkScript = append(pkScript, 0xac) // OP_CHECKSIG

	return &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{
			{
				// Fully null.
				PreviousOutPoint: wire.OutPoint{
					Hash:  chainhash.Hash{},
					Index: 0xffffffff,
				},
				SignatureScript: sigScript,
				Sequence:        0xffffffff,
			},
		},
		TxOut: []*wire.TxOut{
			{
				Value:    reward,
				PkScript: pkScript,
			},
		},
		LockTime: 0,
	}
}

// Block assembles the genesis block described by g.
//
// The genesis block is valid by definition and none of the fields within
// it are validated for correctness.  The values used elsewhere are:
// (1) The genesis block hash is the root of every block index.
// (2) The difficulty starts off at the value given by bits.
// (3) The timestamp, which the first difficulty calculations build on.
func (g *GenesisParams) Block() *wire.MsgBlock {
	coinbase := genesisCoinbaseTx(g.Reward)
	return &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:    g.Version,
			PrevBlock:  chainhash.Hash{},
			MerkleRoot: coinbase.TxHash(),
			Timestamp:  time.Unix(int64(g.Time), 0),
			Bits:       g.Bits,
			Nonce:      g.Nonce,
		},
		Transactions: []*wire.MsgTx{coinbase},
	}
}

// Hash returns the double sha256 identity of the genesis block.
func (g *GenesisParams) Hash() chainhash.Hash {
	blk := g.Block()
	return blk.Header.BlockHash()
}

// hexMustDecode decodes hard-coded hex and panics on malformed input.
func hexMustDecode(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
