// Copyright (c) 2017-2018 The qitmeer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package powhash computes the proof of work hash of block headers.
package powhash

import (
	"bytes"
	"errors"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/guncoin/powcore/params"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters of the original chain.
const (
	scryptN      = 1024
	scryptR      = 1
	scryptP      = 1
	scryptKeyLen = chainhash.HashSize
)

// ErrUnsupportedAlgorithm is returned for headers which select a proof of
// work function this package does not implement.
var ErrUnsupportedAlgorithm = errors.New("unsupported proof of work algorithm")

// Hasher computes the proof of work hash of a header.  The result uses the
// same little-endian byte order as chainhash.Hash.
type Hasher interface {
	PowHash(header *wire.BlockHeader) (chainhash.Hash, error)
}

// Scrypt is the scrypt(1024, 1, 1) proof of work of the 80-byte header.
type Scrypt struct{}

// PowHash implements Hasher.
func (Scrypt) PowHash(header *wire.BlockHeader) (chainhash.Hash, error) {
	var h chainhash.Hash
	buf := bytes.NewBuffer(make([]byte, 0, wire.MaxBlockHeaderPayload))
	if err := header.Serialize(buf); err != nil {
		return h, err
	}
	data := buf.Bytes()
	out, err := scrypt.Key(data, data, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return h, err
	}
	copy(h[:], out)
	return h, nil
}

// forkHasher picks the hash function by header time.
type forkHasher struct {
	params *params.Params
	scrypt Scrypt
}

// PowHash implements Hasher.
func (f *forkHasher) PowHash(header *wire.BlockHeader) (chainhash.Hash, error) {
	if f.params.IsNeoScrypt(header.Timestamp.Unix()) {
		return chainhash.Hash{}, ErrUnsupportedAlgorithm
	}
	return f.scrypt.PowHash(header)
}

// ForParams returns the Hasher of the network p.  Headers timestamped at
// or after the NeoScrypt fork get ErrUnsupportedAlgorithm.
func ForParams(p *params.Params) Hasher {
	return &forkHasher{params: p}
}
