// Copyright (c) 2017-2018 The qitmeer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package nodedb persists the block index in a leveldb database so a header
// chain survives between runs.
package nodedb

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/guncoin/powcore/core/blockchain"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	dbVersionKey = "version"
	dbNodePrefix = "n:"
	dbVersion    = 1

	// hash | parent | timestamp | bits
	nodeSize = chainhash.HashSize + 4 + 4 + 4
)

// ErrVersionMismatch is returned when the database was written by an
// incompatible release.
var ErrVersionMismatch = errors.New("node database version mismatch")

// DB stores block nodes under their node id, so loading them back in key
// order rebuilds an index with the same ids.
type DB struct {
	lvl *leveldb.DB
}

// Open opens or creates the database at path.  A corrupted database is
// recovered.
func Open(path string) (*DB, error) {
	opts := &opt.Options{
		OpenFilesCacheCapacity: 16,
		BlockCacheCapacity:     8 * opt.MiB,
		WriteBuffer:            4 * opt.MiB,
	}
	db, err := leveldb.OpenFile(path, opts)
	if _, corrupted := err.(*lerrors.ErrCorrupted); corrupted {
		log.Warn("Recovering corrupted node database", "path", path)
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open node database %s", path)
	}
	return newDB(db)
}

// OpenMem returns a database held in memory.
func OpenMem() (*DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "open memory node database")
	}
	return newDB(db)
}

func newDB(db *leveldb.DB) (*DB, error) {
	var ver [8]byte
	binary.BigEndian.PutUint64(ver[:], dbVersion)

	blob, err := db.Get([]byte(dbVersionKey), nil)
	switch err {
	case leveldb.ErrNotFound:
		err = db.Put([]byte(dbVersionKey), ver[:], nil)
	case nil:
		if !bytes.Equal(blob, ver[:]) {
			err = ErrVersionMismatch
		}
	}
	if err != nil {
		db.Close()
		return nil, err
	}
	return &DB{lvl: db}, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.lvl.Close()
}

func nodeKey(id blockchain.NodeID) []byte {
	key := make([]byte, len(dbNodePrefix)+4)
	copy(key, dbNodePrefix)
	binary.BigEndian.PutUint32(key[len(dbNodePrefix):], uint32(id))
	return key
}

func encodeNode(node *blockchain.BlockNode) []byte {
	buf := make([]byte, nodeSize)
	copy(buf, node.Hash[:])
	off := chainhash.HashSize
	binary.LittleEndian.PutUint32(buf[off:], uint32(node.Parent))
	binary.LittleEndian.PutUint32(buf[off+4:], node.Timestamp)
	binary.LittleEndian.PutUint32(buf[off+8:], node.Bits)
	return buf
}

func decodeNode(buf []byte) (hash chainhash.Hash, parent blockchain.NodeID, timestamp, bits uint32, err error) {
	if len(buf) != nodeSize {
		err = errors.Errorf("node record of %d bytes, want %d", len(buf), nodeSize)
		return
	}
	copy(hash[:], buf)
	off := chainhash.HashSize
	parent = blockchain.NodeID(int32(binary.LittleEndian.Uint32(buf[off:])))
	timestamp = binary.LittleEndian.Uint32(buf[off+4:])
	bits = binary.LittleEndian.Uint32(buf[off+8:])
	return
}

// PutNode stores the node with the given id.
func (db *DB) PutNode(id blockchain.NodeID, node *blockchain.BlockNode) error {
	return errors.Wrapf(db.lvl.Put(nodeKey(id), encodeNode(node), nil),
		"put node %d", id)
}

// SaveIndex writes every node of bi from id from onwards in one batch and
// returns the number of nodes written.
func (db *DB) SaveIndex(bi *blockchain.BlockIndex, from blockchain.NodeID) (int, error) {
	batch := new(leveldb.Batch)
	n := bi.Len()
	for id := from; int(id) < n; id++ {
		node, ok := bi.LookupNode(id)
		if !ok {
			break
		}
		batch.Put(nodeKey(id), encodeNode(&node))
	}
	if err := db.lvl.Write(batch, nil); err != nil {
		return 0, errors.Wrap(err, "write node batch")
	}
	log.Debug("Saved block index", "nodes", batch.Len(), "from", from)
	return batch.Len(), nil
}

// LoadIndex rebuilds the block index from the stored nodes.  The ids must
// be contiguous from zero.
func (db *DB) LoadIndex() (*blockchain.BlockIndex, error) {
	bi := blockchain.NewBlockIndex()
	iter := db.lvl.NewIterator(util.BytesPrefix([]byte(dbNodePrefix)), nil)
	defer iter.Release()

	for want := blockchain.NodeID(0); iter.Next(); want++ {
		id := blockchain.NodeID(binary.BigEndian.Uint32(iter.Key()[len(dbNodePrefix):]))
		if id != want {
			return nil, errors.Errorf("node %d missing from the database", want)
		}
		hash, parent, timestamp, bits, err := decodeNode(iter.Value())
		if err != nil {
			return nil, err
		}
		if _, err := bi.AddNode(hash, parent, timestamp, bits); err != nil {
			return nil, errors.Wrapf(err, "load node %d", id)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterate nodes")
	}
	log.Debug("Loaded block index", "nodes", bi.Len())
	return bi, nil
}
