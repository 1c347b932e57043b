// Copyright (c) 2017-2018 The qitmeer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/guncoin/powcore/config"
	"github.com/guncoin/powcore/core/blockchain"
	"github.com/guncoin/powcore/core/types/pow"
	"github.com/guncoin/powcore/database/nodedb"
	"github.com/guncoin/powcore/log"
	"github.com/guncoin/powcore/services/progresslog"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const nodeDBName = "nodes"

type handler struct {
	usage string
	nargs int
	run   func(cfg *config.Config, args []string, w io.Writer) error
}

var commands = map[string]handler{
	"decode":   {"decode <bits>", 1, decodeCmd},
	"encode":   {"encode <target-hex>", 1, encodeCmd},
	"checkpow": {"checkpow <hash-hex> <bits>", 2, checkPowCmd},
	"import":   {"import <file>", 1, importCmd},
	"nextbits": {"nextbits <unix-time>", 1, nextBitsCmd},
	"era":      {"era <height>", 1, eraCmd},
}

func commandNames() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func runCommand(cfg *config.Config, name string, args []string, w io.Writer) error {
	h, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, want one of %s", name, commandNames())
	}
	if len(args) != h.nargs {
		return fmt.Errorf("usage: %s", h.usage)
	}
	return h.run(cfg, args, w)
}

func parseBits(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "bad bits %q", s)
	}
	return uint32(v), nil
}

// parseTarget reads a big-endian hex number of at most 256 bits.
func parseTarget(s string) (*uint256.Int, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "bad target %q", s)
	}
	if len(b) > 32 {
		return nil, errors.Errorf("target %q is wider than 256 bits", s)
	}
	target := new(uint256.Int).SetBytes(b)
	if !pow.TargetFitsCompact(target) {
		return nil, errors.Errorf("target %q needs a compact exponent above 32", s)
	}
	return target, nil
}

func decodeCmd(cfg *config.Config, args []string, w io.Writer) error {
	bits, err := parseBits(args[0])
	if err != nil {
		return err
	}
	target, negative, overflow := pow.CompactToTarget(bits)
	fmt.Fprintf(w, "target     %064x\n", target.ToBig())
	fmt.Fprintf(w, "negative   %v\n", negative)
	fmt.Fprintf(w, "overflow   %v\n", overflow)
	fmt.Fprintf(w, "difficulty %.8f\n",
		pow.CompactToDifficulty(bits, cfg.NetParams().PowLimitBits))
	return nil
}

func encodeCmd(cfg *config.Config, args []string, w io.Writer) error {
	target, err := parseTarget(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%08x\n", pow.TargetToCompact(target))
	return nil
}

func checkPowCmd(cfg *config.Config, args []string, w io.Writer) error {
	hash, err := chainhash.NewHashFromStr(args[0])
	if err != nil {
		return errors.Wrapf(err, "bad hash %q", args[0])
	}
	bits, err := parseBits(args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(w, blockchain.CheckProofOfWork(hash, bits, cfg.NetParams()))
	return nil
}

func eraCmd(cfg *config.Config, args []string, w io.Writer) error {
	height, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || height < 0 {
		return errors.Errorf("bad height %q", args[0])
	}
	fmt.Fprintln(w, blockchain.SelectEra(cfg.NetParams(), height))
	return nil
}

// openChain opens the node database of the network and builds a chain on the
// stored index.  An empty database yields a genesis-only chain.
func openChain(cfg *config.Config) (*nodedb.DB, *blockchain.BlockChain, error) {
	db, err := nodedb.Open(filepath.Join(cfg.DataDir, nodeDBName))
	if err != nil {
		return nil, nil, err
	}
	index, err := db.LoadIndex()
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	if index.Len() == 0 {
		index = nil
	}
	chain, err := blockchain.New(&blockchain.Config{
		ChainParams: cfg.NetParams(),
		Index:       index,
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, chain, nil
}

func nextBitsCmd(cfg *config.Config, args []string, w io.Writer) error {
	ts, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return errors.Wrapf(err, "bad time %q", args[0])
	}
	db, chain, err := openChain(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	bits, err := chain.CalcNextRequiredDifficulty(time.Unix(ts, 0))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%08x\n", bits)
	return nil
}

// readHeaders parses one hex-encoded 80-byte header per line.  Blank lines
// and lines starting with # are skipped.
func readHeaders(r io.Reader) ([]*wire.BlockHeader, error) {
	var headers []*wire.BlockHeader
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		raw, err := hex.DecodeString(text)
		if err != nil || len(raw) != wire.MaxBlockHeaderPayload {
			return nil, errors.Errorf("line %d: want %d hex-encoded bytes",
				line, wire.MaxBlockHeaderPayload)
		}
		header := new(wire.BlockHeader)
		if err := header.Deserialize(bytes.NewReader(raw)); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		headers = append(headers, header)
	}
	return headers, errors.Wrap(scanner.Err(), "read headers")
}

func importCmd(cfg *config.Config, args []string, w io.Writer) error {
	f, err := os.Open(args[0])
	if err != nil {
		return errors.Wrap(err, "open header file")
	}
	headers, err := readHeaders(f)
	f.Close()
	if err != nil {
		return err
	}

	db, chain, err := openChain(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	index := chain.Index()
	stored, err := db.LoadIndex()
	if err != nil {
		return err
	}
	from := blockchain.NodeID(stored.Len())

	progress := progresslog.NewHeaderProgressLogger("Imported", log.Root())
	var added, skipped int
	for i, header := range headers {
		hash := header.BlockHash()
		if index.HaveBlock(&hash) {
			skipped++
			continue
		}
		var id blockchain.NodeID
		if cfg.Verify {
			id, err = chain.ProcessBlockHeader(header)
		} else {
			id, err = index.AddHeader(header)
		}
		if err != nil {
			// Keep what was accepted so far.
			if _, serr := db.SaveIndex(index, from); serr != nil {
				log.Error("Unable to save block index", "error", serr)
			}
			return errors.Wrapf(err, "header %d (%v)", i, hash)
		}
		added++
		node, _ := index.LookupNode(id)
		progress.LogHeader(node)
	}
	if _, err := db.SaveIndex(index, from); err != nil {
		return err
	}

	tip, _ := index.LookupNode(index.Tip())
	log.Info("Imported headers", "added", added, "skipped", skipped,
		"verified", cfg.Verify)
	fmt.Fprintf(w, "added %d skipped %d tip %v height %d bits %08x\n",
		added, skipped, tip.Hash, tip.Height, tip.Bits)
	return nil
}
