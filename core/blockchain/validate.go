// Copyright (c) 2017-2018 The qitmeer developers
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/guncoin/powcore/core/types/pow"
	"github.com/guncoin/powcore/params"
	"github.com/holiman/uint256"
)

// CheckProofOfWork reports whether hash satisfies the target encoded by
// bits.  Targets which are negative, overflow, are zero or are easier than
// the proof of work limit of p never pass.
func CheckProofOfWork(hash *chainhash.Hash, bits uint32, p *params.Params) bool {
	target, err := checkProofOfWorkRange(bits, p)
	if err != nil {
		return false
	}
	return !pow.HashToTarget(hash).Gt(target)
}

// checkProofOfWorkRange decodes bits and ensures the target is in range.
func checkProofOfWorkRange(bits uint32, p *params.Params) (*uint256.Int, error) {
	target, isNegative, isOverflow := pow.CompactToTarget(bits)
	if isNegative || isOverflow {
		str := fmt.Sprintf("block target bits %08x do not encode a "+
			"valid target (negative %v, overflow %v)", bits, isNegative,
			isOverflow)
		return nil, ruleError(ErrUnexpectedDifficulty, str)
	}
	if target.IsZero() {
		str := fmt.Sprintf("block target difficulty of %064x is too "+
			"low", target.ToBig())
		return nil, ruleError(ErrUnexpectedDifficulty, str)
	}

	// The target difficulty must be less than the maximum allowed.
	if target.Gt(p.PowLimit) {
		str := fmt.Sprintf("block target difficulty of %064x is "+
			"higher than max of %064x", target.ToBig(), p.PowLimit.ToBig())
		return nil, ruleError(ErrUnexpectedDifficulty, str)
	}
	return target, nil
}

// checkProofOfWork ensures the proof of work hash of a header is no higher
// than the target its bits claim.
func checkProofOfWork(powHash *chainhash.Hash, bits uint32, p *params.Params) error {
	target, err := checkProofOfWorkRange(bits, p)
	if err != nil {
		return err
	}

	// The block hash must be less than the claimed target.
	hashNum := pow.HashToTarget(powHash)
	if hashNum.Gt(target) {
		str := fmt.Sprintf("block hash of %064x is higher than"+
			" expected max of %064x", hashNum.ToBig(), target.ToBig())
		return ruleError(ErrHighHash, str)
	}
	return nil
}
