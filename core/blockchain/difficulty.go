// Copyright (c) 2017-2018 The qitmeer developers
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/guncoin/powcore/core/types/pow"
	l "github.com/guncoin/powcore/log"
	"github.com/guncoin/powcore/params"
	"github.com/holiman/uint256"
)

// The eHRC rule uses fixed constants rather than the profile spacing.
const (
	ehrcTargetTimespan = 90
	ehrcShortSample    = 15
	ehrcMediumSample   = 180
	ehrcLongSample     = 720

	// ehrcMinTimespan and ehrcMaxTimespan bound the damped timespan so a
	// single block never moves the target by more than about 9%.
	ehrcMinTimespan = ehrcTargetTimespan * 453 / 494
	ehrcMaxTimespan = ehrcTargetTimespan * 494 / 453
)

// CalcNextRequiredDifficulty calculates the required difficulty for the block
// after tip based on the difficulty retarget rules of p.  newBlockTime is the
// timestamp of the candidate block.
//
// An AssertError is returned when tip is not in chain or when chain holds
// less history than the selected rule has to walk.
func CalcNextRequiredDifficulty(p *params.Params, chain ChainReader, tip NodeID, newBlockTime uint32) (uint32, error) {
	last, ok := chain.LookupNode(tip)
	if !ok {
		return 0, AssertError(fmt.Sprintf("tip node %d is not in the chain", tip))
	}
	bits, _, err := calcNextRequiredDifficulty(p, chain, last, newBlockTime)
	return bits, err
}

// calcNextRequiredDifficulty dispatches on the era of the height after last
// and also returns the era so callers can account for it.
func calcNextRequiredDifficulty(p *params.Params, chain ChainReader, last BlockNode, newBlockTime uint32) (uint32, Era, error) {
	era := SelectEra(p, last.Height+1)
	var (
		bits uint32
		err  error
	)
	switch era {
	case EraBootstrap:
		bits = last.Bits
	case EraEasyReset:
		bits = p.PowLimitBits
	case EraDarkGravity:
		bits, err = calcDarkGravity(p, chain, last)
	case EraEHRC:
		bits, err = calcEHRC(p, chain, last)
	case EraNeoScryptReset:
		bits = pow.TargetToCompact(p.PowNeoScryptLimit)
	default:
		bits, err = calcLegacy(p, chain, last, newBlockTime)
	}
	return bits, era, err
}

// findPrevTestNetDifficulty returns the difficulty of the previous block which
// did not have the special testnet minimum difficulty rule applied.  The walk
// stops at genesis, at a retarget boundary, or at a block whose bits differ
// from the limit.
func findPrevTestNetDifficulty(p *params.Params, chain ChainReader, node BlockNode) (uint32, error) {
	interval := p.DifficultyAdjustmentInterval()
	for !node.IsGenesis() && node.Height%interval != 0 && node.Bits == p.PowLimitBits {
		parent, ok := chain.LookupNode(node.Parent)
		if !ok {
			return 0, AssertError(fmt.Sprintf("parent of block at "+
				"height %d is missing", node.Height))
		}
		node = parent
	}
	return node.Bits, nil
}

// calcLegacy applies the periodic retarget: the target only changes once
// every DifficultyAdjustmentInterval blocks.
func calcLegacy(p *params.Params, chain ChainReader, last BlockNode, newBlockTime uint32) (uint32, error) {
	interval := p.DifficultyAdjustmentInterval()
	height := last.Height + 1

	// We're not at a retarget point, return the old difficulty.
	if height%interval != 0 {
		// For networks that support it, allow special reduction of the
		// required difficulty once too much time has elapsed without
		// mining a block.
		if p.ReduceMinDifficulty {
			allowMinTime := int64(last.Timestamp) + 2*p.TargetSpacingSeconds()
			if int64(newBlockTime) > allowMinTime {
				return p.PowLimitBits, nil
			}

			// The block was mined within the desired timeframe, so
			// return the difficulty for the last block which did
			// not have the special minimum difficulty rule applied.
			return findPrevTestNetDifficulty(p, chain, last)
		}
		return last.Bits, nil
	}

	// Go back by a whole interval to the first block of the window.
	first, ok := walkBack(chain, last, interval)
	if !ok {
		return 0, AssertError(fmt.Sprintf("retarget at height %d needs "+
			"%d ancestors of block %v", height, interval, last.Hash))
	}

	if p.PowNoRetargeting {
		return last.Bits, nil
	}

	// Limit the amount of adjustment that can occur to the previous
	// difficulty.
	targetTimespan := p.TargetTimespanSeconds()
	actualTimespan := int64(last.Timestamp) - int64(first.Timestamp)
	actualTimespan = targetTimespan + (actualTimespan-targetTimespan)/8
	if actualTimespan < targetTimespan-targetTimespan/4 {
		actualTimespan = targetTimespan - targetTimespan/4
	}
	if actualTimespan > targetTimespan+targetTimespan/2 {
		actualTimespan = targetTimespan + targetTimespan/2
	}

	// Calculate new target difficulty as:
	//  currentDifficulty * (adjustedTimespan / targetTimespan)
	// Halve the target first when it is within a bit of the limit so the
	// product stays inside 256 bits.
	oldTarget, _, _ := pow.CompactToTarget(last.Bits)
	newTarget := new(uint256.Int).Set(oldTarget)
	shift := newTarget.BitLen() > p.PowLimit.BitLen()-1
	if shift {
		newTarget.Rsh(newTarget, 1)
	}
	newTarget.Mul(newTarget, uint256.NewInt(uint64(actualTimespan)))
	newTarget.Div(newTarget, uint256.NewInt(uint64(targetTimespan)))
	if shift {
		newTarget.Lsh(newTarget, 1)
	}

	return finishRetarget(p, "legacy", height, last.Bits, newTarget), nil
}

// ehrcTimespan returns the damped and clamped timespan of the eHRC rule
// given the tip time and the times at the start of the short, medium and
// long windows.  All divisions truncate.
func ehrcTimespan(lastTime, shortTime, mediumTime, longTime int64) int64 {
	var short, medium, long, actual int64
	if lastTime-shortTime != 0 {
		short = (lastTime - shortTime) / ehrcShortSample
	}
	if lastTime-mediumTime != 0 {
		medium = (lastTime - mediumTime) / ehrcMediumSample
	}
	if lastTime-longTime != 0 {
		long = (lastTime - longTime) / ehrcLongSample
	}

	sum := short + medium + long
	if sum != 0 {
		actual = sum / 3
	}

	// Apply .25 damping
	actual = (actual + 3*ehrcTargetTimespan) / 4

	// 9% difficulty limiter
	if actual < ehrcMinTimespan {
		actual = ehrcMinTimespan
	}
	if actual > ehrcMaxTimespan {
		actual = ehrcMaxTimespan
	}
	return actual
}

// calcEHRC retargets every block from three sample windows averaged
// together and compared against a 90 second spacing.
func calcEHRC(p *params.Params, chain ChainReader, last BlockNode) (uint32, error) {
	height := last.Height + 1
	if height <= ehrcLongSample+1 {
		return p.PowLimitBits, nil
	}

	var shortTime, mediumTime int64
	first := last
	for i := 0; i < ehrcLongSample; i++ {
		parent, ok := chain.LookupNode(first.Parent)
		if !ok {
			return 0, AssertError(fmt.Sprintf("eHRC at height %d needs "+
				"%d ancestors of block %v", height, ehrcLongSample, last.Hash))
		}
		first = parent
		if i == ehrcShortSample-1 {
			shortTime = int64(first.Timestamp)
		}
		if i == ehrcMediumSample-1 {
			mediumTime = int64(first.Timestamp)
		}
	}

	actual := ehrcTimespan(int64(last.Timestamp), shortTime, mediumTime,
		int64(first.Timestamp))

	oldTarget, _, _ := pow.CompactToTarget(last.Bits)
	newTarget := new(uint256.Int).Mul(oldTarget, uint256.NewInt(uint64(actual)))
	newTarget.Div(newTarget, uint256.NewInt(ehrcTargetTimespan))

	return finishRetarget(p, "ehrc", height, last.Bits, newTarget), nil
}

// finishRetarget limits newTarget to the proof of work limit, logs the
// change and returns the compact form.
func finishRetarget(p *params.Params, rule string, height int64, oldBits uint32, newTarget *uint256.Int) uint32 {
	if newTarget.Gt(p.PowLimit) {
		newTarget.Set(p.PowLimit)
	}

	// Log new target difficulty and return it.  The new target logging is
	// intentionally converting the bits back to a number instead of using
	// newTarget since conversion to the compact representation loses
	// precision.
	newBits := pow.TargetToCompact(newTarget)
	log.Debug("Difficulty retarget", "rule", rule, "height", height)
	log.Debug("Old target", "bits", fmt.Sprintf("%08x", oldBits),
		"target", targetClosure(oldBits))
	log.Debug("New target", "bits", fmt.Sprintf("%08x", newBits),
		"target", targetClosure(newBits))
	return newBits
}

func targetClosure(bits uint32) l.LogClosure {
	return l.NewLogClosure(func() string {
		target, _, _ := pow.CompactToTarget(bits)
		return fmt.Sprintf("%064x", target.ToBig())
	})
}
