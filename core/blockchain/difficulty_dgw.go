// Copyright (c) 2017-2018 The qitmeer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/guncoin/powcore/core/types/pow"
	"github.com/guncoin/powcore/params"
	"github.com/holiman/uint256"
)

// dgwPastBlocks is the window of DarkGravity v3.
const dgwPastBlocks = 30

// calcDarkGravity retargets every block from the targets and the time span
// of the last dgwPastBlocks blocks.  A chain shorter than the window gets
// the proof of work limit.
func calcDarkGravity(p *params.Params, chain ChainReader, last BlockNode) (uint32, error) {
	node := last
	pastTargetAvg := new(uint256.Int)
	for count := uint64(1); count <= dgwPastBlocks; count++ {
		target, _, _ := pow.CompactToTarget(node.Bits)
		if count == 1 {
			pastTargetAvg.Set(target)
		} else {
			// This weights the running value by count, not count-1, so
			// it is not a plain mean.
			pastTargetAvg.Mul(pastTargetAvg, uint256.NewInt(count))
			pastTargetAvg.Add(pastTargetAvg, target)
			pastTargetAvg.Div(pastTargetAvg, uint256.NewInt(count+1))
		}

		if count != dgwPastBlocks {
			// If we hit start of chain return min diff
			if node.IsGenesis() {
				return p.PowLimitBits, nil
			}
			parent, ok := chain.LookupNode(node.Parent)
			if !ok {
				return 0, AssertError(fmt.Sprintf("parent of block at "+
					"height %d is missing", node.Height))
			}
			node = parent
		}
	}

	targetTimespan := dgwPastBlocks * p.TargetSpacingSeconds()
	actualTimespan := int64(last.Timestamp) - int64(node.Timestamp)
	if actualTimespan < targetTimespan/3 {
		actualTimespan = targetTimespan / 3
	}
	if actualTimespan > targetTimespan*3 {
		actualTimespan = targetTimespan * 3
	}

	newTarget := pastTargetAvg.Mul(pastTargetAvg, uint256.NewInt(uint64(actualTimespan)))
	newTarget.Div(newTarget, uint256.NewInt(uint64(targetTimespan)))

	return finishRetarget(p, "dark-gravity", last.Height+1, last.Bits, newTarget), nil
}
