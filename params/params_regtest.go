// Copyright (c) 2017-2018 The qitmeer developers
// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package params

import (
	"math"
	"time"

	"github.com/btcsuite/btcd/wire"
)

// regressionPowLimit is the highest proof of work value a block can have
// for the regression test network.  It is the value ~uint256(0) >> 1.
var regressionPowLimit = powLimitShift(1)

var regressionGenesis = GenesisParams{
	Version: 1,
	Time:    1296688602,
	Nonce:   1,
	Bits:    0x207fffff,
	Reward:  50 * 1e8,
}

// RegressionNetParams defines the network parameters for the regression test
// network.  Retargeting is off so blocks can be mined on demand.
var RegressionNetParams = Params{
	Name:        "regtest",
	Net:         wire.BitcoinNet(0xdab5bffa),
	DefaultPort: "18444",
	DNSSeeds:    []DNSSeed{}, // NOTE: There must NOT be any seeds.

	// Chain parameters
	Genesis:            &regressionGenesis,
	PowLimit:           regressionPowLimit,
	PowLimitBits:       0x207fffff,
	PowNeoScryptLimit:  regressionPowLimit,
	TargetTimePerBlock: time.Second * mainTargetTimePerBlock,
	TargetTimespan:     time.Second * 14400,
	DiffChangeHeight:   345000,
	NeoScryptHeight:    120000,
	NeoScryptForkTime:  1414482565,

	ReduceMinDifficulty: true,
	PowNoRetargeting:    true,

	// Consensus rule change deployments.
	RuleChangeActivationThreshold: 108, // 75%  of MinerConfirmationWindow
	MinerConfirmationWindow:       144,
	Deployments: [DefinedDeployments]ConsensusDeployment{
		DeploymentTestDummy: {
			BitNumber:  28,
			StartTime:  0,             // Always available for vote
			ExpireTime: math.MaxInt64, // Never expires
		},
		DeploymentCSV: {
			BitNumber:  0,
			StartTime:  0,             // Always available for vote
			ExpireTime: math.MaxInt64, // Never expires
		},
	},
}
