// Copyright (c) 2017-2018 The qitmeer developers
// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package params

import (
	"time"

	"github.com/btcsuite/btcd/wire"
)

// mainPowLimit is the highest proof of work value a block can
// have for the main network. It is the value ~uint256(0) >> 20.
var mainPowLimit = powLimitShift(20)

// mainNeoScryptLimit is the target of the blocks right after the switch to
// NeoScrypt, ~uint256(0) >> 28.
var mainNeoScryptLimit = powLimitShift(28)

// target time per block unit second(s)
const mainTargetTimePerBlock = 90

var mainGenesis = GenesisParams{
	Version: 1,
	Time:    1397923502, // 2014-04-19 16:05:02 GMT
	Nonce:   2085244361,
	Bits:    0x1e0ffff0,
	Reward:  50 * 1e8,
}

// MainNetParams defines the network parameters for the main network.
var MainNetParams = Params{
	Name:        "mainnet",
	Net:         wire.BitcoinNet(0xabc6c3aa),
	DefaultPort: "42954",
	DNSSeeds: []DNSSeed{
		{"seed.guncoin.info", false},
		{"seed2.guncoin.info", false},
	},

	// Chain parameters
	Genesis:            &mainGenesis,
	PowLimit:           mainPowLimit,
	PowLimitBits:       0x1e0fffff,
	PowNeoScryptLimit:  mainNeoScryptLimit,
	TargetTimePerBlock: time.Second * mainTargetTimePerBlock,
	TargetTimespan:     time.Second * 14400, // 160 blocks
	DiffChangeHeight:   345000,
	NeoScryptHeight:    120000,
	NeoScryptForkTime:  1414482565,

	ReduceMinDifficulty: false,
	PowNoRetargeting:    false,

	// Consensus rule change deployments.
	RuleChangeActivationThreshold: 1916, // 95% of MinerConfirmationWindow
	MinerConfirmationWindow:       2016,
	Deployments: [DefinedDeployments]ConsensusDeployment{
		DeploymentTestDummy: {
			BitNumber:  28,
			StartTime:  1199145601, // January 1, 2008 UTC
			ExpireTime: 1230767999, // December 31, 2008 UTC
		},
		DeploymentCSV: {
			BitNumber:  0,
			StartTime:  1462060800, // May 1st, 2016
			ExpireTime: 1493596800, // May 1st, 2017
		},
	},
}
