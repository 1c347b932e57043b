// Copyright (c) 2017-2018 The qitmeer developers
// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package params

import (
	"time"

	"github.com/btcsuite/btcd/wire"
)

var testNetGenesis = GenesisParams{
	Version: 1,
	Time:    1397925814,
	Nonce:   385915966,
	Bits:    0x1e0ffff0,
	Reward:  50 * 1e8,
}

// TestNetParams defines the network parameters for the test network.
var TestNetParams = Params{
	Name:        "testnet",
	Net:         wire.BitcoinNet(0xadccbbdd),
	DefaultPort: "52954",
	DNSSeeds: []DNSSeed{
		{"testnet-seed1.guncoin.info", false},
		{"testnet-seed2.guncoin.info", false},
	},

	// Chain parameters
	Genesis:            &testNetGenesis,
	PowLimit:           mainPowLimit,
	PowLimitBits:       0x1e0fffff,
	PowNeoScryptLimit:  mainNeoScryptLimit,
	TargetTimePerBlock: time.Second * mainTargetTimePerBlock,
	TargetTimespan:     time.Second * 14400,
	DiffChangeHeight:   150000,
	NeoScryptHeight:    120000,
	NeoScryptForkTime:  1414482565,

	ReduceMinDifficulty: true,
	PowNoRetargeting:    false,

	// Consensus rule change deployments.
	RuleChangeActivationThreshold: 1512, // 75% of MinerConfirmationWindow
	MinerConfirmationWindow:       2016,
	Deployments: [DefinedDeployments]ConsensusDeployment{
		DeploymentTestDummy: {
			BitNumber:  28,
			StartTime:  1199145601, // January 1, 2008 UTC
			ExpireTime: 1230767999, // December 31, 2008 UTC
		},
		DeploymentCSV: {
			BitNumber:  0,
			StartTime:  1456790400, // March 1st, 2016
			ExpireTime: 1493596800, // May 1st, 2017
		},
	},
}
