// Copyright (c) 2017-2018 The qitmeer developers
// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package params

import (
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/guncoin/powcore/core/types/pow"
	"github.com/holiman/uint256"
)

// BootstrapHeight is the first height at which the difficulty rules look at
// chain history.  Blocks below it simply inherit the previous bits.
const BootstrapHeight = 30

// NeoScryptResetBlocks is the number of blocks starting at NeoScryptHeight
// which are required to carry the NeoScrypt limit.
const NeoScryptResetBlocks = 10

// DNSSeed identifies a DNS seed.
type DNSSeed struct {
	// Host defines the hostname of the seed.
	Host string

	// HasFiltering defines whether the seed supports filtering
	// by service flags (wire.ServiceFlag).
	HasFiltering bool
}

// ConsensusDeployment defines details related to a specific consensus rule
// change that is voted in.  Only the descriptor lives here; tracking the
// threshold state of a deployment is the job of the chain state machine.
type ConsensusDeployment struct {
	// BitNumber defines the specific bit number within the block version
	// this particular soft-fork deployment refers to.
	BitNumber uint8

	// StartTime is the median block time after which voting on the
	// deployment starts.
	StartTime uint64

	// ExpireTime is the median block time after which the attempted
	// deployment expires.
	ExpireTime uint64
}

// Constants that define the deployment offset in the deployments field of the
// parameters for each deployment.  This is useful to be able to get the details
// of a specific deployment by name.
const (
	// DeploymentTestDummy defines the rule change deployment ID for testing
	// purposes.
	DeploymentTestDummy = iota

	// DeploymentCSV defines the rule change deployment ID for the CSV
	// soft-fork package.
	DeploymentCSV

	// NOTE: DefinedDeployments must always come last since it is used to
	// determine how many defined deployments there currently are.

	// DefinedDeployments is the number of currently defined deployments.
	DefinedDeployments
)

// Params defines a guncoin network by its consensus parameters.  A Params
// value is built once per process and must not be modified after it has
// been handed to the chain code.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net wire.BitcoinNet

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// DNSSeeds defines a list of DNS seeds for the network that are used
	// as one method to discover peers.
	DNSSeeds []DNSSeed

	// Genesis holds the construction parameters of the first block.
	Genesis *GenesisParams

	// PowLimit defines the highest allowed proof of work value for a block
	// as a uint256.
	PowLimit *uint256.Int

	// PowLimitBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowLimitBits uint32

	// PowNeoScryptLimit is the target required for the NeoScryptResetBlocks
	// blocks following the switch of the proof of work hash to NeoScrypt.
	PowNeoScryptLimit *uint256.Int

	// TargetTimespan is the desired amount of time that should elapse
	// before the block difficulty requirement is examined to determine how
	// it should be changed in order to maintain the desired block
	// generation rate.
	TargetTimespan time.Duration

	// TargetTimePerBlock is the desired amount of time to generate each
	// block.
	TargetTimePerBlock time.Duration

	// DiffChangeHeight is the height at which the per-block eHRC
	// retargeting replaces the periodic retarget.
	DiffChangeHeight int64

	// NeoScryptHeight is the first height mined with the NeoScrypt proof
	// of work hash.
	NeoScryptHeight int64

	// NeoScryptForkTime is the block timestamp from which the proof of
	// work hash is NeoScrypt instead of scrypt.
	NeoScryptForkTime int64

	// ReplacementFundsHeight and MasternodeEnforcePaymentHeight are heights
	// that must be mined at the proof of work limit.  The second one also
	// enables DarkGravity retargeting from that height on.  A zero value
	// disables the rule.
	ReplacementFundsHeight         int64
	MasternodeEnforcePaymentHeight int64

	// ReduceMinDifficulty defines whether the network allows a block at the
	// proof of work limit once too much time has elapsed without mining a
	// block.  This is really only useful for test networks and should not
	// be set on a main network.
	ReduceMinDifficulty bool

	// PowNoRetargeting disables the periodic retarget.  Only used by the
	// regression test network.
	PowNoRetargeting bool

	// These fields are related to voting on consensus rule changes as
	// defined by BIP0009.
	//
	// RuleChangeActivationThreshold is the number of blocks in a threshold
	// state retarget window for which a positive vote for a rule change
	// must be cast in order to lock in a rule change. It should typically
	// be 95% for the main network and 75% for test networks.
	//
	// MinerConfirmationWindow is the number of blocks in each threshold
	// state retarget window.
	//
	// Deployments define the specific consensus rule changes to be voted
	// on.
	RuleChangeActivationThreshold uint32
	MinerConfirmationWindow       uint32
	Deployments                   [DefinedDeployments]ConsensusDeployment
}

// DifficultyAdjustmentInterval returns the number of blocks between periodic
// retargets.
func (p *Params) DifficultyAdjustmentInterval() int64 {
	return int64(p.TargetTimespan / p.TargetTimePerBlock)
}

// TargetTimespanSeconds returns TargetTimespan in whole seconds.
func (p *Params) TargetTimespanSeconds() int64 {
	return int64(p.TargetTimespan / time.Second)
}

// TargetSpacingSeconds returns TargetTimePerBlock in whole seconds.
func (p *Params) TargetSpacingSeconds() int64 {
	return int64(p.TargetTimePerBlock / time.Second)
}

// IsNeoScrypt reports whether a header with the given timestamp is hashed
// with NeoScrypt.
func (p *Params) IsNeoScrypt(timestamp int64) bool {
	return timestamp >= p.NeoScryptForkTime
}

var (
	// ErrDuplicateNet describes an error where the parameters for a network
	// could not be set due to the network already being a standard
	// network or previously-registered into this package.
	ErrDuplicateNet = errors.New("duplicate network")

	// ErrUnknownNet describes an error where no registered network matches
	// a requested name.
	ErrUnknownNet = errors.New("unknown network")
)

// Check makes sure the consensus constants of p are usable by the chain
// code.
func (p *Params) Check() error {
	if p.PowLimit == nil || p.PowLimit.IsZero() {
		return fmt.Errorf("%s: proof of work limit is not set", p.Name)
	}
	if !pow.TargetFitsCompact(p.PowLimit) {
		return fmt.Errorf("%s: proof of work limit has no compact form", p.Name)
	}
	if bits := pow.TargetToCompact(p.PowLimit); bits != p.PowLimitBits {
		return fmt.Errorf("%s: proof of work limit bits %08x do not "+
			"match the limit (%08x)", p.Name, p.PowLimitBits, bits)
	}
	if p.PowNeoScryptLimit == nil || p.PowNeoScryptLimit.IsZero() ||
		p.PowNeoScryptLimit.Gt(p.PowLimit) {
		return fmt.Errorf("%s: NeoScrypt limit must be in (0, powLimit]", p.Name)
	}
	if p.TargetTimePerBlock < time.Second || p.TargetTimespan < p.TargetTimePerBlock {
		return fmt.Errorf("%s: invalid target spacing %v for timespan %v",
			p.Name, p.TargetTimePerBlock, p.TargetTimespan)
	}
	if p.TargetTimePerBlock%time.Second != 0 || p.TargetTimespan%time.Second != 0 {
		return fmt.Errorf("%s: target times must be whole seconds", p.Name)
	}
	if p.MinerConfirmationWindow == 0 ||
		p.RuleChangeActivationThreshold > p.MinerConfirmationWindow {
		return fmt.Errorf("%s: activation threshold %d exceeds window %d",
			p.Name, p.RuleChangeActivationThreshold, p.MinerConfirmationWindow)
	}

	var usedBits uint32
	for id, d := range p.Deployments {
		if d.BitNumber >= 29 {
			return fmt.Errorf("%s: deployment %d uses reserved bit %d",
				p.Name, id, d.BitNumber)
		}
		if usedBits&(1<<d.BitNumber) != 0 {
			return fmt.Errorf("%s: deployment %d reuses bit %d",
				p.Name, id, d.BitNumber)
		}
		usedBits |= 1 << d.BitNumber
		if d.StartTime >= d.ExpireTime {
			return fmt.Errorf("%s: deployment %d expires before it starts",
				p.Name, id)
		}
	}

	if p.Genesis == nil {
		return fmt.Errorf("%s: genesis parameters are not set", p.Name)
	}
	target, negative, overflow := pow.CompactToTarget(p.Genesis.Bits)
	if negative || overflow || target.IsZero() || target.Gt(p.PowLimit) {
		return fmt.Errorf("%s: genesis bits %08x are out of range",
			p.Name, p.Genesis.Bits)
	}
	return nil
}

var registeredNets = make(map[wire.BitcoinNet]*Params)

// Register registers the network parameters for a network.  This may error
// with ErrDuplicateNet if the network is already registered (either due to a
// previous Register call, or the network being one of the default networks).
//
// Network parameters should be registered into this package by a main package
// as early as possible.  Then, library packages may lookup networks or network
// parameters based on inputs and work regardless of the network being standard
// or not.
func Register(params *Params) error {
	if _, ok := registeredNets[params.Net]; ok {
		return ErrDuplicateNet
	}
	registeredNets[params.Net] = params
	return nil
}

// ByName returns the registered network with the given name.
func ByName(name string) (*Params, error) {
	for _, p := range registeredNets {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, ErrUnknownNet
}

// mustRegister performs the same function as Register except it panics if there
// is an error.  This should only be called from package init functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

func init() {
	// Register all default networks when the package is initialized.
	mustRegister(&MainNetParams)
	mustRegister(&TestNetParams)
	mustRegister(&RegressionNetParams)
}

// newHashFromStr converts the passed big-endian hex string into a
// chainhash.Hash.  It only differs from the one available in chainhash in
// that it panics on an error since it will only (and must only) be called
// with hard-coded, and therefore known good, hashes.
func newHashFromStr(hexStr string) *chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}
	return hash
}

// powLimitShift returns ~uint256(0) >> shift.
func powLimitShift(shift uint) *uint256.Int {
	all := new(uint256.Int).Not(new(uint256.Int))
	return all.Rsh(all, shift)
}
