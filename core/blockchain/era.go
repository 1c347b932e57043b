// Copyright (c) 2017-2018 The qitmeer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"

	"github.com/guncoin/powcore/params"
)

// Era names the difficulty rule which applies at a height.
type Era int

const (
	// EraBootstrap keeps the previous bits while there is too little
	// history to retarget.
	EraBootstrap Era = iota

	// EraEasyReset requires the proof of work limit at the replacement
	// funds and masternode payment heights.
	EraEasyReset

	// EraDarkGravity retargets every block with DarkGravity v3.
	EraDarkGravity

	// EraEHRC retargets every block from a short, a medium and a long
	// window.
	EraEHRC

	// EraNeoScryptReset requires the NeoScrypt limit right after the hash
	// function switch.
	EraNeoScryptReset

	// EraLegacy retargets once per adjustment interval.
	EraLegacy
)

var eraStrings = map[Era]string{
	EraBootstrap:      "bootstrap",
	EraEasyReset:      "easy-reset",
	EraDarkGravity:    "dark-gravity",
	EraEHRC:           "ehrc",
	EraNeoScryptReset: "neoscrypt-reset",
	EraLegacy:         "legacy",
}

// String returns the Era as a human-readable name.
func (e Era) String() string {
	if s := eraStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown Era (%d)", int(e))
}

// eraRule matches the heights at which era applies.
type eraRule struct {
	era   Era
	match func(p *params.Params, height int64) bool
}

// eraRules is evaluated in order and the first match wins.  Later rules may
// overlap earlier ones; the order decides.
var eraRules = []eraRule{
	{EraBootstrap, func(p *params.Params, height int64) bool {
		return height < params.BootstrapHeight
	}},
	{EraEasyReset, func(p *params.Params, height int64) bool {
		return (p.ReplacementFundsHeight != 0 && height == p.ReplacementFundsHeight) ||
			(p.MasternodeEnforcePaymentHeight != 0 && height == p.MasternodeEnforcePaymentHeight)
	}},
	{EraDarkGravity, func(p *params.Params, height int64) bool {
		return p.MasternodeEnforcePaymentHeight != 0 &&
			height >= p.MasternodeEnforcePaymentHeight
	}},
	{EraEHRC, func(p *params.Params, height int64) bool {
		return height >= p.DiffChangeHeight
	}},
	{EraNeoScryptReset, func(p *params.Params, height int64) bool {
		return height >= p.NeoScryptHeight &&
			height < p.NeoScryptHeight+params.NeoScryptResetBlocks
	}},
}

// SelectEra returns the difficulty rule for a block at height.
func SelectEra(p *params.Params, height int64) Era {
	for _, rule := range eraRules {
		if rule.match(p, height) {
			return rule.era
		}
	}
	return EraLegacy
}
