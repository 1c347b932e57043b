// Copyright (c) 2017-2018 The qitmeer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"github.com/guncoin/powcore/params"
)

type Config struct {
	HomeDir       string `short:"A" long:"appdata" description:"Path to application home directory"`
	ShowVersion   bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile    string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir       string `short:"b" long:"datadir" description:"Directory to store the node database"`
	LogDir        string `long:"logdir" description:"Directory to log output."`
	NoFileLogging bool   `long:"nofilelogging" description:"Disable file logging."`
	DebugLevel    string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, crit} "`
	TestNet       bool   `long:"testnet" description:"Use the test network"`
	RegTest       bool   `long:"regtest" description:"Use the regression test network"`
	Metrics       bool   `long:"metrics" description:"Collect metrics and print them on exit"`
	// Import
	Verify bool `long:"verify" description:"Check the difficulty and proof of work of imported headers"`

	netParams *params.Params
}

// NetParams returns the profile of the selected network.
func (c *Config) NetParams() *params.Params {
	if c.netParams == nil {
		return params.ActiveNetParams.Params
	}
	return c.netParams
}
