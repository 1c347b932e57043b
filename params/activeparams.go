// Copyright (c) 2017-2018 The qitmeer developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package params

// ActiveNetParams is a pointer to the parameters specific to the
// currently active network.
var ActiveNetParams = &MainNetParam

// netParams is used to group parameters for various networks such as the main
// network and test networks.
type netParams struct {
	*Params
	RpcPort string
}

// MainNetParam contains parameters specific to the main network
var MainNetParam = netParams{
	Params:  &MainNetParams,
	RpcPort: "42953",
}

// TestNetParam contains parameters specific to the test network
var TestNetParam = netParams{
	Params:  &TestNetParams,
	RpcPort: "52953",
}

// RegressionNetParam contains parameters specific to the regression test
// network
var RegressionNetParam = netParams{
	Params:  &RegressionNetParams,
	RpcPort: "18443",
}
