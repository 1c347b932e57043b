// Copyright (c) 2017-2018 The qitmeer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nodedb

import (
	l "github.com/guncoin/powcore/log"
)

var log l.Logger = l.New(l.Ctx{"module": "nodedb"})

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger l.Logger) {
	log = logger
}
