// Copyright (c) 2017-2018 The qitmeer developers
// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// powctl inspects compact targets, difficulty eras and header chains of the
// configured network.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/guncoin/powcore/config"
	"github.com/guncoin/powcore/log"
	"github.com/guncoin/powcore/metrics"
)

func main() {
	// Work around defer not working after os.Exit()
	if err := powctlMain(os.Args[1:], os.Stdout); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func powctlMain(args []string, w io.Writer) error {
	cfg, rest, err := config.LoadConfig(args)
	if err != nil {
		return err
	}
	defer func() {
		if log.LogWrite() != nil {
			log.LogWrite().Close()
		}
	}()

	if len(rest) == 0 {
		return fmt.Errorf("no command given, want one of %s", commandNames())
	}
	err = runCommand(cfg, rest[0], rest[1:], w)
	if metrics.Enabled {
		metrics.WriteSummary(w, nil)
	}
	return err
}
