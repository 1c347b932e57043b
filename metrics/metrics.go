// Copyright (c) 2017-2019 The Qitmeer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// The parts code inspired & originated from
// https://github.com/ethereum/go-ethereum/metrics

// Package metrics provides the counters of the validation pipeline.
package metrics

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/guncoin/powcore/log"
	"github.com/rcrowley/go-metrics"
)

// MetricsEnabledFlag is the CLI flag name to use to enable metrics collections.
const MetricsEnabledFlag = "metrics"

// Enabled is the flag specifying if metrics are enable or not.
var Enabled = false

// Init enables or disables the metrics system. Since we need this to run before
// any other code gets to create meters and timers, we'll actually do an ugly hack
// and peek into the command line args for the metrics flag.
func init() {
	for _, arg := range os.Args {
		if strings.TrimLeft(arg, "-") == MetricsEnabledFlag {
			log.Info("Enabling metrics collection")
			Enabled = true
		}
	}
}

// NewCounter create a new metrics Counter, either a real one of a NOP stub depending
// on the metrics flag.
func NewCounter(name string) metrics.Counter {
	if !Enabled {
		return new(metrics.NilCounter)
	}
	return metrics.GetOrRegisterCounter(name, metrics.DefaultRegistry)
}

// NewMeter create a new metrics Meter, either a real one of a NOP stub depending
// on the metrics flag.
func NewMeter(name string) metrics.Meter {
	if !Enabled {
		return new(metrics.NilMeter)
	}
	return metrics.GetOrRegisterMeter(name, metrics.DefaultRegistry)
}

// NewTimer create a new metrics Timer, either a real one of a NOP stub depending
// on the metrics flag.
func NewTimer(name string) metrics.Timer {
	if !Enabled {
		return new(metrics.NilTimer)
	}
	return metrics.GetOrRegisterTimer(name, metrics.DefaultRegistry)
}

func NewRegisteredMeter(name string, r metrics.Registry) metrics.Meter {
	return metrics.NewRegisteredMeter(name, r)
}

func NewRegisteredCounter(name string, r metrics.Registry) metrics.Counter {
	return metrics.NewRegisteredCounter(name, r)
}

// WriteSummary prints one line per metric of r, sorted by name.  A nil
// registry means the default one.
func WriteSummary(w io.Writer, r metrics.Registry) {
	if r == nil {
		r = metrics.DefaultRegistry
	}
	var lines []string
	r.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case metrics.Counter:
			lines = append(lines, fmt.Sprintf("%s count=%d", name, m.Count()))
		case metrics.Meter:
			s := m.Snapshot()
			lines = append(lines, fmt.Sprintf("%s count=%d rate1=%.2f",
				name, s.Count(), s.Rate1()))
		case metrics.Timer:
			s := m.Snapshot()
			lines = append(lines, fmt.Sprintf("%s count=%d mean=%.0fns max=%dns",
				name, s.Count(), s.Mean(), s.Max()))
		}
	})
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
