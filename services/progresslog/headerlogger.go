// Copyright (c) 2017-2018 The qitmeer developers
// Copyright (c) 2016 The btcsuite developers
// Copyright (c) 2016-2018 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package progresslog

import (
	"fmt"
	"sync"
	"time"

	"github.com/guncoin/powcore/core/blockchain"
	"github.com/guncoin/powcore/log"
)

// defaultInterval is the minimum time between two progress messages.
const defaultInterval = 10 * time.Second

// HeaderProgressLogger provides periodic logging of long header imports.
type HeaderProgressLogger struct {
	receivedHeaders int64
	lastLogTime     time.Time
	interval        time.Duration
	now             func() time.Time

	subsystemLogger log.Logger
	progressAction  string
	sync.Mutex
}

// NewHeaderProgressLogger returns a new header progress logger.
// The progress message is templated as follows:
//  {progressAction} {numProcessed} {headers|header} in the last {timePeriod}
//  (height {lastHeight}, {lastTimestamp})
func NewHeaderProgressLogger(progressMessage string, logger log.Logger) *HeaderProgressLogger {
	return &HeaderProgressLogger{
		lastLogTime:     time.Now(),
		interval:        defaultInterval,
		now:             time.Now,
		progressAction:  progressMessage,
		subsystemLogger: logger,
	}
}

// LogHeader counts node and logs the totals at most once per interval.  It
// reports whether a message was written.
func (b *HeaderProgressLogger) LogHeader(node blockchain.BlockNode) bool {
	b.Lock()
	defer b.Unlock()
	b.receivedHeaders++

	now := b.now()
	duration := now.Sub(b.lastLogTime)
	if duration < b.interval {
		return false
	}

	// Truncate the duration to 10s of milliseconds.
	tDuration := duration.Truncate(10 * time.Millisecond)

	headerStr := "headers"
	if b.receivedHeaders == 1 {
		headerStr = "header"
	}
	b.subsystemLogger.Info(fmt.Sprintf("%s %d %s in the last %s (height %d, %s)",
		b.progressAction, b.receivedHeaders, headerStr, tDuration,
		node.Height, node.Time()))

	b.receivedHeaders = 0
	b.lastLogTime = now
	return true
}

// SetLastLogTime restarts the interval at t.
func (b *HeaderProgressLogger) SetLastLogTime(t time.Time) {
	b.Lock()
	b.lastLogTime = t
	b.Unlock()
}
