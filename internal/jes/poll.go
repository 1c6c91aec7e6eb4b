package jes

import (
	"context"
	"io"
	"time"
)

// pollState tracks one job's progress through the wait loop. A job must be
// seen in the queue before its disappearance means anything: gone before
// first sight is "not there yet", gone after first sight is a purge from
// outside.
type pollState int

const (
	pollWaiting pollState = iota
	pollObserved
	pollDone
	pollTimedOut
	pollFailed
)

func (s pollState) terminal() bool {
	return s == pollDone || s == pollTimedOut || s == pollFailed
}

// waitForCompletion polls the queue until the job completes, the limit
// expires or ctx is cancelled. The deadline is checked after each full
// check, so a run can overshoot the limit by up to one poll interval but a
// job that completed right at the limit is still captured.
func (c *Connector) waitForCompletion(ctx context.Context, j *job, limit time.Duration, sink io.Writer) bool {
	var deadline time.Time
	if limit > 0 {
		deadline = time.Now().Add(limit)
	}

	state := pollWaiting
	for !state.terminal() {
		select {
		case <-ctx.Done():
			j.cc = CodeWaitInterrupted
			c.errf("wait for %s interrupted", j.id)
			return false
		case <-time.After(c.pollInterval):
		}

		state = c.pollOnce(j, state, sink)
		if !state.terminal() && !deadline.IsZero() && time.Now().After(deadline) {
			j.cc = CodeWaitTimeout
			c.errf("job %s did not finish in time", j.id)
			state = pollTimedOut
		}
	}
	return state == pollDone
}

// pollOnce runs a single queue check. A session that cannot be reopened ends
// the wait. A listing that fails mid-transfer is transient; the session is
// dropped and the next tick retries on a fresh connection.
func (c *Connector) pollOnce(j *job, state pollState, sink io.Writer) pollState {
	if err := c.ensureSession(); err != nil {
		j.cc = CodeLoginError
		c.errf("reconnect failed: %v", err)
		return pollFailed
	}

	available, err := c.checkJobAvailability(j)
	if err != nil {
		c.dropSession()
		c.errf("queue check for %s failed, will retry: %v", j.id, err)
		return state
	}

	if !available {
		if state == pollObserved {
			j.cc = CodeJobVanished
			c.errf("job %s disappeared from the queue before its log was captured", j.id)
			return pollFailed
		}
		j.cc = CodeJobNotFound
		c.logf("job %s not in the queue yet", j.id)
		return pollWaiting
	}

	switch c.fetchJobLog(j, sink) {
	case fetchDone:
		c.logf("captured log of %s, completion code %s", j.id, j.cc)
		return pollDone
	case fetchNotReady:
		c.logf("job %s is still running", j.id)
		return pollObserved
	default:
		return pollFailed
	}
}
