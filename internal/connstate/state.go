/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package connstate is asocket's half-close/broken-pipe detector,
// adapted from the top-level connstate package. The teacher's version
// runs its own epoll/kqueue registration purely to watch for EOF on
// pooled, otherwise-idle connections; asocket has no idle connections
// to watch — every read/write already flows through service's
// completion path, which already observes EOF (n==0) and EPIPE/ECONNRESET
// directly. So Tracker is driven by those observations instead of a
// second poller, keeping the ConnState enum/interface shape but
// dropping the side-channel registration machinery it no longer needs.
package connstate

import "sync/atomic"

// State mirrors the teacher's ConnState enum.
type State uint32

const (
	StateOK State = iota
	StateRemoteClosed
	StateClosed
)

// Tracker is a per-socket broken-pipe detector. Zero value is StateOK.
type Tracker struct {
	state uint32
}

// State returns the tracker's current state.
func (t *Tracker) State() State {
	return State(atomic.LoadUint32(&t.state))
}

// ObserveReceive updates state from a completed receive: a
// zero-length, error-free result is the peer's half-close.
func (t *Tracker) ObserveReceive(transferred int, brokenPipe bool) {
	if brokenPipe || transferred == 0 {
		atomic.CompareAndSwapUint32(&t.state, uint32(StateOK), uint32(StateRemoteClosed))
	}
}

// ObserveBrokenPipe marks the tracker remote-closed from a failed
// send, without needing a zero-length receive to have happened first.
func (t *Tracker) ObserveBrokenPipe() {
	atomic.CompareAndSwapUint32(&t.state, uint32(StateOK), uint32(StateRemoteClosed))
}

// Close marks the tracker locally closed, taking priority over any
// remote-closed observation recorded earlier.
func (t *Tracker) Close() {
	atomic.StoreUint32(&t.state, uint32(StateClosed))
}
