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

package ioblock

import (
	"sync/atomic"

	"github.com/cloudweave/corenet/netaddr"
)

// The result types below are the inline results StoreResult/Result
// store in a Block, one per asocket operation kind. They live here
// rather than in package asocket because a Block must be able to
// carry a typed result before asocket (or even service) ever sees the
// completion — package service's platform ports populate these
// directly from a raw completion, and asocket only reads them back.

// ReceiveResult is the outcome of a connected-socket receive.
type ReceiveResult struct {
	Transferred int
}

// SendResult is the outcome of a connected-socket send.
type SendResult struct {
	Transferred int
}

// ReceiveFromResult is the outcome of a datagram receive, also
// carrying the sender's endpoint.
type ReceiveFromResult struct {
	Transferred int
	Remote      netaddr.Endpoint
}

// SendToResult is the outcome of a datagram send.
type SendToResult struct {
	Transferred int
}

// ConnectResult is the outcome of an outbound connect.
type ConnectResult struct{}

// AcceptResult is the outcome of an accept; Fd is the raw accepted
// file descriptor, Remote its peer endpoint. asocket wraps Fd into an
// AcceptedSocket the first time AcceptedSocket is called.
type AcceptResult struct {
	Fd     int
	Remote netaddr.Endpoint

	claimed uint32
}

// Claim reports whether this is the first call to Claim for this
// result, implementing accept_t::accepted_socket's "callable at most
// once" contract: package asocket calls this before wrapping Fd into
// a Socket, and fails with CodeBadFileDescriptor on a second call.
func (r *AcceptResult) Claim() bool {
	return atomic.CompareAndSwapUint32(&r.claimed, 0, 1)
}
