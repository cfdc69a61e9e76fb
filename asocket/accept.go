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

package asocket

import (
	"github.com/cloudweave/corenet"
	"github.com/cloudweave/corenet/ioblock"
	"github.com/cloudweave/corenet/netaddr"
)

// AcceptedSocket wraps a completed accept's resulting file descriptor
// into a new, opened (not yet associated) Socket. It can be called at
// most once per completed accept io; a second call fails with
// CodeBadFileDescriptor, mirroring accept_t::accepted_socket exactly.
func AcceptedSocket(listener *Socket, b *ioblock.Block) (*Socket, error) {
	r, err := ioblock.Result[ioblock.AcceptResult](b)
	if r == nil {
		if err != nil {
			return nil, err
		}
		return nil, corenet.CodeBadFileDescriptor
	}
	if !r.Claim() {
		return nil, corenet.CodeBadFileDescriptor
	}

	listener.mu.Lock()
	protocol, family := listener.net.Protocol(), listener.net.Family()
	listener.mu.Unlock()

	ns := netaddr.SocketFromFd(r.Fd, protocol, family)
	return fromNetSocket(ns), nil
}
