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

package netaddr

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/cloudweave/corenet"
)

// ResolveError wraps a resolver failure under its own category (a
// distinct type, not a different Code enum) so errors.Is(err,
// corenet.CodeHostNotFound) still works after wrapping.
type ResolveError struct {
	Host    string
	Service string
	Code    corenet.Code
	cause   error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("netaddr: resolve %q/%q: %s", e.Host, e.Service, e.Code.Error())
}

func (e *ResolveError) Unwrap() error { return e.cause }

func (e *ResolveError) Is(target error) bool {
	c, ok := target.(corenet.Code)
	return ok && c == e.Code
}

func classifyResolveErr(err error) corenet.Code {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsNotFound:
			return corenet.CodeHostNotFound
		case dnsErr.IsTemporary || dnsErr.IsTimeout:
			return corenet.CodeTemporaryFailure
		}
	}
	return corenet.CodeServiceNotFound
}

// Resolve performs a blocking DNS lookup of host (service is looked up
// via net.LookupPort against network, "tcp" or "udp") and returns a
// lazy Go 1.23 iterator-function sequence of Endpoints, one per
// resolved address, in the order the resolver returned them.
//
// The lookup itself happens before Resolve returns (it is a blocking
// call, per the source's contract); the iterator only lazily builds
// Endpoint values from the already-resolved address list, so a caller
// that breaks out of range early pays no extra cost but also triggers
// no extra lookups.
func Resolve(network, host, service string) (func(yield func(Endpoint) bool), error) {
	proto := TCP
	if network == "udp" {
		proto = UDP
	}

	port, err := net.LookupPort(network, service)
	if err != nil {
		return nil, &ResolveError{Host: host, Service: service, Code: classifyResolveErr(err), cause: err}
	}

	ips, err := net.DefaultResolver.LookupIPAddr(context.Background(), host)
	if err != nil {
		return nil, &ResolveError{Host: host, Service: service, Code: classifyResolveErr(err), cause: err}
	}
	if len(ips) == 0 {
		return nil, &ResolveError{Host: host, Service: service, Code: corenet.CodeHostNotFound}
	}

	return func(yield func(Endpoint) bool) {
		for _, ipAddr := range ips {
			addr, ok := AddressFromIP(ipAddr.IP)
			if !ok {
				continue
			}
			if addr.Family() == IPv6 && ipAddr.Zone != "" {
				if z, zerr := net.InterfaceByName(ipAddr.Zone); zerr == nil {
					addr.zone = uint32(z.Index)
				}
			}
			ep := Endpoint{Addr: addr, Port: uint16(port), Protocol: proto}
			if !yield(ep) {
				return
			}
		}
	}, nil
}
