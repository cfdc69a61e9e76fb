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
	"bytes"
	"fmt"
	"net"
)

// Family tags which shape an Address holds.
type Family uint8

const (
	IPv4 Family = iota
	IPv6
)

func (f Family) String() string {
	if f == IPv6 {
		return "ipv6"
	}
	return "ipv4"
}

// Address is a tagged union of an IPv4 or IPv6 host address. Unlike
// net.IP (always 16 bytes, family inferred from content) Address
// carries its family explicitly, matching the source's discriminated
// union and letting Compare/Equal order by family first.
type Address struct {
	family Family
	bytes  [16]byte // first 4 used for IPv4
	zone   uint32   // IPv6 scope id; always 0 for IPv4
}

// AddressFromIP builds an Address from a net.IP, picking IPv4 or IPv6
// based on its effective length.
func AddressFromIP(ip net.IP) (Address, bool) {
	if v4 := ip.To4(); v4 != nil {
		var a Address
		a.family = IPv4
		copy(a.bytes[:4], v4)
		return a, true
	}
	if v6 := ip.To16(); v6 != nil {
		var a Address
		a.family = IPv6
		copy(a.bytes[:16], v6)
		return a, true
	}
	return Address{}, false
}

// IPv6WithZone builds an IPv6 Address carrying a scope/zone id.
func IPv6WithZone(ip net.IP, zone uint32) (Address, bool) {
	a, ok := AddressFromIP(ip)
	if !ok || a.family != IPv6 {
		return Address{}, false
	}
	a.zone = zone
	return a, true
}

// Family reports whether a is an IPv4 or IPv6 address.
func (a Address) Family() Family { return a.family }

// Zone returns the IPv6 scope id, or 0 for IPv4 or a zoneless IPv6
// address.
func (a Address) Zone() uint32 { return a.zone }

// IP returns a's bytes as a net.IP.
func (a Address) IP() net.IP {
	if a.family == IPv4 {
		ip := make(net.IP, 4)
		copy(ip, a.bytes[:4])
		return ip
	}
	ip := make(net.IP, 16)
	copy(ip, a.bytes[:16])
	return ip
}

// Equal reports whether a and b are the same family, bytes and zone.
func (a Address) Equal(b Address) bool {
	return a.Compare(b) == 0
}

// Compare orders a relative to b: first by family (IPv4 < IPv6), then
// by address bytes, then by zone id.
func (a Address) Compare(b Address) int {
	if a.family != b.family {
		if a.family < b.family {
			return -1
		}
		return 1
	}
	n := 4
	if a.family == IPv6 {
		n = 16
	}
	if c := bytes.Compare(a.bytes[:n], b.bytes[:n]); c != 0 {
		return c
	}
	switch {
	case a.zone < b.zone:
		return -1
	case a.zone > b.zone:
		return 1
	default:
		return 0
	}
}

// String formats a in dotted-decimal (IPv4) or bracket-free colon-hex
// (IPv6) form, with a "%zone" suffix for a non-zero IPv6 zone.
func (a Address) String() string {
	if a.family == IPv4 {
		return a.IP().String()
	}
	s := a.IP().String()
	if a.zone != 0 {
		return fmt.Sprintf("%s%%%d", s, a.zone)
	}
	return s
}

// ParseAddress parses a dotted-decimal IPv4 or colon-hex IPv6 literal,
// with an optional IPv6 "%zone" suffix.
func ParseAddress(s string) (Address, error) {
	zone := uint32(0)
	host := s
	if i := bytes.IndexByte([]byte(s), '%'); i >= 0 {
		host = s[:i]
		var n int
		if _, err := fmt.Sscanf(s[i+1:], "%d", &n); err == nil {
			zone = uint32(n)
		}
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return Address{}, fmt.Errorf("netaddr: invalid address %q", s)
	}
	a, ok := AddressFromIP(ip)
	if !ok {
		return Address{}, fmt.Errorf("netaddr: invalid address %q", s)
	}
	a.zone = zone
	return a, nil
}
