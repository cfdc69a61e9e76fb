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

// Package corenet is the root package of the async networking core: an
// intrusive lock-free queue family (package queue), an I/O completion
// framework (packages ioblock, service, worker, asocket), a blocking
// address/socket layer (package netaddr) and a UDP relay scaffolding
// (package relay) built on top of them.
//
// corenet itself only carries the error taxonomy shared by every other
// package, so that callers can write a single errors.Is/errors.As check
// regardless of which package produced the failure.
package corenet

import "fmt"

// Code is a small, closed error taxonomy shared by every corenet
// package. It plays the role std::error_code/category plays in the
// source library: synchronous failures are returned as a Code (which
// implements error), asynchronous failures are attached to a Block's
// Status field using the same Code values.
type Code int

const (
	// CodeOK means no error.
	CodeOK Code = iota

	// Setup errors.
	CodeAlreadyAssociated
	CodeAlreadyOpen
	CodeBadFileDescriptor
	CodeAddressInUse
	CodePlatformInit

	// Submission errors.
	CodeWouldBlock
	CodeNotEnoughMemory

	// Completion errors.
	CodeCanceled
	CodeConnectionRefused
	CodeBrokenPipe
	CodeAddressNotAvailable
	CodeMessageSize

	// Resolver errors (wrapped in *netaddr.ResolveError, see that package).
	CodeHostNotFound
	CodeServiceNotFound
	CodeTemporaryFailure
)

var codeText = map[Code]string{
	CodeOK:                  "ok",
	CodeAlreadyAssociated:   "already associated",
	CodeAlreadyOpen:         "already open",
	CodeBadFileDescriptor:   "bad file descriptor",
	CodeAddressInUse:        "address already in use",
	CodePlatformInit:        "platform initialization failed",
	CodeWouldBlock:          "would block",
	CodeNotEnoughMemory:     "not enough memory",
	CodeCanceled:            "operation canceled",
	CodeConnectionRefused:   "connection refused",
	CodeBrokenPipe:          "broken pipe",
	CodeAddressNotAvailable: "address not available",
	CodeMessageSize:         "message too long for buffer",
	CodeHostNotFound:        "host not found",
	CodeServiceNotFound:     "service not found",
	CodeTemporaryFailure:    "temporary resolver failure",
}

// Error implements error.
func (c Code) Error() string {
	if s, ok := codeText[c]; ok {
		return s
	}
	return fmt.Sprintf("corenet: unknown error code %d", int(c))
}

// Is lets errors.Is(err, CodeX) match a wrapped Code of the same value,
// and lets two Code values compare equal through the standard errors
// machinery without requiring callers to unwrap by hand.
func (c Code) Is(target error) bool {
	t, ok := target.(Code)
	return ok && t == c
}

// AsError returns nil for CodeOK and c itself otherwise, so status
// fields (plain Code values, never pointers) can be handed back to
// callers as an idiomatic error.
func (c Code) AsError() error {
	if c == CodeOK {
		return nil
	}
	return c
}
