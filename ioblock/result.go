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
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"
)

var (
	typeIDMu      sync.Mutex
	typeIDOf      = map[reflect.Type]uint64{}
	typeIDCounter uint64
)

// resultTypeID returns a stable, process-lifetime tag for R, assigned
// the first time R is seen. It is read/written under typeIDMu rather
// than a sync.Map since StoreResult/Result are called once per
// operation, not on any hot per-byte path.
func resultTypeID[R any]() uint64 {
	var zero R
	t := reflect.TypeOf(zero)

	typeIDMu.Lock()
	defer typeIDMu.Unlock()
	if id, ok := typeIDOf[t]; ok {
		return id
	}
	id := atomic.AddUint64(&typeIDCounter, 1)
	typeIDOf[t] = id
	return id
}

// StoreResult reserves b's inline result union for R and returns a
// pointer into it for the caller to populate. It panics if R does not
// fit the union, which is a programming error (result types are a
// small, fixed set defined by service/asocket, never caller-supplied).
func StoreResult[R any](b *Block) *R {
	var zero R
	if int(unsafe.Sizeof(zero)) > len(b.result) {
		panic("ioblock: result type too large for inline result buffer")
	}
	b.resultKind = (b.resultKind & skipNotifyBit) | resultTypeID[R]()
	return (*R)(unsafe.Pointer(&b.result[0]))
}

// Result returns the typed result stored in b along with b.Status as
// an error (nil for CodeOK). r is nil if b's stored result is not of
// type R — the status error is still returned in that case, mirroring
// result_of's contract of always reporting the outcome.
func Result[R any](b *Block) (r *R, err error) {
	err = b.Status.AsError()
	if b.resultKind&^skipNotifyBit != resultTypeID[R]() {
		return nil, err
	}
	return (*R)(unsafe.Pointer(&b.result[0])), err
}
