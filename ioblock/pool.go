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
	"sync"
	"unsafe"

	"github.com/cloudweave/corenet/queue"
)

// initialSlabBlocks is the block count of the first slab grown by a
// Pool. Later slabs double this, mirroring the size-classed growth
// cache/mempool uses for byte buffers (there keyed by allocation size,
// here keyed by block count).
const initialSlabBlocks = 512

// Pool hands out *Block values backed by a small number of large,
// never-freed slabs. A Block's address is stable for the life of the
// process once allocated: Release returns it to a free list instead
// of letting the runtime collect it, so platform completion ports can
// carry a Block's address across a syscall boundary indefinitely.
type Pool struct {
	mu   sync.Mutex
	free *queue.MPSC

	slabs          [][]Block
	nextSlabBlocks int
}

// NewPool builds an empty pool and grows it once so the first New
// never has to grow under caller-visible latency beyond that first
// call.
func NewPool() *Pool {
	p := &Pool{nextSlabBlocks: initialSlabBlocks}
	p.free = queue.NewMPSC(freeListHookAccessor())
	p.growLocked()
	return p
}

// growLocked allocates a new slab of p.nextSlabBlocks blocks, links
// every block into the free list, and doubles nextSlabBlocks for next
// time. Caller must hold p.mu.
func (p *Pool) growLocked() {
	slab := make([]Block, p.nextSlabBlocks)
	p.slabs = append(p.slabs, slab)
	for i := range slab {
		slab[i].pool = p
		slab[i].ResetWindow()
		p.free.Push(unsafe.Pointer(&slab[i]))
	}
	p.nextSlabBlocks *= 2
}

// get removes one block from the free list, growing the pool first if
// it is currently empty.
func (p *Pool) get() *Block {
	if n := p.free.TryPop(); n != nil {
		return (*Block)(n)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Another caller may have grown the pool between our lock-free
	// TryPop above and acquiring the mutex; check again before paying
	// for another slab.
	if n := p.free.TryPop(); n != nil {
		return (*Block)(n)
	}
	p.growLocked()
	n := p.free.TryPop()
	if n == nil {
		panic("ioblock: pool grow did not yield a block")
	}
	return (*Block)(n)
}

// New returns a Block from the pool with ctx/typeID recorded and its
// buffer window set to the full payload.
func (p *Pool) New(ctx unsafe.Pointer, typeID uint64) *Block {
	b := p.get()
	b.Ctx = ctx
	b.CtxType = typeID
	return b
}

// Release clears b and returns it to the free list. b must not be
// touched by the caller afterward.
func (p *Pool) Release(b *Block) {
	b.reset()
	p.free.Push(unsafe.Pointer(b))
}
