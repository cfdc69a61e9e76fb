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

// Package queue provides a family of intrusive FIFO queues (SPSC,
// MPSC, SPMC, MPMC) plus a single-threaded intrusive LIFO stack. SPSC
// and MPSC are lock-free; SPMC and MPMC guard their consumer side with
// a spinlock.
//
// All queues are intrusive: the caller's node type owns an embedded
// Hook field, and the queue never allocates, copies or frees nodes. A
// HookAccessor, built once with HookField, tells the queue where the
// Hook lives inside the node so the same queue implementation works
// for any node type.
//
// Push never fails. TryPop returning nil is the only "no element
// observable right now" signal — queues never error and never block.
package queue
