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

// Package ioblock implements the fixed-size I/O control block shared by
// every asynchronous operation in the completion framework, and the
// pool that hands those blocks out.
//
// A Block is never allocated or freed individually: Pool.New and
// Pool.Release move it between an in-use state and a lock-free free
// list, and the slabs backing the pool are never returned to the
// runtime. This keeps a Block's address stable for its entire
// lifetime, which matters because the platform completion ports in
// package service carry a Block's address as opaque user data across
// a syscall boundary.
package ioblock
