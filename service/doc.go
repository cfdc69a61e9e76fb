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

// Package service is the platform-independent completion façade:
// it owns the ioblock.Pool, binds to the platform's completion port
// (internal/iouring on Linux, internal/kq on BSD/Darwin), and
// translates raw completions into typed ioblock results before a
// worker ever sees them. A Service is never a process-wide singleton;
// callers construct one per process (or per isolated test).
package service
