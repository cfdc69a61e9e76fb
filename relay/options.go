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

package relay

// Options configures a Relay's sockets and datagram buffer size.
type Options struct {
	MaxOutstandingReceives int32
	MaxOutstandingSends    int32
	ReceiveBufferSize      int
}

// DefaultOptions returns reasonable defaults for a single-process relay.
func DefaultOptions() Options {
	return Options{
		MaxOutstandingReceives: 64,
		MaxOutstandingSends:    64,
		ReceiveBufferSize:      1500,
	}
}
