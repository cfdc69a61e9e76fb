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

// Package netaddr is the blocking address, endpoint and socket layer:
// an Address/Endpoint tagged union with textual parsing/formatting and
// ordering, blocking DNS resolution as a lazy sequence, and a Socket
// that owns a raw file descriptor directly rather than wrapping a
// net.Conn — package asocket needs that fd before a net.Conn would
// exist, since association with a completion service happens first.
package netaddr
