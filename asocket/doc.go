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

// Package asocket is the async socket wrapper: it binds a native
// netaddr.Socket to a service.Service, tracks outstanding receive/send
// counts for back-pressure, and submits operations on the caller's
// behalf. It is the one package that bridges the blocking netaddr
// layer and the async ioblock/service/worker completion framework.
package asocket
