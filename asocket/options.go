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

package asocket

// Options configures Associate's back-pressure caps, following the
// same plain-struct-with-Default-constructor idiom as service.Options
// and worker's constructor.
type Options struct {
	MaxOutstandingReceives int32
	MaxOutstandingSends    int32
}

// DefaultOptions returns generous caps suitable for a single socket
// under light concurrent use.
func DefaultOptions() Options {
	return Options{
		MaxOutstandingReceives: 16,
		MaxOutstandingSends:    16,
	}
}
