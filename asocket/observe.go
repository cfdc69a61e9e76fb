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

import (
	"errors"

	"github.com/cloudweave/corenet"
	"github.com/cloudweave/corenet/ioblock"
)

// Observe updates the submitting socket's half-close/broken-pipe
// detector from a drained completion. The teacher's connstate runs a
// background poller to learn this; here every read/write already
// flows through the completion path a worker drains, so the caller
// (typically right after worker.Worker.TryGet/Poll returns b) calls
// Observe once to fold that completion's outcome into the tracker
// instead. It is a no-op if b was not submitted by a Socket, or was
// submitted by one that has since been released.
func Observe(b *ioblock.Block) {
	if b.Socket == nil {
		return
	}
	s := (*Socket)(b.Socket)

	if r, err := ioblock.Result[ioblock.ReceiveResult](b); r != nil {
		s.tracker.ObserveReceive(r.Transferred, isBrokenPipe(err))
		return
	}
	if r, err := ioblock.Result[ioblock.ReceiveFromResult](b); r != nil {
		s.tracker.ObserveReceive(r.Transferred, isBrokenPipe(err))
		return
	}
	if _, err := ioblock.Result[ioblock.SendResult](b); isBrokenPipe(err) {
		s.tracker.ObserveBrokenPipe()
		return
	}
	if _, err := ioblock.Result[ioblock.SendToResult](b); isBrokenPipe(err) {
		s.tracker.ObserveBrokenPipe()
	}
}

func isBrokenPipe(err error) bool {
	return err != nil && errors.Is(err, corenet.CodeBrokenPipe)
}
