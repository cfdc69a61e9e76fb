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

// Command corenet-relay is the illustrative CLI front-end for package
// relay: it binds an allocation and a relayed UDP endpoint, then runs
// a fixed number of worker goroutines draining completions from a
// shared service. CLI parsing is a deliberately thin collaborator —
// numeric flags only, no config file/YAML layer.
package main

import (
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cloudweave/corenet/concurrency/gopool"
	"github.com/cloudweave/corenet/internal/logx"
	"github.com/cloudweave/corenet/netaddr"
	"github.com/cloudweave/corenet/relay"
	"github.com/cloudweave/corenet/service"
	"github.com/cloudweave/corenet/worker"
)

func main() {
	var (
		allocationAddr = flag.String("allocation", "127.0.0.1:7000", "allocation endpoint host:port")
		relayedAddr    = flag.String("relayed", "127.0.0.1:7001", "relayed endpoint host:port")
		workers        = flag.Int("workers", 4, "number of worker goroutines draining the service")
		queueDepth     = flag.Uint("queue-depth", 10000, "completion queue depth hint")
		maxOutRecv     = flag.Int("max-outstanding-recv", 64, "per-socket max outstanding receives")
		maxOutSend     = flag.Int("max-outstanding-send", 64, "per-socket max outstanding sends")
		recvBufSize    = flag.Int("recv-buffer-size", 1500, "datagram receive buffer size")
		pollTimeout    = flag.Duration("poll-timeout", 200*time.Millisecond, "worker poll timeout")
	)
	flag.Parse()

	log := logx.Default()

	allocEp, err := netaddr.ParseEndpoint(*allocationAddr)
	if err != nil {
		log.Errorf("parsing -allocation=%q: %v", *allocationAddr, err)
		os.Exit(1)
	}
	allocEp.Protocol = netaddr.UDP

	relEp, err := netaddr.ParseEndpoint(*relayedAddr)
	if err != nil {
		log.Errorf("parsing -relayed=%q: %v", *relayedAddr, err)
		os.Exit(1)
	}
	relEp.Protocol = netaddr.UDP

	opts := service.DefaultOptions()
	opts.QueueDepth = uint32(*queueDepth)
	svc, err := service.New(opts)
	if err != nil {
		log.Errorf("starting service: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	relayOpts := relay.DefaultOptions()
	relayOpts.MaxOutstandingReceives = int32(*maxOutRecv)
	relayOpts.MaxOutstandingSends = int32(*maxOutSend)
	relayOpts.ReceiveBufferSize = *recvBufSize

	rel, err := relay.New(svc, allocEp, relEp, relayOpts)
	if err != nil {
		log.Errorf("starting relay: %v", err)
		os.Exit(1)
	}
	defer rel.Close()
	rel.Start()

	log.Printf("corenet-relay listening: allocation=%s relayed=%s workers=%d", allocEp, relEp, *workers)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		gopool.Go(func() {
			defer wg.Done()
			runWorker(svc, rel, *pollTimeout, stop)
		})
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Printf("shutting down")
	close(stop)
	wg.Wait()
}

func runWorker(svc *service.Service, rel *relay.Relay, timeout time.Duration, stop <-chan struct{}) {
	w := worker.New(svc, 64)
	for {
		select {
		case <-stop:
			return
		default:
		}
		b := w.Poll(timeout)
		if b == nil {
			continue
		}
		rel.HandleCompletion(b)
	}
}
