package queue

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNode struct {
	link  Hook
	value int
}

var testAcc = HookField(func(n *testNode) *Hook { return &n.link })

func nodesOf(vs ...int) []*testNode {
	ns := make([]*testNode, len(vs))
	for i, v := range vs {
		ns[i] = &testNode{value: v}
	}
	return ns
}

type factory struct {
	name string
	new  func() Queue
}

func factories() []factory {
	return []factory{
		{"spsc", func() Queue { return NewSPSC(testAcc) }},
		{"mpsc", func() Queue { return NewMPSC(testAcc) }},
		{"spmc", func() Queue { return NewSPMC(testAcc) }},
		{"mpmc", func() Queue { return NewMPMC(testAcc) }},
	}
}

func TestEmptyNew(t *testing.T) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			q := f.new()
			for i := 0; i < 5; i++ {
				assert.Nil(t, q.TryPop())
			}
		})
	}
}

func TestSingleProducerOrder(t *testing.T) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			q := f.new()
			ns := nodesOf(1, 2, 3, 4, 5)
			for _, n := range ns {
				q.Push(unsafe.Pointer(n))
			}
			for _, want := range ns {
				got := (*testNode)(q.TryPop())
				require.NotNil(t, got)
				assert.Equal(t, want.value, got.value)
			}
			assert.Nil(t, q.TryPop())
		})
	}
}

func TestPolicyDispatch(t *testing.T) {
	cases := []struct {
		p    Policy
		want string
	}{
		{SPSCPolicy, "spsc"},
		{MPSCPolicy, "mpsc"},
		{SPMCPolicy, "spmc"},
		{MPMCPolicy, "mpmc"},
	}
	for _, c := range cases {
		q := New(c.p, testAcc)
		n := &testNode{value: 42}
		q.Push(unsafe.Pointer(n))
		got := (*testNode)(q.TryPop())
		require.NotNil(t, got)
		assert.Equal(t, 42, got.value)
		assert.Equal(t, c.want, c.p.String())
	}
}

func TestMoveThenDrain(t *testing.T) {
	for _, f := range factories() {
		t.Run(f.name, func(t *testing.T) {
			src := f.new()
			dst := f.new()
			ns := nodesOf(10, 20, 30)
			for _, n := range ns {
				src.Push(unsafe.Pointer(n))
			}
			Move(dst, src)
			assert.Nil(t, src.TryPop())
			for _, want := range ns {
				got := (*testNode)(dst.TryPop())
				require.NotNil(t, got)
				assert.Equal(t, want.value, got.value)
			}
		})
	}
}

func TestMPSCConcurrentProducersPreserveOrderPerProducer(t *testing.T) {
	q := NewMPSC(testAcc)
	const producers = 8
	const perProducer = 2000

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				n := &testNode{value: p*perProducer + i}
				q.Push(unsafe.Pointer(n))
			}
		}(p)
	}
	wg.Wait()

	lastSeen := make([]int, producers)
	for i := range lastSeen {
		lastSeen[i] = -1
	}
	seen := 0
	for seen < producers*perProducer {
		n := (*testNode)(q.TryPop())
		if n == nil {
			continue
		}
		p := n.value / perProducer
		i := n.value % perProducer
		require.Greater(t, i, lastSeen[p], "producer %d order violated", p)
		lastSeen[p] = i
		seen++
	}
}

func TestSPSCConcurrentRoundTrip(t *testing.T) {
	q := NewSPSC(testAcc)
	const n = 20000
	nodes := nodesOf(make([]int, n)...)
	for i := range nodes {
		nodes[i].value = i
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, nd := range nodes {
			q.Push(unsafe.Pointer(nd))
		}
	}()

	seen := make(map[int]bool, n)
	for len(seen) < n {
		got := (*testNode)(q.TryPop())
		if got == nil {
			continue
		}
		assert.False(t, seen[got.value], "duplicate delivery")
		seen[got.value] = true
	}
	<-done
}

func TestSPMCConcurrentConsumers(t *testing.T) {
	q := NewSPMC(testAcc)
	const n = 5000
	for i := 0; i < n; i++ {
		q.Push(unsafe.Pointer(&testNode{value: i}))
	}

	var mu sync.Mutex
	seen := make(map[int]bool, n)
	var wg sync.WaitGroup
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				got := (*testNode)(q.TryPop())
				if got == nil {
					return
				}
				mu.Lock()
				seen[got.value] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestStackLIFO(t *testing.T) {
	s := NewStack(testAcc)
	assert.Nil(t, s.TryPop())
	ns := nodesOf(1, 2, 3)
	for _, n := range ns {
		s.Push(unsafe.Pointer(n))
	}
	for i := len(ns) - 1; i >= 0; i-- {
		got := (*testNode)(s.TryPop())
		require.NotNil(t, got)
		assert.Equal(t, ns[i].value, got.value)
	}
	assert.Nil(t, s.TryPop())
}

func TestIsLockFree(t *testing.T) {
	assert.True(t, NewSPSC(testAcc).IsLockFree())
	assert.True(t, NewMPSC(testAcc).IsLockFree())
	assert.False(t, NewSPMC(testAcc).IsLockFree())
	assert.False(t, NewMPMC(testAcc).IsLockFree())
}
