//go:build !corenet_debug

package worker

// goroutineStamp is a no-op outside -tags corenet_debug: the ownership
// check is purely diagnostic (spec.md §9 "relaxed is permitted only
// for diagnostic counters"), so the default build pays nothing for it.
type goroutineStamp struct{}

func (*goroutineStamp) stamp() {}
func (*goroutineStamp) check() {}
