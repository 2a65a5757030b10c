package quill

// outcome is what a suspended piece of evaluation produces once resumed.
type outcome struct {
	value Value
	sig   *signal
}

// continuation is the remaining work of an evaluation cut off at the depth
// budget. It runs to completion given a fresh depth.
type continuation func(depth int) outcome

// guard bounds how deep the evaluator recurses on one goroutine stack.
// When the depth budget runs out the evaluator hands its remaining work to
// resume, which runs it on a new stack segment with the budget refreshed
// while the exhausted segment waits. Segments never run concurrently.
type guard struct {
	limit    int
	restarts int
}

func newGuard(maxDepth int) guard {
	if maxDepth < 0 {
		maxDepth = 0
	}
	return guard{limit: maxDepth}
}

func (g *guard) exhausted(depth int) bool {
	return g.limit > 0 && depth >= g.limit
}

type segmentResult struct {
	out      outcome
	panicked bool
	panicVal any
}

// resume drives k on a fresh stack and returns its outcome. A panic inside
// the segment is re-raised on the caller's stack.
func (g *guard) resume(k continuation) outcome {
	g.restarts++
	done := make(chan segmentResult, 1)
	go func() {
		var res segmentResult
		defer func() {
			if r := recover(); r != nil {
				res.panicked = true
				res.panicVal = r
			}
			done <- res
		}()
		res.out = k(0)
	}()
	res := <-done
	if res.panicked {
		panic(res.panicVal)
	}
	return res.out
}
