package bridge

import "sync/atomic"

// Async completion states. Completed and Aborted are terminal.
const (
	stateSuspended int32 = iota
	stateDraining
	stateCompleted
	stateAborted
)

// What drove the terminal transition. Recorded by the winning transition
// before the done latch closes, so drain reads it race-free.
const (
	causeDrained   int32 = iota + 1 // stream end marker
	causeAborted                    // write failure or container error/timeout
	causeContainer                  // container finished the exchange itself
)

// asyncController drains a Stream body into a suspended exchange and
// guarantees the exchange's explicit completion is invoked at most once,
// whether the stream ends, a chunk write fails, or the container reports an
// error or timeout. The end-of-stream marker and the container callbacks
// are independent cancellation sources; the atomic state word is the single
// arbiter of which one wins. Container callbacks only move the state
// machine — the drain goroutine alone touches the sink and calls Complete,
// so completion always happens after the last in-flight write.
type asyncController struct {
	ex     Exchange
	lc     Lifecycle
	stream *Stream
	state  atomic.Int32
	cause  atomic.Int32
	done   chan struct{} // closed on the first terminal transition
}

// startAsync suspends the exchange with no timeout and begins draining the
// stream in the background. The calling goroutine is never blocked.
func startAsync(ex Exchange, s *Stream) {
	c := &asyncController{ex: ex, stream: s, done: make(chan struct{})}
	c.lc = ex.Suspend()
	c.lc.OnEvent(c.onEvent)
	go c.drain()
}

// drain consumes chunks one at a time, writing each in production order.
// The loop blocks only on the next-chunk wait; after an abort no further
// chunks are requested, though a chunk already being written is allowed to
// finish before finish runs.
func (c *asyncController) drain() {
	c.state.CompareAndSwap(stateSuspended, stateDraining)
	for {
		select {
		case <-c.done:
			// A container signal already reached a terminal state.
			c.finish()
			return
		case chunk, ok := <-c.stream.Chunks:
			if !ok {
				c.transition(stateCompleted, causeDrained)
				c.finish()
				return
			}
			if err := WriteBody(chunk, c.ex.Sink()); err != nil {
				c.transition(stateAborted, causeAborted)
				c.finish()
				return
			}
			if err := c.ex.Sink().Flush(); err != nil {
				c.transition(stateAborted, causeAborted)
				c.finish()
				return
			}
		}
	}
}

// transition moves the state machine into target and cancels the producer.
// It reports false when another transition already reached a terminal
// state, making every later signal a no-op.
func (c *asyncController) transition(target, cause int32) bool {
	if c.state.CompareAndSwap(stateDraining, target) ||
		c.state.CompareAndSwap(stateSuspended, target) {
		c.cause.Store(cause)
		close(c.done)
		c.release()
		return true
	}
	return false
}

// finish runs exactly once, on the drain goroutine, after its last sink
// access. It performs the terminal output work the winning transition asked
// for: a terminal flush plus the single explicit completion on natural
// exhaustion, completion alone on abort, and nothing when the container
// already finished the exchange itself.
func (c *asyncController) finish() {
	switch c.cause.Load() {
	case causeDrained:
		//nolint:errcheck,gosec // best-effort terminal flush
		c.ex.Sink().Flush()
		c.lc.Complete()
		asyncOutcomes.WithLabelValues("completed").Inc()
	case causeAborted:
		c.lc.Complete()
		asyncOutcomes.WithLabelValues("aborted").Inc()
	case causeContainer:
	}
}

// release propagates cancellation upstream. Called on every terminal
// transition so the producer is always let go, including after natural
// exhaustion.
func (c *asyncController) release() {
	if c.stream.Cancel != nil {
		c.stream.Cancel()
	}
}

func (c *asyncController) onEvent(e Event) {
	switch e.Kind {
	case EventError, EventTimeout:
		c.transition(stateAborted, causeAborted)
	case EventComplete:
		// The container already finished the exchange; stop draining
		// without a second explicit completion.
		c.transition(stateCompleted, causeContainer)
	}
}
