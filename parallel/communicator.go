// Package parallel implements the bulk-synchronous, message-passing
// substrate the SIMPLE driver runs over: one goroutine per subdomain
// ("rank"), communicating exclusively through channels — no shared memory,
// matching spec.md §5's concurrency model.
//
// No MPI binding in the example corpus is a fetchable, cgo-free Go module
// (see DESIGN.md). Instead this package generalizes the teacher
// repository's own goroutine-based domain-decomposition primitives
// (utils.MailBox, Euler2D.PartitionMap) into an MPI-shaped Communicator:
// Rank/Size/Barrier/AllReduceSum/AllReduceMin/ExchangeColumns/Abort. Every
// suspension point spec.md §5 names (halo exchange, inner-product
// all-reduce, end-of-iteration convergence all-reduce, inter-stage
// barriers) is a real channel operation here, not a simulated one.
package parallel

import (
	"math"
	"sync"
)

// Communicator is one rank's handle onto the group. It is not safe to use
// from more than one goroutine at a time (each rank is exactly one
// goroutine, per spec.md §5 "no threads inside a process").
type Communicator struct {
	rank, size int
	hub        *hub

	rightOut chan []float64 // this rank -> rank+1 (rightward column send)
	rightIn  chan []float64 // rank-1 -> this rank
	leftOut  chan []float64 // this rank -> rank-1 (leftward column send)
	leftIn   chan []float64 // rank+1 -> this rank
}

// Rank returns this process's 0-based rank.
func (c *Communicator) Rank() int { return c.rank }

// Size returns the total number of ranks (spec.md's n_splits/P).
func (c *Communicator) Size() int { return c.size }

// NewGroup builds np Communicators wired to each other, one per rank.
// Index r of the returned slice is the Communicator for rank r. All np
// Communicators must be driven concurrently (one goroutine per rank) or
// Barrier/AllReduce/ExchangeColumns calls will block forever.
func NewGroup(np int) []*Communicator {
	if np < 1 {
		panic("parallel.NewGroup: np must be >= 1")
	}
	h := newHub(np)
	comms := make([]*Communicator, np)
	rightChans := make([]chan []float64, np) // rightChans[r]: r -> r+1
	leftChans := make([]chan []float64, np)  // leftChans[r]: r+1 -> r
	for r := 0; r < np; r++ {
		rightChans[r] = make(chan []float64, 1)
		leftChans[r] = make(chan []float64, 1)
	}
	for r := 0; r < np; r++ {
		c := &Communicator{rank: r, size: np, hub: h}
		if r < np-1 {
			c.rightOut = rightChans[r]
			c.leftIn = leftChans[r]
		}
		if r > 0 {
			c.rightIn = rightChans[r-1]
			c.leftOut = leftChans[r-1]
		}
		comms[r] = c
	}
	return comms
}

// Barrier blocks until every rank has called Barrier for this round.
func (c *Communicator) Barrier() {
	c.hub.barrier()
}

// AllReduceSum sums local across all ranks and returns the global total to
// every rank (used by CG's r·r and p·Ap inner products, spec.md §4.5).
func (c *Communicator) AllReduceSum(local float64) float64 {
	return c.hub.reduce(local, sumOp)
}

// AllReduceMin returns the minimum of local across all ranks (used for the
// AND-across-processes global convergence check, spec.md §4.7 step 9,
// where each rank contributes 1.0 if locally converged and 0.0 otherwise).
func (c *Communicator) AllReduceMin(local float64) float64 {
	return c.hub.reduce(local, minOp)
}

// AllReduceMax returns the maximum of local across all ranks (used by
// config.VerifyConsistent to compare scalar configuration across ranks).
func (c *Communicator) AllReduceMax(local float64) float64 {
	return c.hub.reduce(local, maxOp)
}

// Abort tears down the communicator: every rank currently blocked in
// Barrier/AllReduce*/ExchangeColumns unblocks with an aborted state, and
// every subsequent call on any Communicator in the group returns
// immediately. Mirrors spec.md §5/§7 "any process that calls abort aborts
// the whole communicator".
func (c *Communicator) Abort(reason string) {
	c.hub.abort(reason)
}

// Aborted reports whether some rank has called Abort.
func (c *Communicator) Aborted() (bool, string) {
	return c.hub.aborted()
}

// ExchangeColumns swaps the innermost non-ghost column of field (shape
// ny*nx, row-major) with each neighbor's ghost column, per spec.md §4.6:
// rank r sends column nx-2 to rank r+1 (fills r+1's column 0), and
// receives into column nx-1 from rank r+1's column 1; symmetric to the
// left with rank r-1. The leftmost and rightmost ranks skip their outward
// direction.
func (c *Communicator) ExchangeColumns(field []float64, ny, nx int) {
	if aborted, _ := c.Aborted(); aborted {
		return
	}
	colBuf := func(col int) []float64 {
		out := make([]float64, ny)
		for i := 0; i < ny; i++ {
			out[i] = field[i*nx+col]
		}
		return out
	}
	setCol := func(col int, data []float64) {
		for i := 0; i < ny; i++ {
			field[i*nx+col] = data[i]
		}
	}

	if c.rightOut != nil { // not the rightmost rank
		c.rightOut <- colBuf(nx - 2)
	}
	if c.leftOut != nil { // not the leftmost rank
		c.leftOut <- colBuf(1)
	}
	if c.rightIn != nil { // not the leftmost rank: receive from rank-1
		select {
		case data := <-c.rightIn:
			setCol(0, data)
		case <-c.hub.abortCh:
			return
		}
	}
	if c.leftIn != nil { // not the rightmost rank: receive from rank+1
		select {
		case data := <-c.leftIn:
			setCol(nx-1, data)
		case <-c.hub.abortCh:
			return
		}
	}
}

// reduceOp selects the associative combining function for AllReduce*.
type reduceOp int

const (
	sumOp reduceOp = iota
	minOp
	maxOp
)

// hub is the shared synchronization point for one group of ranks: a
// generation-based barrier and reduce, built from a mutex plus a
// per-round channel close so that no rank ever busy-polls another.
type hub struct {
	np int

	mu       sync.Mutex
	abortCh  chan struct{}
	abortMsg string
	once     sync.Once

	barrierRound *barrierRound
	reduceRounds map[reduceOp]*reduceRound
}

type barrierRound struct {
	arrived int
	done    chan struct{}
}

type reduceRound struct {
	arrived int
	acc     float64
	result  float64
	done    chan struct{}
}

func newHub(np int) *hub {
	return &hub{
		np:           np,
		abortCh:      make(chan struct{}),
		reduceRounds: make(map[reduceOp]*reduceRound),
	}
}

func (h *hub) abort(reason string) {
	h.once.Do(func() {
		h.mu.Lock()
		h.abortMsg = reason
		h.mu.Unlock()
		close(h.abortCh)
	})
}

func (h *hub) aborted() (bool, string) {
	select {
	case <-h.abortCh:
		h.mu.Lock()
		defer h.mu.Unlock()
		return true, h.abortMsg
	default:
		return false, ""
	}
}

func (h *hub) barrier() {
	h.mu.Lock()
	if h.barrierRound == nil {
		h.barrierRound = &barrierRound{done: make(chan struct{})}
	}
	round := h.barrierRound
	round.arrived++
	if round.arrived == h.np {
		h.barrierRound = nil
		h.mu.Unlock()
		close(round.done)
		return
	}
	h.mu.Unlock()
	select {
	case <-round.done:
	case <-h.abortCh:
	}
}

func (h *hub) reduce(local float64, op reduceOp) float64 {
	h.mu.Lock()
	round := h.reduceRounds[op]
	if round == nil {
		init := 0.0
		switch op {
		case minOp:
			init = math.Inf(1)
		case maxOp:
			init = math.Inf(-1)
		}
		round = &reduceRound{acc: init, done: make(chan struct{})}
		h.reduceRounds[op] = round
	}
	switch op {
	case sumOp:
		round.acc += local
	case minOp:
		if local < round.acc {
			round.acc = local
		}
	case maxOp:
		if local > round.acc {
			round.acc = local
		}
	}
	round.arrived++
	if round.arrived == h.np {
		round.result = round.acc
		delete(h.reduceRounds, op)
		h.mu.Unlock()
		close(round.done)
		return round.result
	}
	h.mu.Unlock()
	select {
	case <-round.done:
	case <-h.abortCh:
	}
	return round.result
}
