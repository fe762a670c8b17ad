package fabric

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run launches n PEs as goroutines against a fresh communicator and waits
// for all of them to return, cancelling the shared context and returning
// the first error if any PE fails — the same fail-fast semantics as an
// MPI job where one rank calling MPI_Abort takes the rest down with it.
// Adapted from the rendezvous/lock pattern in the teacher's
// _examples/Govetachun-Go-DB/refactor_code/internal/concurrency/rwlock.go:
// that code coordinates readers and writers over one resource with
// sync.Cond; here the coordinated resource is "has every PE reached
// this collective call."
func Run(ctx context.Context, n int, fn func(ctx context.Context, pe *PE) error) error {
	comm := NewComm(n)
	g, gctx := errgroup.WithContext(ctx)
	for rank := 0; rank < n; rank++ {
		pe := comm.PE(rank)
		g.Go(func() error {
			return fn(gctx, pe)
		})
	}
	return g.Wait()
}
