// Package batch runs large sets of contract reads as bounded, concurrent batch calls.
package batch

import (
	"context"
	"sync/atomic"

	"github.com/goran-ethernal/HolderIndexor/pkg/rpc"
	"golang.org/x/sync/errgroup"
)

// Progress is called after every finished chunk with the number of calls done so far.
type Progress func(done, total int)

// Caller splits calls into chunks of size and keeps up to concurrency chunks in flight.
type Caller struct {
	reader      rpc.ChainReader
	size        int
	concurrency int
}

// NewCaller creates a Caller. Non-positive size or concurrency default to 1.
func NewCaller(reader rpc.ChainReader, size, concurrency int) *Caller {
	return &Caller{
		reader:      reader,
		size:        max(size, 1),
		concurrency: max(concurrency, 1),
	}
}

// Call executes all calls and returns results index for index.
// Failures are reported per element; only context cancellation stops early,
// in which case unfinished elements carry the context error.
func (c *Caller) Call(ctx context.Context, calls []rpc.Call, progress Progress) []rpc.CallResult {
	results := make([]rpc.CallResult, len(calls))
	if len(calls) == 0 {
		return results
	}

	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for start := 0; start < len(calls); start += c.size {
		end := min(start+c.size, len(calls))

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				for i := start; i < end; i++ {
					results[i] = rpc.CallResult{Err: err}
				}
				return nil
			}

			copy(results[start:end], c.reader.BatchCall(gctx, calls[start:end]))

			n := done.Add(int64(end - start))
			if progress != nil {
				progress(int(n), len(calls))
			}
			return nil
		})
	}

	_ = g.Wait()

	return results
}
