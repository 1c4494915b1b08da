package metagrid

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/longtsing/metagrid/query"
)

// matchPositions scans ix in order and returns the positions whose element
// matches the selection.
func matchPositions(ix Index, sel *query.Selection) ([]int, error) {
	var out []int
	for n := 0; n < ix.Len(); n++ {
		e, err := ix.Get(n)
		if err != nil {
			return nil, err
		}
		if sel.MatchElement(e) {
			out = append(out, n)
		}
	}
	return out, nil
}

// SelParallel filters like Sel but evaluates the predicate over position
// chunks concurrently. Results are merged in position order, so the returned
// view is element-for-element identical to Sel's. The core contract stays
// single-threaded; this is the optional optimization layered on top for
// collections whose Get is safe for concurrent use.
func SelParallel(ctx context.Context, ix Index, workers int, dicts ...map[string]any) (Index, error) {
	sel, err := query.NewSelection(dicts...)
	if err != nil {
		return nil, err
	}
	if sel.IsEmpty() {
		return ix, nil
	}

	n := ix.Len()
	if workers <= 1 || n == 0 {
		positions, err := matchPositions(ix, sel)
		if err != nil {
			return nil, err
		}
		return NewMask(ix, positions)
	}
	if workers > n {
		workers = n
	}

	chunk := (n + workers - 1) / workers
	results := make([][]int, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, n)
		out := &results[w]
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				e, err := ix.Get(i)
				if err != nil {
					return err
				}
				if sel.MatchElement(e) {
					*out = append(*out, i)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var positions []int
	for _, r := range results {
		positions = append(positions, r...)
	}
	return NewMask(ix, positions)
}
