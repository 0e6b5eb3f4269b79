package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const DefaultLimit = 8

type Result struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}

type Results []Result

func (r Results) Failed() int {
	n := 0
	for _, res := range r {
		if !res.OK {
			n++
		}
	}
	return n
}

func (r Results) AllOK() bool {
	return r.Failed() == 0
}

// Run calls fn for every item with at most limit calls in flight and records one
// result per item, in input order. A failing row never stops the others.
func Run[T any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) (string, error)) Results {
	if limit < 1 {
		limit = DefaultLimit
	}
	results := make(Results, len(items))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			res := Result{Index: i}
			if err := ctx.Err(); err != nil {
				res.Err = err
			} else {
				res.ID, res.Err = fn(ctx, item)
			}
			res.OK = res.Err == nil
			if res.Err != nil {
				res.Error = res.Err.Error()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}
