/*
 * pool.go, part of gobem.
 *
 * Copyright 2024 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package pool offers the only concurrency primitive used in gobem: a bounded
//scatter/gather over a number of independent work items.
package pool

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

//ScatterGather runs work(ctx, i) for every i in [0,n), with at most workers
//items running at the same time. If workers is 0 or negative, runtime.NumCPU() is used.
//After all the items finish, merge is called on the calling goroutine with each result,
//in index order. The first error returned by a work item (or a panic in one of them,
//which is turned into an error) cancels ctx for the remaining items and is returned.
//In that case, merge is never called.
func ScatterGather[T any](ctx context.Context, workers, n int, work func(ctx context.Context, i int) (T, error), merge func(i int, res T)) error {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]T, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = Error{fmt.Sprintf("panic in work item %d: %v", i, r), &[]string{"ScatterGather"}, true}
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := work(gctx, i)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if merge == nil {
		return nil
	}
	for i, r := range results {
		merge(i, r)
	}
	return nil
}

//Range is a half-open interval [Start,End) of indexes.
type Range struct {
	Start int
	End   int
}

//Len returns the number of indexes in the range.
func (r Range) Len() int { return r.End - r.Start }

//Ranges splits [0,n) in at most parts contiguous ranges of
//(almost) equal size. Empty ranges are never returned.
func Ranges(n, parts int) []Range {
	if n <= 0 {
		return nil
	}
	if parts <= 0 {
		parts = runtime.NumCPU()
	}
	if parts > n {
		parts = n
	}
	ret := make([]Range, 0, parts)
	size := n / parts
	extra := n % parts
	start := 0
	for i := 0; i < parts; i++ {
		end := start + size
		if i < extra {
			end++
		}
		ret = append(ret, Range{start, end})
		start = end
	}
	return ret
}

//Error is the error type for the pool package. It is only
//produced when a work item panics.
type Error struct {
	message  string
	deco     *[]string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("gobem/pool: %s", err.message)
}

//Decorate adds new information to the error
func (err Error) Decorate(deco string) []string {
	if err.deco == nil {
		return nil
	}
	if deco != "" {
		*err.deco = append(*err.deco, deco)
	}
	return *err.deco
}

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }
