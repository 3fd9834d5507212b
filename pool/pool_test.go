/*
 * pool_test.go, part of gobem.
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

package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScatterGatherOrder(Te *testing.T) {
	var order []int
	sum := 0
	err := ScatterGather(context.Background(), 3, 50, func(ctx context.Context, i int) (int, error) {
		return i * i, nil
	}, func(i int, r int) {
		order = append(order, i)
		sum += r
	})
	require.NoError(Te, err)
	require.Len(Te, order, 50)
	for i, v := range order {
		assert.Equal(Te, i, v, "merges should run in index order")
	}
	assert.Equal(Te, 40425, sum)
}

func TestScatterGatherLimit(Te *testing.T) {
	var running, peak int32
	err := ScatterGather(context.Background(), 2, 20, func(ctx context.Context, i int) (struct{}, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		atomic.AddInt32(&running, -1)
		return struct{}{}, nil
	}, nil)
	require.NoError(Te, err)
	assert.LessOrEqual(Te, atomic.LoadInt32(&peak), int32(2))
}

func TestScatterGatherError(Te *testing.T) {
	boom := errors.New("boom")
	merged := false
	err := ScatterGather(context.Background(), 4, 10, func(ctx context.Context, i int) (int, error) {
		if i == 7 {
			return 0, boom
		}
		return i, nil
	}, func(int, int) { merged = true })
	assert.ErrorIs(Te, err, boom)
	assert.False(Te, merged, "merge must not run when a work item fails")
}

func TestScatterGatherPanic(Te *testing.T) {
	err := ScatterGather(context.Background(), 0, 5, func(ctx context.Context, i int) (int, error) {
		if i == 3 {
			panic("oops")
		}
		return i, nil
	}, nil)
	var perr Error
	require.ErrorAs(Te, err, &perr)
	assert.True(Te, perr.Critical())
	assert.Contains(Te, perr.Error(), "oops")
}

func TestRanges(Te *testing.T) {
	r := Ranges(10, 3)
	require.Len(Te, r, 3)
	total := 0
	prev := 0
	for _, v := range r {
		assert.Equal(Te, prev, v.Start)
		assert.Greater(Te, v.Len(), 0)
		total += v.Len()
		prev = v.End
	}
	assert.Equal(Te, 10, total)
	assert.Len(Te, Ranges(2, 8), 2)
	assert.Nil(Te, Ranges(0, 4))
}
