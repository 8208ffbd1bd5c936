// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import "github.com/cpmech/gosl/chk"

// LocalFabric is an in-process stand-in for an MPI world: it lets a test
// run several "ranks" as goroutines within a single process, exercising
// the full NeighbourExchange/StabilityMonitor protocol (spec.md S8 scenario
// 6, the two-rank test) without a live MPI runtime. Messages are matched by
// (from, to, tag); each channel is unbuffered so Isend/Irecv only complete
// once both sides have posted, mirroring real non-blocking semantics
// closely enough for deterministic tests.
type LocalFabric struct {
	size  int
	boxes map[[3]int]chan []float64 // key: {from, to, tag}
}

// NewLocalFabric builds a fabric for `size` ranks and `tags` distinct
// logical channels (TagHalo, TagIolet, TagStability, ...).
func NewLocalFabric(size int, tags []int) *LocalFabric {
	f := &LocalFabric{size: size, boxes: make(map[[3]int]chan []float64)}
	for from := 0; from < size; from++ {
		for to := 0; to < size; to++ {
			for _, tag := range tags {
				f.boxes[[3]int{from, to, tag}] = make(chan []float64)
			}
		}
	}
	return f
}

// Rank returns a Communicator bound to the given rank within this fabric.
func (f *LocalFabric) Rank(rank int) *LocalComm {
	return &LocalComm{fabric: f, rank: rank}
}

// LocalComm is one rank's view of a LocalFabric.
type LocalComm struct {
	fabric *LocalFabric
	rank   int
}

func (c *LocalComm) Rank() int { return c.rank }
func (c *LocalComm) Size() int { return c.fabric.size }

type chanRequest struct {
	done chan struct{}
	err  error
}

func (r *chanRequest) Wait() error {
	<-r.done
	return r.err
}

func (c *LocalComm) Isend(tag, to int, buf []float64) Request {
	ch, ok := c.fabric.boxes[[3]int{c.rank, to, tag}]
	if !ok {
		chk.Panic("testcomm: no channel from %d to %d tag %d", c.rank, to, tag)
	}
	r := &chanRequest{done: make(chan struct{})}
	cp := make([]float64, len(buf))
	copy(cp, buf)
	go func() {
		ch <- cp
		close(r.done)
	}()
	return r
}

func (c *LocalComm) Irecv(tag, from int, buf []float64) Request {
	ch, ok := c.fabric.boxes[[3]int{from, c.rank, tag}]
	if !ok {
		chk.Panic("testcomm: no channel from %d to %d tag %d", from, c.rank, tag)
	}
	r := &chanRequest{done: make(chan struct{})}
	go func() {
		v := <-ch
		copy(buf, v)
		close(r.done)
	}()
	return r
}

// Iallreduce implements the all-reduce collective across every rank in the
// fabric using rank 0 as a rendezvous point: every rank sends its local
// value to rank 0 over a dedicated per-rank channel, rank 0 combines and
// broadcasts the result back. Sufficient for the small rank counts used in
// tests; not a scalable reduction tree.
func (c *LocalComm) Iallreduce(op ReduceOp, send, recv []float64) Request {
	r := &chanRequest{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		tag := TagStability
		if c.rank != 0 {
			c.fabric.boxes[[3]int{c.rank, 0, tag}] <- append([]float64(nil), send...)
			v := <-c.fabric.boxes[[3]int{0, c.rank, tag}]
			copy(recv, v)
			return
		}
		result := append([]float64(nil), send...)
		for from := 1; from < c.fabric.size; from++ {
			v := <-c.fabric.boxes[[3]int{from, 0, tag}]
			for i := range result {
				switch op {
				case Min:
					if v[i] < result[i] {
						result[i] = v[i]
					}
				case Sum:
					result[i] += v[i]
				}
			}
		}
		for to := 1; to < c.fabric.size; to++ {
			c.fabric.boxes[[3]int{0, to, tag}] <- append([]float64(nil), result...)
		}
		copy(recv, result)
	}()
	return r
}
