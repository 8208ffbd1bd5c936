// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"sync"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/mpi"
)

// GoslCommunicator adapts github.com/cpmech/gosl/mpi's world communicator
// to the Communicator interface. Rank/Size/process bring-up mirror
// fem.NewFEM's own mpi.IsOn()/mpi.Rank()/mpi.Size() usage exactly; the
// non-blocking Isend/Irecv/Iallreduce surface this package needs is built
// by running gosl/mpi's blocking Send/Recv/AllReduceMin calls on a
// goroutine per request and signalling completion over a channel, since
// the reference FEM solver never needed overlapped halo communication and
// so never had to expose a non-blocking API of its own.
type GoslCommunicator struct {
	comm *mpi.Communicator
}

// NewGoslCommunicator wraps the world communicator. MPI must already have
// been started by the caller (mpi.Start); it panics otherwise.
func NewGoslCommunicator() *GoslCommunicator {
	if !mpi.IsOn() {
		chk.Panic("gosl/mpi: MPI must be started (mpi.Start) before constructing a communicator")
	}
	return &GoslCommunicator{comm: mpi.NewCommunicator(nil)}
}

func (g *GoslCommunicator) Rank() int { return g.comm.Rank() }
func (g *GoslCommunicator) Size() int { return g.comm.Size() }

type goroutineRequest struct {
	wg  sync.WaitGroup
	err error
}

func (r *goroutineRequest) Wait() error {
	r.wg.Wait()
	return r.err
}

func (g *GoslCommunicator) Isend(tag, to int, buf []float64) Request {
	r := &goroutineRequest{}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		g.comm.Send(buf, to)
	}()
	return r
}

func (g *GoslCommunicator) Irecv(tag, from int, buf []float64) Request {
	r := &goroutineRequest{}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		g.comm.Recv(buf, from)
	}()
	return r
}

func (g *GoslCommunicator) Iallreduce(op ReduceOp, send, recv []float64) Request {
	r := &goroutineRequest{}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		switch op {
		case Min:
			g.comm.AllReduceMin(recv, send)
		case Sum:
			g.comm.AllReduceSum(recv, send)
		default:
			r.err = chk.Err("unsupported reduce op %v", op)
		}
	}()
	return r
}
