// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package net

import (
	"sort"

	"github.com/hemelb-go/corelb/domain"
	"github.com/hemelb-go/corelb/lattice"
)

// peerLink is one resolved cross-partition link, ready to be ordered
// against its counterpart on the peer rank.
type peerLink struct {
	localSite int
	dir       int
	slot      int // offset within this peer's shared-region block
}

// Exchange implements NeighbourExchange (spec.md S4.4): it turns the raw
// RemoteCandidate list a domain builder produces into a resolved shared
// distribution region, wiring each edge site's remote StreamIndex to the
// slot its neighbour will write into, and drives the per-iteration
// post/wait/copy protocol.
type Exchange struct {
	dom  *domain.Domain
	comm Communicator

	peers      []int                 // sorted peer ranks with >=1 link
	sendLinks  map[int][]peerLink     // peer -> links this rank sends out on
	recvBase   map[int]int            // peer -> first shared-region slot for its inbound block
	recvCount  map[int]int            // peer -> number of slots in its inbound block
	recvLookup []int                  // shared-slot-local-index -> site*Q+dir owning that inbound value

	sendBuf map[int][]float64
	recvBuf map[int][]float64
}

// canonicalKey computes the ordering key for a candidate link as seen from
// the lower-ranked side of the pair, so that sorting independently on both
// ranks yields identical order without exchanging raw link lists (spec.md
// S4.4 step 1 / S9 "two ranks must derive the same matching order").
func canonicalKey(lat *lattice.Lattice, myRank, peerRank int, coord [3]int, dir int) [4]int {
	if myRank < peerRank {
		return [4]int{coord[0], coord[1], coord[2], dir}
	}
	ci := lat.Ci[dir]
	inv := lat.Inv[dir]
	return [4]int{coord[0] + ci[0], coord[1] + ci[1], coord[2] + ci[2], inv}
}

// NewExchange groups candidates by peer, orders each peer's links by the
// canonical key, grows the domain's shared-distribution region to fit, and
// wires every edge site's remote StreamIndex to its resolved slot.
func NewExchange(dom *domain.Domain, comm Communicator, candidates []domain.RemoteCandidate) *Exchange {
	myRank := comm.Rank()

	byPeer := make(map[int][]domain.RemoteCandidate)
	for _, c := range candidates {
		byPeer[c.PeerRank] = append(byPeer[c.PeerRank], c)
	}

	var peers []int
	for p := range byPeer {
		peers = append(peers, p)
	}
	sort.Ints(peers)

	ex := &Exchange{
		dom:       dom,
		comm:      comm,
		peers:     peers,
		sendLinks: make(map[int][]peerLink),
		recvBase:  make(map[int]int),
		recvCount: make(map[int]int),
		sendBuf:   make(map[int][]float64),
		recvBuf:   make(map[int][]float64),
	}

	total := 0
	for _, p := range peers {
		cs := byPeer[p]
		sort.Slice(cs, func(i, j int) bool {
			ki := canonicalKey(dom.Lat, myRank, p, dom.Coords[cs[i].LocalSite], cs[i].Dir)
			kj := canonicalKey(dom.Lat, myRank, p, dom.Coords[cs[j].LocalSite], cs[j].Dir)
			return ki[0] < kj[0] ||
				(ki[0] == kj[0] && (ki[1] < kj[1] ||
					(ki[1] == kj[1] && (ki[2] < kj[2] ||
						(ki[2] == kj[2] && ki[3] < kj[3])))))
		})
		links := make([]peerLink, len(cs))
		for i, c := range cs {
			links[i] = peerLink{localSite: c.LocalSite, dir: c.Dir, slot: i}
		}
		ex.sendLinks[p] = links
		ex.recvBase[p] = total
		ex.recvCount[p] = len(links)
		total += len(links)

		ex.sendBuf[p] = make([]float64, len(links))
		ex.recvBuf[p] = make([]float64, len(links))
	}

	dom.GrowShared(total)

	ex.recvLookup = make([]int, total)
	q := dom.Lat.Q
	for _, p := range peers {
		base := ex.recvBase[p]
		for _, l := range ex.sendLinks[p] {
			slotAbs := dom.SharedBase() + base + l.slot
			dom.Sites[l.localSite].SetStreamIndex(l.dir, slotAbs)
			ex.recvLookup[base+l.slot] = l.localSite*q + dom.Lat.Inv[l.dir]
		}
	}

	return ex
}

// RequestComms registers this exchange's receive and send thunks with the
// iteration's Net aggregator (spec.md S4.9 step 1). Every outbound link's
// post-collision value is already sitting in the domain's shared region of
// fNew by the time the send thunk runs (Net.Send, step 4): NewExchange
// pointed each such link's StreamIndex straight at its shared slot, so the
// edge-site StreamAndCollide in PreSend (step 3) wrote it there directly —
// the send thunk only needs to copy that slice out into its own buffer.
func (ex *Exchange) RequestComms(n *Net) {
	base := ex.dom.SharedBase()
	for _, p := range ex.peers {
		p := p
		recvBase := ex.recvBase[p]
		n.AddRecv(func() Request {
			return ex.comm.Irecv(TagHalo, p, ex.recvBuf[p])
		})
		n.AddSend(func() Request {
			buf := ex.sendBuf[p]
			copy(buf, ex.dom.FNew[base+recvBase:base+recvBase+len(buf)])
			return ex.comm.Isend(TagHalo, p, buf)
		})
	}
}

// CopyReceived scatters each peer's received buffer straight into the real
// per-site distribution array, at the inverse-direction slot recvLookup
// resolved for it: a value the peer pushed out in direction d lands, on
// this rank, exactly where a local push-stream write would have landed it
// (site s's own slot at Inv[d]) — so the next iteration's collision reads
// find it as an ordinary incoming distribution, with no separate handling
// for cross-partition links (spec.md S4.4 step 6, "PostReceive").
func (ex *Exchange) CopyReceived(fOld []float64) {
	for _, p := range ex.peers {
		b := ex.recvBase[p]
		for i, v := range ex.recvBuf[p] {
			fOld[ex.recvLookup[b+i]] = v
		}
	}
}

// RecvLookup exposes, for each shared-region slot (0-indexed within the
// shared region), the encoding site*Q+dir this rank's own site/direction
// owning the corresponding inbound value (dir is already the inverse of
// the sender's outgoing direction). CopyReceived uses this to scatter
// received values directly into the real per-site array; diagnostics can
// use it the same way to attribute a received value back to its link.
func (ex *Exchange) RecvLookup() []int { return ex.recvLookup }

// Peers returns the sorted list of ranks this rank exchanges with.
func (ex *Exchange) Peers() []int { return ex.peers }
