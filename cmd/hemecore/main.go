// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// hemecore is the CLI entry point composing config/domain/kernel/
// streamer/iolet/net/stability into a running StepOrchestrator (spec.md
// S6/S9), modeled on the teacher's own main.go (mpi.Start/recover/
// mpi.Stop bracket, flag-parsed simulation filename) and fem/main.go's
// read-config-then-run structure.
package main

import (
	"flag"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
	"github.com/hemelb-go/corelb/config"
	"github.com/hemelb-go/corelb/domain"
	"github.com/hemelb-go/corelb/iolet"
	"github.com/hemelb-go/corelb/kernel"
	"github.com/hemelb-go/corelb/lattice"
	"github.com/hemelb-go/corelb/net"
	"github.com/hemelb-go/corelb/orchestrator"
	"github.com/hemelb-go/corelb/propertycache"
	"github.com/hemelb-go/corelb/report"
	"github.com/hemelb-go/corelb/stability"
	"github.com/hemelb-go/corelb/streamer"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			for i := 8; i > 3; i-- {
				chk.CallerInfo(i)
			}
			io.PfRed("ERROR: %v\n", err)
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	configPath := flag.String("config", "", "path to the JSON configuration document (spec.md S6)")
	scenario := flag.String("scenario", "pipe", "demo geometry: periodic, poiseuille, pipe, or partitioned (no external geometry loader is wired yet)")
	nx := flag.Int("nx", 16, "sites along x")
	ny := flag.Int("ny", 8, "sites along y")
	nz := flag.Int("nz", 8, "sites along z")
	block := flag.Int("block", 8, "block side for the domain's block grid")
	outDir := flag.String("out", ".", "directory for the final report/failure record")
	flag.Parse()

	if mpi.Rank() == 0 {
		io.PfWhite("\nhemecore -- distributed lattice-Boltzmann blood-flow core\n\n")
	}

	if *configPath == "" {
		chk.Panic("hemecore: -config is required")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		chk.Panic("hemecore: %v", err)
	}

	lat := latticeFor(cfg.Q)
	comm := net.NewGoslCommunicator()

	dom, candidates := buildDomain(lat, *scenario, *block, *nx, *ny, *nz, comm.Rank(), comm.Size())
	if err := dom.Validate(); err != nil {
		chk.Panic("hemecore: %v", err)
	}

	k, err := kernel.New(cfg.Kernel, lat, cfg.KernelPrms())
	if err != nil {
		chk.Panic("hemecore: %v", err)
	}
	params, err := kernel.NewLbmParameters(cfg.Tau)
	if err != nil {
		chk.Panic("hemecore: %v", err)
	}

	var wallPolicy streamer.WallPolicy
	if cfg.WallBoundary != "" {
		wallPolicy, err = streamer.WallPolicyByName(cfg.WallBoundary)
		if err != nil {
			chk.Panic("hemecore: %v", err)
		}
	}
	var ioletPolicy streamer.IoletPolicy
	if cfg.IoletBoundary != "" {
		ioletPolicy, err = streamer.IoletPolicyByName(cfg.IoletBoundary)
		if err != nil {
			chk.Panic("hemecore: %v", err)
		}
	}

	st := streamer.New(dom, k, wallPolicy, ioletPolicy)
	props := propertycache.New(dom.NLocal)
	props.Request(propertycache.Density)
	props.Request(propertycache.Velocity)
	st.Props = props

	iv, err := buildIoletValues(comm, cfg)
	if err != nil {
		chk.Panic("hemecore: %v", err)
	}
	ioletRho := func(i int) float64 { return iv.Value(i) }

	mon := stability.NewMonitor(comm, ioletTol(cfg))

	ioletActor := orchestrator.NewIoletActor(iv, nil)
	monitorActor := orchestrator.NewMonitorActor(mon, dom)
	streamerActor := orchestrator.NewStreamerActor(st, dom, params, ioletRho)

	actors := []orchestrator.Actor{ioletActor}
	if len(candidates) > 0 {
		ex := net.NewExchange(dom, comm, candidates)
		actors = append(actors, orchestrator.NewExchangeActor(ex, dom))
	}
	actors = append(actors, monitorActor, streamerActor)

	o := orchestrator.New(dom, actors, monitorActor, ioletActor, cfg.MaxSteps, cfg.ResetOnInstability, 1)

	start := time.Now()
	status, runErr := o.Run()
	elapsed := time.Since(start)

	if runErr != nil {
		path := io.Sf("%s/failure_rank%d.json", *outDir, comm.Rank())
		if werr := report.WriteFailure(path, comm.Rank(), o.CurrentStep(), runErr.Error()); werr != nil {
			chk.Panic("hemecore: %v", werr)
		}
		chk.Panic("hemecore: %v", runErr)
	}

	summary := report.NewSummary(comm.Rank(), status, o.CurrentStep(), elapsed, dom.NLocal, props)
	path := io.Sf("%s/summary_rank%d.json", *outDir, comm.Rank())
	if err := report.Write(path, summary); err != nil {
		chk.Panic("hemecore: %v", err)
	}
	if mpi.Rank() == 0 {
		io.Pf("finished: status=%s steps=%d elapsed=%s\n", status, o.CurrentStep(), elapsed)
	}
}

// latticeFor resolves the configured lattice type (spec.md S6 "Q, B").
func latticeFor(q int) *lattice.Lattice {
	switch q {
	case 15:
		return lattice.D3Q15
	case 19:
		return lattice.D3Q19
	case 27:
		return lattice.D3Q27
	default:
		chk.Panic("hemecore: unsupported lattice Q=%d (want 15, 19 or 27)", q)
		return nil
	}
}

// buildDomain selects one of the domain package's canonical geometry
// builders (spec.md S8's scenarios) by name; a real deployment replaces
// this with the external geometry-file loader spec.md S6 describes, which
// this build does not implement (out of scope: "the core does not parse
// this format").
func buildDomain(lat *lattice.Lattice, scenario string, block, nx, ny, nz, rank, size int) (*domain.Domain, []domain.RemoteCandidate) {
	switch scenario {
	case "periodic":
		return domain.NewPeriodicBox(lat, block, nx, ny, nz), nil
	case "poiseuille":
		return domain.NewPoiseuilleSlab(lat, block, nx, ny, nz), nil
	case "pipe":
		return domain.NewPipe(lat, block, nx, ny, nz, 0, 1), nil
	case "partitioned":
		return domain.NewPartitionedSlab(lat, block, nx, ny, nz, rank, size)
	default:
		chk.Panic("hemecore: unknown scenario %q", scenario)
		return nil, nil
	}
}

// buildIoletValues assigns a round-robin controller to every configured
// iolet and assumes every rank may hold sites on any iolet (a permissive
// default in the absence of a geometry-derived touched-by table; see
// DESIGN.md), then builds the sources this rank controls from cfg.Iolets.
func buildIoletValues(comm net.Communicator, cfg *config.Config) (*iolet.IoletValues, error) {
	size := comm.Size()
	controllerOf := make(map[int]int, len(cfg.Iolets))
	touchedBy := make(map[int][]int, len(cfg.Iolets))
	sources := make(map[int]iolet.ValueSource)
	for i, ic := range cfg.Iolets {
		ctrl := i % size
		controllerOf[i] = ctrl
		var peers []int
		for r := 0; r < size; r++ {
			peers = append(peers, r)
		}
		touchedBy[i] = peers
		if ctrl != comm.Rank() {
			continue
		}
		var src iolet.ValueSource
		var err error
		if ic.Source.Kind == "timeseries" {
			src, err = iolet.LoadTimeSeriesFile(ic.Source.File)
		} else {
			src, err = iolet.NewSourceFromParams(ic.Source.Kind, ic.Source.Params)
		}
		if err != nil {
			return nil, err
		}
		sources[i] = src
	}
	return iolet.NewIoletValues(comm, controllerOf, sources, touchedBy)
}

// ioletTol maps the checkConvergence flag onto stability.Monitor's
// enable/disable-by-zero convention.
func ioletTol(cfg *config.Config) float64 {
	if !cfg.CheckConvergence {
		return 0
	}
	return cfg.ConvergenceTol
}
