/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/cfdsim/simplecfd/config"
	"github.com/cfdsim/simplecfd/discretize"
	"github.com/cfdsim/simplecfd/iofields"
	"github.com/cfdsim/simplecfd/parallel"
	"github.com/cfdsim/simplecfd/simple"
)

// RunCmd implements spec.md §6's CLI contract: six positional arguments
// (<mesh_folder> <dt> <timesteps> <mu> <n_splits>, plus program name),
// any of which missing falls back to an interactive stdin prompt rather
// than erroring, following the teacher's processInput (cmd/2D.go) pattern
// of validating required input before Run rather than inside it.
var RunCmd = &cobra.Command{
	Use:   "run [mesh_folder] [dt] [timesteps] [mu] [n_splits]",
	Short: "Run the SIMPLE solver on a mesh folder",
	Run: func(cmd *cobra.Command, args []string) {
		fillFromPositional(cmd, args)
		promptMissing(cmd)

		cfg, err := config.Load(cmd.Flags())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		peers, _ := cmd.Flags().GetInt("peers")
		if peers == 0 {
			peers = cfg.NSplits
		}
		if peers != cfg.NSplits {
			fmt.Fprintf(os.Stderr, "run: expected exactly n_splits=%d peer processes, got %d\n", cfg.NSplits, peers)
			os.Exit(1)
		}

		outputDir, _ := cmd.Flags().GetString("output-dir")

		if runGroup(&cfg, outputDir) != nil {
			os.Exit(1)
		}
	},
}

func init() {
	f := RunCmd.Flags()
	f.String("mesh-folder", "", "mesh folder containing params.*, bctype_<rank>.txt, etc.")
	f.Float64("dt", 0, "time step size")
	f.Int("timesteps", 0, "number of time steps to run")
	f.Float64("mu", 0, "dynamic viscosity")
	f.Int("n-splits", 0, "number of column-strip subdomains (ranks)")
	f.Bool("unsteady", false, "use the unsteady relaxation schedule instead of steady")
	f.Float64("dx", 0, "cell spacing in x, overrides the mesh folder's params file when set")
	f.Float64("dy", 0, "cell spacing in y, overrides the mesh folder's params file when set")
	f.Int("output-every", 1, "write field output every N time steps")
	f.Bool("fail-on-missing-field", false, "treat a missing initial-field file as a fatal error")
	f.String("solver", "cg", "momentum solver: cg or bicgstab")
	f.String("output-dir", "", "directory to write per-timestep field output into")
	f.Int("peers", 0, "number of peer processes actually launched (0 = assume it matches n-splits); a mismatch is fatal per spec.md's process-layout contract")
}

// positionalFlags is the order spec.md §6 assigns to the five CLI
// arguments.
var positionalFlags = []string{"mesh-folder", "dt", "timesteps", "mu", "n-splits"}

func fillFromPositional(cmd *cobra.Command, args []string) {
	for i, name := range positionalFlags {
		if i >= len(args) {
			break
		}
		cmd.Flags().Set(name, args[i])
	}
}

// promptMissing interactively asks for any of the five required arguments
// still at their zero value, per spec.md §6 "missing arguments fall back
// to interactive prompts on standard input".
func promptMissing(cmd *cobra.Command) {
	sc := bufio.NewScanner(os.Stdin)
	ask := func(prompt string) string {
		fmt.Print(prompt)
		if !sc.Scan() {
			return ""
		}
		return strings.TrimSpace(sc.Text())
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("mesh-folder"); v == "" {
		flags.Set("mesh-folder", ask("mesh_folder: "))
	}
	if v, _ := flags.GetFloat64("dt"); v == 0 {
		flags.Set("dt", ask("dt: "))
	}
	if v, _ := flags.GetInt("timesteps"); v == 0 {
		flags.Set("timesteps", ask("timesteps: "))
	}
	if v, _ := flags.GetFloat64("mu"); v == 0 {
		flags.Set("mu", ask("mu: "))
	}
	if v, _ := flags.GetInt("n-splits"); v == 0 {
		flags.Set("n-splits", ask("n_splits: "))
	}
}

// runGroup builds cfg.NSplits ranks, runs each on its own goroutine (one
// goroutine per rank, per spec.md §5's concurrency model), and returns the
// first error any rank reported.
func runGroup(cfg *config.Config, outputDir string) error {
	comms := parallel.NewGroup(cfg.NSplits)

	var wg sync.WaitGroup
	errs := make([]error, cfg.NSplits)
	for r := 0; r < cfg.NSplits; r++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			errs[rank] = runRank(cfg, comms[rank], rank, outputDir)
		}(r)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return err
		}
	}
	return nil
}

func runRank(cfg *config.Config, comm *parallel.Communicator, rank int, outputDir string) error {
	if err := cfg.VerifyConsistent(comm); err != nil {
		return err
	}

	m, dx, dy, err := iofields.LoadMesh(cfg.MeshFolder, rank)
	if err != nil {
		comm.Abort(fmt.Sprintf("rank %d: load mesh: %v", rank, err))
		return fmt.Errorf("rank %d: load mesh: %w", rank, err)
	}
	if cfg.Dx != 0 {
		dx = cfg.Dx
	}
	if cfg.Dy != 0 {
		dy = cfg.Dy
	}

	u, v, p, uf, vf, ok, err := iofields.LoadInitialFields(cfg.MeshFolder, rank, m.Ny, m.Nx)
	if !ok {
		if cfg.FailOnMissingField {
			comm.Abort(fmt.Sprintf("rank %d: missing initial field: %v", rank, err))
			return fmt.Errorf("rank %d: missing initial field: %w", rank, err)
		}
		fmt.Printf("rank %d: initial field load incomplete (%v), zero-initializing\n", rank, err)
	}
	copy(m.U, u)
	copy(m.V, v)
	copy(m.P, p)
	copy(m.PStar, p)
	copy(m.UFace, uf)
	copy(m.VFace, vf)
	copy(m.U0, u)
	copy(m.V0, v)

	geom := discretize.Geometry{Dx: dx, Dy: dy}
	s := simple.New(m, cfg, comm, geom, 0)
	s.OutputDir = outputDir

	return s.Run()
}
