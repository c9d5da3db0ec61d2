package engine

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	chem "github.com/rmera/commpare"
)

const hoomdDriverName = "hoomd_energy.py"

//go:embed hoomd_energy.py
var hoomdDriver []byte

// HoomdTerms maps the canonical components to the HOOMD modules of the
// forces. The total is the sum of all the recognized forces.
var HoomdTerms = TermMap{
	{Bond, []string{"hoomd.md.bond"}},
	{Angle, []string{"hoomd.md.angle"}},
	{Dihedral, []string{"hoomd.md.dihedral"}},
	{Nonbond, []string{"hoomd.md.pair", "hoomd.md.special_pair", "hoomd.md.charge"}},
	{All, []string{"hoomd.md.bond", "hoomd.md.angle", "hoomd.md.dihedral", "hoomd.md.pair", "hoomd.md.special_pair", "hoomd.md.charge"}},
}

const hoomdForcePrefix = "commpare-force"

// HoomdHandle obtains energies with HOOMD. The simulation is built
// by mbuild from the Gromacs files, loaded with parmed.
type HoomdHandle struct {
	cfg    *Config
	runner *Runner
	out    string
}

// NewHoomdHandle returns a handle for HOOMD set from cfg.
func NewHoomdHandle(cfg *Config) *HoomdHandle {
	cfg = cfg.orDefault()
	return &HoomdHandle{cfg: cfg, runner: NewRunner(cfg)}
}

func (H *HoomdHandle) Name() Name { return HOOMD }

func (H *HoomdHandle) Available() bool {
	return pythonHasModule(H.cfg.Python, "hoomd")
}

// BuildInput writes structure.gro, structure.top and the driver script.
func (H *HoomdHandle) BuildInput(sb *Sandbox, st *Structure) error {
	if err := st.writeGromacsFiles(sb, HOOMD); err != nil {
		return errDecorate(err, "HoomdHandle.BuildInput")
	}
	if err := sb.WriteFile(hoomdDriverName, hoomdDriver); err != nil {
		return Error{message: ErrCantInput, engine: HOOMD, file: hoomdDriverName, err: err, deco: []string{"HoomdHandle.BuildInput"}}
	}
	return nil
}

// Run runs the 1-step HOOMD simulation.
func (H *HoomdHandle) Run(ctx context.Context, sb *Sandbox) (bool, error) {
	u := H.cfg.Hoomd
	args := []string{hoomdDriverName, "structure.top", "structure.gro", ffloat(u.RefDistance), ffloat(u.RefEnergy), ffloat(u.RefMass)}
	res, err := H.runner.Run(ctx, Command{Log: "hoomd", Bin: H.cfg.Python, Args: args, Dir: sb.Dir})
	if err != nil {
		return false, errDecorate(err, "HoomdHandle.Run")
	}
	H.out = res.Stdout
	return res.Success, nil
}

func ffloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Energy parses the forces printed by the run. Forces from unknown modules are
// reported and left out of all the components, including the total.
func (H *HoomdHandle) Energy(ctx context.Context, sb *Sandbox) (*Report, error) {
	native, err := ReadHoomdForces(H.out)
	if err != nil {
		return nil, Error{message: ErrNoEnergy, engine: HOOMD, err: err, deco: []string{"HoomdHandle.Energy"}}
	}
	known := make(map[string]bool)
	for _, v := range HoomdTerms {
		for _, n := range v.Native {
			known[n] = true
		}
	}
	for k := range native {
		if !known[k] {
			H.cfg.logger().Warnf("hoomd: force from module %s unrecognized, ignoring", k)
		}
	}
	return Canonicalize(HOOMD, native, HoomdTerms, H.cfg.Hoomd.RefEnergy*chem.Kcal2KJ), nil
}

func (H *HoomdHandle) Close() error { return nil }

// ReadHoomdForces reads the "commpare-force <module> <energy>" lines in
// out, and returns the total energy of each module.
func ReadHoomdForces(out string) (map[string]float64, error) {
	ret := make(map[string]float64)
	found := false
	for _, line := range strings.Split(out, "\n") {
		f := strings.Fields(line)
		if len(f) != 3 || f[0] != hoomdForcePrefix {
			continue
		}
		e, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return nil, fmt.Errorf("bad energy for %s: %w", f[1], err)
		}
		ret[f[1]] += e
		found = true
	}
	if !found {
		return nil, fmt.Errorf("no forces reported")
	}
	return ret, nil
}
