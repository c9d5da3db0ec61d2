package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// gromacsMdp is the run control file for a zero-step Gromacs md run.
// The cutoff is replaced for rcoulomb and rvdw.
const gromacsMdp = `; RUN CONTROL PARAMETERS =
integrator               = md
; start time and timestep in ps =
tinit                    = 0
dt                       = 0.002
nsteps                   = 0
; printing energy
nstenergy                = 1
; mode for center of mass motion removal =
comm-mode                = Linear
; number of steps for center of mass motion removal =
nstcomm                  = 1
; group(s) for center of mass motion removal =
comm-grps                =
; NEIGHBORSEARCHING PARAMETERS =
; nblist update frequency =
nstlist                  = 1
; ns algorithm (simple or grid) =
ns_type                  = grid
; Periodic boundary conditions: xyz or no =
pbc                      = xyz
; nblist cut-off         =
rlist                    = 0.9

; OPTIONS FOR ELECTROSTATICS AND VDW =
; Method for doing electrostatics =
cutoff-scheme            = verlet
coulombtype              = PME
coulomb-modifier         = None
rcoulomb                 = %[1]s
; Dielectric constant (DC) for cut-off or DC of reaction field =
epsilon-r                = 1
; Method for doing Van der Waals =
vdw-type                 = cut-off
vdw-modifier             = None
; cut-off lengths        =
rvdw                     = %[1]s
; Apply long range dispersion corrections for Energy and Pressure =
DispCorr                 = Ener
; Spacing for the PME/PPPM FFT grid =
fourierspacing           = 0.1
; EWALD/PME/PPPM parameters =
pme_order                = 4
ewald_rtol               = 1e-06
ewald_geometry           = 3d
epsilon_surface          = 0

; OPTIONS FOR BONDS     =
constraints              = none

; GENERATE VELOCITIES FOR STARTUP RUN =
gen_vel                  = no
continuation             = yes `

// GromacsTerms maps the canonical components to the Gromacs energy terms.
// Gromacs energies are in kJ/mol.
var GromacsTerms = TermMap{
	{Bond, []string{"Bond"}},
	{Angle, []string{"Angle"}},
	{Dihedral, []string{"Proper Dih.", "Ryckaert-Bell."}},
	{LJ, []string{"LJ-14", "LJ (SR)"}},
	{QQ, []string{"Coulomb-14", "Coulomb (SR)"}},
	{Nonbond, []string{"LJ-14", "Coulomb-14", "LJ (SR)", "Coulomb (SR)"}},
	{All, []string{"Potential"}},
}

// GromacsHandle runs single-point energies with Gromacs, by means of
// grompp, mdrun and energy.
type GromacsHandle struct {
	cfg    *Config
	runner *Runner
	gmx    string
}

// NewGromacsHandle returns a handle for Gromacs, set from cfg.
func NewGromacsHandle(cfg *Config) *GromacsHandle {
	cfg = cfg.orDefault()
	return &GromacsHandle{cfg: cfg, runner: NewRunner(cfg)}
}

func (G *GromacsHandle) Name() Name { return Gromacs }

func (G *GromacsHandle) Available() bool {
	_, ok := lookPath(G.cfg.Gromacs)
	return ok
}

// BuildInput writes structure.gro, structure.top and grompp.mdp.
func (G *GromacsHandle) BuildInput(sb *Sandbox, st *Structure) error {
	if err := st.writeGromacsFiles(sb, Gromacs); err != nil {
		return errDecorate(err, "GromacsHandle.BuildInput")
	}
	if err := sb.WriteFile("grompp.mdp", []byte(GromacsMdp(G.cfg.Cutoff))); err != nil {
		return Error{message: ErrCantInput, engine: Gromacs, file: "grompp.mdp", err: err, deco: []string{"GromacsHandle.BuildInput"}}
	}
	return nil
}

// GromacsMdp returns the mdp file used for the runs, with the given cutoff, in nm.
func GromacsMdp(cutoff float64) string {
	return fmt.Sprintf(gromacsMdp, strconv.FormatFloat(cutoff, 'f', -1, 64))
}

// Run runs grompp, mdrun, and extracts all the energy terms to energy.xvg.
// If a step fails, the following ones are not run.
func (G *GromacsHandle) Run(ctx context.Context, sb *Sandbox) (bool, error) {
	gmx, ok := lookPath(G.cfg.Gromacs)
	if !ok {
		return false, Error{message: ErrNotAvailable, engine: Gromacs, additional: strings.Join(G.cfg.Gromacs, ", "), critical: true, deco: []string{"GromacsHandle.Run"}}
	}
	G.gmx = gmx
	steps := []Command{
		{Log: "gmx_grompp", Bin: gmx, Args: []string{"grompp", "-f", "grompp.mdp", "-c", "structure.gro", "-p", "structure.top", "-o", "out", "-maxwarn", "5"}, Dir: sb.Dir},
		{Log: "gmx_mdrun", Bin: gmx, Args: []string{"mdrun", "-deffnm", "out"}, Dir: sb.Dir},
	}
	for _, c := range steps {
		res, err := G.runner.Run(ctx, c)
		if err != nil {
			return false, errDecorate(err, "GromacsHandle.Run")
		}
		if !res.Success {
			return false, nil
		}
	}
	//The first call only lists the available terms, it "fails" as
	//we don't select any.
	res, err := G.runner.Run(ctx, Command{Log: "gmx_energy_terms", Bin: gmx, Args: []string{"energy", "-f", "out.edr"}, Stdin: "0\n", Dir: sb.Dir, MayFail: true})
	if err != nil {
		return false, errDecorate(err, "GromacsHandle.Run")
	}
	n := len(gromacsEnergyTerms(res.Stderr + "\n" + res.Stdout))
	if n == 0 {
		G.cfg.logger().Warn("gromacs: no energy terms found in out.edr")
		return false, nil
	}
	var sel strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sel, "%d\n", i)
	}
	sel.WriteString("\n")
	res, err = G.runner.Run(ctx, Command{Log: "gmx_energy", Bin: gmx, Args: []string{"energy", "-f", "out.edr", "-o", "energy.xvg"}, Stdin: sel.String(), Dir: sb.Dir})
	if err != nil {
		return false, errDecorate(err, "GromacsHandle.Run")
	}
	return res.Success && sb.Exists("energy.xvg"), nil
}

var gmxTermRegex = regexp.MustCompile(`(\d+)\s+(\S+)`)

// gromacsEnergyTerms parses the list of energy terms that gmx energy
// prints before asking for a selection. It returns the term names,
// in the order of their indexes.
func gromacsEnergyTerms(s string) []string {
	var ret []string
	in := false
	for _, line := range strings.Split(s, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "-----") {
			if in {
				break
			}
			in = true
			continue
		}
		if !in {
			continue
		}
		if t == "" {
			if len(ret) > 0 {
				break
			}
			continue
		}
		for _, m := range gmxTermRegex.FindAllStringSubmatch(t, -1) {
			ret = append(ret, m[2])
		}
	}
	return ret
}

// Energy reads energy.xvg and returns the canonical components.
func (G *GromacsHandle) Energy(ctx context.Context, sb *Sandbox) (*Report, error) {
	f, err := os.Open(sb.Path("energy.xvg"))
	if err != nil {
		return nil, Error{message: ErrNoEnergy, engine: Gromacs, file: "energy.xvg", err: err, deco: []string{"GromacsHandle.Energy"}}
	}
	defer f.Close()
	native, err := ReadXvgEnergies(f)
	if err != nil {
		return nil, Error{message: ErrNoEnergy, engine: Gromacs, file: "energy.xvg", err: err, deco: []string{"GromacsHandle.Energy"}}
	}
	return Canonicalize(Gromacs, native, GromacsTerms, 1), nil
}

func (G *GromacsHandle) Close() error { return nil }

var xvgLegendRegex = regexp.MustCompile(`^@\s+s(\d+)\s+legend\s+"(.*)"`)

// ReadXvgEnergies reads the energy terms in the first data row of an xvg file
// produced by gmx energy. The first column, the time, is not an energy.
func ReadXvgEnergies(r io.Reader) (map[string]float64, error) {
	legends := make(map[int]string)
	in := bufio.NewScanner(r)
	in.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "@") {
			if m := xvgLegendRegex.FindStringSubmatch(line); m != nil {
				i, _ := strconv.Atoi(m[1])
				legends[i] = m[2]
			}
			continue
		}
		fields := strings.Fields(line)
		ret := make(map[string]float64, len(legends))
		for i, name := range legends {
			if i+1 >= len(fields) {
				return nil, fmt.Errorf("xvg data row has %d columns, legend %d (%s) has no value", len(fields), i, name)
			}
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("can't parse value for %s: %w", name, err)
			}
			ret[name] = v
		}
		return ret, nil
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no data in xvg file")
}
