package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	chem "github.com/rmera/commpare"
)

const cassandraRunName = "enertest.out"

// cassandraInp is the Cassandra input for a zero-sweep, single-frame, energy
// calculation. The run name, the cutoff and the box length, in A, are substituted.
const cassandraInp = `! Input file for testing energies

# Run_Name
%[1]s
!------------------------------------------------------------------------------

# Sim_Type
nvt_mc
!------------------------------------------------------------------------------

# Nbr_Species
1
!------------------------------------------------------------------------------

# VDW_Style
lj cut %[2]s
!------------------------------------------------------------------------------

# Charge_Style
coul ewald %[2]s 1e-5
!------------------------------------------------------------------------------

# Seed_Info
1 2
!------------------------------------------------------------------------------

# Rcutoff_Low
0.5
!------------------------------------------------------------------------------

# Molecule_Files
structure.mcf 1
!------------------------------------------------------------------------------

# Box_Info
1
cubic
%[3]s
!------------------------------------------------------------------------------

# Temperature_Info
300.0
!------------------------------------------------------------------------------

# Move_Probability_Info
!------------------------------------------------------------------------------
!-------------------------Choices don't matter for the single frame energy calc

# Prob_Translation
1
1.0

# Done_Probability_Info
!------------------------------------------------------------------------------

# Start_Type
read_config 1 structure.xyz
!------------------------------------------------------------------------------

# Run_Type
production   1
!------------------------------------------------------------------------------

# Simulation_Length_Info
units        sweeps
prop_freq    1
coord_freq   1
run          0
!------------------------------------------------------------------------------

# Property_Info 1
energy_total
!------------------------------------------------------------------------------

# Fragment_Files
!------------------------------------------------------------------------------
!-----------------------------------library_setup.py will autofill this section

END`

// CassandraInp returns the Cassandra input file for a run with the given
// name, cutoff in nm, and cubic box length in A.
func CassandraInp(runName string, cutoff, box float64) string {
	c := math.Round(cutoff*10*1e6) / 1e6
	return fmt.Sprintf(cassandraInp, runName, strconv.FormatFloat(c, 'f', -1, 64), mcfFloat(box))
}

// CassandraTerms maps the canonical components to the terms in the energy
// section of the Cassandra log. Cassandra can't separate LJ and Coulomb energies.
var CassandraTerms = TermMap{
	{Bond, []string{"Bondenergy"}},
	{Angle, []string{"Bondangleenergy"}},
	{Dihedral, []string{"Dihedralangleenergy"}},
	{Nonbond, []string{"Intramoleculevdw", "Intramoleculeq", "Intermoleculevdw", "Intermoleculeq", "Reciprocalewald", "Selfewald"}},
	{All, []string{"Totalsystemenergy"}},
}

// cassandraPrpTerms is used when the energies have to be read from the
// property file, which is already in kJ/mol.
var cassandraPrpTerms = TermMap{
	{Bond, nil},
	{Angle, nil},
	{Dihedral, nil},
	{Nonbond, []string{"Energy_LJ", "Energy_Elec"}},
	{All, []string{"Energy_Total"}},
}

// CassandraHandle runs single-point energies with Cassandra. The fragment
// library needs to be built, with the python2 library_setup.py script, before
// Cassandra itself can run.
type CassandraHandle struct {
	cfg    *Config
	runner *Runner
}

// NewCassandraHandle returns a handle for Cassandra set from cfg.
func NewCassandraHandle(cfg *Config) *CassandraHandle {
	cfg = cfg.orDefault()
	return &CassandraHandle{cfg: cfg, runner: NewRunner(cfg)}
}

func (C *CassandraHandle) Name() Name { return Cassandra }

// Available returns true if a Cassandra executable is in the PATH. The
// companion programs, library_setup.py and python2, are only required by Run.
func (C *CassandraHandle) Available() bool {
	_, ok := lookPath(C.cfg.Cassandra)
	return ok
}

// BuildInput writes structure.mcf, structure.xyz, structure.pdb and enertest.inp.
func (C *CassandraHandle) BuildInput(sb *Sandbox, st *Structure) error {
	cerr := func(file string, err error) error {
		return Error{message: ErrCantInput, engine: Cassandra, file: file, err: err, deco: []string{"CassandraHandle.BuildInput"}}
	}
	style := MCFDihedralStyle(st)
	C.cfg.logger().Debugf("cassandra: using the %s dihedral style", style)
	if err := WriteMCFFile(sb.Path("structure.mcf"), st, style); err != nil {
		return cerr("structure.mcf", err)
	}
	if err := st.writeXYZ(sb, "structure.xyz"); err != nil {
		return cerr("structure.xyz", err)
	}
	b := C.cfg.BoxLength
	if err := st.writePDB(sb, "structure.pdb", [3]float64{b, b, b}); err != nil {
		return cerr("structure.pdb", err)
	}
	if err := sb.WriteFile("enertest.inp", []byte(CassandraInp(cassandraRunName, C.cfg.Cutoff, b))); err != nil {
		return cerr("enertest.inp", err)
	}
	return nil
}

// Run builds the fragment library and, if that succeeds, runs Cassandra.
// Missing programs are critical errors.
func (C *CassandraHandle) Run(ctx context.Context, sb *Sandbox) (bool, error) {
	missing := func(what string) error {
		return Error{message: ErrMissingCompanion, engine: Cassandra, additional: what, critical: true, deco: []string{"CassandraHandle.Run"}}
	}
	cassandra, ok := lookPath(C.cfg.Cassandra)
	if !ok {
		return false, missing("no Cassandra executable in the PATH")
	}
	fraglib, ok := lookPath([]string{C.cfg.FragLibSetup})
	if !ok {
		return false, missing(C.cfg.FragLibSetup + " must be in the PATH")
	}
	py2, ok := lookPath(C.cfg.Python2)
	if !ok {
		return false, missing(C.cfg.FragLibSetup + " requires python2")
	}
	log := C.cfg.logger()
	log.Debugf("cassandra: python2 %s, library_setup %s, cassandra %s", py2, fraglib, cassandra)
	res, err := C.runner.Run(ctx, Command{Log: "cassandra_fraglib", Bin: py2, Args: []string{fraglib, cassandra, "enertest.inp", "structure.pdb"}, Dir: sb.Dir})
	if err != nil {
		return false, errDecorate(err, "CassandraHandle.Run")
	}
	if !res.Success {
		log.Warn("cassandra: fragment library generation failed, see cassandra_fraglib.err")
		return false, nil
	}
	res, err = C.runner.Run(ctx, Command{Log: "cassandra", Bin: cassandra, Args: []string{"enertest.inp"}, Dir: sb.Dir})
	if err != nil {
		return false, errDecorate(err, "CassandraHandle.Run")
	}
	if !res.Success {
		log.Warn("cassandra: run failed, see cassandra.err")
	}
	return res.Success, nil
}

// Energy reads the energies from the Cassandra log. If the log has no energy
// section, the property file is used, which only gives the total and nonbonded
// energies.
func (C *CassandraHandle) Energy(ctx context.Context, sb *Sandbox) (*Report, error) {
	logname := cassandraRunName + ".log"
	if f, err := os.Open(sb.Path(logname)); err == nil {
		native, err := ReadCassandraLog(f)
		f.Close()
		if err == nil && len(native) > 0 {
			return Canonicalize(Cassandra, native, CassandraTerms, chem.Atomic2KJ), nil
		}
	}
	prpname := cassandraRunName + ".prp"
	f, err := os.Open(sb.Path(prpname))
	if err != nil {
		return nil, Error{message: ErrNoEnergy, engine: Cassandra, file: logname, additional: "and no property file", err: err, deco: []string{"CassandraHandle.Energy"}}
	}
	defer f.Close()
	native, err := ReadCassandraPrp(f)
	if err != nil {
		return nil, Error{message: ErrNoEnergy, engine: Cassandra, file: prpname, err: err, deco: []string{"CassandraHandle.Energy"}}
	}
	return Canonicalize(Cassandra, native, cassandraPrpTerms, 1), nil
}

func (C *CassandraHandle) Close() error { return nil }

const cassandraEnergyMarker = "Compute total energy"

// ReadCassandraLog reads the energy section of a Cassandra log, which starts
// at the line "Compute total energy". The key of each line is made by joining
// all but the last word, the last word is the value. Lines without a numeric
// value are skipped. It returns an empty map if the section is not found.
func ReadCassandraLog(r io.Reader) (map[string]float64, error) {
	ret := make(map[string]float64)
	in := bufio.NewScanner(r)
	reading := false
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == cassandraEnergyMarker {
			reading = true
		}
		if !reading {
			continue
		}
		f := strings.Fields(line)
		if len(f) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(f[len(f)-1], 64)
		if err != nil {
			continue
		}
		ret[strings.Join(f[:len(f)-1], "")] = v
	}
	return ret, in.Err()
}

// ReadCassandraPrp reads the first data row of a Cassandra property file. The
// names of the columns are taken from the comment line that names the step
// or the total energy column. Other comment lines, such as the title and the
// units, are skipped.
func ReadCassandraPrp(r io.Reader) (map[string]float64, error) {
	var names []string
	in := bufio.NewScanner(r)
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if names == nil && prpHeader(line) {
				names = strings.Fields(strings.TrimLeft(line, "#"))
			}
			continue
		}
		if names == nil {
			return nil, fmt.Errorf("no column names in property file")
		}
		vals := strings.Fields(line)
		ret := make(map[string]float64)
		for i, n := range names {
			if i >= len(vals) {
				break
			}
			v, err := strconv.ParseFloat(vals[i], 64)
			if err != nil {
				return nil, fmt.Errorf("can't parse %s: %w", n, err)
			}
			ret[n] = v
		}
		return ret, nil
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no data in property file")
}

func prpHeader(line string) bool {
	for _, f := range strings.Fields(strings.TrimLeft(line, "#")) {
		switch f {
		case "MC_SWEEP", "MC_STEP", "Energy_Total":
			return true
		}
	}
	return false
}
