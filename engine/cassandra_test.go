package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCassandraLog = ` Reading the input file
 Compute total energy
 *********************************************************************

 Energy components for box 1 in atomic units:

 Total system energy                       -2500.00
 Intra molecule energy                       450.00
 Bond energy                                   0.00
 Bond angle energy                           200.00
 Dihedral angle energy                       100.00
 Improper angle energy                         0.00
 Intra molecule vdw                          150.00
 Intra molecule q                           -400.00
 Inter molecule vdw                            0.00
 Inter molecule q                              0.00
 Reciprocal ewald                            250.00
 Self ewald                                 -2850.00
 *********************************************************************
`

const testCassandraPrp = `# Run_Name:  enertest.out.box1
#   MC_SWEEP      Energy_Total
#                 (kJ/mol)
           0   -0.12500E+02
`

func TestReadCassandraLog(Te *testing.T) {
	e, err := ReadCassandraLog(strings.NewReader(testCassandraLog))
	if err != nil {
		Te.Fatal(err)
	}
	if e["Totalsystemenergy"] != -2500 || e["Selfewald"] != -2850 || e["Bondangleenergy"] != 200 {
		Te.Errorf("bad energies %v", e)
	}
	if _, ok := e["Energycomponentsforbox1inatomic"]; ok {
		Te.Errorf("non-numeric lines should be skipped")
	}
	r := Canonicalize(Cassandra, e, CassandraTerms, 0.01)
	want := map[string]float64{Bond: 0, Angle: 2, Dihedral: 1, Nonbond: -28.5, All: -25}
	for _, k := range r.Keys {
		if v, ok := r.Get(k).Float(); !ok || !isClose(v, want[k]) {
			Te.Errorf("%s: expected %v got %v", k, want[k], r.Get(k))
		}
	}
	e, err = ReadCassandraLog(strings.NewReader("nothing to see here 1.0\n"))
	if err != nil || len(e) != 0 {
		Te.Errorf("expected no energies without the marker, got %v %v", e, err)
	}
}

func TestReadCassandraPrp(Te *testing.T) {
	e, err := ReadCassandraPrp(strings.NewReader(testCassandraPrp))
	if err != nil {
		Te.Fatal(err)
	}
	if len(e) != 2 || e["Energy_Total"] != -12.5 || e["MC_SWEEP"] != 0 {
		Te.Errorf("bad property values %v", e)
	}
	if _, err := ReadCassandraPrp(strings.NewReader("# Run_Name: enertest.out.box1\n 0 -12.5\n")); err == nil {
		Te.Error("expected error for a property file without column names")
	}
}

func TestCassandraInp(Te *testing.T) {
	inp := CassandraInp(cassandraRunName, 1.999, 100)
	order := []string{"# Run_Name\nenertest.out\n", "# Sim_Type", "# Nbr_Species", "# VDW_Style\nlj cut 19.99\n",
		"# Charge_Style\ncoul ewald 19.99 1e-5\n", "# Seed_Info", "# Rcutoff_Low", "# Molecule_Files\nstructure.mcf 1\n",
		"# Box_Info\n1\ncubic\n100.\n", "# Temperature_Info", "# Move_Probability_Info", "# Prob_Translation",
		"# Done_Probability_Info", "# Start_Type\nread_config 1 structure.xyz\n", "# Run_Type", "# Simulation_Length_Info",
		"# Property_Info 1\nenergy_total\n", "# Fragment_Files", "END"}
	last := -1
	for _, s := range order {
		i := strings.Index(inp, s)
		if i <= last {
			Te.Errorf("%q missing or out of order", s)
		}
		last = i
	}
}

// cassandraPath sets a PATH with a fake Cassandra installation. The fragment
// library step succeeds only if fraglibOK is true. If withPython2 is false,
// there is no python2 in the PATH.
func cassandraPath(Te *testing.T, fraglibOK, withPython2 bool) {
	bin := Te.TempDir()
	fakeBin(Te, bin, "cassandra_gfortran.exe", "printf '%s\\n' '"+testCassandraLog+"' > enertest.out.log\n")
	fakeBin(Te, bin, "library_setup.py", "")
	if withPython2 {
		py := "echo \"$@\" > fraglib_args.txt\n"
		if !fraglibOK {
			py += "echo 'fragment generation failed' >&2\nexit 1\n"
		}
		fakeBin(Te, bin, "python2.7", py)
	}
	Te.Setenv("PATH", bin)
}

func cassandraSandbox(Te *testing.T, cfg *Config, h Handle) *Sandbox {
	sb, err := NewSandbox(cfg.TempDir, "cassandra")
	if err != nil {
		Te.Fatal(err)
	}
	if err := h.BuildInput(sb, loadEthane(Te)); err != nil {
		Te.Fatal(err)
	}
	return sb
}

func TestCassandraHandle(Te *testing.T) {
	cassandraPath(Te, true, true)
	cfg := testConfig(Te)
	h := NewCassandraHandle(cfg)
	if !h.Available() {
		Te.Fatal("cassandra not detected")
	}
	sb := cassandraSandbox(Te, cfg, h)
	defer sb.Close()
	for _, f := range []string{"structure.mcf", "structure.xyz", "structure.pdb", "enertest.inp"} {
		if !sb.Exists(f) {
			Te.Errorf("%s not written", f)
		}
	}
	ok, err := h.Run(context.Background(), sb)
	if err != nil || !ok {
		Te.Fatalf("run failed %v %v", ok, err)
	}
	args, _ := os.ReadFile(sb.Path("fraglib_args.txt"))
	f := strings.Fields(string(args))
	if len(f) != 4 || filepath.Base(f[0]) != "library_setup.py" || filepath.Base(f[1]) != "cassandra_gfortran.exe" || f[2] != "enertest.inp" || f[3] != "structure.pdb" {
		Te.Errorf("bad arguments for library_setup.py: %s", args)
	}
	r, err := h.Energy(context.Background(), sb)
	if err != nil {
		Te.Fatal(err)
	}
	want := []string{Bond, Angle, Dihedral, Nonbond, All}
	if strings.Join(r.Keys, ",") != strings.Join(want, ",") {
		Te.Errorf("bad keys %v", r.Keys)
	}
	if v, _ := r.Get(All).Float(); !isClose(v, -25) {
		Te.Errorf("bad total %v", v)
	}
	//without the log, the property file is used.
	os.Remove(sb.Path("enertest.out.log"))
	writeFixture(Te, sb.Dir, "enertest.out.prp", testCassandraPrp)
	r, err = h.Energy(context.Background(), sb)
	if err != nil {
		Te.Fatal(err)
	}
	if v, ok := r.Get(All).Float(); !ok || v != -12.5 {
		Te.Errorf("bad total from the property file %v", r.Get(All))
	}
	for _, k := range []string{Bond, Angle, Dihedral, Nonbond} {
		if r.Get(k).Applicable() {
			Te.Errorf("%s should not be applicable from the property file", k)
		}
	}
}

func TestCassandraFraglibFails(Te *testing.T) {
	cassandraPath(Te, false, true)
	cfg := testConfig(Te)
	h := NewCassandraHandle(cfg)
	sb := cassandraSandbox(Te, cfg, h)
	defer sb.Close()
	ok, err := h.Run(context.Background(), sb)
	if err != nil || ok {
		Te.Fatalf("expected a failed run without error, got %v %v", ok, err)
	}
	if sb.Exists("enertest.out.log") {
		Te.Errorf("cassandra should not run after the fragment library fails")
	}
	if _, err := os.Stat(filepath.Join(cfg.LogDir, "cassandra_fraglib.err")); err != nil {
		Te.Errorf("fragment library log not written")
	}
}

func TestCassandraNoPython2(Te *testing.T) {
	cassandraPath(Te, true, false)
	cfg := testConfig(Te)
	h := NewCassandraHandle(cfg)
	if !h.Available() {
		Te.Fatal("cassandra should be detected even without python2")
	}
	sb := cassandraSandbox(Te, cfg, h)
	defer sb.Close()
	_, err := h.Run(context.Background(), sb)
	if !IsCritical(err) {
		Te.Errorf("expected critical error without python2, got %v", err)
	}
}
