package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/commpare/logger"
)

const testXvg = `# This file was created by gmx energy
@    title "GROMACS Energies"
@    xaxis  label "Time (ps)"
@    yaxis  label "(kJ/mol)"
@TYPE xy
@ view 0.15, 0.15, 0.75, 0.85
@ legend on
@ s0 legend "Bond"
@ s1 legend "Angle"
@ s2 legend "Ryckaert-Bell."
@ s3 legend "LJ-14"
@ s4 legend "Coulomb-14"
@ s5 legend "LJ (SR)"
@ s6 legend "Disper. corr."
@ s7 legend "Coulomb (SR)"
@ s8 legend "Coul. recip."
@ s9 legend "Potential"
    0.000000    1.500000    2.250000    0.750000    0.500000    4.000000   -3.000000   -0.125000   -8.000000    1.000000   -1.125000`

const testEnergyList = `Opened out.edr as single precision energy file

Select the terms you want from the following list by
selecting either (part of) the name or the number or a combination.
End your selection with an empty line or a zero.
-------------------------------------------------------------------
  1  Bond             2  Angle            3  Ryckaert-Bell.   4  LJ-14         
  5  Coulomb-14       6  LJ-(SR)          7  Disper.-corr.    8  Coulomb-(SR)  
  9  Coul.-recip.    10  Potential       11  Kinetic-En.     12  Total-Energy  

`

// fakeGmx behaves like gmx for the subcommands used by GromacsHandle.
// If failGrompp is true, grompp fails.
func fakeGmx(Te *testing.T, dir string, failGrompp bool) {
	grompp := ": > out.tpr\n\t\techo grompp done"
	if failGrompp {
		grompp = "echo 'Fatal error: no atomtypes' >&2\n\t\texit 1"
	}
	script := `case "$1" in
	grompp)
		` + grompp + `
		;;
	mdrun)
		: > out.edr
		;;
	energy)
		if [ "$4" = "-o" ]; then
			n=0
			while read -r l; do
				[ -n "$l" ] && n=$((n+1))
			done
			printf '%d\n' "$n" > sel.txt
			printf '%s\n' '` + testXvg + `' > "$5"
		else
			printf '%s\n' '` + testEnergyList + `' >&2
			exit 1
		fi
		;;
esac
`
	fakeBin(Te, dir, "gmx", script)
}

func TestReadXvgEnergies(Te *testing.T) {
	e, err := ReadXvgEnergies(strings.NewReader(testXvg))
	if err != nil {
		Te.Fatal(err)
	}
	if len(e) != 10 || e["LJ (SR)"] != -3 || e["Potential"] != -1.125 || e["Ryckaert-Bell."] != 0.75 {
		Te.Errorf("bad energies read: %v", e)
	}
	if _, err := ReadXvgEnergies(strings.NewReader("@ s0 legend \"Bond\"\n")); err == nil {
		Te.Errorf("expected error for an xvg without data")
	}
}

func TestGromacsEnergyTerms(Te *testing.T) {
	t := gromacsEnergyTerms(testEnergyList)
	if len(t) != 12 || t[0] != "Bond" || t[5] != "LJ-(SR)" || t[11] != "Total-Energy" {
		Te.Errorf("bad list of terms %v", t)
	}
}

func TestGromacsMdp(Te *testing.T) {
	m := GromacsMdp(1.999)
	for _, s := range []string{"rcoulomb                 = 1.999\n", "rvdw                     = 1.999\n", "nsteps                   = 0\n", "coulombtype              = PME\n"} {
		if !strings.Contains(m, s) {
			Te.Errorf("mdp lacks %q", s)
		}
	}
	if !strings.HasSuffix(m, "continuation             = yes ") {
		Te.Errorf("mdp doesn't end as expected")
	}
}

func TestGromacsHandle(Te *testing.T) {
	bin := Te.TempDir()
	fakeGmx(Te, bin, false)
	Te.Setenv("PATH", bin)
	wd, _ := os.Getwd()
	cfg := testConfig(Te)
	var logs bytes.Buffer
	cfg.Log = logger.NewWithConfig(logger.Config{Level: logger.DebugLevel, Writer: &logs, NoColor: true})
	h := NewGromacsHandle(cfg)
	if !h.Available() {
		Te.Fatal("gmx not detected")
	}
	sb, err := NewSandbox(cfg.TempDir, "gromacs")
	if err != nil {
		Te.Fatal(err)
	}
	defer sb.Close()
	if err := h.BuildInput(sb, loadEthane(Te)); err != nil {
		Te.Fatal(err)
	}
	for _, f := range []string{"structure.gro", "structure.top", "grompp.mdp"} {
		if !sb.Exists(f) {
			Te.Errorf("%s not written", f)
		}
	}
	ok, err := h.Run(context.Background(), sb)
	if err != nil || !ok {
		Te.Fatalf("run failed: %v %v", ok, err)
	}
	//listing the terms always exits non-zero, a clean run warns nothing.
	if strings.Contains(logs.String(), "WARN") {
		Te.Errorf("clean run logged warnings:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "gmx_energy_terms exited") {
		Te.Errorf("term listing exit not logged at debug level:\n%s", logs.String())
	}
	sel, _ := os.ReadFile(sb.Path("sel.txt"))
	if strings.TrimSpace(string(sel)) != "12" {
		Te.Errorf("expected all 12 terms selected, got %q", sel)
	}
	r, err := h.Energy(context.Background(), sb)
	if err != nil {
		Te.Fatal(err)
	}
	want := map[string]float64{Bond: 1.5, Angle: 2.25, Dihedral: 0.75, LJ: -2.5, QQ: -4, Nonbond: -6.5, All: -1.125}
	for i, k := range CanonicalKeys() {
		if r.Keys[i] != k {
			Te.Errorf("bad key order %v", r.Keys)
		}
		if v, ok := r.Get(k).Float(); !ok || v != want[k] {
			Te.Errorf("%s: expected %v got %v", k, want[k], r.Get(k))
		}
	}
	for _, l := range []string{"gmx_grompp.out", "gmx_grompp.err", "gmx_mdrun.out", "gmx_mdrun.err", "gmx_energy_terms.err", "gmx_energy.out", "gmx_energy.err"} {
		if _, err := os.Stat(filepath.Join(cfg.LogDir, l)); err != nil {
			Te.Errorf("log %s not written", l)
		}
	}
	if wd2, _ := os.Getwd(); wd2 != wd {
		Te.Errorf("working directory changed from %s to %s", wd, wd2)
	}
}

func TestGromacsGromppFails(Te *testing.T) {
	bin := Te.TempDir()
	fakeGmx(Te, bin, true)
	Te.Setenv("PATH", bin)
	cfg := testConfig(Te)
	h := NewGromacsHandle(cfg)
	sb, err := NewSandbox(cfg.TempDir, "gromacs")
	if err != nil {
		Te.Fatal(err)
	}
	defer sb.Close()
	if err := h.BuildInput(sb, loadEthane(Te)); err != nil {
		Te.Fatal(err)
	}
	ok, err := h.Run(context.Background(), sb)
	if err != nil || ok {
		Te.Fatalf("expected a failed run without error, got %v %v", ok, err)
	}
	e, _ := os.ReadFile(filepath.Join(cfg.LogDir, "gmx_grompp.err"))
	if !strings.Contains(string(e), "Fatal error") || !strings.Contains(string(e), "failed") {
		Te.Errorf("grompp error log lacks the failure: %s", e)
	}
	if _, err := os.Stat(filepath.Join(cfg.LogDir, "gmx_mdrun.out")); err == nil {
		Te.Errorf("mdrun should not run after grompp fails")
	}
}

func TestGromacsMissing(Te *testing.T) {
	Te.Setenv("PATH", Te.TempDir())
	cfg := testConfig(Te)
	h := NewGromacsHandle(cfg)
	if h.Available() || Detect(Gromacs, cfg) {
		Te.Fatal("gmx should not be available")
	}
	sb, err := NewSandbox(cfg.TempDir, "gromacs")
	if err != nil {
		Te.Fatal(err)
	}
	defer sb.Close()
	_, err = h.Run(context.Background(), sb)
	if !IsCritical(err) {
		Te.Errorf("expected a critical error, got %v", err)
	}
}
