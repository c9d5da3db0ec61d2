package engine

import (
	"context"
	"errors"
	"testing"
)

func TestParseName(Te *testing.T) {
	n, err := ParseNames([]string{"GROMACS", " openmm", "hoomd"})
	if err != nil || len(n) != 3 || n[0] != Gromacs || n[1] != OpenMM {
		Te.Errorf("bad names %v %v", n, err)
	}
	if _, err := ParseName("lammps"); err == nil {
		Te.Errorf("expected error for an unknown engine")
	}
	if n, _ := ParseNames(nil); n != nil {
		Te.Errorf("empty list should give nil")
	}
}

func TestReservedEngines(Te *testing.T) {
	cfg := testConfig(Te)
	for _, n := range []Name{Amber, Desmond} {
		if !n.Reserved() {
			Te.Errorf("%s should be reserved", n)
		}
		h, err := NewHandle(n, cfg)
		if err != nil {
			Te.Fatal(err)
		}
		if h.Available() || Detect(n, cfg) {
			Te.Errorf("%s should never be available", n)
		}
		if _, err := h.Run(context.Background(), nil); err == nil {
			Te.Errorf("%s should not run", n)
		}
	}
	if _, err := NewHandle("lammps", cfg); err == nil {
		Te.Errorf("expected error for unknown engine")
	}
	recs := Records()
	if len(recs) != len(Names()) {
		Te.Fatalf("bad number of records %d", len(recs))
	}
	for _, r := range recs {
		if h := r.New(cfg); h == nil || h.Name() != r.Name {
			Te.Errorf("bad record for %s", r.Name)
		}
	}
}

func TestError(Te *testing.T) {
	cause := errors.New("exec: not found")
	var err error = Error{message: ErrNotRunning, engine: Gromacs, file: "gmx", critical: true, err: cause}
	err = errDecorate(err, "TestError")
	if !IsCritical(err) || !errors.Is(err, cause) {
		Te.Errorf("bad error %v", err)
	}
	e := err.(Error)
	if e.Engine() != Gromacs || e.FileName() != "gmx" || len(e.deco) != 1 {
		Te.Errorf("bad error fields %+v", e)
	}
	if IsCritical(errors.New("other")) {
		Te.Errorf("plain errors are not critical")
	}
}

func TestDetectNothing(Te *testing.T) {
	Te.Setenv("PATH", Te.TempDir())
	cfg := testConfig(Te)
	cfg.Python = "no-such-python"
	if a := Available(cfg); len(a) != 0 {
		Te.Errorf("nothing should be available, got %v", a)
	}
	if r := ReferenceSystems(cfg); len(r) != 0 {
		Te.Errorf("no reference systems expected, got %v", r)
	}
	if f := Forcefields(cfg); len(f) != 0 {
		Te.Errorf("no force fields expected, got %v", f)
	}
}
