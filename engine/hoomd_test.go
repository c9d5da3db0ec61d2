package engine

import (
	"context"
	"testing"
)

const testHoomdOut = `HOOMD-blue v2.9.7 CPU
notice(2): Group "all" created containing 8 particles
commpare-force hoomd.md.bond 1.0
commpare-force hoomd.md.angle 0.5
commpare-force hoomd.md.pair -2.0
commpare-force hoomd.md.special_pair 0.25
commpare-force hoomd.md.charge -1.0
commpare-force hoomd.md.external 100.0
** run complete **
`

func TestReadHoomdForces(Te *testing.T) {
	f, err := ReadHoomdForces(testHoomdOut)
	if err != nil {
		Te.Fatal(err)
	}
	if len(f) != 6 || f["hoomd.md.pair"] != -2 || f["hoomd.md.external"] != 100 {
		Te.Errorf("bad forces %v", f)
	}
	if _, err := ReadHoomdForces("nothing\n"); err == nil {
		Te.Errorf("expected error without forces")
	}
}

func TestHoomdEnergy(Te *testing.T) {
	cfg := testConfig(Te)
	cfg.Hoomd.RefEnergy = 2
	h := NewHoomdHandle(cfg)
	h.out = testHoomdOut
	r, err := h.Energy(context.Background(), nil)
	if err != nil {
		Te.Fatal(err)
	}
	f := 2 * 4.184
	want := map[string]float64{Bond: 1 * f, Angle: 0.5 * f, Nonbond: -2.75 * f, All: -1.25 * f}
	for k, v := range want {
		if got, ok := r.Get(k).Float(); !ok || !isClose(got, v) {
			Te.Errorf("%s: expected %v got %v", k, v, r.Get(k))
		}
	}
	if r.Get(Dihedral).Applicable() {
		Te.Errorf("no dihedral forces, dihedral should not be applicable")
	}
	if r.Has(LJ) || r.Has(QQ) {
		Te.Errorf("HOOMD reports can't separate LJ and QQ")
	}
}
