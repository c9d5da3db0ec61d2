package top

import (
	"bufio"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const ethaneTop = `; ethane, OPLS-like
[ defaults ]
; nbfunc comb-rule gen-pairs fudgeLJ fudgeQQ
1 3 yes 0.5 0.5

[ atomtypes ]
opls_135 CT 6 12.011 -0.18 A 0.35 0.276144
opls_140 HC 1  1.008  0.06 A 0.25 0.12552

[ moleculetype ]
ETH 3

[ atoms ]
  1 opls_135 1 ETH C1 1 -0.18 12.011
  2 opls_140 1 ETH H1 1  0.06
  3 opls_140 1 ETH H2 1  0.06
  4 opls_140 1 ETH H3 1  0.06
  5 opls_135 1 ETH C2 2 -0.18 12.011
  6 opls_140 1 ETH H4 2  0.06
  7 opls_140 1 ETH H5 2  0.06
  8 opls_140 1 ETH H6 2  0.06

[ bonds ]
1 2 1 0.109 284512.0
1 3 1 0.109 284512.0
1 4 1 0.109 284512.0
1 5 1 0.1529 224262.4
5 6 1 0.109 284512.0
5 7 1 0.109 284512.0
5 8 1 0.109 284512.0

[ pairs ]
2 6 1
2 7 1

[ angles ]
2 1 5 1 110.7 313.8
1 5 6 1 110.7 313.8

[ dihedrals ]
#ifdef NO_DIHEDRALS
; nothing here
#else
2 1 5 6 3 0.6276 1.8828 0.0 -2.5104 0.0 0.0
#endif

[ system ]
ethane

[ molecules ]
ETH 2
`

func readEthane(Te *testing.T) *FF {
	F := NewFF()
	if err := F.Fill(bufio.NewReader(strings.NewReader(ethaneTop)), false); err != nil {
		Te.Fatal(err)
	}
	return F
}

func TestFill(Te *testing.T) {
	F := readEthane(Te)
	if F.Defaults.CombRule != 3 || !F.Defaults.GenPairs || F.Defaults.FudgeQQ != 0.5 {
		Te.Errorf("bad defaults %+v", F.Defaults)
	}
	if len(F.ATypes) != 2 || F.ATypes[0].AtNum != 6 || F.ATypes[0].Ptype != "A" {
		Te.Fatalf("bad atom types %+v", F.ATypes)
	}
	sigma, eps := F.ATypes[0].LJSigmaEpsilon()
	if sigma != 0.35 || eps != 0.276144 {
		Te.Errorf("bad LJ parameters: %v %v", sigma, eps)
	}
	m := F.MolType("ETH")
	if m == nil {
		Te.Fatal("molecule type not read")
	}
	if len(m.Atoms) != 8 || len(m.Bonds) != 7 || len(m.Pairs) != 2 || len(m.Angles) != 2 || len(m.Dihedrals) != 1 {
		Te.Fatalf("wrong number of terms: %d %d %d %d %d", len(m.Atoms), len(m.Bonds), len(m.Pairs), len(m.Angles), len(m.Dihedrals))
	}
	//mass from the atom type
	if m.Atoms[1].Mass != 1.008 || m.Atoms[1].Type != "opls_140" {
		Te.Errorf("bad atom %+v", m.Atoms[1])
	}
	if math.Abs(m.Charge()) > 1e-9 {
		Te.Errorf("ethane should be neutral, got %v", m.Charge())
	}
	if !m.Dihedrals[0].RB() || len(m.Dihedrals[0].Params) != 6 {
		Te.Errorf("R-B dihedral not read: %+v", m.Dihedrals[0])
	}
	if m.Bonds[3].Eq() != 0.1529 || m.Bonds[3].K() != 224262.4 {
		Te.Errorf("bad bond %+v", m.Bonds[3])
	}
	if F.System != "ethane" || F.NAtoms() != 16 {
		Te.Errorf("bad system: %s %d", F.System, F.NAtoms())
	}
}

func TestDefines(Te *testing.T) {
	F := NewFF()
	if err := F.Fill(bufio.NewReader(strings.NewReader(ethaneTop)), false, "NO_DIHEDRALS"); err != nil {
		Te.Fatal(err)
	}
	if n := len(F.MolType("ETH").Dihedrals); n != 0 {
		Te.Errorf("expected no dihedrals with NO_DIHEDRALS defined, got %d", n)
	}
}

func TestFlatten(Te *testing.T) {
	F := readEthane(Te)
	fl, err := F.Flatten()
	if err != nil {
		Te.Fatal(err)
	}
	if len(fl.Atoms) != 16 || len(fl.Bonds) != 14 || len(fl.Dihedrals) != 2 {
		Te.Fatalf("wrong flat system: %d atoms %d bonds %d dihedrals", len(fl.Atoms), len(fl.Bonds), len(fl.Dihedrals))
	}
	//second molecule, first bond: 1-2 in the molecule type, 8-9 0-based in the system.
	if b := fl.Bonds[7].IDs; b[0] != 8 || b[1] != 9 {
		Te.Errorf("bad indexes for flattened bond: %v", b)
	}
	if fl.Atoms[15].ID != 16 {
		Te.Errorf("atoms not renumbered: %d", fl.Atoms[15].ID)
	}
	//the original terms must not change
	if F.MolType("ETH").Bonds[0].IDs[0] != 1 {
		Te.Errorf("Flatten modified the molecule type")
	}
	F.Molecules = append(F.Molecules, &MolCount{Name: "SOL", N: 1})
	if _, err := F.Flatten(); err == nil {
		Te.Errorf("expected an error for an undefined molecule type")
	}
}

func TestWriteTop(Te *testing.T) {
	F := readEthane(Te)
	name := filepath.Join(Te.TempDir(), "ethane.top")
	if err := F.WriteTopFile(name); err != nil {
		Te.Fatal(err)
	}
	F2, err := ReadTopFile(name)
	if err != nil {
		Te.Fatal(err)
	}
	m, m2 := F.MolType("ETH"), F2.MolType("ETH")
	if m2 == nil || len(m2.Atoms) != len(m.Atoms) || len(m2.Dihedrals) != len(m.Dihedrals) || len(m2.Pairs) != len(m.Pairs) {
		Te.Fatalf("topology not preserved")
	}
	for i, v := range m.Dihedrals[0].Params {
		if m2.Dihedrals[0].Params[i] != v {
			Te.Errorf("dihedral parameter %d changed: %v %v", i, v, m2.Dihedrals[0].Params[i])
		}
	}
	if F2.Defaults != F.Defaults || F2.NAtoms() != F.NAtoms() {
		Te.Errorf("defaults or molecules not preserved: %+v %d", F2.Defaults, F2.NAtoms())
	}
}

func TestInclude(Te *testing.T) {
	dir := Te.TempDir()
	parts := strings.SplitN(ethaneTop, "[ moleculetype ]", 2)
	itp := "[ moleculetype ]" + strings.SplitN(parts[1], "[ system ]", 2)[0]
	main := parts[0] + "#include \"ethane.itp\"\n\n[ system ]" + strings.SplitN(parts[1], "[ system ]", 2)[1]
	if err := os.WriteFile(filepath.Join(dir, "ethane.itp"), []byte(itp), 0644); err != nil {
		Te.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "topol.top"), []byte(main), 0644); err != nil {
		Te.Fatal(err)
	}
	F, err := ReadTopFile(filepath.Join(dir, "topol.top"))
	if err != nil {
		Te.Fatal(err)
	}
	if F.MolType("ETH") == nil || F.NAtoms() != 16 {
		Te.Errorf("included file not read")
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.top"), []byte("#include \"nothere.itp\"\n"), 0644); err != nil {
		Te.Fatal(err)
	}
	if _, err := ReadTopFile(filepath.Join(dir, "bad.top")); err == nil {
		Te.Errorf("expected an error for a missing include")
	}
}

// propane takes all its bonded parameters from the bonded types, or from macros.
const propaneTop = `#define gb_CC 0.1529 224262.4

[ defaults ]
1 3 yes 0.5 0.5

[ atomtypes ]
opls_135 CT 6 12.011 -0.18 A 0.35 0.276144
opls_140 HC 1  1.008  0.06 A 0.25 0.12552

[ bondtypes ]
CT HC 1 0.109 284512.0

[ angletypes ]
HC CT CT 1 110.7 313.8
CT CT CT 1 112.7 488.273

[ dihedraltypes ]
X  CT CT X  9 0.0   0.6    3
HC CT CT HC 9 0.0   0.6276 3
HC CT CT HC 9 180.0 0.2    2

[ moleculetype ]
PRP 3

[ atoms ]
  1 opls_135 1 PRP C1 1 -0.18
  2 opls_140 1 PRP H1 1  0.06
  3 opls_135 1 PRP C2 2 -0.06
  4 opls_140 1 PRP H2 2  0.06
  5 opls_135 1 PRP C3 3 -0.18
  6 opls_140 1 PRP H3 3  0.06

[ bonds ]
1 2 1
1 3 1 gb_CC
3 4 1
3 5 1 gb_CC
5 6 1

[ angles ]
2 1 3 1
1 3 5 1

[ dihedrals ]
2 1 3 4 9
1 3 5 6 9

[ system ]
propane

[ molecules ]
PRP 1
`

// checkPropane checks that the terms of propane get the right parameters.
func checkPropane(Te *testing.T, F *FF) {
	Te.Helper()
	if len(F.BondTypes) != 1 || len(F.AngleTypes) != 2 || len(F.DihedralTypes) != 3 {
		Te.Fatalf("bonded types not read: %d %d %d", len(F.BondTypes), len(F.AngleTypes), len(F.DihedralTypes))
	}
	if F.ATypes[0].BondType != "CT" || F.ATypes[1].BondType != "HC" {
		Te.Errorf("bad bond types %s %s", F.ATypes[0].BondType, F.ATypes[1].BondType)
	}
	fl, err := F.Flatten()
	if err != nil {
		Te.Fatal(err)
	}
	for _, b := range fl.Bonds {
		if !b.HasParams() {
			Te.Errorf("bond %v has no parameters", b.IDs)
		}
	}
	if b := fl.Bonds[1]; b.Eq() != 0.1529 || b.K() != 224262.4 {
		Te.Errorf("macro not expanded: %+v", b)
	}
	if b := fl.Bonds[0]; b.Eq() != 0.109 || b.K() != 284512.0 {
		Te.Errorf("bond type not used: %+v", b)
	}
	if a := fl.Angles[1]; a.Eq() != 112.7 {
		Te.Errorf("wrong angle type: %+v", a)
	}
	//H-C-C-H gets both specific lines, C-C-C-H the wildcard one.
	if len(fl.Dihedrals) != 3 {
		Te.Fatalf("expected 3 dihedral terms, got %d", len(fl.Dihedrals))
	}
	if p := fl.Dihedrals[0].Params; p[1] != 0.6276 || fl.Dihedrals[1].Params[1] != 0.2 {
		Te.Errorf("wrong specific dihedral types: %v %v", p, fl.Dihedrals[1].Params)
	}
	if p := fl.Dihedrals[2].Params; p[1] != 0.6 || p[2] != 3 {
		Te.Errorf("wrong wildcard dihedral type: %v", p)
	}
	//the molecule type itself is not modified
	if F.MolType("PRP").Bonds[0].HasParams() {
		Te.Errorf("Flatten modified the molecule type")
	}
}

func TestBondedTypes(Te *testing.T) {
	F := NewFF()
	if err := F.Fill(bufio.NewReader(strings.NewReader(propaneTop)), false); err != nil {
		Te.Fatal(err)
	}
	checkPropane(Te, F)

	var b strings.Builder
	if err := F.WriteTop(&b); err != nil {
		Te.Fatal(err)
	}
	out := b.String()
	for _, h := range []string{"[ bondtypes ]", "[ angletypes ]", "[ dihedraltypes ]"} {
		if !strings.Contains(out, h) {
			Te.Errorf("%s not written:\n%s", h, out)
		}
	}
	if strings.Contains(out, "gb_CC") {
		Te.Errorf("macro written instead of its value:\n%s", out)
	}
	F2 := NewFF()
	if err := F2.Fill(bufio.NewReader(strings.NewReader(out)), false); err != nil {
		Te.Fatal(err)
	}
	checkPropane(Te, F2)
}

func TestBondedTypeFromGro(Te *testing.T) {
	bt, err := BondedTypeFromGro("CT CT 3 9.2 12.5 -13.1 -3.0 26.2 -31.5", 0)
	if err != nil {
		Te.Fatal(err)
	}
	if len(bt.Names) != 2 || bt.FuncType != 3 || len(bt.Params) != 6 {
		Te.Errorf("2-name dihedral type misread: %+v", bt)
	}
	bt, err = BondedTypeFromGro("X CT CT X 9 0.0 0.6 3 ; comment", 0)
	if err != nil {
		Te.Fatal(err)
	}
	if len(bt.Names) != 4 || bt.FuncType != 9 || len(bt.Params) != 3 {
		Te.Errorf("4-name dihedral type misread: %+v", bt)
	}
	//the wildcards make it less specific than a full match
	if w := bt.wildcards([]string{"HC", "CT", "CT", "HC"}, 9); w != 2 {
		Te.Errorf("expected 2 wildcards, got %d", w)
	}
	if _, err := BondedTypeFromGro("CT HC", 2); err == nil {
		Te.Error("expected an error for a line without function type")
	}
}
