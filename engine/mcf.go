package engine

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"

	chem "github.com/rmera/commpare"
	"github.com/rmera/commpare/top"
)

// Dihedral styles for Cassandra MCF files.
const (
	MCFCharmm = "CHARMM"
	MCFOPLS   = "OPLS"
	MCFNone   = "none"
)

// MCFDihedralStyle chooses the dihedral style for the Cassandra MCF of the
// structure. It is a heuristic: without dihedrals the OPLS style is used,
// with dihedrals the CHARMM style is preferred. CHARMM can't express
// Ryckaert-Bellemans dihedrals, so OPLS is used if all the dihedrals in the
// structure are of that kind.
func MCFDihedralStyle(st *Structure) string {
	if st.NDihedrals() == 0 || !st.HasPeriodicDihedrals() {
		return MCFOPLS
	}
	return MCFCharmm
}

// WriteMCFFile writes the structure as a Cassandra molecular connectivity
// file with the given name.
func WriteMCFFile(name string, st *Structure, dihedralStyle string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteMCF(f, st, dihedralStyle)
}

// WriteMCF writes the whole structure as one Cassandra species in the MCF
// format. Cassandra units are used: A, degrees, K for the LJ epsilon and
// the angle constants, kJ/mol for dihedrals.
func WriteMCF(out io.Writer, st *Structure, dihedralStyle string) error {
	flat, err := st.FF.Flatten()
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	mcfHeader(w)
	if err := mcfAtoms(w, st, flat); err != nil {
		return err
	}
	bonds := append(slices.Clone(flat.Bonds), flat.Constraints...)
	if err := mcfBonds(w, bonds); err != nil {
		return err
	}
	if err := mcfAngles(w, flat.Angles); err != nil {
		return err
	}
	var dihedrals, impropers []*top.Term
	for _, d := range flat.Dihedrals {
		if d.Improper() {
			impropers = append(impropers, d)
		} else {
			dihedrals = append(dihedrals, d)
		}
	}
	if err := mcfDihedrals(w, dihedrals, dihedralStyle); err != nil {
		return err
	}
	if err := mcfImpropers(w, impropers); err != nil {
		return err
	}
	d := st.FF.Defaults
	fmt.Fprint(w, "!Intra Scaling\n!vdw_scaling    1-2 1-3 1-4 1-N\n!charge_scaling 1-2 1-3 1-4 1-N\n\n")
	fmt.Fprintf(w, "# Intra_Scaling\n0. 0. %s 1.\n0. 0. %s 1.\n\n", mcfFloat(d.FudgeLJ), mcfFloat(d.FudgeQQ))
	mcfFragments(w, len(flat.Atoms), bonds)
	fmt.Fprint(w, "\nEND\n")
	return w.Flush()
}

func mcfFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f == math.Trunc(f) {
		s += "."
	}
	return s
}

func mcfHeader(w io.Writer) {
	fmt.Fprint(w, "!***************************************************************************************************\n")
	fmt.Fprint(w, "!Molecular connectivity file\n")
	fmt.Fprint(w, "!***************************************************************************************************\n")
	fmt.Fprint(w, "!structure.mcf - created by commpare\n\n")
}

func mcfAtoms(w io.Writer, st *Structure, flat *top.Flat) error {
	fmt.Fprint(w, "!Atom Format\n!index type element mass charge type parameters\n!type=\"LJ\", parms=epsilon sigma\n\n")
	fmt.Fprintf(w, "# Atom_Info\n%d\n", len(flat.Atoms))
	for i, a := range flat.Atoms {
		at := st.FF.AtomType(a.Type)
		if at == nil {
			return fmt.Errorf("atom %d has undefined type %s", i+1, a.Type)
		}
		sigma, eps := at.LJSigmaEpsilon()
		element := st.Mol.Atom(i).Symbol
		if element == "" {
			element = a.Name
		}
		fmt.Fprintf(w, "%-4d %-6s %-2s %10.4f %12.8f  LJ %12.5f %10.5f\n", i+1, a.Type, element, st.Mol.Atom(i).Mass, a.Charge, eps/chem.KB, sigma*chem.Nm2A)
	}
	fmt.Fprint(w, "\n")
	return nil
}

func mcfBonds(w io.Writer, bonds []*top.Term) error {
	fmt.Fprint(w, "!Bond Format\n!index i j type parameters\n!type=\"fixed\", parms=bondLength\n\n")
	fmt.Fprintf(w, "# Bond_Info\n%d\n", len(bonds))
	for i, b := range bonds {
		if !b.HasParams() {
			return fmt.Errorf("bond %d-%d has no parameters", b.IDs[0]+1, b.IDs[1]+1)
		}
		fmt.Fprintf(w, "%-4d %-4d %-4d fixed %10.5f\n", i+1, b.IDs[0]+1, b.IDs[1]+1, b.Eq()*chem.Nm2A)
	}
	fmt.Fprint(w, "\n")
	return nil
}

func mcfAngles(w io.Writer, angles []*top.Term) error {
	fmt.Fprint(w, "!Angle Format\n!index i j k type parameters\n!type=\"fixed\", parms=equilibrium_angle\n!type=\"harmonic\", parms=force_constant equilibrium_angle\n\n")
	fmt.Fprintf(w, "# Angle_Info\n%d\n", len(angles))
	for i, a := range angles {
		if len(a.Params) < 2 || (a.FuncType != 1 && a.FuncType != 5) {
			return fmt.Errorf("angle %v: only harmonic angles with parameters are supported", a.IDs)
		}
		fmt.Fprintf(w, "%-4d %-4d %-4d %-4d harmonic %12.3f %10.4f\n", i+1, a.IDs[0]+1, a.IDs[1]+1, a.IDs[2]+1, a.K()/2/chem.KB, a.Eq())
	}
	fmt.Fprint(w, "\n")
	return nil
}

// RBToOPLS converts the Ryckaert-Bellemans coefficients of a Gromacs dihedral
// into the parameters of the Cassandra OPLS form,
// a0 + a1(1+cos phi) + a2(1-cos 2phi) + a3(1+cos 3phi). Only RB dihedrals with
// zero C4 and C5 can be converted exactly.
func RBToOPLS(c []float64) ([4]float64, error) {
	var a [4]float64
	if len(c) != 6 {
		return a, fmt.Errorf("expected 6 RB coefficients, got %d", len(c))
	}
	if c[4] != 0 || c[5] != 0 {
		return a, fmt.Errorf("RB dihedral with non-zero C4 or C5 can't be written as OPLS")
	}
	f1 := -2*c[1] - 1.5*c[3]
	f2 := -c[2] - c[4]
	f3 := -c[3] / 2
	a[0] = c[0] + c[1] + c[2] + c[3] + c[4]
	a[1] = f1 / 2
	a[2] = f2 / 2
	a[3] = f3 / 2
	return a, nil
}

func mcfDihedrals(w io.Writer, dihedrals []*top.Term, style string) error {
	fmt.Fprint(w, "!Dihedral Format\n!index i j k l type parameters\n!type=\"none\"\n!type=\"CHARMM\", parms=a0 a1 delta\n!type=\"OPLS\", parms=c0 c1 c2 c3\n\n")
	fmt.Fprintf(w, "# Dihedral_Info\n%d\n", len(dihedrals))
	for i, d := range dihedrals {
		fmt.Fprintf(w, "%-4d %-4d %-4d %-4d %-4d ", i+1, d.IDs[0]+1, d.IDs[1]+1, d.IDs[2]+1, d.IDs[3]+1)
		switch {
		case style == MCFNone:
			fmt.Fprint(w, "none\n")
		case style == MCFCharmm && d.Periodic() && len(d.Params) >= 3:
			//Gromacs: phi_s, k, n
			fmt.Fprintf(w, "CHARMM %12.5f %4d %10.4f\n", d.Params[1], int(d.Params[2]), d.Params[0])
		case style == MCFOPLS && d.RB():
			a, err := RBToOPLS(d.Params)
			if err != nil {
				return fmt.Errorf("dihedral %v: %w", d.IDs, err)
			}
			fmt.Fprintf(w, "OPLS %12.5f %12.5f %12.5f %12.5f\n", a[0], a[1], a[2], a[3])
		default:
			return fmt.Errorf("dihedral %v with function type %d can't be written with the %s style", d.IDs, d.FuncType, style)
		}
	}
	fmt.Fprint(w, "\n")
	return nil
}

func mcfImpropers(w io.Writer, impropers []*top.Term) error {
	fmt.Fprint(w, "!Improper Format\n!index i j k l type parameters\n!type=\"harmonic\", parms=force_constant equilibrium_improper\n\n")
	fmt.Fprintf(w, "# Improper_Info\n%d\n", len(impropers))
	for i, d := range impropers {
		if len(d.Params) < 2 {
			return fmt.Errorf("improper %v has no parameters", d.IDs)
		}
		fmt.Fprintf(w, "%-4d %-4d %-4d %-4d %-4d harmonic %12.5f %10.4f\n", i+1, d.IDs[0]+1, d.IDs[1]+1, d.IDs[2]+1, d.IDs[3]+1, d.K()/2, d.Eq())
	}
	fmt.Fprint(w, "\n")
	return nil
}

// mcfFragments writes the fragment information. Each atom with more
// than one neighbor is the branch point of a fragment made of it and its
// neighbors. Fragments that share two atoms are connected.
func mcfFragments(w io.Writer, natoms int, bonds []*top.Term) {
	neigh := make([][]int, natoms)
	for _, b := range bonds {
		i, j := b.IDs[0], b.IDs[1]
		neigh[i] = append(neigh[i], j)
		neigh[j] = append(neigh[j], i)
	}
	var frags [][]int
	for i, n := range neigh {
		if len(n) > 1 {
			f := append([]int{i}, n...)
			frags = append(frags, f)
		}
	}
	if len(frags) == 0 {
		f := make([]int, natoms)
		for i := range f {
			f[i] = i
		}
		frags = append(frags, f)
	}
	fmt.Fprint(w, "!Fragment Format\n!index number_of_atoms_in_fragment branch_point other_atoms\n\n")
	fmt.Fprintf(w, "# Fragment_Info\n%d\n", len(frags))
	for i, f := range frags {
		fmt.Fprintf(w, "%d %d", i+1, len(f))
		for _, a := range f {
			fmt.Fprintf(w, " %d", a+1)
		}
		fmt.Fprint(w, "\n")
	}
	var conn [][2]int
	for i := range frags {
		for j := i + 1; j < len(frags); j++ {
			if shared(frags[i], frags[j]) == 2 {
				conn = append(conn, [2]int{i + 1, j + 1})
			}
		}
	}
	fmt.Fprint(w, "\n!Fragment Connection Format\n!index fragment1 fragment2\n\n")
	fmt.Fprintf(w, "# Fragment_Connectivity\n%d\n", len(conn))
	for i, c := range conn {
		fmt.Fprintf(w, "%d %d %d\n", i+1, c[0], c[1])
	}
}

func shared(a, b []int) int {
	n := 0
	for _, v := range a {
		if slices.Contains(b, v) {
			n++
		}
	}
	return n
}
