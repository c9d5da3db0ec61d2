package top

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"

	chem "github.com/rmera/commpare"
)

func sigmaepsilonToc6c12(sigma, e float64) (c6 float64, c12 float64) {
	return 4 * e * math.Pow(sigma, 6), e * 4 * (math.Pow(sigma, 12))
}

func c6c12ToSigmaepsilon(c6, c12 float64) (sigma float64, epsilon float64) {
	if c6 == 0 || c12 == 0 {
		return 0, 0
	}
	return math.Pow(c12/c6, 1.0/6.0), math.Pow(c6, 2) / (4 * c12)
}

// Defaults contains the data in the [ defaults ] section of a topology.
type Defaults struct {
	NBFunc   int
	CombRule int
	GenPairs bool
	FudgeLJ  float64
	FudgeQQ  float64
}

// SigmaEpsilon returns true if the LJ parameters in the topology are
// given as sigma/epsilon instead of C6/C12.
func (D Defaults) SigmaEpsilon() bool {
	return D.CombRule == 2 || D.CombRule == 3
}

// FF contains a Gromacs force field topology. All quantities are
// kept in Gromacs units (nm, kJ/mol, degrees, e).
type FF struct {
	Defaults        Defaults
	ATypes          []*AtomType
	LJ              []*LJPair
	BondTypes       []*BondedType
	PairTypes       []*BondedType
	AngleTypes      []*BondedType
	DihedralTypes   []*BondedType
	ConstraintTypes []*BondedType
	MolTypes        []*MolType
	Molecules       []*MolCount
	System          string
	IncludeDirs     []string //where to look for #include files, besides the directory of the top file.
	dir             string
	defines         []string
	macros          map[string]string //#define NAME values
	currentMol      *MolType
	currentHeader   string
}

// NewFF returns an empty FF. The include path is taken from the
// GMXLIB environment variable, if set.
func NewFF() *FF {
	ret := new(FF)
	ret.Defaults = Defaults{NBFunc: 1, CombRule: 2, GenPairs: true, FudgeLJ: 1, FudgeQQ: 1}
	ret.macros = make(map[string]string)
	if gl := os.Getenv("GMXLIB"); gl != "" {
		ret.IncludeDirs = filepath.SplitList(gl)
	}
	return ret
}

// AtomType is an entry of the [ atomtypes ] section. V and W are the LJ
// parameters as read, sigma/epsilon if SigmaEpsilon is true, C6/C12 otherwise.
// BondType is the name used to look the atom up in the bonded types, it is
// the same as Name unless the topology gives another one.
type AtomType struct {
	Name         string
	BondType     string
	AtNum        int
	Mass         float64
	Charge       float64
	Ptype        string
	V            float64
	W            float64
	SigmaEpsilon bool
}

// C6C12 returns the LJ parameters of the atom type as C6 and C12.
func (A *AtomType) C6C12() (float64, float64) {
	if A.SigmaEpsilon {
		return sigmaepsilonToc6c12(A.V, A.W)
	}
	return A.V, A.W
}

// LJSigmaEpsilon returns the LJ parameters of the atom type as sigma (nm)
// and epsilon (kJ/mol)
func (A *AtomType) LJSigmaEpsilon() (float64, float64) {
	if A.SigmaEpsilon {
		return A.V, A.W
	}
	return c6c12ToSigmaepsilon(A.V, A.W)
}

// LJPair is an entry of the [ nonbond_params ] section.
type LJPair struct {
	Names        [2]string
	FuncType     int
	V            float64
	W            float64
	SigmaEpsilon bool
}

// BondedType is an entry of one of the [ bondtypes ], [ pairtypes ],
// [ angletypes ], [ dihedraltypes ] or [ constrainttypes ] sections.
// Names are bond-type names, "X" matches any atom. Dihedral types
// can have 2 names (the central atoms, or the outer ones for impropers)
// or 4.
type BondedType struct {
	Names    []string
	FuncType int
	Params   []float64
}

// wildcards returns the number of names of B that don't constrain the
// match, or -1 if B doesn't match the given bond types and function type.
func (B *BondedType) wildcards(types []string, functype int) int {
	if B.FuncType != functype {
		return -1
	}
	names := B.Names
	full := len(types)
	if full == 4 && len(names) == 2 {
		if functype == 2 || functype == 4 {
			types = []string{types[0], types[3]}
		} else {
			types = types[1:3]
		}
	}
	if len(names) != len(types) {
		return -1
	}
	try := func(rev bool) int {
		w := 0
		for i, n := range names {
			t := types[i]
			if rev {
				t = types[len(types)-1-i]
			}
			switch {
			case n == "X":
				w++
			case n != t:
				return -1
			}
		}
		return w
	}
	w := try(false)
	if r := try(true); w < 0 || (r >= 0 && r < w) {
		w = r
	}
	//2-name dihedral types are less specific than any 4-name one
	if w >= 0 && full == 4 && len(names) == 2 {
		w += 2
	}
	return w
}

// bondedTypes returns the bonded types for the given term section.
func (F *FF) bondedTypes(section string) []*BondedType {
	switch section {
	case "bonds":
		return F.BondTypes
	case "pairs":
		return F.PairTypes
	case "angles":
		return F.AngleTypes
	case "dihedrals":
		return F.DihedralTypes
	case "constraints":
		return F.ConstraintTypes
	}
	return nil
}

// BondedParams returns the parameters that the bonded types of F give to a term
// in section ("bonds", "pairs", "angles", "dihedrals" or "constraints"), with
// function type functype, between atoms with the given bond types. The most
// specific match is used. Most terms get one parameter set. Dihedrals of type 9
// get one set per line of the matching types, as Gromacs adds them all up.
// It returns nil if nothing matches.
func (F *FF) BondedParams(section string, types []string, functype int) [][]float64 {
	best := -1
	var ret [][]float64
	var bestNames []string
	for _, b := range F.bondedTypes(section) {
		w := b.wildcards(types, functype)
		if w < 0 {
			continue
		}
		switch {
		case best < 0 || w < best:
			best = w
			bestNames = b.Names
			ret = [][]float64{slices.Clone(b.Params)}
		case w == best && functype == 9 && slices.Equal(b.Names, bestNames):
			ret = append(ret, slices.Clone(b.Params))
		}
	}
	return ret
}

// bondTypeOf returns the bond-type name of the atom type name.
func (F *FF) bondTypeOf(atype string) string {
	if at := F.AtomType(atype); at != nil && at.BondType != "" {
		return at.BondType
	}
	return atype
}

// resolve returns copies of terms where the terms without parameters get
// them from the bonded types. Terms for which no type is found are kept
// without parameters.
func (F *FF) resolve(section string, terms []*Term, m *MolType) []*Term {
	ret := make([]*Term, 0, len(terms))
	byID := make(map[int]*chem.Atom, len(m.Atoms))
	for _, a := range m.Atoms {
		byID[a.ID] = a
	}
	for _, t := range terms {
		if t.HasParams() {
			ret = append(ret, t)
			continue
		}
		types := make([]string, 0, len(t.IDs))
		for _, id := range t.IDs {
			if a, ok := byID[id]; ok {
				types = append(types, F.bondTypeOf(a.Type))
			}
		}
		params := F.BondedParams(section, types, t.FuncType)
		if len(types) != len(t.IDs) || len(params) == 0 {
			ret = append(ret, t)
			continue
		}
		for _, p := range params {
			c := t.Copy()
			c.Params = p
			ret = append(ret, c)
		}
	}
	return ret
}

// Term is a bonded term (bond, pair, angle, dihedral, constraint or settle).
// IDs are 1-based within their molecule type, unless the Term was obtained
// from Flatten, in which case they are 0-based indexes of the whole system.
// Params contains all the parameters after the function type, in the order
// Gromacs expects them, it is empty if the parameters come from the
// force field's bonded types.
type Term struct {
	IDs      []int
	FuncType int
	Params   []float64
}

// Copy returns a deep copy of the term.
func (T *Term) Copy() *Term {
	r := &Term{FuncType: T.FuncType}
	r.IDs = slices.Clone(T.IDs)
	r.Params = slices.Clone(T.Params)
	return r
}

// HasParams returns whether the term carries its own parameters.
func (T *Term) HasParams() bool {
	return len(T.Params) > 0
}

// Eq returns the equilibrium value of the term, for the function types that have one.
func (T *Term) Eq() float64 {
	if len(T.Params) == 0 {
		return 0
	}
	return T.Params[0]
}

// K returns the force constant of the term, for the function types that have one.
func (T *Term) K() float64 {
	if len(T.Params) < 2 {
		return 0
	}
	return T.Params[1]
}

// Periodic returns true if the term is a periodic (proper) dihedral.
func (T *Term) Periodic() bool {
	return len(T.IDs) == 4 && (T.FuncType == 1 || T.FuncType == 4 || T.FuncType == 9)
}

// RB returns true if the term is a Ryckaert-Bellemans dihedral.
func (T *Term) RB() bool {
	return len(T.IDs) == 4 && T.FuncType == 3
}

// Improper returns true if the term is a harmonic improper dihedral.
func (T *Term) Improper() bool {
	return len(T.IDs) == 4 && T.FuncType == 2
}

// MolType is a Gromacs [ moleculetype ] and everything that belongs to it.
// The Atoms have their Type, Charge and Mass set from the topology.
type MolType struct {
	Name        string
	NrExcl      int
	Atoms       []*chem.Atom
	Bonds       []*Term
	Pairs       []*Term
	Angles      []*Term
	Dihedrals   []*Term
	Constraints []*Term
	Settles     []*Term
	Exclusions  [][]int
}

// Charge returns the total charge of the molecule type.
func (M *MolType) Charge() float64 {
	var q float64
	for _, v := range M.Atoms {
		q += v.Charge
	}
	return q
}

// MolCount is an entry of the [ molecules ] section.
type MolCount struct {
	Name string
	N    int
}

// MolType returns the molecule type with the given name, or nil.
func (F *FF) MolType(name string) *MolType {
	for _, v := range F.MolTypes {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// AtomType returns the atom type with the given name, or nil.
func (F *FF) AtomType(name string) *AtomType {
	for _, v := range F.ATypes {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// NAtoms returns the total number of atoms in the system described by the topology.
func (F *FF) NAtoms() int {
	n := 0
	for _, v := range F.Molecules {
		m := F.MolType(v.Name)
		if m == nil {
			continue
		}
		n += v.N * len(m.Atoms)
	}
	return n
}

// Flat is the whole system of a topology, with all the molecules in [ molecules ]
// expanded. All the indexes in the terms are 0-based and refer to the whole system.
type Flat struct {
	Atoms       []*chem.Atom
	Bonds       []*Term
	Pairs       []*Term
	Angles      []*Term
	Dihedrals   []*Term
	Constraints []*Term
	Exclusions  [][]int
}

// Flatten expands the [ molecules ] section of the topology into a Flat.
// Atoms are copied and renumbered, residue numbers (MolID) are kept as
// they are in the molecule type. Terms without parameters get them from
// the bonded types, when these have a match.
func (F *FF) Flatten() (*Flat, error) {
	r := new(Flat)
	offset := 0
	shift := func(terms []*Term, dest []*Term) []*Term {
		for _, t := range terms {
			c := t.Copy()
			for i := range c.IDs {
				c.IDs[i] += offset - 1
			}
			dest = append(dest, c)
		}
		return dest
	}
	for _, mc := range F.Molecules {
		m := F.MolType(mc.Name)
		if m == nil {
			return nil, fmt.Errorf("Molecule type %s in [ molecules ] is not defined in the topology", mc.Name)
		}
		bonds := F.resolve("bonds", m.Bonds, m)
		pairs := F.resolve("pairs", m.Pairs, m)
		angles := F.resolve("angles", m.Angles, m)
		dihedrals := F.resolve("dihedrals", m.Dihedrals, m)
		constraints := F.resolve("constraints", m.Constraints, m)
		for j := 0; j < mc.N; j++ {
			for _, a := range m.Atoms {
				c := a.Copy()
				c.ID = offset + a.ID
				r.Atoms = append(r.Atoms, c)
			}
			r.Bonds = shift(bonds, r.Bonds)
			r.Pairs = shift(pairs, r.Pairs)
			r.Angles = shift(angles, r.Angles)
			r.Dihedrals = shift(dihedrals, r.Dihedrals)
			r.Constraints = shift(constraints, r.Constraints)
			for _, e := range m.Exclusions {
				ne := make([]int, len(e))
				for k, v := range e {
					ne[k] = v + offset - 1
				}
				r.Exclusions = append(r.Exclusions, ne)
			}
			offset += len(m.Atoms)
		}
	}
	return r, nil
}
