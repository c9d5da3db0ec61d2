package top

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	chem "github.com/rmera/commpare"
)

// cond keeps track of the conditional parts of gromacs topologies,
// depending on the defined flags.
type cond struct {
	stack []bool
}

func (c *cond) reading() bool {
	for _, v := range c.stack {
		if !v {
			return false
		}
	}
	return true
}

// directive processes a preprocessor conditional. It returns false if
// the line is not one.
func (c *cond) directive(line string, defines []string) bool {
	f := fi(line)
	switch f[0] {
	case "#ifdef":
		c.stack = append(c.stack, len(f) > 1 && slices.Contains(defines, f[1]))
	case "#ifndef":
		c.stack = append(c.stack, !(len(f) > 1 && slices.Contains(defines, f[1])))
	case "#else":
		if len(c.stack) > 0 {
			c.stack[len(c.stack)-1] = !c.stack[len(c.stack)-1]
		}
	case "#endif":
		if len(c.stack) > 0 {
			c.stack = c.stack[:len(c.stack)-1]
		}
	default:
		return false
	}
	return true
}

//The high-level functions

// ReadTopFile reads a Gromacs top file, following #include statements, which are
// searched for in the directory of the top file and in the IncludeDirs of the FF.
func ReadTopFile(name string, defines ...string) (*FF, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	F := NewFF()
	F.dir = filepath.Dir(name)
	if err = F.Fill(bufio.NewReader(f), true, defines...); err != nil {
		return nil, fmt.Errorf("Couldn't read topology %s: %w", name, err)
	}
	return F, nil
}

// Fill will fill the receiver with data from the given StringReader which must be
// in Gromacs itp/top format. If followIncludes is true, #include statements will
// trigger opening and reading the included file(s). defines are the flags
// considered defined for #ifdef/#ifndef blocks. #define statements in the file
// are also honored, and the values of #define macros are substituted when
// they appear in bonded terms and bonded types.
// Headers not supported are skipped.
func (F *FF) Fill(r StringReader, followIncludes bool, defines ...string) error {
	F.defines = append(F.defines, defines...)
	if F.macros == nil {
		F.macros = make(map[string]string)
	}
	read := new(cond)
	h := newTopHeader()
	for {
		s, err := r.ReadString('\n')
		if s != "" {
			if e := F.fillLine(s, read, h, followIncludes); e != nil {
				return e
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (F *FF) fillLine(s string, read *cond, h *topHeader, follow bool) error {
	var err error
	s = cleanString(s)
	if s == "" {
		return nil
	}
	if read.directive(s, F.defines) || !read.reading() {
		return nil
	}
	if strings.HasPrefix(s, "#") {
		f := fi(s)
		switch {
		case f[0] == "#define" && len(f) > 1:
			F.defines = append(F.defines, f[1])
			if len(f) > 2 {
				F.macros[f[1]] = strings.Join(f[2:], " ")
			}
		case f[0] == "#undef" && len(f) > 1:
			F.defines = slices.DeleteFunc(F.defines, func(d string) bool { return d == f[1] })
			delete(F.macros, f[1])
		case f[0] == "#include" && follow:
			return F.include(strings.Trim(f[len(f)-1], "\"'<>"))
		}
		return nil
	}
	if h.Is(s) {
		F.currentHeader = h.Which(s)
		return nil
	}
	switch F.currentHeader {
	case "defaults":
		err = F.defaultsFromGro(s)
	case "atomtypes":
		var att *AtomType
		att, err = AtomTypeFromGro(s, F.Defaults.SigmaEpsilon())
		F.ATypes = append(F.ATypes, att)
	case "nonbond_params":
		var lj *LJPair
		lj, err = LJPairFromGro(s, F.Defaults.SigmaEpsilon())
		F.LJ = append(F.LJ, lj)
	case "bondtypes", "pairtypes", "angletypes", "dihedraltypes", "constrainttypes":
		var bt *BondedType
		bt, err = BondedTypeFromGro(F.expand(s), typeNames[F.currentHeader])
		F.addBondedType(F.currentHeader, bt)
	case "moleculetype":
		err = F.molTypeFromGro(s)
	case "system":
		F.System = strings.TrimSpace(F.System + " " + s)
	case "molecules":
		err = F.molCountFromGro(s)
	case "":
		return nil
	default:
		err = F.molTermFromGro(s)
	}
	if err != nil {
		return fmt.Errorf("Couldn't read header %s. Line: %s. Error: %w", F.currentHeader, s, err)
	}
	return nil
}

// include reads the given included file into F. Relative names are looked for
// in the directory of the including file first, and then in F.IncludeDirs.
func (F *FF) include(name string) error {
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = []string{filepath.Join(F.dir, name)}
		for _, v := range F.IncludeDirs {
			candidates = append(candidates, filepath.Join(v, name))
		}
	}
	for _, c := range candidates {
		file, err := os.Open(c)
		if err != nil {
			continue
		}
		defer file.Close()
		prevdir := F.dir
		F.dir = filepath.Dir(c)
		err = F.Fill(bufio.NewReader(file), true)
		F.dir = prevdir
		if err != nil {
			return fmt.Errorf("Failed to include file: %s. Error: %w", c, err)
		}
		return nil
	}
	return fmt.Errorf("Couldn't find included file %s", name)
}

func (F *FF) defaultsFromGro(s string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	f := fi(s)
	d := Defaults{GenPairs: false, FudgeLJ: 1, FudgeQQ: 1}
	d.NBFunc, err = strconv.Atoi(f[0])
	qerr(err)
	d.CombRule, err = strconv.Atoi(f[1])
	qerr(err)
	if len(f) > 2 {
		d.GenPairs = strings.ToLower(f[2]) == "yes"
	}
	if len(f) > 4 {
		d.FudgeLJ, err = strconv.ParseFloat(f[3], 64)
		qerr(err)
		d.FudgeQQ, err = strconv.ParseFloat(f[4], 64)
		qerr(err)
	}
	F.Defaults = d
	return nil
}

func (F *FF) molTypeFromGro(s string) error {
	f := fi(s)
	m := &MolType{Name: f[0], NrExcl: 3}
	if len(f) > 1 {
		n, err := strconv.Atoi(f[1])
		if err != nil {
			return err
		}
		m.NrExcl = n
	}
	F.MolTypes = append(F.MolTypes, m)
	F.currentMol = m
	return nil
}

func (F *FF) molCountFromGro(s string) error {
	f := fi(s)
	if len(f) < 2 {
		return fmt.Errorf("Expected a molecule name and a number")
	}
	n, err := strconv.Atoi(f[1])
	if err != nil {
		return err
	}
	F.Molecules = append(F.Molecules, &MolCount{Name: f[0], N: n})
	return nil
}

// the number of atoms in the terms for each supported header
var termAtoms = map[string]int{
	"bonds":       2,
	"pairs":       2,
	"angles":      3,
	"dihedrals":   4,
	"constraints": 2,
	"settles":     1,
}

func (F *FF) molTermFromGro(s string) error {
	m := F.currentMol
	if m == nil {
		return fmt.Errorf("Section found outside of a [ moleculetype ]")
	}
	if F.currentHeader == "atoms" {
		at, err := F.AtomFromGro(s)
		if err != nil {
			return err
		}
		m.Atoms = append(m.Atoms, at)
		return nil
	}
	if F.currentHeader == "exclusions" {
		ex, err := parseints(fi(s)...)
		if err != nil {
			return err
		}
		m.Exclusions = append(m.Exclusions, ex)
		return nil
	}
	T, err := TermFromGro(F.expand(s), termAtoms[F.currentHeader])
	if err != nil {
		return err
	}
	switch F.currentHeader {
	case "bonds":
		m.Bonds = append(m.Bonds, T)
	case "pairs":
		m.Pairs = append(m.Pairs, T)
	case "angles":
		m.Angles = append(m.Angles, T)
	case "dihedrals":
		m.Dihedrals = append(m.Dihedrals, T)
	case "constraints":
		m.Constraints = append(m.Constraints, T)
	case "settles":
		m.Settles = append(m.Settles, T)
	}
	return nil
}

// expand replaces the fields of s that are the names of #define macros
// with the macro values.
func (F *FF) expand(s string) string {
	if len(F.macros) == 0 {
		return s
	}
	f := fi(s)
	changed := false
	for i, v := range f {
		if m, ok := F.macros[v]; ok {
			f[i] = m
			changed = true
		}
	}
	if !changed {
		return s
	}
	return strings.Join(f, " ")
}

// the number of names in each bonded-type section. 0 means 2 or 4,
// for dihedral types.
var typeNames = map[string]int{
	"bondtypes":       2,
	"pairtypes":       2,
	"angletypes":      3,
	"dihedraltypes":   0,
	"constrainttypes": 2,
}

func (F *FF) addBondedType(header string, bt *BondedType) {
	if bt == nil {
		return
	}
	switch header {
	case "bondtypes":
		F.BondTypes = append(F.BondTypes, bt)
	case "pairtypes":
		F.PairTypes = append(F.PairTypes, bt)
	case "angletypes":
		F.AngleTypes = append(F.AngleTypes, bt)
	case "dihedraltypes":
		F.DihedralTypes = append(F.DihedralTypes, bt)
	case "constrainttypes":
		F.ConstraintTypes = append(F.ConstraintTypes, bt)
	}
}

// BondedTypeFromGro reads a line of a bonded-type section with names bond-type
// names before the function type. If names is 0, the line is a dihedral type,
// which has 2 names if the third field is the function type, and 4 otherwise.
func BondedTypeFromGro(s string, names int) (ret *BondedType, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Couldn't read bonded type from string. Error: %s String:%s", r, s)
		}
	}()
	f := fi(cleanString(s))
	if names == 0 {
		names = 4
		if len(f) > 2 {
			if _, e := strconv.Atoi(f[2]); e == nil {
				names = 2
			}
		}
	}
	if len(f) < names+1 {
		return nil, fmt.Errorf("Expected at least %d fields", names+1)
	}
	ret = &BondedType{Names: slices.Clone(f[:names])}
	ret.FuncType, err = strconv.Atoi(f[names])
	qerr(err)
	ret.Params, err = parsefloats(f[names+1:]...)
	qerr(err)
	return ret, nil
}

func (B *BondedType) ToGro() (string, error) {
	ret := make([]string, 0, 12)
	for _, v := range B.Names {
		ret = append(ret, sf("%-6s", v))
	}
	ret = append(ret, sf("%2d", B.FuncType))
	for _, v := range B.Params {
		ret = append(ret, ffl(v))
	}
	return strings.Join(ret, " ") + "\n", nil
}

// AtomFromGro returns an atom with the data in the gromacs-topology atom-section string.
// If charge or mass are not in the string, they are taken from the atom type, which must
// have been read already.
func (F *FF) AtomFromGro(s string) (at *chem.Atom, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	l := fi(cleanString(s))
	at = new(chem.Atom)
	at.ID, err = strconv.Atoi(l[0])
	qerr(err)
	at.Type = l[1]
	at.MolID, err = strconv.Atoi(l[2])
	qerr(err)
	at.MolName = l[3]
	at.Name = l[4]
	att := F.AtomType(at.Type)
	if att != nil {
		at.Charge = att.Charge
		at.Mass = att.Mass
	}
	if len(l) > 6 {
		at.Charge, err = strconv.ParseFloat(l[6], 64)
		qerr(err)
	}
	if len(l) > 7 {
		at.Mass, err = strconv.ParseFloat(l[7], 64)
		qerr(err)
	}
	return at, nil
}

// Writes an atom to a Gromacs topology line. The charge group is the atom number.
// A zero mass is not written, so the mass of the atom type is used.
func atom2Gro(A *chem.Atom) string {
	mass := ""
	if A.Mass > 0 {
		mass = ffl(A.Mass)
	}
	return sf("%6d %10s %6d %6s %6s %6d %12s %12s\n", A.ID, A.Type, A.MolID, A.MolName, A.Name, A.ID, ffl(A.Charge), mass)
}

// TermFromGro returns a term containing the information in the GromacsTop-formatted
// string s, which has ats atom indexes before the function type.
func TermFromGro(s string, ats int) (T *Term, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	T = new(Term)
	l := fi(cleanString(s))
	if ats <= 0 || len(l) < ats+1 {
		return nil, fmt.Errorf("Expected at least %d fields", ats+1)
	}
	T.IDs, err = parseints(l[:ats]...)
	qerr(err)
	T.FuncType, err = strconv.Atoi(l[ats])
	qerr(err)
	T.Params, err = parsefloats(l[ats+1:]...)
	qerr(err)
	if T.RB() && len(T.Params) > 0 && len(T.Params) != 6 {
		return nil, fmt.Errorf("R-B term detected but read %d parameters instead of the 6 expected", len(T.Params))
	}
	return T, nil
}

func ffl(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ToGro writes the term to a string in Gromacs top format.
func (T *Term) ToGro() (string, error) {
	ret := make([]string, 0, 15)
	for _, v := range T.IDs {
		ret = append(ret, sf("%5d", v))
	}
	ret = append(ret, sf("%2d", T.FuncType))
	for _, v := range T.Params {
		ret = append(ret, ffl(v))
	}
	return strings.Join(ret, " ") + "\n", nil
}

type exclusion []int

func (e exclusion) ToGro() (string, error) {
	ret := make([]string, 0, len(e))
	for _, v := range e {
		ret = append(ret, sf("%4d", v))
	}
	return strings.Join(ret, " ") + "\n", nil
}

// AtomTypeFromGro reads a string with the appropriate gromacs topology format
// to return a pointer to AtomType. The optional bond-type and atomic
// number columns are recognized by counting from the particle type column.
// Without a bond-type column, the bond type is the name of the atom type.
func AtomTypeFromGro(s string, sigmaep bool) (ret *AtomType, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Couldn't read atom type from string. Error: %s String:%s", r, s)
		}
	}()
	f := fi(cleanString(s))
	if len(f) < 6 {
		return nil, fmt.Errorf("Expected at least 6 fields in atomtype line")
	}
	n := len(f)
	ret = new(AtomType)
	ret.Name = f[0]
	ret.BondType = f[0]
	ret.Ptype = f[n-3]
	ret.Mass, err = strconv.ParseFloat(f[n-5], 64)
	qerr(err)
	ret.Charge, err = strconv.ParseFloat(f[n-4], 64)
	qerr(err)
	if n > 6 {
		//the atomic number may be missing, or replaced by a bond-type name
		if atnum, e := strconv.Atoi(f[n-6]); e == nil {
			ret.AtNum = atnum
		} else {
			ret.BondType = f[n-6]
		}
	}
	if n > 7 {
		ret.BondType = f[n-7]
	}
	ret.V, err = strconv.ParseFloat(f[n-2], 64)
	qerr(err)
	ret.W, err = strconv.ParseFloat(f[n-1], 64)
	qerr(err)
	ret.SigmaEpsilon = sigmaep
	return ret, nil
}

func (A *AtomType) ToGro() (string, error) {
	bt := A.BondType
	if bt == "" {
		bt = A.Name
	}
	return sf("%-10s %-6s %3d %12s %12s %2s %16s %16s\n", A.Name, bt, A.AtNum, ffl(A.Mass), ffl(A.Charge), A.Ptype, ffl(A.V), ffl(A.W)), nil
}

// LJPairFromGro reads a [ nonbond_params ] line.
func LJPairFromGro(s string, sigmaep bool) (ret *LJPair, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Couldn't read LJ pair from string. Error: %s String:%s", r, s)
		}
	}()
	f := fi(cleanString(s))
	ret = new(LJPair)
	ret.Names[0] = f[0]
	ret.Names[1] = f[1]
	ret.FuncType, err = strconv.Atoi(f[2])
	qerr(err)
	ret.V, err = strconv.ParseFloat(f[3], 64)
	qerr(err)
	ret.W, err = strconv.ParseFloat(f[4], 64)
	qerr(err)
	ret.SigmaEpsilon = sigmaep
	return ret, nil
}

func (L *LJPair) ToGro() (string, error) {
	return sf("%-10s %-10s %1d %16s %16s\n", L.Names[0], L.Names[1], L.FuncType, ffl(L.V), ffl(L.W)), nil
}

type groer interface {
	ToGro() (string, error)
}

func printGro[G ~[]E, E groer](r io.StringWriter, g G) error {
	for _, v := range g {
		m, e := v.ToGro()
		if e != nil {
			return e
		}
		_, e = r.WriteString(m)
		if e != nil {
			return e
		}
	}
	return nil
}

// WriteTop writes the whole topology, in Gromacs top format, to w.
// The result is self-contained, there are no #include statements. The
// bonded types are written, and macros were expanded when reading, so
// terms without parameters keep working.
func (F *FF) WriteTop(w io.StringWriter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	ws := func(s string) {
		_, err := w.WriteString(s)
		qerr(err)
	}
	section := func(header string, g []*Term) {
		if len(g) == 0 {
			return
		}
		ws("\n[ " + header + " ]\n")
		qerr(printGro(w, g))
	}
	d := F.Defaults
	genpairs := "no"
	if d.GenPairs {
		genpairs = "yes"
	}
	ws("[ defaults ]\n; nbfunc comb-rule gen-pairs fudgeLJ fudgeQQ\n")
	ws(sf("%d %d %s %s %s\n", d.NBFunc, d.CombRule, genpairs, ffl(d.FudgeLJ), ffl(d.FudgeQQ)))
	if len(F.ATypes) > 0 {
		ws("\n[ atomtypes ]\n")
		qerr(printGro(w, F.ATypes))
	}
	if len(F.LJ) > 0 {
		ws("\n[ nonbond_params ]\n")
		qerr(printGro(w, F.LJ))
	}
	types := func(header string, g []*BondedType) {
		if len(g) == 0 {
			return
		}
		ws("\n[ " + header + " ]\n")
		qerr(printGro(w, g))
	}
	types("bondtypes", F.BondTypes)
	types("constrainttypes", F.ConstraintTypes)
	types("pairtypes", F.PairTypes)
	types("angletypes", F.AngleTypes)
	types("dihedraltypes", F.DihedralTypes)
	for _, m := range F.MolTypes {
		ws(sf("\n[ moleculetype ]\n%s %d\n", m.Name, m.NrExcl))
		ws("\n[ atoms ]\n")
		for _, a := range m.Atoms {
			ws(atom2Gro(a))
		}
		section("bonds", m.Bonds)
		section("pairs", m.Pairs)
		section("angles", m.Angles)
		section("dihedrals", m.Dihedrals)
		section("constraints", m.Constraints)
		section("settles", m.Settles)
		if len(m.Exclusions) > 0 {
			ws("\n[ exclusions ]\n")
			for _, e := range m.Exclusions {
				l, _ := exclusion(e).ToGro()
				ws(l)
			}
		}
	}
	system := F.System
	if system == "" {
		system = "commpare"
	}
	ws(sf("\n[ system ]\n%s\n\n[ molecules ]\n", system))
	for _, v := range F.Molecules {
		ws(sf("%-16s %d\n", v.Name, v.N))
	}
	return nil
}

// WriteTopFile writes the topology to a file with the given name.
func (F *FF) WriteTopFile(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := F.WriteTop(w); err != nil {
		return err
	}
	return w.Flush()
}
