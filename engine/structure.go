package engine

import (
	"fmt"

	chem "github.com/rmera/commpare"
	"github.com/rmera/commpare/top"
	v3 "github.com/rmera/commpare/v3"
)

// Structure is a molecular system ready to be simulated: coordinates
// and atoms, in Mol, and the Gromacs force field that describes them, in FF.
// A Structure is treated as read-only by all the engines.
type Structure struct {
	Mol *chem.Molecule
	FF  *top.FF
}

// LoadStructure reads a structure from a Gromacs gro file and a top file.
// defines are the preprocessor symbols considered defined while reading
// the topology.
func LoadStructure(groname, topname string, defines ...string) (*Structure, error) {
	mol, err := chem.GroFileRead(groname)
	if err != nil {
		return nil, errDecorate(err, "LoadStructure")
	}
	ff, err := top.ReadTopFile(topname, defines...)
	if err != nil {
		return nil, errDecorate(err, "LoadStructure")
	}
	return NewStructure(mol, ff)
}

// NewStructure builds a Structure from a molecule and a force field. The number
// of atoms in both must match. The force field atom types, charges and masses are
// copied into the atoms of mol.
func NewStructure(mol *chem.Molecule, ff *top.FF) (*Structure, error) {
	if mol == nil || ff == nil || len(mol.Coords) == 0 {
		return nil, fmt.Errorf("NewStructure: nil molecule or force field")
	}
	flat, err := ff.Flatten()
	if err != nil {
		return nil, fmt.Errorf("NewStructure: %w", err)
	}
	if len(flat.Atoms) != mol.Len() {
		return nil, fmt.Errorf("NewStructure: the topology has %d atoms, the coordinates %d", len(flat.Atoms), mol.Len())
	}
	for i, a := range flat.Atoms {
		m := mol.Atom(i)
		m.Type = a.Type
		m.Charge = a.Charge
		if a.Mass > 0 {
			m.Mass = a.Mass
		}
		if m.Symbol == "" {
			m.Symbol = a.Symbol
		}
	}
	return &Structure{Mol: mol, FF: ff}, nil
}

// Coords returns the coordinates of the structure, in A.
func (S *Structure) Coords() *v3.Matrix {
	return S.Mol.Coords[0]
}

// Copy returns a copy of the structure, with its own atoms and coordinates.
// The force field is shared, as nothing modifies it.
func (S *Structure) Copy() *Structure {
	return &Structure{Mol: S.Mol.Copy(), FF: S.FF}
}

// Rounded returns a copy of the structure with the coordinates rounded to
// the given number of decimal places. S is not modified.
func (S *Structure) Rounded(decimals int) *Structure {
	r := S.Copy()
	r.Mol.Round(decimals)
	return r
}

// HasPeriodicDihedrals returns true if any of the dihedrals of the
// system is a periodic (proper) one.
func (S *Structure) HasPeriodicDihedrals() bool {
	for _, m := range S.FF.MolTypes {
		for _, d := range m.Dihedrals {
			if d.Periodic() {
				return true
			}
		}
	}
	return false
}

// NDihedrals returns the number of dihedral terms in the whole system.
func (S *Structure) NDihedrals() int {
	n := 0
	for _, mc := range S.FF.Molecules {
		if m := S.FF.MolType(mc.Name); m != nil {
			n += mc.N * len(m.Dihedrals)
		}
	}
	return n
}

// writeGro writes the coordinates of the structure to a gro file in the sandbox.
func (S *Structure) writeGro(sb *Sandbox, name string) error {
	return chem.GroFileWrite(sb.Path(name), S.Coords(), S.Mol, S.Mol.Box)
}

// writeTop writes the topology of the structure to a top file in the sandbox.
func (S *Structure) writeTop(sb *Sandbox, name string) error {
	return S.FF.WriteTopFile(sb.Path(name))
}

func (S *Structure) writeXYZ(sb *Sandbox, name string) error {
	return chem.XYZFileWrite(sb.Path(name), S.Coords(), S.Mol)
}

func (S *Structure) writePDB(sb *Sandbox, name string, box [3]float64) error {
	return chem.PDBFileWrite(sb.Path(name), S.Coords(), S.Mol, box)
}

// writeGromacsFiles writes structure.gro and structure.top, which are
// used by all the engines that read Gromacs files.
func (S *Structure) writeGromacsFiles(sb *Sandbox, engine Name) error {
	if err := S.writeGro(sb, "structure.gro"); err != nil {
		return Error{message: ErrCantInput, engine: engine, file: "structure.gro", err: err, deco: []string{"writeGromacsFiles"}}
	}
	if err := S.writeTop(sb, "structure.top"); err != nil {
		return Error{message: ErrCantInput, engine: engine, file: "structure.top", err: err, deco: []string{"writeGromacsFiles"}}
	}
	return nil
}
