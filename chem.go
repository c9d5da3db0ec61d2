/*
 * chem.go, part of commpare.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chem

import (
	"fmt"

	v3 "github.com/rmera/commpare/v3"
)

/**Note: Some functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is most likely wrong and should
 * crash. Most panics are related to using the function on a nil object or trying to access out-of bounds
 * fields**/

// Atom contains the atoms read except for the coordinates, which will be in a matrix.
type Atom struct {
	Name    string
	ID      int
	MolName string
	MolID   int
	Chain   byte
	Type    string //force-field atom type, if known
	Symbol  string
	Mass    float64
	Charge  float64
}

//Atom methods

// Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	N := *A
	return &N
}

/*****Topology type***/

// Topology contains information about a molecule which is not expected to change in time (i.e. everything except for coordinates)
type Topology struct {
	Atoms []*Atom
}

// NewTopology returns a topology with the given atoms.
// It returns error if the atom slice is nil.
func NewTopology(ats []*Atom) (*Topology, error) {
	if ats == nil {
		return nil, fmt.Errorf("Supplied a nil atom slice")
	}
	return &Topology{Atoms: ats}, nil
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. Panics if
// out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// CopyAtoms returns a deep copy of the topology.
func (T *Topology) CopyAtoms() *Topology {
	Top := new(Topology)
	Top.Atoms = make([]*Atom, T.Len())
	for key, val := range T.Atoms {
		Top.Atoms[key] = val.Copy()
	}
	return Top
}

/**Type Molecule**/

// Molecule contains all the info for a molecule in many states. The
// info that is expected to change between states, coordinates, is
// in slices of *v3.Matrix (one per frame). The box, if present, is the
// length, in A, of the sides of an orthorhombic box.
type Molecule struct {
	*Topology
	Coords []*v3.Matrix
	Box    [3]float64
}

// NewMolecule makes a molecule with ats atoms, coords coordinates and
// returns it. It checks that the number of atoms and coordinates match.
func NewMolecule(ats *Topology, coords []*v3.Matrix) (*Molecule, error) {
	if ats == nil || len(coords) == 0 {
		return nil, CError{"Supplied a nil topology or no coordinates", []string{"NewMolecule"}}
	}
	mol := &Molecule{Topology: ats, Coords: coords}
	if err := mol.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	return mol, nil
}

// Corrupted checks whether the molecule is corrupted, i.e. the
// coordinates don't match the number of atoms.
func (M *Molecule) Corrupted() error {
	lastbad := -1
	for i := range M.Coords {
		if M.Atoms == nil || M.Coords[i] == nil || M.Coords[i].NVecs() != M.Len() {
			lastbad = i
		}
	}
	if lastbad >= 0 {
		return CError{fmt.Sprintf("Inconsistent coordinates/atoms in frame %d", lastbad), []string{"Corrupted"}}
	}
	return nil
}

// Copy returns a deep copy of the molecule, including coordinates.
func (M *Molecule) Copy() *Molecule {
	r := new(Molecule)
	r.Topology = M.Topology.CopyAtoms()
	r.Coords = make([]*v3.Matrix, len(M.Coords))
	for i, c := range M.Coords {
		r.Coords[i] = c.Clone()
	}
	r.Box = M.Box
	return r
}

// Round rounds all the coordinates of the molecule, in place, to the
// given number of decimal places.
func (M *Molecule) Round(decimals int) {
	for _, c := range M.Coords {
		c.Round(decimals)
	}
}
